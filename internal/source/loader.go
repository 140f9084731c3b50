package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	sperrors "github.com/stevehiehn/schemapush/internal/errors"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

var stdin io.Reader = os.Stdin

// LoadFile returns the verbatim contents of the SQL file at path.
func LoadFile(path string) (string, error) {
	if path == Stdin {
		return Load(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &sperrors.RunError{
				Type:    sperrors.SourceNotFound,
				Message: fmt.Sprintf("SQL file %q not found", path),
				Hint:    "Check the path, relative paths resolve against the working directory",
				Err:     err,
			}
		}
		return "", unreadable(path, err)
	}
	return string(data), nil
}

// Load reads all of r as SQL source.
func Load(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", unreadable("stdin", err)
	}
	return string(data), nil
}

func unreadable(path string, err error) error {
	return &sperrors.RunError{
		Type:    sperrors.SourceUnreadable,
		Message: fmt.Sprintf("reading SQL file %q: %v", path, err),
		Err:     err,
	}
}
