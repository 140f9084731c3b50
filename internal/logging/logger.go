package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger used across schemapush.
type Logger interface {
	Debug(msg string, tags ...any)
	Info(msg string, tags ...any)
	Warn(msg string, tags ...any)
	Error(msg string, tags ...any)

	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)

	With(tags ...any) Logger
	Sync() error
}

// Supported level names.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

type ZapLogger struct {
	logger *zap.SugaredLogger
}

var _ Logger = (*ZapLogger)(nil)

// New builds a console logger writing to w at the given level. A nil w
// means stderr, keeping stdout free for reports.
func New(level string, w io.Writer) (Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if w == nil {
		w = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(lvl),
	)
	return &ZapLogger{logger: zap.New(core).Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return &ZapLogger{logger: zap.NewNop().Sugar()}
}

func (z *ZapLogger) Debug(msg string, tags ...any) { z.logger.Debugw(msg, tags...) }
func (z *ZapLogger) Info(msg string, tags ...any)  { z.logger.Infow(msg, tags...) }
func (z *ZapLogger) Warn(msg string, tags ...any)  { z.logger.Warnw(msg, tags...) }
func (z *ZapLogger) Error(msg string, tags ...any) { z.logger.Errorw(msg, tags...) }

func (z *ZapLogger) Debugf(template string, args ...any) { z.logger.Debugf(template, args...) }
func (z *ZapLogger) Infof(template string, args ...any)  { z.logger.Infof(template, args...) }
func (z *ZapLogger) Warnf(template string, args ...any)  { z.logger.Warnf(template, args...) }
func (z *ZapLogger) Errorf(template string, args ...any) { z.logger.Errorf(template, args...) }

func (z *ZapLogger) With(tags ...any) Logger {
	return &ZapLogger{logger: z.logger.With(tags...)}
}

func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}
