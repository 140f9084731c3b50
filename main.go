package main

import "github.com/stevehiehn/schemapush/cmd"

func main() {
	cmd.Execute()
}
