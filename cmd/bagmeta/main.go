package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/arloliu/bagmeta/internal/cli"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(cli.ExitGeneralError)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
