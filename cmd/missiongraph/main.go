package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/specialistvlad/missiongraph/internal/cli"
)

// main is the entrypoint for the missiongraph application.
func main() {
	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			errorColor.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		errorColor.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitFailure)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW, errW io.Writer, args []string) (err error) {
	// The app panics on critical startup errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	return cli.Execute(context.Background(), outW, errW, args)
}
