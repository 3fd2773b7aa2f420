package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/activityquery/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		code := cli.GetExitCode(err)
		// Commands that report through the formatter already printed the error.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(code)
	}
}
