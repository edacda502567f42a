package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mvasquez/invctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		var exitErr *cli.ExitError
		if !(errors.As(err, &exitErr) && exitErr.Reported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
