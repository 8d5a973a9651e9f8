package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/arthur-debert/prepenv/internal/cli"
	"github.com/arthur-debert/prepenv/pkg/output/styles"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Print the error in red; pip's own output has already been
		// passed through untranslated
		errorStyle := styles.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))

		os.Exit(exitCode(err))
	}
}

// exitCode surfaces the failing command's exit status when one is
// buried in the error chain.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}
