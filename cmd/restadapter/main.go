// Command restadapter executes one HTTP request through the transport
// adapter and prints the response.
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		if !isReported(err) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitCode(err)
	}
	return ExitSuccess
}
