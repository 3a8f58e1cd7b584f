package main

import "errors"

// Exit codes for the restadapter CLI.
const (
	// ExitSuccess means the request completed with a 2xx response.
	ExitSuccess = 0

	// ExitRequestFailure means the server answered with a non-2xx status.
	ExitRequestFailure = 1

	// ExitConfigError means the configuration could not be loaded or was invalid.
	ExitConfigError = 3

	// ExitNetworkError means the request never got a response.
	ExitNetworkError = 4

	// ExitUsageError means invalid CLI usage.
	ExitUsageError = 64
)

// exitError carries an exit code through cobra's error return.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// reported marks err as already printed to the user.
func reported(code int, err error) error {
	return &exitError{code: code, err: err, reported: true}
}

func isReported(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.reported
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsageError
}
