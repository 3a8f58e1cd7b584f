// Package util holds small helpers shared by the adapter, the test kit and
// the CLI: pointer helpers, secret masking, env value cleanup and parsing of
// sizes and header flags.
package util
