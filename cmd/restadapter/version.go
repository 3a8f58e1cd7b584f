package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/restadapter/version"
)

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetShortVersion())
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", serviceName, version.GetFullVersion())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}
