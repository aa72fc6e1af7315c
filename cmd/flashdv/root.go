package main

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "flashdv",
	Short: "flashdv drives constrained-random operations against a flash " +
		"controller and checks every result against a reference memory.",
}

// Execute runs the root command and exits through atexit so registered
// cleanup, such as trace flushing, still runs.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
