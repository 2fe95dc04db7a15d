package main

import (
	"fmt"
	"os"

	"github.com/secondbrain/tracker/cmd/trackerctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "trackerctl",
		Short: "Command line companion for the Second Brain tracker",
		Long:  "Operate timers, tasks and tags directly against the tracker database.",
	}

	rootCmd.AddCommand(commands.NewTimerCmd())
	rootCmd.AddCommand(commands.NewTasksCmd())
	rootCmd.AddCommand(commands.NewTagsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
