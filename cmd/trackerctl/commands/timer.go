package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/secondbrain/tracker/internal/clock"
	"github.com/secondbrain/tracker/internal/database"
	"github.com/spf13/cobra"
)

// NewTimerCmd creates the timer command with start, stop and active subcommands.
func NewTimerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Control task timers",
		Long:  "Start or stop a task's timer, or list everything currently running.",
	}
	cmd.AddCommand(newTimerStartCmd())
	cmd.AddCommand(newTimerStopCmd())
	cmd.AddCommand(newTimerActiveCmd())
	return cmd
}

func newTimerStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <task-id>",
		Short: "Start the timer for a task",
		Long:  "Opens a time log entry for the task. Any other running timer is stopped first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			repo := database.NewTimerRepository(db, clock.System())
			entry, err := repo.Start(context.Background(), taskID)
			if err != nil {
				return fmt.Errorf("start timer: %w", err)
			}

			fmt.Printf("Timer started for task %d (entry %d) at %s\n",
				taskID, entry.ID, entry.StartTime.Format("15:04:05"))
			return nil
		},
	}
}

func newTimerStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <task-id>",
		Short: "Stop the timer for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			repo := database.NewTimerRepository(db, clock.System())
			entry, err := repo.Stop(context.Background(), taskID)
			if errors.Is(err, database.ErrNoActiveTimer) {
				fmt.Printf("Task %d has no running timer.\n", taskID)
				return nil
			}
			if err != nil {
				return fmt.Errorf("stop timer: %w", err)
			}

			fmt.Printf("Timer stopped for task %d: %d seconds logged.\n", taskID, *entry.Duration)
			return nil
		},
	}
}

func newTimerActiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List running timers",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			repo := database.NewTimerRepository(db, clock.System())
			timers, err := repo.ListActive(context.Background())
			if err != nil {
				return fmt.Errorf("list active timers: %w", err)
			}

			if len(timers) == 0 {
				fmt.Println("No timers running.")
				return nil
			}
			for _, t := range timers {
				fmt.Printf("Task %d (%s): running for %ds, %ds logged total\n",
					t.TaskID, t.TaskTitle, t.Elapsed, t.TimeSpent)
			}
			return nil
		},
	}
}
