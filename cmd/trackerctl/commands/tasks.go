package commands

import (
	"context"
	"fmt"

	"github.com/secondbrain/tracker/internal/clock"
	"github.com/secondbrain/tracker/internal/database"
	"github.com/secondbrain/tracker/internal/models"
	"github.com/secondbrain/tracker/internal/validation"
	"github.com/spf13/cobra"
)

// NewTasksCmd creates the tasks command with a list subcommand.
func NewTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect tasks",
	}
	cmd.AddCommand(newTasksListCmd())
	return cmd
}

func newTasksListCmd() *cobra.Command {
	var status string
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := database.TaskFilter{}
			if status != "" {
				if err := validation.ValidateTaskStatus(status); err != nil {
					return err
				}
				s := models.TaskStatus(status)
				filter.Status = &s
			}
			if project != "" {
				filter.Project = &project
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			repo := database.NewTaskRepository(db, clock.System())
			tasks, err := repo.List(context.Background(), filter)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}

			if len(tasks) == 0 {
				fmt.Println("No tasks.")
				return nil
			}
			for _, t := range tasks {
				fmt.Printf("%4d  [%-11s] %-8s %s (%ds logged)\n",
					t.ID, t.Status, t.Priority, t.Title, t.TimeSpent)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (todo, in-progress, done)")
	cmd.Flags().StringVar(&project, "project", "", "Filter by project label")
	return cmd
}
