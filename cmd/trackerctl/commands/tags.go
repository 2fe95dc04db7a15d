package commands

import (
	"context"
	"fmt"

	"github.com/secondbrain/tracker/internal/clock"
	"github.com/secondbrain/tracker/internal/database"
	"github.com/spf13/cobra"
)

// NewTagsCmd creates the tags command listing the distinct note tags.
func NewTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List note tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			repo := database.NewNoteRepository(db, clock.System())
			tags, err := repo.ListTags(context.Background())
			if err != nil {
				return fmt.Errorf("list tags: %w", err)
			}

			if len(tags) == 0 {
				fmt.Println("No tags.")
				return nil
			}
			for _, tag := range tags {
				fmt.Println(tag)
			}
			return nil
		},
	}
}
