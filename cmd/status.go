package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd prints the locally cached progress counters. It never talks
// to the server, so it works offline.
var statusCmd = &cobra.Command{
	Use:   "status <assessment-id>",
	Short: "Show cached progress for an assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.ProgressRepo().Get(cmd.Context(), args[0], cfg.Identity.UserID)
		if err != nil {
			return fmt.Errorf("read progress cache: %w", err)
		}
		if rec == nil {
			fmt.Println("No cached progress for", args[0])
			return nil
		}

		fmt.Printf("Assessment %s\n", rec.AssessmentID)
		fmt.Printf("  Answered: %d/%d\n", rec.Answered, rec.Total)
		fmt.Printf("  Session:  %s\n", rec.SessionID)
		fmt.Printf("  Updated:  %s\n", rec.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}
