package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// resetCmd wipes all locally persisted state scoped to one assessment:
// override domains and cached progress. Server-side responses are not
// touched.
var resetCmd = &cobra.Command{
	Use:   "reset <assessment-id>",
	Short: "Clear local state for an assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Reset(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("reset local state: %w", err)
		}
		fmt.Println("Cleared local state for", args[0])
		return nil
	},
}
