package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warrenhq/warren/internal"
)

var duplicateName string

var duplicateCmd = &cobra.Command{
	Use:   "duplicate <canvas-id>",
	Short: "Duplicate a canvas with all its nodes and edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStore, err := openRepository()
		if err != nil {
			return err
		}
		defer closeStore()

		copied, err := repo.DuplicateCanvas(args[0], duplicateName)
		if err != nil {
			return fmt.Errorf("failed to duplicate canvas: %w", err)
		}
		internal.PrintSuccess(fmt.Sprintf("Created %q (%s)", copied.Name, copied.ID))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(duplicateCmd)
	duplicateCmd.Flags().StringVar(&duplicateName, "name", "", "Name for the copy (defaults to \"<original> (Copy)\")")
}
