package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warrenhq/warren/internal"
)

var renameCmd = &cobra.Command{
	Use:   "rename <canvas-id> <new-name>",
	Short: "Rename a canvas",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStore, err := openRepository()
		if err != nil {
			return err
		}
		defer closeStore()

		name := args[1]
		if err := repo.UpdateCanvas(args[0], internal.CanvasUpdate{Name: &name}); err != nil {
			return fmt.Errorf("failed to rename canvas: %w", err)
		}
		internal.PrintSuccess(fmt.Sprintf("Renamed canvas %s to %q", args[0], name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
