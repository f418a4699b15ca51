package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warrenhq/warren/internal"
)

var rmCmd = &cobra.Command{
	Use:   "rm <canvas-id>",
	Short: "Delete a canvas and everything it owns",
	Long:  `Delete a canvas along with all of its nodes and edges, atomically.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStore, err := openRepository()
		if err != nil {
			return err
		}
		defer closeStore()

		if err := repo.DeleteCanvas(args[0]); err != nil {
			return fmt.Errorf("failed to delete canvas: %w", err)
		}

		// Forget the current-canvas pointer if it referenced the deleted one.
		if current, err := repo.Setting(internal.SettingCurrentCanvas); err == nil && current == args[0] {
			if err := repo.DeleteSetting(internal.SettingCurrentCanvas); err != nil {
				internal.LogWarn("Failed to clear current canvas setting: %v", err)
			}
		}

		internal.PrintSuccess(fmt.Sprintf("Deleted canvas %s", args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
