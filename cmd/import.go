package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warrenhq/warren/internal"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a canvas from a JSON export",
	Long: `Import a canvas snapshot produced by 'warren export --format json'.

Importing always creates a new canvas named "<original> (Imported)";
existing canvases are never overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read export file: %w", err)
		}

		var snapshot internal.CanvasExport
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return fmt.Errorf("failed to parse export file: %w", err)
		}

		repo, closeStore, err := openRepository()
		if err != nil {
			return err
		}
		defer closeStore()

		canvas, err := repo.ImportCanvas(&snapshot)
		if err != nil {
			return fmt.Errorf("failed to import canvas: %w", err)
		}

		internal.PrintSuccess(fmt.Sprintf("Imported %q (%s): %d node(s), %d edge(s)",
			canvas.Name, canvas.ID, len(snapshot.Nodes), len(snapshot.Edges)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
