package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warrenhq/warren/internal"
)

var backupOut string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export the whole database to a JSON snapshot",
	Long:  `Write every canvas, node, edge and setting to a single versioned JSON file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStore, err := openRepository()
		if err != nil {
			return err
		}
		defer closeStore()

		snapshot, err := repo.ExportDatabase()
		if err != nil {
			return fmt.Errorf("failed to export database: %w", err)
		}

		path := backupOut
		if path == "" {
			path = fmt.Sprintf("warren_backup_%d.json", snapshot.ExportedAt)
		}

		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}
		defer func() { _ = file.Close() }()

		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snapshot); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}

		internal.PrintSuccess(fmt.Sprintf("Backed up %d canvas(es), %d node(s), %d edge(s) to %s",
			len(snapshot.Canvases), len(snapshot.Nodes), len(snapshot.Edges), path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().StringVarP(&backupOut, "out", "o", "", "Backup file path (defaults to warren_backup_<timestamp>.json)")
}
