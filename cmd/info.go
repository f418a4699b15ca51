package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warrenhq/warren/internal"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show store location and collection sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := internal.ResolveDatabasePath(dbPath)
		if err != nil {
			return fmt.Errorf("failed to resolve database path: %w", err)
		}
		store, err := internal.OpenStore(path)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer func() { _ = store.Close() }()

		info, err := store.Info()
		if err != nil {
			return fmt.Errorf("failed to read store info: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Database: %s (schema v%d)\n", info.Path, info.Version)
		fmt.Fprintf(out, "Canvases: %d\n", info.Canvases)
		fmt.Fprintf(out, "Nodes:    %d\n", info.Nodes)
		fmt.Fprintf(out, "Edges:    %d\n", info.Edges)
		fmt.Fprintf(out, "Settings: %d\n", info.Settings)

		repo := internal.NewRepository(store)
		if current, err := repo.Setting(internal.SettingCurrentCanvas); err == nil {
			fmt.Fprintf(out, "Current canvas: %s\n", current)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
