package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/warrenhq/warren/internal"
)

var (
	restoreMerge bool
	restoreYes   bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore the database from a backup",
	Long: `Restore a snapshot written by 'warren backup'.

Without --merge this REPLACES the entire database: all canvases, nodes,
edges and settings are cleared before the snapshot is loaded. With --merge
the snapshot is upserted over the existing data instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read backup file: %w", err)
		}

		var snapshot internal.DatabaseExport
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return fmt.Errorf("failed to parse backup file: %w", err)
		}

		// A full replace is destructive and needs an explicit go-ahead.
		if !restoreMerge && !restoreYes {
			if !confirm(cmd, fmt.Sprintf("Replace the entire database with %s? [y/N] ", args[0])) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		repo, closeStore, err := openRepository()
		if err != nil {
			return err
		}
		defer closeStore()

		if err := repo.ImportDatabase(&snapshot, restoreMerge); err != nil {
			return fmt.Errorf("failed to restore database: %w", err)
		}

		internal.PrintSuccess(fmt.Sprintf("Restored %d canvas(es), %d node(s), %d edge(s)",
			len(snapshot.Canvases), len(snapshot.Nodes), len(snapshot.Edges)))
		return nil
	},
}

// confirm reads a yes/no answer from the command's input stream.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().BoolVar(&restoreMerge, "merge", false, "Upsert the snapshot instead of replacing everything")
	restoreCmd.Flags().BoolVar(&restoreYes, "yes", false, "Skip the confirmation prompt")
}
