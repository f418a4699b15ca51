package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/warrenhq/warren/internal"
)

var suggestMode string

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Ask for related questions around a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		ai := internal.NewAIClient(resolveAPIBase(), nil)
		resp, err := ai.Suggestions(cmd.Context(), &internal.SuggestionsRequest{
			Query: query,
			Mode:  suggestMode,
		})
		if err != nil {
			return fmt.Errorf("failed to fetch suggestions: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, s := range resp.Suggestions {
			fmt.Fprintf(out, "  ? %s\n", s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().StringVar(&suggestMode, "mode", internal.ModeExpansive, "Suggestion mode (expansive or focused)")
}
