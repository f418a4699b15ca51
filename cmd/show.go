package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showEdges bool

var showCmd = &cobra.Command{
	Use:   "show <canvas-id>",
	Short: "Show a canvas and its graph",
	Long:  `Show a canvas's metadata and the nodes and edges it contains.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStore, err := openRepository()
		if err != nil {
			return err
		}
		defer closeStore()

		state, err := repo.LoadCanvasState(args[0])
		if err != nil {
			return fmt.Errorf("failed to load canvas: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(state.Canvas.Name))
		fmt.Fprintln(out, idStyle.Render(state.Canvas.ID))
		if state.Canvas.Description != "" {
			fmt.Fprintln(out, state.Canvas.Description)
		}
		fmt.Fprintf(out, "Created: %s  Updated: %s\n",
			dateStyle.Render(state.Canvas.GetCreatedAt().Format("2006-01-02 15:04")),
			dateStyle.Render(state.Canvas.GetUpdatedAt().Format("2006-01-02 15:04")))
		fmt.Fprintf(out, "Nodes: %s  Edges: %s\n\n",
			countStyle.Render(fmt.Sprintf("%d", len(state.Nodes))),
			countStyle.Render(fmt.Sprintf("%d", len(state.Edges))))

		for _, node := range state.Nodes {
			expanded := ""
			if node.Data.IsExpanded {
				expanded = " [expanded]"
			}
			fmt.Fprintf(out, "  %s  %s%s\n", idStyle.Render(node.ID), node.Data.Label, expanded)
		}

		if showEdges {
			fmt.Fprintln(out)
			for _, edge := range state.Edges {
				fmt.Fprintf(out, "  %s -> %s\n", edge.Source, edge.Target)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showEdges, "edges", false, "Also list edges")
}
