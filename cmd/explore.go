package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/warrenhq/warren/internal"
)

var (
	exploreCanvas   string
	exploreMode     string
	exploreExpand   int
	exploreSaveAs   string
	exploreDebounce time.Duration
)

// exploreCmd drives the full pipeline: search, layout, expansion, autosave.
var exploreCmd = &cobra.Command{
	Use:   "explore <query>",
	Short: "Start or continue exploring a question",
	Long: `Ask the AI collaborator a question and grow a canvas from the answer.

The answer becomes the canvas's main node with follow-up questions fanned
out around it. With --expand N the first N follow-up questions are expanded
in turn, each answer spawning further questions. The canvas autosaves as it
grows and a final save runs before the command exits.

Use --canvas to continue an existing canvas instead of starting fresh.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		repo, closeStore, err := openRepository()
		if err != nil {
			return err
		}
		defer closeStore()

		ai := internal.NewAIClient(resolveAPIBase(), nil)
		layout := internal.NewLayout(internal.DefaultLayoutConfig())
		explorer := internal.NewExplorer(ai, layout, exploreMode)

		var canvas *internal.Canvas
		if exploreCanvas != "" {
			state, err := repo.LoadCanvasState(exploreCanvas)
			if err != nil {
				return fmt.Errorf("failed to load canvas: %w", err)
			}
			canvas = &state.Canvas
			explorer.Load(state.Nodes, state.Edges)
		} else {
			name := exploreSaveAs
			if name == "" {
				name = query
			}
			canvas, err = repo.CreateCanvas(name, "")
			if err != nil {
				return fmt.Errorf("failed to create canvas: %w", err)
			}
		}

		saver := internal.NewAutosaver(repo, canvas.ID, exploreDebounce)
		saver.Prime(explorer.Nodes(), explorer.Edges())
		explorer.OnChange(saver.Observe)
		defer func() {
			explorer.CancelExpansions()
			saver.Close()
		}()

		ctx := cmd.Context()

		internal.PrintStatus(fmt.Sprintf("Searching: %s", query))
		if err := explorer.Search(ctx, query); err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		printGraph(cmd, explorer)

		// Breadth-first expansion of the first open questions.
		for i := 0; i < exploreExpand; i++ {
			target := nextQuestion(explorer.Nodes())
			if target == "" {
				break
			}
			internal.PrintStatus(fmt.Sprintf("Expanding: %s", target))
			if err := explorer.ExpandNode(ctx, target); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				internal.PrintWarning(fmt.Sprintf("Expansion failed: %v", err))
				break
			}
			printGraph(cmd, explorer)
		}

		if err := repo.SetSetting(internal.SettingCurrentCanvas, canvas.ID); err != nil {
			internal.LogWarn("Failed to remember current canvas: %v", err)
		}

		internal.PrintSuccess(fmt.Sprintf("Canvas %q saved (%s)", canvas.Name, canvas.ID))
		return nil
	},
}

// nextQuestion picks the first unexpanded question node, if any.
func nextQuestion(nodes []internal.Node) string {
	for i := range nodes {
		if nodes[i].IsQuestion() && !nodes[i].Data.IsExpanded {
			return nodes[i].ID
		}
	}
	return ""
}

// printGraph writes a short outline of the current graph to stdout.
func printGraph(cmd *cobra.Command, explorer *internal.Explorer) {
	out := cmd.OutOrStdout()
	for _, node := range explorer.Nodes() {
		switch {
		case node.Type == internal.NodeTypeMain && node.Data.Content != "":
			fmt.Fprintf(out, "\n%s\n%s\n", titleStyle.Render(node.Data.Label), node.Data.Content)
		case node.Type == internal.NodeTypeQuestion && !node.Data.IsExpanded:
			fmt.Fprintf(out, "  ? %s\n", node.Data.Label)
		}
	}
	fmt.Fprintln(out)
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().StringVar(&exploreCanvas, "canvas", "", "Continue an existing canvas by id")
	exploreCmd.Flags().StringVar(&exploreMode, "mode", internal.ModeExpansive, "Follow-up mode (expansive or focused)")
	exploreCmd.Flags().IntVar(&exploreExpand, "expand", 0, "Automatically expand up to N follow-up questions")
	exploreCmd.Flags().StringVar(&exploreSaveAs, "save-as", "", "Canvas name (defaults to the query)")
	exploreCmd.Flags().DurationVar(&exploreDebounce, "debounce", 0, "Autosave debounce window (default 1.5s)")
}
