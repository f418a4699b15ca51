package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/warrenhq/warren/internal"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved canvases",
	Long:  `List every canvas in the store, most recently updated first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStore, err := openRepository()
		if err != nil {
			return err
		}
		defer closeStore()

		canvases, err := repo.GetAllCanvases()
		if err != nil {
			return fmt.Errorf("failed to load canvases: %w", err)
		}

		if len(canvases) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No canvases yet. Start one with: warren explore \"your question\"")
			return nil
		}

		current, _ := repo.Setting(internal.SettingCurrentCanvas)

		fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render(fmt.Sprintf("Canvases (%s)", countStyle.Render(fmt.Sprintf("%d", len(canvases))))))
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, canvas := range canvases {
			marker := " "
			if canvas.ID == current {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %s\t%s\t%s\n",
				marker,
				titleStyle.Render(canvas.Name),
				idStyle.Render(canvas.ID),
				dateStyle.Render(formatAge(canvas.GetUpdatedAt())))
		}
		return w.Flush()
	},
}

// formatAge renders a timestamp as a relative age like "3h ago".
func formatAge(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
