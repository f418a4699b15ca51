package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warrenhq/warren/internal"
)

var (
	verbose bool
	dbPath  string
	apiBase string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

// defaultAPIBase is where the AI collaborator listens unless --api or
// WARREN_API says otherwise.
const defaultAPIBase = "http://localhost:3000/api/rabbitholes"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "warren",
	Short: "Explore knowledge as a local-first graph",
	Long: `Warren grows explorable graphs of knowledge: search results, notes and
chats become nodes, connected by edges, persisted locally and safely
resumable across sessions.

Features:
  • Local-first storage — everything lives in a single SQLite file
  • Exploration — answered nodes fan out into follow-up questions
  • Canvas management — list, show, rename, duplicate, delete
  • Export in multiple formats (JSON, YAML, Markdown)
  • Whole-database backup and restore

Quick Start:
  warren explore "how do bees navigate"   # Start a new canvas
  warren list                             # List all canvases
  warren export <canvas-id> --format md   # Export as Markdown`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Custom database location (defaults to $WARREN_HOME or ~/.warren)")
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", "", "AI collaborator base URL (defaults to $WARREN_API or "+defaultAPIBase+")")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// openRepository opens the store at the resolved location and wraps it in a
// repository. The returned cleanup closes the store.
func openRepository() (*internal.Repository, func(), error) {
	path, err := internal.ResolveDatabasePath(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	store, err := internal.OpenStore(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return internal.NewRepository(store), func() { _ = store.Close() }, nil
}

// resolveAPIBase picks the collaborator endpoint from the flag, the
// environment, or the default.
func resolveAPIBase() string {
	if apiBase != "" {
		return apiBase
	}
	if env := os.Getenv("WARREN_API"); env != "" {
		return env
	}
	return defaultAPIBase
}
