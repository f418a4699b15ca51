package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/warrenhq/warren/internal"
	"github.com/warrenhq/warren/internal/export"
)

var (
	exportFormat string
	exportOut    string
	exportAll    bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [canvas-id]",
	Short: "Export canvases to files",
	Long: `Export one canvas (or all of them with --all) to the chosen format.

JSON exports are versioned snapshots that can be imported back with
'warren import'. YAML and Markdown are for reading, not round-tripping.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !exportAll {
			return fmt.Errorf("provide a canvas id or --all (use 'warren list' to see canvas ids)")
		}

		repo, closeStore, err := openRepository()
		if err != nil {
			return err
		}
		defer closeStore()

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		var ids []string
		if exportAll {
			canvases, err := repo.GetAllCanvases()
			if err != nil {
				return fmt.Errorf("failed to load canvases: %w", err)
			}
			for _, c := range canvases {
				ids = append(ids, c.ID)
			}
		} else {
			ids = args
		}

		if err := os.MkdirAll(exportOut, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		for _, id := range ids {
			snapshot, err := repo.ExportCanvas(id)
			if err != nil {
				internal.LogError("Failed to export canvas %s: %v", id, err)
				continue
			}

			filename := fmt.Sprintf("%s_%d.%s", safeName(snapshot.Canvas.Name), snapshot.ExportedAt, exporter.Extension())
			path := filepath.Join(exportOut, filename)

			file, err := os.Create(path)
			if err != nil {
				internal.LogError("Failed to create file %s: %v", path, err)
				continue
			}
			if err := exporter.Export(snapshot, file); err != nil {
				_ = file.Close()
				internal.LogError("Failed to export canvas %s: %v", id, err)
				continue
			}
			if err := file.Close(); err != nil {
				internal.LogWarn("Failed to close file %s: %v", path, err)
				continue
			}
			exported++
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d canvas(es) written to %s", exported, exportOut))
		return nil
	},
}

// safeName makes a canvas name usable as a file name.
func safeName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	if mapped == "" {
		return "canvas"
	}
	return mapped
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format (json, yaml, md)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every canvas")
}
