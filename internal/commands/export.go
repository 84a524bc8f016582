package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/mangroveguide/internal/export"
	"github.com/diogo/mangroveguide/internal/screens"
	"github.com/diogo/mangroveguide/internal/transcript"
)

func newExportCmd() *cobra.Command {
	var (
		screen string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a screen's seeded conversation",
		Long: `Write the seeded conversation of a screen as markdown, JSON or HTML.

Without --format the format follows the --output extension, and
defaults to markdown.

Examples:
  mangroveguide export
  mangroveguide export -s karnataka --format json
  mangroveguide export -s karnataka -o karnataka.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := screens.Parse(screen)
			if err != nil {
				return err
			}
			def, _ := screens.Get(id)

			f, err := exportFormat(format, output)
			if err != nil {
				return err
			}

			doc := export.FromTranscript(def, transcript.Of(def.Seed()...))
			if output == "" {
				return export.Write(cmd.OutOrStdout(), doc, f)
			}
			if err := writeExport(output, doc, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", def.Title, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&screen, "screen", "s", string(screens.Intro), "Screen to export ("+strings.Join(screens.Names(), ", ")+")")
	cmd.Flags().StringVar(&format, "format", "", "Output format: markdown, json or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

// exportFormat resolves the explicit format, else the output extension.
func exportFormat(format, output string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".json":
		return export.FormatJSON, nil
	case ".html", ".htm":
		return export.FormatHTML, nil
	default:
		return export.FormatMarkdown, nil
	}
}

func writeExport(path string, doc export.Document, f export.Format) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return export.Write(file, doc, f)
}
