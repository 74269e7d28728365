package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/danielolaszy/jira-export/internal/export"
	"github.com/danielolaszy/jira-export/internal/logging"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var opts struct {
		JQL    string
		Format string
		Output string
	}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the issues matching a JQL query",
		Long: `Run a single export and print the preview.

Examples:
  # Print the preview as a table
  jira-export export --jql 'project = SD AND created >= -30d'

  # Print the same payload the HTTP service returns
  jira-export export --jql 'project = SD' --format json

  # Write every exported row to a CSV file
  jira-export export --jql 'project = SD' --output issues.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.JQL) == "" {
				return fmt.Errorf("--jql is required")
			}
			if opts.Format != "table" && opts.Format != "json" {
				return fmt.Errorf("unsupported format %q, expected table or json", opts.Format)
			}

			_, exporter, err := newExporter()
			if err != nil {
				return err
			}

			result, err := exporter.Export(cmd.Context(), opts.JQL)
			if opts.Format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(export.Payload(result, err)); encErr != nil {
					return encErr
				}
				return err
			}
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			if opts.Output != "" {
				if err := writeCSVFile(opts.Output, result.Rows); err != nil {
					return err
				}
				logging.Info("wrote export", "path", opts.Output, "rows", len(result.Rows))
			}

			return printPreview(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&opts.JQL, "jql", "q", "", "JQL query to export")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table or json")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write all rows to this CSV file")

	return cmd
}

func printPreview(out io.Writer, result *export.Result) error {
	if result.TotalIssues == 0 {
		_, err := fmt.Fprintln(out, export.NoIssuesMessage)
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(result.Preview[0].Names(), "\t"))
	for _, row := range result.Preview {
		_, _ = fmt.Fprintln(w, strings.Join(cells(row), "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\nshowing %d of %d issues\n", len(result.Preview), result.TotalIssues)
	return err
}

func writeCSVFile(path string, rows []export.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := writeCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func writeCSV(out io.Writer, rows []export.Row) error {
	w := csv.NewWriter(out)
	if len(rows) > 0 {
		if err := w.Write(rows[0].Names()); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := w.Write(cells(row)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// cells renders row values as text; non-string values are JSON encoded.
func cells(row export.Row) []string {
	out := make([]string, len(row))
	for i, c := range row {
		if s, ok := c.Value.(string); ok {
			out[i] = s
			continue
		}
		data, err := json.Marshal(c.Value)
		if err != nil {
			out[i] = fmt.Sprint(c.Value)
			continue
		}
		out[i] = string(data)
	}
	return out
}
