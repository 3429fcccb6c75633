package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"clinsample/adapters/excel"
	"clinsample/adapters/planfile"
	"clinsample/app"
	"clinsample/internal/config"
	"clinsample/ports"
)

func newBatchCmd(c *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "batch <plan>",
		Short: "Run every calculation in a plan file",
		Long: `Run a batch plan (.xlsx, .csv, .yaml or .yml) and optionally write the
results (.xlsx, .csv, .yaml or .yml).

Spreadsheet plans have a header row with "kind", an optional "label", optional
design columns (alpha, power, two_sided, dropout_rate) and one column per
calculator input. Failed rows are reported without stopping the batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := c.service.RunPlan(cmd.Context(), c.planReader(args[0]), args[0])
			if err != nil {
				return err
			}

			rows := app.ResultRows(batch)
			if out != "" {
				if err := c.planWriter(out).WriteResults(cmd.Context(), out, rows); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if c.format == config.FormatJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(batch)
			}
			renderBatch(w, rows)
			summary := fmt.Sprintf("%d succeeded, %d failed", batch.Succeeded, batch.Failed)
			if batch.Failed > 0 {
				color.New(color.FgRed).Fprintln(w, summary)
			} else {
				color.New(color.FgGreen).Fprintln(w, summary)
			}
			if out != "" {
				fmt.Fprintf(w, "Results written to %s\n", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write results to this file")
	return cmd
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func (c *cli) planReader(path string) ports.PlanReader {
	if isYAML(path) {
		return planfile.NewStore()
	}
	return excel.NewPlanReader(c.logger)
}

func (c *cli) planWriter(path string) ports.PlanWriter {
	if isYAML(path) {
		return planfile.NewStore()
	}
	return excel.NewResultWriter(c.logger)
}

func renderBatch(w io.Writer, rows []ports.ResultRow) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Label", "Kind", "Before dropout", "Enrol", "Notes"})
	for _, row := range rows {
		if row.ErrorCode != "" {
			tbl.AppendRow(table.Row{row.Label, row.Kind, "", "", color.RedString("%s: %s", row.ErrorCode, row.Error)})
			continue
		}
		notes := row.Warnings
		if notes != "" {
			notes = color.YellowString(notes)
		}
		tbl.AppendRow(table.Row{row.Label, row.Kind, row.TotalBeforeDropout, row.Total, notes})
	}
	tbl.Render()
}
