package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"clinsample/domain/design"
)

// RenderTable writes the sample size counts of a result as a terminal table
func RenderTable(w io.Writer, s Summary) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.SetTitle(s.title())
	tbl.AppendHeader(table.Row{"", "Before dropout", "Enrol"})
	for _, row := range CountRows(s.Result) {
		tbl.AppendRow(table.Row{row[0], row[1], row[2]})
	}
	tbl.AppendFooter(table.Row{"Z alpha / Z beta", fmt.Sprintf("%.4f", s.Result.ZAlpha), fmt.Sprintf("%.4f", s.Result.ZBeta)})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	tbl.Render()
}

// RenderKinds writes the calculator catalog as a terminal table
func RenderKinds(w io.Writer, kinds []design.KindInfo) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"Kind", "Outcome", "Title", "Inputs"})
	for _, k := range kinds {
		tbl.AppendRow(table.Row{k.Kind, k.Outcome, k.Title, fmt.Sprint(k.Inputs)})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d calculators", len(kinds))})
	tbl.Render()
}
