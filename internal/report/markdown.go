package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"clinsample/domain/design"
)

// Summary is everything a rendered report shows about one calculation
type Summary struct {
	Label       string
	ID          string
	Fingerprint string
	Design      design.DesignParameters
	Result      *design.Result
	Paragraph   string
}

func (s Summary) title() string {
	title := string(s.Result.Kind)
	if info, ok := s.Result.Kind.Info(); ok {
		title = info.Title
	}
	if s.Label != "" {
		return fmt.Sprintf("%s: %s", s.Label, title)
	}
	return title
}

// CountRows lists the (label, before dropout, after dropout) rows shown for a result
func CountRows(r *design.Result) [][3]string {
	switch {
	case r.Groups > 0:
		return [][3]string{
			{"Per group", count(r.NPerGroupBeforeDropout), count(r.NPerGroup)},
			{fmt.Sprintf("Total (%d groups)", r.Groups), count(r.NPerGroupBeforeDropout * r.Groups), count(r.NTotal)},
		}
	case r.IsTwoGroup():
		label1, label2 := GroupLabels(r.Kind)
		return [][3]string{
			{capitalize(label1), count(r.NBeforeDropoutGroup1), count(r.NGroup1)},
			{capitalize(label2), count(r.NBeforeDropoutGroup2), count(r.NGroup2)},
			{"Total", count(r.TotalBeforeDropout()), count(r.NTotal)},
		}
	default:
		return [][3]string{{"Participants", count(r.NBeforeDropout), count(r.NRequired)}}
	}
}

// RenderMarkdown builds a Markdown report for a calculation
func RenderMarkdown(s Summary) string {
	if s.Result == nil {
		return ""
	}
	r := s.Result
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.title())
	if s.ID != "" {
		fmt.Fprintf(&b, "Calculation `%s`", s.ID)
		if s.Fingerprint != "" {
			fmt.Fprintf(&b, " (inputs `%s`)", s.Fingerprint)
		}
		b.WriteString("\n\n")
	}

	b.WriteString("## Design\n\n")
	fmt.Fprintf(&b, "- Significance level: %s", percent(s.Design.Alpha))
	if r.SidednessApplied {
		fmt.Fprintf(&b, " (%s)", s.Design.Sidedness())
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Power: %s\n", percent(s.Design.Power))
	fmt.Fprintf(&b, "- Dropout rate: %s\n\n", percent(s.Design.DropoutRate))

	b.WriteString("## Sample size\n\n")
	b.WriteString("| | Before dropout | Enrol |\n|---|---:|---:|\n")
	for _, row := range CountRows(r) {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", row[0], row[1], row[2])
	}
	b.WriteString("\n")

	if r.Formula != "" {
		fmt.Fprintf(&b, "Method: %s\n\n", r.Formula)
	}

	if len(r.Assumptions) > 0 {
		b.WriteString("## Assumptions\n\n")
		for _, a := range r.Assumptions {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n")
	}

	if len(r.Intermediates) > 0 {
		b.WriteString("## Intermediate values\n\n")
		b.WriteString("| Quantity | Value |\n|---|---:|\n")
		names := make([]string, 0, len(r.Intermediates))
		for name := range r.Intermediates {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "| %s | %s |\n", name, num(r.Intermediates[name]))
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- **%s**\n", w)
		}
		b.WriteString("\n")
	}

	if s.Paragraph != "" {
		b.WriteString("## Methods paragraph\n\n")
		b.WriteString("> " + s.Paragraph + "\n")
	}
	return b.String()
}

// RenderHTML converts the Markdown report to a standalone HTML page
func RenderHTML(s Summary) []byte {
	md := RenderMarkdown(s)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: s.title(),
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
