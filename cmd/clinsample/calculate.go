package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clinsample/app"
	"clinsample/domain/design"
	"clinsample/internal/config"
	"clinsample/internal/report"
)

// intInputs are the effect inputs that take whole numbers
var intInputs = map[string]bool{
	"groups":     true,
	"predictors": true,
}

// optionalInputs default to 1 when omitted
var optionalInputs = map[string]bool{
	"allocation_ratio":  true,
	"controls_per_case": true,
}

var inputUsage = map[string]string{
	"sd":                "standard deviation of the outcome",
	"delta":             "mean difference to detect",
	"sd_diff":           "standard deviation of within-subject differences",
	"allocation_ratio":  "allocation ratio n2/n1",
	"cohens_f":          "Cohen's f effect size",
	"groups":            "number of groups",
	"p0":                "reference or baseline proportion",
	"p1":                "expected proportion",
	"p2":                "proportion in group 2",
	"odds_ratio":        "odds ratio to detect",
	"controls_per_case": "number of controls per case",
	"risk_ratio":        "risk ratio to detect",
	"r":                 "correlation coefficient to detect",
	"f2":                "Cohen's f-squared effect size",
	"predictors":        "number of predictors",
	"event_probability": "probability of the outcome event",
}

func flagName(input string) string {
	return strings.ReplaceAll(input, "_", "-")
}

// newCalculatorCmd builds one subcommand per calculator with a flag per input
func newCalculatorCmd(c *cli, info design.KindInfo) *cobra.Command {
	floats := make(map[string]*float64)
	ints := make(map[string]*int)

	cmd := &cobra.Command{
		Use:   flagName(string(info.Kind)),
		Short: info.Description,
		Long:  fmt.Sprintf("%s\n\n%s.", info.Title, info.Description),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make(map[string]interface{})
			for _, name := range info.Inputs {
				if !cmd.Flags().Changed(flagName(name)) {
					continue
				}
				if intInputs[name] {
					inputs[name] = *ints[name]
				} else {
					inputs[name] = *floats[name]
				}
			}
			raw, err := json.Marshal(inputs)
			if err != nil {
				return err
			}

			calc, err := c.service.Calculate(cmd.Context(), app.Request{Kind: info.Kind, Inputs: raw})
			if err != nil {
				return err
			}
			return c.render(cmd.OutOrStdout(), calc)
		},
	}

	for _, name := range info.Inputs {
		usage := inputUsage[name]
		if intInputs[name] {
			ints[name] = cmd.Flags().Int(flagName(name), 0, usage)
		} else {
			floats[name] = cmd.Flags().Float64(flagName(name), 0, usage)
		}
		if !optionalInputs[name] {
			cmd.MarkFlagRequired(flagName(name))
		}
	}
	return cmd
}

// render writes a calculation in the configured format
func (c *cli) render(w io.Writer, calc *app.Calculation) error {
	switch c.format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(calc)
	case config.FormatMarkdown:
		_, err := io.WriteString(w, report.RenderMarkdown(calc.Summary()))
		return err
	}

	report.RenderTable(w, calc.Summary())
	fmt.Fprintln(w)
	for _, warning := range calc.Result.Warnings {
		color.New(color.FgYellow).Fprintf(w, "Warning: %s\n", warning)
	}
	if len(calc.Result.Warnings) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, calc.Paragraph)
	return nil
}

func newKindsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the available calculators and their inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := c.service.Kinds()
			if c.format == config.FormatJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(kinds)
			}
			report.RenderKinds(cmd.OutOrStdout(), kinds)
			return nil
		},
	}
}
