package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"clinsample/app"
	"clinsample/domain/design"
	"clinsample/internal"
	"clinsample/internal/config"
)

// cli carries the state shared by every subcommand once flags are parsed
type cli struct {
	configPath string
	format     string
	alpha      float64
	power      float64
	oneSided   bool
	dropout    float64

	cfg     *config.Config
	logger  *internal.Logger
	service *app.CalculationService
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "clinsample",
		Short: "Sample size planning for clinical studies",
		Long: `Compute the number of participants a clinical study needs to detect an
effect with a given significance level and power, adjusted for dropout.

Examples:
  clinsample two-independent-means --sd 10 --delta 5 --dropout 0.2
  clinsample anova --cohens-f 0.25 --groups 3 --format markdown
  clinsample batch plan.xlsx --out results.xlsx`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "YAML configuration file (default ./clinsample.yaml if present)")
	flags.StringVar(&c.format, "format", "", "output format: table, json or markdown (default from config)")
	flags.Float64Var(&c.alpha, "alpha", 0, "type I error rate (default from config)")
	flags.Float64Var(&c.power, "power", 0, "target power, 1 - beta (default from config)")
	flags.BoolVar(&c.oneSided, "one-sided", false, "use a one-sided critical value")
	flags.Float64Var(&c.dropout, "dropout", 0, "expected dropout rate in [0, 1) (default from config)")

	for _, info := range design.AllKinds() {
		rootCmd.AddCommand(newCalculatorCmd(c, info))
	}
	rootCmd.AddCommand(
		newKindsCmd(c),
		newBatchCmd(c),
		newEffectCmd(),
	)
	return rootCmd
}

// setup loads .env and configuration, then applies flag overrides to the
// design defaults before building the service
func (c *cli) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	flags := cmd.Flags()
	if flags.Changed("alpha") {
		cfg.Design.Alpha = c.alpha
	}
	if flags.Changed("power") {
		cfg.Design.Power = c.power
	}
	if flags.Changed("one-sided") {
		cfg.Design.TwoSided = !c.oneSided
	}
	if flags.Changed("dropout") {
		cfg.Design.DropoutRate = c.dropout
	}
	if c.format == "" {
		c.format = cfg.Output.Format
	}
	switch c.format {
	case config.FormatTable, config.FormatJSON, config.FormatMarkdown:
	default:
		return fmt.Errorf("unknown --format %q (want table, json or markdown)", c.format)
	}

	c.logger = internal.NewLoggerTo(cmd.ErrOrStderr(), cfg.Log.LogLevel())
	c.service = app.NewCalculationService(cfg.Design.DesignParameters(), cfg.Batch.Concurrency, c.logger)
	return nil
}
