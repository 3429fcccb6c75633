package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clinsample/internal/calculators"
)

// newEffectCmd groups the effect size conversions used to prepare calculator inputs
func newEffectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "effect",
		Short: "Convert published statistics into calculator effect sizes",
	}
	cmd.AddCommand(
		newCohensFCmd(),
		newSDDiffCmd(),
		newPooledSDCmd(),
		newF2Cmd(),
	)
	return cmd
}

func newCohensFCmd() *cobra.Command {
	var eta2, sd float64
	var means []float64

	cmd := &cobra.Command{
		Use:   "cohens-f",
		Short: "Cohen's f from eta-squared or from group means and a common SD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f float64
			var err error
			if cmd.Flags().Changed("eta2") {
				f, err = calculators.CohensFFromEta2(eta2)
			} else {
				f, err = calculators.CohensFFromMeans(means, sd)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cohens_f = %.6g\n", f)
			return nil
		},
	}
	cmd.Flags().Float64Var(&eta2, "eta2", 0, "eta-squared in (0, 1)")
	cmd.Flags().Float64SliceVar(&means, "means", nil, "group means, comma separated")
	cmd.Flags().Float64Var(&sd, "sd", 0, "common within-group standard deviation")
	cmd.MarkFlagsMutuallyExclusive("eta2", "means")
	cmd.MarkFlagsOneRequired("eta2", "means")
	cmd.MarkFlagsRequiredTogether("means", "sd")
	return cmd
}

func newSDDiffCmd() *cobra.Command {
	var pre, post, rho float64

	cmd := &cobra.Command{
		Use:   "sd-diff",
		Short: "SD of paired differences from pre/post SDs and their correlation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sd, err := calculators.SDDiff(pre, post, rho)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sd_diff = %.6g\n", sd)
			return nil
		},
	}
	cmd.Flags().Float64Var(&pre, "sd-pre", 0, "standard deviation before")
	cmd.Flags().Float64Var(&post, "sd-post", 0, "standard deviation after")
	cmd.Flags().Float64Var(&rho, "rho", 0, "pre/post correlation in [0, 1)")
	cmd.MarkFlagRequired("sd-pre")
	cmd.MarkFlagRequired("sd-post")
	cmd.MarkFlagRequired("rho")
	return cmd
}

func newPooledSDCmd() *cobra.Command {
	var ns []int
	var sds []float64

	cmd := &cobra.Command{
		Use:   "pooled-sd",
		Short: "Pooled standard deviation from group sizes and SDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sd, err := calculators.PooledSD(ns, sds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sd = %.6g\n", sd)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&ns, "n", nil, "group sizes, comma separated")
	cmd.Flags().Float64SliceVar(&sds, "sds", nil, "group standard deviations, comma separated")
	cmd.MarkFlagRequired("n")
	cmd.MarkFlagRequired("sds")
	return cmd
}

func newF2Cmd() *cobra.Command {
	var r2, deltaR2 float64

	cmd := &cobra.Command{
		Use:   "f2",
		Short: "Cohen's f-squared from R-squared, or partial f-squared with --delta-r2",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f2 float64
			var err error
			if cmd.Flags().Changed("delta-r2") {
				f2, err = calculators.PartialF2(deltaR2, r2)
			} else {
				f2, err = calculators.F2FromR2(r2)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "f2 = %.6g\n", f2)
			return nil
		},
	}
	cmd.Flags().Float64Var(&r2, "r2", 0, "R-squared of the (full) model")
	cmd.Flags().Float64Var(&deltaR2, "delta-r2", 0, "R-squared increment of the tested predictors")
	cmd.MarkFlagRequired("r2")
	return cmd
}
