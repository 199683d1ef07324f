package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AbbaraS/GBMcode/internal/patient"
	"github.com/AbbaraS/GBMcode/internal/tabio"
)

func newIDsCmd(g *globalFlags) *cobra.Command {
	var (
		reference string
		short     bool
	)

	cmd := &cobra.Command{
		Use:   "ids",
		Short: "Print the patient IDs found in the reference header",
		Long: `Print the patient IDs extracted from the header line of the reference file,
one per line, in column order. Duplicates are kept.

Examples:
  gbm ids
  gbm ids --reference GBM_RNAseqdata_HTSEQ_FKPM.harmonized.txt --short`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("reference") {
				cfg.Inputs.Reference = reference
			}

			ctx, rt, err := newRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			header, err := tabio.ReadHeaderLine(cfg.Inputs.Reference)
			if err != nil {
				return err
			}
			ids := patient.ExtractIDs(header)
			rt.logger.Debug(ctx, "patient IDs extracted", zap.Int("ids", len(ids)))

			out := cmd.OutOrStdout()
			for _, id := range ids {
				if short {
					id = patient.ShortID(id)
				}
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reference, "reference", "", "genomic reference file (default from config)")
	cmd.Flags().BoolVar(&short, "short", false, "print only the part after the last hyphen, as in the output table")
	return cmd
}

func newFeaturesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "features [file]",
		Short: "Print the parsed feature list",
		Long: `Print the features read from a feature list file with their positions, so
blank lines and stray quotes are easy to spot. Without an argument the
configured inputs.features file is used.

Examples:
  gbm features features.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			path := cfg.Inputs.Features
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no feature list given: pass a file or set inputs.features")
			}

			features, err := tabio.ReadFeatures(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, f := range features {
				fmt.Fprintf(out, "%d\t%q\n", i+1, f)
			}
			return nil
		},
	}
}
