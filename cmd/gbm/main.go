// Package main implements the gbm CLI, which joins GBM clinical tables into a
// per-patient feature table.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// version information
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	jf := &joinFlags{}

	root := &cobra.Command{
		Use:   "gbm",
		Short: "Build a per-patient feature table from GBM clinical data",
		Long: `gbm extracts patient IDs from the header of a genomic reference file and
joins the clinical drug, patient and follow-up tables into one table holding
the features you ask for.

Running gbm with no command is the same as "gbm join".

Examples:
  # Prompt for the feature list and output locations
  gbm

  # Non-interactive run writing Parquet
  gbm --features features.txt --output out.parquet --format parquet

  # Use a config file
  gbm --config gbm.yaml`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJoin(cmd, g, jf)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.StringVar(&g.logFormat, "log-format", "", "log format: console or json")

	addJoinFlags(root, jf)

	root.AddCommand(newJoinCmd(g))
	root.AddCommand(newIDsCmd(g))
	root.AddCommand(newFeaturesCmd(g))
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gbm version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gbm %s\n", version)
		},
	}
}
