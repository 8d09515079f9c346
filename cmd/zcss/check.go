package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zcss/zcss"
	"github.com/zcss/zcss/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Dry-run the transform without writing output",
	Long: `Run the full transform pipeline and report what would be
generated. Fails on the first file whose templates cannot be compiled,
which makes it suitable as a CI gate.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := buildBuildConfig(true)
		result, err := zcss.Build(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if !getBoolWithFallback("quiet", "quiet", false) {
			report.Write(os.Stdout, report.Summary{
				DryRun:           true,
				FilesScanned:     result.FilesScanned,
				FilesTransformed: result.FilesTransformed,
				Sites:            result.Sites,
				Stylesheets:      result.Stylesheets,
				Warnings:         result.Warnings,
			}, getBoolWithFallback("color", "color", false))
		}
		return nil
	},
}

func init() {
	f := checkCmd.Flags()
	f.StringSlice("include", nil, "Glob patterns for source files to include")
	f.Bool("evaluate-expressions", true, "Evaluate template interpolations")
	f.Bool("resolve-imports", false, "Inline outer-scope bindings from relative imports")
	f.StringSlice("resolve-packages", nil, "Package specifiers to resolve during binding inlining")
	f.Bool("no-where", false, "Disable the :where() specificity guard on composed selectors")
	f.Int("concurrency", 0, "Parallel file transforms (0 = number of CPUs)")
}
