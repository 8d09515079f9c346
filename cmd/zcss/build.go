package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zcss/zcss"
	"github.com/zcss/zcss/internal/report"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Transform sources and write static stylesheets",
	Long: `Scan for eligible source files, compile every css/scss tagged
template into a static stylesheet and write the rewritten sources plus
the generated stylesheets to the output directory.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringSlice("include", nil, "Glob patterns for source files to include")
	f.String("out-dir", "dist", "Output directory for rewritten sources and stylesheets")
	f.Bool("evaluate-expressions", true, "Evaluate template interpolations")
	f.Bool("resolve-imports", false, "Inline outer-scope bindings from relative imports")
	f.StringSlice("resolve-packages", nil, "Package specifiers to resolve during binding inlining")
	f.Bool("no-where", false, "Disable the :where() specificity guard on composed selectors")
	f.Bool("sourcemaps", false, "Emit source maps for rewritten files")
	f.Int("concurrency", 0, "Parallel file transforms (0 = number of CPUs)")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg := buildBuildConfig(false)
	result, err := zcss.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if !getBoolWithFallback("quiet", "quiet", false) {
		report.Write(os.Stdout, report.Summary{
			OutDir:           cfg.OutDir,
			FilesScanned:     result.FilesScanned,
			FilesTransformed: result.FilesTransformed,
			Sites:            result.Sites,
			Stylesheets:      result.Stylesheets,
			Warnings:         result.Warnings,
		}, getBoolWithFallback("color", "color", false))
	}
	return nil
}
