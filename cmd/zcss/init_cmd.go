package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .zcss.yaml config file",
	Long:  `Create a .zcss.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(".zcss.yaml"); err == nil && !force {
			return fmt.Errorf(".zcss.yaml already exists (use --force to overwrite)")
		}

		if err := os.WriteFile(".zcss.yaml", []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Println("Created .zcss.yaml")
		return nil
	},
}

const defaultConfig = `# zcss configuration

# Shared settings
tag-package: zcss
verbose: false

# Build settings
build:
  include:
    - "src/**/*"
  out-dir: dist
  evaluate-expressions: true
  resolve-imports: false
  resolve-packages: []
  no-where: false          # disable the :where() specificity guard
  sourcemaps: false
  concurrency: 0           # 0 = number of CPUs
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
