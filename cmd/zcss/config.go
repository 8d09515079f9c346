package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/zcss/zcss"
)

var k = koanf.New(".")

// loadConfig loads configuration with precedence: flags > env > file >
// defaults. It must be called after cobra parses flags (in PreRunE or
// RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = ".zcss.yaml"
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// CLI flags (highest precedence — only flags that were explicitly set)
	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}
	return nil
}

// loadConfigFromPath loads configuration from a file and environment
// variables. Separated from loadConfig to allow testing without a
// cobra command.
func loadConfigFromPath(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// Environment variables (ZCSS_* prefix)
	if err := k.Load(env.Provider("ZCSS_", ".", func(s string) string {
		// ZCSS_BUILD_SOURCEMAPS -> build.sourcemaps
		// ZCSS_VERBOSE -> verbose
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "ZCSS_")),
			"_", ".",
		)
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}
	return nil
}

// buildBuildConfig constructs the library Config from koanf state.
func buildBuildConfig(dryRun bool) zcss.Config {
	opts := zcss.DefaultOptions()
	opts.TagPackage = getStringWithFallback("tag-package", "tag-package", "zcss")
	opts.EvaluateExpressions = getBoolWithFallback("evaluate-expressions", "build.evaluate-expressions", true)
	opts.ResolveImports = getBoolWithFallback("resolve-imports", "build.resolve-imports", false)
	opts.NoSpecificityGuard = getBoolWithFallback("no-where", "build.no-where", false)
	opts.SourceMaps = getBoolWithFallback("sourcemaps", "build.sourcemaps", false)
	if pkgs := k.Strings("resolve-packages"); len(pkgs) > 0 {
		opts.ResolvePackages = pkgs
	} else if pkgs := k.Strings("build.resolve-packages"); len(pkgs) > 0 {
		opts.ResolvePackages = pkgs
	}

	cfg := zcss.Config{
		OutDir:      getStringWithFallback("out-dir", "build.out-dir", "dist"),
		Options:     opts,
		Concurrency: getIntWithFallback("concurrency", "build.concurrency", 0),
		Verbose:     getBoolWithFallback("verbose", "verbose", false),
		DryRun:      dryRun,
	}
	if includes := k.Strings("include"); len(includes) > 0 {
		cfg.Patterns = includes
	} else if includes := k.Strings("build.include"); len(includes) > 0 {
		cfg.Patterns = includes
	} else {
		cfg.Patterns = []string{"src/**/*"}
	}
	return cfg
}

// getStringWithFallback checks the flag key first, then the config
// file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file
// key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file
// key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}
