package zcss

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Config drives a whole-build run over a file tree.
type Config struct {
	// Patterns are doublestar globs selecting candidate files.
	Patterns []string
	// OutDir receives rewritten sources and materialized stylesheets;
	// default "dist".
	OutDir string
	// Options configure the transform session.
	Options Options
	// Concurrency bounds parallel file transforms; 0 means GOMAXPROCS.
	Concurrency int
	// DryRun transforms without writing anything.
	DryRun bool
	// Verbose prints discovery and per-file progress to stdout.
	Verbose bool
}

// BuildResult summarizes one build pass.
type BuildResult struct {
	FilesScanned     int
	FilesTransformed int
	Sites            int
	Stylesheets      int
	Warnings         []string
}

// Build is the main entry point: discover eligible files, transform
// them concurrently within one session, write rewritten sources and
// the registered stylesheets under OutDir. Any transform error aborts
// the build; unreadable files become warnings.
func Build(ctx context.Context, cfg Config) (*BuildResult, error) {
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = []string{"src/**/*"}
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "dist"
	}

	files, stats, err := DiscoverFiles(cfg.Patterns)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	result := &BuildResult{FilesScanned: stats.FilesScanned}

	if cfg.Verbose {
		fmt.Printf("Found %d candidate files (%d skipped)\n", stats.FilesScanned, stats.FilesSkipped)
	}

	sess := NewSession(cfg.Options)
	sess.BuildStart()
	defer sess.BuildEnd()

	limit := cfg.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	for _, file := range files {
		file := file
		g.Go(func() error {
			src, err := os.ReadFile(file)
			if err != nil {
				mu.Lock()
				result.Warnings = append(result.Warnings, fmt.Sprintf("skipping %s: %v", file, err))
				mu.Unlock()
				return nil
			}
			res, err := sess.TransformFile(gctx, file, src)
			if err != nil {
				return err
			}
			mu.Lock()
			if res.Changed {
				result.FilesTransformed++
				result.Sites += res.Sites
				if cfg.Verbose {
					fmt.Printf("%s: %d template sites, %d stylesheets\n", file, res.Sites, len(res.Entries))
				}
			}
			mu.Unlock()
			if cfg.DryRun || !res.Changed {
				return nil
			}
			if err := writeOutput(cfg.OutDir, file, []byte(res.Code)); err != nil {
				return err
			}
			if res.Map != nil {
				if err := writeOutput(cfg.OutDir, file+".map", res.Map); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Materialize the registered virtual stylesheets before BuildEnd
	// clears the registry.
	entries := sess.Registry().Snapshot()
	result.Stylesheets = len(entries)
	if !cfg.DryRun {
		for path, css := range entries {
			if err := writeOutput(cfg.OutDir, filepath.FromSlash(path), []byte(css)); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func writeOutput(outDir, rel string, data []byte) error {
	dest := filepath.Join(outDir, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
