package zcss

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// ScanStats tracks file discovery statistics.
type ScanStats struct {
	FilesDiscovered int // total files matched by the glob patterns
	FilesScanned    int // files kept after filtering
	FilesSkipped    int // files dropped by eligibility or ignore rules
}

// script and markup-script extensions eligible for transformation.
var eligibleExts = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".mjs": true, ".cjs": true,
	".svelte": true, ".astro": true, ".vue": true, ".html": true,
}

// Eligible reports whether a path is a transform candidate: a
// script-like extension and not inside a dependency vendor directory.
func Eligible(path string) bool {
	if !eligibleExts[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	return !underVendor(path)
}

func underVendor(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == "node_modules" {
			return true
		}
	}
	return false
}

var (
	gitIgnoreCache *ignore.GitIgnore
	gitIgnoreOnce  sync.Once
)

// loadGitIgnore loads .gitignore once (thread-safe) and gracefully
// degrades when it does not exist.
func loadGitIgnore() *ignore.GitIgnore {
	gitIgnoreOnce.Do(func() {
		gi, err := ignore.CompileIgnoreFile(".gitignore")
		if err != nil {
			return
		}
		gitIgnoreCache = gi
	})
	return gitIgnoreCache
}

// shouldSkipFile applies two-layer filtering:
// 1. Eligibility check (fast): extension and vendor-dir rules.
// 2. Gitignore check: skip ignored files (relative paths only, so
// absolute paths outside the project are unaffected).
func shouldSkipFile(path string) bool {
	if !Eligible(path) {
		return true
	}
	if !filepath.IsAbs(path) {
		if gi := loadGitIgnore(); gi != nil && gi.MatchesPath(path) {
			return true
		}
	}
	return false
}

// DiscoverFiles expands glob patterns to the eligible source files,
// deduplicated, with discovery statistics.
func DiscoverFiles(patterns []string) ([]string, ScanStats, error) {
	var files []string
	seen := make(map[string]bool)
	stats := ScanStats{}

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, stats, err
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			stats.FilesDiscovered++
			if shouldSkipFile(match) {
				stats.FilesSkipped++
				continue
			}
			seen[match] = true
			files = append(files, match)
			stats.FilesScanned++
		}
	}
	return files, stats, nil
}
