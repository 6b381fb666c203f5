package lens

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery walks a directory tree and selects the Python files the include
// patterns name, minus the ignore patterns. Matching is glob-based with '/'
// as the separator; paths are matched relative to the root.
type Discovery struct {
	rootDir     string
	includes    []compiledPattern
	ignores     []compiledPattern
	maxFileSize int64
}

// NewDiscovery compiles the include and ignore patterns for rootDir. Files
// larger than maxFileSize bytes are skipped during the walk; zero disables
// the size cap.
func NewDiscovery(rootDir string, includes, ignores []string, maxFileSize int64) (*Discovery, error) {
	d := &Discovery{
		rootDir:     rootDir,
		maxFileSize: maxFileSize,
	}

	for _, pattern := range includes {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		d.includes = append(d.includes, compiledPattern{pattern: pattern, glob: g})
	}

	for _, pattern := range ignores {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		d.ignores = append(d.ignores, compiledPattern{pattern: pattern, glob: g})
	}

	return d, nil
}

// Files walks the tree and returns the matching file paths, in walk order.
func (d *Discovery) Files() ([]string, error) {
	files := []string{}

	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			// Prune ignored directories so large trees are never entered.
			if path != d.rootDir && d.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.shouldIgnore(relPath) {
			return nil
		}
		if d.maxFileSize > 0 && info.Size() > d.maxFileSize {
			return nil
		}
		if d.matchesAnyPattern(relPath, d.includes) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// Matches reports whether one path (relative to the root) is selected.
func (d *Discovery) Matches(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	return !d.shouldIgnore(relPath) && d.matchesAnyPattern(relPath, d.includes)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (d *Discovery) shouldIgnore(relPath string) bool {
	// Always ignore the .pysiglens configuration directory.
	if strings.HasPrefix(relPath, ".pysiglens/") || relPath == ".pysiglens" {
		return true
	}

	if d.matchesAnyPattern(relPath, d.ignores) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix,
	// so "__pycache__" prunes under pattern "**/__pycache__/**".
	return d.matchesAnyPattern(relPath+"/**", d.ignores)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (d *Discovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Special handling: if path is in root (no slash), also try matching
	// against patterns with **/ prefix removed, so "**/*.py" matches both
	// "main.py" and "pkg/main.py" as users would expect.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}
