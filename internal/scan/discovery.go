// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultInclude selects the C++ sources a ROOT analysis tree is
// typically defined in.
var DefaultInclude = []string{"**.cc", "**.cxx", "**.cpp", "**.C", "**.h", "**.hh", "**.hpp"}

// DefaultIgnore skips build output and VCS metadata.
var DefaultIgnore = []string{".git/**", "build/**", "**/.git/**", "**/build/**"}

// Discover walks root and returns the files matching any include pattern
// and no ignore pattern, sorted for a stable scan order. Patterns are
// matched against slash-separated paths relative to root.
func Discover(root string, include, ignore []string) ([]string, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	if len(ignore) == 0 {
		ignore = DefaultIgnore
	}

	inc, err := compilePatterns(include)
	if err != nil {
		return nil, err
	}
	ign, err := compilePatterns(ignore)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if matchesAny(rel, ign) {
			return nil
		}
		if matchesAny(rel, inc) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func matchesAny(path string, globs []glob.Glob) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// ReadList reads source paths from a list file, one per line. Blank
// lines and lines starting with # are skipped. This is the original
// input convention: a hand-curated file of tree-making sources.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening list file: %w", err)
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading list file: %w", err)
	}
	return paths, nil
}
