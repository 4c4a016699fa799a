package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoTranscripts indicates that no transcript files were found during discovery.
var ErrNoTranscripts = errors.New("no transcripts discovered")

// Stdin is the explicit path that selects standard input.
const Stdin = "-"

// DefaultDir holds captured transcripts when no paths are given.
var DefaultDir = filepath.Join(".utest", "transcripts")

var extensions = []string{"*.log", "*.txt"}

// Transcripts returns transcript paths. Explicit entries may be files,
// directories (expanded to their *.log and *.txt files), glob patterns, or
// Stdin; they are returned in the order given with duplicates removed.
// Without explicit entries DefaultDir is searched and results are sorted.
func Transcripts(root string, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		return resolveExplicit(root, explicit)
	}

	paths, err := expandDir(root, filepath.Join(root, DefaultDir))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoTranscripts
	}
	return paths, nil
}

func expandDir(root, dir string) ([]string, error) {
	matches := make(map[string]struct{})
	for _, ext := range extensions {
		pattern := filepath.Join(dir, ext)
		found, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range found {
			matches[m] = struct{}{}
		}
	}

	paths := make([]string, 0, len(matches))
	for p := range matches {
		paths = append(paths, mustRelOrClean(root, p))
	}
	sort.Strings(paths)
	return paths, nil
}

func resolveExplicit(root string, explicit []string) ([]string, error) {
	seen := make(map[string]struct{})
	resolved := make([]string, 0, len(explicit))
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		resolved = append(resolved, p)
	}

	for _, input := range explicit {
		if input == Stdin {
			add(Stdin)
			continue
		}
		cleaned := input
		if !filepath.IsAbs(cleaned) {
			cleaned = filepath.Join(root, cleaned)
		}

		if strings.ContainsAny(input, "*?[") {
			found, err := filepath.Glob(cleaned)
			if err != nil {
				return nil, fmt.Errorf("glob %q: %w", input, err)
			}
			sort.Strings(found)
			for _, m := range found {
				add(mustRelOrClean(root, m))
			}
			continue
		}

		info, err := os.Stat(cleaned)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("transcript %q not found", input)
			}
			return nil, fmt.Errorf("stat %q: %w", input, err)
		}
		if info.IsDir() {
			found, err := expandDir(root, cleaned)
			if err != nil {
				return nil, err
			}
			for _, m := range found {
				add(m)
			}
			continue
		}
		add(mustRelOrClean(root, cleaned))
	}
	if len(resolved) == 0 {
		return nil, ErrNoTranscripts
	}
	return resolved, nil
}

func mustRelOrClean(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Clean(path)
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Clean(path)
	}
	return rel
}
