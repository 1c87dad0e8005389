// Package ingest finds email envelopes on disk.
package ingest

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// DefaultExts are the envelope extensions picked up when none are given.
var DefaultExts = []string{"json"}

func extSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		exts = DefaultExts
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

func allowed(path string, exts map[string]struct{}) bool {
	_, ok := exts[strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")]
	return ok
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// Discover walks root and returns the sorted paths of files with one of exts
// (DefaultExts when empty). Hidden files and directories are skipped when
// skipHidden is set.
func Discover(root string, exts []string, skipHidden bool) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		return nil, eris.New("ingest: root is required")
	}
	set := extSet(exts)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if skipHidden && path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !allowed(path, set) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: walk %s", root)
	}
	sort.Strings(paths)
	return paths, nil
}
