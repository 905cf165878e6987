package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Entry is a model directory found by Discover.
type Entry struct {
	Name string // path relative to the search root
	Path string
	Size int64 // weights file size in bytes
}

var discoverExcludes = []string{"**/.*", "**/node_modules"}

// Discover walks root for directories holding both config.json and
// model.safetensors. Hidden directories are skipped.
func Discover(root string) ([]Entry, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("models directory is empty")
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("models path is not a directory: %s", root)
	}

	var out []Entry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && matchAny(discoverExcludes, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if ok, _ := doublestar.Match("**/"+ConfigFile, rel); !ok {
			return nil
		}
		dir := filepath.Dir(path)
		w, err := os.Stat(filepath.Join(dir, WeightsFile))
		if err != nil || w.IsDir() {
			return nil
		}
		name := filepath.ToSlash(filepath.Dir(rel))
		if name == "." {
			name = filepath.Base(filepath.Clean(root))
		}
		out = append(out, Entry{Name: name, Path: dir, Size: w.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}
