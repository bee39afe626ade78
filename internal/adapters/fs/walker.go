// Package fs provides file system adapters for locating scene files.
package fs

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/zerr"
)

// Walker provides file walking functionality.
type Walker struct {
	ignores []string
}

// NewWalker creates a new Walker that skips names matching any of the ignore patterns.
func NewWalker(ignores ...string) *Walker {
	return &Walker{ignores: ignores}
}

// WalkFiles yields all files below root, skipping VCS metadata, the workspace directory
// and ignored names. Unreadable entries end the walk silently.
func (w *Walker) WalkFiles(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if path != root {
				if skipAction := w.shouldSkip(d); skipAction != nil {
					return skipAction
				}
			}

			if d.IsDir() || w.ignored(d.Name()) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// FindScenes returns every scene file below root in lexical order.
func (w *Walker) FindScenes(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSceneReadFailed.Error()), "dir", root)
	}
	if !info.IsDir() {
		return nil, zerr.With(domain.ErrSceneReadFailed, "dir", root)
	}

	var scenes []string
	for path := range w.WalkFiles(root) {
		if strings.HasSuffix(path, domain.SceneFileSuffix) {
			scenes = append(scenes, path)
		}
	}
	return scenes, nil
}

// shouldSkip returns filepath.SkipDir for directories that are never searched.
func (w *Walker) shouldSkip(d fs.DirEntry) error {
	if !d.IsDir() {
		return nil
	}
	switch name := d.Name(); {
	case name == ".git", name == ".jj", name == domain.ShadeDirName:
		return filepath.SkipDir
	case w.ignored(name):
		return filepath.SkipDir
	}
	return nil
}

func (w *Walker) ignored(name string) bool {
	for _, ignore := range w.ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}
