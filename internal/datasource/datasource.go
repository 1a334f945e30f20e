// Package datasource locates the search root that holds seed data and exposes
// it as a billy.Filesystem. All paths handed out by this package are relative
// to that root, with "." naming the root itself.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/agentic-research/appseeds/api"
)

// DefaultPackage is the conventional name of a bundled seed data package.
const DefaultPackage = "application_seed_data"

// RootDir is the path of the search root inside Source.FS.
const RootDir = "."

// Source is a search root: every directory below it is a candidate dataset.
type Source struct {
	// Root is the host path of the search root, for diagnostics.
	Root string
	FS   billy.Filesystem
}

// Directory uses an explicitly configured directory as the search root.
func Directory(path string) (Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s: %v", api.ErrInvalidConfiguration, path, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return Source{}, fmt.Errorf("%w: the %s directory does not appear to contain application seed data",
			api.ErrInvalidConfiguration, path)
	}
	return Source{Root: abs, FS: osfs.New(abs)}, nil
}

// Package locates a bundled data package named name. A package is a directory
// <search path>/<name> containing a "seeds" directory; the first search path
// that has one wins.
func Package(name string, searchPaths ...string) (Source, error) {
	if name == "" {
		name = DefaultPackage
	}
	for _, p := range searchPaths {
		if p == "" {
			continue
		}
		seeds := filepath.Join(p, name, "seeds")
		if info, err := os.Stat(seeds); err == nil && info.IsDir() {
			return Directory(seeds)
		}
	}
	return Source{}, fmt.Errorf("%w: the %s package does not appear to contain application seed data (searched %v)",
		api.ErrInvalidConfiguration, name, searchPaths)
}

// DefaultSearchPaths lists where bundled packages are looked up: the user data
// directory ($XDG_DATA_HOME or ~/.local/share) and /usr/local/share.
func DefaultSearchPaths() []string {
	var paths []string
	if x := os.Getenv("XDG_DATA_HOME"); x != "" {
		paths = append(paths, x)
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".local", "share"))
	}
	return append(paths, "/usr/local/share")
}

// WalkDirs calls fn for every directory below the root, depth first in
// lexical order. The root itself is not visited.
func (s Source) WalkDirs(fn func(dir string) error) error {
	return s.walk(RootDir, fn)
}

func (s Source) walk(dir string, fn func(string) error) error {
	entries, err := s.FS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		child := s.FS.Join(dir, e.Name())
		if err := fn(child); err != nil {
			return err
		}
		if err := s.walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// Datasets returns the sorted, de-duplicated base names of every directory
// below the root. Used to tell the user which dataset names are valid.
func (s Source) Datasets() ([]string, error) {
	seen := map[string]struct{}{}
	err := s.WalkDirs(func(dir string) error {
		seen[filepath.Base(dir)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Files lists the regular files directly inside dir, sorted by name.
func (s Source) Files(dir string) ([]string, error) {
	entries, err := s.FS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.Mode().IsRegular() {
			files = append(files, s.FS.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
