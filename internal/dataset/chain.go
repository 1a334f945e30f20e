package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agentic-research/appseeds/api"
	"github.com/agentic-research/appseeds/internal/datasource"
)

var errFound = errors.New("found")

// Locate returns the first directory (depth first, lexical order) under the
// search root whose base name is name.
func Locate(src datasource.Source, name string) (string, error) {
	if strings.TrimSpace(name) != "" {
		var dir string
		err := src.WalkDirs(func(d string) error {
			if filepath.Base(d) == name {
				dir = d
				return errFound
			}
			return nil
		})
		if err != nil && !errors.Is(err, errFound) {
			return "", err
		}
		if dir != "" {
			return dir, nil
		}
	}
	available, err := src.Datasets()
	if err != nil {
		return "", fmt.Errorf("list datasets: %w", err)
	}
	return "", &api.DatasetNotFoundError{Name: name, Available: available}
}

// Chain returns the directory chain of dataset name, innermost first: the
// dataset's own directory, each ancestor, and finally the search root
// (datasource.RootDir). Index 0 has the highest precedence.
func Chain(src datasource.Source, name string) ([]string, error) {
	dir, err := Locate(src, name)
	if err != nil {
		return nil, err
	}
	var chain []string
	for {
		chain = append(chain, dir)
		if dir == datasource.RootDir {
			return chain, nil
		}
		dir = filepath.Dir(dir)
	}
}
