package dataset

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/agentic-research/appseeds/internal/datasource"
	"github.com/agentic-research/appseeds/internal/seedfile"
)

// configName is the base name (without extension) of per-level config files.
const configName = "_config"

// seedFile is one parsed seed file: the raw, unresolved records of a type at
// one level of the chain.
type seedFile struct {
	path     string
	seedType string
	labels   []string
	records  map[string]map[string]any
}

// level holds everything read from one directory of the chain.
type level struct {
	dir    string
	seeds  []*seedFile
	config map[string]any
	docs   []*seedfile.Document
}

func isYAML(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yml" || ext == ".yaml"
}

// SeedType derives the seed type from a seed file path ("a/b/people.yml" -> "people").
func SeedType(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// readLevels loads every seed and config file of the chain exactly once.
func readLevels(src datasource.Source, loader seedfile.Loader, chain []string) ([]*level, error) {
	levels := make([]*level, 0, len(chain))
	for _, dir := range chain {
		files, err := src.Files(dir)
		if err != nil {
			return nil, err
		}
		lv := &level{dir: dir}
		for _, f := range files {
			if !isYAML(f) || strings.HasPrefix(filepath.Base(f), ".") {
				continue
			}
			doc, err := loader.Load(src.FS, f)
			if err != nil {
				return nil, err
			}
			if doc == nil {
				continue
			}
			lv.docs = append(lv.docs, doc)
			if SeedType(f) == configName {
				if lv.config == nil {
					lv.config = doc.Values
				}
				continue
			}
			sf, err := newSeedFile(f, doc)
			if err != nil {
				return nil, err
			}
			lv.seeds = append(lv.seeds, sf)
		}
		levels = append(levels, lv)
	}
	return levels, nil
}

func newSeedFile(path string, doc *seedfile.Document) (*seedFile, error) {
	sf := &seedFile{
		path:     path,
		seedType: SeedType(path),
		labels:   doc.Keys,
		records:  make(map[string]map[string]any, len(doc.Keys)),
	}
	for _, label := range doc.Keys {
		switch attrs := doc.Values[label].(type) {
		case map[string]any:
			sf.records[label] = attrs
		case nil:
			sf.records[label] = map[string]any{}
		default:
			return nil, fmt.Errorf("%s: record %s: attributes must be a mapping, got %T", path, label, attrs)
		}
	}
	return sf, nil
}

// fingerprint digests the expanded content of every file in the chain.
func fingerprint(levels []*level) string {
	h := blake3.New()
	for _, lv := range levels {
		for _, doc := range lv.docs {
			_, _ = h.Write([]byte(filepath.ToSlash(doc.Path)))
			_, _ = h.Write([]byte{0})
			_, _ = h.Write(doc.Content)
			_, _ = h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
