// Package seedfile reads one seed or config file: the file is first expanded
// as a text/template, then parsed as a YAML mapping whose key order is kept.
package seedfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"
)

// Document is the parsed content of one file.
type Document struct {
	Path string
	// Keys lists the top-level keys in file order.
	Keys   []string
	Values map[string]any
	// Content is the expanded template output that was parsed.
	Content []byte
}

// Loader turns a file path into a Document. Implementations return (nil, nil)
// when the file is absent or holds no data.
type Loader interface {
	Load(fs billy.Filesystem, path string) (*Document, error)
}

// TemplateLoader is the default Loader.
type TemplateLoader struct {
	// Now is the clock used by the date helpers. Defaults to time.Now.
	Now func() time.Time
	// Funcs are merged over the built-in helpers.
	Funcs template.FuncMap
}

// NewLoader returns a TemplateLoader using the wall clock.
func NewLoader() *TemplateLoader {
	return &TemplateLoader{Now: time.Now}
}

// Load implements Loader.
func (l *TemplateLoader) Load(fs billy.Filesystem, path string) (*Document, error) {
	raw, err := util.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	expanded, err := l.expand(path, raw)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(expanded)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc != nil {
		doc.Path = path
	}
	return doc, nil
}

func (l *TemplateLoader) expand(path string, raw []byte) ([]byte, error) {
	funcs := l.funcs()
	t, err := template.New(path).Funcs(funcs).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, map[string]any{"Path": path}); err != nil {
		return nil, fmt.Errorf("expand %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

func (l *TemplateLoader) funcs() template.FuncMap {
	now := l.Now
	if now == nil {
		now = time.Now
	}
	fm := template.FuncMap{
		"now":   func() time.Time { return now() },
		"today": func() string { return now().Format(time.DateOnly) },
		"daysAgo": func(n int) time.Time {
			return now().AddDate(0, 0, -n)
		},
		"monthsAgo": func(n int) time.Time {
			return now().AddDate(0, -n, 0)
		},
		"yearsAgo": func(n int) time.Time {
			return now().AddDate(-n, 0, 0)
		},
		"daysFromNow": func(n int) time.Time {
			return now().AddDate(0, 0, n)
		},
		"monthsFromNow": func(n int) time.Time {
			return now().AddDate(0, n, 0)
		},
		"date":     func(t time.Time) string { return t.Format(time.DateOnly) },
		"datetime": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
		"env":      os.Getenv,
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
	}
	for k, v := range l.Funcs {
		fm[k] = v
	}
	return fm
}

// Parse decodes expanded YAML. It returns (nil, nil) for an empty document.
func Parse(content []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}
	top := root.Content[0]
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		return nil, nil
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level must be a mapping, got %s", kindName(top.Kind))
	}

	doc := &Document{
		Values:  make(map[string]any, len(top.Content)/2),
		Content: content,
	}
	for i := 0; i+1 < len(top.Content); i += 2 {
		key := top.Content[i].Value
		var v any
		if err := top.Content[i+1].Decode(&v); err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		if _, dup := doc.Values[key]; !dup {
			doc.Keys = append(doc.Keys, key)
		}
		doc.Values[key] = normalize(v)
	}
	if len(doc.Keys) == 0 {
		return nil, nil
	}
	return doc, nil
}

// normalize converts map[any]any (non-string YAML keys) into map[string]any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
