package dataset

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Select evaluates a JSONPath expression against the resolved dataset viewed
// as {seed type: {label: attributes}}, e.g. "$.people.*.first_name".
func (d *Dataset) Select(expr string) ([]any, error) {
	s, err := d.current()
	if err != nil {
		return nil, err
	}
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}
	return x.Get(s.view()), nil
}

// view builds a detached copy of the data for JSONPath evaluation.
func (s *snapshot) view() map[string]any {
	root := make(map[string]any, len(s.tables))
	for t, tbl := range s.tables {
		m := make(map[string]any, len(tbl.labels))
		for _, l := range tbl.labels {
			m[l] = map[string]any(tbl.records[l].Attributes.Clone())
		}
		root[t] = m
	}
	return root
}
