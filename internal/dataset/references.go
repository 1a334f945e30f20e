package dataset

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/agentic-research/appseeds/api"
)

// referenceRule is one suffix of the reference naming convention.
type referenceRule struct {
	suffix string
	array  bool
}

// Longer suffixes first: "_uuids" must win over "_ids".
var referenceRules = []referenceRule{
	{suffix: "_uuids", array: true},
	{suffix: "_ids", array: true},
	{suffix: "_uuid"},
	{suffix: "_id"},
}

// ReferenceKey reports whether key names a reference attribute. It returns the
// default target seed type (the pluralized prefix) and whether the attribute
// holds a sequence of labels.
func ReferenceKey(key string) (seedType string, array, ok bool) {
	for _, r := range referenceRules {
		if prefix, found := strings.CutSuffix(key, r.suffix); found && prefix != "" {
			return pluralize(prefix), r.array, true
		}
	}
	return "", false, false
}

// pluralize maps a reference prefix onto its seed type. Singularizing first
// keeps prefixes that are already plural ("people_ids") intact.
func pluralize(prefix string) string {
	return inflection.Plural(inflection.Singular(prefix))
}

// splitOverride extracts a parenthesized type override: "(companies) acme" and
// "acme (companies)" both yield ("companies", "acme").
func splitOverride(s string) (seedType, rest string, ok bool) {
	open := strings.Index(s, "(")
	if open < 0 {
		return "", s, false
	}
	end := strings.LastIndex(s, ")")
	if end < open {
		return "", s, false
	}
	return strings.TrimSpace(s[open+1 : end]), strings.TrimSpace(s[:open] + s[end+1:]), true
}

// splitList parses "[a, b, c]" (brackets optional) into trimmed elements.
func splitList(s string) []any {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	var out []any
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Resolver rewrites label references into identifiers. Resolution is best
// effort: anything it cannot resolve is passed through unchanged.
type Resolver struct {
	index  LabelIndex
	policy api.IDPolicy
}

// NewResolver returns a Resolver over index using policy to pick id forms.
func NewResolver(index LabelIndex, policy api.IDPolicy) *Resolver {
	return &Resolver{index: index, policy: policy}
}

// Resolve returns a copy of attrs with every reference attribute rewritten.
func (r *Resolver) Resolve(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		seedType, array, ok := ReferenceKey(k)
		switch {
		case !ok:
			out[k] = api.CloneValue(v)
		case array:
			out[k] = r.many(seedType, v)
		default:
			out[k] = r.one(seedType, v)
		}
	}
	return out
}

func (r *Resolver) one(seedType string, v any) any {
	if v == nil {
		return nil
	}
	label := toText(v)
	if s, ok := v.(string); ok {
		if t, rest, found := splitOverride(s); found {
			seedType, label = t, rest
		}
	}
	labels, ok := r.index[seedType]
	if !ok {
		return api.CloneValue(v)
	}
	if pair, ok := labels[label]; ok {
		return pair.Form(r.policy.For(seedType))
	}
	return api.CloneValue(v)
}

func (r *Resolver) many(seedType string, v any) any {
	var elems []any
	switch t := v.(type) {
	case string:
		s := t
		if ot, rest, found := splitOverride(s); found {
			seedType, s = ot, rest
		}
		elems = splitList(s)
	case []any:
		elems = make([]any, 0, len(t))
		for i, e := range t {
			if s, ok := e.(string); ok && i == 0 {
				if ot, rest, found := splitOverride(s); found {
					seedType = ot
					if rest == "" {
						continue
					}
					e = rest
				}
			}
			elems = append(elems, api.CloneValue(e))
		}
	default:
		return api.CloneValue(v)
	}

	labels, ok := r.index[seedType]
	if !ok {
		return api.CloneValue(v)
	}
	form := r.policy.For(seedType)
	out := make([]any, len(elems))
	for i, e := range elems {
		if pair, found := labels[toText(e)]; found && e != nil {
			out[i] = pair.Form(form)
		} else {
			out[i] = e
		}
	}
	return out
}
