package api

import "strconv"

// SelectorKind tags the variant held by a Selector.
type SelectorKind int

const (
	SelectAll SelectorKind = iota
	SelectByID
	SelectByLabel
	SelectByPredicate
)

func (k SelectorKind) String() string {
	switch k {
	case SelectAll:
		return "all"
	case SelectByID:
		return "id"
	case SelectByLabel:
		return "label"
	case SelectByPredicate:
		return "predicate"
	default:
		return "unknown"
	}
}

// Selector chooses which records of a seed type a query returns.
// The zero value selects every record.
type Selector struct {
	kind      SelectorKind
	value     string
	predicate map[string]any
}

// All selects every record of the type.
func All() Selector { return Selector{kind: SelectAll} }

// ByID selects the record whose integer or uuid identifier equals id.
func ByID(id string) Selector { return Selector{kind: SelectByID, value: id} }

// ByIntegerID is ByID for an integer identifier.
func ByIntegerID(id int64) Selector { return ByID(strconv.FormatInt(id, 10)) }

// ByLabel selects the record defined under label.
func ByLabel(label string) Selector { return Selector{kind: SelectByLabel, value: label} }

// Where selects every record whose attributes contain all pairs of predicate.
// Reference keys in the predicate may be given as labels or identifiers.
func Where(predicate map[string]any) Selector {
	p := make(map[string]any, len(predicate))
	for k, v := range predicate {
		p[k] = v
	}
	return Selector{kind: SelectByPredicate, predicate: p}
}

func (s Selector) Kind() SelectorKind { return s.kind }

// Value is the id or label of a SelectByID or SelectByLabel selector.
func (s Selector) Value() string { return s.value }

// Predicate returns a copy of the pairs of a SelectByPredicate selector.
func (s Selector) Predicate() map[string]any {
	p := make(map[string]any, len(s.predicate))
	for k, v := range s.predicate {
		p[k] = v
	}
	return p
}
