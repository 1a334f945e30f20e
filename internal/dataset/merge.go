package dataset

import (
	"github.com/agentic-research/appseeds/api"
	"github.com/agentic-research/appseeds/internal/attrindex"
)

// Record is one resolved record.
type Record struct {
	Label string
	// ID is the identifier in the form configured for the seed type:
	// int64 for api.IDInteger, string for api.IDUUID.
	ID   any
	Pair api.IdentifierPair
	// Source is the seed file the surviving definition came from.
	Source     string
	Attributes api.Attributes
}

// clone returns a Record whose attributes the caller may mutate freely.
func (r *Record) clone() Record {
	c := *r
	c.Attributes = r.Attributes.Clone()
	return c
}

// seedTable is the merged, resolved data of one seed type.
type seedTable struct {
	// labels in merge order: innermost level first, file order within a level.
	labels  []string
	records map[string]*Record
	attrs   *attrindex.Index
}

func (t *seedTable) ordered() []*Record {
	out := make([]*Record, len(t.labels))
	for i, l := range t.labels {
		out[i] = t.records[l]
	}
	return out
}

// mergeSeedData resolves every record of the chain and folds them into one
// table per seed type. Levels are innermost first and the first definition of
// a label wins, replacing ancestor definitions entirely.
func mergeSeedData(levels []*level, index LabelIndex, policy api.IDPolicy) map[string]*seedTable {
	resolver := NewResolver(index, policy)
	tables := map[string]*seedTable{}
	for _, lv := range levels {
		for _, sf := range lv.seeds {
			tbl := tables[sf.seedType]
			if tbl == nil {
				tbl = &seedTable{records: map[string]*Record{}}
				tables[sf.seedType] = tbl
			}
			form := policy.For(sf.seedType)
			for _, label := range sf.labels {
				if _, seen := tbl.records[label]; seen {
					continue
				}
				pair, _ := index.lookup(sf.seedType, label)
				attrs := resolver.Resolve(sf.records[label])
				attrs["id"] = pair.Form(form)
				tbl.records[label] = &Record{
					Label:      label,
					ID:         pair.Form(form),
					Pair:       pair,
					Source:     sf.path,
					Attributes: attrs,
				}
				tbl.labels = append(tbl.labels, label)
			}
		}
	}
	for _, tbl := range tables {
		tbl.attrs = attrindex.New()
		for i, l := range tbl.labels {
			tbl.attrs.Add(uint32(i), tbl.records[l].Attributes)
		}
	}
	return tables
}

// mergeConfig layers the per-level config values. Walking innermost first, a
// level only fills keys that no more specific level has set.
func mergeConfig(levels []*level) map[string]any {
	merged := map[string]any{}
	for _, lv := range levels {
		for k, v := range lv.config {
			if _, set := merged[k]; !set {
				merged[k] = api.CloneValue(v)
			}
		}
	}
	return merged
}
