package dataset

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/agentic-research/appseeds/api"
)

// Records is a query result in merge order.
type Records []Record

// ByID keys the records by the text form of their configured identifier.
func (rs Records) ByID() map[string]Record {
	out := make(map[string]Record, len(rs))
	for _, r := range rs {
		out[toText(r.ID)] = r
	}
	return out
}

// Labels lists the labels of the records in order.
func (rs Records) Labels() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Label
	}
	return out
}

func (s *snapshot) table(seedType string) (*seedTable, error) {
	tbl, ok := s.tables[seedType]
	if !ok {
		return nil, fmt.Errorf("%w: no seed data file could be found for %q", api.ErrUnknownSeedType, seedType)
	}
	return tbl, nil
}

// Fetch answers a query against seedType. Single-record selectors (ByID,
// ByLabel) return exactly one record or api.ErrRecordNotFound; All and Where
// return every match, possibly none.
func (d *Dataset) Fetch(seedType string, sel api.Selector) (Records, error) {
	switch sel.Kind() {
	case api.SelectByID:
		r, err := d.ByID(seedType, sel.Value())
		if err != nil {
			return nil, err
		}
		return Records{r}, nil
	case api.SelectByLabel:
		r, err := d.ByLabel(seedType, sel.Value())
		if err != nil {
			return nil, err
		}
		return Records{r}, nil
	case api.SelectByPredicate:
		return d.Where(seedType, sel.Predicate())
	default:
		return d.All(seedType)
	}
}

// All returns every resolved record of seedType.
func (d *Dataset) All(seedType string) (Records, error) {
	s, err := d.current()
	if err != nil {
		return nil, err
	}
	tbl, err := s.table(seedType)
	if err != nil {
		return nil, err
	}
	recs := tbl.ordered()
	out := make(Records, len(recs))
	for i, r := range recs {
		out[i] = r.clone()
	}
	return out, nil
}

// Labels lists the labels of seedType in merge order.
func (d *Dataset) Labels(seedType string) ([]string, error) {
	s, err := d.current()
	if err != nil {
		return nil, err
	}
	tbl, err := s.table(seedType)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), tbl.labels...), nil
}

// ByLabel returns the record defined under label.
func (d *Dataset) ByLabel(seedType, label string) (Record, error) {
	s, err := d.current()
	if err != nil {
		return Record{}, err
	}
	tbl, err := s.table(seedType)
	if err != nil {
		return Record{}, err
	}
	r, ok := tbl.records[label]
	if !ok {
		return Record{}, fmt.Errorf("%w: no seed data could be found for %q with label %s",
			api.ErrRecordNotFound, seedType, label)
	}
	return r.clone(), nil
}

// ByID returns the record whose integer or uuid identifier equals id.
func (d *Dataset) ByID(seedType, id string) (Record, error) {
	s, err := d.current()
	if err != nil {
		return Record{}, err
	}
	tbl, err := s.table(seedType)
	if err != nil {
		return Record{}, err
	}
	if label, ok := s.labelFor(seedType, id); ok {
		if r, ok := tbl.records[label]; ok {
			return r.clone(), nil
		}
	}
	return Record{}, fmt.Errorf("%w: no seed data could be found for %q with id %s",
		api.ErrRecordNotFound, seedType, id)
}

// Where returns every record whose attributes contain all pairs of pred.
// Reference keys in pred are resolved first, so they may name a label or an
// identifier.
func (d *Dataset) Where(seedType string, pred map[string]any) (Records, error) {
	s, err := d.current()
	if err != nil {
		return nil, err
	}
	tbl, err := s.table(seedType)
	if err != nil {
		return nil, err
	}
	resolved := NewResolver(s.index, s.policy).Resolve(pred)
	out := Records{}
	for _, ord := range tbl.attrs.Match(resolved) {
		out = append(out, tbl.records[tbl.labels[ord]].clone())
	}
	return out, nil
}

// LabelForIdentifier returns the label whose identifier pair contains id.
func (d *Dataset) LabelForIdentifier(seedType, id string) (string, bool) {
	s, err := d.current()
	if err != nil {
		return "", false
	}
	return s.labelFor(seedType, id)
}

// labelFor scans the merged labels of seedType in merge order, so the result
// is deterministic even if two labels share an identifier.
func (s *snapshot) labelFor(seedType, id string) (string, bool) {
	tbl, ok := s.tables[seedType]
	if !ok {
		return "", false
	}
	if u, err := uuid.Parse(id); err == nil {
		id = u.String()
	}
	for _, label := range tbl.labels {
		if p, ok := s.index.lookup(seedType, label); ok && p.Matches(id) {
			return label, true
		}
	}
	return "", false
}
