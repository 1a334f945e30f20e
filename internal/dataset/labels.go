package dataset

import (
	"hash/crc32"
	"math"
	"strconv"
	"strings"

	"github.com/agentic-research/appseeds/api"
)

// LabelIndex maps seed type -> label -> identifier pair.
type LabelIndex map[string]map[string]api.IdentifierPair

// GenerateIdentifierPair derives the identifier of (seedType, label):
// CRC-32 (IEEE) of the concatenation, modulo api.MaxGeneratedID.
func GenerateIdentifierPair(seedType, label string) api.IdentifierPair {
	sum := crc32.ChecksumIEEE([]byte(seedType + label))
	return api.NewIdentifierPair(int64(sum % api.MaxGeneratedID))
}

// explicitPair converts an explicit id attribute into a pair. Integers (and
// strings holding one) are used as-is; any other value is hashed like a label
// so that the result stays deterministic.
func explicitPair(seedType string, id any) api.IdentifierPair {
	switch v := id.(type) {
	case int:
		if v >= 0 {
			return api.NewIdentifierPair(int64(v))
		}
	case int64:
		if v >= 0 {
			return api.NewIdentifierPair(v)
		}
	case uint64:
		if v <= math.MaxInt64 {
			return api.NewIdentifierPair(int64(v))
		}
	case float64:
		if v >= 0 && v == math.Trunc(v) && v <= math.MaxInt64 {
			return api.NewIdentifierPair(int64(v))
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n >= 0 {
			return api.NewIdentifierPair(n)
		}
		return GenerateIdentifierPair(seedType, v)
	}
	return GenerateIdentifierPair(seedType, toText(id))
}

// buildIndex assigns a pair to every (type, label) defined anywhere in the
// chain. Levels are innermost first and the first definition of a label wins,
// so the pair always belongs to the record that survives the merge. Distinct
// labels whose checksums collide are not detected.
func buildIndex(levels []*level) LabelIndex {
	idx := LabelIndex{}
	for _, lv := range levels {
		for _, sf := range lv.seeds {
			labels := idx[sf.seedType]
			if labels == nil {
				labels = map[string]api.IdentifierPair{}
				idx[sf.seedType] = labels
			}
			for _, label := range sf.labels {
				if _, seen := labels[label]; seen {
					continue
				}
				if id, ok := sf.records[label]["id"]; ok && id != nil {
					labels[label] = explicitPair(sf.seedType, id)
				} else {
					labels[label] = GenerateIdentifierPair(sf.seedType, label)
				}
			}
		}
	}
	return idx
}

// lookup returns the pair of label within seedType.
func (x LabelIndex) lookup(seedType, label string) (api.IdentifierPair, bool) {
	p, ok := x[seedType][label]
	return p, ok
}
