// Package attrindex is an inverted index from attribute=value pairs to record
// ordinals, backed by roaring bitmaps. It answers "which records contain all of
// these pairs" with one bitmap intersection per pair.
package attrindex

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring"
)

// Index is built once and then only read; it is safe for concurrent readers.
type Index struct {
	postings map[string]*roaring.Bitmap
	all      *roaring.Bitmap
}

// New returns an empty index.
func New() *Index {
	return &Index{
		postings: make(map[string]*roaring.Bitmap),
		all:      roaring.New(),
	}
}

// Add registers record ord with its attributes.
func (ix *Index) Add(ord uint32, attrs map[string]any) {
	ix.all.Add(ord)
	for k, v := range attrs {
		key := Key(k, v)
		bm, ok := ix.postings[key]
		if !ok {
			bm = roaring.New()
			ix.postings[key] = bm
		}
		bm.Add(ord)
	}
}

// Len is the number of indexed records.
func (ix *Index) Len() int { return int(ix.all.GetCardinality()) }

// Match returns the ordinals, ascending, of every record whose attributes are
// a superset of pred. An empty predicate matches every record.
func (ix *Index) Match(pred map[string]any) []uint32 {
	result := ix.all.Clone()
	for k, v := range pred {
		bm, ok := ix.postings[Key(k, v)]
		if !ok {
			return nil
		}
		result.And(bm)
		if result.IsEmpty() {
			return nil
		}
	}
	return result.ToArray()
}

// Key canonicalizes one attribute pair. Integers of every width share one
// encoding so that an int from YAML equals an int64 identifier; strings and
// numbers never compare equal.
func Key(attr string, v any) string {
	var b strings.Builder
	b.WriteString(attr)
	b.WriteByte('=')
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		b.WriteString("z")
	case string:
		b.WriteString("s:")
		b.WriteString(strconv.Quote(t))
	case bool:
		b.WriteString("b:")
		b.WriteString(strconv.FormatBool(t))
	case int:
		writeInt(b, int64(t))
	case int8:
		writeInt(b, int64(t))
	case int16:
		writeInt(b, int64(t))
	case int32:
		writeInt(b, int64(t))
	case int64:
		writeInt(b, t)
	case uint:
		writeUint(b, uint64(t))
	case uint8:
		writeUint(b, uint64(t))
	case uint16:
		writeUint(b, uint64(t))
	case uint32:
		writeUint(b, uint64(t))
	case uint64:
		writeUint(b, t)
	case float32:
		writeFloat(b, float64(t))
	case float64:
		writeFloat(b, t)
	case time.Time:
		b.WriteString("t:")
		b.WriteString(t.UTC().Format(time.RFC3339Nano))
	case []any:
		b.WriteString("a[")
		for i, e := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			writeValue(b, e)
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("m{")
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			writeValue(b, t[k])
		}
		b.WriteByte('}')
	default:
		fmt.Fprintf(b, "%T:%v", v, v)
	}
}

func writeInt(b *strings.Builder, n int64) {
	b.WriteString("i:")
	b.WriteString(strconv.FormatInt(n, 10))
}

func writeUint(b *strings.Builder, n uint64) {
	if n <= math.MaxInt64 {
		writeInt(b, int64(n))
		return
	}
	b.WriteString("i:")
	b.WriteString(strconv.FormatUint(n, 10))
}

func writeFloat(b *strings.Builder, f float64) {
	b.WriteString("f:")
	b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}
