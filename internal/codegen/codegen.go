// Package codegen renders the identifiers of a loaded dataset as Go constants,
// so application code can refer to seed records without hard-coding numbers.
package codegen

import (
	"bytes"
	"fmt"
	"go/token"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
	"mvdan.cc/gofumpt/format"

	"github.com/agentic-research/appseeds/internal/dataset"
)

// Generate returns a gofumpt-formatted Go file in package pkg declaring, for
// every record, a <Type><Label>ID integer constant and a <Type><Label>UUID
// string constant. Type is the singular of the seed type.
func Generate(d *dataset.Dataset, pkg string) ([]byte, error) {
	if !token.IsIdentifier(pkg) {
		return nil, fmt.Errorf("invalid package name %q", pkg)
	}
	types, err := d.SeedTypes()
	if err != nil {
		return nil, err
	}
	fp, err := d.Fingerprint()
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by appseeds gen; DO NOT EDIT.\n")
	fmt.Fprintf(&b, "// dataset: %s\n// fingerprint: %s\n\n", d.Name(), fp)
	fmt.Fprintf(&b, "package %s\n", pkg)

	used := map[string]string{}
	for _, seedType := range types {
		recs, err := d.All(seedType)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			continue
		}
		prefix := Identifier(inflection.Singular(seedType))
		fmt.Fprintf(&b, "\n// %s\nconst (\n", seedType)
		for _, r := range recs {
			name := prefix + Identifier(r.Label)
			if prev, dup := used[name]; dup {
				return nil, fmt.Errorf("%s.%s and %s both map to %s", seedType, r.Label, prev, name)
			}
			used[name] = seedType + "." + r.Label
			fmt.Fprintf(&b, "%sID = %d\n", name, r.Pair.Integer)
			fmt.Fprintf(&b, "%sUUID = %q\n", name, r.Pair.UUID)
		}
		b.WriteString(")\n")
	}

	out, err := format.Source(b.Bytes(), format.Options{})
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return out, nil
}

// Identifier converts a label or seed type into an exported Go identifier:
// "mega_corp" -> "MegaCorp", "2nd-floor" -> "X2ndFloor".
func Identifier(s string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		rs := []rune(part)
		rs[0] = unicode.ToUpper(rs[0])
		b.WriteString(string(rs))
	}
	id := b.String()
	if id == "" {
		return "X"
	}
	if r := []rune(id)[0]; !unicode.IsLetter(r) {
		id = "X" + id
	}
	return id
}
