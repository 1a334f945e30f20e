package api

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxGeneratedID is the modulus applied to label checksums. Generated integer
// identifiers always fall in [0, MaxGeneratedID).
const MaxGeneratedID = 1<<30 - 1

// uuidPrefix is the fixed head of every identifier in UUID form.
const uuidPrefix = "00000000-0000-0000-0000-"

// IdentifierPair is the dual representation of one record's identity. UUID is
// always the zero-padded rendering of Integer, so both denote the same record.
type IdentifierPair struct {
	Integer int64  `json:"integer"`
	UUID    string `json:"uuid"`
}

// NewIdentifierPair derives both forms from n.
func NewIdentifierPair(n int64) IdentifierPair {
	return IdentifierPair{
		Integer: n,
		UUID:    fmt.Sprintf(uuidPrefix+"%012d", n),
	}
}

// Form returns the identifier in the requested form: int64 for IDInteger,
// string for IDUUID.
func (p IdentifierPair) Form(t IDType) any {
	if t == IDUUID {
		return p.UUID
	}
	return p.Integer
}

// String renders the identifier in the requested form as text.
func (p IdentifierPair) String(t IDType) string {
	if t == IDUUID {
		return p.UUID
	}
	return strconv.FormatInt(p.Integer, 10)
}

// Matches reports whether s equals either form of the pair, compared as text.
func (p IdentifierPair) Matches(s string) bool {
	s = strings.TrimSpace(s)
	return s == strconv.FormatInt(p.Integer, 10) || strings.EqualFold(s, p.UUID)
}
