package api

import (
	"fmt"
	"strings"
)

// IDType selects which form of an IdentifierPair is exposed to callers.
type IDType string

const (
	IDInteger IDType = "integer"
	IDUUID    IDType = "uuid"
)

// ParseIDType accepts "integer" or "uuid" (case-insensitive, blank means integer).
func ParseIDType(s string) (IDType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "integer", "int":
		return IDInteger, nil
	case "uuid":
		return IDUUID, nil
	default:
		return "", fmt.Errorf("%w: unknown id type %q (want integer or uuid)", ErrInvalidConfiguration, s)
	}
}

// IDPolicy decides the identifier form per seed type.
// Precedence: PerType override, then Default, then IDInteger.
type IDPolicy struct {
	Default IDType
	PerType map[string]IDType
}

// For returns the identifier form used for seedType.
func (p IDPolicy) For(seedType string) IDType {
	if t, ok := p.PerType[seedType]; ok && t != "" {
		return t
	}
	if p.Default != "" {
		return p.Default
	}
	return IDInteger
}

// ParseIDPolicy builds a policy from a default form and per-type overrides.
// Override keys may be given as the bare seed type ("companies") or with the
// "_id_type" suffix ("companies_id_type").
func ParseIDPolicy(def string, perType map[string]string) (IDPolicy, error) {
	d, err := ParseIDType(def)
	if err != nil {
		return IDPolicy{}, err
	}
	p := IDPolicy{Default: d}
	for k, v := range perType {
		t, err := ParseIDType(v)
		if err != nil {
			return IDPolicy{}, fmt.Errorf("id type for %s: %w", k, err)
		}
		if p.PerType == nil {
			p.PerType = make(map[string]IDType, len(perType))
		}
		p.PerType[strings.TrimSuffix(k, "_id_type")] = t
	}
	return p, nil
}
