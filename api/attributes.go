package api

// Attributes is the attribute set of one resolved record.
type Attributes map[string]any

// Clone returns a deep copy. Nested maps and sequences are copied too, so the
// result can be mutated without touching the dataset.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = CloneValue(v)
	}
	return out
}

// Select returns only the named attributes.
func (a Attributes) Select(names ...string) Attributes {
	out := make(Attributes, len(names))
	for _, n := range names {
		if v, ok := a[n]; ok {
			out[n] = CloneValue(v)
		}
	}
	return out
}

// Reject returns every attribute except the named ones.
func (a Attributes) Reject(names ...string) Attributes {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		if _, ok := skip[k]; !ok {
			out[k] = CloneValue(v)
		}
	}
	return out
}

// Map renames attributes according to mapping (old name -> new name).
// Attributes absent from mapping keep their name.
func (a Attributes) Map(mapping map[string]string) Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		if n, ok := mapping[k]; ok {
			k = n
		}
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies the map and slice shapes produced by YAML decoding.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = CloneValue(e)
		}
		return out
	case Attributes:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}
