// Package selection implements the option-selection core of the product page:
// the query-parameter codec, the variant resolver, option link building, and
// the optimistic navigation overlay. Everything here is pure; no I/O.
package selection

import (
	"net/url"
	"strings"
)

// Pair is one query parameter: an option name and its chosen value.
type Pair struct {
	Name  string
	Value string
}

// Params is the selection parameter set: an ordered mapping with unique keys.
// Unknown keys (pagination, filters) ride along untouched. Params values are
// never mutated in place; use Clone or With to derive a new set.
type Params struct {
	pairs []Pair
}

// NewParams builds a Params from pairs, keeping the first occurrence of a name.
func NewParams(pairs ...Pair) Params {
	p := Params{}
	for _, pair := range pairs {
		p = p.With(pair.Name, pair.Value)
	}
	return p
}

// DecodeQuery parses a raw query string preserving parameter order. Malformed
// escapes drop only the affected pair; duplicated names keep the first value so
// that a later Encode round-trips well-formed input losslessly.
func DecodeQuery(rawQuery string) Params {
	var p Params
	for _, chunk := range strings.Split(rawQuery, "&") {
		if chunk == "" {
			continue
		}
		name, value, _ := strings.Cut(chunk, "=")
		decodedName, err := url.QueryUnescape(name)
		if err != nil || decodedName == "" {
			continue
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		if _, exists := p.Get(decodedName); exists {
			continue
		}
		p.pairs = append(p.pairs, Pair{Name: decodedName, Value: decodedValue})
	}
	return p
}

// Encode serialises the set back into a query string in insertion order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, pair := range p.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(pair.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pair.Value))
	}
	return b.String()
}

// Get returns the value for name and whether the key is present.
func (p Params) Get(name string) (string, bool) {
	for _, pair := range p.pairs {
		if pair.Name == name {
			return pair.Value, true
		}
	}
	return "", false
}

// Len reports the number of entries.
func (p Params) Len() int { return len(p.pairs) }

// Pairs returns a copy of the entries in order.
func (p Params) Pairs() []Pair {
	return append([]Pair(nil), p.pairs...)
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	return Params{pairs: append([]Pair(nil), p.pairs...)}
}

// With returns a copy with name set to value: existing keys are overwritten in
// place (position preserved), new keys append.
func (p Params) With(name, value string) Params {
	out := p.Clone()
	for i, pair := range out.pairs {
		if pair.Name == name {
			out.pairs[i].Value = value
			return out
		}
	}
	out.pairs = append(out.pairs, Pair{Name: name, Value: value})
	return out
}

// Equal reports whether both sets hold the same pairs in the same order.
func (p Params) Equal(other Params) bool {
	if len(p.pairs) != len(other.pairs) {
		return false
	}
	for i := range p.pairs {
		if p.pairs[i] != other.pairs[i] {
			return false
		}
	}
	return true
}
