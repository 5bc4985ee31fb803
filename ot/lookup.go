package ot

import (
	"encoding/json"
	"fmt"
	"sort"
)

// GSUB is the glyph substitution table in the codec's JSON representation.
//
// Lookups are referenced by name from Features, features are referenced by
// name from Languages, and LookupOrder fixes the order of execution.
type GSUB struct {
	Languages   map[string]LanguageSystem `json:"languages"`
	Features    map[string][]string       `json:"features"`
	Lookups     map[string]Lookup         `json:"-"`
	LookupOrder []string                  `json:"lookupOrder"`
}

// LanguageSystem lists the features active for a script/language pair.
type LanguageSystem struct {
	Features []string `json:"features"`
}

// NewGSUB creates an empty GSUB table.
func NewGSUB() *GSUB {
	return &GSUB{
		Languages: make(map[string]LanguageSystem),
		Features:  make(map[string][]string),
		Lookups:   make(map[string]Lookup),
	}
}

// LookupNames returns the names of all lookups in ascending order.
func (g *GSUB) LookupNames() []string {
	names := make([]string, 0, len(g.Lookups))
	for n := range g.Lookups {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup types as written on the wire.
const (
	TypeSingle    = "gsub_single"
	TypeAlternate = "gsub_alternate"
	TypeChaining  = "gsub_chaining"
)

// Lookup is one of *SingleSubstitution, *AlternateSubstitution,
// *ChainingContextual or *OpaqueLookup. The set is closed.
type Lookup interface {
	LookupType() string
	isLookup()
}

// SingleSubstitution replaces one glyph by another.
type SingleSubstitution struct {
	Mapping map[GlyphName]GlyphName
}

// NewSingleSubstitution creates an empty single substitution.
func NewSingleSubstitution() *SingleSubstitution {
	return &SingleSubstitution{Mapping: make(map[GlyphName]GlyphName)}
}

// LookupType is part of interface Lookup.
func (*SingleSubstitution) LookupType() string { return TypeSingle }
func (*SingleSubstitution) isLookup()          {}

// AlternateSubstitution offers an ordered list of alternates for a glyph.
type AlternateSubstitution struct {
	Alternates map[GlyphName][]GlyphName
}

// NewAlternateSubstitution creates an empty alternate substitution.
func NewAlternateSubstitution() *AlternateSubstitution {
	return &AlternateSubstitution{Alternates: make(map[GlyphName][]GlyphName)}
}

// LookupType is part of interface Lookup.
func (*AlternateSubstitution) LookupType() string { return TypeAlternate }
func (*AlternateSubstitution) isLookup()          {}

// ChainingContextual holds an ordered list of rules. At each position the
// first matching rule applies, so rule order is significant.
type ChainingContextual struct {
	Rules []ChainingRule
}

// LookupType is part of interface Lookup.
func (*ChainingContextual) LookupType() string { return TypeChaining }
func (*ChainingContextual) isLookup()          {}

// ChainingRule matches a sequence of glyph sets. Match positions in
// [InputBegins, InputEnds) form the input sequence, the rest is backtrack
// and lookahead context. Apply lists the nested lookups to run; an empty
// apply list suppresses any substitution for the matched input.
type ChainingRule struct {
	Match       [][]GlyphName `json:"match"`
	Apply       []Apply       `json:"apply"`
	InputBegins int           `json:"inputBegins"`
	InputEnds   int           `json:"inputEnds"`
}

// Apply runs lookup Lookup at match position At.
type Apply struct {
	At     int    `json:"at"`
	Lookup string `json:"lookup"`
}

// OpaqueLookup is a lookup of a type the builder does not generate. It is
// read from existing fonts and written back unchanged.
type OpaqueLookup struct {
	Type string
	Raw  json.RawMessage
}

// LookupType is part of interface Lookup.
func (l *OpaqueLookup) LookupType() string { return l.Type }
func (*OpaqueLookup) isLookup()            {}

// --- JSON ------------------------------------------------------------------

type wireLookup struct {
	Type      string            `json:"type"`
	Flags     map[string]bool   `json:"flags"`
	Subtables []json.RawMessage `json:"subtables"`
}

// MarshalJSON encodes the GSUB table including its lookups.
func (g *GSUB) MarshalJSON() ([]byte, error) {
	type plain GSUB
	lookups := make(map[string]json.RawMessage, len(g.Lookups))
	for name, l := range g.Lookups {
		b, err := marshalLookup(l)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", name, err)
		}
		lookups[name] = b
	}
	return json.Marshal(struct {
		*plain
		Lookups map[string]json.RawMessage `json:"lookups"`
	}{(*plain)(g), lookups})
}

// UnmarshalJSON decodes the GSUB table including its lookups.
func (g *GSUB) UnmarshalJSON(data []byte) error {
	type plain GSUB
	aux := struct {
		*plain
		Lookups map[string]json.RawMessage `json:"lookups"`
	}{plain: (*plain)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	g.Lookups = make(map[string]Lookup, len(aux.Lookups))
	for name, raw := range aux.Lookups {
		l, err := unmarshalLookup(raw)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", name, err)
		}
		g.Lookups[name] = l
	}
	return nil
}

func marshalLookup(l Lookup) ([]byte, error) {
	w := wireLookup{Type: l.LookupType(), Flags: map[string]bool{}}
	var sub any
	switch l := l.(type) {
	case *SingleSubstitution:
		sub = l.Mapping
	case *AlternateSubstitution:
		sub = l.Alternates
	case *ChainingContextual:
		w.Subtables = make([]json.RawMessage, 0, len(l.Rules))
		for _, r := range l.Rules {
			if r.Apply == nil {
				r.Apply = []Apply{}
			}
			b, err := json.Marshal(r)
			if err != nil {
				return nil, err
			}
			w.Subtables = append(w.Subtables, b)
		}
		return json.Marshal(w)
	case *OpaqueLookup:
		return l.Raw, nil
	default:
		panic(fmt.Sprintf("ot: unknown lookup variant %T", l))
	}
	b, err := json.Marshal(sub)
	if err != nil {
		return nil, err
	}
	w.Subtables = []json.RawMessage{b}
	return json.Marshal(w)
}

func unmarshalLookup(raw json.RawMessage) (Lookup, error) {
	var w wireLookup
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	switch w.Type {
	case TypeSingle:
		l := NewSingleSubstitution()
		for _, st := range w.Subtables {
			var m map[GlyphName]GlyphName
			if err := json.Unmarshal(st, &m); err != nil {
				return nil, err
			}
			for k, v := range m {
				l.Mapping[k] = v
			}
		}
		return l, nil
	case TypeAlternate:
		l := NewAlternateSubstitution()
		for _, st := range w.Subtables {
			var m map[GlyphName][]GlyphName
			if err := json.Unmarshal(st, &m); err != nil {
				return nil, err
			}
			for k, v := range m {
				l.Alternates[k] = v
			}
		}
		return l, nil
	case TypeChaining:
		l := &ChainingContextual{}
		for _, st := range w.Subtables {
			var r ChainingRule
			if err := json.Unmarshal(st, &r); err != nil {
				return nil, err
			}
			l.Rules = append(l.Rules, r)
		}
		return l, nil
	}
	return &OpaqueLookup{Type: w.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
}
