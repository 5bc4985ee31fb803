package ot

import (
	"bytes"
	"encoding/json"
)

// Glyph is an entry of the glyf table. A glyph either carries outline data
// (contours), references to other glyphs, or both.
//
// Fields of a glyph the builder does not interpret (hints, instructions, …)
// are kept in Extra and written back unchanged.
type Glyph struct {
	AdvanceWidth   float64         `json:"advanceWidth"`
	AdvanceHeight  float64         `json:"advanceHeight,omitempty"`
	VerticalOrigin float64         `json:"verticalOrigin,omitempty"`
	Contours       json.RawMessage `json:"contours,omitempty"`
	References     []Reference     `json:"references,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var glyphKeys = []string{"advanceWidth", "advanceHeight", "verticalOrigin", "contours", "references"}

// IsEmpty reports whether g has neither outline nor reference data.
func (g *Glyph) IsEmpty() bool {
	if g == nil {
		return true
	}
	return !hasContours(g.Contours) && len(g.References) == 0
}

func hasContours(c json.RawMessage) bool {
	c = bytes.TrimSpace(c)
	if len(c) == 0 || bytes.Equal(c, []byte("null")) {
		return false
	}
	return !bytes.Equal(bytes.Join(bytes.Fields(c), nil), []byte("[]"))
}

// Clone returns a deep copy of g.
func (g *Glyph) Clone() *Glyph {
	if g == nil {
		return nil
	}
	c := *g
	if g.Contours != nil {
		c.Contours = append(json.RawMessage(nil), g.Contours...)
	}
	if g.References != nil {
		c.References = append([]Reference(nil), g.References...)
	}
	if g.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(g.Extra))
		for k, v := range g.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &c
}

// UnmarshalJSON decodes a glyph, keeping unknown fields in Extra.
func (g *Glyph) UnmarshalJSON(b []byte) error {
	type plain Glyph
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, k := range glyphKeys {
		delete(all, k)
	}
	*g = Glyph(p)
	if len(all) > 0 {
		g.Extra = all
	}
	return nil
}

// MarshalJSON encodes a glyph together with its unknown fields.
func (g Glyph) MarshalJSON() ([]byte, error) {
	type plain Glyph
	b, err := json.Marshal(plain(g))
	if err != nil || len(g.Extra) == 0 {
		return b, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for k, v := range g.Extra {
		if _, known := all[k]; !known {
			all[k] = v
		}
	}
	return json.Marshal(all)
}

// Reference is a component of a composite glyph: another glyph placed at
// (X,Y) and transformed by the matrix [A B; C D].
type Reference struct {
	Glyph GlyphName `json:"glyph"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	A     float64   `json:"a"`
	B     float64   `json:"b"`
	C     float64   `json:"c"`
	D     float64   `json:"d"`
}

// Identity returns a reference to glyph g without any transformation.
func Identity(g GlyphName) Reference {
	return Reference{Glyph: g, A: 1, D: 1}
}

// UnmarshalJSON decodes a reference. A missing scale defaults to 1, as the
// codec omits identity scales.
func (r *Reference) UnmarshalJSON(b []byte) error {
	var raw struct {
		Glyph GlyphName `json:"glyph"`
		X     float64   `json:"x"`
		Y     float64   `json:"y"`
		A     *float64  `json:"a"`
		B     float64   `json:"b"`
		C     float64   `json:"c"`
		D     *float64  `json:"d"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Reference{Glyph: raw.Glyph, X: raw.X, Y: raw.Y, A: 1, B: raw.B, C: raw.C, D: 1}
	if raw.A != nil {
		r.A = *raw.A
	}
	if raw.D != nil {
		r.D = *raw.D
	}
	return nil
}
