package ot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// MaxGlyphs is the size of the 16-bit glyph id space of the binary format.
const MaxGlyphs = 65536

// Table keys as written by the font codec.
const (
	keyCMap       = "cmap"
	keyCMapUVS    = "cmap_uvs"
	keyGlyphOrder = "glyph_order"
	keyGlyf       = "glyf"
	keyGSUB       = "GSUB"
	keyHead       = "head"
)

// Tables is the JSON table set of a font, as produced and consumed by the
// external font codec.
//
// Tables not modelled here are kept as raw JSON and written back unchanged.
type Tables struct {
	CMap       *CMap
	CMapUVS    map[UVSKey]GlyphName
	GlyphOrder []GlyphName
	Glyf       map[GlyphName]*Glyph
	GSUB       *GSUB
	other      map[string]json.RawMessage
}

// NewTables creates an empty table set.
func NewTables() *Tables {
	return &Tables{
		CMap:    NewCMap(),
		CMapUVS: make(map[UVSKey]GlyphName),
		Glyf:    make(map[GlyphName]*Glyph),
		other:   make(map[string]json.RawMessage),
	}
}

// ParseTables decodes a JSON table set.
func ParseTables(data []byte) (*Tables, error) {
	t := NewTables()
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("cannot decode font tables: %w", err)
	}
	return t, nil
}

// Clone returns a copy of t which may be modified without affecting t.
// Glyphs are shared and must be replaced, not modified in place.
func (t *Tables) Clone() *Tables {
	c := NewTables()
	for cp, cid := range t.CMap.m {
		c.CMap.m[cp] = cid
	}
	for k, v := range t.CMapUVS {
		c.CMapUVS[k] = v
	}
	c.GlyphOrder = append([]GlyphName(nil), t.GlyphOrder...)
	for k, v := range t.Glyf {
		c.Glyf[k] = v
	}
	c.GSUB = t.GSUB
	for k, v := range t.other {
		c.other[k] = v
	}
	return c
}

// Glyph returns the glyph named g, or nil.
func (t *Tables) Glyph(g GlyphName) *Glyph {
	return t.Glyf[g]
}

// Raw returns the undecoded JSON of a table not modelled by Tables.
func (t *Tables) Raw(key string) (json.RawMessage, bool) {
	r, ok := t.other[key]
	return r, ok
}

// SetRaw replaces the JSON of a table not modelled by Tables.
func (t *Tables) SetRaw(key string, data json.RawMessage) {
	t.other[key] = data
}

// UnitsPerEm reads the units per em from the head table. It returns 0 if no
// head table is present.
func (t *Tables) UnitsPerEm() float64 {
	raw, ok := t.other[keyHead]
	if !ok {
		return 0
	}
	var head struct {
		UnitsPerEm float64 `json:"unitsPerEm"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		tracer().Errorf("cannot decode table head: %v", err)
		return 0
	}
	return head.UnitsPerEm
}

// UnmarshalJSON decodes a table set.
func (t *Tables) UnmarshalJSON(data []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	*t = *NewTables()
	if raw, ok := all[keyCMap]; ok {
		if err := json.Unmarshal(raw, t.CMap); err != nil {
			return fmt.Errorf("table cmap: %w", err)
		}
		delete(all, keyCMap)
	}
	if raw, ok := all[keyCMapUVS]; ok {
		var uvs map[string]GlyphName
		if err := json.Unmarshal(raw, &uvs); err != nil {
			return fmt.Errorf("table cmap_uvs: %w", err)
		}
		for k, g := range uvs {
			key, err := ParseUVSKey(k)
			if err != nil {
				return fmt.Errorf("table cmap_uvs: %w", err)
			}
			t.CMapUVS[key] = g
		}
		delete(all, keyCMapUVS)
	}
	if raw, ok := all[keyGlyphOrder]; ok {
		if err := json.Unmarshal(raw, &t.GlyphOrder); err != nil {
			return fmt.Errorf("table glyph_order: %w", err)
		}
		delete(all, keyGlyphOrder)
	}
	if raw, ok := all[keyGlyf]; ok {
		if err := json.Unmarshal(raw, &t.Glyf); err != nil {
			return fmt.Errorf("table glyf: %w", err)
		}
		delete(all, keyGlyf)
	}
	if raw, ok := all[keyGSUB]; ok {
		t.GSUB = &GSUB{}
		if err := json.Unmarshal(raw, t.GSUB); err != nil {
			return fmt.Errorf("table GSUB: %w", err)
		}
		delete(all, keyGSUB)
	}
	t.other = all
	return nil
}

// MarshalJSON encodes the table set. Map keys are written in sorted order,
// so equal table sets produce identical bytes.
func (t *Tables) MarshalJSON() ([]byte, error) {
	all := make(map[string]any, len(t.other)+5)
	for k, v := range t.other {
		all[k] = v
	}
	all[keyCMap] = t.CMap
	if len(t.CMapUVS) > 0 {
		uvs := make(map[string]GlyphName, len(t.CMapUVS))
		for k, g := range t.CMapUVS {
			uvs[k.String()] = g
		}
		all[keyCMapUVS] = uvs
	}
	if t.GlyphOrder != nil {
		all[keyGlyphOrder] = t.GlyphOrder
	}
	all[keyGlyf] = t.Glyf
	if t.GSUB != nil {
		all[keyGSUB] = t.GSUB
	}
	return json.Marshal(all)
}

// --- cmap ------------------------------------------------------------------

// CMap maps Unicode code points to base glyphs. It is passed explicitly to
// every component needing character to glyph lookups.
type CMap struct {
	m map[rune]CID
}

// NewCMap creates an empty cmap.
func NewCMap() *CMap {
	return &CMap{m: make(map[rune]CID)}
}

// Lookup returns the base glyph for code point r.
func (c *CMap) Lookup(r rune) (CID, bool) {
	if c == nil {
		return "", false
	}
	cid, ok := c.m[r]
	return cid, ok
}

// Set maps code point r to glyph cid.
func (c *CMap) Set(r rune, cid CID) {
	c.m[r] = cid
}

// Len returns the number of mapped code points.
func (c *CMap) Len() int {
	if c == nil {
		return 0
	}
	return len(c.m)
}

// Codepoints returns all mapped code points in ascending order.
func (c *CMap) Codepoints() []rune {
	cps := make([]rune, 0, len(c.m))
	for r := range c.m {
		cps = append(cps, r)
	}
	sort.Slice(cps, func(i, j int) bool { return cps[i] < cps[j] })
	return cps
}

// CodepointsOf returns all code points mapping to cid, in ascending order.
func (c *CMap) CodepointsOf(cid CID) []rune {
	var cps []rune
	for r, g := range c.m {
		if g == cid {
			cps = append(cps, r)
		}
	}
	sort.Slice(cps, func(i, j int) bool { return cps[i] < cps[j] })
	return cps
}

// UnmarshalJSON decodes a cmap keyed by decimal code points.
func (c *CMap) UnmarshalJSON(data []byte) error {
	var raw map[string]CID
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.m = make(map[rune]CID, len(raw))
	for k, cid := range raw {
		cp, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("malformed code point %q: %w", k, err)
		}
		c.m[rune(cp)] = cid
	}
	return nil
}

// MarshalJSON encodes a cmap keyed by decimal code points.
func (c *CMap) MarshalJSON() ([]byte, error) {
	raw := make(map[string]CID, len(c.m))
	for cp, cid := range c.m {
		raw[strconv.Itoa(int(cp))] = cid
	}
	return json.Marshal(raw)
}
