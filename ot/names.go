package ot

import (
	"fmt"
	"strconv"
	"strings"
)

// GlyphName is the name of a glyph in the glyf table. Glyph names are the
// foreign keys between glyf, glyph_order, cmap_uvs and GSUB.
type GlyphName string

// CID is the name of a base glyph as found in the cmap, i.e. the glyph a
// code point maps to before any substitution.
type CID string

// MaxVariants is the number of stylistic-set suffixes available per glyph
// (ss00 … ss99).
const MaxVariants = 100

// Variant returns the name of stylistic-set variant i of c, i.e. "{cid}.ssNN".
// Variant panics if i is not a two-digit index.
func (c CID) Variant(i int) GlyphName {
	if i < 0 || i >= MaxVariants {
		panic(fmt.Sprintf("ot: variant index out of range: %s.ss%d", c, i))
	}
	return GlyphName(fmt.Sprintf("%s.ss%02d", c, i))
}

// Glyph returns the unsuffixed glyph name of c.
func (c CID) Glyph() GlyphName {
	return GlyphName(c)
}

// SplitVariant splits a variant glyph name into its base glyph and index.
// If g carries no ".ssNN" suffix, ok is false.
func SplitVariant(g GlyphName) (cid CID, index int, ok bool) {
	s := string(g)
	dot := strings.LastIndex(s, ".ss")
	if dot < 0 || len(s)-dot != 5 {
		return CID(s), 0, false
	}
	n, err := strconv.Atoi(s[dot+3:])
	if err != nil {
		return CID(s), 0, false
	}
	return CID(s[:dot]), n, true
}

// UVSKey is a key into the cmap_uvs table: a base code point together with a
// variation selector.
type UVSKey struct {
	Codepoint rune
	Selector  rune
}

// String formats a key the way it is written on the wire, i.e. two decimal
// numbers separated by a space.
func (k UVSKey) String() string {
	return strconv.Itoa(int(k.Codepoint)) + " " + strconv.Itoa(int(k.Selector))
}

// ParseUVSKey parses a key of the form "34892 917984".
func ParseUVSKey(s string) (UVSKey, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return UVSKey{}, fmt.Errorf("malformed cmap_uvs key %q", s)
	}
	cp, err := strconv.Atoi(fields[0])
	if err != nil {
		return UVSKey{}, fmt.Errorf("malformed cmap_uvs key %q: %w", s, err)
	}
	sel, err := strconv.Atoi(fields[1])
	if err != nil {
		return UVSKey{}, fmt.Errorf("malformed cmap_uvs key %q: %w", s, err)
	}
	return UVSKey{Codepoint: rune(cp), Selector: rune(sel)}, nil
}

// --- Tags ------------------------------------------------------------------

// Tag is an OpenType tag, a 4-byte identifier for scripts, languages and
// features.
type Tag uint32

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	b := []byte(t)
	return Tag(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// Common tags of the pinyin font.
var (
	DFLT = T("DFLT")
	Hani = T("hani")
	Latn = T("latn")
)

// LangSysKey returns the key of a script/language pair in the GSUB
// languages table, e.g. "hani_DFLT".
func LangSysKey(script, lang Tag) string {
	return script.String() + "_" + lang.String()
}
