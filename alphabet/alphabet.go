/*
Package alphabet imports the glyphs of the pinyin letters from a Latin font.

Letter glyphs are renamed to `py_alphabet_<token>`, where token is the
ASCII key of the letter (see package pinyin). Glyphs a letter references,
e.g. a separate accent, are imported as `py_component_<name>`.

A letter without a precomposed code point, e.g. ê̄, is built as a composite
of its base letter and the combining mark, both taken from the cmap.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package alphabet

import (
	"fmt"
	"sort"

	"github.com/npillmayer/schuko/tracing"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/pinyin"
)

// tracer writes to trace with key 'mengshen'
func tracer() tracing.Trace {
	return tracing.Select("mengshen")
}

// Glyph name prefixes of imported glyphs.
const (
	LetterPrefix    = "py_alphabet_"
	ComponentPrefix = "py_component_"
)

// LetterGlyph returns the name of the glyph for a letter token.
func LetterGlyph(token string) ot.GlyphName {
	return ot.GlyphName(LetterPrefix + token)
}

// Letter describes one imported letter glyph.
type Letter struct {
	Text          string
	Token         string
	Glyph         ot.GlyphName
	AdvanceWidth  float64
	AdvanceHeight float64
}

// Alphabet is a set of letter glyphs keyed by token, together with the
// glyph data to merge into the target font.
type Alphabet struct {
	letters map[string]*Letter
	glyphs  map[ot.GlyphName]*ot.Glyph
}

// New creates an empty alphabet.
func New() *Alphabet {
	return &Alphabet{
		letters: make(map[string]*Letter),
		glyphs:  make(map[ot.GlyphName]*ot.Glyph),
	}
}

// Add puts a letter glyph into the alphabet.
func (a *Alphabet) Add(letter string, g *ot.Glyph) *Letter {
	token, ok := pinyin.LetterToken(letter)
	if !ok {
		panic("alphabet: not a pinyin letter: " + letter)
	}
	l := &Letter{
		Text:          letter,
		Token:         token,
		Glyph:         LetterGlyph(token),
		AdvanceWidth:  g.AdvanceWidth,
		AdvanceHeight: g.AdvanceHeight,
	}
	a.letters[token] = l
	a.glyphs[l.Glyph] = g
	return l
}

// Letter returns the letter for a token.
func (a *Alphabet) Letter(token string) (*Letter, bool) {
	l, ok := a.letters[token]
	return l, ok
}

// LetterOf returns the letter for its text, e.g. "ǚ".
func (a *Alphabet) LetterOf(letter string) (*Letter, bool) {
	token, ok := pinyin.LetterToken(letter)
	if !ok {
		return nil, false
	}
	return a.Letter(token)
}

// Len returns the number of letters.
func (a *Alphabet) Len() int {
	return len(a.letters)
}

// Glyphs returns all glyphs to merge into the target font, letters and
// components alike.
func (a *Alphabet) Glyphs() map[ot.GlyphName]*ot.Glyph {
	return a.glyphs
}

// Tokens returns the tokens of all letters, sorted.
func (a *Alphabet) Tokens() []string {
	tokens := make([]string, 0, len(a.letters))
	for t := range a.letters {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// Extract imports every pinyin letter found in the cmap of a Latin font.
// Letters the font lacks are reported as warnings; the reference letter is
// required.
//
// A letter glyph without its own advance height gets the font's units per
// em.
func Extract(latin *ot.Tables, reference rune) (*Alphabet, []ot.Warning, error) {
	a := New()
	ws := &ot.Warnings{}
	upm := latin.UnitsPerEm()
	renamed := make(map[ot.GlyphName]ot.GlyphName)
	for _, letter := range pinyin.Letters() {
		src, err := letterGlyph(latin, letter)
		if err != nil {
			ws.Add(ot.MissingGlyph, letter, "%v", err)
			continue
		}
		g := src.Clone()
		if g.AdvanceHeight == 0 {
			g.AdvanceHeight = upm
		}
		if err := a.importReferences(latin, g, renamed, 0); err != nil {
			return nil, nil, err
		}
		a.Add(letter, g)
	}
	if _, ok := a.LetterOf(string(reference)); !ok {
		return nil, nil, ot.Errorf(ot.ConfigurationError, string(reference),
			"reference letter missing from Latin font")
	}
	tracer().Infof("imported %d letters and %d components", a.Len(), len(a.glyphs)-a.Len())
	return a, ws.List(), nil
}

// letterGlyph finds the glyph of a letter in a Latin font. A letter of more
// than one code point becomes a composite referencing the glyphs of its
// code points. Marks of zero width are placed at the advance of the glyph
// before them, spacing marks are centered on it.
func letterGlyph(latin *ot.Tables, letter string) (*ot.Glyph, error) {
	var (
		names []ot.GlyphName
		glyph []*ot.Glyph
	)
	for _, r := range letter {
		cid, ok := latin.CMap.Lookup(r)
		if !ok || latin.Glyph(cid.Glyph()) == nil {
			return nil, fmt.Errorf("letter not in Latin font, U+%04X missing", r)
		}
		names = append(names, cid.Glyph())
		glyph = append(glyph, latin.Glyph(cid.Glyph()))
	}
	if len(glyph) == 1 {
		return glyph[0], nil
	}
	base := glyph[0]
	g := &ot.Glyph{
		AdvanceWidth:  base.AdvanceWidth,
		AdvanceHeight: base.AdvanceHeight,
		Contours:      []byte("[]"),
		References:    []ot.Reference{ot.Identity(names[0])},
	}
	for i, mark := range glyph[1:] {
		ref := ot.Identity(names[i+1])
		if mark.AdvanceWidth == 0 {
			ref.X = base.AdvanceWidth
		} else {
			ref.X = (base.AdvanceWidth - mark.AdvanceWidth) / 2
		}
		g.References = append(g.References, ref)
	}
	return g, nil
}

// maxDepth bounds component nesting; deeper nesting means a cycle.
const maxDepth = 8

func (a *Alphabet) importReferences(latin *ot.Tables, g *ot.Glyph,
	renamed map[ot.GlyphName]ot.GlyphName, depth int) error {
	//
	if depth > maxDepth {
		return ot.Errorf(ot.ConfigurationError, "Latin font", "component references nested too deep")
	}
	for i, ref := range g.References {
		if name, ok := renamed[ref.Glyph]; ok {
			g.References[i].Glyph = name
			continue
		}
		src := latin.Glyph(ref.Glyph)
		if src == nil {
			return ot.Errorf(ot.ConfigurationError, string(ref.Glyph), "component missing from Latin font")
		}
		name := ot.GlyphName(ComponentPrefix + string(ref.Glyph))
		renamed[ref.Glyph] = name
		comp := src.Clone()
		if err := a.importReferences(latin, comp, renamed, depth+1); err != nil {
			return err
		}
		a.glyphs[name] = comp
		g.References[i].Glyph = name
	}
	return nil
}
