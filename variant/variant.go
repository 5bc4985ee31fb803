/*
Package variant assigns stylistic-set variants to hanzi and builds the
variation selector table.

For a character with glyph id cid the variants are

	cid.ss00      bare outline, copied from the base font
	cid           pronunciation glyph over cid.ss00         (one reading)
	cid.ss01      default reading over cid.ss00             (N ≥ 2 readings)
	cid           reference to cid.ss01                     (N ≥ 2 readings)
	cid.ss{2+i}   reading 1+i over cid.ss00                 (N ≥ 2 readings)

Every variant is also reachable through an ideographic variation sequence
`codepoint + (IVSBase + index)`.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package variant

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/compose"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/pinyin"
)

// tracer writes to trace with key 'mengshen'
func tracer() tracing.Trace {
	return tracing.Select("mengshen")
}

// IVSBase is the selector of variant ss00. It lies within the Variation
// Selectors Supplement (U+E0100 … U+E01EF).
const IVSBase = 0xE01E0

// maxSelector is the last code point of the Variation Selectors Supplement.
const maxSelector = 0xE01EF

// Entry describes the variants of one processed character.
type Entry struct {
	Character pinyin.Character
	CID       ot.CID
	Variants  []ot.GlyphName // ss00, ss01, …
	Readings  []*compose.PronunciationGlyph
}

// IsMulti reports whether the character of e is a homograph.
func (e *Entry) IsMulti() bool {
	return e.Character.IsMulti()
}

// ReadingGlyph returns the glyph showing reading k of the character: ss{k+1}
// for a homograph, the redefined base glyph for a single reading.
func (e *Entry) ReadingGlyph(k int) (ot.GlyphName, bool) {
	if k < 0 || k >= len(e.Character.Pronunciations) {
		return "", false
	}
	if !e.IsMulti() {
		return e.CID.Glyph(), true
	}
	return e.CID.Variant(k + 1), true
}

// PatternGlyph returns the glyph selected by a contextual pattern with
// reading index idx, i.e. ss{2+idx}, addressing reading 1+idx.
func (e *Entry) PatternGlyph(idx int) (ot.GlyphName, bool) {
	return e.ReadingGlyph(1 + idx)
}

// Input collects what Assign needs.
type Input struct {
	CMap   *ot.CMap
	Glyf   map[ot.GlyphName]*ot.Glyph // base glyphs, not modified
	Source pinyin.Source
	Engine *compose.Engine
}

// Result is the glyph table augmentation produced by Assign.
type Result struct {
	Glyphs   map[ot.GlyphName]*ot.Glyph // variants, redefined base glyphs and pronunciation glyphs
	UVS      map[ot.UVSKey]ot.GlyphName
	Entries  []*Entry      // sorted by code point
	Aliases  map[rune]rune // code point → processed code point sharing its glyph
	Warnings []ot.Warning
	byCID    map[ot.CID]*Entry
}

// Entry returns the entry for a base glyph.
func (r *Result) Entry(cid ot.CID) (*Entry, bool) {
	e, ok := r.byCID[cid]
	return e, ok
}

// Assign creates the variants of every character of the pinyin source
// which the base font contains.
//
// Characters missing from the cmap or the glyf table are skipped with a
// warning. Code points sharing a glyph with a lower code point are recorded
// as aliases and not processed again.
func Assign(in Input) (*Result, error) {
	res := &Result{
		Glyphs:  make(map[ot.GlyphName]*ot.Glyph),
		UVS:     make(map[ot.UVSKey]ot.GlyphName),
		Aliases: make(map[rune]rune),
		byCID:   make(map[ot.CID]*Entry),
	}
	ws := &ot.Warnings{}
	owner := make(map[ot.CID]rune)
	for _, ch := range in.Source.Characters() {
		cid, ok := in.CMap.Lookup(ch.Codepoint)
		if !ok {
			ws.Add(ot.MissingGlyph, fmt.Sprintf("%c", ch.Codepoint), "no glyph in cmap, skipped")
			continue
		}
		if first, dup := owner[cid]; dup {
			res.Aliases[ch.Codepoint] = first
			tracer().Debugf("%c shares glyph %s with %c", ch.Codepoint, cid, first)
			continue
		}
		base := in.Glyf[cid.Glyph()]
		if base == nil {
			ws.Add(ot.MissingGlyph, fmt.Sprintf("%c", ch.Codepoint), "glyph %s not in glyf table, skipped", cid)
			continue
		}
		if len(ch.Pronunciations) == 0 {
			ws.Add(ot.MissingGlyph, fmt.Sprintf("%c", ch.Codepoint), "no pronunciation, skipped")
			continue
		}
		owner[cid] = ch.Codepoint
		e, err := assign(ch, cid, base, in.Engine, res.Glyphs)
		if err != nil {
			return nil, err
		}
		res.Entries = append(res.Entries, e)
		res.byCID[cid] = e
		for i, v := range e.Variants {
			res.UVS[ot.UVSKey{Codepoint: ch.Codepoint, Selector: rune(IVSBase + i)}] = v
		}
	}
	for _, p := range in.Engine.Glyphs() {
		res.Glyphs[p.Name()] = p.Glyph()
	}
	res.Warnings = ws.List()
	tracer().Infof("assigned variants to %d characters, %d aliases, %d skipped",
		len(res.Entries), len(res.Aliases), len(res.Warnings))
	return res, nil
}

func assign(ch pinyin.Character, cid ot.CID, base *ot.Glyph, engine *compose.Engine,
	glyphs map[ot.GlyphName]*ot.Glyph) (*Entry, error) {
	//
	n := len(ch.Pronunciations)
	count := 1
	if n > 1 {
		count = n + 1
	}
	if count > ot.MaxVariants {
		return nil, ot.Errorf(ot.ConfigurationError, fmt.Sprintf("%c", ch.Codepoint),
			"%d readings exceed the variant suffix range", n)
	}
	if count > maxSelector-IVSBase+1 {
		return nil, ot.Errorf(ot.ConfigurationError, fmt.Sprintf("%c", ch.Codepoint),
			"%d readings exceed the variation selector range", n)
	}
	e := &Entry{Character: ch, CID: cid}
	for _, p := range ch.Pronunciations {
		pg, err := engine.Glyph(p)
		if err != nil {
			return nil, fmt.Errorf("character %c: %w", ch.Codepoint, err)
		}
		e.Readings = append(e.Readings, pg)
	}
	bare := cid.Variant(0)
	glyphs[bare] = base.Clone()
	e.Variants = append(e.Variants, bare)
	if n == 1 {
		glyphs[cid.Glyph()] = annotated(e.Readings[0], bare)
		return e, nil
	}
	for k, pg := range e.Readings {
		v := cid.Variant(k + 1)
		glyphs[v] = annotated(pg, bare)
		e.Variants = append(e.Variants, v)
	}
	def := glyphs[cid.Variant(1)]
	glyphs[cid.Glyph()] = &ot.Glyph{
		AdvanceWidth:   def.AdvanceWidth,
		AdvanceHeight:  def.AdvanceHeight,
		VerticalOrigin: def.VerticalOrigin,
		Contours:       []byte("[]"),
		References:     []ot.Reference{ot.Identity(cid.Variant(1))},
	}
	return e, nil
}

// annotated places a pronunciation glyph over a bare hanzi.
func annotated(p *compose.PronunciationGlyph, bare ot.GlyphName) *ot.Glyph {
	return &ot.Glyph{
		AdvanceWidth:   p.AdvanceWidth,
		AdvanceHeight:  p.AdvanceHeight,
		VerticalOrigin: p.VerticalOrigin,
		Contours:       []byte("[]"),
		References:     []ot.Reference{ot.Identity(p.Name()), ot.Identity(bare)},
	}
}
