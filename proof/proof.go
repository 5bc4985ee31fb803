/*
Package proof checks a built pinyin font by shaping the pattern phrases
with it.

Every phrase a pattern was authored for is shaped, and the glyph at each
homograph position is compared to the glyph the font's variation sequences
assign to the expected reading. Shaping uses the go-text HarfBuzz port, so
the check does not depend on how the GSUB table was compiled.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package proof

import (
	"fmt"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/harfbuzz"
	"github.com/go-text/typesetting/language"
	"github.com/npillmayer/schuko/tracing"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/internal/fontload"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/patterns"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/pinyin"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/variant"
)

// tracer writes to trace with key 'mengshen'
func tracer() tracing.Trace {
	return tracing.Select("mengshen")
}

// Mismatch is a phrase position showing the wrong glyph.
type Mismatch struct {
	Phrase string
	At     int
	Want   font.GID
	Have   font.GID
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s[%d]: expected glyph %d, have %d", m.Phrase, m.At, m.Want, m.Have)
}

// Report is the result of a proof run.
type Report struct {
	Fontname   string
	Glyphs     int
	Checked    int
	Mismatches []Mismatch
	Warnings   []ot.Warning
}

// OK reports whether all checks passed.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0 && r.Glyphs <= ot.MaxGlyphs
}

// Shaper shapes Chinese text with a font.
type Shaper struct {
	font *harfbuzz.Font
	lang language.Language
}

// NewShaper creates a shaper for a binary font.
func NewShaper(f *fontload.BinaryFont) *Shaper {
	return &Shaper{
		font: harfbuzz.NewFont(f.Face),
		lang: language.NewLanguage("zh-Hans"),
	}
}

// Shape returns the glyphs of a piece of text.
func (s *Shaper) Shape(text []rune) []font.GID {
	buf := harfbuzz.NewBuffer()
	buf.AddRunes(text, 0, -1)
	buf.Props.Language = s.lang
	buf.GuessSegmentProperties()
	buf.Shape(s.font, nil)
	glyphs := make([]font.GID, len(buf.Info))
	for i, info := range buf.Info {
		glyphs[i] = font.GID(info.Glyph)
	}
	return glyphs
}

// Check shapes every pattern phrase with a built font.
func Check(f *fontload.BinaryFont, store *patterns.Store, src pinyin.Source) (*Report, error) {
	rep := &Report{Fontname: f.Fontname, Glyphs: f.NumGlyphs()}
	ws := &ot.Warnings{}
	if rep.Glyphs > ot.MaxGlyphs {
		e := ot.Errorf(ot.BudgetExceeded, f.Fontname, "font has %d glyphs", rep.Glyphs)
		e.Count = rep.Glyphs
		return rep, e
	}
	c := &checker{font: f, shaper: NewShaper(f), report: rep, ws: ws}
	for _, rec := range store.Single {
		sel := variant.IVSBase + 2 + rune(rec.ReadingIndex)
		for _, t := range rec.Templates {
			c.check(t.Phrase, []int{t.At}, func(int) (rune, bool) { return sel, true })
		}
	}
	for _, pt := range []*patterns.PhraseTable{store.Dual, store.Exceptions} {
		for _, p := range pt.Phrases {
			var at []int
			targets := make(map[int]patterns.Target)
			for _, pos := range p.Applied() {
				target, ok := pt.Lookups[pos.Lookup][p.Text[pos.At]]
				if !ok {
					continue
				}
				at = append(at, pos.At)
				targets[pos.At] = target
			}
			text := p.Text
			c.check(text, at, func(i int) (rune, bool) {
				prons, _ := src.Pronunciations(text[i])
				return Selector(prons, targets[i])
			})
		}
	}
	rep.Warnings = ws.List()
	tracer().Infof("proof of %s: %d checked, %d mismatches", rep.Fontname, rep.Checked, len(rep.Mismatches))
	return rep, nil
}

// Selector returns the variation selector of the glyph a target denotes for
// a character with the given readings. A single reading character shows its
// nominal glyph, signalled by false.
func Selector(prons []string, t patterns.Target) (rune, bool) {
	if t.Variant >= 0 {
		return variant.IVSBase + rune(t.Variant), true
	}
	if len(prons) < 2 {
		return 0, false
	}
	key, err := pinyin.Simplify(t.Reading)
	if err != nil {
		return 0, false
	}
	for k, p := range prons {
		if pk, _ := pinyin.Simplify(p); pk == key {
			return variant.IVSBase + rune(k+1), true
		}
	}
	return 0, false
}

type checker struct {
	font   *fontload.BinaryFont
	shaper *Shaper
	report *Report
	ws     *ot.Warnings
}

// check shapes a phrase and compares the glyphs at positions at.
func (c *checker) check(phrase []rune, at []int, selector func(int) (rune, bool)) {
	text := string(phrase)
	glyphs := c.shaper.Shape(phrase)
	if len(glyphs) != len(phrase) {
		c.ws.Add(ot.MissingGlyph, text, "shaped to %d glyphs, skipped", len(glyphs))
		return
	}
	for _, i := range at {
		r := phrase[i]
		var want font.GID
		var ok bool
		if sel, isVariant := selector(i); isVariant {
			want, ok = c.font.VariationGlyph(r, sel)
		} else {
			want, ok = c.font.NominalGlyph(r)
		}
		if !ok {
			c.ws.Add(ot.MissingGlyph, text, "no expected glyph for %c", r)
			continue
		}
		c.report.Checked++
		if glyphs[i] != want {
			m := Mismatch{Phrase: text, At: i, Want: want, Have: glyphs[i]}
			tracer().Debugf("%s", m)
			c.report.Mismatches = append(c.report.Mismatches, m)
		}
	}
}
