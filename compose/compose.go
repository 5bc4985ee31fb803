/*
Package compose builds pronunciation glyphs: composite glyphs made purely of
references to letter glyphs, laid out on the pinyin line above a hanzi.

One pronunciation glyph exists per distinct pronunciation, named by its
simplified key, and is shared by all characters with that reading.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package compose

import (
	"fmt"
	"math"
	"sort"

	"github.com/npillmayer/schuko/tracing"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/alphabet"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/pinyin"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/style"
)

// tracer writes to trace with key 'mengshen'
func tracer() tracing.Trace {
	return tracing.Select("mengshen")
}

// Epsilon is added to the vertical scale of every letter reference. The font
// codec drops a reference whose horizontal and vertical scales are
// identical.
const Epsilon = 0.001

// VerticalOriginRatio places the vertical origin of an annotated glyph.
const VerticalOriginRatio = 0.88

// PronunciationGlyph is the composite glyph of one pronunciation.
type PronunciationGlyph struct {
	Key            string // simplified pronunciation, also the glyph name
	AdvanceWidth   float64
	AdvanceHeight  float64
	VerticalOrigin float64
	References     []ot.Reference
}

// Name returns the glyph name of p.
func (p *PronunciationGlyph) Name() ot.GlyphName {
	return ot.GlyphName(p.Key)
}

// Glyph converts p to a glyf entry.
func (p *PronunciationGlyph) Glyph() *ot.Glyph {
	return &ot.Glyph{
		AdvanceWidth:   p.AdvanceWidth,
		AdvanceHeight:  p.AdvanceHeight,
		VerticalOrigin: p.VerticalOrigin,
		Contours:       []byte("[]"),
		References:     append([]ot.Reference(nil), p.References...),
	}
}

// Engine lays out pronunciation glyphs for hanzi of a fixed size.
type Engine struct {
	style       *style.Style
	letters     *alphabet.Alphabet
	reference   *alphabet.Letter
	hanziWidth  float64
	hanziHeight float64
	cache       map[string]*PronunciationGlyph
}

// NewEngine creates an engine for hanzi of the given advance width and
// height. A zero height falls back to the width.
func NewEngine(st *style.Style, letters *alphabet.Alphabet, hanziWidth, hanziHeight float64) (*Engine, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	ref, ok := letters.LetterOf(string(st.ReferenceLetter))
	if !ok {
		return nil, ot.Errorf(ot.ConfigurationError, string(st.ReferenceLetter),
			"reference letter not in alphabet")
	}
	if hanziHeight == 0 {
		hanziHeight = hanziWidth
	}
	return &Engine{
		style:       st,
		letters:     letters,
		reference:   ref,
		hanziWidth:  hanziWidth,
		hanziHeight: hanziHeight,
		cache:       make(map[string]*PronunciationGlyph),
	}, nil
}

// HanziSize returns the advance width and height of the target hanzi.
func (e *Engine) HanziSize() (float64, float64) {
	return e.hanziWidth, e.hanziHeight
}

// ratio returns a/b, or 1.0 for a degenerate b.
func ratio(a, b float64) float64 {
	if b == 0 || math.IsNaN(b) {
		return 1.0
	}
	return a / b
}

// layout holds the target-space values shared by all pronunciations.
type layout struct {
	canvasWidth  float64
	canvasHeight float64
	baseline     float64
	tracking     float64
	pinyinScale  float64
	letterWidth  float64
}

func (e *Engine) layout() layout {
	sx := ratio(e.hanziWidth, e.style.HanziCanvas.Width)
	sy := ratio(e.hanziHeight, e.style.HanziCanvas.Height)
	l := layout{
		canvasWidth:  e.style.PinyinCanvas.Width * sx,
		canvasHeight: e.style.PinyinCanvas.Height * sy,
		baseline:     e.style.PinyinCanvas.Baseline * sy,
		tracking:     e.style.PinyinCanvas.Tracking * sx,
	}
	l.pinyinScale = ratio(l.canvasHeight, e.reference.AdvanceHeight)
	l.letterWidth = e.reference.AdvanceWidth * l.pinyinScale
	return l
}

// Build lays out the pronunciation glyph for a tone-marked pronunciation.
// Letters are placed at equal distance, centered above the hanzi.
func (e *Engine) Build(pronunciation string) (*PronunciationGlyph, error) {
	key, err := pinyin.Simplify(pronunciation)
	if err != nil {
		return nil, ot.Errorf(ot.ConfigurationError, pronunciation, "%v", err)
	}
	tokens, _ := pinyin.Tokens(pronunciation)
	l := e.layout()
	p := &PronunciationGlyph{
		Key:          key,
		AdvanceWidth: e.hanziWidth,
	}
	n := len(tokens)
	if n == 0 {
		p.AdvanceHeight = e.hanziHeight
		p.VerticalOrigin = p.AdvanceHeight * VerticalOriginRatio
		return p, nil
	}
	canvasWidth := l.canvasWidth
	if e.style.AvoidOverlap && n >= 6 {
		canvasWidth = e.hanziWidth
	}
	blankCount := n - 1
	if n == 1 {
		blankCount = 1
	}
	blankWidth := math.Min(l.tracking, (canvasWidth-l.letterWidth*float64(n))/float64(blankCount))
	arranged := float64(n)*l.letterWidth + float64(blankCount)*blankWidth
	startX := (e.hanziWidth - arranged) / 2
	scaleX := l.pinyinScale
	if e.style.AvoidOverlap && n >= 5 {
		scaleX -= e.style.OverlapXReduction
	}
	scaleY := l.pinyinScale + Epsilon
	p.References = make([]ot.Reference, n)
	for i, tok := range tokens {
		letter, ok := e.letters.Letter(tok)
		if !ok {
			return nil, ot.Errorf(ot.ConfigurationError, pronunciation,
				"letter %q missing from alphabet", tok)
		}
		p.References[i] = ot.Reference{
			Glyph: letter.Glyph,
			X:     startX + float64(i)*l.letterWidth + float64(i)*blankWidth,
			Y:     l.baseline,
			A:     scaleX,
			D:     scaleY,
		}
	}
	p.AdvanceHeight = e.hanziHeight + l.canvasHeight
	p.VerticalOrigin = p.AdvanceHeight * VerticalOriginRatio
	return p, nil
}

// Glyph returns the pronunciation glyph for a pronunciation, building it on
// first use.
func (e *Engine) Glyph(pronunciation string) (*PronunciationGlyph, error) {
	if p, ok := e.cache[pronunciation]; ok {
		return p, nil
	}
	p, err := e.Build(pronunciation)
	if err != nil {
		return nil, err
	}
	// distinct spellings, e.g. composed and decomposed, share one glyph
	for _, q := range e.cache {
		if q.Key == p.Key {
			p = q
			break
		}
	}
	tracer().Debugf("pronunciation glyph %s for %q", p.Key, pronunciation)
	e.cache[pronunciation] = p
	return p, nil
}

// Glyphs returns every pronunciation glyph built so far, sorted by key.
func (e *Engine) Glyphs() []*PronunciationGlyph {
	seen := make(map[string]bool, len(e.cache))
	glyphs := make([]*PronunciationGlyph, 0, len(e.cache))
	for _, p := range e.cache {
		if !seen[p.Key] {
			seen[p.Key] = true
			glyphs = append(glyphs, p)
		}
	}
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i].Key < glyphs[j].Key })
	return glyphs
}

func (e *Engine) String() string {
	return fmt.Sprintf("engine[%s, hanzi %gx%g, %d glyphs]", e.style.Name,
		e.hanziWidth, e.hanziHeight, len(e.Glyphs()))
}
