package mengshen

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/alphabet"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/compose"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/gsub"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/patterns"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/pinyin"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/style"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/variant"
)

// NotDef is the name of the glyph shown for missing characters. It is
// always first in the glyph order.
const NotDef ot.GlyphName = ".notdef"

// sizeReference is the hanzi whose advance defines the hanzi canvas.
const sizeReference = '一'

// Assembler builds pinyin fonts. An Assembler collects the warnings of its
// builds and is not safe for concurrent use.
type Assembler struct {
	style     *style.Style
	source    pinyin.Source
	languages []language.Tag
	budget    int
	warnings  ot.Warnings
}

// Option configures an Assembler.
type Option func(*Assembler) error

// WithStyle sets the font style. The default is the han_serif preset.
func WithStyle(st *style.Style) Option {
	return func(a *Assembler) error {
		if err := st.Validate(); err != nil {
			return err
		}
		a.style = st
		return nil
	}
}

// WithSource sets the pinyin data. It is required.
func WithSource(src pinyin.Source) Option {
	return func(a *Assembler) error {
		a.source = src
		return nil
	}
}

// WithLanguages adds Chinese language systems to the GSUB table.
func WithLanguages(tags ...language.Tag) Option {
	return func(a *Assembler) error {
		for _, t := range tags {
			if _, err := gsub.LanguageTag(t); err != nil {
				return err
			}
		}
		a.languages = append(a.languages, tags...)
		return nil
	}
}

// WithGlyphBudget lowers the maximum number of glyphs of the result.
func WithGlyphBudget(n int) Option {
	return func(a *Assembler) error {
		if n <= 0 || n > ot.MaxGlyphs {
			return ot.Errorf(ot.ConfigurationError, "glyph budget", "must be in 1…%d, is %d", ot.MaxGlyphs, n)
		}
		a.budget = n
		return nil
	}
}

// NewAssembler creates an assembler.
func NewAssembler(opts ...Option) (*Assembler, error) {
	st, err := style.Preset(style.HanSerif)
	if err != nil {
		return nil, err
	}
	a := &Assembler{style: st, budget: ot.MaxGlyphs}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.source == nil {
		return nil, ot.Errorf(ot.ConfigurationError, "pinyin data", "no pinyin source configured")
	}
	return a, nil
}

// Warnings returns the warnings of all builds so far.
func (a *Assembler) Warnings() []ot.Warning {
	return a.warnings.List()
}

// Style returns the style fonts are built with.
func (a *Assembler) Style() *style.Style {
	return a.style
}

// AssembleFont creates a pinyin font from a base font's tables, see
// Assembler.Assemble.
func AssembleFont(base *ot.Tables, letters *alphabet.Alphabet, store *patterns.Store,
	opts ...Option) (*ot.Tables, error) {
	//
	a, err := NewAssembler(opts...)
	if err != nil {
		return nil, err
	}
	return a.Assemble(base, letters, store)
}

// Assemble creates a pinyin font from a base font's tables. base is not
// modified.
//
// Assembly composes the pronunciation glyphs, assigns variants and their
// variation sequences, merges all new glyphs, compiles the GSUB table from
// the patterns and finally checks the glyph budget.
func (a *Assembler) Assemble(base *ot.Tables, letters *alphabet.Alphabet, store *patterns.Store) (*ot.Tables, error) {
	out := base.Clone()
	w, h := a.hanziSize(out)
	engine, err := compose.NewEngine(a.style, letters, w, h)
	if err != nil {
		return nil, err
	}
	vars, err := variant.Assign(variant.Input{
		CMap:   out.CMap,
		Glyf:   base.Glyf,
		Source: a.source,
		Engine: engine,
	})
	if err != nil {
		return nil, err
	}
	a.warnings.Merge(vars.Warnings)
	if err := checkCollisions(base, vars, letters); err != nil {
		return nil, err
	}
	mergeGlyphs(out, letters.Glyphs())
	mergeGlyphs(out, vars.Glyphs)
	for k, g := range vars.UVS {
		out.CMapUVS[k] = g
	}
	out.GlyphOrder = glyphOrder(out.Glyf)
	compiled, err := gsub.Compile(gsub.Input{
		Variants:  vars,
		CMap:      out.CMap,
		Store:     store,
		Languages: a.languages,
	})
	if err != nil {
		return nil, err
	}
	a.warnings.Merge(compiled.Warnings)
	out.GSUB = compiled.GSUB
	if n := len(out.GlyphOrder); n > a.budget {
		e := ot.Errorf(ot.BudgetExceeded, "glyf", "font has %d glyphs, at most %d are possible", n, a.budget)
		e.Count = n
		return nil, e
	}
	tracer().Infof("assembled font with %d glyphs, %d variation sequences, %d lookups",
		len(out.GlyphOrder), len(out.CMapUVS), len(out.GSUB.Lookups))
	return out, nil
}

// hanziSize reads the hanzi canvas from the advance of 一, falling back to
// the style's canvas.
func (a *Assembler) hanziSize(t *ot.Tables) (float64, float64) {
	if cid, ok := t.CMap.Lookup(sizeReference); ok {
		if g := t.Glyph(cid.Glyph()); g != nil && g.AdvanceWidth > 0 {
			return g.AdvanceWidth, g.AdvanceHeight
		}
	}
	tracer().Debugf("no advance for %c, using the style's hanzi canvas", sizeReference)
	return a.style.HanziCanvas.Width, a.style.HanziCanvas.Height
}

// checkCollisions rejects generated glyph names already used by the base
// font. Redefined base glyphs are expected.
func checkCollisions(base *ot.Tables, vars *variant.Result, letters *alphabet.Alphabet) error {
	redefined := make(map[ot.GlyphName]bool, len(vars.Entries))
	for _, e := range vars.Entries {
		redefined[e.CID.Glyph()] = true
	}
	for _, glyphs := range []map[ot.GlyphName]*ot.Glyph{vars.Glyphs, letters.Glyphs()} {
		for name := range glyphs {
			if _, clash := base.Glyf[name]; clash && !redefined[name] {
				return ot.Errorf(ot.ConfigurationError, string(name),
					"base font already has a glyph with the name of a generated glyph")
			}
		}
	}
	return nil
}

// mergeGlyphs adds glyphs to a table set. An empty glyph never replaces a
// glyph with an outline.
func mergeGlyphs(t *ot.Tables, glyphs map[ot.GlyphName]*ot.Glyph) {
	for name, g := range glyphs {
		if old, ok := t.Glyf[name]; ok && g.IsEmpty() && !old.IsEmpty() {
			tracer().Debugf("keeping outline of %s", name)
			continue
		}
		t.Glyf[name] = g
	}
}

// glyphOrder lists all glyphs, .notdef first and the rest sorted.
func glyphOrder(glyf map[ot.GlyphName]*ot.Glyph) []ot.GlyphName {
	order := make([]ot.GlyphName, 0, len(glyf)+1)
	for name := range glyf {
		if name != NotDef {
			order = append(order, name)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	return append([]ot.GlyphName{NotDef}, order...)
}

func (a *Assembler) String() string {
	return fmt.Sprintf("assembler[%s, budget %d]", a.style.Name, a.budget)
}
