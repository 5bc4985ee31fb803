/*
Package style holds the layout parameters of the pinyin annotation: the
coordinate space a style's numbers refer to, where the pinyin line sits
above the hanzi, and how tightly letters are tracked.

Numbers of a style are given in its own hanzi canvas space; the composition
engine scales them to the units of the target font.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package style

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
)

// tracer writes to trace with key 'mengshen'
func tracer() tracing.Trace {
	return tracing.Select("mengshen")
}

// Canvas is a rectangle in style space.
type Canvas struct {
	Width  float64
	Height float64
}

// PinyinCanvas is the area reserved for the pinyin line above the hanzi.
type PinyinCanvas struct {
	Width    float64
	Height   float64
	Baseline float64 // y of the pinyin baseline
	Tracking float64 // maximum blank between two letters
}

// Style is a complete set of layout parameters.
type Style struct {
	Name              string
	HanziCanvas       Canvas
	PinyinCanvas      PinyinCanvas
	AvoidOverlap      bool    // squeeze long syllables instead of overlapping neighbours
	OverlapXReduction float64 // horizontal scale reduction for syllables of 5+ letters
	ReferenceLetter   rune    // tallest letter, defines the pinyin scale
}

// Preset names.
const (
	HanSerif    = "han_serif"
	Handwritten = "handwritten"
)

// DefaultReferenceLetter is the tallest glyph of the pinyin alphabet.
const DefaultReferenceLetter = 'ǚ'

var presets = map[string]Style{
	HanSerif: {
		Name:              HanSerif,
		HanziCanvas:       Canvas{Width: 1000, Height: 1000},
		PinyinCanvas:      PinyinCanvas{Width: 850, Height: 283.3, Baseline: 935, Tracking: 22.145},
		AvoidOverlap:      true,
		OverlapXReduction: 0.1,
		ReferenceLetter:   DefaultReferenceLetter,
	},
	Handwritten: {
		Name:              Handwritten,
		HanziCanvas:       Canvas{Width: 2048, Height: 2048},
		PinyinCanvas:      PinyinCanvas{Width: 1700, Height: 580, Baseline: 1900, Tracking: 61.5},
		AvoidOverlap:      false,
		OverlapXReduction: 0,
		ReferenceLetter:   DefaultReferenceLetter,
	},
}

// Presets returns the names of all preset styles.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Preset returns a copy of a preset style.
func Preset(name string) (*Style, error) {
	s, ok := presets[name]
	if !ok {
		return nil, ot.Errorf(ot.ConfigurationError, name, "unsupported font style, expected one of %s",
			strings.Join(Presets(), ", "))
	}
	return &s, nil
}

// Validate checks that all dimensions are usable.
func (s *Style) Validate() error {
	positive := []struct {
		key string
		v   float64
	}{
		{"hanzi-canvas.width", s.HanziCanvas.Width},
		{"hanzi-canvas.height", s.HanziCanvas.Height},
		{"pinyin-canvas.width", s.PinyinCanvas.Width},
		{"pinyin-canvas.height", s.PinyinCanvas.Height},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return ot.Errorf(ot.ConfigurationError, p.key, "must be positive, is %g", p.v)
		}
	}
	if s.PinyinCanvas.Tracking < 0 {
		return ot.Errorf(ot.ConfigurationError, "pinyin-canvas.tracking", "must not be negative")
	}
	if s.OverlapXReduction < 0 || s.OverlapXReduction >= 1 {
		return ot.Errorf(ot.ConfigurationError, "overlap-x-reduction", "must be in [0,1), is %g", s.OverlapXReduction)
	}
	if s.ReferenceLetter == 0 {
		return ot.Errorf(ot.ConfigurationError, "reference-letter", "missing")
	}
	return nil
}

// FromConfig selects a preset by key "font-style" and applies overrides:
//
//	hanzi-canvas.width      hanzi-canvas.height
//	pinyin-canvas.width     pinyin-canvas.height
//	pinyin-canvas.baseline  pinyin-canvas.tracking
//	avoid-overlap           overlap-x-reduction
//	reference-letter
//
// Unset keys keep the preset value.
func FromConfig(conf schuko.Configuration) (*Style, error) {
	name := conf.GetString("font-style")
	if name == "" {
		return nil, ot.Errorf(ot.ConfigurationError, "font-style", "no font style configured")
	}
	s, err := Preset(name)
	if err != nil {
		return nil, err
	}
	floats := []struct {
		key string
		p   *float64
	}{
		{"hanzi-canvas.width", &s.HanziCanvas.Width},
		{"hanzi-canvas.height", &s.HanziCanvas.Height},
		{"pinyin-canvas.width", &s.PinyinCanvas.Width},
		{"pinyin-canvas.height", &s.PinyinCanvas.Height},
		{"pinyin-canvas.baseline", &s.PinyinCanvas.Baseline},
		{"pinyin-canvas.tracking", &s.PinyinCanvas.Tracking},
		{"overlap-x-reduction", &s.OverlapXReduction},
	}
	for _, f := range floats {
		v := conf.GetString(f.key)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, ot.Errorf(ot.ConfigurationError, f.key, "not a number: %q", v)
		}
		*f.p = x
	}
	if v := conf.GetString("avoid-overlap"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, ot.Errorf(ot.ConfigurationError, "avoid-overlap", "not a boolean: %q", v)
		}
		s.AvoidOverlap = b
	}
	if v := conf.GetString("reference-letter"); v != "" {
		r := []rune(v)
		if len(r) != 1 {
			return nil, ot.Errorf(ot.ConfigurationError, "reference-letter", "must be a single letter, is %q", v)
		}
		s.ReferenceLetter = r[0]
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	tracer().Debugf("style %s", s)
	return s, nil
}

func (s *Style) String() string {
	return fmt.Sprintf("%s[hanzi %gx%g, pinyin %gx%g@%g tracking %g, avoid-overlap=%v]",
		s.Name, s.HanziCanvas.Width, s.HanziCanvas.Height,
		s.PinyinCanvas.Width, s.PinyinCanvas.Height, s.PinyinCanvas.Baseline,
		s.PinyinCanvas.Tracking, s.AvoidOverlap)
}
