package alphabet

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
)

const latinTables = `{
	"head": {"unitsPerEm": 1000},
	"cmap": {"97": "a", "98": "b", "462": "acaron", "474": "udieresiscaron"},
	"glyf": {
		"a": {"advanceWidth": 500, "contours": [[{"x": 0, "y": 0, "on": true}]]},
		"b": {"advanceWidth": 520, "advanceHeight": 900, "contours": [[{"x": 0, "y": 0, "on": true}]]},
		"caron": {"advanceWidth": 0, "contours": [[{"x": 1, "y": 1, "on": true}]]},
		"acaron": {"advanceWidth": 500, "references": [{"glyph": "a"}, {"glyph": "caron", "y": 200}]},
		"udieresiscaron": {"advanceWidth": 560, "advanceHeight": 1300, "references": [{"glyph": "caron", "y": 400}]}
	}
}`

func TestExtract(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	latin, err := ot.ParseTables([]byte(latinTables))
	require.NoError(t, err)
	a, warnings, err := Extract(latin, 'ǚ')
	require.NoError(t, err)
	assert.Equal(t, 4, a.Len())
	assert.NotEmpty(t, warnings, "missing letters should be reported")
	//
	l, ok := a.Letter("a3")
	require.True(t, ok)
	assert.Equal(t, ot.GlyphName("py_alphabet_a3"), l.Glyph)
	assert.Equal(t, 1000.0, l.AdvanceHeight, "advance height should default to units per em")
	g := a.Glyphs()[l.Glyph]
	require.Len(t, g.References, 2)
	assert.Equal(t, ot.GlyphName("py_component_a"), g.References[0].Glyph)
	assert.Equal(t, ot.GlyphName("py_component_caron"), g.References[1].Glyph)
	assert.Contains(t, a.Glyphs(), ot.GlyphName("py_component_caron"))
	//
	ref, ok := a.LetterOf("ǚ")
	require.True(t, ok)
	assert.Equal(t, 1300.0, ref.AdvanceHeight)
	assert.Equal(t, []string{"a", "a3", "b", "v3"}, a.Tokens())
}

func TestExtractDoesNotModifyLatinFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	latin, err := ot.ParseTables([]byte(latinTables))
	require.NoError(t, err)
	_, _, err = Extract(latin, 'ǚ')
	require.NoError(t, err)
	assert.Equal(t, ot.GlyphName("caron"), latin.Glyph("acaron").References[1].Glyph)
}

func TestExtractRequiresReferenceLetter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	latin, err := ot.ParseTables([]byte(latinTables))
	require.NoError(t, err)
	_, _, err = Extract(latin, 'ǜ')
	assert.True(t, errors.Is(err, ot.ErrConfiguration), "have %v", err)
}

const markTables = `{
	"head": {"unitsPerEm": 1000},
	"cmap": {"109": "m", "234": "ecircumflex", "474": "udieresiscaron", "768": "gravecomb", "772": "macroncomb"},
	"glyf": {
		"m": {"advanceWidth": 800, "contours": [[{"x": 0, "y": 0, "on": true}]]},
		"ecircumflex": {"advanceWidth": 520, "contours": [[{"x": 0, "y": 0, "on": true}]]},
		"udieresiscaron": {"advanceWidth": 560, "advanceHeight": 1300, "contours": [[{"x": 0, "y": 0, "on": true}]]},
		"gravecomb": {"advanceWidth": 0, "contours": [[{"x": -300, "y": 600, "on": true}]]},
		"macroncomb": {"advanceWidth": 300, "contours": [[{"x": 0, "y": 600, "on": true}]]}
	}
}`

func TestExtractComposesCombiningMarks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	latin, err := ot.ParseTables([]byte(markTables))
	require.NoError(t, err)
	a, warnings, err := Extract(latin, 'ǚ')
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
	assert.Equal(t, []string{"E", "E1", "m", "m1", "m4", "v3"}, a.Tokens())
	//
	e1, ok := a.LetterOf("ê̄")
	require.True(t, ok)
	assert.Equal(t, 520.0, e1.AdvanceWidth)
	g := a.Glyphs()[e1.Glyph]
	require.Len(t, g.References, 2)
	assert.Equal(t, ot.GlyphName("py_component_ecircumflex"), g.References[0].Glyph)
	assert.Equal(t, ot.GlyphName("py_component_macroncomb"), g.References[1].Glyph)
	assert.Equal(t, 110.0, g.References[1].X, "spacing mark should be centered")
	//
	m4, ok := a.Letter("m4")
	require.True(t, ok)
	g = a.Glyphs()[m4.Glyph]
	require.Len(t, g.References, 2)
	assert.Equal(t, ot.GlyphName("py_component_gravecomb"), g.References[1].Glyph)
	assert.Equal(t, 800.0, g.References[1].X, "zero-width mark should follow the base")
}
