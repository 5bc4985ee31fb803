package gsub

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/alphabet"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/compose"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/patterns"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/pinyin"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/style"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/variant"
)

var readings = map[rune][]string{
	'行': {"xíng", "háng", "hàng", "héng"},
	'银': {"yín"},
	'长': {"cháng", "zhǎng"},
	'背': {"bèi", "bēi"},
	'着': {"zhe", "zháo", "zhuó", "zhāo"},
	'手': {"shǒu"},
}

func cid(r rune) ot.CID {
	return ot.CID(fmt.Sprintf("uni%04X", r))
}

func g(r rune) ot.GlyphName {
	return cid(r).Glyph()
}

func testVariants(t *testing.T) (*variant.Result, *ot.CMap) {
	cmap := ot.NewCMap()
	glyf := make(map[ot.GlyphName]*ot.Glyph)
	source := pinyin.NewTable()
	for r, p := range readings {
		cmap.Set(r, cid(r))
		glyf[g(r)] = &ot.Glyph{AdvanceWidth: 1000, AdvanceHeight: 1000, Contours: []byte(`[]`)}
		require.NoError(t, source.Add(r, p...))
	}
	letters := alphabet.New()
	for _, l := range pinyin.Letters() {
		letters.Add(l, &ot.Glyph{AdvanceWidth: 100, AdvanceHeight: 300})
	}
	st, err := style.Preset(style.HanSerif)
	require.NoError(t, err)
	engine, err := compose.NewEngine(st, letters, 1000, 1000)
	require.NoError(t, err)
	res, err := variant.Assign(variant.Input{CMap: cmap, Glyf: glyf, Source: source, Engine: engine})
	require.NoError(t, err)
	return res, cmap
}

func testStore(t *testing.T, single, dual, exceptions string) *patterns.Store {
	var recs []*patterns.SingleRecord
	var err error
	if single != "" {
		recs, err = patterns.LoadSingle(strings.NewReader(single))
		require.NoError(t, err)
	}
	var d, e *patterns.PhraseTable
	if dual != "" {
		d, err = patterns.LoadPhraseTable(strings.NewReader(dual), patterns.Dual)
		require.NoError(t, err)
	}
	if exceptions != "" {
		e, err = patterns.LoadPhraseTable(strings.NewReader(exceptions), patterns.Exception)
		require.NoError(t, err)
	}
	store, err := patterns.NewStore(recs, d, e)
	require.NoError(t, err)
	return store
}

func compile(t *testing.T, store *patterns.Store, langs ...language.Tag) (*Result, error) {
	res, cmap := testVariants(t)
	return Compile(Input{Variants: res, CMap: cmap, Store: store, Languages: langs})
}

func chain(t *testing.T, gsub *ot.GSUB, name string) []ot.ChainingRule {
	l, ok := gsub.Lookups[name].(*ot.ChainingContextual)
	require.True(t, ok, "lookup %s must be a chaining lookup", name)
	return l.Rules
}

func single(t *testing.T, gsub *ot.GSUB, name string) map[ot.GlyphName]ot.GlyphName {
	l, ok := gsub.Lookups[name].(*ot.SingleSubstitution)
	require.True(t, ok, "lookup %s must be a single substitution", name)
	return l.Mapping
}

func TestCompileSingleTemplate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	res, err := compile(t, testStore(t, "2, 行, háng, [银~]", "", ""))
	require.NoError(t, err)
	want := []ot.ChainingRule{{
		Match:       [][]ot.GlyphName{{"uni94F6"}, {"uni884C"}},
		Apply:       []ot.Apply{{At: 1, Lookup: "lookup_pattern_0"}},
		InputBegins: 1,
		InputEnds:   2,
	}}
	if diff := cmp.Diff(want, chain(t, res.GSUB, "lookup_rclt_0")); diff != "" {
		t.Errorf("rclt_0 mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[ot.GlyphName]ot.GlyphName{"uni884C": "uni884C.ss02"},
		single(t, res.GSUB, "lookup_pattern_0"))
}

func TestCompileReadingMismatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	tests := []struct {
		name   string
		single string
	}{
		{"wrong reading", "2, 行, hàng, [银~]"},
		{"no such reading", "6, 行, hèng, [银~]"},
		{"single reading character", "2, 银, yín, [~行]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, testStore(t, tt.single, "", ""))
			if !errors.Is(err, ot.ErrPatternAuthoring) {
				t.Errorf("expected pattern authoring error, have %v", err)
			}
		})
	}
}

func TestCompileSkipsMissingCharacters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	res, err := compile(t, testStore(t, "2, 行, háng, [银~|~业]", "", ""))
	require.NoError(t, err)
	assert.Len(t, chain(t, res.GSUB, "lookup_rclt_0"), 1, "业 is not in the font")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, ot.MissingGlyph, res.Warnings[0].Kind)
}

func TestCompileDualPattern(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	dual := `{
		"lookup_table": {"lookup_11": {"行": "háng", "长": "zhǎng"}},
		"patterns": {"行长": {"0": "lookup_11", "1": "lookup_11"}}
	}`
	res, err := compile(t, testStore(t, "", dual, ""))
	require.NoError(t, err)
	want := []ot.ChainingRule{{
		Match:       [][]ot.GlyphName{{"uni884C"}, {"uni957F"}},
		Apply:       []ot.Apply{{At: 0, Lookup: "lookup_11"}, {At: 1, Lookup: "lookup_11"}},
		InputBegins: 0,
		InputEnds:   2,
	}}
	if diff := cmp.Diff(want, chain(t, res.GSUB, "lookup_rclt_1")); diff != "" {
		t.Errorf("rclt_1 mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[ot.GlyphName]ot.GlyphName{
		"uni884C": "uni884C.ss02",
		"uni957F": "uni957F.ss02",
	}, single(t, res.GSUB, "lookup_11"))
}

func TestCompileExceptionsWithIgnore(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	exceptions := `{
		"lookup_table": {
			"lookup_bei": {"背": "bēi"},
			"lookup_zhuo": {"着": "ss03"}
		},
		"patterns": {
			"着手": {"0": "lookup_zhuo"},
			"背着手": {"0": "lookup_bei", "ignore": "着' 手"}
		}
	}`
	res, err := compile(t, testStore(t, "", "", exceptions))
	require.NoError(t, err)
	want := []ot.ChainingRule{
		{
			// 背 may already be uni80CC.ss02 when the shaper reaches 着
			Match: [][]ot.GlyphName{
				{"uni80CC", "uni80CC.ss00", "uni80CC.ss01", "uni80CC.ss02"},
				{"uni7740"}, {"uni624B"},
			},
			Apply:       []ot.Apply{},
			InputBegins: 1,
			InputEnds:   2,
		},
		{
			Match:       [][]ot.GlyphName{{"uni7740"}, {"uni624B"}},
			Apply:       []ot.Apply{{At: 0, Lookup: "lookup_zhuo"}},
			InputBegins: 0,
			InputEnds:   1,
		},
		{
			Match:       [][]ot.GlyphName{{"uni80CC"}, {"uni7740"}, {"uni624B"}},
			Apply:       []ot.Apply{{At: 0, Lookup: "lookup_bei"}},
			InputBegins: 0,
			InputEnds:   1,
		},
	}
	if diff := cmp.Diff(want, chain(t, res.GSUB, "lookup_rclt_2")); diff != "" {
		t.Errorf("rclt_2 mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ot.GlyphName("uni80CC.ss02"), single(t, res.GSUB, "lookup_bei")["uni80CC"])
	assert.Equal(t, ot.GlyphName("uni7740.ss03"), single(t, res.GSUB, "lookup_zhuo")["uni7740"])
}

func TestCompileAlternates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	res, err := compile(t, nil)
	require.NoError(t, err)
	assert.Equal(t, ot.GlyphName("uni94F6.ss00"), single(t, res.GSUB, "lookup_aalt_0")["uni94F6"])
	alt, ok := res.GSUB.Lookups["lookup_aalt_1"].(*ot.AlternateSubstitution)
	require.True(t, ok)
	assert.Equal(t, []ot.GlyphName{"uni884C.ss00", "uni884C.ss01", "uni884C.ss02", "uni884C.ss03", "uni884C.ss04"},
		alt.Alternates["uni884C"])
	_, isSingle := single(t, res.GSUB, "lookup_aalt_0")["uni884C"]
	assert.False(t, isSingle)
}

func TestCompileLookupOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	res, err := compile(t, testStore(t, "2, 行, háng, [银~]\n2, 长, zhǎng, [~大]", "", ""))
	require.NoError(t, err)
	order := res.GSUB.LookupOrder
	assert.True(t, sort.StringsAreSorted(order))
	assert.Equal(t, res.GSUB.LookupNames(), order)
	for _, name := range order {
		assert.Contains(t, res.GSUB.Lookups, name)
	}
	for _, f := range features {
		assert.Equal(t, []string{LookupName(f)}, res.GSUB.Features[f])
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	exceptions := `{"lookup_table": {"l": {"背": "bēi"}}, "patterns": {"背着手": {"0": "l", "ignore": "着' 手"}}}`
	var out []string
	for i := 0; i < 2; i++ {
		res, err := compile(t, testStore(t, "2, 行, háng, [银~]", "", exceptions), language.SimplifiedChinese)
		require.NoError(t, err)
		b, err := json.Marshal(res.GSUB)
		require.NoError(t, err)
		out = append(out, string(b))
	}
	if diff := cmp.Diff(out[0], out[1]); diff != "" {
		t.Errorf("two compilations differ:\n%s", diff)
	}
}

func TestLanguageTag(t *testing.T) {
	tests := []struct {
		tag  string
		want ot.Tag
	}{
		{"zh", ZHS},
		{"zh-Hans", ZHS},
		{"zh-CN", ZHS},
		{"zh-Hant", ZHT},
		{"zh-TW", ZHT},
		{"zh-HK", ZHH},
		{"zh-MO", ZHH},
	}
	for _, tt := range tests {
		have, err := LanguageTag(language.MustParse(tt.tag))
		if err != nil {
			t.Errorf("%s: %v", tt.tag, err)
		} else if have != tt.want {
			t.Errorf("%s: expected %s, have %s", tt.tag, tt.want, have)
		}
	}
	_, err := LanguageTag(language.English)
	assert.True(t, errors.Is(err, ot.ErrConfiguration))
}

func TestCompileLanguages(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	res, err := compile(t, nil, language.MustParse("zh-Hans"), language.MustParse("zh-CN"), language.MustParse("zh-HK"))
	require.NoError(t, err)
	keys := make([]string, 0, len(res.GSUB.Languages))
	for k := range res.GSUB.Languages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"DFLT_DFLT", "hani_DFLT", "hani_ZHH ", "hani_ZHS ", "latn_DFLT"}, keys)
	_, err = compile(t, nil, language.Japanese)
	assert.True(t, errors.Is(err, ot.ErrConfiguration))
}
