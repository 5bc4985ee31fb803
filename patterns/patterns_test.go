package patterns

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
)

const singleSource = `# order, character, pronunciation, patterns
1, 行, xíng, []
2, 行, háng, [银~|~业|~情]
3, 行, hàng, [树~子]
2, 长, zhǎng, [~大|生~]
`

func TestLoadSingle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen.patterns")
	defer teardown()
	//
	records, err := LoadSingle(strings.NewReader(singleSource))
	require.NoError(t, err)
	require.Len(t, records, 3, "order 1 must be discarded")
	hang := records[0]
	assert.Equal(t, '行', hang.Character)
	assert.Equal(t, 0, hang.ReadingIndex)
	require.Len(t, hang.Templates, 3)
	yinhang := hang.Templates[0]
	assert.Equal(t, "银行", yinhang.Text())
	assert.Equal(t, 1, yinhang.At)
	assert.Equal(t, RightContext, yinhang.Kind)
	assert.Equal(t, LeftContext, hang.Templates[1].Kind)
	shuhangzi := records[1].Templates[0]
	assert.Equal(t, 1, records[1].ReadingIndex)
	assert.Equal(t, Embedded, shuhangzi.Kind)
	assert.Equal(t, []rune("树行子"), shuhangzi.Phrase)
}

func TestLoadSingleReadingIndexCap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen.patterns")
	defer teardown()
	//
	records, err := LoadSingle(strings.NewReader("11, 行, héng, [~列]"))
	require.NoError(t, err)
	assert.Equal(t, MaxReadingIndex, records[0].ReadingIndex)
	_, err = LoadSingle(strings.NewReader("12, 行, héng, [~列]"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ot.ErrPatternAuthoring))
	assert.Contains(t, err.Error(), "行/index 10")
}

func TestLoadSingleErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen.patterns")
	defer teardown()
	//
	tests := []struct {
		name string
		line string
	}{
		{"no placeholder", "2, 行, háng, [银行]"},
		{"two placeholders", "2, 行, háng, [~~]"},
		{"no context", "2, 行, háng, [~]"},
		{"order 0", "0, 行, háng, [银~]"},
		{"missing field", "2, 行, [银~]"},
		{"no brackets", "2, 行, háng, 银~"},
		{"two characters", "2, 行长, háng, [银~]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSingle(strings.NewReader(tt.line))
			if !errors.Is(err, ot.ErrPatternAuthoring) {
				t.Errorf("expected pattern authoring error, have %v", err)
			}
		})
	}
}

func TestReadingIndex10IsRejectedByStore(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen.patterns")
	defer teardown()
	//
	rec := &SingleRecord{Character: '行', ReadingIndex: 10}
	_, err := NewStore([]*SingleRecord{rec}, nil, nil)
	assert.True(t, errors.Is(err, ot.ErrPatternAuthoring))
}

func TestStoreRejectsDuplicates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen.patterns")
	defer teardown()
	//
	records, err := LoadSingle(strings.NewReader("2, 行, háng, [银~]\n3, 行, hàng, [银~]"))
	require.NoError(t, err)
	_, err = NewStore(records, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestStoreRejectsOverlap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen.patterns")
	defer teardown()
	//
	// 银行 (háng) is contained in 银行长 (hàng) at the same target position
	records, err := LoadSingle(strings.NewReader("2, 行, háng, [银~]\n3, 行, hàng, [银~长]"))
	require.NoError(t, err)
	_, err = NewStore(records, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ot.ErrPatternAuthoring))
	assert.Contains(t, err.Error(), "银~长")
	// same reading: fine
	records, err = LoadSingle(strings.NewReader("2, 行, háng, [银~|银~长]"))
	require.NoError(t, err)
	_, err = NewStore(records, nil, nil)
	assert.NoError(t, err)
	// contained, but the target is elsewhere: fine
	records, err = LoadSingle(strings.NewReader("2, 行, háng, [银~]\n3, 行, hàng, [~银行]"))
	require.NoError(t, err)
	_, err = NewStore(records, nil, nil)
	assert.NoError(t, err)
}

const dualSource = `{
	"lookup_table": {
		"lookup_11": {"行": "háng", "长": "zhǎng"},
		"lookup_12": {"长": "ss02"}
	},
	"patterns": {
		"行长": {"0": "lookup_11", "1": "lookup_11"},
		"长行": {"0": "lookup_12", "1": null}
	}
}`

func TestLoadPhraseTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen.patterns")
	defer teardown()
	//
	pt, err := LoadPhraseTable(strings.NewReader(dualSource), Dual)
	require.NoError(t, err)
	require.Len(t, pt.Phrases, 2)
	assert.Equal(t, "行长", pt.Phrases[0].String())
	assert.Equal(t, []Position{{0, "lookup_11"}, {1, "lookup_11"}}, pt.Phrases[0].Positions)
	assert.Len(t, pt.Phrases[1].Applied(), 1)
	assert.Equal(t, Target{Variant: 2}, pt.Lookups["lookup_12"]['长'])
	assert.Equal(t, Target{Reading: "háng", Variant: -1}, pt.Lookups["lookup_11"]['行'])
	assert.Equal(t, []string{"lookup_11", "lookup_12"}, pt.LookupNames())
}

func TestLoadPhraseTableErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen.patterns")
	defer teardown()
	//
	tests := []struct {
		name string
		kind Kind
		src  string
	}{
		{"unknown lookup", Dual, `{"lookup_table": {}, "patterns": {"行长": {"0": "lookup_1", "1": null}}}`},
		{"position outside", Dual, `{"lookup_table": {"l": {"行": "háng"}}, "patterns": {"行长": {"0": "l", "5": null}}}`},
		{"three positions", Dual, `{"lookup_table": {"l": {"行": "háng"}}, "patterns": {"行长": {"0": "l", "1": null, "2": null}}}`},
		{"ignore in dual", Dual, `{"lookup_table": {"l": {"行": "háng"}}, "patterns": {"行长": {"0": "l", "1": null, "ignore": "行' 长"}}}`},
		{"reserved name", Exception, `{"lookup_table": {"lookup_rclt_0": {"行": "háng"}}, "patterns": {}}`},
		{"character not in lookup", Exception, `{"lookup_table": {"l": {"长": "ss02"}}, "patterns": {"行长": {"0": "l"}}}`},
		{"ambiguous ignore", Exception, `{"lookup_table": {"l": {"着": "zhe"}}, "patterns": {"背着手": {"1": "l", "ignore": "着' 手'"}}}`},
		{"unmarked ignore", Exception, `{"lookup_table": {"l": {"着": "zhe"}}, "patterns": {"背着手": {"1": "l", "ignore": "着 手"}}}`},
		{"nothing applied", Exception, `{"lookup_table": {}, "patterns": {"背着手": {"1": null}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPhraseTable(strings.NewReader(tt.src), tt.kind)
			if !errors.Is(err, ot.ErrPatternAuthoring) {
				t.Errorf("expected pattern authoring error, have %v", err)
			}
		})
	}
}

func TestParseIgnore(t *testing.T) {
	ip, err := ParseIgnore("着' 手")
	require.NoError(t, err)
	assert.Equal(t, []rune("着手"), ip.Fragment)
	assert.Equal(t, 0, ip.At)
	assert.Equal(t, 1, ip.Offset([]rune("背着手")))
	assert.Equal(t, -1, ip.Offset([]rune("着急")))
	ip, err = ParseIgnore("特 别'")
	require.NoError(t, err)
	assert.Equal(t, 1, ip.At)
	_, err = ParseIgnore("'特 别")
	assert.True(t, errors.Is(err, ot.ErrPatternAuthoring))
}

func TestStoreRejectsPhraseInBothTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen.patterns")
	defer teardown()
	//
	dual, err := LoadPhraseTable(strings.NewReader(dualSource), Dual)
	require.NoError(t, err)
	exc, err := LoadPhraseTable(strings.NewReader(
		`{"lookup_table": {"l": {"行": "háng"}}, "patterns": {"行长": {"0": "l"}}}`), Exception)
	require.NoError(t, err)
	_, err = NewStore(nil, dual, exc)
	assert.True(t, errors.Is(err, ot.ErrPatternAuthoring))
}

func TestStoreRejectsSinglePhraseInPhraseTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen.patterns")
	defer teardown()
	//
	records, err := LoadSingle(strings.NewReader("2, 行, háng, [~长]"))
	require.NoError(t, err)
	dual, err := LoadPhraseTable(strings.NewReader(dualSource), Dual)
	require.NoError(t, err)
	_, err = NewStore(records, dual, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ot.ErrPatternAuthoring))
	assert.Contains(t, err.Error(), "行长")
	//
	exc, err := LoadPhraseTable(strings.NewReader(
		`{"lookup_table": {"l": {"长": "zhǎng"}}, "patterns": {"生长": {"1": "l"}}}`), Exception)
	require.NoError(t, err)
	records, err = LoadSingle(strings.NewReader(singleSource))
	require.NoError(t, err)
	_, err = NewStore(records, nil, exc)
	assert.True(t, errors.Is(err, ot.ErrPatternAuthoring), "have %v", err)
	// distinct phrases load fine
	_, err = NewStore(records, dual, nil)
	assert.NoError(t, err)
}

func TestStoreIndices(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen.patterns")
	defer teardown()
	//
	records, err := LoadSingle(strings.NewReader(singleSource))
	require.NoError(t, err)
	store, err := NewStore(records, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, store.ReadingIndices())
	assert.Len(t, store.Records(0), 2)
	assert.Equal(t, '长', store.Records(0)[1].Character, "records are sorted by character")
	assert.Equal(t, 6, store.Len())
}
