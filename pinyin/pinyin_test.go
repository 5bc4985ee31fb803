package pinyin

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"wěi", "we3i"},
		{"lǜ", "lv4"},
		{"xíng", "xi2ng"},
		{"háng", "ha2ng"},
		{"nǚ", "nv3"},
		{"lüè", "lve4"},
		{"ê̄", "E1"},
		{"ế", "E2"},
		{"ê̌", "E3"},
		{"ề", "E4"},
		{"ê̄i", "E1i"},
		{"ń", "n2"},
		{"n̄g", "n1g"},
		{"ḿ", "m2"},
		{"m̀", "m4"},
		{"m̄", "m1"},
		{"zhuang", "zhuang"},
		{"", ""},
	}
	for _, tt := range tests {
		result, err := Simplify(tt.input)
		if tt.expected == "" && tt.input != "" {
			if err == nil {
				t.Errorf("Simplify(%q) = %q; want error", tt.input, result)
			}
			continue
		}
		if err != nil {
			t.Errorf("Simplify(%q) failed: %v", tt.input, err)
		} else if result != tt.expected {
			t.Errorf("Simplify(%q) = %q; want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSimplifyNormalizesInput(t *testing.T) {
	decomposed := "we\u030ci"
	result, err := Simplify(decomposed)
	if err != nil || result != "we3i" {
		t.Errorf("Simplify(decomposed wěi) = %q, %v; want we3i", result, err)
	}
}

func TestSimplifyRejectsUnknownLetters(t *testing.T) {
	for _, s := range []string{"v", "xing1", "Xing", "x ing", "行", "\u0304a", "ā\u0304"} {
		_, err := Simplify(s)
		if err == nil {
			t.Errorf("expected %q to be rejected", s)
		}
	}
	_, err := Simplify("ñ")
	if err == nil || !strings.Contains(err.Error(), "LATIN SMALL LETTER N WITH TILDE") {
		t.Errorf("expected error to name the letter, have %v", err)
	}
	// positions count letters, not bytes
	_, err = Simplify("ê̄ñ")
	if err == nil || !strings.Contains(err.Error(), "at position 1 of") {
		t.Errorf("expected ñ to be reported at position 1, have %v", err)
	}
}

func TestSimplifyDecomposedCircumflex(t *testing.T) {
	for _, s := range []string{"e\u0302\u0304", "\u00ea\u0304", "ê̄"} {
		key, err := Simplify(s)
		if err != nil || key != "E1" {
			t.Errorf("Simplify(%q) = %q, %v; want E1", s, key, err)
		}
	}
}

// No two distinct letters may share a token, and no two distinct syllables
// may share a key.
func TestSimplifyIsInjective(t *testing.T) {
	seen := make(map[string]string)
	for _, l := range Letters() {
		tok, ok := LetterToken(l)
		require.True(t, ok)
		if other, dup := seen[tok]; dup {
			t.Fatalf("letters %q and %q share token %q", l, other, tok)
		}
		seen[tok] = l
	}
	for _, l := range []string{"ê̄", "ê̌", "m̀", "m̄"} {
		assert.Contains(t, Letters(), l)
	}
	// every pair of letters forms a 2-letter syllable; all keys must differ
	keys := make(map[string]string)
	for _, a := range Letters() {
		for _, b := range Letters() {
			syllable := a + b
			key, err := Simplify(syllable)
			require.NoError(t, err)
			if other, dup := keys[key]; dup {
				t.Fatalf("syllables %q and %q share key %q", syllable, other, key)
			}
			keys[key] = syllable
			back, err := Expand(key)
			require.NoError(t, err)
			assert.Equal(t, syllable, back)
		}
	}
}

func TestExpand(t *testing.T) {
	back, err := Expand("we3i")
	if err != nil || back != "wěi" {
		t.Errorf("Expand(we3i) = %q, %v; want wěi", back, err)
	}
	if _, err := Expand("a9"); err == nil {
		t.Errorf("expected a9 to be rejected")
	}
	if _, err := Expand("3"); err == nil {
		t.Errorf("expected a leading digit to be rejected")
	}
	for key, want := range map[string]string{"E1": "ê̄", "E3i": "ê̌i", "m4": "m̀", "n1g": "n̄g"} {
		if back, err := Expand(key); err != nil || back != want {
			t.Errorf("Expand(%s) = %q, %v; want %q", key, back, err, want)
		}
	}
}

func TestTokens(t *testing.T) {
	tokens, err := Tokens("lǜ")
	require.NoError(t, err)
	assert.Equal(t, []string{"l", "v4"}, tokens)
	tokens, err = Tokens("ê̌i")
	require.NoError(t, err)
	assert.Equal(t, []string{"E3", "i"}, tokens)
}

func TestReadTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	data := `# pinyin data
U+4E00: yī  # 一
U+884C: xíng,háng,hàng,héng  # 行

U+94F6: yín  # 银
`
	table, err := ReadTable(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	prons, ok := table.Pronunciations('行')
	require.True(t, ok)
	assert.Equal(t, []string{"xíng", "háng", "hàng", "héng"}, prons)
	chars := table.Characters()
	assert.Equal(t, '一', chars[0].Codepoint)
	assert.True(t, chars[1].IsMulti())
	assert.False(t, chars[2].IsMulti())
	assert.Equal(t, "xíng", chars[1].Default())
}

func TestReadTableErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	tests := []struct {
		name string
		data string
	}{
		{"missing colon", "U+4E00 yī"},
		{"bad code point", "4E00: yī"},
		{"duplicate", "U+4E00: yī\nU+4E00: yì"},
		{"no reading", "U+4E00: # 一"},
		{"repeated reading", "U+4E00: yī,yī"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadTable(strings.NewReader(tt.data)); err == nil {
				t.Errorf("expected error for %q", tt.data)
			}
		})
	}
}
