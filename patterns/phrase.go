package patterns

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
)

// Kind tells dual-homograph tables from exception tables.
type Kind int

const (
	Dual Kind = iota
	Exception
)

func (k Kind) String() string {
	if k == Exception {
		return "exception"
	}
	return "dual"
}

// ReservedPrefixes are the lookup name prefixes generated by the compiler.
// Authored lookup names must not use them.
var ReservedPrefixes = []string{"lookup_aalt_", "lookup_rclt_", "lookup_pattern_"}

// Target is the substitution target of a character in a lookup table:
// either a reading, or an explicit variant given as "ssNN".
type Target struct {
	Reading string
	Variant int // -1 if a reading is given
}

var variantSuffix = regexp.MustCompile(`^ss([0-9]{2})$`)

// ParseTarget parses a lookup table value.
func ParseTarget(s string) Target {
	if m := variantSuffix.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Target{Variant: n}
	}
	return Target{Reading: s, Variant: -1}
}

func (t Target) String() string {
	if t.Variant >= 0 {
		return fmt.Sprintf("ss%02d", t.Variant)
	}
	return t.Reading
}

// Position assigns a lookup to a phrase position. An empty Lookup marks a
// position which takes part in matching only.
type Position struct {
	At     int
	Lookup string
}

// IgnorePattern is a phrase fragment, e.g. `着' 手`, with the position
// marked by an apostrophe. A rule matching it suppresses substitution.
type IgnorePattern struct {
	Fragment []rune
	At       int // marked position within Fragment
	Source   string
}

// ParseIgnore parses an ignore fragment. Tokens are separated by spaces;
// exactly one apostrophe must follow the marked character.
func ParseIgnore(s string) (*IgnorePattern, error) {
	ip := &IgnorePattern{Source: s, At: -1}
	if n := strings.Count(s, "'"); n != 1 {
		return nil, ot.Errorf(ot.PatternAuthoringError, s, "ignore pattern needs exactly one marked position, has %d", n)
	}
	for _, tok := range strings.Fields(s) {
		for _, r := range tok {
			if r == '\'' {
				if len(ip.Fragment) == 0 {
					return nil, ot.Errorf(ot.PatternAuthoringError, s, "mark does not follow a character")
				}
				ip.At = len(ip.Fragment) - 1
				continue
			}
			ip.Fragment = append(ip.Fragment, r)
		}
	}
	return ip, nil
}

// Offset returns the position of the first occurrence of the fragment in
// phrase, or -1.
func (ip *IgnorePattern) Offset(phrase []rune) int {
	n := len(ip.Fragment)
outer:
	for i := 0; i+n <= len(phrase); i++ {
		for j := 0; j < n; j++ {
			if phrase[i+j] != ip.Fragment[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

// Phrase is a phrase together with the lookups to apply to its positions.
type Phrase struct {
	Text      []rune
	Positions []Position // sorted by position
	Ignore    *IgnorePattern
}

// String returns the phrase text.
func (p *Phrase) String() string {
	return string(p.Text)
}

// Applied returns the positions carrying a lookup.
func (p *Phrase) Applied() []Position {
	var applied []Position
	for _, pos := range p.Positions {
		if pos.Lookup != "" {
			applied = append(applied, pos)
		}
	}
	return applied
}

// PhraseTable holds the dual-homograph or exception patterns.
type PhraseTable struct {
	Kind    Kind
	Lookups map[string]map[rune]Target
	Phrases []*Phrase // sorted by text
}

// NewPhraseTable creates an empty table.
func NewPhraseTable(kind Kind) *PhraseTable {
	return &PhraseTable{Kind: kind, Lookups: make(map[string]map[rune]Target)}
}

// LookupNames returns the names of the lookup table, sorted.
func (pt *PhraseTable) LookupNames() []string {
	names := make([]string, 0, len(pt.Lookups))
	for n := range pt.Lookups {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type phraseFile struct {
	LookupTable map[string]map[string]string  `json:"lookup_table"`
	Patterns    map[string]map[string]*string `json:"patterns"`
}

// LoadPhraseTable reads a dual-homograph or exception table:
//
//	{
//	  "lookup_table": { "lookup_11": { "行": "háng", "长": "ss02" } },
//	  "patterns":     { "行长": { "0": "lookup_11", "1": "lookup_11" },
//	                    "背着手": { "0": null, "1": "lookup_12", "ignore": "着' 手" } }
//	}
//
// Dual phrases carry exactly two positions. "ignore" is legal in exception
// tables only.
func LoadPhraseTable(r io.Reader, kind Kind) (*PhraseTable, error) {
	var f phraseFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("cannot decode %s patterns: %w", kind, err)
	}
	pt := NewPhraseTable(kind)
	for name, entries := range f.LookupTable {
		for _, prefix := range ReservedPrefixes {
			if strings.HasPrefix(name, prefix) {
				return nil, ot.Errorf(ot.PatternAuthoringError, name, "lookup name uses reserved prefix %s", prefix)
			}
		}
		m := make(map[rune]Target, len(entries))
		for ch, target := range entries {
			if utf8.RuneCountInString(ch) != 1 {
				return nil, ot.Errorf(ot.PatternAuthoringError, name, "key %q is not a single character", ch)
			}
			r, _ := utf8.DecodeRuneInString(ch)
			m[r] = ParseTarget(target)
		}
		pt.Lookups[name] = m
	}
	for text, spec := range f.Patterns {
		p, err := pt.parsePhrase(text, spec)
		if err != nil {
			return nil, err
		}
		pt.Phrases = append(pt.Phrases, p)
	}
	sort.Slice(pt.Phrases, func(i, j int) bool {
		return string(pt.Phrases[i].Text) < string(pt.Phrases[j].Text)
	})
	tracer().Debugf("loaded %d %s phrases, %d lookups", len(pt.Phrases), kind, len(pt.Lookups))
	return pt, nil
}

func (pt *PhraseTable) parsePhrase(text string, spec map[string]*string) (*Phrase, error) {
	p := &Phrase{Text: []rune(text)}
	for key, val := range spec {
		if key == "ignore" {
			if pt.Kind != Exception {
				return nil, ot.Errorf(ot.PatternAuthoringError, text, "ignore pattern in %s table", pt.Kind)
			}
			if val == nil {
				return nil, ot.Errorf(ot.PatternAuthoringError, text, "empty ignore pattern")
			}
			ip, err := ParseIgnore(*val)
			if err != nil {
				return nil, fmt.Errorf("phrase %s: %w", text, err)
			}
			p.Ignore = ip
			continue
		}
		at, err := strconv.Atoi(key)
		if err != nil || at < 0 || at >= len(p.Text) {
			return nil, ot.Errorf(ot.PatternAuthoringError, text, "position %q outside of phrase", key)
		}
		pos := Position{At: at}
		if val != nil {
			pos.Lookup = *val
			lookup, ok := pt.Lookups[pos.Lookup]
			if !ok {
				return nil, ot.Errorf(ot.PatternAuthoringError, text, "unknown lookup %s", pos.Lookup)
			}
			if _, ok := lookup[p.Text[at]]; !ok {
				return nil, ot.Errorf(ot.PatternAuthoringError, text, "lookup %s has no entry for %c", pos.Lookup, p.Text[at])
			}
		}
		p.Positions = append(p.Positions, pos)
	}
	sort.Slice(p.Positions, func(i, j int) bool { return p.Positions[i].At < p.Positions[j].At })
	if pt.Kind == Dual && len(p.Positions) != 2 {
		return nil, ot.Errorf(ot.PatternAuthoringError, text,
			"dual-homograph phrase needs exactly two positions, has %d", len(p.Positions))
	}
	if len(p.Applied()) == 0 && p.Ignore == nil {
		return nil, ot.Errorf(ot.PatternAuthoringError, text, "phrase applies no lookup")
	}
	return p, nil
}
