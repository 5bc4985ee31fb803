package patterns

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
)

// MaxReadingIndex is the highest reading index a pattern may select. Index
// idx selects variant ss{2+idx}, and two suffix digits must not overflow
// into another character's variant range.
const MaxReadingIndex = 9

// Placeholder marks the position of the target character in a template.
const Placeholder = '~'

// TemplateKind classifies a template by where its context is.
type TemplateKind int

const (
	LeftContext  TemplateKind = iota // `~X`: context follows the target
	RightContext                     // `X~`: context precedes the target
	Embedded                         // `A~B`: context on both sides
)

func (k TemplateKind) String() string {
	switch k {
	case LeftContext:
		return "left"
	case RightContext:
		return "right"
	case Embedded:
		return "embedded"
	}
	return "?"
}

// Template is a phrase with the target character at position At.
type Template struct {
	Phrase []rune // with the target filled in
	At     int
	Kind   TemplateKind
	Source string // as authored, e.g. "银~"
}

// Text returns the phrase of t as a string.
func (t Template) Text() string {
	return string(t.Phrase)
}

func (t Template) String() string {
	return t.Source
}

// ParseTemplate parses a template with exactly one placeholder.
func ParseTemplate(target rune, s string) (Template, error) {
	s = strings.TrimSpace(s)
	if n := strings.Count(s, string(Placeholder)); n != 1 {
		return Template{}, ot.Errorf(ot.PatternAuthoringError, fmt.Sprintf("%c/%s", target, s),
			"template must contain exactly one '~', has %d", n)
	}
	t := Template{Source: s}
	for _, r := range s {
		if r == Placeholder {
			t.At = len(t.Phrase)
			r = target
		}
		t.Phrase = append(t.Phrase, r)
	}
	switch {
	case len(t.Phrase) < 2:
		return Template{}, ot.Errorf(ot.PatternAuthoringError, fmt.Sprintf("%c/%s", target, s),
			"template has no context")
	case t.At == 0:
		t.Kind = LeftContext
	case t.At == len(t.Phrase)-1:
		t.Kind = RightContext
	default:
		t.Kind = Embedded
	}
	return t, nil
}

// SingleRecord holds the templates selecting one non-default reading of a
// character.
type SingleRecord struct {
	Character     rune
	Pronunciation string
	ReadingIndex  int // reading 1+ReadingIndex, variant ss{2+ReadingIndex}
	Templates     []Template
	Line          int
}

func (r *SingleRecord) String() string {
	return fmt.Sprintf("%c[%d] %s", r.Character, r.ReadingIndex, r.Pronunciation)
}

// LoadSingle reads single-homograph patterns, one record per line:
//
//	order, character, pronunciation, [pattern|pattern|...]
//
// Order 1 denotes the default reading and is discarded. Order k ≥ 2 maps to
// reading index k-2. Lines starting with '#' are comments.
func LoadSingle(r io.Reader) ([]*SingleRecord, error) {
	var records []*SingleRecord
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := parseSingle(line, lineno)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	tracer().Debugf("loaded %d single-homograph records", len(records))
	return records, nil
}

func parseSingle(line string, lineno int) (*SingleRecord, error) {
	subject := "line " + strconv.Itoa(lineno)
	fields := strings.SplitN(line, ",", 4)
	if len(fields) != 4 {
		return nil, ot.Errorf(ot.PatternAuthoringError, subject, "expected 4 fields, have %d", len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	order, err := strconv.Atoi(fields[0])
	if err != nil || order < 1 {
		return nil, ot.Errorf(ot.PatternAuthoringError, subject, "malformed order %q", fields[0])
	}
	if utf8.RuneCountInString(fields[1]) != 1 {
		return nil, ot.Errorf(ot.PatternAuthoringError, subject, "expected a single character, have %q", fields[1])
	}
	char, _ := utf8.DecodeRuneInString(fields[1])
	list := fields[3]
	if !strings.HasPrefix(list, "[") || !strings.HasSuffix(list, "]") {
		return nil, ot.Errorf(ot.PatternAuthoringError, subject, "pattern list must be enclosed in [...]")
	}
	if order == 1 {
		return nil, nil
	}
	rec := &SingleRecord{
		Character:     char,
		Pronunciation: fields[2],
		ReadingIndex:  order - 2,
		Line:          lineno,
	}
	if rec.ReadingIndex > MaxReadingIndex {
		return nil, ot.Errorf(ot.PatternAuthoringError, fmt.Sprintf("%c/index %d", char, rec.ReadingIndex),
			"reading index exceeds %d (%s)", MaxReadingIndex, subject)
	}
	body := strings.TrimSpace(list[1 : len(list)-1])
	if body == "" {
		return rec, nil
	}
	for _, s := range strings.Split(body, "|") {
		t, err := ParseTemplate(char, s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", subject, err)
		}
		rec.Templates = append(rec.Templates, t)
	}
	return rec, nil
}
