package pinyin

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Character is a hanzi together with its readings. Pronunciations[0] is the
// default reading.
type Character struct {
	Codepoint      rune
	Pronunciations []string
}

// IsMulti reports whether c is a homograph, i.e. has more than one reading.
func (c Character) IsMulti() bool {
	return len(c.Pronunciations) > 1
}

// Default returns the default reading of c.
func (c Character) Default() string {
	return c.Pronunciations[0]
}

func (c Character) String() string {
	return fmt.Sprintf("%c(U+%04X) %s", c.Codepoint, c.Codepoint, strings.Join(c.Pronunciations, ","))
}

// Source is a read-only provider of pinyin data.
type Source interface {
	// Pronunciations returns the readings of r, default reading first.
	Pronunciations(r rune) ([]string, bool)
	// Characters returns all known characters in code point order.
	Characters() []Character
}

// Table is a map-backed Source.
type Table struct {
	m map[rune][]string
}

var _ Source = (*Table)(nil)

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{m: make(map[rune][]string)}
}

// Add sets the readings of r. Readings must be non-empty and distinct.
func (t *Table) Add(r rune, pronunciations ...string) error {
	if len(pronunciations) == 0 {
		return fmt.Errorf("character %c has no pronunciation", r)
	}
	seen := make(map[string]bool, len(pronunciations))
	for _, p := range pronunciations {
		if p == "" {
			return fmt.Errorf("character %c has an empty pronunciation", r)
		}
		if seen[p] {
			return fmt.Errorf("character %c lists pronunciation %q twice", r, p)
		}
		seen[p] = true
	}
	t.m[r] = append([]string(nil), pronunciations...)
	return nil
}

// Pronunciations is part of interface Source.
func (t *Table) Pronunciations(r rune) ([]string, bool) {
	p, ok := t.m[r]
	return p, ok
}

// Characters is part of interface Source.
func (t *Table) Characters() []Character {
	chars := make([]Character, 0, len(t.m))
	for r, p := range t.m {
		chars = append(chars, Character{Codepoint: r, Pronunciations: p})
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i].Codepoint < chars[j].Codepoint })
	return chars
}

// Len returns the number of characters in t.
func (t *Table) Len() int {
	return len(t.m)
}

// ReadTable parses pinyin data in the line format of the pinyin-data
// project:
//
//	U+884C: xíng,háng  # 行
//
// Everything after '#' is a comment. A code point listed twice is an error.
func ReadTable(r io.Reader) (*Table, error) {
	t := NewTable()
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cp, readings, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: missing ':' in %q", lineno, line)
		}
		cp = strings.TrimSpace(cp)
		if !strings.HasPrefix(cp, "U+") {
			return nil, fmt.Errorf("line %d: malformed code point %q", lineno, cp)
		}
		n, err := strconv.ParseUint(cp[2:], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: malformed code point %q: %w", lineno, cp, err)
		}
		if _, dup := t.m[rune(n)]; dup {
			return nil, fmt.Errorf("line %d: code point %s listed twice", lineno, cp)
		}
		var prons []string
		for _, p := range strings.Split(readings, ",") {
			if p = strings.TrimSpace(p); p != "" {
				prons = append(prons, p)
			}
		}
		if err := t.Add(rune(n), prons...); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	tracer().Debugf("read pinyin data for %d characters", t.Len())
	return t, nil
}
