/*
Package gsub compiles homograph patterns into a GSUB table.

Features and lookups are emitted in fixed groups:

	aalt_0 → lookup_aalt_0   single substitution cid → cid.ss00 (one reading)
	aalt_1 → lookup_aalt_1   alternates cid → [cid.ss00 … cid.ssNN] (homographs)
	rclt_0 → lookup_rclt_0   single-homograph templates
	rclt_1 → lookup_rclt_1   dual-homograph phrases
	rclt_2 → lookup_rclt_2   exception phrases, ignore rules first

Chaining rules apply nested lookups: lookup_pattern_{idx} for reading index
idx, and the authored lookups of the phrase tables. The lookup order is the
sorted set of all lookup names, so output is reproducible.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package gsub

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/language"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/patterns"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/pinyin"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/variant"
)

// tracer writes to trace with key 'mengshen'
func tracer() tracing.Trace {
	return tracing.Select("mengshen")
}

// Feature and lookup names.
const (
	FeatureAalt0 = "aalt_0"
	FeatureAalt1 = "aalt_1"
	FeatureRclt0 = "rclt_0"
	FeatureRclt1 = "rclt_1"
	FeatureRclt2 = "rclt_2"
)

// LookupName returns the name of the lookup of a feature.
func LookupName(feature string) string {
	return "lookup_" + feature
}

// PatternLookup returns the name of the single substitution selecting
// reading index idx.
func PatternLookup(idx int) string {
	return fmt.Sprintf("lookup_pattern_%d", idx)
}

var features = []string{FeatureAalt0, FeatureAalt1, FeatureRclt0, FeatureRclt1, FeatureRclt2}

// Input collects what Compile needs.
type Input struct {
	Variants  *variant.Result
	CMap      *ot.CMap
	Store     *patterns.Store
	Languages []language.Tag
}

// Result is a compiled GSUB table together with the patterns skipped.
type Result struct {
	GSUB     *ot.GSUB
	Warnings []ot.Warning
}

type compiler struct {
	in   Input
	gsub *ot.GSUB
	ws   *ot.Warnings
}

// Compile builds the GSUB table.
func Compile(in Input) (*Result, error) {
	c := &compiler{in: in, gsub: ot.NewGSUB(), ws: &ot.Warnings{}}
	if c.in.Store == nil {
		store, err := patterns.NewStore(nil, nil, nil)
		if err != nil {
			return nil, err
		}
		c.in.Store = store
	}
	systems, err := languageSystems(in.Languages)
	if err != nil {
		return nil, err
	}
	for _, sys := range systems {
		c.gsub.Languages[sys] = ot.LanguageSystem{Features: append([]string(nil), features...)}
	}
	for _, f := range features {
		c.gsub.Features[f] = []string{LookupName(f)}
	}
	c.alternates()
	steps := []func() error{c.singlePatterns, c.dualPatterns, c.exceptionPatterns}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	if err := c.checkReferences(); err != nil {
		return nil, err
	}
	c.gsub.LookupOrder = lookupOrder(c.gsub)
	tracer().Infof("compiled %d lookups, %d patterns skipped", len(c.gsub.Lookups), c.ws.Len())
	return &Result{GSUB: c.gsub, Warnings: c.ws.List()}, nil
}

// lookupOrder returns the sorted set of lookups referenced by features and
// rules, together with all lookups present.
func lookupOrder(g *ot.GSUB) []string {
	set := treeset.NewWithStringComparator()
	for _, lookups := range g.Features {
		for _, l := range lookups {
			set.Add(l)
		}
	}
	for name, l := range g.Lookups {
		set.Add(name)
		if chain, ok := l.(*ot.ChainingContextual); ok {
			for _, r := range chain.Rules {
				for _, a := range r.Apply {
					set.Add(a.Lookup)
				}
			}
		}
	}
	order := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		order = append(order, v.(string))
	}
	return order
}

// --- aalt ------------------------------------------------------------------

func (c *compiler) alternates() {
	single := ot.NewSingleSubstitution()
	alt := ot.NewAlternateSubstitution()
	for _, e := range c.in.Variants.Entries {
		if e.IsMulti() {
			alt.Alternates[e.CID.Glyph()] = append([]ot.GlyphName(nil), e.Variants...)
		} else {
			single.Mapping[e.CID.Glyph()] = e.Variants[0]
		}
	}
	c.gsub.Lookups[LookupName(FeatureAalt0)] = single
	c.gsub.Lookups[LookupName(FeatureAalt1)] = alt
}

// --- rclt_0 ----------------------------------------------------------------

func (c *compiler) singlePatterns() error {
	chain := &ot.ChainingContextual{}
	for _, idx := range c.in.Store.ReadingIndices() {
		if idx > patterns.MaxReadingIndex {
			return ot.Errorf(ot.PatternAuthoringError, fmt.Sprintf("index %d", idx),
				"reading index exceeds %d", patterns.MaxReadingIndex)
		}
		name := PatternLookup(idx)
		subst := ot.NewSingleSubstitution()
		for _, rec := range c.in.Store.Records(idx) {
			target, ok := c.entry(rec.Character, rec.String())
			if !ok {
				continue
			}
			if err := checkReading(target, rec); err != nil {
				return err
			}
			g, _ := target.PatternGlyph(idx)
			subst.Mapping[target.CID.Glyph()] = g
			for _, t := range rec.Templates {
				match, ok := c.match(t.Phrase, t.Source)
				if !ok {
					continue
				}
				chain.Rules = append(chain.Rules, ot.ChainingRule{
					Match:       match,
					Apply:       []ot.Apply{{At: t.At, Lookup: name}},
					InputBegins: t.At,
					InputEnds:   t.At + 1,
				})
			}
		}
		if len(subst.Mapping) > 0 {
			c.gsub.Lookups[name] = subst
		}
	}
	c.gsub.Lookups[LookupName(FeatureRclt0)] = chain
	return nil
}

// checkReading verifies that a record's pronunciation is the reading its
// index selects.
func checkReading(e *variant.Entry, rec *patterns.SingleRecord) error {
	subject := fmt.Sprintf("%c/index %d", rec.Character, rec.ReadingIndex)
	prons := e.Character.Pronunciations
	if 1+rec.ReadingIndex >= len(prons) {
		return ot.Errorf(ot.PatternAuthoringError, subject,
			"character has %d readings, no reading for index %d", len(prons), rec.ReadingIndex)
	}
	if rec.Pronunciation == "" {
		return nil
	}
	want, err1 := pinyin.Simplify(prons[1+rec.ReadingIndex])
	have, err2 := pinyin.Simplify(rec.Pronunciation)
	if err1 != nil || err2 != nil || want != have {
		return ot.Errorf(ot.PatternAuthoringError, subject,
			"pattern reading %s does not match reading %s of the pinyin data",
			rec.Pronunciation, prons[1+rec.ReadingIndex])
	}
	return nil
}

// --- rclt_1 / rclt_2 -------------------------------------------------------

func (c *compiler) dualPatterns() error {
	chain := &ot.ChainingContextual{}
	if err := c.phraseRules(c.in.Store.Dual, chain, nil); err != nil {
		return err
	}
	c.gsub.Lookups[LookupName(FeatureRclt1)] = chain
	return nil
}

func (c *compiler) exceptionPatterns() error {
	var ignore []ot.ChainingRule
	main := &ot.ChainingContextual{}
	if err := c.phraseRules(c.in.Store.Exceptions, main, &ignore); err != nil {
		return err
	}
	// ignore rules must win over every main rule
	chain := &ot.ChainingContextual{Rules: append(ignore, main.Rules...)}
	c.gsub.Lookups[LookupName(FeatureRclt2)] = chain
	return nil
}

func (c *compiler) phraseRules(pt *patterns.PhraseTable, chain *ot.ChainingContextual,
	ignore *[]ot.ChainingRule) error {
	//
	used := make(map[string]bool)
	for _, p := range pt.Phrases {
		if p.Ignore != nil && ignore != nil {
			if rule, ok := c.ignoreRule(p); ok {
				*ignore = append(*ignore, rule)
			}
		}
		applied := p.Applied()
		if len(applied) == 0 {
			continue
		}
		match, ok := c.match(p.Text, p.String())
		if !ok {
			continue
		}
		rule := ot.ChainingRule{
			Match:       match,
			InputBegins: applied[0].At,
			InputEnds:   applied[len(applied)-1].At + 1,
		}
		for _, pos := range applied {
			rule.Apply = append(rule.Apply, ot.Apply{At: pos.At, Lookup: pos.Lookup})
			used[pos.Lookup] = true
		}
		chain.Rules = append(chain.Rules, rule)
	}
	for _, name := range pt.LookupNames() {
		if !used[name] {
			continue
		}
		subst, err := c.tableLookup(name, pt.Lookups[name])
		if err != nil {
			return err
		}
		if prev, dup := c.gsub.Lookups[name]; dup {
			if fmt.Sprint(prev.(*ot.SingleSubstitution).Mapping) != fmt.Sprint(subst.Mapping) {
				return ot.Errorf(ot.PatternAuthoringError, name, "lookup defined differently in two tables")
			}
		}
		c.gsub.Lookups[name] = subst
	}
	return nil
}

// ignoreRule builds a rule with an empty apply list. If the fragment occurs in
// the phrase, the rule matches the whole phrase with the input at the marked
// position; otherwise it matches the fragment alone.
//
// Backtrack slots also match the variants of their character: the main rule
// of the same phrase may already have substituted them one position earlier.
func (c *compiler) ignoreRule(p *patterns.Phrase) (ot.ChainingRule, bool) {
	ip := p.Ignore
	seq, at := ip.Fragment, ip.At
	if o := ip.Offset(p.Text); o >= 0 {
		seq, at = p.Text, o+ip.At
	}
	match, ok := c.match(seq, p.String()+"/ignore")
	if !ok {
		return ot.ChainingRule{}, false
	}
	for i := 0; i < at; i++ {
		cid, _ := c.in.CMap.Lookup(seq[i])
		if e, ok := c.in.Variants.Entry(cid); ok {
			match[i] = append(match[i], e.Variants...)
		}
	}
	return ot.ChainingRule{
		Match:       match,
		Apply:       []ot.Apply{},
		InputBegins: at,
		InputEnds:   at + 1,
	}, true
}

// tableLookup resolves an authored lookup to a single substitution.
func (c *compiler) tableLookup(name string, table map[rune]patterns.Target) (*ot.SingleSubstitution, error) {
	subst := ot.NewSingleSubstitution()
	for r, target := range table {
		e, ok := c.entry(r, name)
		if !ok {
			continue
		}
		g, err := resolve(e, target)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", name, err)
		}
		subst.Mapping[e.CID.Glyph()] = g
	}
	return subst, nil
}

// resolve returns the variant a target denotes. Reading k of a homograph is
// variant ss{k+1}.
func resolve(e *variant.Entry, t patterns.Target) (ot.GlyphName, error) {
	subject := fmt.Sprintf("%c", e.Character.Codepoint)
	if t.Variant >= 0 {
		if t.Variant >= len(e.Variants) {
			return "", ot.Errorf(ot.PatternAuthoringError, subject, "no variant %s", t)
		}
		return e.Variants[t.Variant], nil
	}
	key, err := pinyin.Simplify(t.Reading)
	if err != nil {
		return "", ot.Errorf(ot.PatternAuthoringError, subject, "%v", err)
	}
	for k, p := range e.Character.Pronunciations {
		if pk, _ := pinyin.Simplify(p); pk == key {
			g, _ := e.ReadingGlyph(k)
			return g, nil
		}
	}
	return "", ot.Errorf(ot.PatternAuthoringError, subject, "no reading %s", t.Reading)
}

// --- helpers ---------------------------------------------------------------

// entry finds the processed character for r, warning if there is none.
func (c *compiler) entry(r rune, subject string) (*variant.Entry, bool) {
	cid, ok := c.in.CMap.Lookup(r)
	if !ok {
		c.ws.Add(ot.MissingGlyph, subject, "%c not in cmap, skipped", r)
		return nil, false
	}
	e, ok := c.in.Variants.Entry(cid)
	if !ok {
		c.ws.Add(ot.MissingGlyph, subject, "%c has no variants, skipped", r)
		return nil, false
	}
	return e, true
}

// match returns one glyph set per character of a phrase.
func (c *compiler) match(phrase []rune, subject string) ([][]ot.GlyphName, bool) {
	match := make([][]ot.GlyphName, len(phrase))
	for i, r := range phrase {
		cid, ok := c.in.CMap.Lookup(r)
		if !ok {
			c.ws.Add(ot.MissingGlyph, subject, "%c not in cmap, pattern skipped", r)
			return nil, false
		}
		match[i] = []ot.GlyphName{cid.Glyph()}
	}
	return match, true
}

// checkReferences verifies that every lookup applied by a rule exists.
func (c *compiler) checkReferences() error {
	for _, name := range c.gsub.LookupNames() {
		switch l := c.gsub.Lookups[name].(type) {
		case *ot.ChainingContextual:
			for _, r := range l.Rules {
				for _, a := range r.Apply {
					if _, ok := c.gsub.Lookups[a.Lookup]; !ok {
						return fmt.Errorf("lookup %s applies undefined lookup %s", name, a.Lookup)
					}
				}
			}
		case *ot.SingleSubstitution, *ot.AlternateSubstitution, *ot.OpaqueLookup:
		default:
			panic(fmt.Sprintf("gsub: unknown lookup variant %T", l))
		}
	}
	return nil
}
