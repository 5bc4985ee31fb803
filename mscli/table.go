package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pterm/pterm"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/pinyin"
)

func charOp(intp *Intp, op *Op) (err error, stop bool) {
	r, size := utf8.DecodeRuneInString(op.arg)
	if size == 0 || r == utf8.RuneError {
		return errors.New("usage: char:<character>"), false
	}
	cid, ok := intp.tables.CMap.Lookup(r)
	if !ok {
		return fmt.Errorf("%c (U+%04X) is not in cmap", r, r), false
	}
	pterm.Printf("%c (U+%04X) => %s\n", r, r, cid)
	printGlyph(cid.Glyph(), intp.tables.Glyph(cid.Glyph()))
	printVariationSequences(intp.tables, r)
	return
}

func glyphOp(intp *Intp, op *Op) (err error, stop bool) {
	name, ok := op.hasArg()
	if !ok {
		pterm.Printf("font has %d glyphs\n", len(intp.tables.Glyf))
		return
	}
	g := intp.tables.Glyph(ot.GlyphName(name))
	if g == nil {
		return fmt.Errorf("no glyph %s", name), false
	}
	printGlyph(ot.GlyphName(name), g)
	return
}

func languagesOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkGSUB(); err != nil {
		return
	}
	keys := make([]string, 0, len(intp.tables.GSUB.Languages))
	for k := range intp.tables.GSUB.Languages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	data := [][]string{{"Language system", "Features"}}
	for _, k := range keys {
		data = append(data, []string{k, strings.Join(intp.tables.GSUB.Languages[k].Features, ", ")})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return
}

func featuresOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkGSUB(); err != nil {
		return
	}
	names := make([]string, 0, len(intp.tables.GSUB.Features))
	for f := range intp.tables.GSUB.Features {
		names = append(names, f)
	}
	sort.Strings(names)
	data := [][]string{{"Feature", "Lookups"}}
	for _, f := range names {
		data = append(data, []string{f, strings.Join(intp.tables.GSUB.Features[f], ", ")})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return
}

func lookupsOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkGSUB(); err != nil {
		return
	}
	printLookupList(intp.tables.GSUB)
	return
}

func lookupOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkGSUB(); err != nil {
		return
	}
	name, ok := op.hasArg()
	if !ok {
		intp.lookup = ""
		return
	}
	l, ok := intp.tables.GSUB.Lookups[name]
	if !ok {
		return fmt.Errorf("no lookup %s", name), false
	}
	intp.lookup = name
	tracer().Infof("focus on lookup %s", name)
	pterm.Printf("%s: %s with %d entries\n", name, formatLookupType(l), lookupSize(l))
	return
}

func rulesOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkGSUB(); err != nil {
		return
	}
	if intp.lookup == "" {
		return ERR_NO_LOOKUP, false
	}
	switch l := intp.tables.GSUB.Lookups[intp.lookup].(type) {
	case *ot.ChainingContextual:
		if op.noArg() {
			pterm.Printf("%s has %d rules\n", intp.lookup, len(l.Rules))
		} else if i, err := strconv.Atoi(op.arg); err == nil && i >= 0 && i < len(l.Rules) {
			printRule(intp.tables, i, l.Rules[i])
		} else {
			return fmt.Errorf("rule index invalid: %v", op.arg), false
		}
	case *ot.SingleSubstitution:
		printMapping(l.Mapping, op.arg)
	case *ot.AlternateSubstitution:
		printAlternates(l.Alternates, op.arg)
	default:
		pterm.Printf("%s is opaque (%s)\n", intp.lookup, l.LookupType())
	}
	return
}

func matchOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkGSUB(); err != nil {
		return
	}
	phrase := []rune(op.arg)
	if len(phrase) == 0 {
		return errors.New("usage: match:<phrase>"), false
	}
	glyphs := make([]ot.GlyphName, len(phrase))
	for i, r := range phrase {
		cid, ok := intp.tables.CMap.Lookup(r)
		if !ok {
			return fmt.Errorf("%c is not in cmap", r), false
		}
		glyphs[i] = cid.Glyph()
	}
	hits := matchingRules(intp.tables.GSUB, glyphs)
	if len(hits) == 0 {
		pterm.Printf("no rule matches %s\n", op.arg)
		return
	}
	data := [][]string{{"Lookup", "Rule", "Position", "Input", "Apply"}}
	for _, h := range hits {
		data = append(data, []string{
			h.lookup,
			strconv.Itoa(h.index),
			strconv.Itoa(h.offset),
			fmt.Sprintf("%d…%d", h.rule.InputBegins, h.rule.InputEnds),
			formatApply(h.rule.Apply),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return
}

func simplifyOp(intp *Intp, op *Op) (err error, stop bool) {
	p, ok := op.hasArg()
	if !ok {
		return errors.New("usage: simplify:<pinyin>"), false
	}
	key, err := pinyin.Simplify(p)
	if err != nil {
		return err, false
	}
	tokens, _ := pinyin.Tokens(p)
	pterm.Printf("%s => %s %v\n", p, key, tokens)
	if g := intp.tables.Glyph(ot.GlyphName(key)); g != nil {
		printGlyph(ot.GlyphName(key), g)
	}
	return
}

// --- Rule matching ----------------------------------------------------

type ruleHit struct {
	lookup string
	index  int
	offset int
	rule   ot.ChainingRule
}

// matchingRules lists the chaining rules matching a glyph sequence at some
// offset, in lookup order. Substitutions of earlier lookups are not
// applied.
func matchingRules(g *ot.GSUB, glyphs []ot.GlyphName) []ruleHit {
	var hits []ruleHit
	for _, name := range g.LookupOrder {
		chain, ok := g.Lookups[name].(*ot.ChainingContextual)
		if !ok {
			continue
		}
		for i, rule := range chain.Rules {
			for off := 0; off+len(rule.Match) <= len(glyphs); off++ {
				if matchesAt(rule, glyphs, off) {
					hits = append(hits, ruleHit{lookup: name, index: i, offset: off, rule: rule})
				}
			}
		}
	}
	return hits
}

func matchesAt(rule ot.ChainingRule, glyphs []ot.GlyphName, off int) bool {
	for i, set := range rule.Match {
		found := false
		for _, g := range set {
			if g == glyphs[off+i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func lookupSize(l ot.Lookup) int {
	switch l := l.(type) {
	case *ot.SingleSubstitution:
		return len(l.Mapping)
	case *ot.AlternateSubstitution:
		return len(l.Alternates)
	case *ot.ChainingContextual:
		return len(l.Rules)
	}
	return 0
}
