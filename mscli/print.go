package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
)

func printGlyph(name ot.GlyphName, g *ot.Glyph) {
	if g == nil {
		pterm.Error.Printf("glyph %s is not in glyf\n", name)
		return
	}
	pterm.Printf("%s: advance %.1f × %.1f, vertical origin %.1f, outline %v\n",
		name, g.AdvanceWidth, g.AdvanceHeight, g.VerticalOrigin, !g.IsEmpty() && len(g.References) == 0)
	if len(g.References) == 0 {
		return
	}
	data := [][]string{{"Reference", "x", "y", "a", "d"}}
	for _, r := range g.References {
		data = append(data, []string{
			string(r.Glyph),
			fmt.Sprintf("%.1f", r.X),
			fmt.Sprintf("%.1f", r.Y),
			fmt.Sprintf("%.3f", r.A),
			fmt.Sprintf("%.3f", r.D),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printVariationSequences(t *ot.Tables, r rune) {
	var keys []ot.UVSKey
	for k := range t.CMapUVS {
		if k.Codepoint == r {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		pterm.Printf("%c has no variation sequences\n", r)
		return
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Selector < keys[j].Selector })
	data := [][]string{{"Selector", "Glyph"}}
	for _, k := range keys {
		data = append(data, []string{fmt.Sprintf("U+%X", k.Selector), string(t.CMapUVS[k])})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printLookupList(g *ot.GSUB) {
	count := len(g.LookupOrder)
	pterm.Printf("GSUB has %d lookups\n", count)
	if count == 0 {
		return
	}
	data := [][]string{
		{"Index", "Name", "Type", "Entries"},
	}
	for i, name := range g.LookupOrder {
		l, ok := g.Lookups[name]
		if !ok {
			data = append(data, []string{fmt.Sprintf("%d", i), name, "<missing>", ""})
			continue
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			name,
			formatLookupType(l),
			fmt.Sprintf("%d", lookupSize(l)),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printRule(t *ot.Tables, index int, rule ot.ChainingRule) {
	pterm.Printf("Rule %d: input %d…%d, apply %s\n", index, rule.InputBegins, rule.InputEnds,
		formatApply(rule.Apply))
	data := [][]string{{"Position", "Glyphs", "Characters"}}
	for i, set := range rule.Match {
		names := make([]string, len(set))
		chars := strings.Builder{}
		for j, g := range set {
			names[j] = string(g)
			for _, r := range t.CMap.CodepointsOf(ot.CID(g)) {
				chars.WriteRune(r)
			}
		}
		data = append(data, []string{fmt.Sprintf("%d", i), strings.Join(names, " "), chars.String()})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printMapping(m map[ot.GlyphName]ot.GlyphName, from string) {
	if from != "" {
		pterm.Printf("%s => %s\n", from, m[ot.GlyphName(from)])
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	data := [][]string{{"From", "To"}}
	for _, k := range keys {
		data = append(data, []string{k, string(m[ot.GlyphName(k)])})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printAlternates(m map[ot.GlyphName][]ot.GlyphName, from string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		if from == "" || k == ot.GlyphName(from) {
			keys = append(keys, string(k))
		}
	}
	sort.Strings(keys)
	data := [][]string{{"From", "Alternates"}}
	for _, k := range keys {
		alts := make([]string, len(m[ot.GlyphName(k)]))
		for i, a := range m[ot.GlyphName(k)] {
			alts[i] = string(a)
		}
		data = append(data, []string{k, strings.Join(alts, " ")})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func formatLookupType(l ot.Lookup) string {
	switch l.(type) {
	case *ot.SingleSubstitution:
		return "Single"
	case *ot.AlternateSubstitution:
		return "Alternate"
	case *ot.ChainingContextual:
		return "Chaining"
	}
	return fmt.Sprintf("Opaque(%s)", l.LookupType())
}

func formatApply(apply []ot.Apply) string {
	if len(apply) == 0 {
		return "ignore"
	}
	parts := make([]string, len(apply))
	for i, a := range apply {
		parts[i] = fmt.Sprintf("%d:%s", a.At, a.Lookup)
	}
	return strings.Join(parts, " ")
}
