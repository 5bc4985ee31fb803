package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/internal/fontload"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/proof"
)

func runProofCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	f := mustLoadFont(args["font"].Value)
	store := mustLoadStore(flags)
	src := mustLoadSource(optString(flags["pinyin"], "pinyin"))
	rep, err := proof.Check(f, store, src)
	if err != nil {
		var be *ot.BuildError
		if errors.As(err, &be) && be.Kind == ot.BudgetExceeded {
			fatalf("%s has %d glyphs, at most %d are possible", rep.Fontname, be.Count, ot.MaxGlyphs)
		}
		fatalf("%v", err)
	}
	printWarnings(rep.Warnings)
	pterm.Info.Printf("%s: %d glyphs, %d positions checked\n", rep.Fontname, rep.Glyphs, rep.Checked)
	if rep.OK() {
		pterm.Success.Println("all phrases select the expected readings")
		return
	}
	data := [][]string{{"Phrase", "Position", "Expected", "Shaped"}}
	for _, m := range rep.Mismatches {
		data = append(data, []string{m.Phrase, fmt.Sprintf("%d", m.At),
			fmt.Sprintf("%d", m.Want), fmt.Sprintf("%d", m.Have)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	fatalf("%d mismatches", len(rep.Mismatches))
}

func mustLoadFont(path string) *fontload.BinaryFont {
	path = strings.TrimSpace(path)
	if path == "" {
		fatalf("font path is required")
	}
	f, err := fontload.LoadFont(path)
	if err != nil {
		fatalf("cannot load font: %v", err)
	}
	tracer().Infof("loaded font %s", f.Fontname)
	return f
}
