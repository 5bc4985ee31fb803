package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"

	mengshen "github.com/MaruTama/Mengshen-pinyin-font-sub000"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/otfcc"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/style"
)

func runBuildCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	basePath := strings.TrimSpace(args["base"].Value)
	latinPath := strings.TrimSpace(args["latin"].Value)
	if basePath == "" || latinPath == "" {
		fatalf("base font and latin font are required")
	}
	outPath := optString(flags["output"], "output")
	if outPath == "" {
		fatalf("output path is empty")
	}
	conf := buildConfig(
		optString(flags["style"], "style"),
		optString(flags["otfcc-dump"], "otfcc-dump"),
		optString(flags["otfcc-build"], "otfcc-build"),
	)
	st, err := style.FromConfig(conf)
	if err != nil {
		fatalf("%v", err)
	}
	codec, err := otfcc.FromConfig(conf)
	if err != nil {
		fatalf("%v", err)
	}
	langs, err := parseLanguages(optString(flags["lang"], "lang"))
	if err != nil {
		fatalf("%v", err)
	}
	store := mustLoadStore(flags)
	src := mustLoadSource(optString(flags["pinyin"], "pinyin"))
	base := mustReadFile(basePath)
	latin := mustReadFile(latinPath)

	asm, err := mengshen.NewAssembler(
		mengshen.WithStyle(st),
		mengshen.WithSource(src),
		mengshen.WithLanguages(langs...),
	)
	if err != nil {
		fatalf("%v", err)
	}
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("building %s with style %s", outPath, st.Name))
	var out []byte
	if mustFlagBool(flags["json"], "json") {
		var t *ot.Tables
		if t, err = asm.BuildTables(codec, base, latin, store); err == nil {
			out, err = t.MarshalJSON()
		}
	} else {
		out, err = asm.Build(codec, base, latin, store)
	}
	if err != nil {
		spinner.Fail(err.Error())
		printWarnings(asm.Warnings())
		os.Exit(1)
	}
	spinner.Success()
	printWarnings(asm.Warnings())
	if err := writeFile(outPath, out); err != nil {
		fatalf("%v", err)
	}
	pterm.Success.Printf("wrote %s (%d bytes)\n", outPath, len(out))
}

func mustReadFile(path string) []byte {
	b, err := os.ReadFile(path)
	if err != nil {
		fatalf("%v", err)
	}
	return b
}

func writeFile(path string, b []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
