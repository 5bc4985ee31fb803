package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
	"golang.org/x/text/language"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/patterns"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/pinyin"
)

func main() {
	commando.
		SetExecutableName("ms-tools").
		SetVersion("v0.1.0").
		SetDescription("CLI for building and proofing pinyin fonts.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("build").
		SetDescription("Build a pinyin font from a CJK base font and a Latin font.").
		SetShortDescription("build a font").
		AddArgument("base", "CJK base font file path", "").
		AddArgument("latin", "Latin font file path (pinyin letters)", "").
		AddFlag("pinyin,p", "pinyin data file (U+XXXX: reading,reading  # 字)", commando.String, "-").
		AddFlag("single", "single-homograph pattern file", commando.String, "-").
		AddFlag("dual", "dual-homograph pattern file (JSON)", commando.String, "-").
		AddFlag("exceptions", "exception pattern file (JSON)", commando.String, "-").
		AddFlag("style,s", "font style: han_serif|handwritten", commando.String, "han_serif").
		AddFlag("lang,l", "Chinese language systems (BCP 47, e.g. zh-Hans,zh-HK)", commando.String, "-").
		AddFlag("output,o", "output font file", commando.String, "mengshen.ttf").
		AddFlag("json,j", "write the JSON table set instead of a binary font", commando.Bool, nil).
		AddFlag("otfcc-dump", "path of otfccdump", commando.String, "-").
		AddFlag("otfcc-build", "path of otfccbuild", commando.String, "-").
		AddFlag("verbose,V", "display additional output", commando.Bool, nil).
		SetAction(runBuildCommand)

	commando.
		Register("simplify").
		SetDescription("Print the simplified key of pronunciations, i.e. the names of their glyphs.").
		SetShortDescription("simplify pinyin").
		AddArgument("pinyin...", "pronunciations with tone marks", "").
		AddFlag("verbose,V", "display additional output", commando.Bool, nil).
		SetAction(runSimplifyCommand)

	commando.
		Register("check").
		SetDescription("Validate pattern files, optionally against pinyin data.").
		SetShortDescription("validate patterns").
		AddFlag("pinyin,p", "pinyin data file", commando.String, "-").
		AddFlag("single", "single-homograph pattern file", commando.String, "-").
		AddFlag("dual", "dual-homograph pattern file (JSON)", commando.String, "-").
		AddFlag("exceptions", "exception pattern file (JSON)", commando.String, "-").
		AddFlag("verbose,V", "display additional output", commando.Bool, nil).
		SetAction(runCheckCommand)

	commando.
		Register("proof").
		SetDescription("Shape every pattern phrase with a built font and compare the selected readings.").
		SetShortDescription("proof a built font").
		AddArgument("font", "built font file path", "").
		AddFlag("pinyin,p", "pinyin data file", commando.String, "-").
		AddFlag("single", "single-homograph pattern file", commando.String, "-").
		AddFlag("dual", "dual-homograph pattern file (JSON)", commando.String, "-").
		AddFlag("exceptions", "exception pattern file (JSON)", commando.String, "-").
		AddFlag("verbose,V", "display additional output", commando.Bool, nil).
		SetAction(runProofCommand)

	commando.
		Register("view").
		SetDescription("Render a phrase shaped with a built font to a PNG image.").
		SetShortDescription("shape to image").
		AddArgument("font", "built font file path", "").
		AddArgument("text...", "text to shape", "").
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+94F6,U+884C)", commando.String, "-").
		AddFlag("output,o", "output PNG file", commando.String, "ms-tools-view.png").
		AddFlag("show-bboxes,B", "draw red bounding-box outlines per rendered glyph", commando.Bool, nil).
		AddFlag("ppem,p", "render scale in pixels-per-em", commando.Int, 96).
		AddFlag("width,W", "image width in pixels", commando.Int, 480).
		AddFlag("height,H", "image height in pixels", commando.Int, 200).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil).
		SetAction(runViewCommand)

	commando.Parse(nil)
}

// tracer traces with key 'mengshen.cli'
func tracer() tracing.Trace {
	return tracing.Select("mengshen.cli")
}

func setupTracing(flags map[string]commando.FlagValue) {
	level := "Error"
	if isVerbose(flags) {
		level = "Info"
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.mengshen":     level,
		"trace.mengshen.cli": level,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fatalf("error configuring tracing: %v", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
}

func runSimplifyCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	data := [][]string{{"Pinyin", "Key", "Letters"}}
	for _, p := range splitCSVSpace(args["pinyin"].Value) {
		key, err := pinyin.Simplify(p)
		if err != nil {
			fatalf("%v", err)
		}
		tokens, _ := pinyin.Tokens(p)
		data = append(data, []string{p, key, strings.Join(tokens, " ")})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runCheckCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	store := mustLoadStore(flags)
	pterm.Success.Printf("%d single-homograph records, %d dual phrases, %d exception phrases\n",
		len(store.Single), len(store.Dual.Phrases), len(store.Exceptions.Phrases))
	path := optString(flags["pinyin"], "pinyin")
	if path == "" {
		return
	}
	src := mustLoadSource(path)
	problems := 0
	for _, rec := range store.Single {
		prons, ok := src.Pronunciations(rec.Character)
		if !ok {
			pterm.Warning.Printf("%c: not in pinyin data\n", rec.Character)
			problems++
			continue
		}
		if 1+rec.ReadingIndex >= len(prons) {
			pterm.Error.Printf("%s: no reading for index %d (line %d)\n", rec, rec.ReadingIndex, rec.Line)
			problems++
			continue
		}
		want, _ := pinyin.Simplify(prons[1+rec.ReadingIndex])
		if have, err := pinyin.Simplify(rec.Pronunciation); err != nil || have != want {
			pterm.Error.Printf("%s: pinyin data has %s (line %d)\n", rec, prons[1+rec.ReadingIndex], rec.Line)
			problems++
		}
	}
	if problems > 0 {
		fatalf("%d problems found", problems)
	}
	pterm.Success.Println("patterns agree with pinyin data")
}

// --- Configuration --------------------------------------------------------

// buildConfig turns flag values into a configuration, in the manner of
// schuko's configuration keys. Empty values are left unset.
func buildConfig(fontStyle, otfccDump, otfccBuild string) testconfig.Conf {
	conf := testconfig.Conf{}
	for key, value := range map[string]string{
		"font-style":  fontStyle,
		"otfcc.dump":  otfccDump,
		"otfcc.build": otfccBuild,
	} {
		if value = strings.TrimSpace(value); value != "" && value != "-" {
			conf[key] = value
		}
	}
	return conf
}

// parseLanguages parses a list of BCP 47 tags. "-" selects none.
func parseLanguages(s string) ([]language.Tag, error) {
	if s = strings.TrimSpace(s); s == "-" || s == "" {
		return nil, nil
	}
	var tags []language.Tag
	for _, part := range splitCSVSpace(s) {
		tag, err := language.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("invalid language tag %q: %w", part, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func mustLoadStore(flags map[string]commando.FlagValue) *patterns.Store {
	store, err := patterns.Load(
		optString(flags["single"], "single"),
		optString(flags["dual"], "dual"),
		optString(flags["exceptions"], "exceptions"),
	)
	if err != nil {
		fatalf("%v", err)
	}
	tracer().Infof("loaded %d patterns", store.Len())
	return store
}

func mustLoadSource(path string) *pinyin.Table {
	if path == "" {
		fatalf("pinyin data is required (--pinyin)")
	}
	f, err := os.Open(path)
	if err != nil {
		fatalf("cannot open pinyin data: %v", err)
	}
	defer f.Close()
	src, err := pinyin.ReadTable(f)
	if err != nil {
		fatalf("%s: %v", path, err)
	}
	tracer().Infof("loaded pinyin data for %d characters", src.Len())
	return src
}

// --- Helpers --------------------------------------------------------------

func optString(flag commando.FlagValue, name string) string {
	s, err := flag.GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	if s = strings.TrimSpace(s); s == "-" {
		return ""
	}
	return s
}

func parseCodepoints(spec string) ([]rune, error) {
	parts := splitCSVSpace(spec)
	out := make([]rune, 0, len(parts))
	for _, p := range parts {
		r, err := parseCodepointToken(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseCodepointToken(token string) (rune, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, errors.New("empty codepoint token")
	}
	hex := token
	switch {
	case strings.HasPrefix(hex, "U+"), strings.HasPrefix(hex, "u+"):
		hex = hex[2:]
	case strings.HasPrefix(hex, "0x"), strings.HasPrefix(hex, "0X"):
		hex = hex[2:]
	}
	u, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid codepoint %q: %w", token, err)
	}
	return rune(u), nil
}

func splitCSVSpace(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func printWarnings(ws []ot.Warning) {
	for _, w := range ws {
		pterm.Warning.Println(w.String())
	}
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

// isVerbose reports whether --verbose is given. Commands without the flag
// are never verbose.
func isVerbose(flags map[string]commando.FlagValue) bool {
	fv, ok := flags["verbose"]
	if !ok || fv.DataType != commando.Bool {
		return false
	}
	v, _ := fv.Value.(bool)
	return v
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "ms-tools: "+format+"\n", args...)
	os.Exit(1)
}
