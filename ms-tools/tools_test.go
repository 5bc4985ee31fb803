package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/thatisuday/commando"
)

func TestParseCodepoints(t *testing.T) {
	tests := []struct {
		spec    string
		want    []rune
		wantErr bool
	}{
		{"U+94F6,U+884C", []rune{'银', '行'}, false},
		{"0x957F 4E2D", []rune{'长', '中'}, false},
		{"u+94f6,\tU+884C\n", []rune{'银', '行'}, false},
		{"U+ZZZZ", nil, true},
	}
	for _, tt := range tests {
		have, err := parseCodepoints(tt.spec)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: expected error=%v, have %v", tt.spec, tt.wantErr, err)
			continue
		}
		if diff := cmp.Diff(tt.want, have); !tt.wantErr && diff != "" {
			t.Errorf("%q: mismatch (-want +have):\n%s", tt.spec, diff)
		}
	}
}

func TestParseLanguages(t *testing.T) {
	tags, err := parseLanguages("zh-Hans, zh-HK")
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 || tags[1].String() != "zh-HK" {
		t.Errorf("expected [zh-Hans zh-HK], have %v", tags)
	}
	for _, none := range []string{"-", "", "  "} {
		if tags, _ = parseLanguages(none); tags != nil {
			t.Errorf("expected no languages for %q, have %v", none, tags)
		}
	}
	if _, err = parseLanguages("zh-!!"); err == nil {
		t.Errorf("expected malformed tag to be rejected")
	}
}

func TestBuildConfig(t *testing.T) {
	conf := buildConfig("handwritten", "/opt/otfcc/otfccdump", "-")
	if conf.GetString("font-style") != "handwritten" {
		t.Errorf("expected style handwritten, have %q", conf.GetString("font-style"))
	}
	if conf.GetString("otfcc.dump") != "/opt/otfcc/otfccdump" {
		t.Errorf("expected otfcc.dump to be set, have %q", conf.GetString("otfcc.dump"))
	}
	if conf.IsSet("otfcc.build") {
		t.Errorf("expected otfcc.build to be unset")
	}
	if conf = buildConfig("", "", ""); len(conf) != 0 {
		t.Errorf("expected empty configuration, have %v", conf)
	}
}

func TestIsVerbose(t *testing.T) {
	if isVerbose(map[string]commando.FlagValue{}) {
		t.Errorf("expected a command without --verbose to be quiet")
	}
	flags := map[string]commando.FlagValue{
		"verbose": {Flag: commando.Flag{DataType: commando.Bool}, Value: true},
	}
	if !isVerbose(flags) {
		t.Errorf("expected --verbose to be honored")
	}
}

func TestParseViewInput(t *testing.T) {
	tests := []struct {
		text, codepoints string
		want             []rune
	}{
		{" 银行 ", "-", []rune("银行")},
		{"ignored", "U+884C", []rune("行")},
		{"行长", "", []rune("行长")},
	}
	for _, tt := range tests {
		have, err := parseViewInput(tt.text, tt.codepoints)
		if err != nil {
			t.Errorf("%q/%q: %v", tt.text, tt.codepoints, err)
			continue
		}
		if diff := cmp.Diff(tt.want, have); diff != "" {
			t.Errorf("%q/%q: mismatch (-want +have):\n%s", tt.text, tt.codepoints, diff)
		}
	}
}

func TestDrawRectOutlineClips(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{255, 0, 0, 255}
	drawRectOutline(img, 5, 5, 20, 20, red)
	if img.RGBAAt(5, 5) != red || img.RGBAAt(9, 9) != red {
		t.Errorf("expected clipped outline to reach the image border")
	}
	if img.RGBAAt(7, 7) == red {
		t.Errorf("expected outline to leave the inside blank")
	}
}
