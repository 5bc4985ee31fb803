package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	gotext "github.com/go-text/typesetting/font"
	"github.com/thatisuday/commando"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/proof"
)

func runViewCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags)
	f := mustLoadFont(args["font"].Value)
	input, err := parseViewInput(args["text"].Value, optString(flags["codepoints"], "codepoints"))
	if err != nil {
		fatalf("%v", err)
	}
	if len(input) == 0 {
		fatalf("input text is empty")
	}
	outPath := optString(flags["output"], "output")
	if outPath == "" {
		fatalf("output path is empty")
	}
	ppem := mustFlagInt(flags["ppem"], "ppem")
	width := mustFlagInt(flags["width"], "width")
	height := mustFlagInt(flags["height"], "height")
	showBBoxes := mustFlagBool(flags["show-bboxes"], "show-bboxes")
	if ppem <= 0 {
		fatalf("--ppem must be > 0")
	}
	if width <= 0 || height <= 0 {
		fatalf("--width and --height must be > 0")
	}
	glyphs := proof.NewShaper(f).Shape(input)
	if len(glyphs) == 0 {
		fatalf("shaping produced no glyphs")
	}
	tracer().Infof("shaped %q to %v", string(input), glyphs)
	img, err := renderGlyphRun(f.SFNT, glyphs, width, height, ppem, showBBoxes)
	if err != nil {
		fatalf("render failed: %v", err)
	}
	if err := writePNG(outPath, img); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("wrote %s (glyphs=%d)\n", outPath, len(glyphs))
}

// parseViewInput returns the codepoints if given, else the text.
func parseViewInput(text, codepoints string) ([]rune, error) {
	if cps := strings.TrimSpace(codepoints); cps != "" && cps != "-" {
		return parseCodepoints(cps)
	}
	return []rune(strings.TrimSpace(text)), nil
}

type glyphPath struct {
	segs sfnt.Segments
	dx   float32
	box  fixed.Rectangle26_6
}

// renderGlyphRun draws a horizontal run of glyphs, centered in the image.
// Pinyin fonts carry no GPOS, glyphs advance by their nominal width.
func renderGlyphRun(sf *sfnt.Font, glyphs []gotext.GID, width, height, ppem int, showBBoxes bool) (*image.RGBA, error) {
	var (
		paths                  []glyphPath
		penX                   float32
		minX, minY, maxX, maxY float32
		have                   bool
		buf                    sfnt.Buffer
	)
	for _, g := range glyphs {
		gid := sfnt.GlyphIndex(g)
		segs, err := sf.LoadGlyph(&buf, gid, fixed.I(ppem), nil)
		if err != nil {
			continue
		}
		// LoadGlyph results become invalid once the buffer is re-used.
		segsCopy := append(sfnt.Segments(nil), segs...)
		b := segsCopy.Bounds()
		paths = append(paths, glyphPath{segs: segsCopy, dx: penX, box: b})
		sMinX, sMaxX := float32(b.Min.X)/64+penX, float32(b.Max.X)/64+penX
		sMinY, sMaxY := float32(b.Min.Y)/64, float32(b.Max.Y)/64
		if !have {
			minX, minY, maxX, maxY = sMinX, sMinY, sMaxX, sMaxY
			have = true
		} else {
			minX, minY = min(minX, sMinX), min(minY, sMinY)
			maxX, maxY = max(maxX, sMaxX), max(maxY, sMaxY)
		}
		if adv, err := sf.GlyphAdvance(&buf, gid, fixed.I(ppem), font.HintingNone); err == nil {
			penX += float32(adv) / 64
		}
	}
	if len(paths) == 0 {
		return nil, errors.New("no drawable glyph paths found")
	}
	shiftX := (float32(width)-(maxX-minX))/2 - minX
	shiftY := (float32(height)-(maxY-minY))/2 - minY

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{255, 255, 255, 255}), image.Point{}, draw.Src)
	rast := vector.NewRasterizer(width, height)
	rast.DrawOp = draw.Over
	for _, p := range paths {
		tx := shiftX + p.dx
		pt := func(i int, seg sfnt.Segment) (float32, float32) {
			return tx + float32(seg.Args[i].X)/64, shiftY + float32(seg.Args[i].Y)/64
		}
		for _, seg := range p.segs {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				rast.MoveTo(pt(0, seg))
			case sfnt.SegmentOpLineTo:
				rast.LineTo(pt(0, seg))
			case sfnt.SegmentOpQuadTo:
				x0, y0 := pt(0, seg)
				x1, y1 := pt(1, seg)
				rast.QuadTo(x0, y0, x1, y1)
			case sfnt.SegmentOpCubeTo:
				x0, y0 := pt(0, seg)
				x1, y1 := pt(1, seg)
				x2, y2 := pt(2, seg)
				rast.CubeTo(x0, y0, x1, y1, x2, y2)
			}
		}
	}
	rast.Draw(img, img.Bounds(), image.Black, image.Point{})
	if showBBoxes {
		for _, p := range paths {
			drawRectOutline(img,
				p.box.Min.X.Floor()+int(shiftX+p.dx), p.box.Min.Y.Floor()+int(shiftY),
				p.box.Max.X.Ceil()+int(shiftX+p.dx), p.box.Max.Y.Ceil()+int(shiftY),
				color.RGBA{255, 0, 0, 255})
		}
	}
	return img, nil
}

func drawRectOutline(img *image.RGBA, minX, minY, maxX, maxY int, c color.RGBA) {
	if maxX < minX {
		minX, maxX = maxX, minX
	}
	if maxY < minY {
		minY, maxY = maxY, minY
	}
	r := image.Rect(minX, minY, maxX, maxY).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

func writePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("cannot encode png: %w", err)
	}
	return nil
}
