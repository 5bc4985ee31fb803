package fontload

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/sfnt"
)

// BinaryFont is a built font with its original bytes, an SFNT view for
// table level queries and a face for shaping.
type BinaryFont struct {
	Fontname string
	Filepath string
	Binary   []byte
	SFNT     *sfnt.Font
	Face     *font.Face
}

// LoadFont loads a binary font (TTF or OTF) from a file.
func LoadFont(fontfile string) (*BinaryFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseFont(bytez)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fontfile, err)
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseFont loads a binary font (TTF or OTF) from memory.
func ParseFont(fbytes []byte) (f *BinaryFont, err error) {
	f = &BinaryFont{Binary: fbytes}
	if f.SFNT, err = sfnt.Parse(f.Binary); err != nil {
		return nil, err
	}
	if f.Face, err = font.ParseTTF(bytes.NewReader(f.Binary)); err != nil {
		return nil, err
	}
	if f.Fontname, err = f.SFNT.Name(nil, sfnt.NameIDFull); err != nil {
		f.Fontname = "<unnamed>"
	}
	return f, nil
}

// NumGlyphs returns the number of glyphs of the font.
func (f *BinaryFont) NumGlyphs() int {
	return f.SFNT.NumGlyphs()
}

// VariationGlyph returns the glyph of an ideographic variation sequence.
func (f *BinaryFont) VariationGlyph(r, selector rune) (font.GID, bool) {
	return f.Face.VariationGlyph(r, selector)
}

// NominalGlyph returns the glyph a code point maps to.
func (f *BinaryFont) NominalGlyph(r rune) (font.GID, bool) {
	return f.Face.NominalGlyph(r)
}
