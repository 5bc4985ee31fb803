/*
Package mengshen assembles pinyin fonts: fonts which show the pronunciation
of every Chinese character above it, and select the reading of a homograph
from its context.

We stick to the following nomenclature:

▪︎ A "base font" is the CJK font providing the hanzi outlines. It is read
and written as a JSON table set by an external font codec.

▪︎ A "Latin font" provides the letters pinyin is spelled with.

▪︎ A "pronunciation glyph" is a composite glyph spelling one pronunciation
with letter glyphs, placed above a hanzi.

▪︎ A "variant" is a hanzi glyph combined with one of its pronunciations. A
homograph has a variant per reading, selected by ideographic variation
sequences (IVS) or by contextual substitution (GSUB).

Assembly never modifies the tables it is given. A build either produces a
complete table set or fails, naming the offending character, phrase or
parameter.

# Status

Compression of the binary font is not done.

# Links

otfcc JSON table format:
https://github.com/caryll/otfcc

Ideographic variation sequences:
https://unicode.org/ivd/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package mengshen

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/alphabet"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/patterns"
)

// tracer writes to trace with key 'mengshen'
func tracer() tracing.Trace {
	return tracing.Select("mengshen")
}

// FontCodec converts between binary fonts and JSON table sets.
type FontCodec interface {
	Decode(font []byte) (*ot.Tables, error)
	Encode(tables *ot.Tables) ([]byte, error)
}

// Build decodes a base font and a Latin font, assembles the pinyin font and
// encodes it. Nothing is encoded if assembly fails.
func Build(codec FontCodec, baseFont, latinFont []byte, store *patterns.Store, opts ...Option) ([]byte, error) {
	a, err := NewAssembler(opts...)
	if err != nil {
		return nil, err
	}
	return a.Build(codec, baseFont, latinFont, store)
}

// Build decodes a base font and a Latin font, assembles the pinyin font and
// encodes it. Nothing is encoded if assembly fails.
func (a *Assembler) Build(codec FontCodec, baseFont, latinFont []byte, store *patterns.Store) ([]byte, error) {
	out, err := a.BuildTables(codec, baseFont, latinFont, store)
	if err != nil {
		return nil, err
	}
	return codec.Encode(out)
}

// BuildTables decodes a base font and a Latin font and assembles the table
// set of the pinyin font.
func (a *Assembler) BuildTables(codec FontCodec, baseFont, latinFont []byte, store *patterns.Store) (*ot.Tables, error) {
	base, err := codec.Decode(baseFont)
	if err != nil {
		return nil, fmt.Errorf("base font: %w", err)
	}
	latin, err := codec.Decode(latinFont)
	if err != nil {
		return nil, fmt.Errorf("Latin font: %w", err)
	}
	letters, ws, err := alphabet.Extract(latin, a.style.ReferenceLetter)
	if err != nil {
		return nil, err
	}
	a.warnings.Merge(ws)
	return a.Assemble(base, letters, store)
}
