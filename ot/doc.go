/*
Package ot provides the table-level representation of an OpenType font as it
is exchanged with an external font codec.

The binary font is never inspected here. A codec (see package otfcc) converts
a binary font into a JSON table set and back; package `ot` models the tables
the pinyin assembly needs to touch:

▪︎ cmap: Unicode code point → glyph id (CID)

▪︎ cmap_uvs: code point + variation selector → glyph name

▪︎ glyph_order: ordered list of glyph names

▪︎ glyf: glyph name → metrics plus contours or component references

▪︎ GSUB: languages, features, lookups and the global lookup order

Every other table of the font is carried along as raw JSON and written back
unchanged.

Glyph names are plain strings on the wire. Internally a glyph id taken from
the cmap is an `ot.CID`, and the only way to derive a stylistic-set variant
name is `CID.Variant`, which makes double-suffixing impossible.

# Status

Covers the subset of tables written by the pinyin font builder.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'mengshen'
func tracer() tracing.Trace {
	return tracing.Select("mengshen")
}
