/*
Package pinyin holds the pronunciation data of hanzi and the codec which
turns a tone-marked pinyin syllable into an ASCII key.

The key of a pronunciation is the name of its pronunciation glyph in the
font, so `Simplify` must be injective over the supported alphabet. Tone
marks become trailing digits:

	xíng → xi2ng
	lǜ   → lv4

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package pinyin

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'mengshen'
func tracer() tracing.Trace {
	return tracing.Select("mengshen")
}
