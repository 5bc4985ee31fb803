/*
Package patterns loads the hand-authored context rules which select a reading
of a homograph.

There are three sources:

▪︎ single-homograph patterns, a line oriented file of templates such as
`银~`, where '~' stands for the homograph

▪︎ dual-homograph patterns, phrases with two homographs resolved together

▪︎ exception patterns, phrases which may carry an ignore fragment
suppressing an overlapping rule

Authoring mistakes are never resolved by guessing: they are reported as
ot.PatternAuthoringError, naming the offending character or phrase.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package patterns

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'mengshen.patterns'
func tracer() tracing.Trace {
	return tracing.Select("mengshen.patterns")
}
