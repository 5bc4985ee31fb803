package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Debugf("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "char", "glyph", "simplify":
		pterm.Info.Println("Characters and glyphs")
		pterm.Println(`
	char:行        cmap entry, glyph and variation sequences of a character
	glyph:<name>   metrics and references of a glyph
	simplify:háng  simplified key of a pronunciation, i.e. the name of its glyph

	A homograph with n readings has variants ss00 … ssNN:
	+------+----------------------------------+
	| ss00 | hanzi without pronunciation      |
	| ss01 | default reading                  |
	| ssNN | reading N-1                      |
	+------+----------------------------------+
	Variant ssNN is selected by variation selector U+E01E0+N.
	`)
	case "lookup", "lookups", "rules", "match":
		pterm.Info.Println("Lookups")
		pterm.Println(`
	lookups         all lookups in lookup order
	lookup:<name>   put a lookup in focus
	rules[:n]       number of rules / rule n of the chaining lookup in focus,
	                mapping of a single or alternate lookup
	match:银行      chaining rules matching a phrase, without applying substitutions

	Contextual alternates (rclt) are compiled in three lookups:
	+---------------+--------------------------------------------+
	| lookup_rclt_0 | single homograph, e.g. 银~                 |
	| lookup_rclt_1 | two homographs in one phrase               |
	| lookup_rclt_2 | exceptions; rules without apply come first |
	+---------------+--------------------------------------------+
	`)
	case "languages", "features":
		pterm.Info.Println("Languages and features")
		pterm.Println(`
	languages    language systems and the features they activate
	features     features and their lookups
	`)
	default:
		pterm.Info.Println("Commands: char glyph simplify languages features lookups lookup rules match quit")
		pterm.Println("Use help:<command> for details. Commands may be chained, e.g. 'lookup:lookup_rclt_0 rules:0'.")
	}
}
