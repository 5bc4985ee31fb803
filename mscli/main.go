package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
	"github.com/MaruTama/Mengshen-pinyin-font-sub000/otfcc"
)

// tracer traces with key 'mengshen.cli'
func tracer() tracing.Trace {
	return tracing.Select("mengshen.cli")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.mengshen.cli": "Info",
		"trace.mengshen":     "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	tablesFile := flag.String("tables", "", "JSON table set to load")
	fontFile := flag.String("font", "", "Binary font to load (needs otfccdump)")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError)         // will set the correct level later
	pterm.Info.Println("Welcome to the Mengshen font CLI") // colored welcome message
	//
	// set up REPL
	repl, err := readline.New("ms > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load font tables to inspect
	if err := intp.load(*tablesFile, *fontFile); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	tables *ot.Tables
	repl   *readline.Instance
	lookup string // lookup in focus
}

func (intp *Intp) String() string {
	if intp == nil || intp.tables == nil {
		return "()"
	}
	if intp.lookup == "" {
		return fmt.Sprintf("( glyphs=%d )", len(intp.tables.Glyf))
	}
	return fmt.Sprintf("( glyphs=%d ) -> %s", len(intp.tables.Glyf), intp.lookup)
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code   int
	arg    string
	format string
}

type Command struct {
	count int
	op    [32]Op
}

const NOOP = -1
const (
	// op-code QUIT will not have arguments
	QUIT int = iota
	// op-codes below may have arguments
	HELP
	CHAR
	GLYPH
	LANGUAGES
	FEATURES
	LOOKUPS
	LOOKUP
	RULES
	MATCH
	SIMPLIFY
)

var opMap = map[string]int{
	"quit":      QUIT,
	"help":      HELP,
	"char":      CHAR,
	"glyph":     GLYPH,
	"languages": LANGUAGES,
	"features":  FEATURES,
	"lookups":   LOOKUPS,
	"lookup":    LOOKUP,
	"rules":     RULES,
	"match":     MATCH,
	"simplify":  SIMPLIFY,
}

var opNames = []string{
	"quit",
	"help",
	"char",
	"glyph",
	"languages",
	"features",
	"lookups",
	"lookup",
	"rules",
	"match",
	"simplify",
}

// parseCommand splits a line into operations, e.g. "char:行 rules:5".
// Unknown operations are turned into HELP.
func parseCommand(line string) (*Command, error) {
	command := &Command{}
	for i := range command.op {
		command.op[i].code = NOOP
	}
	steps := strings.Fields(line)
	if len(steps) > len(command.op) {
		return nil, fmt.Errorf("too many operations: %d", len(steps))
	}
	command.count = len(steps)
	for i, step := range steps {
		c := strings.Split(step, ":") // e.g.  "char:行" or "rules:5" or "help:char"
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		command.op[i].code = code
		if code == QUIT {
			return command, nil
		}
		command.op[i].arg = getOptArg(c, 1)
		command.op[i].format = getOptArg(c, 2)
		if command.op[i].arg == "" {
			tracer().Debugf("%s", opNames[code])
		} else {
			tracer().Debugf("%s: looking for '%s'", opNames[code], command.op[i].arg)
		}
	}
	return command, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:      quitOp,
	HELP:      helpOp,
	CHAR:      charOp,
	GLYPH:     glyphOp,
	LANGUAGES: languagesOp,
	FEATURES:  featuresOp,
	LOOKUPS:   lookupsOp,
	LOOKUP:    lookupOp,
	RULES:     rulesOp,
	MATCH:     matchOp,
	SIMPLIFY:  simplifyOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.op[:cmd.count])
	for _, c := range cmd.op {
		if c.code == NOOP {
			break
		}
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) load(tablesFile, fontFile string) (err error) {
	switch {
	case tablesFile != "":
		intp.tables, err = loadTables(tablesFile)
	case fontFile != "":
		intp.tables, err = decodeFont(fontFile)
	default:
		err = errors.New("either -tables or -font is required")
	}
	if err == nil {
		pterm.Printf("font has %d glyphs, %d variation sequences\n",
			len(intp.tables.Glyf), len(intp.tables.CMapUVS))
	}
	return
}

func loadTables(path string) (*ot.Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := ot.ParseTables(data)
	if err != nil {
		tracer().Errorf("cannot decode tables %s: %s", path, err)
		return nil, err
	}
	tracer().Infof("loaded table set %s", path)
	return t, nil
}

func decodeFont(path string) (*ot.Tables, error) {
	codec, err := otfcc.New()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := codec.Decode(data)
	if err != nil {
		tracer().Errorf("cannot decode font %s: %s", path, err)
		return nil, err
	}
	tracer().Infof("decoded font %s", path)
	return t, nil
}

// ----------------------------------------------------------------------

var ERR_NO_GSUB = errors.New("font has no GSUB table")
var ERR_NO_LOOKUP = errors.New("no lookup in focus")

func (intp *Intp) checkGSUB() error {
	if intp.tables.GSUB == nil {
		return ERR_NO_GSUB
	}
	return nil
}

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) noArg() bool {
	return op.arg == ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}
