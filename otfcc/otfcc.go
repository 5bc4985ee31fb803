/*
Package otfcc converts fonts to and from JSON table sets by calling the
otfcc command line tools, otfccdump and otfccbuild.

The tools are looked up in the PATH unless configured otherwise:

	otfcc.dump      path of otfccdump
	otfcc.build     path of otfccbuild
	otfcc.optimize  optimization level for otfccbuild, default 3

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package otfcc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
)

// tracer writes to trace with key 'mengshen'
func tracer() tracing.Trace {
	return tracing.Select("mengshen")
}

// Default names of the command line tools.
const (
	DumpTool  = "otfccdump"
	BuildTool = "otfccbuild"
)

// ErrNoTool is returned if an otfcc command line tool cannot be found.
var ErrNoTool = errors.New("otfcc tool not found")

// Codec runs otfcc. It implements mengshen.FontCodec.
type Codec struct {
	Dump     string // path of otfccdump
	Build    string // path of otfccbuild
	Optimize int    // otfccbuild optimization level 0…3
}

// New creates a codec with tools found in the PATH.
func New() (*Codec, error) {
	dump, err := exec.LookPath(DumpTool)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTool, DumpTool)
	}
	build, err := exec.LookPath(BuildTool)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTool, BuildTool)
	}
	return &Codec{Dump: dump, Build: build, Optimize: 3}, nil
}

// FromConfig creates a codec from a configuration. Tools not configured are
// looked up in the PATH.
func FromConfig(conf schuko.Configuration) (*Codec, error) {
	c := &Codec{Optimize: 3}
	var err error
	if c.Dump, err = tool(conf, "otfcc.dump", DumpTool); err != nil {
		return nil, err
	}
	if c.Build, err = tool(conf, "otfcc.build", BuildTool); err != nil {
		return nil, err
	}
	if s := conf.GetString("otfcc.optimize"); s != "" {
		level, err := strconv.Atoi(s)
		if err != nil || level < 0 || level > 3 {
			return nil, ot.Errorf(ot.ConfigurationError, "otfcc.optimize", "level must be 0…3, is %q", s)
		}
		c.Optimize = level
	}
	return c, nil
}

func tool(conf schuko.Configuration, key, name string) (string, error) {
	path := conf.GetString(key)
	if path == "" {
		p, err := exec.LookPath(name)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrNoTool, name)
		}
		return p, nil
	}
	if fi, err := os.Stat(path); err != nil || fi.IsDir() || fi.Mode().Perm()&0100 == 0 {
		return "", ot.Errorf(ot.ConfigurationError, key, "not an executable: %s", path)
	}
	return path, nil
}

// Decode dumps a binary font to its table set.
func (c *Codec) Decode(font []byte) (*ot.Tables, error) {
	dir, err := os.MkdirTemp("", "otfcc")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	in := filepath.Join(dir, "font.otf")
	if err := os.WriteFile(in, font, 0644); err != nil {
		return nil, err
	}
	out := filepath.Join(dir, "font.json")
	if err := run(c.Dump, "--no-bom", "-o", out, in); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(out)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("otfccdump produced %d bytes of JSON", len(data))
	return ot.ParseTables(data)
}

// Encode builds a binary font from a table set.
func (c *Codec) Encode(tables *ot.Tables) ([]byte, error) {
	data, err := tables.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("cannot encode font tables: %w", err)
	}
	dir, err := os.MkdirTemp("", "otfcc")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	in := filepath.Join(dir, "font.json")
	if err := os.WriteFile(in, data, 0644); err != nil {
		return nil, err
	}
	out := filepath.Join(dir, "font.otf")
	args := []string{fmt.Sprintf("-O%d", c.Optimize), "--keep-modified-time", "-o", out, in}
	if err := run(c.Build, args...); err != nil {
		return nil, err
	}
	return os.ReadFile(out)
}

func run(name string, args ...string) error {
	tracer().Debugf("running %s %s", name, strings.Join(args, " "))
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s: %w", filepath.Base(name), err)
		}
		return fmt.Errorf("%s: %w: %s", filepath.Base(name), err, msg)
	}
	return nil
}
