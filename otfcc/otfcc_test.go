package otfcc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaruTama/Mengshen-pinyin-font-sub000/ot"
)

func TestFromConfigRejectsNonExecutable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "otfccdump")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0644))
	_, err := FromConfig(testconfig.Conf{"otfcc.dump": path, "otfcc.build": path})
	assert.True(t, errors.Is(err, ot.ErrConfiguration))
}

func TestFromConfigOptimizeLevel(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "otfcc")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
	c, err := FromConfig(testconfig.Conf{"otfcc.dump": path, "otfcc.build": path, "otfcc.optimize": "1"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Optimize)
	_, err = FromConfig(testconfig.Conf{"otfcc.dump": path, "otfcc.build": path, "otfcc.optimize": "4"})
	assert.True(t, errors.Is(err, ot.ErrConfiguration))
}

func TestFailingToolReportsStderr(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "otfccdump")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho 'bad font' >&2\nexit 1\n"), 0755))
	c := &Codec{Dump: path, Build: path}
	_, err := c.Decode([]byte("not a font"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad font")
}

func TestRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mengshen")
	defer teardown()
	//
	c, err := New()
	if errors.Is(err, ErrNoTool) {
		t.Skip("otfcc not installed")
	}
	require.NoError(t, err)
	font := os.Getenv("MENGSHEN_TEST_FONT")
	if font == "" {
		t.Skip("MENGSHEN_TEST_FONT not set")
	}
	data, err := os.ReadFile(font)
	require.NoError(t, err)
	tables, err := c.Decode(data)
	require.NoError(t, err)
	assert.NotZero(t, tables.CMap.Len())
	out, err := c.Encode(tables)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
