// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cjmod

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_NamedBlockPattern(t *testing.T) {
	schema, err := Analyze("printMylove {url: $!_, mode: $?_, width: $?_}")
	require.NoError(t, err)
	assert.Equal(t, "printMylove", schema.Keyword)
	require.Len(t, schema.Params, 3)

	url, _ := schema.Param("url")
	assert.True(t, url.Explicit)
	assert.True(t, url.Unordered)
	assert.False(t, url.Optional)

	mode, _ := schema.Param("mode")
	assert.True(t, mode.Optional)
	assert.True(t, mode.Unordered)
}

func TestAnalyze_PositionalPattern(t *testing.T) {
	schema, err := Analyze("util $! -> change $? -> then $!")
	require.NoError(t, err)
	assert.Equal(t, "util", schema.Keyword)
	require.Len(t, schema.Params, 3)
	assert.Equal(t, "arg0", schema.Params[0].Name)
	assert.True(t, schema.Params[0].Explicit)
	assert.True(t, schema.Params[1].Optional)
}

func TestAnalyze_Variadic(t *testing.T) {
	schema, err := Analyze("gather {items: ...}")
	require.NoError(t, err)
	assert.True(t, schema.Params[0].Variadic)
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := Analyze("")
	assert.ErrorIs(t, err, ErrEmptyPattern)

	_, err = Analyze("$! {a: $}")
	assert.ErrorIs(t, err, ErrMissingKeyword)
}

func TestScanner_Scan(t *testing.T) {
	schema, err := Analyze("printMylove {url: $!_, mode: $?_, width: $?_}")
	require.NoError(t, err)

	arg, err := Scanner{}.Scan(`x(); printMylove { mode: ASCII, url: "a.png" }; y();`, schema)
	require.NoError(t, err)

	url, ok := arg.Value("url")
	require.True(t, ok)
	assert.Equal(t, `"a.png"`, url)
	assert.Equal(t, "ASCII", arg.ValueOr("mode", ""))
	_, ok = arg.Value("width")
	assert.False(t, ok, "absent optional stays unbound")
}

func TestScanner_MissingExplicit(t *testing.T) {
	schema, err := Analyze("printMylove {url: $!_, mode: $?_}")
	require.NoError(t, err)

	_, err = Scanner{}.Scan("printMylove { mode: ASCII }", schema)
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestScanner_KeywordBoundary(t *testing.T) {
	schema, err := Analyze("love {a: $?_}")
	require.NoError(t, err)

	_, err = Scanner{}.Scan("printMylove { a: 1 }", schema)
	assert.ErrorIs(t, err, ErrKeywordNotFound, "substring matches must not count")
}

func TestArg_BindTransformsValue(t *testing.T) {
	schema, err := Analyze("f {a: $}")
	require.NoError(t, err)
	arg := NewArg(schema)
	arg.Set("a", "x")
	arg.Bind("a", func(v string) string { return strings.ToUpper(v) })

	v, _ := arg.Value("a")
	assert.Equal(t, "X", v)
}

func TestArg_FillValue(t *testing.T) {
	schema, err := Analyze("f {a: $, b: $?}")
	require.NoError(t, err)

	src := NewArg(schema)
	src.Set("a", "1")
	src.Set("b", "2")

	dst := NewArg(schema)
	dst.Set("a", "kept")
	dst.FillValue(src)

	assert.Equal(t, "kept", dst.ValueOr("a", ""))
	assert.Equal(t, "2", dst.ValueOr("b", ""))
}

func TestArg_Transform(t *testing.T) {
	schema, err := Analyze("f {w: $, wide: $}")
	require.NoError(t, err)
	arg := NewArg(schema)
	arg.Set("w", "10")
	arg.Set("wide", "20")

	out := arg.Transform("size($w, $wide)")
	assert.Equal(t, "size(10, 20)", out)
}

func TestRegistry_DefaultLowering(t *testing.T) {
	reg := NewRegistry()
	f, err := Create("box {w: $!_, h: $?_}")
	require.NoError(t, err)
	f.Body = "draw(w, h);"
	reg.Register(f)

	require.True(t, reg.IsKeyword("box"))
	out, err := reg.Lower("box", "{ w: 4, h: 2 }")
	require.NoError(t, err)
	assert.Contains(t, out, "const w = 4;")
	assert.Contains(t, out, "const h = 2;")
	assert.Contains(t, out, "draw(w, h);")
}

func TestRegistry_UnknownKeyword(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Lower("nope", "{}")
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestChtholly_PrintMylove(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterChtholly(reg))
	require.True(t, reg.IsKeyword("printMylove"))

	out, err := reg.Lower("printMylove", `{ url: "me.png", mode: ASCII }`)
	require.NoError(t, err)
	assert.Contains(t, out, `const url = "me.png";`)
	assert.Contains(t, out, "createElement('canvas')")
	assert.Contains(t, out, "'@%#*+=-:. '")
}

func TestChtholly_INeverAway(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterChtholly(reg))

	out, err := reg.Lower("iNeverAway", "{ Void<A>: function(x) { return x; }, plain: 1 }")
	require.NoError(t, err)
	assert.Contains(t, out, "'Void<A>': function(x) { return x; }")
	assert.Contains(t, out, "new Proxy({}")
	assert.Contains(t, out, "key.includes('<')")
}

func TestGenerator_ExportResultVariadic(t *testing.T) {
	f, err := Create("load {files: ...}")
	require.NoError(t, err)
	f.Body = "use(rest);"

	arg := NewArg(f.Schema)
	arg.AppendVariadic(`"a.js"`)
	arg.AppendVariadic(`"b.js"`)

	out, err := Generator{}.ExportResult(f, arg)
	require.NoError(t, err)
	assert.Contains(t, out, `const rest = ["a.js", "b.js"];`)
}
