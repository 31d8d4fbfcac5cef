package imports

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentindex/codeindexd/internal/lang"
)

func TestExtractJSImports(t *testing.T) {
	src := []byte(`
import Default from "./foo";
import { a, b as c } from "bar";
import * as ns from "baz";
const mod = require("legacy");
const dyn = import("dynamic-thing");
`)
	stmts, err := Extract(lang.JavaScript, src)
	require.NoError(t, err)

	bySource := map[string]Statement{}
	for _, s := range stmts {
		bySource[s.Source] = s
	}
	require.Equal(t, TypeDefault, bySource["./foo"].ImportType)
	require.Equal(t, []string{"Default"}, bySource["./foo"].Names)
	require.Equal(t, TypeNamed, bySource["bar"].ImportType)
	require.ElementsMatch(t, []string{"a", "c"}, bySource["bar"].Names)
	require.Equal(t, TypeNamespace, bySource["baz"].ImportType)
	require.Equal(t, TypeRequire, bySource["legacy"].ImportType)
	require.Equal(t, TypeDynamic, bySource["dynamic-thing"].ImportType)
}

func TestExtractPythonImports(t *testing.T) {
	src := []byte(`
import os
import os.path as osp
from . import sibling
from ..pkg import helper, other as o
`)
	stmts, err := Extract(lang.Python, src)
	require.NoError(t, err)

	bySource := map[string]Statement{}
	for _, s := range stmts {
		bySource[s.Source] = s
	}
	require.Equal(t, []string{"os"}, bySource["os"].Names)
	require.Equal(t, []string{"osp"}, bySource["os.path"].Names)
	require.Equal(t, []string{"sibling"}, bySource["."].Names)
	require.ElementsMatch(t, []string{"helper", "o"}, bySource["..pkg"].Names)
}

func TestExtractCSharpImports(t *testing.T) {
	src := []byte(`
using System;
using MyAlias = My.Namespace;
`)
	stmts, err := Extract(lang.CSharp, src)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	require.Equal(t, "System", stmts[0].Source)
	require.Equal(t, "My.Namespace", stmts[1].Source)
	require.Equal(t, []string{"MyAlias"}, stmts[1].Names)
}

func TestResolveJSRelativeExtensionOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helper.ts"), []byte("export {}"), 0o644))

	res := Resolve(lang.TypeScript, dir, "index.ts", "./helper")
	require.True(t, res.Resolved)
	require.Equal(t, "helper.ts", res.TargetPath)
}

func TestResolveJSExternal(t *testing.T) {
	dir := t.TempDir()
	res := Resolve(lang.JavaScript, dir, "src/index.js", "@scope/pkg/sub")
	require.True(t, res.IsExternal)
	require.Equal(t, "@scope/pkg", res.PackageName)
}

func TestResolvePythonRelativeWalkUp(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "helper.py"), []byte("x = 1"), 0o644))

	res := Resolve(lang.Python, dir, "pkg/sub/mod.py", "..helper")
	require.True(t, res.Resolved)
	require.Equal(t, "pkg/helper.py", res.TargetPath)
}

func TestResolveCSharpNamespaceToPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "My"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "My", "Namespace.cs"), []byte("namespace My.Namespace {}"), 0o644))

	res := Resolve(lang.CSharp, dir, "Other.cs", "My.Namespace")
	require.True(t, res.Resolved)
	require.Equal(t, filepath.ToSlash(filepath.Join("My", "Namespace.cs")), res.TargetPath)
}
