package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentindex/codeindexd/internal/lang"
)

func TestExtractJSFunctionAndClass(t *testing.T) {
	src := []byte(`
class Widget {
  constructor() {}
  get label() { return this._label; }
  #secret() {}
}

function helper() {
  return 1;
}

const PI = 3.14;
`)
	res, err := Extract(lang.JavaScript, src)
	require.NoError(t, err)

	names := map[string]string{}
	for _, s := range res.Symbols {
		names[s.Name] = s.Kind
	}
	require.Equal(t, KindClass, names["Widget"])
	require.Equal(t, KindFunction, names["helper"])
	require.Equal(t, KindConst, names["PI"])
	require.Equal(t, KindAccessor, names["Widget.label"])
}

func TestExtractJSHookAndComponent(t *testing.T) {
	src := []byte(`
function useCounter() {
  return 0;
}

function Button() {
  return <div>click</div>;
}
`)
	res, err := Extract(lang.TSX, src)
	require.NoError(t, err)

	names := map[string]string{}
	for _, s := range res.Symbols {
		names[s.Name] = s.Kind
	}
	require.Equal(t, KindHook, names["useCounter"])
	require.Equal(t, KindFunctionComponent, names["Button"])
}

func TestExtractPythonFunctionAndClass(t *testing.T) {
	src := []byte(`
class Greeter:
    def greet(self):
        return "hi"

def top_level():
    pass
`)
	res, err := Extract(lang.Python, src)
	require.NoError(t, err)

	names := map[string]string{}
	for _, s := range res.Symbols {
		names[s.Name] = s.Kind
	}
	require.Equal(t, KindClass, names["Greeter"])
	require.Equal(t, KindFunction, names["Greeter.greet"])
	require.Equal(t, KindFunction, names["top_level"])
}

func TestExtractCSharpUnityLifecycleAndSerializedField(t *testing.T) {
	src := []byte(`
using UnityEngine;

public class Player : MonoBehaviour {
    [SerializeField]
    private int health;

    void Awake() {
    }

    void Update() {
    }
}
`)
	res, err := Extract(lang.CSharp, src)
	require.NoError(t, err)

	kinds := map[string]string{}
	for _, s := range res.Symbols {
		kinds[s.Name] = s.Kind
	}
	require.Equal(t, KindClass, kinds["Player"])
	require.Equal(t, KindUnityLifecycle, kinds["Player.Awake"])
	require.Equal(t, KindUnityLifecycle, kinds["Player.Update"])
	require.Equal(t, KindSerializedField, kinds["Player.health"])
}

func TestExtractGenericGoFunction(t *testing.T) {
	src := []byte(`
package main

func DoThing() {
}

type Widget struct {
	Name string
}
`)
	res, err := Extract(lang.Go, src)
	require.NoError(t, err)

	kinds := map[string]string{}
	for _, s := range res.Symbols {
		kinds[s.Name] = s.Kind
	}
	require.Equal(t, lang.GenericFunctionKind, kinds["DoThing"])
}

func TestIsCodeAtPositionComment(t *testing.T) {
	src := []byte("// a comment\nfunc x() {}\n")
	require.False(t, IsCodeAtPosition(src, lang.Go, 1, 3))
	require.True(t, IsCodeAtPosition(src, lang.Go, 2, 0))
}

func TestIsCodeAtPositionUnsupportedLanguageFailsOpen(t *testing.T) {
	require.True(t, IsCodeAtPosition([]byte("anything"), lang.Language("unknown"), 1, 0))
}
