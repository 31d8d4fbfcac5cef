// Package symbols extracts named declarations and identifier references from
// source files via tree-sitter, grounded on the teacher's internal/pipeline
// definitions pass (extractFunctionDef/extractClassDef/extractClassMethodDefs/
// extractClassFieldDefs, isExported, extractDecorators) but retargeted from
// that pipeline's graph nodes onto the flat payload vocabulary a chunk's
// search_symbols/get_file_outline response carries.
package symbols

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/agentindex/codeindexd/internal/lang"
	"github.com/agentindex/codeindexd/internal/tsparse"
)

// Symbol kinds, matching the vocabulary a chunk payload is allowed to carry.
const (
	KindFunction         = "function"
	KindClass            = "class"
	KindMethod           = "method"
	KindProperty         = "property"
	KindAccessor         = "accessor"
	KindPrivateField     = "private_field"
	KindInterface        = "interface"
	KindType             = "type"
	KindEnum             = "enum"
	KindNamespace        = "namespace"
	KindConst            = "const"
	KindDefaultExport    = "default_export"
	KindHook             = "hook"
	KindFunctionComponent = "function_component"
	KindStruct           = "struct"
	KindSerializedField  = "serialized_field"
	KindUnityLifecycle   = "unity_lifecycle"
	KindReference        = "reference"
)

// Tag values attached to a Symbol beyond its Kind.
const (
	TagScriptableObject = "scriptable_object"
)

// Symbol is one named declaration found in a source file. Lines are 1-based.
type Symbol struct {
	Name      string
	Kind      string
	StartLine int
	EndLine   int
	Column    int
	Tags      []string
}

// Reference is one occurrence of an identifier, used by find_usages.
type Reference struct {
	Name   string
	Line   int
	Column int
}

// Result is everything Extract found in one file.
type Result struct {
	Symbols    []Symbol
	References []Reference
}

// Extract parses source with the tree-sitter grammar for language and
// returns its symbols and references. Rich extraction (the exact kind
// vocabulary from the indexed-symbol table) runs for JS/TS/TSX, Python and
// C#; every other grammar with a registered tree-sitter binding falls back
// to generic function/class/reference extraction driven by the language's
// LanguageSpec node-type lists. Languages with no tree-sitter grammar
// registered return an empty, error-free Result.
func Extract(language lang.Language, source []byte) (Result, error) {
	if !tsparse.Supported(language) {
		return Result{}, nil
	}
	tree, err := tsparse.Parse(language, source)
	if err != nil {
		return Result{}, err
	}
	defer tree.Close()

	root := tree.RootNode()
	spec := lang.ForLanguage(language)

	switch language {
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		return extractJSTS(root, source), nil
	case lang.Python:
		return extractPython(root, source), nil
	case lang.CSharp:
		return extractCSharp(root, source), nil
	default:
		return extractGeneric(root, source, spec), nil
	}
}

// IsCodeAtPosition returns false when the tree-sitter node at (line, col) in
// content is a comment, string, or character literal. line and col are both
// 1-based, as grep reports them. Fail-open: returns
// true for unsupported languages, unparseable content, or any other node
// kind.
func IsCodeAtPosition(content []byte, language lang.Language, line, col int) bool {
	if !tsparse.Supported(language) {
		return true
	}
	tree, err := tsparse.Parse(language, content)
	if err != nil {
		return true
	}
	defer tree.Close()

	point := tree_sitter.Point{Row: uint(line - 1), Column: uint(col - 1)}
	node := smallestNodeAt(tree.RootNode(), point)
	if node == nil {
		return true
	}
	return !isCommentOrLiteralKind(node.Kind())
}

func isCommentOrLiteralKind(kind string) bool {
	return containsAny(kind, "comment", "string", "char_literal", "character_literal")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func pointLE(a, b tree_sitter.Point) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Column <= b.Column
}

// smallestNodeAt finds the deepest node whose span contains point.
func smallestNodeAt(node *tree_sitter.Node, point tree_sitter.Point) *tree_sitter.Node {
	if node == nil {
		return nil
	}
	if !pointLE(node.StartPosition(), point) || !pointLE(point, node.EndPosition()) {
		return nil
	}
	best := node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if found := smallestNodeAt(child, point); found != nil {
			best = found
		}
	}
	return best
}

func line1(p tree_sitter.Point) int { return int(p.Row) + 1 }
