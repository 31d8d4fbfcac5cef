// Package imports extracts import/require statements from JS/TS/Python/C#
// source via tree-sitter and resolves them to project-relative file paths
// or external package names. Extraction style is grounded on the teacher's
// internal/pipeline/imports.go (walk import nodes, pull path/name fields);
// the resolution rules themselves come from spec.md §4.8, which this
// teacher file never implemented (the teacher resolves to in-memory QNs,
// not filesystem paths).
package imports

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/agentindex/codeindexd/internal/lang"
	"github.com/agentindex/codeindexd/internal/tsparse"
)

// Import types.
const (
	TypeDefault   = "default"
	TypeNamed     = "named"
	TypeNamespace = "namespace"
	TypeDynamic   = "dynamic"
	TypeRequire   = "require"
)

// Statement is one extracted import/require/using statement.
type Statement struct {
	Source     string
	ImportType string
	Names      []string
	Line       int
	IsTypeOnly bool
}

// Extract returns every import statement in source for language. Languages
// without a dedicated extractor (anything but JS/TS/TSX, Python, C#) return
// an empty, error-free slice.
func Extract(language lang.Language, source []byte) ([]Statement, error) {
	if !tsparse.Supported(language) {
		return nil, nil
	}
	tree, err := tsparse.Parse(language, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	switch language {
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		return extractJSTSImports(root, source), nil
	case lang.Python:
		return extractPythonImports(root, source), nil
	case lang.CSharp:
		return extractCSharpImports(root, source), nil
	default:
		return nil, nil
	}
}

func nodeText(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func line1(node *tree_sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}
