package symbols

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/agentindex/codeindexd/internal/lang"
)

// extractGeneric drives off a LanguageSpec's FunctionNodeTypes/ClassNodeTypes
// so grammars without a dedicated rich extractor (Go, Rust, Java, Ruby,
// Swift, ...) still populate get_file_outline and find_usages, emitting
// lang.GenericFunctionKind/GenericClassKind/GenericReferenceKind.
func extractGeneric(root *tree_sitter.Node, source []byte, spec *lang.LanguageSpec) Result {
	if spec == nil {
		return Result{}
	}
	funcKinds := toKindSet(spec.FunctionNodeTypes)
	classKinds := toKindSet(spec.ClassNodeTypes)

	var syms []Symbol
	walk(root, func(n *tree_sitter.Node) bool {
		kind := n.Kind()
		switch {
		case funcKinds[kind]:
			if name := identifierName(n, source); name != "" {
				startLine, endLine, col := span(n)
				syms = append(syms, Symbol{Name: name, Kind: lang.GenericFunctionKind, StartLine: startLine, EndLine: endLine, Column: col})
			}
		case classKinds[kind]:
			if name := identifierName(n, source); name != "" {
				startLine, endLine, col := span(n)
				syms = append(syms, Symbol{Name: name, Kind: lang.GenericClassKind, StartLine: startLine, EndLine: endLine, Column: col})
			}
		}
		return true
	})

	refs := collectReferences(root, source, "identifier")
	return Result{Symbols: syms, References: refs}
}

func toKindSet(kinds []string) map[string]bool {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}
