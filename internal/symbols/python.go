package symbols

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractPython implements the Python vocabulary named in the indexed-symbol
// table: function, class, plus identifier references. Methods are emitted
// as plain functions qualified with their enclosing class, matching the
// ClassName.method convention used by the richer JS/TS/C# extractors.
func extractPython(root *tree_sitter.Node, source []byte) Result {
	var syms []Symbol
	walkPython(root, source, "", &syms)
	refs := collectReferences(root, source, "identifier")
	return Result{Symbols: syms, References: refs}
}

func walkPython(node *tree_sitter.Node, source []byte, enclosingClass string, out *[]Symbol) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "class_definition":
		name := identifierName(node, source)
		if name == "" {
			return
		}
		startLine, endLine, col := span(node)
		*out = append(*out, Symbol{Name: name, Kind: KindClass, StartLine: startLine, EndLine: endLine, Column: col})
		if body := node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				walkPython(body.Child(i), source, name, out)
			}
		}
		return

	case "function_definition":
		name := identifierName(node, source)
		if name == "" {
			return
		}
		if enclosingClass != "" {
			name = enclosingClass + "." + name
		}
		startLine, endLine, col := span(node)
		*out = append(*out, Symbol{Name: name, Kind: KindFunction, StartLine: startLine, EndLine: endLine, Column: col})
		if body := node.ChildByFieldName("body"); body != nil {
			for i := uint(0); i < body.ChildCount(); i++ {
				walkPython(body.Child(i), source, "", out)
			}
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkPython(node.Child(i), source, enclosingClass, out)
	}
}
