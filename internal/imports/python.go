package imports

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

func extractPythonImports(root *tree_sitter.Node, source []byte) []Statement {
	var stmts []Statement
	walk(root, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			stmts = append(stmts, pythonImportStatement(n, source)...)
			return false
		case "import_from_statement":
			if s, ok := pythonImportFromStatement(n, source); ok {
				stmts = append(stmts, s)
			}
			return false
		}
		return true
	})
	return stmts
}

func pythonImportStatement(n *tree_sitter.Node, source []byte) []Statement {
	var stmts []Statement
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			stmts = append(stmts, Statement{
				Source:     nodeText(child, source),
				ImportType: TypeNamespace,
				Names:      []string{lastDottedSegment(nodeText(child, source))},
				Line:       line1(n),
			})
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			alias := lastDottedSegment(nodeText(nameNode, source))
			if aliasNode != nil {
				alias = nodeText(aliasNode, source)
			}
			stmts = append(stmts, Statement{
				Source:     nodeText(nameNode, source),
				ImportType: TypeNamespace,
				Names:      []string{alias},
				Line:       line1(n),
			})
		}
	}
	return stmts
}

func pythonImportFromStatement(n *tree_sitter.Node, source []byte) (Statement, bool) {
	moduleNode := n.ChildByFieldName("module_name")
	if moduleNode == nil {
		return Statement{}, false
	}
	specifier := pythonModuleSpecifier(moduleNode, source)

	var names []string
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			if child != moduleNode {
				names = append(names, lastDottedSegment(nodeText(child, source)))
			}
		case "aliased_import":
			aliasNode := child.ChildByFieldName("alias")
			if aliasNode != nil {
				names = append(names, nodeText(aliasNode, source))
			} else if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				names = append(names, lastDottedSegment(nodeText(nameNode, source)))
			}
		case "wildcard_import":
			names = append(names, "*")
		}
	}

	return Statement{
		Source:     specifier,
		ImportType: TypeNamed,
		Names:      names,
		Line:       line1(n),
	}, true
}

// pythonModuleSpecifier renders a module_name field (dotted_name or
// relative_import) back into its dotted/leading-dot source text.
func pythonModuleSpecifier(node *tree_sitter.Node, source []byte) string {
	if node.Kind() == "relative_import" {
		var sb strings.Builder
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "import_prefix":
				sb.WriteString(nodeText(child, source))
			case "dotted_name":
				sb.WriteString(nodeText(child, source))
			}
		}
		return sb.String()
	}
	return nodeText(node, source)
}

func lastDottedSegment(s string) string {
	parts := strings.Split(s, ".")
	return parts[len(parts)-1]
}
