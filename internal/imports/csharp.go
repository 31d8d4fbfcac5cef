package imports

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

func extractCSharpImports(root *tree_sitter.Node, source []byte) []Statement {
	var stmts []Statement
	walk(root, func(n *tree_sitter.Node) bool {
		if n.Kind() != "using_directive" {
			return true
		}
		if s, ok := csharpUsingStatement(n, source); ok {
			stmts = append(stmts, s)
		}
		return false
	})
	return stmts
}

func csharpUsingStatement(n *tree_sitter.Node, source []byte) (Statement, bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return Statement{}, false
	}
	namespace := nodeText(nameNode, source)

	aliasNode := n.ChildByFieldName("alias")
	importType := TypeNamespace
	var names []string
	if aliasNode != nil {
		importType = TypeNamed
		names = []string{nodeText(aliasNode, source)}
	}

	return Statement{
		Source:     namespace,
		ImportType: importType,
		Names:      names,
		Line:       line1(n),
	}, true
}
