package imports

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

func extractJSTSImports(root *tree_sitter.Node, source []byte) []Statement {
	var stmts []Statement
	walk(root, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			if s, ok := jsImportStatement(n, source); ok {
				stmts = append(stmts, s)
			}
			return false
		case "export_statement":
			if s, ok := jsReExportStatement(n, source); ok {
				stmts = append(stmts, s)
			}
			return true
		case "call_expression":
			if s, ok := jsCallImport(n, source); ok {
				stmts = append(stmts, s)
			}
		}
		return true
	})
	return stmts
}

func walk(node *tree_sitter.Node, fn func(*tree_sitter.Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			walk(child, fn)
		}
	}
}

func jsImportStatement(n *tree_sitter.Node, source []byte) (Statement, bool) {
	sourceNode := n.ChildByFieldName("source")
	if sourceNode == nil {
		return Statement{}, false
	}
	specifier := stripQuotes(nodeText(sourceNode, source))

	isTypeOnly := false
	var names []string
	importType := TypeNamespace

	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "type":
			isTypeOnly = true
		case "import_clause":
			importType, names = jsImportClause(child, source)
		}
	}
	if len(names) == 0 && importType == TypeNamespace {
		// bare `import "mod"` with no clause.
		importType = TypeNamespace
	}

	return Statement{
		Source:     specifier,
		ImportType: importType,
		Names:      names,
		Line:       line1(n),
		IsTypeOnly: isTypeOnly,
	}, true
}

func jsImportClause(clause *tree_sitter.Node, source []byte) (string, []string) {
	var names []string
	importType := TypeNamed
	for i := uint(0); i < clause.ChildCount(); i++ {
		child := clause.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			importType = TypeDefault
			names = append(names, nodeText(child, source))
		case "namespace_import":
			importType = TypeNamespace
			if id := lastIdentifier(child, source); id != "" {
				names = append(names, id)
			}
		case "named_imports":
			importType = TypeNamed
			for j := uint(0); j < child.ChildCount(); j++ {
				spec := child.Child(j)
				if spec == nil || spec.Kind() != "import_specifier" {
					continue
				}
				names = append(names, importSpecifierName(spec, source))
			}
		}
	}
	return importType, names
}

func importSpecifierName(spec *tree_sitter.Node, source []byte) string {
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		return nodeText(alias, source)
	}
	if name := spec.ChildByFieldName("name"); name != nil {
		return nodeText(name, source)
	}
	return nodeText(spec, source)
}

func lastIdentifier(node *tree_sitter.Node, source []byte) string {
	var last string
	walk(node, func(n *tree_sitter.Node) bool {
		if n.Kind() == "identifier" {
			last = nodeText(n, source)
		}
		return true
	})
	return last
}

func jsReExportStatement(n *tree_sitter.Node, source []byte) (Statement, bool) {
	sourceNode := n.ChildByFieldName("source")
	if sourceNode == nil {
		return Statement{}, false
	}
	specifier := stripQuotes(nodeText(sourceNode, source))
	var names []string
	clause := firstChildKind(n, "export_clause")
	if clause != nil {
		for i := uint(0); i < clause.ChildCount(); i++ {
			spec := clause.Child(i)
			if spec == nil || spec.Kind() != "export_specifier" {
				continue
			}
			names = append(names, importSpecifierName(spec, source))
		}
	}
	return Statement{
		Source:     specifier,
		ImportType: TypeNamed,
		Names:      names,
		Line:       line1(n),
	}, true
}

func firstChildKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

func jsCallImport(n *tree_sitter.Node, source []byte) (Statement, bool) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return Statement{}, false
	}
	args := n.ChildByFieldName("arguments")
	if args == nil || args.ChildCount() == 0 {
		return Statement{}, false
	}
	var firstArg *tree_sitter.Node
	for i := uint(0); i < args.ChildCount(); i++ {
		child := args.Child(i)
		if child != nil && child.Kind() == "string" {
			firstArg = child
			break
		}
	}
	if firstArg == nil {
		return Statement{}, false
	}
	specifier := stripQuotes(nodeText(firstArg, source))

	switch fn.Kind() {
	case "import":
		return Statement{Source: specifier, ImportType: TypeDynamic, Line: line1(n)}, true
	case "identifier":
		if nodeText(fn, source) == "require" {
			return Statement{Source: specifier, ImportType: TypeRequire, Line: line1(n)}, true
		}
	}
	return Statement{}, false
}
