package symbols

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractJSTS implements the JS/TS/TSX symbol vocabulary from the
// indexed-symbol table: function, class, method (as ClassName.method),
// property, accessor, private_field, interface, type, enum, namespace
// (dotted), const, default_export, hook, function_component, plus
// identifier references.
func extractJSTS(root *tree_sitter.Node, source []byte) Result {
	var syms []Symbol
	walkJSTS(root, source, "", &syms)

	refs := collectReferences(root, source, "identifier", "property_identifier", "shorthand_property_identifier", "type_identifier")
	return Result{Symbols: syms, References: refs}
}

func walkJSTS(node *tree_sitter.Node, source []byte, enclosingClass string, out *[]Symbol) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "function_declaration", "generator_function_declaration":
		emitJSFunction(node, source, identifierName(node, source), out)
		return

	case "class_declaration", "class":
		name := identifierName(node, source)
		if name == "" {
			name = "anonymous"
		}
		startLine, endLine, col := span(node)
		*out = append(*out, Symbol{Name: name, Kind: KindClass, StartLine: startLine, EndLine: endLine, Column: col})
		if body := node.ChildByFieldName("body"); body != nil {
			walkClassBody(body, source, name, out)
		}
		return

	case "interface_declaration":
		appendSimple(node, source, KindInterface, out)
	case "type_alias_declaration":
		appendSimple(node, source, KindType, out)
	case "enum_declaration":
		appendSimple(node, source, KindEnum, out)

	case "internal_module":
		name := dottedModuleName(node, source)
		if name != "" {
			startLine, endLine, col := span(node)
			*out = append(*out, Symbol{Name: name, Kind: KindNamespace, StartLine: startLine, EndLine: endLine, Column: col})
		}

	case "lexical_declaration":
		handleLexicalDeclaration(node, source, out)
		return

	case "export_statement":
		handleExportStatement(node, source, out)
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkJSTS(node.Child(i), source, enclosingClass, out)
	}
}

func isFunctionNode(n *tree_sitter.Node) bool {
	switch n.Kind() {
	case "function_expression", "arrow_function", "generator_function":
		return true
	}
	return false
}

func appendSimple(node *tree_sitter.Node, source []byte, kind string, out *[]Symbol) {
	name := identifierName(node, source)
	if name == "" {
		return
	}
	startLine, endLine, col := span(node)
	*out = append(*out, Symbol{Name: name, Kind: kind, StartLine: startLine, EndLine: endLine, Column: col})
}

// emitJSFunction classifies a named function as hook, function_component,
// or plain function.
func emitJSFunction(node *tree_sitter.Node, source []byte, name string, out *[]Symbol) {
	if name == "" {
		return
	}
	kind := KindFunction
	switch {
	case isHookName(name):
		kind = KindHook
	case isPascalCase(name) && containsJSX(node):
		kind = KindFunctionComponent
	}
	startLine, endLine, col := span(node)
	*out = append(*out, Symbol{Name: name, Kind: kind, StartLine: startLine, EndLine: endLine, Column: col})
}

func dottedModuleName(node *tree_sitter.Node, source []byte) string {
	named := node.ChildByFieldName("name")
	if named == nil {
		return ""
	}
	return flattenQualified(named, source)
}

func flattenQualified(node *tree_sitter.Node, source []byte) string {
	switch node.Kind() {
	case "nested_identifier":
		left := node.ChildByFieldName("object")
		right := node.ChildByFieldName("property")
		if left != nil && right != nil {
			return flattenQualified(left, source) + "." + flattenQualified(right, source)
		}
	}
	return nodeText(node, source)
}

// handleLexicalDeclaration covers top-level `const` bindings: a function
// initializer is classified like a function declaration (hook/component
// aware); any other initializer becomes a const symbol.
func handleLexicalDeclaration(node *tree_sitter.Node, source []byte, out *[]Symbol) {
	isConst := firstChildOfKinds(node, "const") != nil
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		name := identifierName(child, source)
		if name == "" {
			continue
		}
		value := child.ChildByFieldName("value")
		if value != nil && isFunctionNode(value) {
			emitJSFunction(value, source, name, out)
			continue
		}
		if isConst {
			startLine, endLine, col := span(child)
			*out = append(*out, Symbol{Name: name, Kind: KindConst, StartLine: startLine, EndLine: endLine, Column: col})
		}
	}
}

// handleExportStatement recurses into the exported declaration and, for a
// default export, additionally emits a default_export symbol.
func handleExportStatement(node *tree_sitter.Node, source []byte, out *[]Symbol) {
	isDefault := firstChildOfKinds(node, "default") != nil

	var inner *tree_sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function_declaration", "generator_function_declaration", "class_declaration",
			"interface_declaration", "type_alias_declaration", "enum_declaration",
			"lexical_declaration", "internal_module":
			inner = child
		}
	}

	name := ""
	if inner != nil {
		before := len(*out)
		walkJSTS(inner, source, "", out)
		if len(*out) > before {
			name = (*out)[before].Name
		}
	} else if isDefault {
		// export default <expression>; e.g. an anonymous arrow function or
		// identifier reference.
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			if isFunctionNode(child) {
				name = identifierName(child, source)
			} else if child.Kind() == "identifier" {
				name = nodeText(child, source)
			}
		}
	}

	if isDefault {
		if name == "" {
			name = "default"
		}
		startLine, endLine, col := span(node)
		*out = append(*out, Symbol{Name: name, Kind: KindDefaultExport, StartLine: startLine, EndLine: endLine, Column: col})
	}
}

func walkClassBody(body *tree_sitter.Node, source []byte, className string, out *[]Symbol) {
	for i := uint(0); i < body.ChildCount(); i++ {
		member := body.Child(i)
		if member == nil {
			continue
		}
		switch member.Kind() {
		case "method_definition":
			emitJSMethod(member, source, className, out)
		case "field_definition", "public_field_definition":
			emitJSField(member, source, className, out)
		case "class_declaration", "class":
			// nested class
			walkJSTS(member, source, className, out)
		}
	}
}

func emitJSMethod(member *tree_sitter.Node, source []byte, className string, out *[]Symbol) {
	name := identifierName(member, source)
	if name == "" {
		return
	}
	kind := KindMethod
	for i := uint(0); i < member.ChildCount(); i++ {
		child := member.Child(i)
		if child != nil && (child.Kind() == "get" || child.Kind() == "set") {
			kind = KindAccessor
			break
		}
	}
	startLine, endLine, col := span(member)
	*out = append(*out, Symbol{Name: className + "." + name, Kind: kind, StartLine: startLine, EndLine: endLine, Column: col})
}

func emitJSField(member *tree_sitter.Node, source []byte, className string, out *[]Symbol) {
	name := identifierName(member, source)
	if name == "" {
		return
	}
	kind := KindProperty
	if strings.HasPrefix(name, "#") {
		kind = KindPrivateField
	}
	startLine, endLine, col := span(member)
	*out = append(*out, Symbol{Name: className + "." + name, Kind: kind, StartLine: startLine, EndLine: endLine, Column: col})
}
