package symbols

import (
	"strings"
	"unicode"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

func nodeText(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// firstChildOfKinds returns the first direct child whose Kind() is in kinds.
func firstChildOfKinds(node *tree_sitter.Node, kinds ...string) *tree_sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		for _, k := range kinds {
			if child.Kind() == k {
				return child
			}
		}
	}
	return nil
}

// identifierName resolves the declared name for a node using tree-sitter's
// "name" field when present, falling back to the first identifier-like
// child. Returns "" when no name could be resolved.
func identifierName(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	if named := node.ChildByFieldName("name"); named != nil {
		return nodeText(named, source)
	}
	if id := firstChildOfKinds(node, "identifier", "property_identifier", "type_identifier", "shorthand_property_identifier"); id != nil {
		return nodeText(id, source)
	}
	return ""
}

// isPascalCase reports whether name starts with an uppercase letter.
func isPascalCase(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsUpper(r)
}

// isHookName matches /^use[A-Z0-9]/.
func isHookName(name string) bool {
	if !strings.HasPrefix(name, "use") || len(name) <= 3 {
		return false
	}
	r := []rune(name)[3]
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

// containsJSX reports whether node's subtree contains a JSX element, used to
// distinguish function_component from a plain function.
func containsJSX(node *tree_sitter.Node) bool {
	found := false
	walk(node, func(n *tree_sitter.Node) bool {
		if found {
			return false
		}
		switch n.Kind() {
		case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
			found = true
			return false
		}
		return true
	})
	return found
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

// collectReferences walks the full tree emitting a Reference for every
// identifier-like leaf node.
func collectReferences(root *tree_sitter.Node, source []byte, identKinds ...string) []Reference {
	kindSet := make(map[string]bool, len(identKinds))
	for _, k := range identKinds {
		kindSet[k] = true
	}
	var refs []Reference
	walk(root, func(n *tree_sitter.Node) bool {
		if kindSet[n.Kind()] {
			refs = append(refs, Reference{
				Name:   nodeText(n, source),
				Line:   line1(n.StartPosition()),
				Column: int(n.StartPosition().Column),
			})
		}
		return true
	})
	return refs
}

func span(node *tree_sitter.Node) (startLine, endLine, column int) {
	return line1(node.StartPosition()), line1(node.EndPosition()), int(node.StartPosition().Column)
}
