package symbols

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// unityLifecycleMethods is the fixed MonoBehaviour message-method set from
// the indexed-symbol table's Unity specialization.
var unityLifecycleMethods = map[string]bool{
	"Awake": true, "Start": true, "Update": true, "FixedUpdate": true,
	"LateUpdate": true, "OnEnable": true, "OnDisable": true, "OnDestroy": true,
	"OnCollisionEnter": true, "OnCollisionStay": true, "OnCollisionExit": true,
	"OnCollisionEnter2D": true, "OnCollisionStay2D": true, "OnCollisionExit2D": true,
	"OnTriggerEnter": true, "OnTriggerStay": true, "OnTriggerExit": true,
	"OnTriggerEnter2D": true, "OnTriggerStay2D": true, "OnTriggerExit2D": true,
	"OnGUI": true, "OnApplicationQuit": true, "OnApplicationPause": true,
	"OnApplicationFocus": true, "Reset": true, "OnValidate": true,
	"OnDrawGizmos": true, "OnDrawGizmosSelected": true,
}

// extractCSharp implements the C# vocabulary from the indexed-symbol table:
// class/struct/interface/enum/method/property/serialized_field, the Unity
// lifecycle/scriptable_object/serialized_field specializations, plus
// identifier references.
func extractCSharp(root *tree_sitter.Node, source []byte) Result {
	var syms []Symbol
	walkCSharp(root, source, "", &syms)
	refs := collectReferences(root, source, "identifier")
	return Result{Symbols: syms, References: refs}
}

func walkCSharp(node *tree_sitter.Node, source []byte, enclosingClass string, out *[]Symbol) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "class_declaration":
		emitCSharpType(node, source, KindClass, out)
		walkCSharpBody(node, source, identifierName(node, source), out)
		return
	case "struct_declaration":
		emitCSharpType(node, source, KindStruct, out)
		walkCSharpBody(node, source, identifierName(node, source), out)
		return
	case "interface_declaration":
		emitCSharpType(node, source, KindInterface, out)
		walkCSharpBody(node, source, identifierName(node, source), out)
		return
	case "enum_declaration":
		appendSimple(node, source, KindEnum, out)
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkCSharp(node.Child(i), source, enclosingClass, out)
	}
}

func walkCSharpBody(typeNode *tree_sitter.Node, source []byte, className string, out *[]Symbol) {
	body := typeNode.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		member := body.Child(i)
		if member == nil {
			continue
		}
		switch member.Kind() {
		case "method_declaration":
			emitCSharpMethod(member, source, className, out)
		case "property_declaration":
			name := identifierName(member, source)
			if name == "" {
				continue
			}
			startLine, endLine, col := span(member)
			*out = append(*out, Symbol{Name: className + "." + name, Kind: KindProperty, StartLine: startLine, EndLine: endLine, Column: col})
		case "field_declaration":
			emitCSharpField(member, source, className, out)
		case "class_declaration", "struct_declaration", "interface_declaration", "enum_declaration":
			walkCSharp(member, source, className, out)
		}
	}
}

func emitCSharpType(node *tree_sitter.Node, source []byte, kind string, out *[]Symbol) {
	name := identifierName(node, source)
	if name == "" {
		return
	}
	var tags []string
	if kind == KindClass && (extendsScriptableObject(node, source) || hasAttribute(node, source, "CreateAssetMenu")) {
		tags = append(tags, TagScriptableObject)
	}
	startLine, endLine, col := span(node)
	*out = append(*out, Symbol{Name: name, Kind: kind, StartLine: startLine, EndLine: endLine, Column: col, Tags: tags})
}

func extendsScriptableObject(node *tree_sitter.Node, source []byte) bool {
	baseList := node.ChildByFieldName("bases")
	if baseList == nil {
		return false
	}
	return strings.Contains(nodeText(baseList, source), "ScriptableObject")
}

func hasAttribute(node *tree_sitter.Node, source []byte, attrName string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "attribute_list" && strings.Contains(nodeText(child, source), attrName) {
			return true
		}
	}
	return false
}

func emitCSharpMethod(member *tree_sitter.Node, source []byte, className string, out *[]Symbol) {
	name := identifierName(member, source)
	if name == "" {
		return
	}
	kind := KindMethod
	if unityLifecycleMethods[name] {
		kind = KindUnityLifecycle
	}
	startLine, endLine, col := span(member)
	*out = append(*out, Symbol{Name: className + "." + name, Kind: kind, StartLine: startLine, EndLine: endLine, Column: col})
}

// emitCSharpField emits only fields qualifying as serialized_field: those
// marked [SerializeField], or public instance fields without
// [NonSerialized]/[HideInInspector] and without "static". Non-serialized
// fields carry no emitted kind in the vocabulary and are skipped.
func emitCSharpField(member *tree_sitter.Node, source []byte, className string, out *[]Symbol) {
	if hasAttribute(member, source, "NonSerialized") || hasAttribute(member, source, "HideInInspector") {
		return
	}
	isStatic := false
	isPublic := false
	serializeField := hasAttribute(member, source, "SerializeField")
	for i := uint(0); i < member.ChildCount(); i++ {
		child := member.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "modifier":
			switch nodeText(child, source) {
			case "static":
				isStatic = true
			case "public":
				isPublic = true
			}
		}
	}
	if !serializeField && (isStatic || !isPublic) {
		return
	}

	decl := firstChildOfKinds(member, "variable_declaration")
	if decl == nil {
		return
	}
	for i := uint(0); i < decl.ChildCount(); i++ {
		declarator := decl.Child(i)
		if declarator == nil || declarator.Kind() != "variable_declarator" {
			continue
		}
		name := identifierName(declarator, source)
		if name == "" {
			continue
		}
		startLine, endLine, col := span(member)
		*out = append(*out, Symbol{Name: className + "." + name, Kind: KindSerializedField, StartLine: startLine, EndLine: endLine, Column: col})
	}
}
