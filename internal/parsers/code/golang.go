package code

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// walkGo extracts Go declarations: package clause, imports, functions,
// methods, type specs and exported constants.
func walkGo(node *sitter.Node, content []byte, ext *extraction) {
	switch node.Type() {
	case "package_clause":
		if name := node.NamedChild(0); name != nil {
			ext.packageName = name.Content(content)
		}

	case "import_spec":
		if path := node.ChildByFieldName("path"); path != nil {
			recordGoImport(strings.Trim(path.Content(content), `"`), ext)
		}

	case "function_declaration":
		name := fieldText(node, "name", content)
		if name == "" {
			break
		}
		ext.funcNames = append(ext.funcNames, name)
		ext.funcSigs = append(ext.funcSigs, signatureOf(node, content))
		if isUpperInitial(name) {
			ext.exportedFuncs = append(ext.exportedFuncs, name)
		}

	case "method_declaration":
		name := fieldText(node, "name", content)
		if name == "" {
			break
		}
		ext.funcNames = append(ext.funcNames, name)
		ext.funcSigs = append(ext.funcSigs, signatureOf(node, content))
		ext.classMethods = append(ext.classMethods, name)
		if isUpperInitial(name) {
			ext.exportedFuncs = append(ext.exportedFuncs, name)
		}
		if recv := goReceiverType(node, content); recv != "" {
			ext.classNames = appendUnique(ext.classNames, recv)
		}

	case "type_spec":
		name := fieldText(node, "name", content)
		if name == "" {
			break
		}
		typeBody := node.ChildByFieldName("type")
		switch {
		case typeBody != nil && typeBody.Type() == "interface_type":
			ext.interfaces = append(ext.interfaces, name)
		case typeBody != nil && typeBody.Type() == "struct_type":
			ext.classNames = appendUnique(ext.classNames, name)
		}
		if isUpperInitial(name) {
			ext.exportedTypes = append(ext.exportedTypes, name)
		}

	case "const_spec":
		if name := fieldText(node, "name", content); isUpperInitial(name) {
			ext.exportedConst = append(ext.exportedConst, name)
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkGo(node.Child(i), content, ext)
	}
}

// recordGoImport classifies one import path. Dotted first segments are
// remote modules (external); the rest are stdlib or in-module (internal).
func recordGoImport(path string, ext *extraction) {
	ext.imports = append(ext.imports, path)
	first := path
	if i := strings.Index(path, "/"); i >= 0 {
		first = path[:i]
	}
	if strings.Contains(first, ".") {
		ext.importsExt = append(ext.importsExt, path)
	} else {
		ext.importsInt = append(ext.importsInt, path)
	}
}

func goReceiverType(node *sitter.Node, content []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil || recv.NamedChildCount() == 0 {
		return ""
	}
	decl := recv.NamedChild(0)
	t := decl.ChildByFieldName("type")
	if t == nil {
		return ""
	}
	return strings.TrimPrefix(t.Content(content), "*")
}

func fieldText(node *sitter.Node, field string, content []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(content)
}
