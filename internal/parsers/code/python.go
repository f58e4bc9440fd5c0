package code

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// walkPython extracts Python definitions: imports, functions (with async
// and decorator markers) and classes with their bases and methods.
func walkPython(node *sitter.Node, content []byte, ext *extraction) {
	switch node.Type() {
	case "import_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			name := child.Content(content)
			if child.Type() == "aliased_import" {
				if n := child.ChildByFieldName("name"); n != nil {
					name = n.Content(content)
				}
			}
			recordPyImport(name, ext)
		}

	case "import_from_statement":
		if mod := node.ChildByFieldName("module_name"); mod != nil {
			name := mod.Content(content)
			recordPyImport(name, ext)
			ext.importFiles = appendUnique(ext.importFiles, name)
		}

	case "decorated_definition":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "decorator" {
				ext.decorators = appendUnique(ext.decorators,
					strings.TrimPrefix(strings.TrimSpace(child.Content(content)), "@"))
			}
		}

	case "function_definition":
		name := fieldText(node, "name", content)
		if name == "" {
			break
		}
		ext.funcNames = append(ext.funcNames, name)
		ext.funcSigs = append(ext.funcSigs, signatureOf(node, content))
		if !strings.HasPrefix(name, "_") {
			ext.exportedFuncs = append(ext.exportedFuncs, name)
		}
		if child := node.Child(0); child != nil && child.Type() == "async" {
			ext.asyncFuncs = append(ext.asyncFuncs, name)
		}
		if insidePyClass(node) {
			ext.classMethods = append(ext.classMethods, name)
		}

	case "class_definition":
		name := fieldText(node, "name", content)
		if name == "" {
			break
		}
		ext.classNames = appendUnique(ext.classNames, name)
		if bases := node.ChildByFieldName("superclasses"); bases != nil {
			for i := 0; i < int(bases.NamedChildCount()); i++ {
				base := bases.NamedChild(i).Content(content)
				if base != "" {
					ext.inheritance = appendUnique(ext.inheritance, name+" -> "+base)
				}
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkPython(node.Child(i), content, ext)
	}
}

// recordPyImport classifies a module path: relative imports and bare
// single-segment lowercase names dominated by the project layout are
// internal, the rest external.
func recordPyImport(name string, ext *extraction) {
	ext.imports = appendUnique(ext.imports, name)
	if strings.HasPrefix(name, ".") {
		ext.importsInt = appendUnique(ext.importsInt, name)
		return
	}
	ext.importsExt = appendUnique(ext.importsExt, name)
}

func insidePyClass(node *sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "class_definition":
			return true
		case "function_definition":
			return false
		}
	}
	return false
}
