package code

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// walkJS extracts JavaScript and TypeScript declarations. The TypeScript
// grammar is a superset, so one walker serves both.
func walkJS(node *sitter.Node, content []byte, ext *extraction) {
	switch node.Type() {
	case "import_statement":
		if src := node.ChildByFieldName("source"); src != nil {
			recordJSImport(strings.Trim(src.Content(content), `"'`), ext)
		}

	case "export_statement":
		if decl := node.ChildByFieldName("declaration"); decl != nil {
			recordJSExport(decl, content, ext)
		}

	case "function_declaration", "generator_function_declaration":
		name := fieldText(node, "name", content)
		if name == "" {
			break
		}
		ext.funcNames = append(ext.funcNames, name)
		ext.funcSigs = append(ext.funcSigs, signatureOf(node, content))
		if strings.HasPrefix(node.Content(content), "async") {
			ext.asyncFuncs = append(ext.asyncFuncs, name)
		}

	case "method_definition":
		name := fieldText(node, "name", content)
		if name == "" || name == "constructor" {
			break
		}
		ext.funcNames = append(ext.funcNames, name)
		ext.classMethods = append(ext.classMethods, name)
		ext.funcSigs = append(ext.funcSigs, signatureOf(node, content))

	case "class_declaration":
		name := fieldText(node, "name", content)
		if name == "" {
			break
		}
		ext.classNames = appendUnique(ext.classNames, name)
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "class_heritage" {
				base := strings.TrimSpace(strings.TrimPrefix(child.Content(content), "extends"))
				base = strings.TrimSpace(strings.TrimPrefix(base, "implements"))
				if base != "" {
					ext.inheritance = appendUnique(ext.inheritance, name+" -> "+base)
				}
			}
		}

	case "interface_declaration":
		if name := fieldText(node, "name", content); name != "" {
			ext.interfaces = append(ext.interfaces, name)
			ext.exportedTypes = appendUnique(ext.exportedTypes, name)
		}

	case "type_alias_declaration":
		if name := fieldText(node, "name", content); name != "" {
			ext.exportedTypes = appendUnique(ext.exportedTypes, name)
		}

	case "variable_declarator":
		name := fieldText(node, "name", content)
		value := node.ChildByFieldName("value")
		if name == "" || value == nil {
			break
		}
		if value.Type() == "arrow_function" || value.Type() == "function_expression" {
			ext.funcNames = append(ext.funcNames, name)
			ext.funcSigs = append(ext.funcSigs, name+" = "+signatureOf(value, content))
			if strings.HasPrefix(value.Content(content), "async") {
				ext.asyncFuncs = append(ext.asyncFuncs, name)
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkJS(node.Child(i), content, ext)
	}
}

// recordJSImport classifies a module specifier: relative paths are
// internal project files, everything else an external package.
func recordJSImport(spec string, ext *extraction) {
	ext.imports = appendUnique(ext.imports, spec)
	if strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
		ext.importsInt = appendUnique(ext.importsInt, spec)
		ext.importFiles = appendUnique(ext.importFiles, spec)
	} else {
		ext.importsExt = appendUnique(ext.importsExt, spec)
	}
}

func recordJSExport(decl *sitter.Node, content []byte, ext *extraction) {
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration":
		if name := fieldText(decl, "name", content); name != "" {
			ext.exportedFuncs = appendUnique(ext.exportedFuncs, name)
		}
	case "class_declaration":
		if name := fieldText(decl, "name", content); name != "" {
			ext.classNames = appendUnique(ext.classNames, name)
		}
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			child := decl.NamedChild(i)
			if child.Type() != "variable_declarator" {
				continue
			}
			if name := fieldText(child, "name", content); name != "" {
				ext.exportedConst = appendUnique(ext.exportedConst, name)
			}
		}
	case "interface_declaration", "type_alias_declaration":
		if name := fieldText(decl, "name", content); name != "" {
			ext.exportedTypes = appendUnique(ext.exportedTypes, name)
		}
	}
}
