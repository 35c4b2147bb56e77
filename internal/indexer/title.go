package indexer

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// extractTitle applies the markdown-H1 rule, falling back to the
// parser-specific rule for Go source when the file looks like markdown or
// Go respectively. Any other file type yields an empty title.
func extractTitle(path string, content []byte) string {
	switch {
	case strings.HasSuffix(path, ".md") || strings.HasSuffix(path, ".markdown"):
		if title := firstMarkdownH1(content); title != "" {
			return title
		}
	case strings.HasSuffix(path, ".go"):
		if title := goDocTitle(content); title != "" {
			return title
		}
	}
	return ""
}

// firstMarkdownH1 returns the text of the first "# " heading line.
func firstMarkdownH1(content []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}

// goDocTitle parses the source with tree-sitter's golang grammar and
// returns the package's leading doc comment (if any), else the name of the
// first top-level function or type declaration.
func goDocTitle(content []byte) string {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil || tree == nil {
		return ""
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return ""
	}

	if doc := leadingPackageComment(root, content); doc != "" {
		return doc
	}
	return firstDeclarationName(root, content)
}

// leadingPackageComment returns the text of a comment node that
// immediately precedes the package_clause, stripped of comment markers.
func leadingPackageComment(root *sitter.Node, source []byte) string {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == "package_clause" {
			if i == 0 {
				return ""
			}
			prev := root.Child(i - 1)
			if prev == nil || prev.Type() != "comment" {
				return ""
			}
			return cleanGoComment(string(source[prev.StartByte():prev.EndByte()]))
		}
	}
	return ""
}

func cleanGoComment(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "//")
	raw = strings.TrimPrefix(raw, "/*")
	raw = strings.TrimSuffix(raw, "*/")
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "//"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}

// firstDeclarationName walks top-level declarations for the first
// function_declaration or type_declaration and returns its identifier.
func firstDeclarationName(root *sitter.Node, source []byte) string {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_declaration", "method_declaration":
			if name := child.ChildByFieldName("name"); name != nil {
				return string(source[name.StartByte():name.EndByte()])
			}
		case "type_declaration":
			if spec := firstNamedChild(child, "type_spec"); spec != nil {
				if name := spec.ChildByFieldName("name"); name != nil {
					return string(source[name.StartByte():name.EndByte()])
				}
			}
		}
	}
	return ""
}

func firstNamedChild(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == nodeType {
			return child
		}
	}
	return nil
}
