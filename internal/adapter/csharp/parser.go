package csharp

import (
	"errors"
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
)

// Parser turns C# source into a lowered Tree. It is safe for concurrent use;
// each call gets its own tree-sitter parser.
type Parser struct {
	language *tree_sitter.Language
}

func NewParser() *Parser {
	return &Parser{
		language: tree_sitter.NewLanguage(tree_sitter_csharp.Language()),
	}
}

// Parse never fails on malformed C#: tree-sitter recovers and the lowering
// keeps whatever declarations still carry a name. SyntaxErrors reports how
// many error or missing nodes were seen.
func (p *Parser) Parse(source []byte) (*Tree, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("csharp: set language: %w", err)
	}

	tsTree := parser.Parse(source, nil)
	if tsTree == nil {
		return nil, errors.New("csharp: parser returned no tree")
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	l := &lowerer{
		src:  source,
		tree: &Tree{Source: source},
	}
	l.tree.Nodes = append(l.tree.Nodes, Node{
		Kind:      KindUnit,
		Parent:    NoNode,
		StartByte: 0,
		EndByte:   len(source),
		StartLine: 1,
		EndLine:   int(root.EndPosition().Row) + 1,
	})
	l.lowerScope(root, 0)
	l.tree.SyntaxErrors = countErrors(root)

	return l.tree, nil
}

type lowerer struct {
	src  []byte
	tree *Tree
}

func (l *lowerer) add(n Node, ts *tree_sitter.Node, parent NodeID) NodeID {
	id := NodeID(len(l.tree.Nodes))
	n.Parent = parent
	n.StartByte = int(ts.StartByte())
	n.EndByte = int(ts.EndByte())
	n.StartLine = int(ts.StartPosition().Row) + 1
	n.EndLine = int(ts.EndPosition().Row) + 1
	l.tree.Nodes = append(l.tree.Nodes, n)
	l.tree.Nodes[parent].Children = append(l.tree.Nodes[parent].Children, id)
	return id
}

func (l *lowerer) text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(l.src)
}

func (l *lowerer) field(n *tree_sitter.Node, name string) string {
	return strings.TrimSpace(l.text(n.ChildByFieldName(name)))
}

// lowerScope lowers the declarations found directly in a compilation unit,
// namespace body or type body.
func (l *lowerer) lowerScope(n *tree_sitter.Node, parent NodeID) {
	scope := parent
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			scope = l.lowerMember(c, scope)
		}
	}
}

// lowerMember lowers one declaration into scope and returns the scope for
// the siblings that follow it. Only a file-scoped namespace changes it.
func (l *lowerer) lowerMember(c *tree_sitter.Node, scope NodeID) NodeID {
	switch c.Kind() {
	case "namespace_declaration":
		name := l.field(c, "name")
		if name == "" {
			l.lowerScope(c, scope)
			return scope
		}
		id := l.add(Node{Kind: KindNamespace, Name: name}, c, scope)
		if body := c.ChildByFieldName("body"); body != nil {
			l.lowerScope(body, id)
		} else {
			l.lowerScope(c, id)
		}
	case "file_scoped_namespace_declaration":
		name := l.field(c, "name")
		if name == "" {
			return scope
		}
		id := l.add(Node{Kind: KindNamespace, Name: name}, c, scope)
		// older grammars leave the members as siblings
		l.lowerScope(c, id)
		return id
	case "class_declaration", "struct_declaration", "record_declaration", "record_struct_declaration":
		l.lowerType(c, scope)
	case "method_declaration":
		l.lowerMethod(c, scope)
	case "property_declaration":
		l.lowerProperty(c, scope)
	case "declaration_list":
		l.lowerScope(c, scope)
	case "ERROR":
		l.lowerError(c, scope)
	}
	return scope
}

// lowerError recovers declarations from an error region. An unclosed type
// shows up as a bare keyword and name; it becomes a type that owns the
// members after it, up to the end of the region.
func (l *lowerer) lowerError(n *tree_sitter.Node, parent NodeID) {
	owner := parent
	var pending []*tree_sitter.Node

	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "modifier", "attribute_list":
			pending = append(pending, c)
			continue
		case "class", "struct", "record":
			name := n.Child(i + 1)
			if name == nil || name.Kind() != "identifier" {
				break
			}
			start := c
			if len(pending) > 0 {
				start = pending[0]
			}
			var mods []string
			for _, p := range pending {
				if p.Kind() == "modifier" {
					mods = append(mods, strings.TrimSpace(l.text(p)))
				}
			}
			id := l.add(Node{Kind: KindType, Name: strings.TrimSpace(l.text(name)), Modifiers: mods}, start, parent)
			l.tree.Nodes[id].EndByte = int(n.EndByte())
			l.tree.Nodes[id].EndLine = int(n.EndPosition().Row) + 1
			for _, p := range pending {
				if p.Kind() == "attribute_list" {
					l.lowerAttributes(p, id)
				}
			}
			owner = id
			i++
		case "base_list":
			if owner != parent {
				l.lowerBaseList(c, owner)
			}
		default:
			owner = l.lowerMember(c, owner)
		}
		pending = nil
	}
}

func (l *lowerer) lowerType(n *tree_sitter.Node, parent NodeID) {
	name := l.field(n, "name")
	if name == "" {
		return
	}
	id := l.add(Node{Kind: KindType, Name: name, Modifiers: l.modifiers(n)}, n, parent)

	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "attribute_list":
			l.lowerAttributes(c, id)
		case "base_list":
			l.lowerBaseList(c, id)
		case "declaration_list":
			l.lowerScope(c, id)
		case "ERROR":
			l.lowerError(c, id)
		}
	}
}

func (l *lowerer) lowerBaseList(list *tree_sitter.Node, owner NodeID) {
	for j := uint(0); j < list.NamedChildCount(); j++ {
		b := list.NamedChild(j)
		if b == nil || b.Kind() == "comment" {
			continue
		}
		l.add(Node{Kind: KindBaseType, TypeText: strings.TrimSpace(l.text(b))}, b, owner)
	}
}

func (l *lowerer) lowerMethod(n *tree_sitter.Node, parent NodeID) {
	name := l.field(n, "name")
	if name == "" {
		return
	}
	returns := l.field(n, "returns")
	if returns == "" {
		returns = l.field(n, "type")
	}
	id := l.add(Node{Kind: KindMethod, Name: name, TypeText: returns, Modifiers: l.modifiers(n)}, n, parent)

	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == "attribute_list" {
			l.lowerAttributes(c, id)
		}
	}

	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := uint(0); i < params.NamedChildCount(); i++ {
			p := params.NamedChild(i)
			if p != nil && p.Kind() == "parameter" {
				l.lowerParameter(p, id)
			}
		}
	}

	if body := methodBody(n); body != nil {
		l.lowerInvocations(body, id)
	}
}

// methodBody returns the block or expression body of a method, or nil for
// an abstract or extern declaration.
func methodBody(n *tree_sitter.Node) *tree_sitter.Node {
	if body := n.ChildByFieldName("body"); body != nil {
		return body
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c != nil && (c.Kind() == "block" || c.Kind() == "arrow_expression_clause") {
			return c
		}
	}
	return nil
}

func (l *lowerer) lowerParameter(n *tree_sitter.Node, parent NodeID) {
	name := l.field(n, "name")
	if name == "" {
		return
	}
	typ := l.field(n, "type")
	if typ == "" {
		typ = "object"
	}
	id := l.add(Node{Kind: KindParameter, Name: name, TypeText: typ}, n, parent)
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == "attribute_list" {
			l.lowerAttributes(c, id)
		}
	}
}

func (l *lowerer) lowerProperty(n *tree_sitter.Node, parent NodeID) {
	name := l.field(n, "name")
	if name == "" {
		return
	}
	id := l.add(Node{Kind: KindProperty, Name: name, TypeText: l.field(n, "type")}, n, parent)
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == "attribute_list" {
			l.lowerAttributes(c, id)
		}
	}
}

// lowerInvocations records every call below n in pre-order.
func (l *lowerer) lowerInvocations(n *tree_sitter.Node, owner NodeID) {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if c.Kind() == "invocation_expression" {
			callee := l.field(c, "function")
			if callee != "" {
				l.add(Node{Kind: KindInvocation, Name: callee}, c, owner)
			}
		}
		l.lowerInvocations(c, owner)
	}
}

func (l *lowerer) lowerAttributes(list *tree_sitter.Node, owner NodeID) {
	for i := uint(0); i < list.NamedChildCount(); i++ {
		a := list.NamedChild(i)
		if a == nil || a.Kind() != "attribute" {
			continue
		}
		name := l.field(a, "name")
		if name == "" {
			continue
		}
		attr := Node{Kind: KindAttribute, Name: name}
		attr.Literal, attr.HasLiteral = l.firstStringArgument(a)
		l.add(attr, a, owner)
	}
}

func (l *lowerer) firstStringArgument(attr *tree_sitter.Node) (string, bool) {
	var args *tree_sitter.Node
	for i := uint(0); i < attr.NamedChildCount(); i++ {
		c := attr.NamedChild(i)
		if c != nil && c.Kind() == "attribute_argument_list" {
			args = c
			break
		}
	}
	if args == nil {
		return "", false
	}
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		if arg == nil || arg.Kind() != "attribute_argument" {
			continue
		}
		if arg.NamedChildCount() == 0 {
			return "", false
		}
		expr := arg.NamedChild(arg.NamedChildCount() - 1)
		return unquote(expr.Kind(), l.text(expr))
	}
	return "", false
}

func (l *lowerer) modifiers(n *tree_sitter.Node) []string {
	var mods []string
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == "modifier" {
			mods = append(mods, strings.TrimSpace(l.text(c)))
		}
	}
	return mods
}

func unquote(kind, text string) (string, bool) {
	switch kind {
	case "string_literal":
		if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
			return text[1 : len(text)-1], true
		}
	case "verbatim_string_literal":
		text = strings.TrimPrefix(text, "@")
		if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
			return strings.ReplaceAll(text[1:len(text)-1], `""`, `"`), true
		}
	case "raw_string_literal":
		trimmed := strings.Trim(text, `"`)
		return strings.TrimSpace(trimmed), true
	}
	return "", false
}

func countErrors(n *tree_sitter.Node) int {
	if n == nil || (!n.HasError() && !n.IsMissing()) {
		return 0
	}
	count := 0
	if n.IsError() || n.IsMissing() {
		count++
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		count += countErrors(n.Child(i))
	}
	return count
}
