package csharp

// NodeID addresses a node inside a Tree's arena.
type NodeID int32

// NoNode is returned by lookups that find nothing.
const NoNode NodeID = -1

type NodeKind uint8

const (
	KindUnit NodeKind = iota
	KindNamespace
	KindType
	KindMethod
	KindProperty
	KindParameter
	KindAttribute
	KindBaseType
	KindInvocation
)

func (k NodeKind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindNamespace:
		return "namespace"
	case KindType:
		return "type"
	case KindMethod:
		return "method"
	case KindProperty:
		return "property"
	case KindParameter:
		return "parameter"
	case KindAttribute:
		return "attribute"
	case KindBaseType:
		return "base_type"
	case KindInvocation:
		return "invocation"
	default:
		return "unknown"
	}
}

// Node is one lowered declaration. Which fields are set depends on Kind:
//
//	Namespace   Name
//	Type        Name, Modifiers
//	Method      Name, TypeText (return type), Modifiers
//	Property    Name, TypeText
//	Parameter   Name, TypeText
//	Attribute   Name, Literal/HasLiteral (first string argument)
//	BaseType    TypeText
//	Invocation  Name (callee expression text)
type Node struct {
	Kind       NodeKind
	Parent     NodeID
	Children   []NodeID
	Name       string
	TypeText   string
	Modifiers  []string
	Literal    string
	HasLiteral bool
	StartByte  int
	EndByte    int
	StartLine  int
	EndLine    int
}

// Tree is an immutable arena of lowered nodes. Nodes[0] is always the unit.
type Tree struct {
	Source       []byte
	Nodes        []Node
	SyntaxErrors int
}

func (t *Tree) Root() NodeID { return 0 }

func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[id]
}

func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	return n.Children
}

// ChildrenOf returns the direct children of id with the given kind, in order.
func (t *Tree) ChildrenOf(id NodeID, kind NodeKind) []NodeID {
	var out []NodeID
	for _, c := range t.Children(id) {
		if t.Nodes[c].Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Descendants returns every node of the given kind below id in pre-order.
func (t *Tree) Descendants(id NodeID, kind NodeKind) []NodeID {
	var out []NodeID
	var walk func(NodeID)
	walk = func(n NodeID) {
		for _, c := range t.Children(n) {
			if t.Nodes[c].Kind == kind {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(id)
	return out
}

// Ancestor returns the nearest enclosing node of the given kind, or NoNode.
func (t *Tree) Ancestor(id NodeID, kind NodeKind) NodeID {
	n := t.Node(id)
	for n != nil && n.Parent != NoNode {
		if t.Nodes[n.Parent].Kind == kind {
			return n.Parent
		}
		n = t.Node(n.Parent)
	}
	return NoNode
}

// Text returns the verbatim source covered by id.
func (t *Tree) Text(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	return string(t.Source[n.StartByte:n.EndByte])
}

// Types returns every type declaration in document order, nested types included.
func (t *Tree) Types() []NodeID {
	return t.Descendants(t.Root(), KindType)
}

// NamespaceOf returns the dotted name of the namespace enclosing id, or "".
func (t *Tree) NamespaceOf(id NodeID) string {
	ns := t.Ancestor(id, KindNamespace)
	if ns == NoNode {
		return ""
	}
	return t.Nodes[ns].Name
}

func (t *Tree) HasModifier(id NodeID, modifier string) bool {
	n := t.Node(id)
	if n == nil {
		return false
	}
	for _, m := range n.Modifiers {
		if m == modifier {
			return true
		}
	}
	return false
}
