package ir

import "fmt"

// Tree is an arena of resolved nodes rooted at a Scope named "root".
//
// Nodes are stored by value; the only mutation exposed after a node is added
// is appending children to a scope, so transforms can extend a tree but not
// rewrite it.
type Tree struct {
	nodes []NodeInner
	root  Handle
}

// NewTree creates a tree holding only an empty root scope.
func NewTree() *Tree {
	t := &Tree{nodes: make([]NodeInner, 0, 32)}
	t.root = t.Add(Scope{Name: RootName})
	return t
}

// Add appends a node to the arena and returns its handle.
func (t *Tree) Add(inner NodeInner) Handle {
	h := Handle(len(t.nodes)) //nolint:gosec // G115: arena size is bounded by memory
	t.nodes = append(t.nodes, inner)
	return h
}

// Node returns the node behind h, or nil for an invalid handle.
func (t *Tree) Node(h Handle) NodeInner {
	if !h.Valid() || int(h) >= len(t.nodes) {
		return nil
	}
	return t.nodes[h]
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Root returns the handle of the root scope.
func (t *Tree) Root() Handle {
	return t.root
}

// RootScope returns the root scope node.
func (t *Tree) RootScope() Scope {
	s, _ := t.nodes[t.root].(Scope)
	return s
}

// AppendChild adds child to the end of the scope behind scope.
func (t *Tree) AppendChild(scope, child Handle) error {
	s, ok := t.Node(scope).(Scope)
	if !ok {
		return fmt.Errorf("node %d is not a scope", scope)
	}
	if t.Node(child) == nil {
		return fmt.Errorf("invalid child handle %d", child)
	}
	children := make([]Handle, len(s.Children), len(s.Children)+1)
	copy(children, s.Children)
	s.Children = append(children, child)
	t.nodes[scope] = s
	return nil
}

// Name returns the declared name of a node, or "" for unnamed nodes.
func (t *Tree) Name(h Handle) string {
	switch n := t.Node(h).(type) {
	case Scope:
		return n.Name
	case Struct:
		return n.Name
	case Member:
		return n.Name
	case Function:
		return n.Name
	case Parameter:
		return n.Name
	case Binding:
		return n.Name
	case PushConstant:
		return PushConstantName
	case Specialization:
		return n.Name
	case Intrinsic:
		return n.Name
	case Literal:
		return n.Name
	case VarDecl:
		return n.Name
	case MemberExpr:
		return n.Name
	case Call:
		return n.Name
	case Macro:
		return n.Name
	default:
		return ""
	}
}

// Find returns the first declaration named name, searching the root scope
// and nested scopes depth first.
func (t *Tree) Find(name string) (Handle, bool) {
	return t.find(t.root, name)
}

func (t *Tree) find(scope Handle, name string) (Handle, bool) {
	s, ok := t.Node(scope).(Scope)
	if !ok {
		return InvalidHandle, false
	}
	for _, child := range s.Children {
		if _, nested := t.Node(child).(Scope); nested {
			if h, found := t.find(child, name); found {
				return h, true
			}
			continue
		}
		if t.Name(child) == name {
			return child, true
		}
	}
	return InvalidHandle, false
}

// Declarations returns every non-scope declaration reachable from the root
// scope, in declaration order.
func (t *Tree) Declarations() []Handle {
	var out []Handle
	var walk func(Handle)
	walk = func(scope Handle) {
		s, _ := t.Node(scope).(Scope)
		for _, child := range s.Children {
			if _, nested := t.Node(child).(Scope); nested {
				walk(child)
				continue
			}
			out = append(out, child)
		}
	}
	walk(t.root)
	return out
}

// FindStruct returns the struct named name anywhere in the arena.
func (t *Tree) FindStruct(name string) (Handle, bool) {
	for i, n := range t.nodes {
		if s, ok := n.(Struct); ok && s.Name == name {
			return Handle(i), true //nolint:gosec // G115: index is within arena
		}
	}
	return InvalidHandle, false
}
