package syntax

import (
	"fmt"
	"strings"

	"github.com/gogpu/besl/ir"
)

// resolver converts a Syntax Tree into an ir.Tree.
type resolver struct {
	tree    *ir.Tree
	table   *TypeTable
	structs *ir.StructRegistry

	// resolving guards against structs that contain themselves.
	resolving map[string]bool
	// pending holds user structs declared at the root but not reached yet;
	// referencing one is a forward reference.
	pending map[string]bool
	// scopes is the name chain, innermost last.
	scopes []map[string]ir.Handle
}

// Resolve walks root and builds the resolved tree. Every type name is looked
// up in table (the intrinsic baseline when table is nil); a struct is
// visible to declarations that follow it, not to those before it.
func Resolve(root *Scope, table *TypeTable) (*ir.Tree, error) {
	if root == nil {
		return nil, &UndefinedError{Message: "nil root scope"}
	}
	if table == nil {
		table = NewTypeTable()
	}

	tree := ir.NewTree()
	r := &resolver{
		tree:      tree,
		table:     table,
		structs:   ir.NewStructRegistry(tree),
		resolving: make(map[string]bool),
		pending:   make(map[string]bool),
	}
	for _, child := range root.Children {
		if s, ok := child.(*Struct); ok {
			r.pending[s.Name] = true
		}
	}

	r.push()
	defer r.pop()
	for _, child := range root.Children {
		h, err := r.declaration(child)
		if err != nil {
			return nil, err
		}
		if err := tree.AppendChild(tree.Root(), h); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func (r *resolver) push() {
	r.scopes = append(r.scopes, make(map[string]ir.Handle))
}

func (r *resolver) pop() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) declare(name string, h ir.Handle) {
	if name == "" {
		return
	}
	r.scopes[len(r.scopes)-1][name] = h
}

func (r *resolver) lookup(name string) (ir.Handle, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if h, ok := r.scopes[i][name]; ok {
			return h, true
		}
	}
	return ir.InvalidHandle, false
}

// =============================================================================
// Declarations
// =============================================================================

func (r *resolver) declaration(n Node) (ir.Handle, error) {
	switch n := n.(type) {
	case *Scope:
		return r.scope(n)

	case *Struct:
		delete(r.pending, n.Name)
		if IsIntrinsicType(n.Name) {
			r.structs.Remove(n.Name)
			r.structs.Remove(n.Name + "*")
		}
		h, err := r.resolveStruct(n)
		if err != nil {
			return ir.InvalidHandle, err
		}
		r.declare(n.Name, h)
		return h, nil

	case *Member:
		h, err := r.member(n)
		if err != nil {
			return ir.InvalidHandle, err
		}
		r.declare(n.Name, h)
		return h, nil

	case *Function:
		return r.function(n)

	case *Binding:
		return r.binding(n)

	case *PushConstant:
		members, err := r.members(n.Members)
		if err != nil {
			return ir.InvalidHandle, fmt.Errorf("push constant: %w", err)
		}
		h := r.tree.Add(ir.PushConstant{Members: members})
		r.declare(ir.PushConstantName, h)
		return h, nil

	case *Specialization:
		typ, err := r.resolveType(n.Type)
		if err != nil {
			return ir.InvalidHandle, fmt.Errorf("specialization %s: %w", n.Name, err)
		}
		h := r.tree.Add(ir.Specialization{Name: n.Name, Type: typ})
		r.declare(n.Name, h)
		return h, nil

	case *Fragment:
		return r.fragment(n), nil

	case *Intrinsic:
		return r.intrinsic(n)

	case *Literal:
		h := r.tree.Add(ir.Literal{Name: n.Name, Body: n.Body})
		r.declare(n.Name, h)
		return h, nil

	case *Parameter:
		return r.parameter(n)

	case *Null:
		return r.tree.Add(ir.Null{}), nil

	case nil:
		return ir.InvalidHandle, &UndefinedError{Message: "nil declaration"}

	default:
		return ir.InvalidHandle, &UndefinedError{Message: fmt.Sprintf("%T is not a declaration", n)}
	}
}

func (r *resolver) scope(s *Scope) (ir.Handle, error) {
	h := r.tree.Add(ir.Scope{Name: s.Name})
	r.push()
	defer r.pop()
	for _, child := range s.Children {
		ch, err := r.declaration(child)
		if err != nil {
			return ir.InvalidHandle, fmt.Errorf("scope %s: %w", s.Name, err)
		}
		if err := r.tree.AppendChild(h, ch); err != nil {
			return ir.InvalidHandle, err
		}
	}
	return h, nil
}

// resolveStruct returns the shared node for s, resolving its fields on
// first use.
func (r *resolver) resolveStruct(s *Struct) (ir.Handle, error) {
	if h, ok := r.structs.Lookup(s.Name); ok {
		return h, nil
	}
	if r.resolving[s.Name] {
		return ir.InvalidHandle, &UndefinedError{Message: fmt.Sprintf("struct %s contains itself", s.Name)}
	}
	r.resolving[s.Name] = true
	defer delete(r.resolving, s.Name)

	fields, err := r.members(s.Fields)
	if err != nil {
		return ir.InvalidHandle, fmt.Errorf("struct %s: %w", s.Name, err)
	}
	h := r.structs.GetOrCreate(s.Name, ir.Struct{Name: s.Name, Template: ir.InvalidHandle, Fields: fields})
	r.structs.Alias(s.Name+"*", h)
	return h, nil
}

// resolveType returns the struct node for a type name.
func (r *resolver) resolveType(name string) (ir.Handle, error) {
	if h, ok := r.structs.Lookup(name); ok {
		return h, nil
	}
	if i := strings.IndexByte(name, '<'); i > 0 && strings.HasSuffix(name, ">") {
		return r.resolveGeneric(name, name[:i], name[i+1:len(name)-1])
	}
	s, ok := r.visibleStruct(name)
	if !ok {
		return ir.InvalidHandle, &NoSuchTypeError{Name: name}
	}
	return r.resolveStruct(s)
}

// visibleStruct returns the declaration a type name refers to at this
// point. A root struct not reached yet hides only its own declaration; an
// intrinsic of the same name stays visible until then.
func (r *resolver) visibleStruct(name string) (*Struct, bool) {
	if r.pending[strings.TrimSuffix(name, "*")] {
		s, ok := intrinsicTypes()[name]
		return s, ok
	}
	return r.table.Lookup(name)
}

// resolveGeneric instantiates Outer<Inner>. A pointer argument "T*" becomes
// a synthesized empty struct templated on Outer.
func (r *resolver) resolveGeneric(name, outer, inner string) (ir.Handle, error) {
	outerHandle, err := r.resolveType(outer)
	if err != nil {
		return ir.InvalidHandle, err
	}

	var innerHandle ir.Handle
	if strings.HasSuffix(inner, "*") {
		innerHandle = r.structs.GetOrCreate(outer+"<"+inner+">#pointee", ir.Struct{Name: inner, Template: outerHandle})
	} else {
		innerHandle, err = r.resolveType(inner)
		if err != nil {
			return ir.InvalidHandle, err
		}
	}

	return r.structs.GetOrCreate(name, ir.Struct{
		Name:     name,
		Template: outerHandle,
		Types:    []ir.Handle{innerHandle},
	}), nil
}

func (r *resolver) member(m *Member) (ir.Handle, error) {
	typ, err := r.resolveType(m.Type)
	if err != nil {
		return ir.InvalidHandle, fmt.Errorf("member %s: %w", m.Name, err)
	}
	return r.tree.Add(ir.Member{Name: m.Name, Type: typ, Count: m.Count, Annotations: m.Annotations}), nil
}

func (r *resolver) members(ms []*Member) ([]ir.Handle, error) {
	out := make([]ir.Handle, 0, len(ms))
	for _, m := range ms {
		h, err := r.member(m)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (r *resolver) parameter(p *Parameter) (ir.Handle, error) {
	typ, err := r.resolveType(p.Type)
	if err != nil {
		return ir.InvalidHandle, fmt.Errorf("parameter %s: %w", p.Name, err)
	}
	h := r.tree.Add(ir.Parameter{Name: p.Name, Type: typ})
	r.declare(p.Name, h)
	return h, nil
}

func (r *resolver) returnType(name string) (ir.Handle, error) {
	if name == "" {
		name = "void"
	}
	return r.resolveType(name)
}

func (r *resolver) function(f *Function) (ir.Handle, error) {
	ret, err := r.returnType(f.Return)
	if err != nil {
		return ir.InvalidHandle, fmt.Errorf("function %s: %w", f.Name, err)
	}

	fn := ir.Function{Name: f.Name, Return: ret, Annotations: f.Annotations}
	r.push()
	for _, p := range f.Params {
		h, err := r.parameter(p)
		if err != nil {
			r.pop()
			return ir.InvalidHandle, fmt.Errorf("function %s: %w", f.Name, err)
		}
		fn.Params = append(fn.Params, h)
	}
	for _, stmt := range f.Statements {
		h, err := r.expr(stmt, ir.InvalidHandle)
		if err != nil {
			r.pop()
			return ir.InvalidHandle, fmt.Errorf("function %s: %w", f.Name, err)
		}
		fn.Statements = append(fn.Statements, h)
	}
	r.pop()

	h := r.tree.Add(fn)
	r.declare(f.Name, h)
	return h, nil
}

func (r *resolver) binding(b *Binding) (ir.Handle, error) {
	node := ir.Binding{
		Name:    b.Name,
		Set:     b.Set,
		Binding: b.Descriptor,
		Read:    b.Read,
		Write:   b.Write,
		Count:   b.Count,
	}
	switch t := b.Type.(type) {
	case *Buffer:
		members, err := r.members(t.Members)
		if err != nil {
			return ir.InvalidHandle, fmt.Errorf("binding %s: %w", b.Name, err)
		}
		node.Kind = ir.BindingBuffer
		node.Members = members
	case *Image:
		node.Kind = ir.BindingImage
		node.Format = t.Format
	case *CombinedImageSampler:
		node.Kind = ir.BindingCombinedImageSampler
		node.Format = t.Format
	default:
		return ir.InvalidHandle, &UndefinedError{Message: fmt.Sprintf("binding %s has no resource type", b.Name)}
	}
	h := r.tree.Add(node)
	r.declare(b.Name, h)
	return h, nil
}

func (r *resolver) fragment(f *Fragment) ir.Handle {
	h := r.tree.Add(ir.Fragment{
		Code:    f.Code,
		Inputs:  append([]string(nil), f.Inputs...),
		Outputs: append([]string(nil), f.Outputs...),
	})
	for _, out := range f.Outputs {
		r.declare(out, h)
	}
	return h
}

func (r *resolver) intrinsic(in *Intrinsic) (ir.Handle, error) {
	ret, err := r.returnType(in.Return)
	if err != nil {
		return ir.InvalidHandle, fmt.Errorf("intrinsic %s: %w", in.Name, err)
	}

	node := ir.Intrinsic{Name: in.Name, Return: ret}
	r.push()
	defer r.pop()
	for _, p := range in.Params {
		h, err := r.parameter(p)
		if err != nil {
			return ir.InvalidHandle, fmt.Errorf("intrinsic %s: %w", in.Name, err)
		}
		node.Params = append(node.Params, h)
	}
	for _, e := range in.Body {
		h, err := r.expr(e, ir.InvalidHandle)
		if err != nil {
			return ir.InvalidHandle, fmt.Errorf("intrinsic %s: %w", in.Name, err)
		}
		node.Body = append(node.Body, h)
	}

	h := r.tree.Add(node)
	r.scopes[len(r.scopes)-2][in.Name] = h
	return h, nil
}
