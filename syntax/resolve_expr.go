package syntax

import (
	"fmt"

	"github.com/gogpu/besl/ir"
)

// expr resolves an expression. container is the type whose fields are
// searched first, set for the right-hand side of an accessor.
func (r *resolver) expr(n Node, container ir.Handle) (ir.Handle, error) {
	switch n := n.(type) {
	case *MemberExpr:
		source := ir.InvalidHandle
		if container.Valid() {
			source = r.field(container, n.Name)
		}
		if !source.Valid() {
			if h, ok := r.lookup(n.Name); ok {
				source = h
			}
		}
		return r.tree.Add(ir.MemberExpr{Name: n.Name, Source: source}), nil

	case *LiteralExpr:
		return r.tree.Add(ir.LiteralExpr{Value: n.Value}), nil

	case *Accessor:
		left, err := r.expr(n.Left, container)
		if err != nil {
			return ir.InvalidHandle, err
		}
		right, err := r.expr(n.Right, r.containerOf(left))
		if err != nil {
			return ir.InvalidHandle, err
		}
		return r.tree.Add(ir.Accessor{Left: left, Right: right}), nil

	case *Call:
		return r.call(n)

	case *Operator:
		op, ok := ir.ParseOperator(n.Name)
		if !ok {
			return ir.InvalidHandle, &UndefinedError{Message: fmt.Sprintf("unknown operator %q", n.Name)}
		}
		left, err := r.expr(n.Left, ir.InvalidHandle)
		if err != nil {
			return ir.InvalidHandle, err
		}
		right, err := r.expr(n.Right, ir.InvalidHandle)
		if err != nil {
			return ir.InvalidHandle, err
		}
		return r.tree.Add(ir.OperatorExpr{Op: op, Left: left, Right: right}), nil

	case *VarDecl:
		typ, err := r.resolveType(n.Type)
		if err != nil {
			return ir.InvalidHandle, fmt.Errorf("variable %s: %w", n.Name, err)
		}
		h := r.tree.Add(ir.VarDecl{Name: n.Name, Type: typ})
		r.declare(n.Name, h)
		return h, nil

	case *Sentence:
		elements, err := r.exprs(n.Elements)
		if err != nil {
			return ir.InvalidHandle, err
		}
		return r.tree.Add(ir.Sentence{Elements: elements}), nil

	case *Return:
		value := ir.InvalidHandle
		if n.Value != nil {
			var err error
			if value, err = r.expr(n.Value, ir.InvalidHandle); err != nil {
				return ir.InvalidHandle, err
			}
		}
		return r.tree.Add(ir.Return{Value: value}), nil

	case *Macro:
		return r.tree.Add(ir.Macro{Name: n.Name, Body: n.Body}), nil

	case *Fragment:
		return r.fragment(n), nil

	case *Literal:
		h := r.tree.Add(ir.Literal{Name: n.Name, Body: n.Body})
		r.declare(n.Name, h)
		return h, nil

	case *Null:
		return r.tree.Add(ir.Null{}), nil

	case nil:
		return ir.InvalidHandle, &UndefinedError{Message: "nil expression"}

	default:
		return ir.InvalidHandle, &UndefinedError{Message: fmt.Sprintf("%T is not an expression", n)}
	}
}

func (r *resolver) exprs(ns []Node) ([]ir.Handle, error) {
	out := make([]ir.Handle, 0, len(ns))
	for _, n := range ns {
		h, err := r.expr(n, ir.InvalidHandle)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// field returns the member of container named name.
func (r *resolver) field(container ir.Handle, name string) ir.Handle {
	var members []ir.Handle
	switch c := r.tree.Node(container).(type) {
	case ir.Struct:
		members = c.Fields
	case ir.PushConstant:
		members = c.Members
	case ir.Binding:
		members = c.Members
	}
	for _, m := range members {
		if r.tree.Name(m) == name {
			return m
		}
	}
	return ir.InvalidHandle
}

// containerOf returns the node whose fields an accessor on h can reach.
func (r *resolver) containerOf(h ir.Handle) ir.Handle {
	switch n := r.tree.Node(h).(type) {
	case ir.MemberExpr:
		return r.containerOf(n.Source)
	case ir.Accessor:
		return r.containerOf(n.Right)
	case ir.Member:
		return r.pointee(n.Type)
	case ir.VarDecl:
		return n.Type
	case ir.Parameter:
		return n.Type
	case ir.Specialization:
		return n.Type
	case ir.PushConstant, ir.Binding, ir.Struct:
		return h
	case ir.Call:
		if fn, ok := r.tree.Node(n.Target).(ir.Function); ok {
			return fn.Return
		}
		if _, ok := r.tree.Node(n.Target).(ir.Struct); ok {
			return n.Target
		}
	case ir.IntrinsicCall:
		if in, ok := r.tree.Node(n.Intrinsic).(ir.Intrinsic); ok {
			return in.Return
		}
	}
	return ir.InvalidHandle
}

// pointee unwraps an Outer<T> instantiation to T.
func (r *resolver) pointee(h ir.Handle) ir.Handle {
	if s, ok := r.tree.Node(h).(ir.Struct); ok && s.IsInstance() && len(s.Types) == 1 {
		return s.Types[0]
	}
	return h
}

// call resolves a call to a function, intrinsic or struct constructor.
// Anything else is a target built-in and stays unresolved.
func (r *resolver) call(c *Call) (ir.Handle, error) {
	params, err := r.exprs(c.Params)
	if err != nil {
		return ir.InvalidHandle, fmt.Errorf("call to %s: %w", c.Name, err)
	}

	target, ok := r.lookup(c.Name)
	if !ok {
		if s, found := r.visibleStruct(c.Name); found {
			if target, err = r.resolveStruct(s); err != nil {
				return ir.InvalidHandle, err
			}
		}
	}

	switch t := r.tree.Node(target).(type) {
	case ir.Function:
		if len(t.Params) != len(params) {
			return ir.InvalidHandle, &ArgumentCountError{Function: c.Name, Want: len(t.Params), Got: len(params)}
		}
	case ir.Intrinsic:
		if len(t.Params) != len(params) {
			return ir.InvalidHandle, &ArgumentCountError{Function: c.Name, Want: len(t.Params), Got: len(params)}
		}
		args := make(map[ir.Handle]ir.Handle, len(params))
		for i, p := range t.Params {
			args[p] = params[i]
		}
		elements := make([]ir.Handle, len(t.Body))
		for i, e := range t.Body {
			elements[i] = r.substitute(e, args)
		}
		return r.tree.Add(ir.IntrinsicCall{Intrinsic: target, Elements: elements}), nil
	case ir.Struct:
	default:
		target = ir.InvalidHandle
	}
	return r.tree.Add(ir.Call{Name: c.Name, Target: target, Params: params}), nil
}

// substitute copies the expression h, replacing references to intrinsic
// parameters with the matching call arguments. Unchanged subtrees are shared.
func (r *resolver) substitute(h ir.Handle, args map[ir.Handle]ir.Handle) ir.Handle {
	switch n := r.tree.Node(h).(type) {
	case ir.MemberExpr:
		if arg, ok := args[n.Source]; ok {
			return arg
		}
	case ir.Accessor:
		left := r.substitute(n.Left, args)
		if left != n.Left {
			return r.tree.Add(ir.Accessor{Left: left, Right: n.Right})
		}
	case ir.OperatorExpr:
		left, right := r.substitute(n.Left, args), r.substitute(n.Right, args)
		if left != n.Left || right != n.Right {
			return r.tree.Add(ir.OperatorExpr{Op: n.Op, Left: left, Right: right})
		}
	case ir.Call:
		if params, changed := r.substituteAll(n.Params, args); changed {
			return r.tree.Add(ir.Call{Name: n.Name, Target: n.Target, Params: params})
		}
	case ir.Sentence:
		if elements, changed := r.substituteAll(n.Elements, args); changed {
			return r.tree.Add(ir.Sentence{Elements: elements})
		}
	case ir.Return:
		if n.Value.Valid() {
			if v := r.substitute(n.Value, args); v != n.Value {
				return r.tree.Add(ir.Return{Value: v})
			}
		}
	}
	return h
}

func (r *resolver) substituteAll(hs []ir.Handle, args map[ir.Handle]ir.Handle) ([]ir.Handle, bool) {
	out := make([]ir.Handle, len(hs))
	changed := false
	for i, h := range hs {
		out[i] = r.substitute(h, args)
		changed = changed || out[i] != h
	}
	return out, changed
}
