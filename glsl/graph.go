// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"github.com/gogpu/besl/ir"
)

// graph records, for each declaration reachable from the entry point, the
// declarations it references.
type graph struct {
	tree  *ir.Tree
	edges map[ir.Handle][]ir.Handle

	// decls holds every declaration in the tree's scopes.
	decls map[ir.Handle]bool
	// byName resolves fragment inputs.
	byName map[string]ir.Handle
	// outputs holds the names introduced by any fragment.
	outputs map[string]bool
}

func newGraph(tree *ir.Tree) *graph {
	g := &graph{
		tree:    tree,
		edges:   make(map[ir.Handle][]ir.Handle),
		decls:   make(map[ir.Handle]bool),
		byName:  make(map[string]ir.Handle),
		outputs: make(map[string]bool),
	}
	for _, h := range tree.Declarations() {
		g.decls[h] = true
		if name := tree.Name(h); name != "" {
			if _, seen := g.byName[name]; !seen {
				g.byName[name] = h
			}
		}
	}
	for i := 0; i < tree.Len(); i++ {
		if f, ok := tree.Node(ir.Handle(i)).(ir.Fragment); ok { //nolint:gosec // G115: index is within arena
			for _, out := range f.Outputs {
				g.outputs[out] = true
			}
		}
	}
	return g
}

// sort returns the declarations reachable from entry in post-order, so
// every declaration follows everything it depends on. Edges are collected
// on first visit; a cycle is cut at the node already on the path.
func (g *graph) sort(entry ir.Handle) ([]ir.Handle, error) {
	var order []ir.Handle
	visited := make(map[ir.Handle]bool)

	var visit func(h ir.Handle) error
	visit = func(h ir.Handle) error {
		if visited[h] {
			return nil
		}
		visited[h] = true

		deps, err := g.dependencies(h)
		if err != nil {
			return err
		}
		g.edges[h] = deps
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		order = append(order, h)
		return nil
	}

	if err := visit(entry); err != nil {
		return nil, err
	}
	return order, nil
}

// dependencies returns the declarations referenced by a declaration.
func (g *graph) dependencies(h ir.Handle) ([]ir.Handle, error) {
	c := &collector{graph: g, seen: make(map[ir.Handle]bool), locals: make(map[string]bool)}

	switch n := g.tree.Node(h).(type) {
	case ir.Function:
		for _, p := range n.Params {
			c.typeOf(p)
			c.locals[g.tree.Name(p)] = true
		}
		c.add(n.Return)
		for _, stmt := range n.Statements {
			if err := c.expr(stmt); err != nil {
				return nil, err
			}
		}
	case ir.Struct:
		for _, f := range n.Fields {
			c.typeOf(f)
		}
		c.addAll(n.Types)
	case ir.Member:
		c.add(n.Type)
	case ir.Binding:
		for _, m := range n.Members {
			c.typeOf(m)
		}
	case ir.PushConstant:
		for _, m := range n.Members {
			c.typeOf(m)
		}
	case ir.Specialization:
		c.add(n.Type)
	case ir.Fragment:
		if err := c.fragment(n); err != nil {
			return nil, err
		}
	case nil:
		return nil, &Error{Message: "reference to a node that does not exist"}
	}
	return c.deps, nil
}

// collector gathers the distinct declarations referenced by one declaration.
type collector struct {
	graph *graph
	deps  []ir.Handle
	seen  map[ir.Handle]bool

	// locals holds parameters and variables declared so far in a function.
	locals map[string]bool
}

func (c *collector) add(h ir.Handle) {
	if !h.Valid() || c.seen[h] {
		return
	}
	c.seen[h] = true
	c.deps = append(c.deps, h)
}

func (c *collector) addAll(hs []ir.Handle) {
	for _, h := range hs {
		c.add(h)
	}
}

// typeOf adds the type of a member or parameter.
func (c *collector) typeOf(h ir.Handle) {
	switch n := c.graph.tree.Node(h).(type) {
	case ir.Member:
		c.add(n.Type)
	case ir.Parameter:
		c.add(n.Type)
	}
}

// ref adds h if it is a declaration; locals and struct fields are not.
func (c *collector) ref(h ir.Handle) {
	if c.graph.decls[h] {
		c.add(h)
	}
}

// refOrName adds a resolved reference, or for an unresolved one the
// declaration of that name, if any. Declarations appended after the code
// that uses them are found this way.
func (c *collector) refOrName(h ir.Handle, name string) {
	if h.Valid() {
		c.ref(h)
		return
	}
	if c.locals[name] {
		return
	}
	if decl, ok := c.graph.byName[name]; ok {
		c.add(decl)
	}
}

func (c *collector) expr(h ir.Handle) error {
	switch n := c.graph.tree.Node(h).(type) {
	case ir.MemberExpr:
		c.refOrName(n.Source, n.Name)
	case ir.Accessor:
		if err := c.expr(n.Left); err != nil {
			return err
		}
		if _, field := c.graph.tree.Node(n.Right).(ir.MemberExpr); field {
			return nil
		}
		return c.expr(n.Right)
	case ir.Call:
		if _, isStruct := c.graph.tree.Node(n.Target).(ir.Struct); isStruct {
			c.add(n.Target)
		} else {
			c.refOrName(n.Target, n.Name)
		}
		return c.exprs(n.Params)
	case ir.IntrinsicCall:
		return c.exprs(n.Elements)
	case ir.OperatorExpr:
		if err := c.expr(n.Left); err != nil {
			return err
		}
		return c.expr(n.Right)
	case ir.VarDecl:
		c.add(n.Type)
		c.locals[n.Name] = true
	case ir.Sentence:
		return c.exprs(n.Elements)
	case ir.Return:
		if n.Value.Valid() {
			return c.expr(n.Value)
		}
	case ir.Fragment:
		return c.fragment(n)
	case ir.LiteralExpr, ir.Macro, ir.Literal, ir.Null:
	case nil:
		return &Error{Message: "statement refers to a node that does not exist"}
	default:
		return &Error{Message: "unexpected declaration in statement position"}
	}
	return nil
}

func (c *collector) exprs(hs []ir.Handle) error {
	for _, h := range hs {
		if err := c.expr(h); err != nil {
			return err
		}
	}
	return nil
}

// fragment resolves the inputs of a raw code fragment.
func (c *collector) fragment(f ir.Fragment) error {
	for _, name := range f.Inputs {
		if h, ok := c.graph.byName[name]; ok {
			c.add(h)
			continue
		}
		if c.locals[name] || c.graph.outputs[name] || isBuiltin(name) {
			continue
		}
		if _, ok := c.graph.tree.FindStruct(name); ok {
			continue
		}
		return &UnresolvedSymbolError{Name: name}
	}
	return nil
}
