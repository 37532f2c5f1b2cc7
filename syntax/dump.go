package syntax

import (
	json "github.com/goccy/go-json"
)

// dumpNode is the JSON shape of a Syntax Tree node written by MarshalTree.
type dumpNode struct {
	Kind        string      `json:"kind"`
	Name        string      `json:"name,omitempty"`
	Type        string      `json:"type,omitempty"`
	Count       uint32      `json:"count,omitempty"`
	Value       string      `json:"value,omitempty"`
	Annotations []string    `json:"annotations,omitempty"`
	Inputs      []string    `json:"inputs,omitempty"`
	Outputs     []string    `json:"outputs,omitempty"`
	Set         *uint32     `json:"set,omitempty"`
	Binding     *uint32     `json:"binding,omitempty"`
	Read        bool        `json:"read,omitempty"`
	Write       bool        `json:"write,omitempty"`
	Params      []*dumpNode `json:"params,omitempty"`
	Children    []*dumpNode `json:"children,omitempty"`
}

// MarshalTree renders a Syntax Tree as indented JSON for inspection.
func MarshalTree(n Node) ([]byte, error) {
	return json.MarshalIndent(dump(n), "", "  ")
}

func dumpAll[T Node](ns []T) []*dumpNode {
	if len(ns) == 0 {
		return nil
	}
	out := make([]*dumpNode, len(ns))
	for i, n := range ns {
		out[i] = dump(n)
	}
	return out
}

func dump(n Node) *dumpNode {
	switch n := n.(type) {
	case *Scope:
		return &dumpNode{Kind: "scope", Name: n.Name, Children: dumpAll(n.Children)}
	case *Struct:
		return &dumpNode{Kind: "struct", Name: n.Name, Annotations: n.Annotations, Children: dumpAll(n.Fields)}
	case *Member:
		return &dumpNode{Kind: "member", Name: n.Name, Type: n.Type, Count: n.Count, Annotations: n.Annotations}
	case *Function:
		return &dumpNode{Kind: "function", Name: n.Name, Type: n.Return, Annotations: n.Annotations,
			Params: dumpAll(n.Params), Children: dumpAll(n.Statements)}
	case *Parameter:
		return &dumpNode{Kind: "parameter", Name: n.Name, Type: n.Type}
	case *Binding:
		d := &dumpNode{Kind: "binding", Name: n.Name, Count: n.Count, Set: &n.Set, Binding: &n.Descriptor, Read: n.Read, Write: n.Write}
		switch t := n.Type.(type) {
		case *Buffer:
			d.Type = "buffer"
			d.Children = dumpAll(t.Members)
		case *Image:
			d.Type = "image"
			d.Value = t.Format
		case *CombinedImageSampler:
			d.Type = "combined_image_sampler"
			d.Value = t.Format
		}
		return d
	case *Specialization:
		return &dumpNode{Kind: "specialization", Name: n.Name, Type: n.Type}
	case *PushConstant:
		return &dumpNode{Kind: "push_constant", Children: dumpAll(n.Members)}
	case *Fragment:
		return &dumpNode{Kind: "fragment", Value: n.Code, Inputs: n.Inputs, Outputs: n.Outputs}
	case *Intrinsic:
		return &dumpNode{Kind: "intrinsic", Name: n.Name, Type: n.Return, Params: dumpAll(n.Params), Children: dumpAll(n.Body)}
	case *Literal:
		return &dumpNode{Kind: "literal", Name: n.Name, Value: n.Body}
	case *Sentence:
		return &dumpNode{Kind: "sentence", Children: dumpAll(n.Elements)}
	case *Accessor:
		return &dumpNode{Kind: "accessor", Children: []*dumpNode{dump(n.Left), dump(n.Right)}}
	case *MemberExpr:
		return &dumpNode{Kind: "member_expr", Name: n.Name}
	case *LiteralExpr:
		return &dumpNode{Kind: "literal_expr", Value: n.Value}
	case *Call:
		return &dumpNode{Kind: "call", Name: n.Name, Children: dumpAll(n.Params)}
	case *Operator:
		return &dumpNode{Kind: "operator", Value: n.Name, Children: []*dumpNode{dump(n.Left), dump(n.Right)}}
	case *VarDecl:
		return &dumpNode{Kind: "var_decl", Name: n.Name, Type: n.Type}
	case *Macro:
		return &dumpNode{Kind: "macro", Name: n.Name, Value: n.Body}
	case *Return:
		d := &dumpNode{Kind: "return"}
		if n.Value != nil {
			d.Children = []*dumpNode{dump(n.Value)}
		}
		return d
	default:
		return &dumpNode{Kind: "null"}
	}
}
