// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"

	"github.com/gogpu/besl/ir"
)

// expr returns the GLSL text of an expression.
func (w *Writer) expr(h ir.Handle) (string, error) {
	switch n := w.tree.Node(h).(type) {
	case ir.MemberExpr:
		if lit, ok := w.tree.Node(n.Source).(ir.Literal); ok {
			return lit.Body, nil
		}
		return n.Name, nil

	case ir.LiteralExpr:
		return n.Value, nil

	case ir.Accessor:
		left, err := w.expr(n.Left)
		if err != nil {
			return "", err
		}
		right, err := w.expr(n.Right)
		if err != nil {
			return "", err
		}
		return left + "." + right, nil

	case ir.Call:
		args, err := w.exprList(n.Params)
		if err != nil {
			return "", err
		}
		return translateType(n.Name) + "(" + strings.Join(args, ","+w.sp()) + ")", nil

	case ir.IntrinsicCall:
		parts, err := w.exprList(n.Elements)
		if err != nil {
			return "", err
		}
		return strings.Join(parts, ""), nil

	case ir.OperatorExpr:
		return w.operator(n)

	case ir.VarDecl:
		t, err := w.typeName(n.Type)
		if err != nil {
			return "", err
		}
		return t + " " + n.Name, nil

	case ir.Sentence:
		parts, err := w.exprList(n.Elements)
		if err != nil {
			return "", err
		}
		return strings.Join(parts, ""), nil

	case ir.Return:
		if !n.Value.Valid() {
			return "return", nil
		}
		value, err := w.expr(n.Value)
		if err != nil {
			return "", err
		}
		return "return " + value, nil

	case ir.Fragment:
		return n.Code, nil

	case ir.Macro, ir.Null, ir.Literal:
		return "", nil

	case nil:
		return "", w.errorf("expression handle %d does not exist", h)

	default:
		return "", w.errorf("node %d (%T) is not an expression", h, n)
	}
}

func (w *Writer) exprList(hs []ir.Handle) ([]string, error) {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		s, err := w.expr(h)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// operator writes a binary operation, parenthesizing an operand whose
// operator binds looser than op, or equally on the non-associative side.
func (w *Writer) operator(n ir.OperatorExpr) (string, error) {
	left, err := w.operand(n.Left, n.Op, false)
	if err != nil {
		return "", err
	}
	right, err := w.operand(n.Right, n.Op, true)
	if err != nil {
		return "", err
	}
	sym := n.Op.Symbol()
	sp := w.sp()
	if sp == "" && joinsToken(sym, right) {
		return left + sym + " " + right, nil
	}
	return left + sp + sym + sp + right, nil
}

// joinsToken reports whether writing right directly after the operator sym
// would form "++" or "--".
func joinsToken(sym, right string) bool {
	if right == "" {
		return false
	}
	last := sym[len(sym)-1]
	return (last == '+' || last == '-') && right[0] == last
}

func (w *Writer) operand(h ir.Handle, parent ir.Operator, isRight bool) (string, error) {
	text, err := w.expr(h)
	if err != nil {
		return "", err
	}
	child, ok := w.tree.Node(h).(ir.OperatorExpr)
	if !ok {
		return text, nil
	}
	cp, pp := child.Op.Precedence(), parent.Precedence()
	needsParens := cp < pp
	if cp == pp {
		if parent.RightAssociative() {
			needsParens = !isRight
		} else {
			needsParens = isRight
		}
	}
	if needsParens {
		return "(" + text + ")", nil
	}
	return text, nil
}
