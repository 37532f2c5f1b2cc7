package syntax

import "fmt"

type atomKind uint8

const (
	atomOperand atomKind = iota
	atomOperator
	atomReturn
)

// atom is one element of a flat expression before assembly.
type atom struct {
	kind atomKind
	node Node
	op   string
	pos  int
}

// bindingPowers orders operators for assembly; higher binds tighter.
// The accessor binds tightest so "a.b * 2" groups as "(a.b) * 2", and
// assignment loosest so it is always the root of a statement.
var bindingPowers = map[string]int{
	"=":  1,
	"==": 2,
	"+":  3,
	"-":  3,
	"*":  4,
	"/":  4,
	"%":  4,
	".":  5,
}

func rightAssociative(op string) bool {
	return op == "="
}

// statement parses an expression terminated by ";".
func (p *Parser) statement(pos int) (Node, int, error) {
	n, next, err := p.expression(pos, func(tok string) bool { return tok == ";" || tok == "}" })
	if err != nil {
		return nil, pos, err
	}
	if next, err = p.expect(next, ";"); err != nil {
		return nil, pos, err
	}
	return n, next, nil
}

// expression scans atoms up to (not including) a token for which stop
// returns true, then assembles them into a tree.
func (p *Parser) expression(pos int, stop func(string) bool) (Node, int, error) {
	start := pos
	var atoms []atom

	for {
		tok, ok := p.at(pos)
		if !ok {
			return nil, pos, fmt.Errorf("expression: %w", ErrStreamEnded)
		}
		if stop(tok) {
			break
		}

		switch {
		case tok == "let":
			decl, next, err := p.varDecl(pos)
			if err != nil {
				return nil, pos, err
			}
			atoms = append(atoms, atom{kind: atomOperand, node: decl, pos: pos})
			pos = next

		case tok == "return":
			if len(atoms) > 0 {
				return nil, pos, p.errorf(pos, "return must start a statement")
			}
			atoms = append(atoms, atom{kind: atomReturn, pos: pos})
			pos++

		case (tok == "-" || tok == "+") && prefixPosition(atoms) && p.numericAt(pos+1):
			value := p.tokens[pos+1]
			if tok == "-" {
				value = "-" + value
			}
			atoms = append(atoms, atom{kind: atomOperand, node: &LiteralExpr{Value: value}, pos: pos})
			pos += 2

		case bindingPowers[tok] > 0:
			atoms = append(atoms, atom{kind: atomOperator, op: tok, pos: pos})
			pos++

		case isLiteral(tok):
			atoms = append(atoms, atom{kind: atomOperand, node: &LiteralExpr{Value: tok}, pos: pos})
			pos++

		case isIdentifier(tok) && p.is(pos+1, "("):
			call, next, err := p.call(pos)
			if err != nil {
				return nil, pos, err
			}
			atoms = append(atoms, atom{kind: atomOperand, node: call, pos: pos})
			pos = next

		case isIdentifier(tok):
			atoms = append(atoms, atom{kind: atomOperand, node: &MemberExpr{Name: tok}, pos: pos})
			pos++

		default:
			return nil, pos, p.errorf(pos, "unexpected token %q in expression", tok)
		}
	}

	n, err := p.assemble(atoms, start)
	if err != nil {
		return nil, pos, err
	}
	return n, pos, nil
}

func prefixPosition(atoms []atom) bool {
	return len(atoms) == 0 || atoms[len(atoms)-1].kind != atomOperand
}

func (p *Parser) numericAt(pos int) bool {
	tok, ok := p.at(pos)
	return ok && isNumericLiteral(tok)
}

// varDecl parses "let name : Type".
func (p *Parser) varDecl(pos int) (Node, int, error) {
	name, pos, err := p.ident(pos+1, "variable name")
	if err != nil {
		return nil, pos, err
	}
	if pos, err = p.expect(pos, ":"); err != nil {
		return nil, pos, err
	}
	typ, _, pos, err := p.typeRef(pos, false)
	if err != nil {
		return nil, pos, err
	}
	return &VarDecl{Name: name, Type: typ}, pos, nil
}

// call parses "name ( arg, ... )"; each argument is a full expression.
func (p *Parser) call(pos int) (Node, int, error) {
	c := &Call{Name: p.tokens[pos]}
	pos += 2
	if p.is(pos, ")") {
		return c, pos + 1, nil
	}
	for {
		arg, next, err := p.expression(pos, func(tok string) bool { return tok == "," || tok == ")" || tok == ";" })
		if err != nil {
			return nil, pos, err
		}
		c.Params = append(c.Params, arg)
		pos = next

		switch p.tokens[pos] {
		case ",":
			pos++
		case ")":
			return c, pos + 1, nil
		default:
			return nil, pos, p.errorf(pos, "unterminated call to %s", c.Name)
		}
	}
}

// assemble builds an expression tree from atoms with a Pratt loop over
// bindingPowers.
func (p *Parser) assemble(atoms []atom, pos int) (Node, error) {
	if len(atoms) == 0 {
		return nil, p.errorf(pos, "expected expression")
	}
	if atoms[0].kind == atomReturn {
		if len(atoms) == 1 {
			return &Return{}, nil
		}
		value, err := p.assemble(atoms[1:], atoms[1].pos)
		if err != nil {
			return nil, err
		}
		return &Return{Value: value}, nil
	}

	pr := &pratt{parser: p, atoms: atoms}
	n, err := pr.parse(0)
	if err != nil {
		return nil, err
	}
	if pr.pos < len(atoms) {
		return nil, p.errorf(atoms[pr.pos].pos, "unexpected %s in expression", atoms[pr.pos].describe())
	}
	return n, nil
}

func (a atom) describe() string {
	switch a.kind {
	case atomOperator:
		return fmt.Sprintf("operator %q", a.op)
	case atomReturn:
		return "return"
	default:
		return "operand"
	}
}

type pratt struct {
	parser *Parser
	atoms  []atom
	pos    int
}

func (pr *pratt) parse(minBP int) (Node, error) {
	if pr.pos >= len(pr.atoms) {
		last := pr.atoms[len(pr.atoms)-1]
		return nil, pr.parser.errorf(last.pos, "expected operand after %s", last.describe())
	}
	a := pr.atoms[pr.pos]
	if a.kind != atomOperand {
		return nil, pr.parser.errorf(a.pos, "expected operand, got %s", a.describe())
	}
	pr.pos++
	left := a.node

	for pr.pos < len(pr.atoms) {
		a := pr.atoms[pr.pos]
		if a.kind != atomOperator {
			return nil, pr.parser.errorf(a.pos, "missing operator before %s", a.describe())
		}
		lbp := bindingPowers[a.op]
		if lbp <= minBP {
			break
		}
		pr.pos++

		rbp := lbp
		if rightAssociative(a.op) {
			rbp = lbp - 1
		}
		right, err := pr.parse(rbp)
		if err != nil {
			return nil, err
		}

		if a.op == "." {
			left = &Accessor{Left: left, Right: right}
		} else {
			left = &Operator{Name: a.op, Left: left, Right: right}
		}
	}
	return left, nil
}
