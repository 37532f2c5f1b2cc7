package syntax

import (
	"errors"
	"fmt"
	"strconv"
)

// Parser turns a token stream into a Syntax Tree.
//
// Every parsing function takes the position of its first token and returns
// the position after the last token it consumed, so a failed attempt leaves
// nothing to undo.
type Parser struct {
	tokens      []string
	table       *TypeTable
	annotations []string
}

// declParser parses one top-level item. It returns errNotMine when the item
// does not start the way it expects.
type declParser func(p *Parser, pos int) (Node, int, error)

var declarationParsers = []declParser{
	(*Parser).structDecl,
	(*Parser).functionDecl,
	(*Parser).annotation,
	(*Parser).memberDecl,
}

// Parse parses tokens into a root Scope and the Type Table extended with
// every struct it declares.
func Parse(tokens []string) (*Scope, *TypeTable, error) {
	p := &Parser{tokens: tokens, table: NewTypeTable()}
	root := NewRoot()

	pos := 0
	for pos < len(tokens) {
		n, next, err := p.declaration(pos)
		if err != nil {
			return nil, nil, err
		}
		if n != nil {
			root.Children = append(root.Children, n)
		}
		pos = next
	}
	if len(p.annotations) > 0 {
		return nil, nil, fmt.Errorf("annotation #[%s] is not followed by a declaration: %w", p.annotations[0], ErrStreamEnded)
	}
	return root, p.table, nil
}

func (p *Parser) declaration(pos int) (Node, int, error) {
	for _, parse := range declarationParsers {
		n, next, err := parse(p, pos)
		if errors.Is(err, errNotMine) {
			continue
		}
		if err != nil {
			return nil, pos, err
		}
		return n, next, nil
	}
	return nil, pos, &SyntaxError{
		Message: "no parser could handle the syntax for statement: " + p.tokens[pos],
		Token:   p.tokens[pos],
		Index:   pos,
	}
}

// =============================================================================
// Token helpers
// =============================================================================

func (p *Parser) at(pos int) (string, bool) {
	if pos < 0 || pos >= len(p.tokens) {
		return "", false
	}
	return p.tokens[pos], true
}

func (p *Parser) is(pos int, want string) bool {
	tok, ok := p.at(pos)
	return ok && tok == want
}

func (p *Parser) expect(pos int, want string) (int, error) {
	tok, ok := p.at(pos)
	if !ok {
		return pos, fmt.Errorf("expected %q: %w", want, ErrStreamEnded)
	}
	if tok != want {
		return pos, p.errorf(pos, "expected %q, got %q", want, tok)
	}
	return pos + 1, nil
}

func (p *Parser) ident(pos int, what string) (string, int, error) {
	tok, ok := p.at(pos)
	if !ok {
		return "", pos, fmt.Errorf("expected %s: %w", what, ErrStreamEnded)
	}
	if !isIdentifier(tok) {
		return "", pos, p.errorf(pos, "expected %s, got %q", what, tok)
	}
	return tok, pos + 1, nil
}

func (p *Parser) errorf(pos int, format string, args ...any) *SyntaxError {
	tok, _ := p.at(pos)
	return &SyntaxError{Message: fmt.Sprintf(format, args...), Token: tok, Index: pos}
}

func (p *Parser) takeAnnotations() []string {
	a := p.annotations
	p.annotations = nil
	return a
}

// declHead matches "Name : keyword" without consuming anything on mismatch.
func (p *Parser) declHead(pos int, keyword string) (string, bool) {
	name, ok := p.at(pos)
	if !ok || !isIdentifier(name) || !p.is(pos+1, ":") {
		return "", false
	}
	if keyword != "" && !p.is(pos+2, keyword) {
		return "", false
	}
	return name, true
}

// =============================================================================
// Declarations
// =============================================================================

// structDecl parses "Name : struct { field: Type, ... }".
func (p *Parser) structDecl(pos int) (Node, int, error) {
	name, ok := p.declHead(pos, "struct")
	if !ok {
		return nil, pos, errNotMine
	}
	pos, err := p.expect(pos+3, "{")
	if err != nil {
		return nil, pos, err
	}

	s := &Struct{Name: name}
	for {
		tok, ok := p.at(pos)
		if !ok {
			return nil, pos, fmt.Errorf("struct %s: %w", name, ErrStreamEnded)
		}
		if tok == "}" {
			pos++
			break
		}

		field, next, err := p.field(pos)
		if err != nil {
			return nil, pos, err
		}
		s.Fields = append(s.Fields, field)
		pos = next

		tok, ok = p.at(pos)
		switch {
		case !ok:
			return nil, pos, fmt.Errorf("struct %s: %w", name, ErrStreamEnded)
		case tok == ",":
			pos++
		case tok == "}":
		default:
			return nil, pos, p.errorf(pos, "expected ',' or '}' after field %s.%s", name, field.Name)
		}
	}

	s.Annotations = p.takeAnnotations()
	p.table.Insert(s)
	return s, pos, nil
}

func (p *Parser) field(pos int) (*Member, int, error) {
	name, pos, err := p.ident(pos, "field name")
	if err != nil {
		return nil, pos, err
	}
	if pos, err = p.expect(pos, ":"); err != nil {
		return nil, pos, err
	}
	typ, count, pos, err := p.typeRef(pos, true)
	if err != nil {
		return nil, pos, err
	}
	return &Member{Name: name, Type: typ, Count: count}, pos, nil
}

// typeRef parses "Type", "Outer<Inner>", "Outer<Inner*>" and, when
// allowArray is set, a trailing "[N]".
func (p *Parser) typeRef(pos int, allowArray bool) (string, uint32, int, error) {
	typ, pos, err := p.ident(pos, "type name")
	if err != nil {
		return "", 0, pos, err
	}

	if p.is(pos, "<") {
		inner, next, err := p.ident(pos+1, "generic argument")
		if err != nil {
			return "", 0, next, err
		}
		pos = next
		if p.is(pos, "*") {
			inner += "*"
			pos++
		}
		if pos, err = p.expect(pos, ">"); err != nil {
			return "", 0, pos, err
		}
		typ = typ + "<" + inner + ">"
	}

	var count uint32
	if allowArray && p.is(pos, "[") {
		tok, ok := p.at(pos + 1)
		if !ok {
			return "", 0, pos, fmt.Errorf("array length: %w", ErrStreamEnded)
		}
		n, err := strconv.ParseUint(tok, 0, 32)
		if err != nil || n == 0 {
			return "", 0, pos, p.errorf(pos+1, "invalid array length %q", tok)
		}
		count = uint32(n)
		if pos, err = p.expect(pos+2, "]"); err != nil {
			return "", 0, pos, err
		}
	}
	return typ, count, pos, nil
}

// functionDecl parses "Name : fn ( ) -> Type { statements }".
func (p *Parser) functionDecl(pos int) (Node, int, error) {
	name, ok := p.declHead(pos, "fn")
	if !ok {
		return nil, pos, errNotMine
	}
	pos, err := p.expect(pos+3, "(")
	if err != nil {
		return nil, pos, err
	}
	if tok, ok := p.at(pos); ok && tok != ")" {
		return nil, pos, p.errorf(pos, "function %s: parameters are not supported", name)
	}
	if pos, err = p.expect(pos, ")"); err != nil {
		return nil, pos, err
	}
	if pos, err = p.expect(pos, "->"); err != nil {
		return nil, pos, err
	}
	ret, _, pos, err := p.typeRef(pos, false)
	if err != nil {
		return nil, pos, err
	}
	if pos, err = p.expect(pos, "{"); err != nil {
		return nil, pos, err
	}

	fn := &Function{Name: name, Return: ret}
	for {
		tok, ok := p.at(pos)
		if !ok {
			return nil, pos, fmt.Errorf("function %s: %w", name, ErrStreamEnded)
		}
		if tok == "}" {
			pos++
			break
		}
		stmt, next, err := p.statement(pos)
		if err != nil {
			return nil, pos, err
		}
		fn.Statements = append(fn.Statements, stmt)
		pos = next
	}

	fn.Annotations = p.takeAnnotations()
	return fn, pos, nil
}

// annotation parses "# [ tag ]" and holds the tag for the next declaration.
func (p *Parser) annotation(pos int) (Node, int, error) {
	if !p.is(pos, "#") {
		return nil, pos, errNotMine
	}
	pos, err := p.expect(pos+1, "[")
	if err != nil {
		return nil, pos, err
	}
	tag, pos, err := p.ident(pos, "annotation name")
	if err != nil {
		return nil, pos, err
	}
	if pos, err = p.expect(pos, "]"); err != nil {
		return nil, pos, err
	}
	p.annotations = append(p.annotations, tag)
	return nil, pos, nil
}

// memberDecl parses "Name : Type ;".
func (p *Parser) memberDecl(pos int) (Node, int, error) {
	name, ok := p.at(pos)
	if !ok || !isIdentifier(name) {
		return nil, pos, errNotMine
	}
	tok, ok := p.at(pos + 1)
	if !ok {
		return nil, pos, fmt.Errorf("member %s: %w", name, ErrStreamEnded)
	}
	if tok != ":" {
		return nil, pos, errNotMine
	}
	typ, count, pos, err := p.typeRef(pos+2, true)
	if err != nil {
		return nil, pos, err
	}
	if pos, err = p.expect(pos, ";"); err != nil {
		return nil, pos, err
	}
	return &Member{Name: name, Type: typ, Count: count, Annotations: p.takeAnnotations()}, pos, nil
}
