package syntax

import (
	"errors"
	"fmt"
	"strings"
)

// errNotMine is returned by a parser that does not recognize the input at
// the current position. The caller tries the next parser.
var errNotMine = errors.New("not mine")

// ErrStreamEnded is returned when the token stream ends inside an item.
var ErrStreamEnded = errors.New("token stream ended prematurely")

// SyntaxError is a parse failure that stops parsing.
type SyntaxError struct {
	Message string
	Token   string // offending token, "" at end of stream
	Index   int    // token index
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (token %d %q)", e.Message, e.Index, e.Token)
}

// NoSuchTypeError reports a reference to a type that is not declared at the
// point of use.
type NoSuchTypeError struct {
	Name string
}

// Error implements the error interface.
func (e *NoSuchTypeError) Error() string {
	return fmt.Sprintf("no such type %q", e.Name)
}

// UndefinedError reports a construct the resolver cannot give meaning to.
type UndefinedError struct {
	Message string
}

// Error implements the error interface.
func (e *UndefinedError) Error() string {
	return "undefined: " + e.Message
}

// ArgumentCountError reports a call whose argument count differs from the
// callee's parameter count.
type ArgumentCountError struct {
	Function string
	Want     int
	Got      int
}

// Error implements the error interface.
func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("call to %s: want %d arguments, got %d", e.Function, e.Want, e.Got)
}

// Position is a line/column location in source text (1-based).
type Position struct {
	Line   int
	Column int
}

// SourceError is a tokenizer error with source location information.
type SourceError struct {
	Message string
	Pos     Position
	Source  string // original source, for context display
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Pos.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// FormatWithContext returns the error message with the offending line and a
// caret under the error column.
func (e *SourceError) FormatWithContext() string {
	if e.Source == "" || e.Pos.Line == 0 {
		return e.Error()
	}

	lines := strings.Split(e.Source, "\n")
	lineNum := e.Pos.Line
	if lineNum < 1 || lineNum > len(lines) {
		return e.Error()
	}

	line := lines[lineNum-1]
	col := e.Pos.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", e.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", lineNum, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", lineNum, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))

	return sb.String()
}
