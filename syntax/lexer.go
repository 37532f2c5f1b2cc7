package syntax

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Token is a lexeme with its position in the source.
type Token struct {
	Text string
	Pos  Position
}

// Lexer splits besl source text into tokens.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
	start  int
	tokens []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	estTokens := len(source) / 4
	if estTokens < 16 {
		estTokens = 16
	}
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, estTokens),
	}
}

// Tokenize splits source into the string token stream accepted by Parse.
func Tokenize(source string) ([]string, error) {
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out, nil
}

// Tokenize returns all tokens from the source.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.pos
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	startCol := l.column
	r := l.advance()

	switch r {
	case '(', ')', '{', '}', '[', ']', ',', '.', ':', ';', '#', '<', '>', '*', '+', '%':
		l.addToken()
	case '-':
		l.match('>')
		l.addToken()
	case '=':
		l.match('=')
		l.addToken()
	case '/':
		if l.match('/') {
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		} else if l.match('*') {
			l.blockComment()
		} else {
			l.addToken()
		}

	case ' ', '\r', '\t':
	case '\n':
		l.line++
		l.column = 1

	default:
		switch {
		case isDigit(r):
			l.number()
		case isAlpha(r) || r == '_':
			l.identifier()
		default:
			return &SourceError{
				Message: fmt.Sprintf("unexpected character %q", r),
				Pos:     Position{Line: l.line, Column: startCol},
				Source:  l.source,
			}
		}
	}

	return nil
}

func (l *Lexer) blockComment() {
	depth := 1
	for depth > 0 && !l.isAtEnd() {
		if l.peek() == '/' && l.peekNext() == '*' {
			l.advance()
			l.advance()
			depth++
		} else if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			depth--
		} else {
			if l.peek() == '\n' {
				l.line++
				l.column = 0
			}
			l.advance()
		}
	}
}

func (l *Lexer) number() {
	if l.source[l.start] == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.advance()
		for isHexDigit(l.peek()) {
			l.advance()
		}
		if l.peek() == 'i' || l.peek() == 'u' {
			l.advance()
		}
		l.addToken()
		return
	}

	for isDigit(l.peek()) {
		l.advance()
	}

	// "1.x" is an accessor on an integer, "1." and "1.5" are floats.
	nextAfterDot := l.peekNext()
	if l.peek() == '.' && !isAlpha(nextAfterDot) && nextAfterDot != '_' {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	switch l.peek() {
	case 'f', 'h', 'i', 'u':
		l.advance()
	case 'l':
		if l.peekNext() == 'f' {
			l.advance()
			l.advance()
		}
	}

	l.addToken()
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	l.addToken()
}

func (l *Lexer) addToken() {
	l.tokens = append(l.tokens, Token{
		Text: l.source[l.start:l.pos],
		Pos:  Position{Line: l.line, Column: l.column - (l.pos - l.start)},
	})
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	l.column++
	return r
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.pos:])
	r, _ := utf8.DecodeRuneInString(l.source[l.pos+size:])
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.peek() != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isAlpha(r rune) bool {
	return unicode.IsLetter(r)
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}
