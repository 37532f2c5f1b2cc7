package syntax

import "unicode"

// isIdentifier reports whether tok is a valid identifier.
func isIdentifier(tok string) bool {
	if tok == "" {
		return false
	}
	for i, r := range tok {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// isLiteral reports whether tok is a boolean or numeric literal.
func isLiteral(tok string) bool {
	return tok == "true" || tok == "false" || isNumericLiteral(tok)
}

// isNumericLiteral accepts decimal and hexadecimal integers, decimal floats
// with optional fraction and exponent, and the suffixes u, i (integers) and
// f, h, lf (floats).
func isNumericLiteral(tok string) bool {
	n := len(tok)
	if n == 0 {
		return false
	}

	if n > 2 && tok[0] == '0' && (tok[1] == 'x' || tok[1] == 'X') {
		i := 2
		for i < n && isHexDigit(rune(tok[i])) {
			i++
		}
		if i == 2 {
			return false
		}
		if i < n && (tok[i] == 'u' || tok[i] == 'i') {
			i++
		}
		return i == n
	}

	i := 0
	intDigits := 0
	for i < n && isDigit(rune(tok[i])) {
		i++
		intDigits++
	}
	isFloat := false
	fracDigits := 0
	if i < n && tok[i] == '.' {
		isFloat = true
		i++
		for i < n && isDigit(rune(tok[i])) {
			i++
			fracDigits++
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return false
	}
	if i < n && (tok[i] == 'e' || tok[i] == 'E') {
		isFloat = true
		i++
		if i < n && (tok[i] == '+' || tok[i] == '-') {
			i++
		}
		expDigits := 0
		for i < n && isDigit(rune(tok[i])) {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return false
		}
	}

	switch rest := tok[i:]; rest {
	case "":
		return true
	case "f", "h", "lf":
		return true
	case "u", "i":
		return !isFloat
	default:
		return false
	}
}
