package ir

import "fmt"

// Operator is a binary operator.
type Operator uint8

const (
	OpAdd Operator = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpAssign
	OpEqual
)

var operatorSymbols = [...]string{
	OpAdd:      "+",
	OpSubtract: "-",
	OpMultiply: "*",
	OpDivide:   "/",
	OpModulo:   "%",
	OpAssign:   "=",
	OpEqual:    "==",
}

// ParseOperator maps operator text to an Operator.
func ParseOperator(symbol string) (Operator, bool) {
	for op, s := range operatorSymbols {
		if s == symbol {
			return Operator(op), true
		}
	}
	return 0, false
}

// Symbol returns the operator text.
func (op Operator) Symbol() string {
	if int(op) < len(operatorSymbols) {
		return operatorSymbols[op]
	}
	return fmt.Sprintf("Operator(%d)", op)
}

func (op Operator) String() string {
	return op.Symbol()
}

// Precedence returns the binding power of the operator; higher binds tighter.
func (op Operator) Precedence() int {
	switch op {
	case OpAssign:
		return 1
	case OpEqual:
		return 2
	case OpAdd, OpSubtract:
		return 3
	case OpMultiply, OpDivide, OpModulo:
		return 4
	default:
		return 0
	}
}

// RightAssociative reports whether chains of op group to the right.
func (op Operator) RightAssociative() bool {
	return op == OpAssign
}
