package expression

import (
	"strconv"
	"strings"
)

type Operator int

const (
	OperatorAnd Operator = iota
	OperatorOr
	OperatorAdd
	OperatorSubtract
	OperatorMultiply
	OperatorDivide
	OperatorCaret
)

var operatorSymbolMap = map[Operator]string{
	OperatorAnd:      "&",
	OperatorOr:       "|",
	OperatorAdd:      "+",
	OperatorSubtract: "-",
	OperatorMultiply: "*",
	OperatorDivide:   "/",
	OperatorCaret:    "^",
}

func (o Operator) String() string {
	if s, ok := operatorSymbolMap[o]; ok {
		return s
	}
	return "Operator(" + strconv.Itoa(int(o)) + ")"
}

// Node is an element of an expression tree. The set of implementations is
// closed: *BinaryNode, *NegativeNode and NumberNode.
type Node interface {
	// String renders the node as an S-expression, e.g. "(+ 1 (* 2 3))".
	String() string

	node()
}

// BinaryNode owns both of its operands.
type BinaryNode struct {
	Operator Operator
	Left     Node
	Right    Node
}

func (*BinaryNode) node() {}

func (n *BinaryNode) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(n.Operator.String())
	b.WriteByte(' ')
	b.WriteString(n.Left.String())
	b.WriteByte(' ')
	b.WriteString(n.Right.String())
	b.WriteByte(')')
	return b.String()
}

// NegativeNode is the unary minus.
type NegativeNode struct {
	Operand Node
}

func (*NegativeNode) node() {}

func (n *NegativeNode) String() string {
	return "(- " + n.Operand.String() + ")"
}

type NumberNode float64

func (NumberNode) node() {}

func (n NumberNode) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}
