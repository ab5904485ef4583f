package expression

import (
	"strconv"

	"github.com/samber/lo"
)

type tokenKind int

const (
	andToken tokenKind = iota
	orToken
	addToken
	subtractToken
	multiplyToken
	divideToken
	caretToken
	leftParenToken
	rightParenToken
	numberToken
	endOfInputToken
)

var punctuationTokenMap = map[byte]tokenKind{
	'&': andToken,
	'|': orToken,
	'+': addToken,
	'-': subtractToken,
	'*': multiplyToken,
	'/': divideToken,
	'^': caretToken,
	'(': leftParenToken,
	')': rightParenToken,
}

var punctuationSymbolMap = lo.Invert(punctuationTokenMap)

type rangeToken struct {
	beginsPos, endsPos int
}

func (t rangeToken) BeginsPos() int {
	return t.beginsPos
}

func (t rangeToken) EndsPos() int {
	return t.endsPos
}

// token is immutable and only lives until the parser moves past it.
type token struct {
	rangeToken
	kind  tokenKind
	value float64 // numberToken only
}

func (t token) String() string {
	switch t.kind {
	case numberToken:
		return strconv.FormatFloat(t.value, 'f', -1, 64)
	case endOfInputToken:
		return "end of input"
	default:
		return string(punctuationSymbolMap[t.kind])
	}
}

// precedenceLevel orders operators from the loosest to the tightest binding.
type precedenceLevel uint8

const (
	defaultPrecedence precedenceLevel = iota
	bitwisePrecedence
	addSubPrecedence
	mulDivPrecedence
	exponentPrecedence
	negativePrecedence
)

var infixOperatorPrecedenceMap = map[tokenKind]precedenceLevel{
	andToken:      bitwisePrecedence,
	orToken:       bitwisePrecedence,
	addToken:      addSubPrecedence,
	subtractToken: addSubPrecedence,
	multiplyToken: mulDivPrecedence,
	divideToken:   mulDivPrecedence,
	caretToken:    exponentPrecedence,
}

func (t token) precedence() precedenceLevel {
	// numbers, parens and end of input fall back to defaultPrecedence
	return infixOperatorPrecedenceMap[t.kind]
}

var infixOperatorMap = map[tokenKind]Operator{
	andToken:      OperatorAnd,
	orToken:       OperatorOr,
	addToken:      OperatorAdd,
	subtractToken: OperatorSubtract,
	multiplyToken: OperatorMultiply,
	divideToken:   OperatorDivide,
	caretToken:    OperatorCaret,
}
