package expression

import (
	"log"
	"os"
	"strconv"

	"github.com/k0kubun/pp"
)

var parserDebugLog = false

func init() {
	if v, err := strconv.ParseBool(os.Getenv("ARITHMETIC_EVALUATOR_EXPRESSION_DEBUG")); v && err == nil {
		parserDebugLog = true
	}
}

type parser struct {
	source  string
	lex     *lexer
	current token
	config  parseConfig
}

// ParseExpr builds an expression tree from source with precedence climbing.
// White spaces between tokens are skipped.
func ParseExpr(source string, opts ...ParseOption) (*Expr, error) {
	p, err := newParser(source, newParseConfig(opts))
	if err != nil {
		return nil, err
	}
	return p.parse()
}

func newParser(source string, config parseConfig) (*parser, error) {
	lex := newLexer(source)
	first, err := lex.consume()
	if err != nil {
		return nil, err
	}
	if config.debug {
		log.Println("first token: ", first)
	}

	return &parser{
		source:  source,
		lex:     lex,
		current: first,
		config:  config,
	}, nil
}

func (p *parser) parse() (*Expr, error) {
	root, err := p.generate(defaultPrecedence)
	if err != nil {
		return nil, err
	}
	if p.current.kind != endOfInputToken {
		if p.config.debug {
			log.Println("not consumed token: ", p.current)
		}
		if p.config.strict {
			return nil, p.createSyntaxError(ErrTrailingToken, p.current)
		}
	}

	if p.config.debug {
		pp.Println(p.source)
		pp.Println(root)
		log.Println(root.String())
	}

	return &Expr{
		Source: p.source,
		Root:   root,
	}, nil
}

// advance replaces the current token by the next one from the lexer.
func (p *parser) advance() error {
	tok, err := p.lex.consume()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

// generate parses operands and infix operators for as long as the current
// operator binds tighter than minPrec. Right operands are parsed at the
// operator's own precedence, so equal precedence groups from the left.
func (p *parser) generate(minPrec precedenceLevel) (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for minPrec < p.current.precedence() {
		if p.current.kind == endOfInputToken {
			break
		}
		if p.config.debug {
			log.Println("OP", minPrec, p.current, left)
		}

		left, err = p.convertTokenToNode(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.current
	switch tok.kind {
	case subtractToken:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.generate(negativePrecedence)
		if err != nil {
			return nil, err
		}
		return &NegativeNode{Operand: operand}, nil

	case numberToken:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return NumberNode(tok.value), nil

	case leftParenToken:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.generate(defaultPrecedence)
		if err != nil {
			return nil, err
		}
		if err := p.expectRightParen(); err != nil {
			return nil, err
		}
		return expr, nil

	case endOfInputToken:
		return nil, p.createSyntaxError(ErrUnexpectedEndOfInput, tok)

	default:
		return nil, p.createSyntaxError(ErrUnexpectedToken, tok)
	}
}

func (p *parser) expectRightParen() error {
	if p.current.kind != rightParenToken {
		return p.createSyntaxError(ErrUnbalancedParenthesis, p.current)
	}
	if p.config.debug {
		log.Println("close paren token: ", p.current)
	}
	return p.advance()
}

func (p *parser) convertTokenToNode(left Node) (Node, error) {
	tok := p.current
	op, ok := infixOperatorMap[tok.kind]
	if !ok {
		return nil, p.createSyntaxError(ErrUnexpectedToken, tok)
	}

	prec := tok.precedence()
	if op == OperatorCaret && p.config.rightAssocExponent {
		// one level lower so that a following "^" is taken by the recursion
		prec--
	}

	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.generate(prec)
	if err != nil {
		return nil, err
	}

	return &BinaryNode{
		Operator: op,
		Left:     left,
		Right:    right,
	}, nil
}
