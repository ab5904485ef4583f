package expression

import (
	"errors"
	"fmt"

	"github.com/karupanerura/arithmetic-evaluator/internal/types"
)

var (
	ErrInvalidCharacter = errors.New("invalid character")
	ErrMalformedNumber  = errors.New("malformed number")

	ErrUnexpectedToken       = errors.New("unexpected token")
	ErrUnbalancedParenthesis = errors.New("unbalanced parenthesis")
	ErrUnexpectedEndOfInput  = errors.New("unexpected end of input")
	ErrTrailingToken         = errors.New("trailing token")

	ErrDivisionByZero = errors.New("division by zero")
)

func newLexicalError(pos int, err error) error {
	return &types.Error{
		Tag:   types.LexicalErrorTag,
		Err:   fmt.Errorf("%w at %d", err, pos+1),
		Extra: map[string]any{"position": pos + 1},
	}
}

func (p *parser) createSyntaxError(err error, t token) error {
	return &types.Error{
		Tag:   types.SyntaxErrorTag,
		Err:   fmt.Errorf("%w: %s at %d: expr=%q", err, t, t.BeginsPos()+1, p.source),
		Extra: map[string]any{"position": t.BeginsPos() + 1},
	}
}

func newEvaluationError(err error) error {
	return &types.Error{
		Tag: types.EvaluationErrorTag,
		Err: err,
	}
}
