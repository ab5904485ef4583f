package expression

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/arithmetic-evaluator/internal/types"
)

func tok(kind tokenKind, begins, ends int) token {
	return token{rangeToken: rangeToken{beginsPos: begins, endsPos: ends}, kind: kind}
}

func num(v float64, begins, ends int) token {
	return token{rangeToken: rangeToken{beginsPos: begins, endsPos: ends}, kind: numberToken, value: v}
}

func TestLexer(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		source   string
		expected []token
	}{
		{
			source:   "",
			expected: []token{tok(endOfInputToken, 0, 0)},
		},
		{
			source:   "3.14",
			expected: []token{num(3.14, 0, 4), tok(endOfInputToken, 4, 4)},
		},
		{
			source:   "1.",
			expected: []token{num(1, 0, 2), tok(endOfInputToken, 2, 2)},
		},
		{
			source: "2+3*4-5/2",
			expected: []token{
				num(2, 0, 1), tok(addToken, 1, 2), num(3, 2, 3), tok(multiplyToken, 3, 4),
				num(4, 4, 5), tok(subtractToken, 5, 6), num(5, 6, 7), tok(divideToken, 7, 8),
				num(2, 8, 9), tok(endOfInputToken, 9, 9),
			},
		},
		{
			source: "(6|2)&1^2",
			expected: []token{
				tok(leftParenToken, 0, 1), num(6, 1, 2), tok(orToken, 2, 3), num(2, 3, 4),
				tok(rightParenToken, 4, 5), tok(andToken, 5, 6), num(1, 6, 7), tok(caretToken, 7, 8),
				num(2, 8, 9), tok(endOfInputToken, 9, 9),
			},
		},
		{
			source: "   4 \t+\n 6 ",
			expected: []token{
				num(4, 3, 4), tok(addToken, 6, 7), num(6, 9, 10), tok(endOfInputToken, 11, 11),
			},
		},
	} {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			lex := newLexer(tt.source)
			var actual []token
			for {
				tok, err := lex.consume()
				if err != nil {
					t.Fatal(err)
				}
				actual = append(actual, tok)
				if tok.kind == endOfInputToken {
					break
				}
			}

			if diff := cmp.Diff(tt.expected, actual, cmp.AllowUnexported(token{}, rangeToken{})); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenPrecedence(t *testing.T) {
	t.Parallel()

	levels := []precedenceLevel{
		defaultPrecedence,
		bitwisePrecedence,
		addSubPrecedence,
		mulDivPrecedence,
		exponentPrecedence,
		negativePrecedence,
	}
	for i := 1; i < len(levels); i++ {
		if levels[i-1] >= levels[i] {
			t.Errorf("expect level %d to bind tighter than level %d", i, i-1)
		}
	}

	for kind, expected := range map[tokenKind]precedenceLevel{
		andToken:        bitwisePrecedence,
		orToken:         bitwisePrecedence,
		addToken:        addSubPrecedence,
		subtractToken:   addSubPrecedence,
		multiplyToken:   mulDivPrecedence,
		divideToken:     mulDivPrecedence,
		caretToken:      exponentPrecedence,
		leftParenToken:  defaultPrecedence,
		rightParenToken: defaultPrecedence,
		numberToken:     defaultPrecedence,
		endOfInputToken: defaultPrecedence,
	} {
		if got := tok(kind, 0, 0).precedence(); got != expected {
			t.Errorf("%d: expect precedence %d but got %d", kind, expected, got)
		}
	}
}

func TestLexerKeepsReturningEndOfInput(t *testing.T) {
	t.Parallel()

	lex := newLexer("1")
	if _, err := lex.consume(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		tok, err := lex.consume()
		if err != nil {
			t.Fatal(err)
		}
		if tok.kind != endOfInputToken {
			t.Fatalf("expect end of input but got %s", tok)
		}
	}
}

func TestLexerErrors(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		source   string
		valid    int
		expected error
		position int
	}{
		{source: "2+3$4", valid: 3, expected: ErrInvalidCharacter, position: 4},
		{source: "x", valid: 0, expected: ErrInvalidCharacter, position: 1},
		{source: "1+π", valid: 2, expected: ErrInvalidCharacter, position: 3},
		{source: "1.2.3", valid: 0, expected: ErrMalformedNumber, position: 1},
		{source: "7*1..", valid: 2, expected: ErrMalformedNumber, position: 3},
	} {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			lex := newLexer(tt.source)
			for i := 0; i < tt.valid; i++ {
				if _, err := lex.consume(); err != nil {
					t.Fatalf("token %d: %v", i, err)
				}
			}

			_, err := lex.consume()
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expect %v but got %v", tt.expected, err)
			}
			if !types.HasTag(err, types.LexicalErrorTag) {
				t.Errorf("expect lexical error but got %v", err)
			}

			var e *types.Error
			if !errors.As(err, &e) {
				t.Fatalf("expect *types.Error but got %T", err)
			}
			if got := e.Extra["position"]; got != tt.position {
				t.Errorf("expect position %d but got %v", tt.position, got)
			}
		})
	}
}

func TestLexerHugeNumber(t *testing.T) {
	t.Parallel()

	source := "1"
	for i := 0; i < 400; i++ {
		source += "0"
	}

	tok, err := newLexer(source).consume()
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(tok.value, 1) {
		t.Errorf("expect +Inf but got %v", tok.value)
	}
}
