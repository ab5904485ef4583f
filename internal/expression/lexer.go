package expression

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

type lexer struct {
	source string
	index  int
}

func newLexer(source string) *lexer {
	return &lexer{
		source: source,
		index:  0,
	}
}

// consume returns the next token. Once the source is exhausted it keeps
// returning an end of input token on every call.
func (l *lexer) consume() (token, error) {
	for l.index != len(l.source) {
		switch c := l.source[l.index]; c {
		case ' ', '\t', '\n':
			l.index++ // just skip white spaces
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return l.consumeNumber()
		default:
			if kind, ok := punctuationTokenMap[c]; ok {
				l.index++
				return token{rangeToken: rangeToken{beginsPos: l.index - 1, endsPos: l.index}, kind: kind}, nil
			}

			r, size := utf8.DecodeRuneInString(l.source[l.index:])
			pos := l.index
			l.index += size
			return token{}, newLexicalError(pos, fmt.Errorf("%w %q", ErrInvalidCharacter, r))
		}
	}

	return token{rangeToken: rangeToken{beginsPos: l.index, endsPos: l.index}, kind: endOfInputToken}, nil
}

// consumeNumber reads digits and dots greedily. Extra dots are not rejected
// here; the literal just fails to parse as a float.
func (l *lexer) consumeNumber() (token, error) {
	beginsPos := l.index
	for l.index != len(l.source) {
		if c := l.source[l.index]; ('0' <= c && c <= '9') || c == '.' {
			l.index++
			continue
		}
		break
	}

	literal := l.source[beginsPos:l.index]
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) { // too many digits still yields ±Inf
		return token{}, newLexicalError(beginsPos, fmt.Errorf("%w %q", ErrMalformedNumber, literal))
	}

	return token{rangeToken: rangeToken{beginsPos: beginsPos, endsPos: l.index}, kind: numberToken, value: v}, nil
}
