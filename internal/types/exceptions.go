package types

import (
	"errors"
	"strings"

	"github.com/samber/lo"
)

type ErrorTag string

const (
	LexicalErrorTag    ErrorTag = "LexicalError"
	SyntaxErrorTag     ErrorTag = "SyntaxError"
	EvaluationErrorTag ErrorTag = "EvaluationError"
)

// Exception is an error that can be reported to users as a JSON-able value.
type Exception interface {
	error
	Exception() any
}

type Error struct {
	Tag   ErrorTag
	Err   error
	Extra map[string]any
}

var _ Exception = (*Error)(nil)

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Tag)
	}

	var b strings.Builder
	b.WriteString(string(e.Tag))
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Exception() any {
	tags := []any{e.Tag}
	for err := e.Err; err != nil; err = errors.Unwrap(err) {
		if e, ok := err.(*Error); ok {
			tags = append(tags, e.Tag)
		}
	}

	o := map[string]any{
		"tags": tags,
	}
	if e.Err != nil {
		o["message"] = e.Err.Error()
	}
	if len(e.Extra) != 0 {
		o = lo.Assign(o, e.Extra)
	}
	return o
}

// HasTag reports whether any *Error in err's chain is tagged with tag.
func HasTag(err error, tag ErrorTag) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Tag == tag {
			return true
		}
		err = e.Err
	}
	return false
}

// NewExceptionByError wraps an arbitrary error so that it can be reported
// like an Exception.
func NewExceptionByError(err error) Exception {
	var exception Exception
	if errors.As(err, &exception) {
		return exception
	}
	return stringException(err.Error())
}

type stringException string

func (s stringException) Error() string {
	return string(s)
}

func (s stringException) Exception() any {
	return string(s)
}
