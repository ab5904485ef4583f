// Package batch evaluates many independent expressions concurrently.
package batch

import (
	"context"
	"strconv"

	"github.com/karupanerura/arithmetic-evaluator/internal/expression"
	"github.com/karupanerura/arithmetic-evaluator/internal/types"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Parallelism limits the number of expressions evaluated at once.
	// Zero or less means no limit.
	Parallelism  int
	ParseOptions []expression.ParseOption
}

type Result struct {
	Name       string  `json:"name"`
	Expression string  `json:"expression"`
	Result     *string `json:"result,omitempty"`
	Error      any     `json:"error,omitempty"`

	Value float64 `json:"-"`
	Err   error   `json:"-"`
}

func (r *Result) Succeeded() bool {
	return r.Err == nil
}

// Run evaluates every entry and returns the results in the order of entries.
// A failing entry never affects the others. Entries not yet started when ctx
// is done fail with the context error, which Run also returns.
func Run(ctx context.Context, entries []Entry, opts Options) ([]Result, error) {
	results := make([]Result, len(entries))

	eg, egCtx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		eg.SetLimit(opts.Parallelism)
	}
	for i, entry := range entries {
		i := i
		entry := entry
		eg.Go(func() error {
			results[i] = evaluate(egCtx, entry, opts.ParseOptions)
			return nil
		})
	}
	_ = eg.Wait() // goroutines never fail

	return results, ctx.Err()
}

func evaluate(ctx context.Context, entry Entry, opts []expression.ParseOption) Result {
	result := Result{
		Name:       entry.Name,
		Expression: entry.Expression,
	}
	if err := ctx.Err(); err != nil {
		result.Err = err
		result.Error = types.NewExceptionByError(err).Exception()
		return result
	}

	v, err := expression.EvaluateString(entry.Expression, opts...)
	if err != nil {
		result.Err = err
		result.Error = types.NewExceptionByError(err).Exception()
		return result
	}

	result.Value = v
	result.Result = lo.ToPtr(strconv.FormatFloat(v, 'f', -1, 64))
	return result
}

type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func Summarize(results []Result) Summary {
	succeeded := len(lo.Filter(results, func(r Result, _ int) bool {
		return r.Succeeded()
	}))
	return Summary{
		Total:     len(results),
		Succeeded: succeeded,
		Failed:    len(results) - succeeded,
	}
}
