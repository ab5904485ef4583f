package expression

import (
	"fmt"
	"math"
)

// Evaluate reduces a tree to a number bottom-up. The first failure aborts the
// whole evaluation.
func Evaluate(n Node) (float64, error) {
	switch n := n.(type) {
	case NumberNode:
		return float64(n), nil

	case *NegativeNode:
		v, err := Evaluate(n.Operand)
		if err != nil {
			return 0, err
		}
		return -v, nil

	case *BinaryNode:
		if n.Operator == OperatorDivide {
			return evaluateDivide(n)
		}

		left, err := Evaluate(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := Evaluate(n.Right)
		if err != nil {
			return 0, err
		}

		switch n.Operator {
		case OperatorAdd:
			return left + right, nil
		case OperatorSubtract:
			return left - right, nil
		case OperatorMultiply:
			return left * right, nil
		case OperatorCaret:
			return math.Pow(left, right), nil
		case OperatorAnd:
			return float64(truncateToInt64(left) & truncateToInt64(right)), nil
		case OperatorOr:
			return float64(truncateToInt64(left) | truncateToInt64(right)), nil
		default:
			panic(fmt.Sprintf("should not reach here: unknown operator %v", n.Operator))
		}

	default:
		panic(fmt.Sprintf("should not reach here: unknown node %T", n))
	}
}

// evaluateDivide checks the divisor before touching the dividend.
func evaluateDivide(n *BinaryNode) (float64, error) {
	divisor, err := Evaluate(n.Right)
	if err != nil {
		return 0, err
	}
	if divisor == 0 {
		return 0, newEvaluationError(fmt.Errorf("%w: %s", ErrDivisionByZero, n))
	}

	dividend, err := Evaluate(n.Left)
	if err != nil {
		return 0, err
	}
	return dividend / divisor, nil
}

// truncateToInt64 drops the fractional part and saturates at the int64
// bounds. NaN becomes 0.
func truncateToInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}
