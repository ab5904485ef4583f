package expression

// ParseOption changes how ParseExpr builds a tree.
type ParseOption interface {
	apply(*parseConfig)
}

type parseConfig struct {
	debug bool
	// strict rejects tokens left over after a complete expression.
	strict bool
	// rightAssocExponent groups a^b^c as a^(b^c).
	rightAssocExponent bool
}

type parseOptionFunc func(*parseConfig)

func (f parseOptionFunc) apply(c *parseConfig) {
	f(c)
}

// WithDebugOutput logs every parsing decision and dumps the resulting tree.
func WithDebugOutput() ParseOption {
	return parseOptionFunc(func(c *parseConfig) {
		c.debug = true
	})
}

// Strict makes ParseExpr fail with ErrTrailingToken when the input continues
// after a complete expression, as in "(2+3))" or "2(3)". Without it the rest
// of the input is ignored.
func Strict() ParseOption {
	return parseOptionFunc(func(c *parseConfig) {
		c.strict = true
	})
}

// RightAssociativeExponent makes "^" group from the right, so "2^3^2" is
// 2^(3^2) = 512 rather than the default (2^3)^2 = 64.
func RightAssociativeExponent() ParseOption {
	return parseOptionFunc(func(c *parseConfig) {
		c.rightAssocExponent = true
	})
}

func newParseConfig(opts []ParseOption) parseConfig {
	c := parseConfig{debug: parserDebugLog}
	for _, opt := range opts {
		opt.apply(&c)
	}
	return c
}
