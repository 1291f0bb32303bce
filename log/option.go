package log

// Option transforms a logger configuration. Options never mutate their
// receiver; they return the modified copy.
type Option func(config) config

// with returns c with each option applied in order.
func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}
