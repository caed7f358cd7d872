package hh

// Option represents a configurable parameter of an Allocator.
type Option func(*options) error

type options struct {
	// tracer traces seat selections for debugging purposes.
	tracer Tracer
}

func newOptions(o ...Option) (*options, error) {
	opts := &options{}
	for _, apply := range o {
		if err := apply(opts); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

// WithTracer sets the Tracer for this allocator, which receives diagnostic
// logs about every seat selection. Defaults to no tracer if unspecified.
func WithTracer(t Tracer) Option {
	return func(o *options) error {
		o.tracer = t
		return nil
	}
}
