package handex

import "time"

// defaultLockTimeout bounds how long a non-Context operation (Add, Find,
// Contains, Get) will wait for a row or storage lock before surfacing
// ErrLockTimeout. The *Context variants use the caller's context as given.
const defaultLockTimeout = 2 * time.Second

// config collects the options applied by New{Wide,Short}.
type config struct {
	bitWidth    int
	logger      *Logger
	lockTimeout time.Duration
}

// Option configures a store at construction time.
type Option func(*config)

// WithBitWidth sets the initial bit width. It is clamped into the variant's
// valid range ([8,31] for Wide, [9,24] for Short).
func WithBitWidth(n int) Option {
	return func(c *config) { c.bitWidth = n }
}

// WithLogger installs a Logger that receives enlargement, lock-timeout, and
// out-of-capacity events. The default is NoopLogger.
func WithLogger(l *Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLockTimeout sets the deadline applied to the non-Context operation
// variants (Add, Find, Contains, Get) when they construct an internal
// context.Background()-derived deadline. It has no effect on the
// *Context variants, which use the caller's own context.
func WithLockTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.lockTimeout = d
		}
	}
}

func newConfig(vr variant, opts []Option) config {
	c := config{
		bitWidth:    vr.defaultBitWidth,
		logger:      NoopLogger(),
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(&c)
	}
	c.bitWidth = vr.clampBitWidth(c.bitWidth)
	return c
}
