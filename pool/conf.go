package pool

import "log/slog"

// Option is a functional option for configuring a Pool.
type Option func(*config)

type config struct {
	name         string
	poolID       string
	logger       *slog.Logger
	observers    multiObserver
	panicHandler func(*TaskPanicError)
	lockOSThread bool
	cpuAffinity  bool
}

// WithName sets a human readable pool name. It is attached to every log
// record as the "pool_name" attribute.
func WithName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithLogger sets the structured logger used for lifecycle records.
// Lifecycle transitions are logged at debug level and task panics at error
// level. If not specified, records are discarded (unless built with -tags debug).
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithObserver registers observers that receive every lifecycle Event.
// It may be given several times; observers are called in registration order.
//
// Example:
//
//	p, _ := pool.New(4, pool.WithObserver(pool.ObserverFunc(func(e pool.Event) {
//	    if e.Kind == pool.EventTaskPanicked {
//	        alert(e.Err)
//	    }
//	})))
func WithObserver(observers ...Observer) Option {
	return func(cfg *config) {
		for _, o := range observers {
			if o != nil {
				cfg.observers = append(cfg.observers, o)
			}
		}
	}
}

// WithPanicHandler sets a function called on the worker goroutine whenever a
// task panics. The worker keeps running after the handler returns. A handler
// that panics itself is not recovered.
func WithPanicHandler(handler func(*TaskPanicError)) Option {
	return func(cfg *config) {
		if handler != nil {
			cfg.panicHandler = handler
		}
	}
}

// WithLockOSThread controls whether each worker goroutine is wired to its own
// OS thread for its whole lifetime. Enabled by default.
func WithLockOSThread(enabled bool) Option {
	return func(cfg *config) {
		cfg.lockOSThread = enabled
	}
}

// WithCPUAffinity pins worker i to logical CPU i modulo the CPU count, where
// the platform supports it. It implies WithLockOSThread(true). Pinning
// failures are logged and the worker continues unpinned.
func WithCPUAffinity(enabled bool) Option {
	return func(cfg *config) {
		cfg.cpuAffinity = enabled
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		logger:       defaultLogger(),
		lockOSThread: true,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.cpuAffinity {
		cfg.lockOSThread = true
	}

	return cfg
}
