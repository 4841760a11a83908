package client

import "sync"

// Defaults holds the baseline options merged into every request.
//
// Set replaces the baseline wholesale; Get hands out a copy, so callers can
// never mutate the stored baseline through a returned map.
type Defaults struct {
	mu   sync.RWMutex
	opts Options
}

// NewDefaults creates a registry seeded with opts.
func NewDefaults(opts Options) *Defaults {
	d := &Defaults{}
	d.Set(opts)
	return d
}

// Set replaces the baseline. Last writer wins.
func (d *Defaults) Set(opts Options) {
	if opts == nil {
		opts = Options{}
	}
	cp := opts.Clone()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.opts = cp
}

// Get returns a copy of the current baseline.
func (d *Defaults) Get() Options {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.opts == nil {
		return Options{}
	}
	return d.opts.Clone()
}

// BaselineOptions is the initial process-wide baseline: resolve hosts over IPv4.
func BaselineOptions() Options {
	return Options{
		KeyTransport: Options{
			KeyIPResolve: IPResolveV4,
		},
	}
}

var (
	shared     *Defaults
	sharedOnce sync.Once
)

// SharedDefaults returns the process-wide registry used by executors that were
// not given their own. It is created on first use with BaselineOptions.
//
// Configure it once during start-up, before request traffic begins.
func SharedDefaults() *Defaults {
	sharedOnce.Do(func() {
		shared = NewDefaults(BaselineOptions())
	})
	return shared
}

// SetDefaultOptions replaces the process-wide baseline.
func SetDefaultOptions(opts Options) {
	SharedDefaults().Set(opts)
}

// DefaultOptions returns a copy of the process-wide baseline.
func DefaultOptions() Options {
	return SharedDefaults().Get()
}
