package heed

import (
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// closeSignal is the manual-reset signal spec.md's PrepareForClosing
// returns: it fires exactly once, when the last reference to an
// environment drops and its teardown completes.
type closeSignal struct {
	ch chan struct{}
}

func newCloseSignal() *closeSignal { return &closeSignal{ch: make(chan struct{})} }

// Wait blocks until the environment this signal belongs to has finished
// closing.
func (s *closeSignal) Wait() { <-s.ch }

// Done reports whether the signal has already fired, without blocking.
func (s *closeSignal) Done() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

func (s *closeSignal) fire() { close(s.ch) }

// registryEntry is one canonical-path slot. closing is set true once
// PrepareForClosing has been called; a true value rejects new Open
// callers with ErrDatabaseClosing rather than handing out a reference
// to an environment mid-teardown (spec.md §5 resource discipline).
type registryEntry struct {
	env     *Env
	options Options
	refs    int
	closing bool
	signal  *closeSignal
}

// registry enforces spec.md §3 invariant 1: no two live environment
// instances share a canonical path. Opens on the same path coalesce via
// singleflight so concurrent first-opens of a cold path don't race each
// other into creating two mdbx.Env handles.
type registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	group   singleflight.Group
}

var globalRegistry = &registry{entries: make(map[string]*registryEntry)}

// acquire returns a live *Env for path+opts, opening a new one via open
// if none exists yet. Concurrent acquires for the same cold path share
// one physical open through singleflight; each caller still gets its
// own refcount bump applied under the registry mutex once the shared
// open resolves.
func (r *registry) acquire(path string, opts Options, open func(canon string, opts Options) (*Env, error)) (*Env, error) {
	canon, err := filepath.Abs(path)
	if err != nil {
		return nil, wrapErr(CodeIO, "resolve environment path", err)
	}

	r.mu.Lock()
	if e, ok := r.entries[canon]; ok {
		if e.closing {
			r.mu.Unlock()
			return nil, ErrDatabaseClosing
		}
		if !e.options.equivalent(opts) {
			r.mu.Unlock()
			return nil, ErrEnvAlreadyOpened
		}
		e.refs++
		r.mu.Unlock()
		return e.env, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(canon, func() (interface{}, error) {
		env, err := open(canon, opts)
		if err != nil {
			return nil, err
		}
		return env, nil
	})
	if err != nil {
		return nil, err
	}
	env := v.(*Env)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[canon]; ok {
		// Another goroutine's open beat the singleflight cache
		// population; close the redundant handle and reuse.
		if e.env != env {
			_ = env.closeEngine()
		}
		e.refs++
		return e.env, nil
	}
	r.entries[canon] = &registryEntry{env: env, options: opts, refs: 1}
	return env, nil
}

// release drops one reference to the environment at canon. When the
// count reaches zero the engine handle is closed, the registry entry is
// removed, and its close signal fires.
func (r *registry) release(canon string) error {
	r.mu.Lock()
	e, ok := r.entries[canon]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return nil
	}
	delete(r.entries, canon)
	r.mu.Unlock()

	err := e.env.closeEngine()
	if e.signal != nil {
		e.signal.fire()
	}
	return err
}

// prepareForClosing marks canon's entry as closing and returns its
// signal, creating one if this is the first call (spec.md §4.2).
func (r *registry) prepareForClosing(canon string) *closeSignal {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[canon]
	if !ok {
		s := newCloseSignal()
		s.fire()
		return s
	}
	e.closing = true
	if e.signal == nil {
		e.signal = newCloseSignal()
	}
	return e.signal
}
