package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/conduit-lang/apidocs/internal/catalog"
	"github.com/conduit-lang/apidocs/internal/fragment"
)

// ErrSuperseded is returned by UpdateWithEntrypointURI when a later call was
// issued before this load resolved. The result of the stale load is dropped.
var ErrSuperseded = errors.New("catalog load superseded by a later request")

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine owns one session's filter state. Every update builds a new State
// and publishes it in a single pointer swap, so State never returns a
// half-applied update.
type Engine struct {
	loader   catalog.Loader
	location fragment.Location
	logger   *zap.Logger

	// mu serializes writers; readers go through current
	mu         sync.Mutex
	current    atomic.Pointer[State]
	loadSerial uint64

	// pending holds the fragment params Init has not applied yet. They stay
	// in the published fragment until their update runs. Guarded by mu.
	pending map[string]string

	subsMu  sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// New creates an engine reading catalogs through loader and mirroring its
// filters into location.
func New(loader catalog.Loader, location fragment.Location, opts ...Option) *Engine {
	e := &Engine{
		loader:   loader,
		location: location,
		logger:   zap.NewNop(),
		subs:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.current.Store(&State{
		AllCommands:      []catalog.Command{},
		AllDomains:       []catalog.Domain{},
		SelectedCommands: []catalog.Command{},
	})
	return e
}

// State returns the current snapshot
func (e *Engine) State() State {
	return *e.current.Load()
}

// Subscribe registers fn to be called with every published snapshot.
// The returned function removes the subscription.
func (e *Engine) Subscribe(fn func(State)) func() {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn

	return func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		delete(e.subs, id)
	}
}

// Init replays the parameters of the location's current fragment. When an
// entry-point URI is present the catalog is loaded first; the element, role
// and query parameters are then applied in that order. If the load fails the
// remaining parameters are still applied to the existing catalog and the
// load error is returned. Parameters not applied yet stay in the fragment
// while the load is in flight.
func (e *Engine) Init(ctx context.Context) error {
	params := fragment.Decode(e.location.Fragment())
	e.logger.Debug("replaying fragment", zap.Any("params", params))

	e.mu.Lock()
	e.pending = make(map[string]string, len(params))
	for _, key := range []string{KeyEntrypointURI, KeySelectedElement, KeySelectedAccessRole, KeyQuery} {
		if value, ok := params[key]; ok {
			e.pending[key] = value
		}
	}
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.pending = nil
		e.mu.Unlock()
	}()

	var loadErr error
	if uri, ok := params[KeyEntrypointURI]; ok {
		loadErr = e.UpdateWithEntrypointURI(ctx, uri)
	}

	if element, ok := params[KeySelectedElement]; ok {
		e.UpdateWithSelectedElement(element)
	}
	if role, ok := params[KeySelectedAccessRole]; ok {
		e.UpdateWithSelectedAccessRole(role)
	}
	if query, ok := params[KeyQuery]; ok {
		e.UpdateWithQuery(query)
	}

	return loadErr
}

// UpdateWithEntrypointURI records uri in the state and the fragment right
// away, then loads the catalog. On success the canonical set is replaced and
// the active filters are re-applied to it. On failure the previous catalog
// stays in place; only the recorded URI has changed.
//
// Loads are numbered; when a newer call has been issued by the time this one
// resolves, its result is discarded and ErrSuperseded is returned.
func (e *Engine) UpdateWithEntrypointURI(ctx context.Context, uri string) error {
	var serial uint64
	e.update(func(s State) State {
		e.loadSerial++
		serial = e.loadSerial
		delete(e.pending, KeyEntrypointURI)
		s.EntrypointURI = uri
		return s
	})

	cat, err := e.loader.Load(ctx, uri)
	if err != nil {
		e.logger.Warn("catalog load failed",
			zap.String("uri", uri),
			zap.Uint64("token", serial),
			zap.Error(err),
		)
		return fmt.Errorf("load catalog %s: %w", uri, err)
	}

	e.mu.Lock()
	if serial != e.loadSerial {
		e.mu.Unlock()
		e.logger.Info("discarding stale catalog load",
			zap.String("uri", uri),
			zap.Uint64("token", serial),
		)
		return ErrSuperseded
	}
	next := *e.current.Load()
	next.AllCommands = cat.Commands
	next.AllDomains = cat.Domains
	next.SelectedCommands = Select(cat.Commands, next.SelectedAccessRole, next.Query)
	e.publishLocked(next)
	e.mu.Unlock()
	e.notify(next)

	e.logger.Debug("catalog applied",
		zap.String("uri", uri),
		zap.Uint64("token", serial),
		zap.Int("commands", len(cat.Commands)),
	)
	return nil
}

// UpdateWithSelectedAccessRole sets the role filter. An empty role clears it.
func (e *Engine) UpdateWithSelectedAccessRole(role string) State {
	return e.update(func(s State) State {
		delete(e.pending, KeySelectedAccessRole)
		s.SelectedAccessRole = role
		s.SelectedCommands = Select(s.AllCommands, role, s.Query)
		return s
	})
}

// UpdateWithQuery sets the text filter. An empty query clears it.
func (e *Engine) UpdateWithQuery(query string) State {
	return e.update(func(s State) State {
		delete(e.pending, KeyQuery)
		s.Query = query
		s.SelectedCommands = Select(s.AllCommands, s.SelectedAccessRole, query)
		return s
	})
}

// UpdateWithSelectedElement records the selected anchor. The visible
// commands are left as they are.
func (e *Engine) UpdateWithSelectedElement(anchor string) State {
	return e.update(func(s State) State {
		delete(e.pending, KeySelectedElement)
		s.SelectedElement = anchor
		return s
	})
}

// refreshSelectedCommands recomputes the visible commands from the current
// catalog and filters.
func (e *Engine) refreshSelectedCommands() State {
	return e.update(func(s State) State {
		s.SelectedCommands = Select(s.AllCommands, s.SelectedAccessRole, s.Query)
		return s
	})
}

// update applies fn to a copy of the current state and publishes the
// result. Subscribers are notified after the lock is released.
func (e *Engine) update(fn func(State) State) State {
	e.mu.Lock()
	next := fn(*e.current.Load())
	e.publishLocked(next)
	e.mu.Unlock()

	e.notify(next)
	return next
}

// publishLocked swaps in next and mirrors it to the fragment, keeping any
// params Init has yet to apply. Callers hold mu.
func (e *Engine) publishLocked(next State) {
	e.current.Store(&next)

	params := next.Params()
	for key, value := range e.pending {
		params[key] = value
	}
	e.location.SetFragment(fragment.Encode(params))
}

func (e *Engine) notify(s State) {
	e.subsMu.Lock()
	subs := make([]func(State), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.subsMu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
