package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/five82/extman/internal/gateway"
	"github.com/five82/extman/internal/state"
)

var (
	// ErrClosed is returned for intents issued after the root context ended.
	ErrClosed = errors.New("controller closed")
	// ErrAlreadyLoaded is returned when Load is called after a successful load.
	ErrAlreadyLoaded = errors.New("extensions already loaded")
)

// Options configure a Controller.
type Options struct {
	Logger zerolog.Logger
	// Notify receives every terminal Outcome. It is called from the
	// goroutine that resolved the mutation, outside any controller lock.
	Notify func(Outcome)
}

// Controller turns user intents into optimistic store changes and remote
// calls, and rolls the store back when a call fails.
type Controller struct {
	ctx    context.Context
	remote gateway.Remote
	store  *state.Store
	logger zerolog.Logger
	notify func(Outcome)

	mu sync.Mutex
	// lanes holds the queued mutations per id; the head is in flight. A key
	// is present exactly while a drain goroutine owns that lane.
	lanes   map[gateway.ID][]*Mutation
	pending int
	// idle is closed when pending drops to zero.
	idle chan struct{}
}

// New builds a Controller. Remote calls run under ctx; once it is cancelled
// new intents fail with ErrClosed and in-flight calls fail and roll back.
func New(ctx context.Context, remote gateway.Remote, store *state.Store, opts Options) (*Controller, error) {
	if remote == nil {
		return nil, fmt.Errorf("controller requires a remote gateway")
	}
	if store == nil {
		return nil, fmt.Errorf("controller requires a store")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Controller{
		ctx:    ctx,
		remote: remote,
		store:  store,
		logger: opts.Logger.With().Str("component", "controller").Logger(),
		notify: opts.Notify,
		lanes:  make(map[gateway.ID][]*Mutation),
	}, nil
}

// Store returns the store the controller mutates.
func (c *Controller) Store() *state.Store {
	return c.store
}

// Load performs the initial fetch. On failure the store is marked failed and
// stays empty so the UI can still render; the error is returned as well.
// Load may be retried after a failure but not after a success.
func (c *Controller) Load(ctx context.Context) error {
	if c.store.Status() == state.Loaded {
		return ErrAlreadyLoaded
	}
	items, err := c.remote.FetchAll(ctx)
	if err != nil {
		c.store.MarkLoadFailed(err)
		c.logger.Warn().Err(err).Msg("initial load failed")
		return fmt.Errorf("load extensions: %w", err)
	}
	dropped := c.store.Load(items)
	for _, id := range dropped {
		c.logger.Warn().Stringer("id", id).Msg("dropped duplicate extension id")
	}
	c.logger.Info().Int("count", len(items)-len(dropped)).Msg("extensions loaded")
	return nil
}

// OnToggle sets id's active flag to desired in the store immediately and
// sends the change to the remote store. If the remote call fails the flag
// reverts to its previous value.
func (c *Controller) OnToggle(id gateway.ID, desired bool) (*Mutation, error) {
	if c.ctx.Err() != nil {
		return nil, ErrClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.newMutation(KindToggle, id)
	m.desired = desired
	prev, err := c.store.SetActive(id, desired)
	if err != nil {
		c.logger.Error().Err(err).Stringer("id", id).Msg("toggle for extension missing from cache")
		return nil, fmt.Errorf("toggle: %w", err)
	}
	m.send = func(ctx context.Context) error {
		ext, err := c.remote.UpdateStatus(ctx, id, desired)
		if err == nil && ext.ID == id && ext.IsActive != desired {
			c.logger.Debug().Stringer("id", id).Bool("remote", ext.IsActive).Msg("store echoed a different status")
		}
		return err
	}
	m.undo = func() {
		if _, err := c.store.SetActive(id, prev); err != nil {
			c.logger.Error().Err(err).Str("mutation", m.id).Msg("toggle rollback found no entity")
		}
	}
	c.enqueue(m)
	return m, nil
}

// OnRemove deletes id from the store immediately and asks the remote store
// to delete it. If the remote call fails the extension is restored.
func (c *Controller) OnRemove(id gateway.ID) (*Mutation, error) {
	if c.ctx.Err() != nil {
		return nil, ErrClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.newMutation(KindRemove, id)
	removed, err := c.store.RemoveByID(id)
	if err != nil {
		c.logger.Error().Err(err).Stringer("id", id).Msg("remove for extension missing from cache")
		return nil, fmt.Errorf("remove: %w", err)
	}
	m.send = func(ctx context.Context) error {
		return c.remote.Remove(ctx, id)
	}
	m.undo = func() {
		c.store.Restore(removed)
	}
	c.enqueue(m)
	return m, nil
}

// OnFilterChange switches the visible subset. It never touches the remote store.
func (c *Controller) OnFilterChange(f state.Filter) {
	c.store.SetFilter(f)
}

// Pending returns the number of mutations not yet resolved.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Busy reports whether id has an unresolved mutation.
func (c *Controller) Busy(id gateway.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lanes[id]) > 0
}

// Wait blocks until every queued mutation has resolved or ctx ends.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == 0 {
		c.mu.Unlock()
		return nil
	}
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) newMutation(kind Kind, id gateway.ID) *Mutation {
	return &Mutation{
		id:     uuid.NewString(),
		kind:   kind,
		target: id,
		phase:  PhaseIdle,
		done:   make(chan struct{}),
	}
}

// enqueue appends m to its lane and starts a drain if the lane was idle.
// Caller holds c.mu and has already applied m's forward change.
func (c *Controller) enqueue(m *Mutation) {
	m.phase = PhaseOptimistic
	if c.pending == 0 {
		c.idle = make(chan struct{})
	}
	c.pending++

	lane, busy := c.lanes[m.target]
	c.lanes[m.target] = append(lane, m)
	c.logger.Debug().
		Str("mutation", m.id).
		Str("kind", m.kind.String()).
		Stringer("id", m.target).
		Int("queued", len(lane)).
		Msg("optimistic change applied")

	if !busy {
		go c.drain(m.target)
	}
}

// drain sends the lane's mutations one at a time until the lane is empty.
func (c *Controller) drain(id gateway.ID) {
	for {
		c.mu.Lock()
		lane := c.lanes[id]
		if len(lane) == 0 {
			delete(c.lanes, id)
			c.mu.Unlock()
			return
		}
		head := lane[0]
		c.mu.Unlock()

		err := head.send(c.ctx)
		c.resolve(id, head, err)
	}
}

// resolve records the head's result and hands a failed rollback to the next
// queued mutation when there is one. m.done closes last, so a caller woken
// by Wait sees the log line, the Notify call and the pending count settled.
func (c *Controller) resolve(id gateway.ID, m *Mutation, err error) {
	c.mu.Lock()
	rest := c.lanes[id][1:]
	c.lanes[id] = rest

	m.err = err
	if err == nil {
		m.phase = PhaseConfirmed
		m.inherited = nil
	} else {
		m.phase = PhaseRolledBack
		if len(rest) > 0 {
			// The successor captured this mutation's optimistic state as its
			// "previous"; it now owns the full rollback.
			rest[0].inherited = m.rollback
			m.deferred = true
		} else {
			m.rollback()
		}
	}
	outcome := m.outcome()
	c.mu.Unlock()

	l := c.logger.With().Str("mutation", m.id).Str("kind", m.kind.String()).Stringer("id", id).Logger()
	switch {
	case err == nil:
		l.Debug().Msg("remote call confirmed")
	case outcome.Deferred:
		l.Warn().Err(err).Msg("remote call failed, rollback deferred to queued change")
	default:
		l.Warn().Err(err).Msg("remote call failed, rolled back")
	}

	if c.notify != nil {
		c.notify(outcome)
	}

	c.mu.Lock()
	c.pending--
	close(m.done)
	if c.pending == 0 {
		close(c.idle)
	}
	c.mu.Unlock()
}
