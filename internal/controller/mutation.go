package controller

import (
	"context"

	"github.com/five82/extman/internal/gateway"
)

// Phase is where a mutation is in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseOptimistic
	PhaseConfirmed
	PhaseRolledBack
)

func (p Phase) String() string {
	switch p {
	case PhaseOptimistic:
		return "optimistic"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseRolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

// Kind names the intent behind a mutation.
type Kind int

const (
	KindToggle Kind = iota
	KindRemove
)

func (k Kind) String() string {
	if k == KindRemove {
		return "remove"
	}
	return "toggle"
}

// Outcome reports how a mutation finished.
type Outcome struct {
	MutationID string
	Kind       Kind
	ID         gateway.ID
	Desired    bool // toggles only
	Phase      Phase
	Err        error
	// Deferred is set on a failure whose rollback passed to a newer
	// mutation on the same id. The store keeps showing that newer change
	// until it resolves.
	Deferred bool
}

// Failed reports whether the mutation was rolled back.
func (o Outcome) Failed() bool {
	return o.Phase == PhaseRolledBack
}

// Mutation is one user intent: a forward change already applied to the
// store, the remote call that confirms it, and the inverse that runs only
// if that call fails.
type Mutation struct {
	id      string
	kind    Kind
	target  gateway.ID
	desired bool

	send func(ctx context.Context) error
	undo func()
	// inherited holds the rollback of a failed predecessor on the same id.
	// It runs after undo if this mutation also fails and is dropped if it
	// succeeds.
	inherited func()

	// Guarded by Controller.mu.
	phase    Phase
	deferred bool

	done chan struct{}
	err  error
}

// ID returns the mutation's unique id.
func (m *Mutation) ID() string { return m.id }

// Done is closed once the mutation is confirmed or rolled back and its
// Outcome has been delivered to Notify.
func (m *Mutation) Done() <-chan struct{} { return m.done }

// Err returns the remote failure after Done is closed; nil on success.
func (m *Mutation) Err() error {
	select {
	case <-m.done:
		return m.err
	default:
		return nil
	}
}

// Wait blocks until the mutation resolves or ctx ends.
func (m *Mutation) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return m.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mutation) rollback() {
	m.undo()
	if m.inherited != nil {
		m.inherited()
	}
}

func (m *Mutation) outcome() Outcome {
	return Outcome{
		MutationID: m.id,
		Kind:       m.kind,
		ID:         m.target,
		Desired:    m.desired,
		Phase:      m.phase,
		Err:        m.err,
		Deferred:   m.deferred,
	}
}
