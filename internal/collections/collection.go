// Package collections holds the dashboard's client-side caches. Each
// collection lists one entity kind through the API, checks the policy before
// every change and reloads itself after every successful change.
package collections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/rbac"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusErrored:
		return "errored"
	}
	return "unknown"
}

var (
	ErrSubmissionInFlight = errors.New("another change is still being saved")
	ErrNotConfirmed       = errors.New("not confirmed")
)

// Identity yields the principal every policy check runs against.
type Identity interface {
	CurrentPrincipal() (rbac.Principal, bool)
}

// Confirmer asks the user a yes/no question before destructive changes.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm answers yes to every prompt.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })

// Collection is the shared state machine behind every entity collection.
type Collection[T any] struct {
	mu         sync.Mutex
	kind       rbac.Kind
	key        func(T) string
	fetch      func(ctx context.Context) ([]T, error)
	identity   Identity
	items      []T
	status     Status
	err        error
	notice     string
	generation uint64
	detached   bool
	submitting bool
}

func newCollection[T any](kind rbac.Kind, identity Identity, key func(T) string, fetch func(ctx context.Context) ([]T, error)) *Collection[T] {
	return &Collection[T]{kind: kind, identity: identity, key: key, fetch: fetch}
}

// Items returns a copy of the last successfully loaded items.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Err is the error of the last failed load, if the collection is errored.
func (c *Collection[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Submitting reports whether a change is being saved.
func (c *Collection[T]) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// TakeNotice returns and clears the pending transient notice.
func (c *Collection[T]) TakeNotice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.notice
	c.notice = ""
	return n
}

// Detach stops the collection from accepting any further responses.
func (c *Collection[T]) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
}

// Find returns the cached item with id.
func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if c.key(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Reload fetches the whole list again. Only the newest reload may change
// the collection; older ones finishing later are dropped.
func (c *Collection[T]) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return nil
	}
	c.generation++
	gen := c.generation
	c.status = StatusLoading
	c.mu.Unlock()

	items, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached || gen != c.generation {
		return nil
	}
	if err != nil {
		c.status = StatusErrored
		c.err = err
		return err
	}
	c.items = items
	c.status = StatusReady
	c.err = nil
	return nil
}

// List is Reload followed by Items.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	if err := c.Reload(ctx); err != nil {
		return c.Items(), err
	}
	return c.Items(), nil
}

func (c *Collection[T]) principal() rbac.Principal {
	p, _ := c.identity.CurrentPrincipal()
	return p
}

// authorize checks action on res against the current principal.
func (c *Collection[T]) authorize(ctx context.Context, action rbac.Action, res rbac.Resource) error {
	if rbac.Can(c.principal(), action, res) {
		return nil
	}
	err := perrors.Denied(string(action), string(res.Kind))
	slog.WarnContext(ctx, "Action denied locally", slog.String("action", string(action)), slog.String("kind", string(res.Kind)), slog.String("id", res.ID))
	return err
}

// precheck denies action when the principal's role can never perform it on
// the collection's kind, so no lookup is made for a resource it cannot touch.
func (c *Collection[T]) precheck(ctx context.Context, action rbac.Action) error {
	if rbac.MayEver(c.principal(), c.kind, action) {
		return nil
	}
	slog.WarnContext(ctx, "Action denied locally", slog.String("action", string(action)), slog.String("kind", string(c.kind)))
	return perrors.Denied(string(action), string(c.kind))
}

// listScope derives the listing scope of the collection's kind.
func (c *Collection[T]) listScope(ctx context.Context) (rbac.Scope, error) {
	scope, ok := rbac.ListScope(c.principal(), c.kind)
	if !ok {
		slog.WarnContext(ctx, "Listing denied locally", slog.String("kind", string(c.kind)))
		return rbac.Scope{}, perrors.Denied("list", string(c.kind)+"s")
	}
	return scope, nil
}

func (c *Collection[T]) askConfirm(confirmer Confirmer, prompt string) error {
	if confirmer == nil || !confirmer.Confirm(prompt) {
		return perrors.New(perrors.ErrCodeNotConfirmed, "Cancelled", ErrNotConfirmed)
	}
	return nil
}

// submit runs one remote change. Only one change may be in flight; on
// success the collection reloads, on NotFound it reloads and leaves a notice.
func (c *Collection[T]) submit(ctx context.Context, label string, call func(ctx context.Context) error) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return perrors.New(perrors.ErrCodeSubmissionInFlight, "Please wait for the previous change to finish", ErrSubmissionInFlight)
	}
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	if err := call(ctx); err != nil {
		slog.WarnContext(ctx, label, slog.String("kind", string(c.kind)), slog.Any("error", err))
		if perrors.Is(err, perrors.ErrCodeNotFound) {
			c.mu.Lock()
			c.notice = fmt.Sprintf("That %s no longer exists. The list has been refreshed.", c.kind)
			c.mu.Unlock()
			_ = c.Reload(ctx)
		}
		return err
	}

	if err := c.Reload(ctx); err != nil {
		slog.WarnContext(ctx, "Reload after change failed", slog.String("kind", string(c.kind)), slog.Any("error", err))
	}
	return nil
}
