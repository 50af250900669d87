package bt

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

var (
	ErrNilRoot    = errors.New("bt: nil root")
	ErrSharedNode = errors.New("bt: node has more than one parent")
)

// Tree owns a root node and ticks it once per step.
type Tree[B any] struct {
	root   Node[B]
	hooks  Hooks[B]
	logger *slog.Logger
	last   Status
	ticks  uint64
}

type Option[B any] func(*Tree[B])

// WithHooks registers lifecycle observers on every node in the tree.
func WithHooks[B any](h Hooks[B]) Option[B] {
	return func(t *Tree[B]) {
		t.hooks = h
	}
}

func WithLogger[B any](l *slog.Logger) Option[B] {
	return func(t *Tree[B]) {
		if l != nil {
			t.logger = l
		}
	}
}

// New validates that root is a proper tree (every node reachable once) and
// wires the hooks into it.
func New[B any](root Node[B], opts ...Option[B]) (*Tree[B], error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	t := &Tree[B]{
		root:   root,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		last:   -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	seen := make(map[Node[B]]bool)
	err := walk(root, func(n Node[B]) error {
		if seen[n] {
			return fmt.Errorf("%w: %q", ErrSharedNode, n.Name())
		}
		seen[n] = true
		if h, ok := n.(hookable[B]); ok {
			h.setHooks(&t.hooks)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// MustNew is New for trees assembled from code, where a malformed shape is a bug.
func MustNew[B any](root Node[B], opts ...Option[B]) *Tree[B] {
	t, err := New(root, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func walk[B any](n Node[B], fn func(Node[B]) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.Children() {
		if err := walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree[B]) Tick(bb B) Status {
	st := t.root.Tick(bb)
	t.ticks++
	if st != t.last {
		t.logger.Debug("tree status changed", "root", t.root.Name(), "tick", t.ticks, "status", st)
		t.last = st
	}
	return st
}

// Halt stops whatever is running, e.g. when the blackboard's owner goes away.
func (t *Tree[B]) Halt(bb B) { t.root.Halt(bb) }

func (t *Tree[B]) Root() Node[B] { return t.root }

// Last is the status of the most recent tick.
func (t *Tree[B]) Last() Status { return t.last }
