// Package hfsm is a hierarchical, event-driven state machine built from a
// declarative table. Composite states own a nested machine that is entered at
// its initial state; events are offered to the innermost active machine first.
package hfsm

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
)

type Event string

// Update is dispatched once per tick after every other event. It runs the
// innermost active state's OnUpdate and never causes a transition.
const Update Event = "update"

var (
	ErrNoStates       = errors.New("hfsm: machine has no states")
	ErrUnknownState   = errors.New("hfsm: unknown state")
	ErrDuplicateState = errors.New("hfsm: duplicate state")
	ErrReservedEvent  = errors.New("hfsm: update cannot trigger a transition")
)

// StateDef declares one state. Sub turns it into a composite.
type StateDef[B any] struct {
	Name     string
	OnEnter  func(bb B)
	OnUpdate func(bb B)
	OnExit   func(bb B)
	Sub      *Def[B]
}

// Def declares a machine: its states, which one is initial (the first state
// when empty), and Transitions[source][event] = destination between siblings.
type Def[B any] struct {
	Name        string
	Initial     string
	States      []StateDef[B]
	Transitions map[string]map[Event]string
}

// Hooks observe every state entry and exit at every level.
type Hooks[B any] struct {
	OnEnter func(state string, bb B)
	OnExit  func(state string, bb B)
}

type Option[B any] func(*Machine[B])

func WithHooks[B any](h Hooks[B]) Option[B] {
	return func(m *Machine[B]) {
		m.hooks = h
	}
}

func WithLogger[B any](l *slog.Logger) Option[B] {
	return func(m *Machine[B]) {
		if l != nil {
			m.logger = l
		}
	}
}

type state[B any] struct {
	def   StateDef[B]
	sub   *level[B]
	trans map[Event]*state[B]
}

type level[B any] struct {
	name    string
	initial *state[B]
	active  *state[B]
}

// Machine is immutable in shape once built; only the active pointers move.
type Machine[B any] struct {
	root   *level[B]
	hooks  Hooks[B]
	logger *slog.Logger
}

func New[B any](def Def[B], opts ...Option[B]) (*Machine[B], error) {
	root, err := build(def)
	if err != nil {
		return nil, err
	}
	m := &Machine[B]{root: root, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func MustNew[B any](def Def[B], opts ...Option[B]) *Machine[B] {
	m, err := New(def, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func build[B any](def Def[B]) (*level[B], error) {
	if len(def.States) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoStates, def.Name)
	}
	lv := &level[B]{name: def.Name}
	byName := make(map[string]*state[B], len(def.States))
	for _, sd := range def.States {
		if _, dup := byName[sd.Name]; dup {
			return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateState, sd.Name, def.Name)
		}
		s := &state[B]{def: sd, trans: make(map[Event]*state[B])}
		if sd.Sub != nil {
			sub, err := build(*sd.Sub)
			if err != nil {
				return nil, fmt.Errorf("state %q: %w", sd.Name, err)
			}
			s.sub = sub
		}
		byName[sd.Name] = s
	}

	lv.initial = byName[def.States[0].Name]
	if def.Initial != "" {
		first, ok := byName[def.Initial]
		if !ok {
			return nil, fmt.Errorf("%w: initial %q in %q", ErrUnknownState, def.Initial, def.Name)
		}
		lv.initial = first
	}

	for from, evs := range def.Transitions {
		src, ok := byName[from]
		if !ok {
			return nil, fmt.Errorf("%w: transition source %q in %q", ErrUnknownState, from, def.Name)
		}
		for ev, to := range evs {
			if ev == Update {
				return nil, fmt.Errorf("%w: %q -> %q", ErrReservedEvent, from, to)
			}
			dst, ok := byName[to]
			if !ok {
				return nil, fmt.Errorf("%w: transition target %q in %q", ErrUnknownState, to, def.Name)
			}
			src.trans[ev] = dst
		}
	}
	return lv, nil
}

// Start enters the initial state chain. It does nothing on a started machine.
func (m *Machine[B]) Start(bb B) {
	if m.root.active == nil {
		m.enter(bb, m.root, m.root.initial)
	}
}

// Stop exits every active state, innermost first.
func (m *Machine[B]) Stop(bb B) {
	m.exit(bb, m.root)
}

func (m *Machine[B]) Started() bool { return m.root.active != nil }

// Dispatch offers ev to the active chain, innermost machine first, and takes
// the first matching transition. An unmatched event is a no-op and reports
// false. A machine that was never started is started first.
func (m *Machine[B]) Dispatch(bb B, ev Event) bool {
	m.Start(bb)
	chain := m.chain()
	if ev == Update {
		if fn := chain[len(chain)-1].active.def.OnUpdate; fn != nil {
			fn(bb)
		}
		return true
	}
	for i := len(chain) - 1; i >= 0; i-- {
		lv := chain[i]
		dst, ok := lv.active.trans[ev]
		if !ok {
			continue
		}
		m.logger.Debug("state transition", "machine", lv.name, "from", lv.active.def.Name, "to", dst.def.Name, "event", ev)
		m.exit(bb, lv)
		m.enter(bb, lv, dst)
		return true
	}
	return false
}

// chain lists the active levels from the root down to the innermost one.
func (m *Machine[B]) chain() []*level[B] {
	var out []*level[B]
	for lv := m.root; lv != nil && lv.active != nil; lv = lv.active.sub {
		out = append(out, lv)
	}
	return out
}

func (m *Machine[B]) enter(bb B, lv *level[B], s *state[B]) {
	lv.active = s
	if s.def.OnEnter != nil {
		s.def.OnEnter(bb)
	}
	if m.hooks.OnEnter != nil {
		m.hooks.OnEnter(s.def.Name, bb)
	}
	if s.sub != nil {
		m.enter(bb, s.sub, s.sub.initial)
	}
}

func (m *Machine[B]) exit(bb B, lv *level[B]) {
	s := lv.active
	if s == nil {
		return
	}
	if s.sub != nil {
		m.exit(bb, s.sub)
	}
	if s.def.OnExit != nil {
		s.def.OnExit(bb)
	}
	if m.hooks.OnExit != nil {
		m.hooks.OnExit(s.def.Name, bb)
	}
	lv.active = nil
}

// Path names the active states from the outermost to the innermost.
func (m *Machine[B]) Path() []string {
	chain := m.chain()
	out := make([]string, len(chain))
	for i, lv := range chain {
		out[i] = lv.active.def.Name
	}
	return out
}

// ActiveLeaf is the innermost active state, or "" before Start.
func (m *Machine[B]) ActiveLeaf() string {
	p := m.Path()
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// In reports whether name is anywhere on the active path.
func (m *Machine[B]) In(name string) bool {
	return slices.Contains(m.Path(), name)
}
