// Package bt is a small generic behavior tree. A tree is built once and
// ticked once per simulation step against a blackboard of type B; nodes keep
// their own resume state between ticks.
package bt

import "fmt"

type Status int

const (
	Success Status = iota
	Failure
	Running
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Node is anything that can be ticked. Halt stops a running node and its
// running descendants, firing their exit hooks; it is a no-op on idle nodes.
type Node[B any] interface {
	Name() string
	Tick(bb B) Status
	Halt(bb B)
	Running() bool
	Children() []Node[B]
}

// Hooks observe node lifecycle across a whole tree. OnExit receives the
// node's final status; Running means it was halted mid-run.
type Hooks[B any] struct {
	OnEnter func(node string, bb B)
	OnExit  func(node string, bb B, st Status)
}

type hookable[B any] interface {
	setHooks(h *Hooks[B])
}

// base tracks whether a node is mid-run and reports transitions to the hooks.
type base[B any] struct {
	name    string
	running bool
	hooks   *Hooks[B]
}

func (n *base[B]) Name() string { return n.name }
func (n *base[B]) Running() bool { return n.running }

func (n *base[B]) setHooks(h *Hooks[B]) { n.hooks = h }

// start marks the node running. It returns true on the tick the node enters.
func (n *base[B]) start(bb B) bool {
	if n.running {
		return false
	}
	n.running = true
	if n.hooks != nil && n.hooks.OnEnter != nil {
		n.hooks.OnEnter(n.name, bb)
	}
	return true
}

func (n *base[B]) stop(bb B, st Status) {
	n.running = false
	if n.hooks != nil && n.hooks.OnExit != nil {
		n.hooks.OnExit(n.name, bb, st)
	}
}

// LeafFuncs are the callbacks of a leaf. OnEnter runs on the first tick of a
// run, OnUpdate every tick, OnExit when the run ends by completion or halt
// (with Running as the status in the halt case). Only OnUpdate is required.
type LeafFuncs[B any] struct {
	OnEnter  func(bb B)
	OnUpdate func(bb B) Status
	OnExit   func(bb B, st Status)
}

type Leaf[B any] struct {
	base[B]
	fn LeafFuncs[B]
}

func NewLeaf[B any](name string, fn LeafFuncs[B]) *Leaf[B] {
	return &Leaf[B]{base: base[B]{name: name}, fn: fn}
}

// Condition is a leaf that never runs: Success when pred holds, Failure otherwise.
func Condition[B any](name string, pred func(bb B) bool) *Leaf[B] {
	return NewLeaf(name, LeafFuncs[B]{OnUpdate: func(bb B) Status {
		if pred(bb) {
			return Success
		}
		return Failure
	}})
}

func Action[B any](name string, do func(bb B) Status) *Leaf[B] {
	return NewLeaf(name, LeafFuncs[B]{OnUpdate: do})
}

func (l *Leaf[B]) Tick(bb B) Status {
	if l.start(bb) && l.fn.OnEnter != nil {
		l.fn.OnEnter(bb)
	}
	st := Failure
	if l.fn.OnUpdate != nil {
		st = l.fn.OnUpdate(bb)
	}
	if st != Running {
		l.finish(bb, st)
	}
	return st
}

func (l *Leaf[B]) Halt(bb B) {
	if l.running {
		l.finish(bb, Running)
	}
}

func (l *Leaf[B]) finish(bb B, st Status) {
	if l.fn.OnExit != nil {
		l.fn.OnExit(bb, st)
	}
	l.stop(bb, st)
}

func (l *Leaf[B]) Children() []Node[B] { return nil }
