package bt

// Invert swaps Success and Failure; Running passes through.
type Invert[B any] struct {
	base[B]
	child Node[B]
}

func NewInvert[B any](name string, child Node[B]) *Invert[B] {
	return &Invert[B]{base: base[B]{name: name}, child: child}
}

func (n *Invert[B]) Tick(bb B) Status {
	n.start(bb)
	st := n.child.Tick(bb)
	switch st {
	case Success:
		st = Failure
	case Failure:
		st = Success
	default:
		return st
	}
	n.stop(bb, st)
	return st
}

func (n *Invert[B]) Halt(bb B) {
	if !n.running {
		return
	}
	n.child.Halt(bb)
	n.stop(bb, Running)
}

func (n *Invert[B]) Children() []Node[B] { return []Node[B]{n.child} }

// Guard is the eternal guard: its conditions are re-checked every tick before
// the subtree is resumed. A failing condition halts the subtree on the spot
// and the guard fails; a running condition halts it and the guard reports
// Running. With no conditions the subtree always runs.
type Guard[B any] struct {
	base[B]
	conditions []Node[B]
	subtree    Node[B]
	onAbort    func(bb B, by string)
}

func NewGuard[B any](name string, subtree Node[B], conditions ...Node[B]) *Guard[B] {
	return &Guard[B]{base: base[B]{name: name}, conditions: conditions, subtree: subtree}
}

// OnAbort registers fn to be called whenever condition `by` stops a running subtree.
func (g *Guard[B]) OnAbort(fn func(bb B, by string)) *Guard[B] {
	g.onAbort = fn
	return g
}

func (g *Guard[B]) Tick(bb B) Status {
	g.start(bb)
	for _, c := range g.conditions {
		switch c.Tick(bb) {
		case Failure:
			g.abort(bb, c.Name())
			g.stop(bb, Failure)
			return Failure
		case Running:
			g.abort(bb, c.Name())
			return Running
		}
	}
	st := g.subtree.Tick(bb)
	if st != Running {
		g.stop(bb, st)
	}
	return st
}

func (g *Guard[B]) abort(bb B, by string) {
	if !g.subtree.Running() {
		return
	}
	g.subtree.Halt(bb)
	if g.onAbort != nil {
		g.onAbort(bb, by)
	}
}

func (g *Guard[B]) Halt(bb B) {
	if !g.running {
		return
	}
	haltAll(g.conditions, bb)
	g.subtree.Halt(bb)
	g.stop(bb, Running)
}

func (g *Guard[B]) Children() []Node[B] {
	out := make([]Node[B], 0, len(g.conditions)+1)
	out = append(out, g.conditions...)
	return append(out, g.subtree)
}
