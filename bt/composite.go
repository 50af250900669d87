package bt

// Sequence ticks children in order until one fails. It remembers a running
// child and resumes there next tick without re-ticking its predecessors.
type Sequence[B any] struct {
	base[B]
	children []Node[B]
	current  int
}

func NewSequence[B any](name string, children ...Node[B]) *Sequence[B] {
	return &Sequence[B]{base: base[B]{name: name}, children: children}
}

func (s *Sequence[B]) Tick(bb B) Status {
	if s.start(bb) {
		s.current = 0
	}
	for s.current < len(s.children) {
		switch s.children[s.current].Tick(bb) {
		case Running:
			return Running
		case Failure:
			s.stop(bb, Failure)
			return Failure
		}
		s.current++
	}
	s.stop(bb, Success)
	return Success
}

func (s *Sequence[B]) Halt(bb B) {
	if !s.running {
		return
	}
	haltAll(s.children, bb)
	s.stop(bb, Running)
}

func (s *Sequence[B]) Children() []Node[B] { return s.children }

// Selector is a priority fallback. Every tick it starts again from the first
// child, so a higher priority child that succeeds or starts running pre-empts
// (halts) whatever lower priority child was running before.
type Selector[B any] struct {
	base[B]
	children []Node[B]
}

func NewSelector[B any](name string, children ...Node[B]) *Selector[B] {
	return &Selector[B]{base: base[B]{name: name}, children: children}
}

func (s *Selector[B]) Tick(bb B) Status {
	s.start(bb)
	for i, c := range s.children {
		st := c.Tick(bb)
		if st == Failure {
			continue
		}
		haltAll(s.children[i+1:], bb)
		if st == Success {
			s.stop(bb, Success)
		}
		return st
	}
	s.stop(bb, Failure)
	return Failure
}

func (s *Selector[B]) Halt(bb B) {
	if !s.running {
		return
	}
	haltAll(s.children, bb)
	s.stop(bb, Running)
}

func (s *Selector[B]) Children() []Node[B] { return s.children }

func haltAll[B any](nodes []Node[B], bb B) {
	for _, n := range nodes {
		n.Halt(bb)
	}
}
