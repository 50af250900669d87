// Package army coordinates the combat units as one group: whether to move
// out, where to look for the enemy, and when to fall back home.
package army

import (
	"math/rand/v2"
	"slices"

	"github.com/nstehr/cohort/model"
)

// State gives the army persistent identity across ticks. Membership is
// written only by the orchestrator between ticks; the behavior tree reads it.
type State struct {
	members []uint64 // join order

	ClusterSize float64
	// EnemyStrength is the remembered enemy ground DPS. It fades over time but
	// never below what is visible right now, and never below zero.
	EnemyStrength float64
	// Unvisited is the search route, consumed from the front.
	Unvisited []model.Point
}

func NewState(clusterSize float64) *State {
	return &State{ClusterSize: clusterSize}
}

func (s *State) Members() []uint64 { return slices.Clone(s.members) }

func (s *State) Len() int { return len(s.members) }

func (s *State) Has(id uint64) bool { return slices.Contains(s.members, id) }

// Add appends id unless it is already a member.
func (s *State) Add(id uint64) bool {
	if s.Has(id) {
		return false
	}
	s.members = append(s.members, id)
	return true
}

func (s *State) Remove(id uint64) bool {
	i := slices.Index(s.members, id)
	if i < 0 {
		return false
	}
	s.members = slices.Delete(s.members, i, i+1)
	return true
}

// Prune drops members that are no longer alive and returns them.
func (s *State) Prune(alive map[uint64]bool) []uint64 {
	var dead []uint64
	kept := s.members[:0]
	for _, id := range s.members {
		if alive[id] {
			kept = append(kept, id)
		} else {
			dead = append(dead, id)
		}
	}
	s.members = kept
	return dead
}

// Remember ages the enemy strength memory by dt seconds at rate per second,
// then raises it to what is observed now if that is higher.
func (s *State) Remember(dt, rate, observed float64) float64 {
	s.EnemyStrength = max(0, s.EnemyStrength-rate*dt, observed)
	return s.EnemyStrength
}

// Resolve returns the live units of the army in membership order.
func (s *State) Resolve(gs *model.GameState) []model.Unit {
	out := make([]model.Unit, 0, len(s.members))
	for _, id := range s.members {
		if u, ok := gs.FindUnit(id); ok {
			out = append(out, u)
		}
	}
	return out
}

// Muster recomputes membership from the battle-capable units. Units within
// joinRadius of the army's centroid join; idle units left outside are
// returned so the caller can send them to that centroid. An empty army is
// seeded with one unit picked by rng.
func (s *State) Muster(capable []model.Unit, joinRadius float64, rng *rand.Rand) (rally model.Point, stragglers []model.Unit) {
	if len(s.members) == 0 {
		if len(capable) > 0 {
			s.members = append(s.members, capable[rng.IntN(len(capable))].ID)
		}
		return model.Point{}, nil
	}

	var current []model.Unit
	for _, u := range capable {
		if s.Has(u.ID) {
			current = append(current, u)
		}
	}
	rally, ok := model.Centroid(model.Positions(current))
	if !ok {
		return model.Point{}, nil
	}
	for _, u := range capable {
		if s.Has(u.ID) {
			continue
		}
		if u.Pos.Dist(rally) < joinRadius {
			s.Add(u.ID)
		} else if u.Idle {
			stragglers = append(stragglers, u)
		}
	}
	return rally, stragglers
}
