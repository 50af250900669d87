package policy

import "github.com/nstehr/cohort/model"

// Snapshot is one unit's view of the battlefield for a single tick. It is
// built fresh from the GameState every tick and never kept around.
type Snapshot struct {
	Self model.Unit
	Time float64

	// Enemies are enemy units within sight range, targetable or not.
	Enemies []model.Unit
	// Structures are enemy structures within sight range. Fogged snapshots
	// are not visible and never show up here.
	Structures []model.Unit
}

// Perceive builds the snapshot for unit id. ok is false when the unit no
// longer exists, which callers treat as a stale reference.
func Perceive(gs *model.GameState, id uint64) (Snapshot, bool) {
	self, ok := gs.FindUnit(id)
	if !ok {
		return Snapshot{}, false
	}
	s := Snapshot{Self: self, Time: gs.Time}
	for _, e := range gs.Enemies {
		if inSight(self, e) {
			s.Enemies = append(s.Enemies, e)
		}
	}
	for _, e := range gs.EnemyStructures {
		if !e.Snapshot && inSight(self, e) {
			s.Structures = append(s.Structures, e)
		}
	}
	return s, true
}

func inSight(self, other model.Unit) bool {
	return self.DistanceTo(other) <= self.SightRange
}

// Threats are the visible enemies (units and structures) the unit could
// currently shoot at.
func (s Snapshot) Threats() []model.Unit {
	var out []model.Unit
	for _, e := range s.Enemies {
		if e.Targetable {
			out = append(out, e)
		}
	}
	for _, e := range s.Structures {
		if e.Targetable {
			out = append(out, e)
		}
	}
	return out
}

// HealthFraction is (health+shield)/(max health+max shield), 1 for units
// without a pool.
func (s Snapshot) HealthFraction() float64 {
	m := s.Self.VitalityMax()
	if m <= 0 {
		return 1
	}
	return s.Self.Vitality() / m
}
