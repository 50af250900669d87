package policy

import (
	"cmp"
	"slices"

	"github.com/nstehr/cohort/model"
)

// ShouldFight reports whether the unit should drop its group movement and
// engage. Move orders never fight; DefendLocation orders only fight inside
// their defend range.
func ShouldFight(o model.Order, s Snapshot, p Params) bool {
	switch o.Kind() {
	case model.OrderMove:
		return false
	case model.OrderDefendLocation:
		if s.Self.Pos.Dist(o.Target()) > o.DefendRange(p.DefendRange) {
			return false
		}
	}
	return len(s.Threats()) > 0
}

// BestTarget picks the most critically wounded dangerous enemy, preferring
// the ones already in (or nearly in) attack range. With no dangerous
// candidates it falls back to the nearest visible structure.
func BestTarget(s Snapshot, p Params) (model.Unit, bool) {
	var candidates []model.Unit
	for _, e := range s.Enemies {
		if e.Targetable {
			candidates = append(candidates, e)
		}
	}
	for _, e := range s.Structures {
		if e.CanAttack {
			candidates = append(candidates, e)
		}
	}
	slices.SortStableFunc(candidates, func(a, b model.Unit) int {
		return cmp.Compare(s.Self.DistanceTo(a), s.Self.DistanceTo(b))
	})

	bonus := s.Self.SightRange * p.TargetRangeBonus
	var inRange []model.Unit
	for _, c := range candidates {
		if s.Self.DistanceTo(c) <= s.Self.Radius+c.Radius+s.Self.AttackRange+bonus {
			inRange = append(inRange, c)
		}
	}
	if len(inRange) > 0 {
		candidates = inRange
	}

	if len(candidates) > 0 {
		best := candidates[0]
		bestScore := woundScore(best, p.Eps)
		for _, c := range candidates[1:] {
			if sc := woundScore(c, p.Eps); sc < bestScore {
				best, bestScore = c, sc
			}
		}
		return best, true
	}
	return model.Closest(s.Structures, s.Self.Pos)
}

func woundScore(u model.Unit, eps float64) float64 {
	return u.Vitality() / (u.VitalityMax() + eps)
}

// AttackCommand turns BestTarget into a command. ok is false when there is
// nothing to shoot or the unit is already attacking that exact target.
func AttackCommand(s Snapshot, p Params) (model.Command, bool) {
	t, ok := BestTarget(s, p)
	if !ok {
		return model.Command{}, false
	}
	if s.Self.Attacking && s.Self.OrderTargetID == t.ID {
		return model.Command{}, false
	}
	cmd := model.Attack(s.Self.ID, t.ID)
	return cmd.WithPrecast(abilityFor(p.PreAttack, s.Self.Type), nil), true
}

// IsInDanger is true when the unit is low and took damage since the last step.
func IsInDanger(s Snapshot, damaged bool, p Params) bool {
	return damaged && s.HealthFraction() < p.LowHealth
}

// GroupMove moves the unit toward its order target unless it is already
// close or already on its way there.
func GroupMove(o model.Order, self model.Unit, p Params) (model.Command, bool) {
	if !o.Valid() {
		return model.Command{}, false
	}
	target := o.Target()
	if self.Pos.Dist(target) <= p.GroupMoveSlack {
		return model.Command{}, false
	}
	if self.Moving && self.OrderTarget != nil && self.OrderTarget.Near(target, 1e-3) {
		return model.Command{}, false
	}
	return model.Move(self.ID, target), true
}
