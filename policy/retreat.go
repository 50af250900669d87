package policy

import "github.com/nstehr/cohort/model"

// Retreat is the escape a unit committed to when it got into danger.
type Retreat struct {
	Destination model.Point
	Started     float64
}

// PlanRetreat steps the unit directly away from the centroid of the visible
// threats. With no threats, or when standing on the centroid, the unit has
// nowhere better to be: the destination is its own position and no command
// is issued.
func PlanRetreat(s Snapshot, p Params) (Retreat, *model.Command) {
	r := Retreat{Destination: s.Self.Pos, Started: s.Time}
	centroid, ok := model.Centroid(model.Positions(s.Threats()))
	if !ok {
		return r, nil
	}
	dir := s.Self.Pos.Sub(centroid).Unit()
	if dir.Len() == 0 {
		return r, nil
	}
	r.Destination = s.Self.Pos.Add(dir.Scale(p.RetreatStep))
	dest := r.Destination
	cmd := model.Move(s.Self.ID, dest).WithPrecast(abilityFor(p.RetreatAbility, s.Self.Type), &dest)
	return r, &cmd
}

// Normalizing the escape direction can leave a one-cell step a hair short of
// the arrive distance; without the slack a fresh retreat could count as done.
const arriveSlack = 1e-9

// Complete reports whether the unit reached the escape point or ran out of time.
func (r Retreat) Complete(s Snapshot, p Params) bool {
	if s.Self.Pos.Dist(r.Destination) < p.ArriveDistance-arriveSlack {
		return true
	}
	return s.Time-r.Started > p.RetreatTimeout
}
