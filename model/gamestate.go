package model

// GameState is one simulation step as reported by the game-client bridge.
// It is rebuilt from scratch every step and never mutated by the decision core.
type GameState struct {
	Tick        int     `json:"tick"`
	Time        float64 `json:"time"`        // simulated seconds since match start
	StepSeconds float64 `json:"stepSeconds"` // simulated seconds per step; 0 when the bridge doesn't know

	Units           []Unit `json:"units"`
	Structures      []Unit `json:"structures"`
	Enemies         []Unit `json:"enemies"`
	EnemyStructures []Unit `json:"enemyStructures"`

	StartLocation       Point   `json:"startLocation"`
	EnemyStartLocations []Point `json:"enemyStartLocations"`
	Expansions          []Point `json:"expansions"`
}

// Unit covers both mobile units and structures; structures simply never move.
type Unit struct {
	ID          uint64  `json:"id"`
	Type        string  `json:"type"`
	Pos         Point   `json:"pos"`
	Radius      float64 `json:"radius"`
	Health      float64 `json:"health"`
	HealthMax   float64 `json:"healthMax"`
	Shield      float64 `json:"shield"`
	ShieldMax   float64 `json:"shieldMax"`
	SightRange  float64 `json:"sightRange"`
	AttackRange float64 `json:"attackRange"`
	GroundDPS   float64 `json:"groundDps"`

	// Targetable is false for cloaked or burrowed units we have no detection on.
	Targetable bool `json:"targetable"`
	CanAttack  bool `json:"canAttack"`
	// Snapshot marks a structure remembered under fog of war.
	Snapshot bool `json:"snapshot"`

	Idle          bool   `json:"idle"`
	Moving        bool   `json:"moving"`
	Attacking     bool   `json:"attacking"`
	OrderTarget   *Point `json:"orderTarget,omitempty"`
	OrderTargetID uint64 `json:"orderTargetId,omitempty"`
}

// Vitality is health plus shield.
func (u Unit) Vitality() float64 { return u.Health + u.Shield }

func (u Unit) VitalityMax() float64 { return u.HealthMax + u.ShieldMax }

func (u Unit) DistanceTo(o Unit) float64 { return u.Pos.Dist(o.Pos) }

// FindUnit resolves one of our own units by ID.
func (gs *GameState) FindUnit(id uint64) (Unit, bool) {
	for _, u := range gs.Units {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// DeltaTime returns the simulated seconds covered by one step. Bridges that
// don't report StepSeconds fall back to gameStep frames at fps frames/second.
func (gs *GameState) DeltaTime(fps float64, gameStep int) float64 {
	if gs.StepSeconds > 0 {
		return gs.StepSeconds
	}
	if fps <= 0 {
		return 0
	}
	return float64(gameStep) / fps
}

// UnitIDSet returns the IDs of all our live units.
func (gs *GameState) UnitIDSet() map[uint64]bool {
	s := make(map[uint64]bool, len(gs.Units))
	for _, u := range gs.Units {
		s[u.ID] = true
	}
	return s
}
