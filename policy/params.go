package policy

import "strings"

// Params are the per-unit combat tuning knobs. config.Doctrine produces them.
type Params struct {
	DefendRange      float64
	LowHealth        float64
	RetreatTimeout   float64 // simulated seconds
	RetreatStep      float64
	ArriveDistance   float64
	GroupMoveSlack   float64
	TargetRangeBonus float64 // fraction of sight range added to attack range
	Eps              float64

	// PreAttack maps a unit type to the ability it casts right before attacking.
	PreAttack map[string]string
	// RetreatAbility maps a unit type to the ability it casts toward the escape point.
	RetreatAbility map[string]string
}

func DefaultParams() Params {
	return Params{
		DefendRange:      15,
		LowHealth:        0.45,
		RetreatTimeout:   5,
		RetreatStep:      1,
		ArriveDistance:   1,
		GroupMoveSlack:   5,
		TargetRangeBonus: 0.15,
		Eps:              1e-4,
		PreAttack:        map[string]string{"sentry": "guardian_shield"},
		RetreatAbility:   map[string]string{"stalker": "blink"},
	}
}

func abilityFor(table map[string]string, unitType string) string {
	if a, ok := table[unitType]; ok {
		return a
	}
	for k, a := range table {
		if strings.EqualFold(k, unitType) {
			return a
		}
	}
	return ""
}
