package rules

import (
	"strings"

	"github.com/nstehr/cohort/model"
)

// ArmyEnv is what guard expressions can see. Fields and helper methods are
// both callable from expr.
type ArmyEnv struct {
	ArmyDPS        float64
	EnemyStrength  float64
	StrengthMargin float64
	Members        int
	VisibleEnemies int
	Time           float64

	Units   []model.Unit
	Enemies []model.Unit
}

// NewArmyEnv summarizes the army members and every enemy unit currently visible.
func NewArmyEnv(members, enemies []model.Unit, enemyStrength, margin, now float64) ArmyEnv {
	return ArmyEnv{
		ArmyDPS:        TotalDPS(members),
		EnemyStrength:  enemyStrength,
		StrengthMargin: margin,
		Members:        len(members),
		VisibleEnemies: len(enemies),
		Time:           now,
		Units:          members,
		Enemies:        enemies,
	}
}

// TotalDPS sums ground damage per second.
func TotalDPS(units []model.Unit) float64 {
	sum := 0.0
	for _, u := range units {
		sum += u.GroundDPS
	}
	return sum
}

func (e ArmyEnv) UnitCount(t string) int {
	return countType(e.Units, t)
}

func (e ArmyEnv) EnemyCount(t string) int {
	return countType(e.Enemies, t)
}

func (e ArmyEnv) VisibleEnemyDPS() float64 {
	return TotalDPS(e.Enemies)
}

func countType(units []model.Unit, t string) int {
	n := 0
	for _, u := range units {
		if strings.EqualFold(u.Type, t) {
			n++
		}
	}
	return n
}
