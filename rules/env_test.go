package rules

import (
	"testing"

	"github.com/nstehr/cohort/model"
)

func TestNewArmyEnv(t *testing.T) {
	members := []model.Unit{
		{ID: 1, Type: "stalker", GroundDPS: 9.7},
		{ID: 2, Type: "zealot", GroundDPS: 18.6},
		{ID: 3, Type: "Stalker", GroundDPS: 9.7},
	}
	enemies := []model.Unit{
		{ID: 10, Type: "marine", GroundDPS: 9.8},
		{ID: 11, Type: "siege_tank", GroundDPS: 20.3},
	}
	env := NewArmyEnv(members, enemies, 40, 1.25, 61.5)

	if env.Members != 3 || env.VisibleEnemies != 2 {
		t.Errorf("counts: members=%d enemies=%d", env.Members, env.VisibleEnemies)
	}
	if got := env.ArmyDPS; got < 37.99 || got > 38.01 {
		t.Errorf("ArmyDPS = %v, want 38", got)
	}
	if got := env.UnitCount("stalker"); got != 2 {
		t.Errorf("UnitCount(stalker) = %d, want 2 (case-insensitive)", got)
	}
	if got := env.EnemyCount("siege_tank"); got != 1 {
		t.Errorf("EnemyCount(siege_tank) = %d, want 1", got)
	}
	if got := env.VisibleEnemyDPS(); got < 30.09 || got > 30.11 {
		t.Errorf("VisibleEnemyDPS = %v, want 30.1", got)
	}
}

func TestHelpersUsableFromConditions(t *testing.T) {
	rules, err := Compile([]*Rule{
		{Name: "outnumber", ConditionSrc: `Members > VisibleEnemies && EnemyCount("siege_tank") == 0`},
	})
	if err != nil {
		t.Fatal(err)
	}
	env := NewArmyEnv(
		[]model.Unit{{Type: "stalker"}, {Type: "stalker"}},
		[]model.Unit{{Type: "marine"}},
		0, 1.25, 0,
	)
	ok, err := rules[0].Eval(env)
	if err != nil || !ok {
		t.Errorf("Eval = %v, %v; want true", ok, err)
	}

	env.Enemies = append(env.Enemies, model.Unit{Type: "siege_tank"})
	ok, _ = rules[0].Eval(env)
	if ok {
		t.Error("siege tank should fail the guard")
	}
}
