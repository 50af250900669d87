package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/cohort/model"
)

func stalker(id uint64, x, y float64) model.Unit {
	return model.Unit{
		ID: id, Type: "stalker", Pos: model.Pt(x, y), Radius: 0.5,
		Health: 80, HealthMax: 80, Shield: 80, ShieldMax: 80,
		SightRange: 10, AttackRange: 6, GroundDPS: 9.7,
		Targetable: true, CanAttack: true,
	}
}

func enemy(id uint64, x, y, hp float64) model.Unit {
	return model.Unit{
		ID: id, Type: "marine", Pos: model.Pt(x, y), Radius: 0.375,
		Health: hp, HealthMax: 45, SightRange: 9, AttackRange: 5, GroundDPS: 9.8,
		Targetable: true, CanAttack: true,
	}
}

func snap(self model.Unit, enemies ...model.Unit) Snapshot {
	gs := &model.GameState{Units: []model.Unit{self}, Enemies: enemies}
	s, _ := Perceive(gs, self.ID)
	return s
}

func TestPerceiveFiltersBySight(t *testing.T) {
	self := stalker(1, 0, 0)
	gs := &model.GameState{
		Time:    12,
		Units:   []model.Unit{self},
		Enemies: []model.Unit{enemy(10, 5, 0, 45), enemy(11, 30, 0, 45)},
		EnemyStructures: []model.Unit{
			{ID: 20, Type: "bunker", Pos: model.Pt(0, 8), Targetable: true, CanAttack: true},
			{ID: 21, Type: "barracks", Pos: model.Pt(0, 9), Targetable: true, Snapshot: true},
		},
	}

	s, ok := Perceive(gs, 1)
	require.True(t, ok)
	assert.Equal(t, 12.0, s.Time)
	require.Len(t, s.Enemies, 1)
	assert.Equal(t, uint64(10), s.Enemies[0].ID)
	require.Len(t, s.Structures, 1)
	assert.Equal(t, uint64(20), s.Structures[0].ID)

	_, ok = Perceive(gs, 99)
	assert.False(t, ok, "stale reference")
}

func TestShouldFight(t *testing.T) {
	p := DefaultParams()
	hidden := enemy(10, 3, 0, 45)
	hidden.Targetable = false

	tests := []struct {
		name  string
		order model.Order
		s     Snapshot
		want  bool
	}{
		{"no order, enemy visible", model.Order{}, snap(stalker(1, 0, 0), enemy(10, 3, 0, 45)), true},
		{"move ignores enemies", model.MoveOrder(model.Pt(50, 50)), snap(stalker(1, 0, 0), enemy(10, 3, 0, 45)), false},
		{"move attack engages", model.MoveAttackOrder(model.Pt(50, 50)), snap(stalker(1, 0, 0), enemy(10, 3, 0, 45)), true},
		{"move attack, nothing in sight", model.MoveAttackOrder(model.Pt(50, 50)), snap(stalker(1, 0, 0)), false},
		{"cloaked enemy is not a threat", model.MoveAttackOrder(model.Pt(50, 50)), snap(stalker(1, 0, 0), hidden), false},
		{"defend inside range", model.DefendOrder(model.Pt(10, 0), 0), snap(stalker(1, 0, 0), enemy(10, 3, 0, 45)), true},
		{"defend outside range", model.DefendOrder(model.Pt(20, 0), 0), snap(stalker(1, 0, 0), enemy(10, 3, 0, 45)), false},
		{"defend with own radius", model.DefendOrder(model.Pt(20, 0), 25), snap(stalker(1, 0, 0), enemy(10, 3, 0, 45)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldFight(tt.order, tt.s, p))
		})
	}
}

func TestBestTargetPrefersMostWoundedInRange(t *testing.T) {
	p := DefaultParams()
	// 20 is the most wounded overall but out of the extended range (6+0.5+0.375+1.5).
	s := snap(stalker(1, 0, 0),
		enemy(10, 4, 0, 40),
		enemy(11, 5, 0, 30),
		enemy(20, 9.5, 0, 5),
	)
	got, ok := BestTarget(s, p)
	require.True(t, ok)
	assert.Equal(t, uint64(11), got.ID)
}

func TestBestTargetUsesWholeSetWhenNothingInRange(t *testing.T) {
	p := DefaultParams()
	self := stalker(1, 0, 0)
	self.AttackRange = 1
	s := snap(self, enemy(10, 9, 0, 40), enemy(11, 0, 9, 10))
	got, ok := BestTarget(s, p)
	require.True(t, ok)
	assert.Equal(t, uint64(11), got.ID)
}

func TestBestTargetTieBreakIsDeterministic(t *testing.T) {
	p := DefaultParams()
	// Same wound fraction; the nearer one wins, and equal distance keeps input order.
	for range 20 {
		s := snap(stalker(1, 0, 0), enemy(10, 0, 3, 20), enemy(11, 3, 0, 20), enemy(12, 2, 0, 20))
		got, ok := BestTarget(s, p)
		require.True(t, ok)
		assert.Equal(t, uint64(12), got.ID)

		s = snap(stalker(1, 0, 0), enemy(10, 0, 3, 20), enemy(11, 3, 0, 20))
		got, _ = BestTarget(s, p)
		assert.Equal(t, uint64(10), got.ID)
	}
}

func TestBestTargetFallsBackToNearestStructure(t *testing.T) {
	p := DefaultParams()
	self := stalker(1, 0, 0)
	gs := &model.GameState{
		Units: []model.Unit{self},
		EnemyStructures: []model.Unit{
			{ID: 30, Type: "supply_depot", Pos: model.Pt(7, 0), Targetable: true},
			{ID: 31, Type: "barracks", Pos: model.Pt(4, 0), Targetable: true},
		},
	}
	s, _ := Perceive(gs, 1)
	got, ok := BestTarget(s, p)
	require.True(t, ok)
	assert.Equal(t, uint64(31), got.ID)

	_, ok = BestTarget(snap(self), p)
	assert.False(t, ok)
}

func TestAttackCommand(t *testing.T) {
	p := DefaultParams()
	sentry := stalker(1, 0, 0)
	sentry.Type = "sentry"

	cmd, ok := AttackCommand(snap(sentry, enemy(10, 3, 0, 45)), p)
	require.True(t, ok)
	assert.Equal(t, model.CommandAttack, cmd.Kind)
	assert.Equal(t, uint64(10), cmd.TargetID)
	require.NotNil(t, cmd.Ability)
	assert.Equal(t, "guardian_shield", cmd.Ability.ID)

	cmd, ok = AttackCommand(snap(stalker(1, 0, 0), enemy(10, 3, 0, 45)), p)
	require.True(t, ok)
	assert.Nil(t, cmd.Ability)

	busy := stalker(1, 0, 0)
	busy.Attacking = true
	busy.OrderTargetID = 10
	_, ok = AttackCommand(snap(busy, enemy(10, 3, 0, 45)), p)
	assert.False(t, ok, "already attacking the chosen target")
}

func TestIsInDanger(t *testing.T) {
	p := DefaultParams()
	u := stalker(1, 0, 0)
	u.Health, u.Shield = 64, 0 // 64/160 = 0.4
	s := snap(u)

	assert.True(t, IsInDanger(s, true, p))
	assert.False(t, IsInDanger(s, false, p))

	u.Shield = 20 // 84/160 > 0.45
	assert.False(t, IsInDanger(snap(u), true, p))
}

func TestPlanRetreat(t *testing.T) {
	p := DefaultParams()
	self := stalker(1, 0, 0)
	s := snap(self, enemy(10, 3, 1, 45), enemy(11, 3, -1, 45))
	s.Time = 30

	r, cmd := PlanRetreat(s, p)
	assert.Equal(t, model.Pt(-1, 0), r.Destination)
	assert.Equal(t, 30.0, r.Started)
	require.NotNil(t, cmd)
	assert.Equal(t, model.CommandMove, cmd.Kind)
	assert.Equal(t, model.Pt(-1, 0), cmd.Pos)
	require.NotNil(t, cmd.Ability)
	assert.Equal(t, "blink", cmd.Ability.ID)
	require.NotNil(t, cmd.Ability.Target)
	assert.Equal(t, model.Pt(-1, 0), *cmd.Ability.Target)

	assert.False(t, r.Complete(s, p), "one full step away")

	s.Self.Pos = model.Pt(-0.5, 0)
	assert.True(t, r.Complete(s, p))

	s.Self.Pos = model.Pt(2, 0)
	s.Time = 35
	assert.False(t, r.Complete(s, p), "exactly at the timeout")
	s.Time = 35.1
	assert.True(t, r.Complete(s, p))
}

func TestPlanRetreatWithoutThreats(t *testing.T) {
	p := DefaultParams()
	s := snap(stalker(1, 4, 4))
	r, cmd := PlanRetreat(s, p)
	assert.Nil(t, cmd)
	assert.Equal(t, model.Pt(4, 4), r.Destination)
	assert.True(t, r.Complete(s, p))
}

func TestGroupMove(t *testing.T) {
	p := DefaultParams()
	target := model.Pt(20, 0)
	o := model.MoveAttackOrder(target)

	cmd, ok := GroupMove(o, stalker(1, 0, 0), p)
	require.True(t, ok)
	assert.Equal(t, model.Move(1, target), cmd)

	_, ok = GroupMove(o, stalker(1, 16, 0), p)
	assert.False(t, ok, "within slack")

	moving := stalker(1, 0, 0)
	moving.Moving = true
	moving.OrderTarget = &target
	_, ok = GroupMove(o, moving, p)
	assert.False(t, ok, "already en route")

	_, ok = GroupMove(model.Order{}, stalker(1, 0, 0), p)
	assert.False(t, ok, "no order")
}
