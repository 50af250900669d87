// Package sim is a small deterministic skirmish world. It plays the game
// client for the decision core: it reports game states and carries out the
// commands it receives, with no randomness of its own.
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/nstehr/cohort/model"
)

var ErrStaleUnit = errors.New("sim: no such unit")

const (
	blinkRange    = 8
	blinkCooldown = 7 // seconds
	shieldRadius  = 4.5
	shieldSeconds = 5.5
	shieldFactor  = 0.8
	spawnSpacing  = 1.5
)

// Entry is one command the world accepted.
type Entry struct {
	Tick int
	Cmd  model.Command
}

type body struct {
	model.Unit
	speed     float64
	cloaked   bool
	moveTo    *model.Point
	attackID  uint64
	blinkAt   float64 // earliest time blink is ready again
	shieldEnd float64
	seen      bool
	damage    float64 // accumulated this step
}

func (b *body) alive() bool { return b.Health > 0 }

// World holds both sides of the skirmish.
type World struct {
	sc   Scenario
	tick int
	time float64

	units, structures, enemies, enemyStructures []*body
	log                                         []Entry
}

func NewWorld(sc Scenario) *World {
	w := &World{sc: sc}
	w.units = spawnAll(sc.Units, 1)
	w.structures = spawnAll(sc.Structures, 500)
	w.enemies = spawnAll(sc.Enemies, 1000)
	w.enemyStructures = spawnAll(sc.EnemyStructures, 1500)
	for _, e := range w.enemies {
		e.Targetable = !e.cloaked
	}
	return w
}

func spawnAll(spawns []Spawn, firstID uint64) []*body {
	var out []*body
	id := firstID
	for _, s := range spawns {
		a := Archetypes[s.Type]
		n := max(1, s.Count)
		for i := range n {
			// lay groups out on a small grid around the spawn point
			col, row := i%3, i/3
			pos := model.Pt(s.X+float64(col)*spawnSpacing, s.Y+float64(row)*spawnSpacing)
			out = append(out, &body{
				Unit: model.Unit{
					ID: id, Type: s.Type, Pos: pos, Radius: a.Radius,
					Health: a.Health, HealthMax: a.Health, Shield: a.Shield, ShieldMax: a.Shield,
					SightRange: a.SightRange, AttackRange: a.AttackRange, GroundDPS: a.GroundDPS,
					Targetable: true, CanAttack: a.GroundDPS > 0, Idle: true,
				},
				speed:   a.Speed,
				cloaked: a.Cloaked,
			})
			id++
		}
	}
	return out
}

func (w *World) Tick() int { return w.tick }

// Log is every accepted command so far, in order.
func (w *World) Log() []Entry { return w.log }

// Issue carries out a command for one of our units.
func (w *World) Issue(cmd model.Command) error {
	b := find(w.units, cmd.UnitID)
	if b == nil {
		return fmt.Errorf("%w: %d", ErrStaleUnit, cmd.UnitID)
	}
	w.log = append(w.log, Entry{Tick: w.tick, Cmd: cmd})
	if cmd.Ability != nil {
		w.cast(b, *cmd.Ability)
	}
	switch cmd.Kind {
	case model.CommandMove:
		to := cmd.Pos
		b.moveTo, b.attackID = &to, 0
	case model.CommandAttack:
		b.moveTo, b.attackID = nil, cmd.TargetID
	case model.CommandCast:
	default:
		return fmt.Errorf("sim: unknown command kind %q", cmd.Kind)
	}
	return nil
}

func (w *World) cast(b *body, a model.Ability) {
	switch a.ID {
	case "blink":
		if a.Target == nil || w.time < b.blinkAt {
			return
		}
		d := a.Target.Sub(b.Pos)
		if l := d.Len(); l > blinkRange {
			d = d.Unit().Scale(blinkRange)
		}
		b.Pos = b.Pos.Add(d)
		b.blinkAt = w.time + blinkCooldown
	case "guardian_shield":
		b.shieldEnd = w.time + shieldSeconds
	}
}

// State reports the world as our side sees it.
func (w *World) State() *model.GameState {
	gs := &model.GameState{
		Tick:                w.tick,
		Time:                w.time,
		StepSeconds:         w.sc.StepSeconds,
		StartLocation:       w.sc.Start,
		EnemyStartLocations: []model.Point{w.sc.EnemyStart},
		Expansions:          append([]model.Point(nil), w.sc.Expansions...),
	}
	for _, b := range w.units {
		u := b.Unit
		u.Moving = b.moveTo != nil
		u.Attacking = b.attackID != 0
		u.Idle = !u.Moving && !u.Attacking
		if b.moveTo != nil {
			to := *b.moveTo
			u.OrderTarget = &to
		}
		u.OrderTargetID = b.attackID
		gs.Units = append(gs.Units, u)
	}
	for _, b := range w.structures {
		gs.Structures = append(gs.Structures, b.Unit)
	}
	for _, e := range w.enemies {
		if w.visible(e) {
			gs.Enemies = append(gs.Enemies, e.Unit)
		}
	}
	for _, e := range w.enemyStructures {
		switch {
		case w.visible(e):
			e.seen = true
			gs.EnemyStructures = append(gs.EnemyStructures, e.Unit)
		case e.seen:
			u := e.Unit
			u.Snapshot = true
			gs.EnemyStructures = append(gs.EnemyStructures, u)
		}
	}
	return gs
}

func (w *World) visible(e *body) bool {
	for _, group := range [][]*body{w.units, w.structures} {
		for _, b := range group {
			if b.Pos.Dist(e.Pos) <= b.SightRange {
				return true
			}
		}
	}
	return false
}

// Step advances the world by one step.
func (w *World) Step() {
	dt := w.sc.StepSeconds
	for _, b := range w.units {
		w.act(b, w.enemyTargets(), dt)
	}
	for _, e := range w.enemies {
		w.react(e, dt)
	}
	for _, e := range w.enemyStructures {
		if e.CanAttack {
			w.react(e, dt)
		}
	}
	w.applyDamage()
	w.units = survivors(w.units)
	w.structures = survivors(w.structures)
	w.enemies = survivors(w.enemies)
	w.enemyStructures = survivors(w.enemyStructures)
	w.tick++
	w.time += dt
}

func (w *World) enemyTargets() []*body {
	return append(append([]*body(nil), w.enemies...), w.enemyStructures...)
}

// act moves or shoots for one of our units according to its last command.
func (w *World) act(b *body, targets []*body, dt float64) {
	if b.attackID != 0 {
		t := find(targets, b.attackID)
		if t == nil {
			b.attackID = 0
			return
		}
		if !w.shoot(b, t, dt) {
			step(b, t.Pos, dt)
		}
		return
	}
	if b.moveTo != nil && step(b, *b.moveTo, dt) {
		b.moveTo = nil
	}
}

// react makes an enemy fight the nearest of our units within aggro range.
func (w *World) react(e *body, dt float64) {
	var target *body
	best := math.Inf(1)
	for _, group := range [][]*body{w.units, w.structures} {
		for _, b := range group {
			if d := e.Pos.Dist(b.Pos); d < best && d <= w.sc.EnemyAggroRange {
				target, best = b, d
			}
		}
	}
	if target == nil {
		return
	}
	if !w.shoot(e, target, dt) && e.speed > 0 {
		step(e, target.Pos, dt)
	}
}

// shoot deals dt worth of damage when the target is in range.
func (w *World) shoot(from, to *body, dt float64) bool {
	if from.Pos.Dist(to.Pos) > from.Radius+to.Radius+from.AttackRange {
		return false
	}
	dmg := from.GroundDPS * dt
	if w.shielded(to) {
		dmg *= shieldFactor
	}
	to.damage += dmg
	return true
}

func (w *World) shielded(b *body) bool {
	for _, s := range w.units {
		if s.shieldEnd > w.time && s.Pos.Dist(b.Pos) <= shieldRadius {
			return true
		}
	}
	return false
}

func (w *World) applyDamage() {
	for _, group := range [][]*body{w.units, w.structures, w.enemies, w.enemyStructures} {
		for _, b := range group {
			if b.damage == 0 {
				continue
			}
			absorbed := min(b.Shield, b.damage)
			b.Shield -= absorbed
			b.Health -= b.damage - absorbed
			b.damage = 0
		}
	}
}

// step moves b toward to and reports whether it arrived.
func step(b *body, to model.Point, dt float64) bool {
	d := to.Sub(b.Pos)
	l := d.Len()
	reach := b.speed * dt
	if l <= reach {
		b.Pos = to
		return true
	}
	b.Pos = b.Pos.Add(d.Unit().Scale(reach))
	return false
}

func find(bodies []*body, id uint64) *body {
	for _, b := range bodies {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func survivors(bodies []*body) []*body {
	out := bodies[:0]
	for _, b := range bodies {
		if b.alive() {
			out = append(out, b)
		}
	}
	return out
}

// Outcome summarizes who is left standing.
type Outcome struct {
	Tick            int
	Units           int
	Enemies         int
	EnemyStructures int
}

func (w *World) Outcome() Outcome {
	return Outcome{Tick: w.tick, Units: len(w.units), Enemies: len(w.enemies), EnemyStructures: len(w.enemyStructures)}
}

// Over reports whether one side has nothing left to fight with.
func (w *World) Over() bool {
	return len(w.units) == 0 || len(w.enemies)+len(w.enemyStructures) == 0
}

// Run alternates decide and Step until the world is over or steps run out.
func (w *World) Run(steps int, decide func(*model.GameState)) Outcome {
	for range steps {
		if w.Over() {
			break
		}
		decide(w.State())
		w.Step()
	}
	return w.Outcome()
}
