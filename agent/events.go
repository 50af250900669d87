package agent

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nstehr/cohort/model"
)

// EventKind identifies a notable change between two consecutive game states.
type EventKind string

const (
	EventFirstContact        EventKind = "first_contact"
	EventEnemyBaseDiscovered EventKind = "enemy_base_discovered"
	EventUnitsLost           EventKind = "units_lost"
	EventArmyDevastated      EventKind = "army_devastated"
)

// Event is a significant game event detected by diffing consecutive game
// states. Events are logged and counted; they never steer the controllers.
type Event struct {
	Kind   EventKind
	Tick   int
	Detail string
}

// devastatedFraction of the previous step's fighters lost in one step marks
// the army as devastated.
const devastatedFraction = 0.5

type vitals struct {
	health, shield float64
}

// stateSnapshot captures the diffable fields from a game state tick.
// The orchestrator stores one and compares against the next step.
type stateSnapshot struct {
	units   map[uint64]vitals
	types   map[uint64]string
	fighter map[uint64]bool

	// carried forward once true
	enemiesSeen   bool
	enemyBaseSeen bool
}

// takeSnapshot captures the current diffable state for the next step's comparison.
func takeSnapshot(gs *model.GameState, prev *stateSnapshot, isWorker func(string) bool) stateSnapshot {
	s := stateSnapshot{
		units:   make(map[uint64]vitals, len(gs.Units)),
		types:   make(map[uint64]string, len(gs.Units)),
		fighter: make(map[uint64]bool, len(gs.Units)),
	}
	for _, u := range gs.Units {
		s.units[u.ID] = vitals{u.Health, u.Shield}
		s.types[u.ID] = u.Type
		if u.CanAttack && !isWorker(u.Type) {
			s.fighter[u.ID] = true
		}
	}
	s.enemiesSeen = len(gs.Enemies) > 0
	s.enemyBaseSeen = len(gs.EnemyStructures) > 0
	if prev != nil {
		s.enemiesSeen = s.enemiesSeen || prev.enemiesSeen
		s.enemyBaseSeen = s.enemyBaseSeen || prev.enemyBaseSeen
	}
	return s
}

// damagedUnits reports the units whose health or shield dropped since prev.
// Units first seen this step are never damaged.
func damagedUnits(gs *model.GameState, prev *stateSnapshot) map[uint64]bool {
	out := make(map[uint64]bool)
	if prev == nil {
		return out
	}
	for _, u := range gs.Units {
		before, ok := prev.units[u.ID]
		if !ok {
			continue
		}
		if u.Health < before.health || u.Shield < before.shield {
			out[u.ID] = true
		}
	}
	return out
}

// detectEvents compares the current game state against the previous snapshot
// and returns any triggered events. Returns nil if prev is nil (first step).
func detectEvents(gs *model.GameState, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}
	var events []Event

	if !prev.enemiesSeen && len(gs.Enemies) > 0 {
		events = append(events, Event{
			Kind:   EventFirstContact,
			Tick:   gs.Tick,
			Detail: fmt.Sprintf("%d enemy units sighted", len(gs.Enemies)),
		})
	}
	if !prev.enemyBaseSeen && len(gs.EnemyStructures) > 0 {
		closest, _ := model.Closest(gs.EnemyStructures, gs.StartLocation)
		events = append(events, Event{
			Kind:   EventEnemyBaseDiscovered,
			Tick:   gs.Tick,
			Detail: fmt.Sprintf("%s at (%.0f, %.0f)", closest.Type, closest.Pos.X, closest.Pos.Y),
		})
	}

	alive := gs.UnitIDSet()
	lost := make(map[string]int)
	fightersLost, fighters := 0, 0
	for id, t := range prev.types {
		if prev.fighter[id] {
			fighters++
		}
		if alive[id] {
			continue
		}
		lost[t]++
		if prev.fighter[id] {
			fightersLost++
		}
	}
	if len(lost) > 0 {
		events = append(events, Event{Kind: EventUnitsLost, Tick: gs.Tick, Detail: formatCounts(lost)})
	}
	if fighters > 1 && float64(fightersLost) >= devastatedFraction*float64(fighters) {
		events = append(events, Event{
			Kind:   EventArmyDevastated,
			Tick:   gs.Tick,
			Detail: fmt.Sprintf("lost %d of %d fighting units", fightersLost, fighters),
		})
	}
	return events
}

// formatCounts renders a count map as "2x stalker, 1x zealot", sorted by type.
func formatCounts(counts map[string]int) string {
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	slices.Sort(types)
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%dx %s", counts[t], t))
	}
	return strings.Join(parts, ", ")
}
