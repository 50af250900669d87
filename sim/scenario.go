package sim

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nstehr/cohort/model"
)

var ErrUnknownType = errors.New("sim: unknown unit type")

// Archetype is the stat line every unit of one type shares.
type Archetype struct {
	Health      float64
	Shield      float64
	SightRange  float64
	AttackRange float64
	GroundDPS   float64
	Speed       float64
	Radius      float64
	Cloaked     bool
	Structure   bool
}

// Archetypes holds the unit types a scenario may spawn.
var Archetypes = map[string]Archetype{
	"probe":        {Health: 20, Shield: 20, SightRange: 8, AttackRange: 0.1, GroundDPS: 3.3, Speed: 3.94, Radius: 0.375},
	"zealot":       {Health: 100, Shield: 50, SightRange: 9, AttackRange: 0.1, GroundDPS: 18.6, Speed: 3.15, Radius: 0.5},
	"stalker":      {Health: 80, Shield: 80, SightRange: 10, AttackRange: 6, GroundDPS: 9.7, Speed: 4.13, Radius: 0.625},
	"sentry":       {Health: 40, Shield: 40, SightRange: 10, AttackRange: 5, GroundDPS: 8.4, Speed: 3.15, Radius: 0.5},
	"dark_templar": {Health: 40, Shield: 80, SightRange: 8, AttackRange: 0.1, GroundDPS: 37.2, Speed: 3.94, Radius: 0.375, Cloaked: true},

	"marine":   {Health: 45, SightRange: 9, AttackRange: 5, GroundDPS: 9.8, Speed: 3.15, Radius: 0.375},
	"marauder": {Health: 125, SightRange: 10, AttackRange: 6, GroundDPS: 9.3, Speed: 3.15, Radius: 0.5625},

	"nexus":          {Health: 1000, Shield: 1000, SightRange: 11, Radius: 2.75, Structure: true},
	"pylon":          {Health: 200, Shield: 200, SightRange: 9, Radius: 1, Structure: true},
	"gateway":        {Health: 500, Shield: 500, SightRange: 9, Radius: 1.75, Structure: true},
	"command_center": {Health: 1500, SightRange: 11, Radius: 2.75, Structure: true},
	"bunker":         {Health: 400, SightRange: 10, AttackRange: 6, GroundDPS: 19.6, Radius: 1.5, Structure: true},
	"supply_depot":   {Health: 400, SightRange: 9, Radius: 1, Structure: true},
}

// Spawn places Count units of one type around a point.
type Spawn struct {
	Type  string  `yaml:"type" validate:"required"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Count int     `yaml:"count" validate:"gte=0"`
}

// Scenario is the starting layout of a skirmish.
type Scenario struct {
	Name        string  `yaml:"name"`
	StepSeconds float64 `yaml:"step_seconds" validate:"gt=0"`
	// EnemyAggroRange is how close our units must get before enemy units react.
	EnemyAggroRange float64 `yaml:"enemy_aggro_range" validate:"gte=0"`

	Start      model.Point   `yaml:"start"`
	EnemyStart model.Point   `yaml:"enemy_start"`
	Expansions []model.Point `yaml:"expansions"`

	Units           []Spawn `yaml:"units" validate:"dive"`
	Structures      []Spawn `yaml:"structures" validate:"dive"`
	Enemies         []Spawn `yaml:"enemies" validate:"dive"`
	EnemyStructures []Spawn `yaml:"enemy_structures" validate:"dive"`
}

// DefaultScenario is a small protoss force against a terran outpost across
// the map, with a few expansions to search.
func DefaultScenario() Scenario {
	return Scenario{
		Name:            "outpost",
		StepSeconds:     4 / 22.4,
		EnemyAggroRange: 12,
		Start:           model.Pt(10, 10),
		EnemyStart:      model.Pt(90, 90),
		Expansions:      []model.Point{model.Pt(50, 15), model.Pt(15, 50), model.Pt(85, 50), model.Pt(50, 85)},
		Units: []Spawn{
			{Type: "stalker", X: 20, Y: 20, Count: 4},
			{Type: "zealot", X: 22, Y: 18, Count: 2},
			{Type: "sentry", X: 18, Y: 22, Count: 1},
			{Type: "probe", X: 12, Y: 12, Count: 2},
		},
		Structures: []Spawn{
			{Type: "nexus", X: 10, Y: 10, Count: 1},
			{Type: "pylon", X: 15, Y: 10, Count: 1},
			{Type: "gateway", X: 10, Y: 15, Count: 1},
		},
		Enemies: []Spawn{
			{Type: "marine", X: 62, Y: 62, Count: 5},
			{Type: "marauder", X: 64, Y: 60, Count: 1},
		},
		EnemyStructures: []Spawn{
			{Type: "command_center", X: 90, Y: 90, Count: 1},
			{Type: "bunker", X: 80, Y: 80, Count: 1},
			{Type: "supply_depot", X: 92, Y: 84, Count: 1},
		},
	}
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

func (sc Scenario) Validate() error {
	if err := validator.New().Struct(sc); err != nil {
		return err
	}
	for _, group := range [][]Spawn{sc.Units, sc.Structures, sc.Enemies, sc.EnemyStructures} {
		for _, s := range group {
			if _, ok := Archetypes[s.Type]; !ok {
				return fmt.Errorf("%w: %q", ErrUnknownType, s.Type)
			}
		}
	}
	return nil
}
