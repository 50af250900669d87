// Package config holds the doctrine: every tuning knob of the combat core,
// loadable from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nstehr/cohort/army"
	"github.com/nstehr/cohort/policy"
	"github.com/nstehr/cohort/rules"
	"github.com/nstehr/cohort/unit"
)

var ErrInvalid = errors.New("config: invalid doctrine")

// GuardSpec is one move-out guard as written in the doctrine file.
type GuardSpec struct {
	Name string `yaml:"name" validate:"required"`
	Expr string `yaml:"expr" validate:"required"`
}

// Doctrine is the full set of combat tuning knobs. Distances are in map
// units, durations in simulated time.
type Doctrine struct {
	Name   string `yaml:"name"`
	Engine string `yaml:"engine" validate:"oneof=bt hfsm"`
	Seed   uint64 `yaml:"seed"`

	// unit micro
	DefendRange      float64       `yaml:"defend_range" validate:"gt=0"`
	LowHealth        float64       `yaml:"low_health"`
	RetreatTimeout   time.Duration `yaml:"retreat_timeout" validate:"gt=0"`
	RetreatStep      float64       `yaml:"retreat_step" validate:"gt=0"`
	ArriveDistance   float64       `yaml:"arrive_distance" validate:"gt=0"`
	GroupMoveSlack   float64       `yaml:"group_move_slack" validate:"gte=0"`
	TargetRangeBonus float64       `yaml:"target_range_bonus"`
	Eps              float64       `yaml:"eps" validate:"gt=0"`

	PreAttackAbilities map[string]string `yaml:"pre_attack_abilities"`
	RetreatAbilities   map[string]string `yaml:"retreat_abilities"`
	WorkerTypes        []string          `yaml:"worker_types"`

	// army
	ArmyClusterSize float64     `yaml:"army_cluster_size" validate:"gt=0"`
	JoinRadius      float64     `yaml:"join_radius" validate:"gt=0"`
	WaypointReached float64     `yaml:"waypoint_reached" validate:"gt=0"`
	BaseRadius      float64     `yaml:"base_radius" validate:"gte=0"`
	ForgetRate      float64     `yaml:"forget_rate" validate:"gte=0"`
	StrengthMargin  float64     `yaml:"strength_margin" validate:"gt=0"`
	Guards          []GuardSpec `yaml:"guards" validate:"dive"`

	// clock, used when the bridge does not report a step duration
	FramesPerSecond float64 `yaml:"frames_per_second" validate:"gt=0"`
	GameStep        int     `yaml:"game_step" validate:"gte=1"`

	DiagnosticsInterval time.Duration `yaml:"diagnostics_interval" validate:"gte=0"`
}

// Default returns the stock doctrine.
func Default() Doctrine {
	guards := make([]GuardSpec, 0, 1)
	for _, r := range rules.DefaultGuards() {
		guards = append(guards, GuardSpec{Name: r.Name, Expr: r.ConditionSrc})
	}
	return Doctrine{
		Name:                "default",
		Engine:              string(unit.EngineBT),
		DefendRange:         15,
		LowHealth:           0.45,
		RetreatTimeout:      5 * time.Second,
		RetreatStep:         1,
		ArriveDistance:      1,
		GroupMoveSlack:      5,
		TargetRangeBonus:    0.15,
		Eps:                 1e-4,
		PreAttackAbilities:  map[string]string{"sentry": "guardian_shield"},
		RetreatAbilities:    map[string]string{"stalker": "blink"},
		WorkerTypes:         []string{"probe", "scv", "drone"},
		ArmyClusterSize:     3,
		JoinRadius:          10,
		WaypointReached:     5,
		BaseRadius:          25,
		ForgetRate:          0.1,
		StrengthMargin:      1.25,
		Guards:              guards,
		FramesPerSecond:     22.4,
		GameStep:            4,
		DiagnosticsInterval: 10 * time.Second,
	}
}

// Load reads a doctrine file. Keys missing from the file keep their default
// values; ability tables are merged onto the defaults, and an empty ability
// name switches one off.
func Load(path string) (Doctrine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Doctrine{}, fmt.Errorf("read doctrine: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return Doctrine{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func Parse(data []byte) (Doctrine, error) {
	d := Default()
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Doctrine{}, fmt.Errorf("parse doctrine: %w", err)
	}
	if err := validator.New().Struct(d); err != nil {
		return Doctrine{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	d.Validate()
	return d, nil
}

// Validate clamps the fractional knobs to their valid ranges.
func (d *Doctrine) Validate() {
	d.LowHealth = clamp(d.LowHealth, 0, 1)
	d.TargetRangeBonus = clamp(d.TargetRangeBonus, 0, 1)
	d.ArriveDistance = clamp(d.ArriveDistance, d.Eps, d.RetreatStep)
}

// Params are the unit controller knobs.
func (d Doctrine) Params() policy.Params {
	return policy.Params{
		DefendRange:      d.DefendRange,
		LowHealth:        d.LowHealth,
		RetreatTimeout:   d.RetreatTimeout.Seconds(),
		RetreatStep:      d.RetreatStep,
		ArriveDistance:   d.ArriveDistance,
		GroupMoveSlack:   d.GroupMoveSlack,
		TargetRangeBonus: d.TargetRangeBonus,
		Eps:              d.Eps,
		PreAttack:        d.PreAttackAbilities,
		RetreatAbility:   d.RetreatAbilities,
	}
}

func (d Doctrine) ArmyParams() army.Params {
	return army.Params{
		StrengthMargin:  d.StrengthMargin,
		WaypointReached: d.WaypointReached,
		BaseRadius:      d.BaseRadius,
	}
}

// CompileGuards compiles the move-out guards in declaration order.
func (d Doctrine) CompileGuards() ([]*rules.Rule, error) {
	rs := make([]*rules.Rule, 0, len(d.Guards))
	for _, g := range d.Guards {
		rs = append(rs, &rules.Rule{Name: g.Name, ConditionSrc: g.Expr})
	}
	compiled, err := rules.Compile(rs)
	if err != nil {
		return nil, fmt.Errorf("doctrine %q: %w", d.Name, err)
	}
	return compiled, nil
}

func (d Doctrine) UnitEngine() unit.Engine { return unit.Engine(d.Engine) }

// IsWorker reports whether units of type t are left to the economy.
func (d Doctrine) IsWorker(t string) bool {
	return slices.ContainsFunc(d.WorkerTypes, func(w string) bool { return strings.EqualFold(w, t) })
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
