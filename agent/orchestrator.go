package agent

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"golang.org/x/time/rate"

	"github.com/nstehr/cohort/army"
	"github.com/nstehr/cohort/bt"
	"github.com/nstehr/cohort/config"
	"github.com/nstehr/cohort/metrics"
	"github.com/nstehr/cohort/model"
	"github.com/nstehr/cohort/rules"
	"github.com/nstehr/cohort/unit"
)

// Options tweak an Orchestrator beyond its doctrine.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Recorder
	// Engine overrides the doctrine's unit engine when set.
	Engine unit.Engine
}

// Orchestrator drives one player's decision core, one simulation step at a
// time. It is not safe for concurrent use; steps are strictly sequential.
type Orchestrator struct {
	doctrine config.Doctrine
	engine   unit.Engine
	logger   *slog.Logger
	metrics  *metrics.Recorder
	rng      *rand.Rand
	out      *stepCommander
	diag     rate.Sometimes

	army    *army.State
	armyCtl *army.Controller

	controllers map[uint64]unit.Controller
	order       []uint64 // creation order, so every step ticks units the same way
	prev        *stateSnapshot
}

func NewOrchestrator(d config.Doctrine, cmd model.Commander, opts Options) (*Orchestrator, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	engine := d.UnitEngine()
	if opts.Engine != "" {
		engine = opts.Engine
	}
	if _, err := unit.ParseEngine(string(engine)); err != nil {
		return nil, err
	}
	guards, err := d.CompileGuards()
	if err != nil {
		return nil, fmt.Errorf("compile guards: %w", err)
	}

	o := &Orchestrator{
		doctrine:    d,
		engine:      engine,
		logger:      logger,
		metrics:     opts.Metrics,
		rng:         rand.New(rand.NewPCG(d.Seed, d.Seed^0x9e3779b97f4a7c15)),
		out:         &stepCommander{next: cmd},
		diag:        rate.Sometimes{Interval: d.DiagnosticsInterval},
		army:        army.NewState(d.ArmyClusterSize),
		controllers: make(map[uint64]unit.Controller),
	}
	o.armyCtl = army.NewController(o.army, army.Deps{
		Params:  d.ArmyParams(),
		Guards:  guards,
		Orders:  o,
		Rand:    o.rng,
		Logger:  logger,
		Metrics: opts.Metrics,
	})
	return o, nil
}

// SetOrder hands an army order to a unit's controller.
func (o *Orchestrator) SetOrder(id uint64, ord model.Order) bool {
	c, ok := o.controllers[id]
	if !ok {
		return false
	}
	c.SetOrder(ord)
	return true
}

func (o *Orchestrator) Engine() unit.Engine { return o.engine }

func (o *Orchestrator) Army() *army.State { return o.army }

func (o *Orchestrator) Posture() string { return o.armyCtl.Posture() }

// Controller returns the live controller for a unit, if any.
func (o *Orchestrator) Controller(id uint64) (unit.Controller, bool) {
	c, ok := o.controllers[id]
	return c, ok
}

// Step runs one simulation step and returns the events noticed since the
// previous one. Orders the army hands out here are acted on next step.
func (o *Orchestrator) Step(gs *model.GameState) []Event {
	o.metrics.Tick()
	o.out.reset()

	damaged := damagedUnits(gs, o.prev)
	events := detectEvents(gs, o.prev)
	snap := takeSnapshot(gs, o.prev, o.doctrine.IsWorker)
	o.prev = &snap
	for _, e := range events {
		o.metrics.Event(string(e.Kind))
		o.logger.Info("game event", "kind", e.Kind, "tick", e.Tick, "detail", e.Detail)
	}

	o.adopt(gs)

	for _, id := range o.order {
		c := o.controllers[id]
		c.SetDamaged(damaged[id])
		if c.Tick(gs) == bt.Failure {
			o.logger.Debug("unit controller has no unit", "unit", id)
		}
	}

	o.muster(gs)

	visible := rules.TotalDPS(gs.Enemies)
	o.army.Remember(gs.DeltaTime(o.doctrine.FramesPerSecond, o.doctrine.GameStep), o.doctrine.ForgetRate, visible)

	o.armyCtl.Tick(gs)

	o.reap(gs)

	o.metrics.SetControllers(len(o.controllers))
	o.diag.Do(func() {
		o.logger.Info("army summary",
			"tick", gs.Tick,
			"posture", o.armyCtl.Posture(),
			"members", o.army.Len(),
			"controllers", len(o.controllers),
			"enemyStrength", o.army.EnemyStrength,
			"unvisited", len(o.army.Unvisited),
		)
	})
	return events
}

// adopt builds a controller for every fighting unit that lacks one.
func (o *Orchestrator) adopt(gs *model.GameState) {
	for _, u := range gs.Units {
		if _, ok := o.controllers[u.ID]; ok || o.doctrine.IsWorker(u.Type) {
			continue
		}
		c, err := unit.New(o.engine, u.ID, unit.Deps{
			Params:    o.doctrine.Params(),
			Commander: o.out,
			Logger:    o.logger,
			Metrics:   o.metrics,
		})
		if err != nil {
			o.logger.Error("cannot build unit controller", "unit", u.ID, "error", err)
			continue
		}
		o.controllers[u.ID] = c
		o.order = append(o.order, u.ID)
		o.logger.Debug("unit controller created", "unit", u.ID, "type", u.Type, "engine", o.engine)
	}
}

// muster refreshes army membership and walks idle stragglers to the rally
// point, unless their own controller already moved them this step.
func (o *Orchestrator) muster(gs *model.GameState) {
	var capable []model.Unit
	for _, u := range gs.Units {
		if _, ok := o.controllers[u.ID]; ok && u.CanAttack {
			capable = append(capable, u)
		}
	}
	rally, stragglers := o.army.Muster(capable, o.doctrine.JoinRadius, o.rng)
	for _, u := range stragglers {
		if o.out.commanded(u.ID) {
			continue
		}
		if err := o.out.Issue(model.Move(u.ID, rally)); err != nil {
			o.logger.Warn("straggler move failed", "unit", u.ID, "error", err)
		}
	}
}

// reap drops controllers and army membership of units that are gone.
func (o *Orchestrator) reap(gs *model.GameState) {
	alive := gs.UnitIDSet()
	kept := o.order[:0]
	for _, id := range o.order {
		if alive[id] {
			kept = append(kept, id)
			continue
		}
		o.controllers[id].Close()
		delete(o.controllers, id)
		o.logger.Debug("unit controller removed", "unit", id)
	}
	o.order = kept
	if dead := o.army.Prune(alive); len(dead) > 0 {
		o.logger.Debug("army members lost", "units", dead)
	}
}

// stepCommander remembers which units got a command this step.
type stepCommander struct {
	next model.Commander
	seen map[uint64]bool
}

func (s *stepCommander) reset() { clear(s.seen) }

func (s *stepCommander) commanded(id uint64) bool { return s.seen[id] }

func (s *stepCommander) Issue(cmd model.Command) error {
	if s.seen == nil {
		s.seen = make(map[uint64]bool)
	}
	s.seen[cmd.UnitID] = true
	if s.next == nil {
		return nil
	}
	return s.next.Issue(cmd)
}
