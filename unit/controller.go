// Package unit holds the per-unit combat brain. The same policy runs behind
// two engines, a behavior tree and a hierarchical state machine, which are
// interchangeable: fed the same states they issue the same commands.
package unit

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/nstehr/cohort/bt"
	"github.com/nstehr/cohort/metrics"
	"github.com/nstehr/cohort/model"
	"github.com/nstehr/cohort/policy"
)

type Engine string

const (
	EngineBT   Engine = "bt"
	EngineHFSM Engine = "hfsm"
)

func ParseEngine(s string) (Engine, error) {
	switch Engine(s) {
	case EngineBT, EngineHFSM:
		return Engine(s), nil
	}
	return "", fmt.Errorf("unknown engine %q (want bt or hfsm)", s)
}

// Memory is what a unit remembers between ticks.
type Memory struct {
	Order      model.Order
	Retreat    policy.Retreat
	Retreating bool
	// Damaged is refreshed by the orchestrator before every tick.
	Damaged bool
	// ReadyToAct latches once a retreat completes; the state machine reads it
	// to leave AvoidInjury.
	ReadyToAct bool
}

// Controller is one unit's decision maker. The army writes orders through
// SetOrder; Tick reads them on the next step.
type Controller interface {
	UnitID() uint64
	Engine() Engine
	Order() model.Order
	SetOrder(o model.Order)
	SetDamaged(damaged bool)
	Memory() Memory
	// Tick decides for one step. Failure means the unit is gone.
	Tick(gs *model.GameState) bt.Status
	// State names where the controller currently is, for logs.
	State() string
	// Close halts whatever is running so exit hooks fire.
	Close()
}

type Deps struct {
	Params    policy.Params
	Commander model.Commander
	Logger    *slog.Logger
	Metrics   *metrics.Recorder
}

func New(engine Engine, id uint64, deps Deps) (Controller, error) {
	switch engine {
	case EngineBT:
		return newTreeController(id, deps), nil
	case EngineHFSM:
		return newMachineController(id, deps), nil
	}
	return nil, fmt.Errorf("unknown engine %q", engine)
}

// core is the blackboard both engines decide over. It owns the unit's memory
// and the snapshot of the current tick, and guards the one-command rule.
type core struct {
	id     uint64
	deps   Deps
	logger *slog.Logger
	mem    Memory
	snap   policy.Snapshot
	issued bool
}

func newCore(id uint64, deps Deps) *core {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &core{id: id, deps: deps, logger: logger.With("unit", id)}
}

func (c *core) UnitID() uint64 { return c.id }
func (c *core) Order() model.Order { return c.mem.Order }
func (c *core) SetOrder(o model.Order) { c.mem.Order = o }
func (c *core) SetDamaged(damaged bool) { c.mem.Damaged = damaged }
func (c *core) Memory() Memory { return c.mem }

// begin refreshes the snapshot. false means the unit no longer exists.
func (c *core) begin(gs *model.GameState) bool {
	c.issued = false
	snap, ok := policy.Perceive(gs, c.id)
	if !ok {
		c.snap = policy.Snapshot{}
		return false
	}
	c.snap = snap
	return true
}

func (c *core) issue(cmd model.Command) {
	if c.issued {
		c.logger.Warn("dropping second command this tick", "kind", cmd.Kind)
		return
	}
	c.issued = true
	c.deps.Metrics.Command(string(cmd.Kind))
	if c.deps.Commander == nil {
		return
	}
	if err := c.deps.Commander.Issue(cmd); err != nil {
		c.deps.Metrics.CommandError()
		c.logger.Warn("command failed", "kind", cmd.Kind, "error", err)
	}
}

func (c *core) shouldFight() bool {
	return policy.ShouldFight(c.mem.Order, c.snap, c.deps.Params)
}

func (c *core) inDanger() bool {
	return policy.IsInDanger(c.snap, c.mem.Damaged, c.deps.Params)
}

func (c *core) groupMove() {
	if cmd, ok := policy.GroupMove(c.mem.Order, c.snap.Self, c.deps.Params); ok {
		c.issue(cmd)
	}
}

func (c *core) attack() {
	if cmd, ok := policy.AttackCommand(c.snap, c.deps.Params); ok {
		c.logger.Debug("attacking", "target", cmd.TargetID)
		c.issue(cmd)
	}
}

func (c *core) beginRetreat() {
	r, cmd := policy.PlanRetreat(c.snap, c.deps.Params)
	c.mem.Retreat = r
	c.mem.Retreating = true
	c.mem.ReadyToAct = false
	c.logger.Debug("retreating", "to", r.Destination, "health", c.snap.HealthFraction())
	if cmd != nil {
		c.issue(*cmd)
	}
}

func (c *core) retreatDone() bool {
	return c.mem.Retreat.Complete(c.snap, c.deps.Params)
}

func (c *core) endRetreat() {
	c.mem.Retreating = false
}
