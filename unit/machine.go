package unit

import (
	"strings"

	"github.com/nstehr/cohort/bt"
	"github.com/nstehr/cohort/hfsm"
	"github.com/nstehr/cohort/model"
)

const (
	stateGroupMovement = "group movement"
	stateFight         = "fight"
	stateAttack        = "attack best target"
	stateAvoid         = "avoid injury"

	evShouldFight    hfsm.Event = "should fight"
	evShouldNotFight hfsm.Event = "should not fight"
	evInDanger       hfsm.Event = "is in danger"
	evReadyToAct     hfsm.Event = "is ready to act"
)

func machineDef() hfsm.Def[*core] {
	fight := &hfsm.Def[*core]{
		Name:    stateFight,
		Initial: stateAttack,
		States: []hfsm.StateDef[*core]{
			{Name: stateAttack, OnUpdate: (*core).attack},
			{
				Name:    stateAvoid,
				OnEnter: (*core).beginRetreat,
				OnUpdate: func(c *core) {
					if c.retreatDone() {
						c.mem.ReadyToAct = true
					}
				},
				OnExit: (*core).endRetreat,
			},
		},
		Transitions: map[string]map[hfsm.Event]string{
			stateAttack: {evInDanger: stateAvoid},
			stateAvoid:  {evReadyToAct: stateAttack},
		},
	}
	return hfsm.Def[*core]{
		Name:    "unit controller",
		Initial: stateGroupMovement,
		States: []hfsm.StateDef[*core]{
			{Name: stateGroupMovement, OnUpdate: (*core).groupMove},
			{Name: stateFight, Sub: fight},
		},
		Transitions: map[string]map[hfsm.Event]string{
			stateGroupMovement: {evShouldFight: stateFight},
			stateFight:         {evShouldNotFight: stateGroupMovement},
		},
	}
}

type machineController struct {
	*core
	machine *hfsm.Machine[*core]
}

func newMachineController(id uint64, deps Deps) *machineController {
	c := newCore(id, deps)
	hooks := hfsm.Hooks[*core]{
		OnEnter: func(state string, c *core) { c.deps.Metrics.StateEntered(state) },
	}
	return &machineController{
		core:    c,
		machine: hfsm.MustNew(machineDef(), hfsm.WithHooks(hooks), hfsm.WithLogger[*core](c.logger)),
	}
}

func (m *machineController) Engine() Engine { return EngineHFSM }

// Tick raises this step's events and then runs the active state. Ready-to-act
// goes before is-in-danger so that a unit finishing one retreat while still
// hurt starts the next retreat in the same step.
func (m *machineController) Tick(gs *model.GameState) bt.Status {
	if !m.begin(gs) {
		return bt.Failure
	}
	m.machine.Start(m.core)
	if m.shouldFight() {
		m.machine.Dispatch(m.core, evShouldFight)
	} else {
		m.machine.Dispatch(m.core, evShouldNotFight)
	}
	if m.mem.ReadyToAct {
		m.machine.Dispatch(m.core, evReadyToAct)
	}
	if m.inDanger() {
		m.machine.Dispatch(m.core, evInDanger)
	}
	m.machine.Dispatch(m.core, hfsm.Update)

	if m.machine.ActiveLeaf() == stateAvoid && !m.mem.ReadyToAct {
		return bt.Running
	}
	return bt.Success
}

func (m *machineController) State() string {
	return strings.Join(m.machine.Path(), "/")
}

func (m *machineController) Close() { m.machine.Stop(m.core) }
