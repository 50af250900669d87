package army

import (
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/nstehr/cohort/bt"
	"github.com/nstehr/cohort/metrics"
	"github.com/nstehr/cohort/model"
	"github.com/nstehr/cohort/rules"
)

// Params tune the group behavior.
type Params struct {
	StrengthMargin  float64
	WaypointReached float64 // centroid distance at which a search location counts as visited
	BaseRadius      float64 // own structures this close to the start location form the base
}

func DefaultParams() Params {
	return Params{StrengthMargin: 1.25, WaypointReached: 5, BaseRadius: 25}
}

// Orders delivers an order to a member's unit controller. It reports false
// when the unit has no controller.
type Orders interface {
	SetOrder(id uint64, o model.Order) bool
}

type Deps struct {
	Params Params
	// Guards must be compiled. They are checked in order before every tick of
	// the move-out branch.
	Guards  []*rules.Rule
	Orders  Orders
	Rand    *rand.Rand
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

type posture string

const (
	postureAttack posture = "attack"
	postureSeek   posture = "seek"
	postureStay   posture = "stay in base"
)

// Controller is the army's behavior tree:
//
//	Selector
//	├── Guard(guards...): Selector
//	│   ├── Sequence: EnemiesVisible, Attack
//	│   └── SeekEnemies
//	└── StayInBase
type Controller struct {
	state  *State
	deps   Deps
	logger *slog.Logger
	tree   *bt.Tree[*Controller]

	// per-tick view
	gs      *model.GameState
	units   []model.Unit
	posture posture
}

func NewController(state *State, deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(0, 0))
	}
	c := &Controller{state: state, deps: deps, logger: logger.With("component", "army")}

	guards := make([]bt.Node[*Controller], 0, len(deps.Guards))
	for _, r := range deps.Guards {
		guards = append(guards, bt.Condition(r.Name, func(c *Controller) bool { return c.checkGuard(r) }))
	}

	seek := bt.NewLeaf("seek enemies", bt.LeafFuncs[*Controller]{
		OnEnter:  (*Controller).planSearch,
		OnUpdate: (*Controller).seek,
	})
	moveOut := bt.NewGuard[*Controller]("move out guard",
		bt.NewSelector[*Controller]("move out",
			bt.NewSequence[*Controller]("attack visible enemies",
				bt.Condition("enemies visible", (*Controller).enemiesVisible),
				bt.Action("attack", (*Controller).attack),
			),
			seek,
		),
		guards...,
	).OnAbort(func(c *Controller, by string) {
		c.deps.Metrics.GuardAbort(by)
		c.logger.Info("move out aborted", "guard", by, "enemyStrength", c.state.EnemyStrength)
	})
	root := bt.NewSelector[*Controller]("army behavior",
		moveOut,
		bt.Action("stay in base", (*Controller).stayInBase),
	)
	c.tree = bt.MustNew[*Controller](root, bt.WithLogger[*Controller](c.logger))
	return c
}

func (c *Controller) State() *State { return c.state }

// Tick runs the army tree once against gs.
func (c *Controller) Tick(gs *model.GameState) bt.Status {
	c.gs = gs
	c.units = c.state.Resolve(gs)
	st := c.tree.Tick(c)
	c.deps.Metrics.TreeStatus("army", st.String())
	c.deps.Metrics.SetArmy(len(c.units), rules.TotalDPS(c.units), c.state.EnemyStrength)
	return st
}

// Posture is the branch that issued orders on the last tick.
func (c *Controller) Posture() string { return string(c.posture) }

// Env is the guard view of the current tick.
func (c *Controller) Env() rules.ArmyEnv {
	return rules.NewArmyEnv(c.units, c.gs.Enemies, c.state.EnemyStrength, c.deps.Params.StrengthMargin, c.gs.Time)
}

// A guard that cannot be evaluated counts as failed.
func (c *Controller) checkGuard(r *rules.Rule) bool {
	ok, err := r.Eval(c.Env())
	if err != nil {
		c.logger.Warn("guard evaluation failed", "guard", r.Name, "error", err)
		return false
	}
	return ok
}

func (c *Controller) setPosture(p posture) {
	if p != c.posture {
		c.logger.Info("army posture changed", "from", c.posture, "to", p, "members", len(c.units))
		c.posture = p
	}
}

func (c *Controller) orderAll(o model.Order) {
	for _, u := range c.units {
		if !c.deps.Orders.SetOrder(u.ID, o) {
			c.logger.Debug("member has no controller", "unit", u.ID)
		}
	}
}

func (c *Controller) centroid() (model.Point, bool) {
	return model.Centroid(model.Positions(c.units))
}

// threatsSeenBy lists the targetable enemy units and live structures within u's sight.
func (c *Controller) threatsSeenBy(u model.Unit) []model.Unit {
	var out []model.Unit
	for _, group := range [][]model.Unit{c.gs.Enemies, c.gs.EnemyStructures} {
		for _, e := range group {
			if e.Targetable && !e.Snapshot && u.DistanceTo(e) <= u.SightRange {
				out = append(out, e)
			}
		}
	}
	return out
}

func (c *Controller) enemiesVisible() bool {
	for _, u := range c.units {
		if len(c.threatsSeenBy(u)) > 0 {
			return true
		}
	}
	return false
}

// attack sends everyone at the enemy closest to the army's centre, taken from
// the first member that has eyes on something.
func (c *Controller) attack() bt.Status {
	center, ok := c.centroid()
	if !ok {
		return bt.Success
	}
	for _, u := range c.units {
		seen := c.threatsSeenBy(u)
		if len(seen) == 0 {
			continue
		}
		target, _ := model.Closest(seen, center)
		c.setPosture(postureAttack)
		c.orderAll(model.MoveAttackOrder(target.Pos))
		return bt.Success
	}
	return bt.Success
}

// planSearch builds the route: fogged enemy structures first, then enemy
// start locations, then every expansion in random order.
func (c *Controller) planSearch() {
	var route []model.Point
	for _, s := range c.gs.EnemyStructures {
		if s.Snapshot {
			route = append(route, s.Pos)
		}
	}
	route = append(route, c.gs.EnemyStartLocations...)
	expansions := append([]model.Point(nil), c.gs.Expansions...)
	c.deps.Rand.Shuffle(len(expansions), func(i, j int) {
		expansions[i], expansions[j] = expansions[j], expansions[i]
	})
	c.state.Unvisited = append(route, expansions...)
	c.logger.Debug("search route planned", "locations", len(c.state.Unvisited))
}

func (c *Controller) seek() bt.Status {
	center, ok := c.centroid()
	if !ok {
		return bt.Failure
	}
	if len(c.state.Unvisited) == 0 {
		return bt.Success
	}
	if center.Dist(c.state.Unvisited[0]) < c.deps.Params.WaypointReached {
		c.state.Unvisited = c.state.Unvisited[1:]
		if len(c.state.Unvisited) == 0 {
			return bt.Success
		}
	}
	c.setPosture(postureSeek)
	if model.MeanDistance(model.Positions(c.units), center) < c.state.ClusterSize {
		c.orderAll(model.MoveOrder(c.state.Unvisited[0]))
	} else {
		c.orderAll(model.MoveOrder(center))
	}
	return bt.Running
}

// stayInBase pulls everyone back to defend the structures around the start location.
func (c *Controller) stayInBase() bt.Status {
	var base []model.Point
	for _, s := range c.gs.Structures {
		if s.Pos.Dist(c.gs.StartLocation) <= c.deps.Params.BaseRadius {
			base = append(base, s.Pos)
		}
	}
	home, ok := model.Centroid(base)
	if !ok {
		home = c.gs.StartLocation
	}
	c.setPosture(postureStay)
	c.orderAll(model.DefendOrder(home, 0))
	return bt.Success
}
