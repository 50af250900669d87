package unit

import (
	"github.com/nstehr/cohort/bt"
	"github.com/nstehr/cohort/model"
)

// treeController realizes the unit brain as
//
//	Selector
//	├── Sequence: Invert(ShouldFight), GroupMove
//	├── Sequence: IsInDanger, AvoidInjury
//	└── AttackBestTarget
type treeController struct {
	*core
	tree *bt.Tree[*core]
}

func newTreeController(id uint64, deps Deps) *treeController {
	c := newCore(id, deps)

	avoid := bt.NewLeaf("avoid injury", bt.LeafFuncs[*core]{
		OnEnter: (*core).beginRetreat,
		OnUpdate: func(c *core) bt.Status {
			if c.retreatDone() {
				return bt.Success
			}
			return bt.Running
		},
		OnExit: func(c *core, _ bt.Status) { c.endRetreat() },
	})

	root := bt.NewSelector[*core]("unit behavior",
		bt.NewSequence[*core]("group movement",
			bt.NewInvert[*core]("should not fight", bt.Condition("should fight", (*core).shouldFight)),
			bt.Action("move with group", func(c *core) bt.Status {
				c.groupMove()
				return bt.Success
			}),
		),
		bt.NewSequence[*core]("enemy avoidance",
			bt.Condition("is in danger", (*core).inDanger),
			avoid,
		),
		bt.Action("attack best target", func(c *core) bt.Status {
			c.attack()
			return bt.Success
		}),
	)

	// One-tick leaves re-enter every step; only the retreat is a real entry.
	hooks := bt.Hooks[*core]{
		OnEnter: func(node string, c *core) {
			if node == avoid.Name() {
				c.deps.Metrics.StateEntered(node)
			}
		},
	}
	return &treeController{
		core: c,
		tree: bt.MustNew[*core](root, bt.WithHooks(hooks), bt.WithLogger[*core](c.logger)),
	}
}

func (t *treeController) Engine() Engine { return EngineBT }

func (t *treeController) Tick(gs *model.GameState) bt.Status {
	if !t.begin(gs) {
		return bt.Failure
	}
	return t.tree.Tick(t.core)
}

func (t *treeController) State() string {
	if t.mem.Retreating {
		return "avoid injury"
	}
	return t.tree.Last().String()
}

func (t *treeController) Close() { t.tree.Halt(t.core) }
