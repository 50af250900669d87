package ipc

import (
	"fmt"

	"github.com/nstehr/cohort/model"
)

// Command type constants, shared with the game-client bridge.
const (
	TypeMove   = "move"
	TypeAttack = "attack"
	TypeCast   = "cast"
)

type MoveCommand struct {
	UnitID uint64  `json:"unit_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type AttackCommand struct {
	UnitID   uint64 `json:"unit_id"`
	TargetID uint64 `json:"target_id"`
}

type CastCommand struct {
	UnitID  uint64       `json:"unit_id"`
	Ability string       `json:"ability"`
	Target  *model.Point `json:"target,omitempty"`
}

// Sender is the write half of a connection.
type Sender interface {
	Send(msgType string, data any) error
}

// Commander forwards unit commands to the bridge. A precast ability goes out
// as its own cast message right before the command it rides on.
type Commander struct {
	out Sender
}

func NewCommander(out Sender) *Commander {
	return &Commander{out: out}
}

func (c *Commander) Issue(cmd model.Command) error {
	if cmd.Ability != nil {
		if err := c.out.Send(TypeCast, CastCommand{UnitID: cmd.UnitID, Ability: cmd.Ability.ID, Target: cmd.Ability.Target}); err != nil {
			return fmt.Errorf("cast %s: %w", cmd.Ability.ID, err)
		}
	}
	switch cmd.Kind {
	case model.CommandMove:
		return c.out.Send(TypeMove, MoveCommand{UnitID: cmd.UnitID, X: cmd.Pos.X, Y: cmd.Pos.Y})
	case model.CommandAttack:
		return c.out.Send(TypeAttack, AttackCommand{UnitID: cmd.UnitID, TargetID: cmd.TargetID})
	case model.CommandCast:
		// already sent above
		if cmd.Ability == nil {
			return fmt.Errorf("cast command for unit %d has no ability", cmd.UnitID)
		}
		return nil
	}
	return fmt.Errorf("unknown command kind %q", cmd.Kind)
}
