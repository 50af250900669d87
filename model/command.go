package model

// CommandKind identifies the single command a controller may emit per unit per tick.
type CommandKind string

const (
	CommandMove   CommandKind = "move"
	CommandAttack CommandKind = "attack"
	CommandCast   CommandKind = "cast"
)

// Ability is a unit ability trigger, optionally aimed at a point.
type Ability struct {
	ID     string `json:"id"`
	Target *Point `json:"target,omitempty"`
}

// Command is fire-and-forget. For move and attack commands, Ability (if set)
// is cast immediately before the main command as part of the same tick's
// decision; for CommandCast it is the whole payload.
type Command struct {
	Kind     CommandKind `json:"kind"`
	UnitID   uint64      `json:"unitId"`
	Pos      Point       `json:"pos"`
	TargetID uint64      `json:"targetId,omitempty"`
	Ability  *Ability    `json:"ability,omitempty"`
}

func Move(unitID uint64, to Point) Command {
	return Command{Kind: CommandMove, UnitID: unitID, Pos: to}
}

func Attack(unitID, targetID uint64) Command {
	return Command{Kind: CommandAttack, UnitID: unitID, TargetID: targetID}
}

func Cast(unitID uint64, ability string, at *Point) Command {
	return Command{Kind: CommandCast, UnitID: unitID, Ability: &Ability{ID: ability, Target: at}}
}

// WithPrecast attaches an ability cast that fires just before c.
func (c Command) WithPrecast(ability string, at *Point) Command {
	if ability == "" {
		return c
	}
	c.Ability = &Ability{ID: ability, Target: at}
	return c
}

// Commander is the write side of the game client.
type Commander interface {
	Issue(cmd Command) error
}

// CommanderFunc adapts a function to Commander.
type CommanderFunc func(cmd Command) error

func (f CommanderFunc) Issue(cmd Command) error { return f(cmd) }
