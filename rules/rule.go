package rules

import "github.com/expr-lang/expr/vm"

// Rule is a named boolean condition over the army's situation. The army
// controller uses rules as the guards that keep it out of fights it cannot win.
type Rule struct {
	Name         string      // human-readable identifier, shows up in logs and metrics
	ConditionSrc string      // expr source (preserved for logging and doctrine dumps)
	program      *vm.Program // compiled bytecode
}

// DefaultGuards is the stock move-out guard: the army's DPS, with a safety
// margin, must cover the remembered enemy strength.
func DefaultGuards() []*Rule {
	return []*Rule{
		{Name: "army-strong-enough", ConditionSrc: "ArmyDPS * StrengthMargin >= EnemyStrength"},
	}
}
