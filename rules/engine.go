package rules

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

var (
	ErrNotCompiled = errors.New("rules: rule not compiled")
	ErrDuplicate   = errors.New("rules: duplicate rule name")
)

// Compile turns every rule's condition into expr bytecode, in place. Order is
// preserved: guards are checked in the order they were declared.
func Compile(rules []*Rule) ([]*Rule, error) {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if seen[r.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, r.Name)
		}
		seen[r.Name] = true
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(ArmyEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	return rules, nil
}

// Eval runs the compiled condition against env.
func (r *Rule) Eval(env ArmyEnv) (bool, error) {
	if r.program == nil {
		return false, fmt.Errorf("%w: %q", ErrNotCompiled, r.Name)
	}
	result, err := vm.Run(r.program, env)
	if err != nil {
		return false, fmt.Errorf("rule %q: %w", r.Name, err)
	}
	match, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("rule %q: non-bool result %T", r.Name, result)
	}
	return match, nil
}
