package rules

import (
	"errors"
	"testing"
)

func TestDefaultGuardsCompile(t *testing.T) {
	guards, err := Compile(DefaultGuards())
	if err != nil {
		t.Fatalf("Compile(DefaultGuards()) failed: %v", err)
	}
	if len(guards) != 1 {
		t.Fatalf("expected 1 guard, got %d", len(guards))
	}
	if guards[0].Name != "army-strong-enough" {
		t.Errorf("unexpected guard name %q", guards[0].Name)
	}
}

func TestArmyStrongEnough(t *testing.T) {
	guards, err := Compile(DefaultGuards())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		dps   float64
		enemy float64
		want  bool
	}{
		{"100 dps vs 70", 100, 70, true},
		{"exactly covered by the margin", 100, 125, true},
		{"outmatched", 100, 126, false},
		{"nothing remembered", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := ArmyEnv{ArmyDPS: tt.dps, EnemyStrength: tt.enemy, StrengthMargin: 1.25}
			got, err := guards[0].Eval(env)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompileRejectsBadConditions(t *testing.T) {
	_, err := Compile([]*Rule{{Name: "typo", ConditionSrc: "ArmyDSP > 1"}})
	if err == nil {
		t.Error("expected unknown identifier to fail compilation")
	}

	_, err = Compile([]*Rule{{Name: "not-bool", ConditionSrc: "ArmyDPS + 1"}})
	if err == nil {
		t.Error("expected non-bool condition to fail compilation")
	}

	_, err = Compile([]*Rule{
		{Name: "a", ConditionSrc: "true"},
		{Name: "a", ConditionSrc: "false"},
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestEvalUncompiled(t *testing.T) {
	r := &Rule{Name: "raw", ConditionSrc: "true"}
	if _, err := r.Eval(ArmyEnv{}); !errors.Is(err, ErrNotCompiled) {
		t.Errorf("expected ErrNotCompiled, got %v", err)
	}
}

func TestCompilePreservesOrder(t *testing.T) {
	in := []*Rule{
		{Name: "members", ConditionSrc: "Members >= 2"},
		{Name: "strength", ConditionSrc: "ArmyDPS * StrengthMargin >= EnemyStrength"},
		{Name: "no-tanks", ConditionSrc: `EnemyCount("siege_tank") == 0`},
	}
	out, err := Compile(in)
	if err != nil {
		t.Fatal(err)
	}
	for i, name := range []string{"members", "strength", "no-tanks"} {
		if out[i].Name != name {
			t.Errorf("rule %d: got %q, want %q", i, out[i].Name, name)
		}
	}
}
