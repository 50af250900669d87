package agent

import (
	"errors"
	"testing"

	"github.com/nstehr/cohort/config"
	"github.com/nstehr/cohort/ipc"
	"github.com/nstehr/cohort/model"
	"github.com/nstehr/cohort/unit"
)

type outbox struct {
	types []string
	data  []any
}

func (o *outbox) Send(msgType string, data any) error {
	o.types = append(o.types, msgType)
	o.data = append(o.data, data)
	return nil
}

func envelope(t *testing.T, typ string, data any) ipc.Envelope {
	t.Helper()
	env, err := ipc.NewEnvelope(typ, data)
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func TestGameStateBeforeHello(t *testing.T) {
	a := New(&outbox{}, config.Default(), nil, nil)
	_, err := a.HandleGameState(envelope(t, ipc.TypeGameState, model.GameState{}))
	if !errors.Is(err, ErrNoHello) {
		t.Errorf("err = %v, want ErrNoHello", err)
	}
}

func TestHelloAndGameState(t *testing.T) {
	out := &outbox{}
	a := New(out, config.Default(), nil, nil)
	if a.Session == "" {
		t.Fatal("session id missing")
	}

	resp, err := a.HandleHello(envelope(t, ipc.TypeHello, ipc.HelloMessage{Player: "p1", Race: "protoss", Engine: "hfsm"}))
	if err != nil {
		t.Fatal(err)
	}
	var ack ipc.AckMessage
	if err := resp.Decode(&ack); err != nil {
		t.Fatal(err)
	}
	if resp.Type != ipc.TypeAck || ack.Status != "ok" || ack.Session != a.Session {
		t.Errorf("ack = %s %+v", resp.Type, ack)
	}
	if a.Player != "p1" || a.Race != "protoss" || a.orch.Engine() != unit.EngineHFSM {
		t.Errorf("agent = %q %q %s", a.Player, a.Race, a.orch.Engine())
	}

	gs := model.GameState{
		Units: []model.Unit{{
			ID: 1, Type: "sentry", Pos: model.Pt(0, 0), Health: 40, HealthMax: 40, Shield: 40, ShieldMax: 40,
			SightRange: 10, AttackRange: 5, GroundDPS: 8.4, Targetable: true, CanAttack: true,
		}},
		Enemies: []model.Unit{{ID: 9, Type: "zergling", Pos: model.Pt(3, 0), Health: 35, HealthMax: 35, Targetable: true}},
	}
	if _, err := a.HandleGameState(envelope(t, ipc.TypeGameState, gs)); err != nil {
		t.Fatal(err)
	}

	// Sentries raise their shield before opening fire.
	if len(out.types) != 2 || out.types[0] != ipc.TypeCast || out.types[1] != ipc.TypeAttack {
		t.Fatalf("sent %v", out.types)
	}
	if cast := out.data[0].(ipc.CastCommand); cast.Ability != "guardian_shield" || cast.UnitID != 1 {
		t.Errorf("cast = %+v", cast)
	}
	if atk := out.data[1].(ipc.AttackCommand); atk.TargetID != 9 {
		t.Errorf("attack = %+v", atk)
	}
}

func TestHelloRejectsUnknownEngine(t *testing.T) {
	a := New(&outbox{}, config.Default(), nil, nil)
	if _, err := a.HandleHello(envelope(t, ipc.TypeHello, ipc.HelloMessage{Player: "p1", Engine: "utility"})); err == nil {
		t.Error("expected error")
	}
	if a.orch != nil {
		t.Error("no orchestrator should be started")
	}
}

func TestMalformedGameState(t *testing.T) {
	a := New(&outbox{}, config.Default(), nil, nil)
	if _, err := a.HandleHello(envelope(t, ipc.TypeHello, ipc.HelloMessage{Player: "p1"})); err != nil {
		t.Fatal(err)
	}
	if _, err := a.HandleGameState(ipc.Envelope{Type: ipc.TypeGameState, Data: []byte(`{"units": 5}`)}); err == nil {
		t.Error("expected decode error")
	}
}
