package ipc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/nstehr/cohort/model"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	env, err := NewEnvelope(TypeHello, HelloMessage{Player: "p1", Race: "protoss", Engine: "hfsm"})
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteEnvelope(&buf, env); err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(buf.Bytes()[:4]); int(got) != buf.Len()-4 {
		t.Fatalf("prefix = %d, payload = %d", got, buf.Len()-4)
	}

	back, err := ReadEnvelope(&buf)
	if err != nil {
		t.Fatal(err)
	}
	var hello HelloMessage
	if err := back.Decode(&hello); err != nil {
		t.Fatal(err)
	}
	if back.Type != TypeHello || hello.Player != "p1" || hello.Race != "protoss" || hello.Engine != "hfsm" {
		t.Errorf("got %s %+v", back.Type, hello)
	}
}

func TestReadEnvelopeRejectsBadLength(t *testing.T) {
	for _, n := range []uint32{0, MaxFrame + 1} {
		var buf bytes.Buffer
		binary.Write(&buf, binary.LittleEndian, n)
		if _, err := ReadEnvelope(&buf); !errors.Is(err, ErrFrameSize) {
			t.Errorf("length %d: err = %v, want ErrFrameSize", n, err)
		}
	}
}

func TestReadEnvelopeTruncated(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(10))
	buf.WriteString("{}")
	if _, err := ReadEnvelope(&buf); err == nil {
		t.Error("expected error on short payload")
	}
}

type sent struct {
	typ  string
	data any
}

type recordingSender struct {
	out []sent
	err error
}

func (r *recordingSender) Send(msgType string, data any) error {
	r.out = append(r.out, sent{msgType, data})
	return r.err
}

func TestCommanderSendsPrecastFirst(t *testing.T) {
	rs := &recordingSender{}
	c := NewCommander(rs)

	at := model.Pt(3, 4)
	if err := c.Issue(model.Move(7, model.Pt(1, 2)).WithPrecast("blink", &at)); err != nil {
		t.Fatal(err)
	}
	if err := c.Issue(model.Attack(8, 99)); err != nil {
		t.Fatal(err)
	}
	if err := c.Issue(model.Cast(9, "guardian_shield", nil)); err != nil {
		t.Fatal(err)
	}

	want := []sent{
		{TypeCast, CastCommand{UnitID: 7, Ability: "blink", Target: &at}},
		{TypeMove, MoveCommand{UnitID: 7, X: 1, Y: 2}},
		{TypeAttack, AttackCommand{UnitID: 8, TargetID: 99}},
		{TypeCast, CastCommand{UnitID: 9, Ability: "guardian_shield"}},
	}
	if len(rs.out) != len(want) {
		t.Fatalf("sent %d messages, want %d: %+v", len(rs.out), len(want), rs.out)
	}
	for i := range want {
		if rs.out[i].typ != want[i].typ {
			t.Errorf("message %d type = %s, want %s", i, rs.out[i].typ, want[i].typ)
		}
	}
	if cast := rs.out[0].data.(CastCommand); cast.Target == nil || *cast.Target != at {
		t.Errorf("blink target = %v", cast.Target)
	}
	if mv := rs.out[1].data.(MoveCommand); mv != want[1].data {
		t.Errorf("move = %+v", mv)
	}
}

func TestCommanderStopsWhenPrecastFails(t *testing.T) {
	rs := &recordingSender{err: errors.New("broken pipe")}
	err := NewCommander(rs).Issue(model.Attack(1, 2).WithPrecast("guardian_shield", nil))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(rs.out) != 1 {
		t.Errorf("sent %d messages after a failed cast, want 1", len(rs.out))
	}
}

func TestConnectionDispatchesAndReplies(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	conn := NewConnection(server, nil, nil)
	conn.RegisterHandler(TypeHello, func(env Envelope) (*Envelope, error) {
		var hello HelloMessage
		if err := env.Decode(&hello); err != nil {
			return nil, err
		}
		conn.Player = hello.Player
		ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok", Session: "s1"})
		return &ack, err
	})
	done := make(chan struct{})
	go func() {
		conn.ReadLoop()
		close(done)
	}()

	client.SetDeadline(time.Now().Add(2 * time.Second))
	unknown, _ := NewEnvelope("bogus", struct{}{})
	if err := WriteEnvelope(client, unknown); err != nil {
		t.Fatal(err)
	}
	hello, _ := NewEnvelope(TypeHello, HelloMessage{Player: "p2"})
	if err := WriteEnvelope(client, hello); err != nil {
		t.Fatal(err)
	}

	resp, err := ReadEnvelope(client)
	if err != nil {
		t.Fatal(err)
	}
	var ack AckMessage
	if err := resp.Decode(&ack); err != nil {
		t.Fatal(err)
	}
	if resp.Type != TypeAck || ack.Status != "ok" || ack.Session != "s1" {
		t.Errorf("reply = %s %+v", resp.Type, ack)
	}

	client.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ReadLoop did not exit after close")
	}
	if conn.Player != "p2" {
		t.Errorf("Player = %q", conn.Player)
	}
}
