// Package agent turns the bridge's per-step game states into unit commands.
package agent

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nstehr/cohort/config"
	"github.com/nstehr/cohort/ipc"
	"github.com/nstehr/cohort/metrics"
	"github.com/nstehr/cohort/model"
	"github.com/nstehr/cohort/unit"
)

var ErrNoHello = errors.New("agent: game state before hello")

// Agent owns the decision-making for a single player session.
type Agent struct {
	Player  string
	Race    string
	Session string

	out      ipc.Sender
	doctrine config.Doctrine
	metrics  *metrics.Recorder
	logger   *slog.Logger
	orch     *Orchestrator
}

func New(out ipc.Sender, d config.Doctrine, rec *metrics.Recorder, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	session := uuid.NewString()
	return &Agent{
		Session:  session,
		out:      out,
		doctrine: d,
		metrics:  rec,
		logger:   logger.With("session", session),
	}
}

// Logger is the session-scoped logger.
func (a *Agent) Logger() *slog.Logger { return a.logger }

// HandleHello completes the handshake so the bridge knows the bot is ready.
// A second hello starts a fresh match.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}

	var engine unit.Engine
	if hello.Engine != "" {
		e, err := unit.ParseEngine(hello.Engine)
		if err != nil {
			return nil, fmt.Errorf("hello from %s: %w", hello.Player, err)
		}
		engine = e
	}

	a.Player = hello.Player
	a.Race = hello.Race
	a.logger = a.logger.With("player", a.Player)
	orch, err := NewOrchestrator(a.doctrine, ipc.NewCommander(a.out), Options{
		Logger:  a.logger,
		Metrics: a.metrics,
		Engine:  engine,
	})
	if err != nil {
		return nil, fmt.Errorf("start orchestrator: %w", err)
	}
	a.orch = orch
	a.logger.Info("player identified", "race", a.Race, "engine", orch.Engine(), "doctrine", a.doctrine.Name)

	return a.ack()
}

func (a *Agent) HandleGameState(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.orch == nil {
		return nil, ErrNoHello
	}
	var gs model.GameState
	if err := env.Decode(&gs); err != nil {
		return nil, err
	}

	a.logger.Debug("game state received",
		"tick", gs.Tick,
		"units", len(gs.Units),
		"structures", len(gs.Structures),
		"enemies", len(gs.Enemies),
		"enemyStructures", len(gs.EnemyStructures),
	)
	a.orch.Step(&gs)

	return a.ack()
}

func (a *Agent) ack() (*ipc.Envelope, error) {
	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Session: a.Session})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// Register wires the agent's handlers onto a connection.
func (a *Agent) Register(c *ipc.Connection) {
	c.RegisterHandler(ipc.TypeHello, func(env ipc.Envelope) (*ipc.Envelope, error) {
		resp, err := a.HandleHello(env)
		if err == nil {
			c.Player = a.Player
		}
		return resp, err
	})
	c.RegisterHandler(ipc.TypeGameState, a.HandleGameState)
}
