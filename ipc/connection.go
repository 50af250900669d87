package ipc

import (
	"io"
	"log/slog"
	"net"
	"sync"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection represents a single bridge instance talking to the bot.
// Each game player gets its own connection, identified after the hello handshake.
type Connection struct {
	conn     net.Conn
	handlers map[string]Handler
	logger   *slog.Logger
	wmu      sync.Mutex
	Player   string
}

func NewConnection(conn net.Conn, handlers map[string]Handler, logger *slog.Logger) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Connection{
		conn:     conn,
		handlers: handlers,
		logger:   logger,
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

// SetLogger swaps the logger, e.g. once the session is identified.
func (c *Connection) SetLogger(logger *slog.Logger) { c.logger = logger }

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.write(env)
}

func (c *Connection) write(env Envelope) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return WriteEnvelope(c.conn, env)
}

// ReadLoop blocks until the connection closes or errors. It owns the conn lifetime
// so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.conn.Close()

	for {
		env, err := ReadEnvelope(c.conn)
		if err != nil {
			c.logger.Info("connection read ended", "player", c.Player, "error", err)
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			c.logger.Warn("no handler for message type", "type", env.Type)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			c.logger.Error("handler error", "type", env.Type, "error", err)
			continue
		}

		if resp != nil {
			if err := c.write(*resp); err != nil {
				c.logger.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
			c.logger.Debug("sent response", "type", resp.Type, "player", c.Player)
		}
	}
}
