package ipc

// These constants must stay in sync with the bridge's message types.
const (
	TypeHello     = "hello"
	TypeAck       = "ack"
	TypeGameState = "game_state"
)

type HelloMessage struct {
	Player string `json:"player"`
	Race   string `json:"race"`
	// Engine optionally overrides the doctrine's unit engine for this session.
	Engine string `json:"engine,omitempty"`
}

type AckMessage struct {
	Status  string `json:"status"`
	Session string `json:"session,omitempty"`
}
