package state

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and temporary data for a user.
type Session struct {
	State    State          `json:"state"`
	TempData map[string]any `json:"temp_data"`
}

// Manager orchestrates user sessions and FSM state transitions.
// Users are keyed by their WhatsApp phone identifier.
type Manager interface {
	Get(userID string) *Session
	SetState(userID string, st State)
	GetState(userID string) State
	HasState(userID string) bool
	ClearState(userID string)

	SetTemp(userID string, key string, value any)
	GetTemp(userID string, key string) (any, bool)
	GetTempString(userID string, key string) (string, bool)
	GetTempInt64(userID string, key string) (int64, bool)
	ClearTemp(userID string, key string)

	Clear(userID string)
	InProgress(userID string) bool
}
