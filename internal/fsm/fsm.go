// Package fsm tracks per-user conversation state for the multi-step
// purchase, key-issue, and reply flows.
package fsm

import (
	"log/slog"
	"sync"

	"github.com/m3rciful/keybot/core/logger"
	tghelpers "github.com/m3rciful/keybot/core/telegram/helpers"
	"github.com/m3rciful/keybot/internal/tariffs"

	tele "gopkg.in/telebot.v4"
)

// Conversation states. StateIdle means no flow in progress.
const (
	StateIdle          = ""
	StateAwaitingProof = "awaiting_proof"
	StateAwaitingKey   = "awaiting_key"
	StateAwaitingReply = "awaiting_reply"
)

// ProofPayload accompanies StateAwaitingProof: the buyer picked a tariff
// and must now send a payment screenshot.
type ProofPayload struct {
	Tariff tariffs.Tariff
}

// KeyInputPayload accompanies StateAwaitingKey: the admin approved a
// payment and must now type the key to deliver.
type KeyInputPayload struct {
	PaymentID     int64
	RecipientID   int64
	RecipientName string
	Amount        float64
	DurationDays  int
}

// ReplyPayload accompanies StateAwaitingReply: the admin is composing a
// free-form message to the buyer of a payment.
type ReplyPayload struct {
	PaymentID     int64
	RecipientID   int64
	RecipientName string
}

// session is a tagged union: state names the active branch and exactly
// one payload pointer is non-nil for non-idle states.
type session struct {
	state    string
	proof    *ProofPayload
	keyInput *KeyInputPayload
	reply    *ReplyPayload
}

// Manager stores sessions in memory and dispatches text/photo updates to
// the handler registered for the actor's current state.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]session

	textHandlers  map[string]tele.HandlerFunc
	photoHandlers map[string]tele.HandlerFunc
}

func NewManager() *Manager {
	return &Manager{
		sessions:      make(map[int64]session),
		textHandlers:  make(map[string]tele.HandlerFunc),
		photoHandlers: make(map[string]tele.HandlerFunc),
	}
}

// OnText registers the text handler for a state.
func (m *Manager) OnText(state string, h tele.HandlerFunc) {
	m.textHandlers[state] = h
}

// OnPhoto registers the photo handler for a state.
func (m *Manager) OnPhoto(state string, h tele.HandlerFunc) {
	m.photoHandlers[state] = h
}

// SetAwaitingProof starts the proof-submission flow, replacing any flow
// already in progress for the user.
func (m *Manager) SetAwaitingProof(userID int64, t tariffs.Tariff) {
	m.set(userID, session{state: StateAwaitingProof, proof: &ProofPayload{Tariff: t}})
}

// SetAwaitingKey starts the key-issue flow for an admin.
func (m *Manager) SetAwaitingKey(userID int64, p KeyInputPayload) {
	m.set(userID, session{state: StateAwaitingKey, keyInput: &p})
}

// SetAwaitingReply starts the reply-composition flow for an admin.
func (m *Manager) SetAwaitingReply(userID int64, p ReplyPayload) {
	m.set(userID, session{state: StateAwaitingReply, reply: &p})
}

func (m *Manager) set(userID int64, s session) {
	m.mu.Lock()
	m.sessions[userID] = s
	m.mu.Unlock()
}

// Clear drops the user's session, returning them to idle.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

// GetState returns the user's current state, StateIdle when none.
func (m *Manager) GetState(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[userID].state
}

// InProgress reports whether the user has any flow in progress.
func (m *Manager) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

// Proof returns the proof payload when the user is awaiting proof.
func (m *Manager) Proof(userID int64) (ProofPayload, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.sessions[userID]
	if s.state != StateAwaitingProof || s.proof == nil {
		return ProofPayload{}, false
	}
	return *s.proof, true
}

// KeyInput returns the key-issue payload when the user is awaiting key input.
func (m *Manager) KeyInput(userID int64) (KeyInputPayload, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.sessions[userID]
	if s.state != StateAwaitingKey || s.keyInput == nil {
		return KeyInputPayload{}, false
	}
	return *s.keyInput, true
}

// Reply returns the reply payload when the user is awaiting reply input.
func (m *Manager) Reply(userID int64) (ReplyPayload, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.sessions[userID]
	if s.state != StateAwaitingReply || s.reply == nil {
		return ReplyPayload{}, false
	}
	return *s.reply, true
}

// ManagerHandler dispatches a text update to the handler for the actor's
// current state. Updates of a kind the state has no handler for are ignored
// without disturbing the session.
func (m *Manager) ManagerHandler(c tele.Context) error {
	return m.dispatch(c, m.textHandlers, "text")
}

// PhotoHandler dispatches a photo update the same way.
func (m *Manager) PhotoHandler(c tele.Context) error {
	return m.dispatch(c, m.photoHandlers, "photo")
}

func (m *Manager) dispatch(c tele.Context, handlers map[string]tele.HandlerFunc, kind string) error {
	userID := c.Sender().ID
	state := m.GetState(userID)
	if state == StateIdle {
		return nil
	}
	h, ok := handlers[state]
	if !ok {
		logger.Debug(tghelpers.BuildContext(c), "tg", "fsm.unhandled",
			slog.Int64("user_id", userID),
			slog.String("state", state),
			slog.String("kind", kind),
		)
		return nil
	}
	return h(c)
}
