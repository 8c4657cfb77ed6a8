package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/keybot/internal/tariffs"

	tele "gopkg.in/telebot.v4"
)

// fakeCtx implements just enough of tele.Context for dispatch tests.
type fakeCtx struct {
	tele.Context
	sender *tele.User
	store  map[string]any
}

func newFakeCtx(userID int64) *fakeCtx {
	return &fakeCtx{
		sender: &tele.User{ID: userID},
		store:  make(map[string]any),
	}
}

func (f *fakeCtx) Sender() *tele.User { return f.sender }
func (f *fakeCtx) Chat() *tele.Chat   { return &tele.Chat{ID: f.sender.ID} }
func (f *fakeCtx) Update() tele.Update {
	return tele.Update{ID: 1}
}
func (f *fakeCtx) Get(key string) any      { return f.store[key] }
func (f *fakeCtx) Set(key string, val any) { f.store[key] = val }

func TestSessionLifecycle(t *testing.T) {
	m := NewManager()

	assert.False(t, m.InProgress(7))
	assert.Equal(t, StateIdle, m.GetState(7))

	tr, ok := tariffs.ByDays(30)
	require.True(t, ok)

	m.SetAwaitingProof(7, tr)
	assert.True(t, m.InProgress(7))
	assert.Equal(t, StateAwaitingProof, m.GetState(7))

	p, ok := m.Proof(7)
	require.True(t, ok)
	assert.Equal(t, 100, p.Tariff.Price)

	// Payload accessors for other states report absence.
	_, ok = m.KeyInput(7)
	assert.False(t, ok)
	_, ok = m.Reply(7)
	assert.False(t, ok)

	m.Clear(7)
	assert.False(t, m.InProgress(7))
	_, ok = m.Proof(7)
	assert.False(t, ok)
}

func TestStartingNewFlowReplacesOld(t *testing.T) {
	m := NewManager()
	tr, _ := tariffs.ByDays(90)
	m.SetAwaitingProof(42, tr)

	m.SetAwaitingKey(42, KeyInputPayload{
		PaymentID:    9,
		RecipientID:  100,
		Amount:       250,
		DurationDays: 90,
	})

	assert.Equal(t, StateAwaitingKey, m.GetState(42))
	_, ok := m.Proof(42)
	assert.False(t, ok)

	ki, ok := m.KeyInput(42)
	require.True(t, ok)
	assert.Equal(t, int64(9), ki.PaymentID)
	assert.Equal(t, int64(100), ki.RecipientID)
}

func TestSessionsAreIndependent(t *testing.T) {
	m := NewManager()
	tr, _ := tariffs.ByDays(30)
	m.SetAwaitingProof(1, tr)
	m.SetAwaitingReply(2, ReplyPayload{PaymentID: 5, RecipientID: 1})

	assert.Equal(t, StateAwaitingProof, m.GetState(1))
	assert.Equal(t, StateAwaitingReply, m.GetState(2))
	assert.Equal(t, StateIdle, m.GetState(3))
}

func TestDispatchRoutesByState(t *testing.T) {
	m := NewManager()
	var gotText, gotPhoto string

	m.OnText(StateAwaitingKey, func(c tele.Context) error {
		gotText = StateAwaitingKey
		return nil
	})
	m.OnPhoto(StateAwaitingProof, func(c tele.Context) error {
		gotPhoto = StateAwaitingProof
		return nil
	})

	tr, _ := tariffs.ByDays(30)
	m.SetAwaitingProof(10, tr)
	require.NoError(t, m.PhotoHandler(newFakeCtx(10)))
	assert.Equal(t, StateAwaitingProof, gotPhoto)

	m.SetAwaitingKey(10, KeyInputPayload{PaymentID: 1})
	require.NoError(t, m.ManagerHandler(newFakeCtx(10)))
	assert.Equal(t, StateAwaitingKey, gotText)
}

func TestDispatchIgnoresUnhandledKind(t *testing.T) {
	m := NewManager()
	m.SetAwaitingKey(10, KeyInputPayload{PaymentID: 1})

	// No photo handler for the key-input state: the update is dropped
	// and the session survives.
	require.NoError(t, m.PhotoHandler(newFakeCtx(10)))
	assert.Equal(t, StateAwaitingKey, m.GetState(10))
}

func TestDispatchIdleIsNoop(t *testing.T) {
	m := NewManager()
	m.OnText(StateAwaitingKey, func(c tele.Context) error {
		t.Fatal("handler must not run for idle user")
		return nil
	})
	require.NoError(t, m.ManagerHandler(newFakeCtx(99)))
}
