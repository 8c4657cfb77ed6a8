package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/keybot/core/apperrors"
	appconfig "github.com/m3rciful/keybot/internal/config"
	"github.com/m3rciful/keybot/internal/fsm"
	"github.com/m3rciful/keybot/internal/tariffs"

	tele "gopkg.in/telebot.v4"
)

// fakeCtx implements the slice of tele.Context the handlers touch.
type fakeCtx struct {
	tele.Context
	sender  *tele.User
	text    string
	cbData  string
	message *tele.Message
	store   map[string]any

	sent      []string
	responded []*tele.CallbackResponse
	deleted   bool
}

func newCtx(userID int64) *fakeCtx {
	return &fakeCtx{
		sender: &tele.User{ID: userID},
		store:  make(map[string]any),
	}
}

func (f *fakeCtx) Sender() *tele.User    { return f.sender }
func (f *fakeCtx) Chat() *tele.Chat      { return &tele.Chat{ID: f.sender.ID} }
func (f *fakeCtx) Update() tele.Update   { return tele.Update{ID: 1} }
func (f *fakeCtx) Text() string          { return f.text }
func (f *fakeCtx) Message() *tele.Message {
	return f.message
}
func (f *fakeCtx) Callback() *tele.Callback {
	if f.cbData == "" {
		return nil
	}
	return &tele.Callback{Data: f.cbData}
}
func (f *fakeCtx) Get(key string) any      { return f.store[key] }
func (f *fakeCtx) Set(key string, val any) { f.store[key] = val }

func (f *fakeCtx) Send(what any, _ ...any) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func (f *fakeCtx) EditOrSend(what any, _ ...any) error {
	return f.Send(what)
}

func (f *fakeCtx) Respond(resp ...*tele.CallbackResponse) error {
	f.responded = append(f.responded, resp...)
	return nil
}

func (f *fakeCtx) Delete() error {
	f.deleted = true
	return nil
}

func (f *fakeCtx) lastSent(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func testConfig() *appconfig.Config {
	cfg := &appconfig.Config{}
	cfg.Core.Telegram.AdminIDs = []int64{1}
	cfg.Shop = appconfig.ShopConfig{
		Requisites:     "Card 1111 2222",
		PaymentComment: "key order",
	}
	return cfg
}

// newTestApp builds the app without a store; tests using it stay on paths
// that never touch the services.
func newTestApp() *App {
	return newApp(testConfig(), nil, nil, nil)
}

func TestHandleCancel(t *testing.T) {
	a := newTestApp()

	c := newCtx(5)
	require.NoError(t, a.handleCancel(c))
	assert.Equal(t, textNothingToCancel, c.lastSent(t))

	tr, _ := tariffs.ByDays(30)
	a.fsm.SetAwaitingProof(5, tr)

	c = newCtx(5)
	require.NoError(t, a.handleCancel(c))
	assert.Equal(t, textCancelled, c.lastSent(t))
	assert.False(t, a.fsm.InProgress(5))
}

func TestTariffSelectionStartsProofFlow(t *testing.T) {
	a := newTestApp()
	c := newCtx(5)
	c.cbData = "\ftariff|90"

	require.NoError(t, a.cbTariffHandler(c))

	assert.Equal(t, fsm.StateAwaitingProof, a.fsm.GetState(5))
	p, ok := a.fsm.Proof(5)
	require.True(t, ok)
	assert.Equal(t, 90, p.Tariff.Days)

	text := c.lastSent(t)
	assert.Contains(t, text, "Card 1111 2222")
	assert.Contains(t, text, "250")
	assert.Contains(t, text, "key order")
}

func TestTariffSelectionRejectsUnknownDuration(t *testing.T) {
	a := newTestApp()

	c := newCtx(5)
	c.cbData = "\ftariff|999"
	require.NoError(t, a.cbTariffHandler(c))
	assert.Equal(t, textStaleAction, c.lastSent(t))
	assert.False(t, a.fsm.InProgress(5))

	c = newCtx(5)
	c.cbData = "\ftariff|not-a-number"
	require.NoError(t, a.cbTariffHandler(c))
	assert.Equal(t, textStaleAction, c.lastSent(t))
}

func TestAwaitProofTextReminds(t *testing.T) {
	a := newTestApp()
	tr, _ := tariffs.ByDays(30)
	a.fsm.SetAwaitingProof(5, tr)

	c := newCtx(5)
	c.text = "here is my payment"
	require.NoError(t, a.onAwaitProofText(c))
	assert.Equal(t, textAwaitProofReminder, c.lastSent(t))
	assert.True(t, a.fsm.InProgress(5))

	c = newCtx(5)
	c.text = "/cancel"
	require.NoError(t, a.onAwaitProofText(c))
	assert.Equal(t, textCancelled, c.lastSent(t))
	assert.False(t, a.fsm.InProgress(5))
}

func TestKeyInputValidation(t *testing.T) {
	a := newTestApp()
	a.fsm.SetAwaitingKey(1, fsm.KeyInputPayload{
		PaymentID:     3,
		RecipientID:   5,
		RecipientName: "@alice",
		Amount:        100,
		DurationDays:  30,
	})

	c := newCtx(1)
	c.text = "abc"
	require.NoError(t, a.onKeyText(c))
	assert.Equal(t, textKeyTooShort, c.lastSent(t))
	// The flow stays open so the admin can retry.
	assert.Equal(t, fsm.StateAwaitingKey, a.fsm.GetState(1))
}

func TestReplyFlowRejectsEmptyMessage(t *testing.T) {
	a := newTestApp()
	a.fsm.SetAwaitingReply(1, fsm.ReplyPayload{PaymentID: 3, RecipientID: 5})

	c := newCtx(1)
	c.text = "   "
	require.NoError(t, a.onReplyText(c))
	assert.Equal(t, textEnterReplyAgain, c.lastSent(t))
	assert.Equal(t, fsm.StateAwaitingReply, a.fsm.GetState(1))
}

func TestAdminOnlyGuard(t *testing.T) {
	a := newTestApp()
	called := false
	guarded := a.adminOnly(func(c tele.Context) error {
		called = true
		return nil
	})

	c := newCtx(2)
	require.NoError(t, guarded(c))
	assert.False(t, called)
	assert.Equal(t, textAdminsOnly, c.lastSent(t))

	c = newCtx(1)
	require.NoError(t, guarded(c))
	assert.True(t, called)
}

func TestRateLimitedNotice(t *testing.T) {
	a := newTestApp()

	c := newCtx(5)
	c.text = "hello"
	require.NoError(t, a.rateLimitedNotice(c))
	assert.Equal(t, textRateLimited, c.lastSent(t))

	// Callback queries are still unanswered at middleware time, so the
	// notice arrives as a popup alert instead of a message.
	c = newCtx(5)
	c.cbData = "\fbuy|"
	require.NoError(t, a.rateLimitedNotice(c))
	require.Len(t, c.responded, 1)
	assert.True(t, c.responded[0].ShowAlert)
	assert.Equal(t, textRateLimited, c.responded[0].Text)
	assert.Empty(t, c.sent)
}

func TestDispatchErrorsReportsAndClearsState(t *testing.T) {
	a := newTestApp()
	tr, _ := tariffs.ByDays(30)
	a.fsm.SetAwaitingProof(5, tr)

	h := a.dispatchErrors(func(tele.Context) error {
		return apperrors.Internal("create payment", errors.New("db down"))
	})
	c := newCtx(5)
	require.Error(t, h(c))
	assert.Contains(t, c.lastSent(t), "create payment")
	assert.False(t, a.fsm.InProgress(5))
}

func TestDispatchErrorsLeavesHandledCodesAlone(t *testing.T) {
	a := newTestApp()
	tr, _ := tariffs.ByDays(30)
	a.fsm.SetAwaitingProof(5, tr)

	h := a.dispatchErrors(func(tele.Context) error {
		return apperrors.Validation("key is too short")
	})
	c := newCtx(5)
	require.Error(t, h(c))
	assert.Empty(t, c.sent)
	assert.True(t, a.fsm.InProgress(5))
}

func TestBuyerLabel(t *testing.T) {
	assert.Equal(t, "user", buyerLabel(nil))
	assert.Equal(t, "user", buyerLabel(&tele.User{}))
	assert.Equal(t, `@bob\_the\_builder`, buyerLabel(&tele.User{Username: "bob_the_builder"}))
	assert.Equal(t, "Alice", buyerLabel(&tele.User{FirstName: "Alice"}))
}
