package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/keybot/core/apperrors"
	"github.com/m3rciful/keybot/internal/fsm"
	"github.com/m3rciful/keybot/internal/models"
	"github.com/m3rciful/keybot/internal/service"
	"github.com/m3rciful/keybot/internal/tariffs"

	tele "gopkg.in/telebot.v4"
)

// memStore is an in-memory stand-in for the Postgres store, mirroring its
// guarded-update semantics so the flow tests run without a database.
type memStore struct {
	users    map[int64]*string
	payments map[int64]*models.Payment
	keys     []models.Key
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]*string),
		payments: make(map[int64]*models.Payment),
	}
}

func (m *memStore) UpsertUser(_ context.Context, userID int64, username *string) error {
	if _, ok := m.users[userID]; !ok {
		m.users[userID] = username
	}
	return nil
}

func (m *memStore) CountUsers(context.Context) (int, error) { return len(m.users), nil }

func (m *memStore) CreatePayment(_ context.Context, userID int64, amount float64, durationDays int, photoFileID string) (int64, error) {
	m.nextID++
	m.payments[m.nextID] = &models.Payment{
		ID:           m.nextID,
		UserID:       userID,
		Amount:       amount,
		DurationDays: durationDays,
		PhotoFileID:  photoFileID,
		Status:       models.PaymentStatusPending,
		CreatedAt:    time.Now(),
	}
	return m.nextID, nil
}

func (m *memStore) PaymentByID(_ context.Context, id int64) (models.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return models.Payment{}, apperrors.NotFound("payment not found")
	}
	out := *p
	out.Username = m.users[p.UserID]
	return out, nil
}

func (m *memStore) PendingPayments(ctx context.Context) ([]models.Payment, error) {
	var out []models.Payment
	for id := int64(1); id <= m.nextID; id++ {
		if p, ok := m.payments[id]; ok && p.Status == models.PaymentStatusPending {
			cp, _ := m.PaymentByID(ctx, id)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *memStore) AllPayments(ctx context.Context) ([]models.Payment, error) {
	var out []models.Payment
	for id := m.nextID; id >= 1; id-- {
		if _, ok := m.payments[id]; ok {
			cp, _ := m.PaymentByID(ctx, id)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *memStore) ApprovePayment(_ context.Context, paymentID int64, issuedSecret string) error {
	p, ok := m.payments[paymentID]
	if !ok || p.Status != models.PaymentStatusPending {
		return apperrors.NotFound("payment is not pending")
	}
	p.Status = models.PaymentStatusApproved
	p.IssuedSecret = &issuedSecret
	return nil
}

func (m *memStore) DeletePayment(_ context.Context, paymentID int64) (bool, error) {
	if _, ok := m.payments[paymentID]; !ok {
		return false, nil
	}
	delete(m.payments, paymentID)
	return true, nil
}

func (m *memStore) AddKey(_ context.Context, userID int64, secret string, durationDays int) error {
	now := time.Now()
	m.keys = append(m.keys, models.Key{
		ID:           int64(len(m.keys) + 1),
		UserID:       userID,
		Secret:       secret,
		DurationDays: durationDays,
		IsActive:     true,
		CreatedAt:    now,
		ExpiresAt:    models.KeyExpiry(now, durationDays),
	})
	return nil
}

func (m *memStore) UserKeys(_ context.Context, userID int64) ([]models.Key, error) {
	var out []models.Key
	for i := len(m.keys) - 1; i >= 0; i-- {
		if m.keys[i].UserID == userID {
			out = append(out, m.keys[i])
		}
	}
	return out, nil
}

type outboxItem struct {
	to   tele.Recipient
	what any
}

// outbox captures messages addressed outside the current chat.
type outbox struct {
	async  []outboxItem
	direct []outboxItem
}

func (o *outbox) sendTo(_ tele.Context, to tele.Recipient, what any, _ ...any) error {
	o.async = append(o.async, outboxItem{to: to, what: what})
	return nil
}

func (o *outbox) sendNow(_ tele.Context, to tele.Recipient, what any, _ ...any) error {
	o.direct = append(o.direct, outboxItem{to: to, what: what})
	return nil
}

func newScenarioApp() (*App, *memStore, *outbox) {
	store := newMemStore()
	a := newApp(testConfig(),
		service.NewUsers(store),
		service.NewPayments(store),
		service.NewKeys(store),
	)
	out := &outbox{}
	a.sendTo = out.sendTo
	a.sendNow = out.sendNow
	return a, store, out
}

func TestProofPhotoCreatesPaymentAndNotifiesAdmins(t *testing.T) {
	a, store, out := newScenarioApp()
	a.cfg.Core.Telegram.AdminIDs = []int64{1, 2}

	tr, _ := tariffs.ByDays(90)
	a.fsm.SetAwaitingProof(5, tr)

	c := newCtx(5)
	c.sender.Username = "alice"
	c.message = &tele.Message{Photo: &tele.Photo{File: tele.File{FileID: "proof-90"}}}
	require.NoError(t, a.onProofPhoto(c))

	p, err := store.PaymentByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, p.Status)
	assert.InDelta(t, 250, p.Amount, 0.001)
	assert.Equal(t, 90, p.DurationDays)
	assert.Equal(t, "proof-90", p.PhotoFileID)

	// Every configured admin gets the reviewable card.
	require.Len(t, out.async, 2)
	var notified []int64
	for _, item := range out.async {
		notified = append(notified, item.to.(*tele.User).ID)
		photo, ok := item.what.(*tele.Photo)
		require.True(t, ok)
		assert.Equal(t, "proof-90", photo.FileID)
		assert.Contains(t, photo.Caption, "#1")
		assert.Contains(t, photo.Caption, "@alice")
		assert.Contains(t, photo.Caption, "3 months")
	}
	assert.ElementsMatch(t, []int64{1, 2}, notified)

	assert.False(t, a.fsm.InProgress(5))
	assert.Equal(t, textProofAccepted, c.lastSent(t))
}

func TestApproveFlowIssuesAndDeliversKey(t *testing.T) {
	a, store, out := newScenarioApp()
	ctx := context.Background()

	alice := "alice"
	require.NoError(t, store.UpsertUser(ctx, 5, &alice))
	id, err := store.CreatePayment(ctx, 5, 250, 90, "proof-90")
	require.NoError(t, err)

	c := newCtx(1)
	c.cbData = "\fapprove|1"
	require.NoError(t, a.cbApproveHandler(c))
	assert.Equal(t, fsm.StateAwaitingKey, a.fsm.GetState(1))
	assert.Contains(t, c.lastSent(t), "#1")

	typed := newCtx(1)
	typed.text = "abcde"
	require.NoError(t, a.onKeyText(typed))

	p, err := store.PaymentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, p.Status)
	require.NotNil(t, p.IssuedSecret)
	assert.Equal(t, "abcde", *p.IssuedSecret)

	keys, err := store.UserKeys(ctx, 5)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "abcde", keys[0].Secret)
	assert.Equal(t, 90, keys[0].DurationDays)

	// The buyer receives the key, the admin the confirmation.
	require.Len(t, out.direct, 1)
	assert.Equal(t, int64(5), out.direct[0].to.(*tele.User).ID)
	assert.Contains(t, out.direct[0].what.(string), "abcde")
	assert.Contains(t, typed.lastSent(t), "abcde")
	assert.False(t, a.fsm.InProgress(1))
}

func TestApproveFlowReportsDeliveryFailure(t *testing.T) {
	a, store, _ := newScenarioApp()
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, 5, nil))
	id, err := store.CreatePayment(ctx, 5, 100, 30, "proof-30")
	require.NoError(t, err)

	a.fsm.SetAwaitingKey(1, fsm.KeyInputPayload{
		PaymentID:     id,
		RecipientID:   5,
		RecipientName: "user",
		Amount:        100,
		DurationDays:  30,
	})
	a.sendNow = func(tele.Context, tele.Recipient, any, ...any) error {
		return errors.New("forbidden: bot was blocked by the user")
	}

	c := newCtx(1)
	c.text = "abcde"
	require.NoError(t, a.onKeyText(c))

	// Approval and key stick; only the notification failed.
	p, err := store.PaymentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, p.Status)
	keys, err := store.UserKeys(ctx, 5)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	assert.Contains(t, c.lastSent(t), "could not be delivered")
	assert.False(t, a.fsm.InProgress(1))
}
