package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/keybot/core/apperrors"
	"github.com/m3rciful/keybot/internal/models"
)

const testSchema = `
CREATE TABLE IF NOT EXISTS users (
	user_id       BIGINT PRIMARY KEY,
	username      TEXT,
	registered_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS keys (
	id            BIGSERIAL PRIMARY KEY,
	user_id       BIGINT NOT NULL REFERENCES users(user_id),
	secret        TEXT NOT NULL,
	duration_days INT NOT NULL,
	config_url    TEXT NOT NULL DEFAULT '',
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at    TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS payments (
	id            BIGSERIAL PRIMARY KEY,
	user_id       BIGINT NOT NULL REFERENCES users(user_id),
	amount        NUMERIC(10, 2) NOT NULL,
	duration_days INT NOT NULL,
	photo_file_id TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'pending',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	issued_secret TEXT
);`

// testStore connects to the database named by TEST_POSTGRES_DSN and
// resets the schema. Tests are skipped when the variable is unset.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	db.MustExec(testSchema)
	db.MustExec(`TRUNCATE payments, keys, users RESTART IDENTITY CASCADE`)
	return New(db)
}

func strPtr(s string) *string { return &s }

func TestUpsertUserKeepsFirstSnapshot(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, 1, strPtr("alice")))
	require.NoError(t, s.UpsertUser(ctx, 1, strPtr("alice_renamed")))
	require.NoError(t, s.UpsertUser(ctx, 2, nil))

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Repeat contact must not refresh the stored username.
	var stored string
	require.NoError(t, s.db.GetContext(ctx, &stored, `SELECT username FROM users WHERE user_id = 1`))
	assert.Equal(t, "alice", stored)
}

func TestPaymentLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, 1, strPtr("alice")))

	id, err := s.CreatePayment(ctx, 1, 250, 90, "photo-file-id")
	require.NoError(t, err)
	require.NotZero(t, id)

	p, err := s.PaymentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, p.Status)
	assert.InDelta(t, 250, p.Amount, 0.001)
	assert.Equal(t, 90, p.DurationDays)
	require.NotNil(t, p.Username)
	assert.Equal(t, "alice", *p.Username)
	assert.Nil(t, p.IssuedSecret)

	pending, err := s.PendingPayments(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)

	require.NoError(t, s.ApprovePayment(ctx, id, "SECRET-KEY-123"))

	p, err = s.PaymentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, p.Status)
	require.NotNil(t, p.IssuedSecret)
	assert.Equal(t, "SECRET-KEY-123", *p.IssuedSecret)

	pending, err = s.PendingPayments(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApproveIsSingleShot(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, 1, nil))
	id, err := s.CreatePayment(ctx, 1, 100, 30, "photo")
	require.NoError(t, err)

	require.NoError(t, s.ApprovePayment(ctx, id, "KEY-1"))

	err = s.ApprovePayment(ctx, id, "KEY-2")
	assert.True(t, apperrors.IsNotFound(err))

	err = s.ApprovePayment(ctx, id+1000, "KEY-3")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPaymentByIDMissing(t *testing.T) {
	s := testStore(t)

	_, err := s.PaymentByID(context.Background(), 12345)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeletePayment(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, 1, nil))
	id, err := s.CreatePayment(ctx, 1, 100, 30, "photo")
	require.NoError(t, err)

	deleted, err := s.DeletePayment(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeletePayment(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestKeys(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, 1, nil))
	require.NoError(t, s.AddKey(ctx, 1, "KEY-OLD", 30))
	require.NoError(t, s.AddKey(ctx, 1, "KEY-NEW", 90))

	keys, err := s.UserKeys(ctx, 1)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	for _, k := range keys {
		assert.True(t, k.IsActive)
		want := models.KeyExpiry(k.CreatedAt, k.DurationDays)
		assert.WithinDuration(t, want, k.ExpiresAt, time.Second)
	}

	keys, err = s.UserKeys(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestAllPaymentsNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, 1, nil))
	first, err := s.CreatePayment(ctx, 1, 100, 30, "p1")
	require.NoError(t, err)
	second, err := s.CreatePayment(ctx, 1, 250, 90, "p2")
	require.NoError(t, err)

	all, err := s.AllPayments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []int64{second, first}, []int64{all[0].ID, all[1].ID})
}
