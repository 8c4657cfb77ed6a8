// Package storage implements Postgres persistence for users, payments,
// and issued keys on top of sqlx.
package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/m3rciful/keybot/core/apperrors"
	"github.com/m3rciful/keybot/internal/models"
)

// Store wraps the database handle with typed queries.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// UpsertUser registers the user on first contact. Repeat contacts are
// no-ops, so the stored username is a snapshot and can go stale.
func (s *Store) UpsertUser(ctx context.Context, userID int64, username *string) error {
	const q = `
		INSERT INTO users (user_id, username)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, q, userID, username); err != nil {
		return errors.Wrap(err, "upsert user")
	}
	return nil
}

// CountUsers returns the number of registered users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	return n, nil
}

// CreatePayment records a pending purchase with its proof photo and
// returns the new payment id.
func (s *Store) CreatePayment(ctx context.Context, userID int64, amount float64, durationDays int, photoFileID string) (int64, error) {
	const q = `
		INSERT INTO payments (user_id, amount, duration_days, photo_file_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id int64
	err := s.db.GetContext(ctx, &id, q, userID, amount, durationDays, photoFileID, models.PaymentStatusPending)
	if err != nil {
		return 0, errors.Wrap(err, "create payment")
	}
	return id, nil
}

// PaymentByID fetches a payment together with the buyer's username.
func (s *Store) PaymentByID(ctx context.Context, id int64) (models.Payment, error) {
	const q = `
		SELECT p.id, p.user_id, p.amount, p.duration_days, p.photo_file_id,
		       p.status, p.created_at, p.issued_secret, u.username
		FROM payments p
		JOIN users u ON u.user_id = p.user_id
		WHERE p.id = $1`
	var p models.Payment
	err := s.db.GetContext(ctx, &p, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Payment{}, apperrors.NotFound("payment not found")
	}
	if err != nil {
		return models.Payment{}, errors.Wrap(err, "payment by id")
	}
	return p, nil
}

// PendingPayments lists payments still awaiting review, oldest first.
func (s *Store) PendingPayments(ctx context.Context) ([]models.Payment, error) {
	const q = `
		SELECT p.id, p.user_id, p.amount, p.duration_days, p.photo_file_id,
		       p.status, p.created_at, p.issued_secret, u.username
		FROM payments p
		JOIN users u ON u.user_id = p.user_id
		WHERE p.status = $1
		ORDER BY p.created_at ASC, p.id ASC`
	var out []models.Payment
	if err := s.db.SelectContext(ctx, &out, q, models.PaymentStatusPending); err != nil {
		return nil, errors.Wrap(err, "pending payments")
	}
	return out, nil
}

// AllPayments lists every payment, newest first.
func (s *Store) AllPayments(ctx context.Context) ([]models.Payment, error) {
	const q = `
		SELECT p.id, p.user_id, p.amount, p.duration_days, p.photo_file_id,
		       p.status, p.created_at, p.issued_secret, u.username
		FROM payments p
		JOIN users u ON u.user_id = p.user_id
		ORDER BY p.created_at DESC, p.id DESC`
	var out []models.Payment
	if err := s.db.SelectContext(ctx, &out, q); err != nil {
		return nil, errors.Wrap(err, "all payments")
	}
	return out, nil
}

// ApprovePayment flips a pending payment to approved and stores the
// delivered secret. Approving a missing or already reviewed payment
// reports a not-found error so callers can tell the admin the card is stale.
func (s *Store) ApprovePayment(ctx context.Context, paymentID int64, issuedSecret string) error {
	const q = `
		UPDATE payments
		SET status = $1, issued_secret = $2
		WHERE id = $3 AND status = $4`
	res, err := s.db.ExecContext(ctx, q, models.PaymentStatusApproved, issuedSecret, paymentID, models.PaymentStatusPending)
	if err != nil {
		return errors.Wrap(err, "approve payment")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "approve payment: rows affected")
	}
	if affected == 0 {
		return apperrors.NotFound("payment is not pending")
	}
	return nil
}

// DeletePayment removes a payment and reports whether a row was deleted.
func (s *Store) DeletePayment(ctx context.Context, paymentID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, paymentID)
	if err != nil {
		return false, errors.Wrap(err, "delete payment")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "delete payment: rows affected")
	}
	return affected > 0, nil
}

// AddKey stores a delivered access key. Expiry is fixed at insert time
// as created_at plus the duration in calendar days.
func (s *Store) AddKey(ctx context.Context, userID int64, secret string, durationDays int) error {
	const q = `
		INSERT INTO keys (user_id, secret, duration_days, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`
	now := time.Now().UTC()
	expires := models.KeyExpiry(now, durationDays)
	if _, err := s.db.ExecContext(ctx, q, userID, secret, durationDays, now, expires); err != nil {
		return errors.Wrap(err, "add key")
	}
	return nil
}

// UserKeys lists the user's keys, newest first.
func (s *Store) UserKeys(ctx context.Context, userID int64) ([]models.Key, error) {
	const q = `
		SELECT id, user_id, secret, duration_days, config_url, is_active, created_at, expires_at
		FROM keys
		WHERE user_id = $1
		ORDER BY created_at DESC`
	var out []models.Key
	if err := s.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, errors.Wrap(err, "user keys")
	}
	return out, nil
}
