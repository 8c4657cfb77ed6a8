package service

import (
	"context"
	"log/slog"

	"github.com/m3rciful/keybot/core/apperrors"
	"github.com/m3rciful/keybot/core/logger"
	"github.com/m3rciful/keybot/internal/models"
)

// PaymentStore is the slice of the store the payments service needs.
type PaymentStore interface {
	CreatePayment(ctx context.Context, userID int64, amount float64, durationDays int, photoFileID string) (int64, error)
	PaymentByID(ctx context.Context, id int64) (models.Payment, error)
	PendingPayments(ctx context.Context) ([]models.Payment, error)
	AllPayments(ctx context.Context) ([]models.Payment, error)
	ApprovePayment(ctx context.Context, paymentID int64, issuedSecret string) error
	DeletePayment(ctx context.Context, paymentID int64) (bool, error)
}

// Payments handles the purchase review queue.
type Payments struct {
	store PaymentStore
}

func NewPayments(store PaymentStore) *Payments {
	return &Payments{store: store}
}

// Create records a pending payment with its proof photo.
func (s *Payments) Create(ctx context.Context, userID int64, amount float64, durationDays int, photoFileID string) (int64, error) {
	id, err := s.store.CreatePayment(ctx, userID, amount, durationDays, photoFileID)
	if err != nil {
		logger.LogEvent(ctx, logger.SVCPayments, slog.LevelError, "create",
			slog.Int64("user_id", userID),
			slog.Float64("amount", amount),
			slog.String("err", err.Error()),
		)
		return 0, apperrors.Internal("create payment", err)
	}
	logger.LogEvent(ctx, logger.SVCPayments, slog.LevelInfo, "create",
		slog.Int64("payment_id", id),
		slog.Int64("user_id", userID),
		slog.Float64("amount", amount),
		slog.Int("duration_days", durationDays),
	)
	return id, nil
}

// Get fetches a payment with its buyer username.
func (s *Payments) Get(ctx context.Context, paymentID int64) (models.Payment, error) {
	p, err := s.store.PaymentByID(ctx, paymentID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return models.Payment{}, err
		}
		return models.Payment{}, apperrors.Internal("get payment", err)
	}
	return p, nil
}

// Pending lists payments awaiting review, oldest first.
func (s *Payments) Pending(ctx context.Context) ([]models.Payment, error) {
	out, err := s.store.PendingPayments(ctx)
	if err != nil {
		return nil, apperrors.Internal("pending payments", err)
	}
	return out, nil
}

// All lists every payment, newest first.
func (s *Payments) All(ctx context.Context) ([]models.Payment, error) {
	out, err := s.store.AllPayments(ctx)
	if err != nil {
		return nil, apperrors.Internal("all payments", err)
	}
	return out, nil
}

// Approve marks a pending payment approved and remembers the issued key.
// A stale or already reviewed payment surfaces as not-found.
func (s *Payments) Approve(ctx context.Context, paymentID int64, issuedSecret string) error {
	if err := s.store.ApprovePayment(ctx, paymentID, issuedSecret); err != nil {
		if apperrors.IsNotFound(err) {
			logger.LogEvent(ctx, logger.SVCPayments, slog.LevelWarn, "approve.stale",
				slog.Int64("payment_id", paymentID),
			)
			return err
		}
		logger.LogEvent(ctx, logger.SVCPayments, slog.LevelError, "approve",
			slog.Int64("payment_id", paymentID),
			slog.String("err", err.Error()),
		)
		return apperrors.Internal("approve payment", err)
	}
	logger.LogEvent(ctx, logger.SVCPayments, slog.LevelInfo, "approve",
		slog.Int64("payment_id", paymentID),
	)
	return nil
}

// Delete removes a payment from the queue. Reports whether it existed.
func (s *Payments) Delete(ctx context.Context, paymentID int64) (bool, error) {
	deleted, err := s.store.DeletePayment(ctx, paymentID)
	if err != nil {
		logger.LogEvent(ctx, logger.SVCPayments, slog.LevelError, "delete",
			slog.Int64("payment_id", paymentID),
			slog.String("err", err.Error()),
		)
		return false, apperrors.Internal("delete payment", err)
	}
	logger.LogEvent(ctx, logger.SVCPayments, slog.LevelInfo, "delete",
		slog.Int64("payment_id", paymentID),
		slog.Bool("existed", deleted),
	)
	return deleted, nil
}
