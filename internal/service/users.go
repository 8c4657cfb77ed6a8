// Package service wraps the store with application semantics and
// structured logging for each domain area.
package service

import (
	"context"
	"log/slog"

	"github.com/m3rciful/keybot/core/apperrors"
	"github.com/m3rciful/keybot/core/logger"
)

// UserStore is the slice of the store the users service needs.
type UserStore interface {
	UpsertUser(ctx context.Context, userID int64, username *string) error
	CountUsers(ctx context.Context) (int, error)
}

// Users handles account registration and counters.
type Users struct {
	store UserStore
}

func NewUsers(store UserStore) *Users {
	return &Users{store: store}
}

// Register records the user on first contact. Repeat calls are no-ops.
func (s *Users) Register(ctx context.Context, userID int64, username *string) error {
	if err := s.store.UpsertUser(ctx, userID, username); err != nil {
		logger.LogEvent(ctx, logger.SVCUsers, slog.LevelError, "register",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return apperrors.Internal("register user", err)
	}
	logger.LogEvent(ctx, logger.SVCUsers, slog.LevelDebug, "register",
		slog.Int64("user_id", userID),
	)
	return nil
}

// Count returns the total number of registered users.
func (s *Users) Count(ctx context.Context) (int, error) {
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		logger.LogEvent(ctx, logger.SVCUsers, slog.LevelError, "count",
			slog.String("err", err.Error()),
		)
		return 0, apperrors.Internal("count users", err)
	}
	return n, nil
}
