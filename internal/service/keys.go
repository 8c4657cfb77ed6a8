package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/keybot/core/apperrors"
	"github.com/m3rciful/keybot/core/logger"
	"github.com/m3rciful/keybot/internal/models"
)

// MinKeyLength is the shortest key value an admin may issue, in characters.
const MinKeyLength = 5

// KeyStore is the slice of the store the keys service needs.
type KeyStore interface {
	AddKey(ctx context.Context, userID int64, secret string, durationDays int) error
	UserKeys(ctx context.Context, userID int64) ([]models.Key, error)
}

// Keys handles access key issuance and listing.
type Keys struct {
	store KeyStore
}

func NewKeys(store KeyStore) *Keys {
	return &Keys{store: store}
}

// ValidateKeyValue checks an admin-typed key before issuance. Length is
// counted in runes, not bytes, so non-ASCII keys are measured fairly.
func ValidateKeyValue(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if utf8.RuneCountInString(key) < MinKeyLength {
		return "", apperrors.Validation("key is too short")
	}
	return key, nil
}

// Issue stores a key for the user.
func (s *Keys) Issue(ctx context.Context, userID int64, secret string, durationDays int) error {
	if err := s.store.AddKey(ctx, userID, secret, durationDays); err != nil {
		logger.LogEvent(ctx, logger.SVCKeys, slog.LevelError, "issue",
			slog.Int64("user_id", userID),
			slog.Int("duration_days", durationDays),
			slog.String("err", err.Error()),
		)
		return apperrors.Internal("issue key", err)
	}
	logger.LogEvent(ctx, logger.SVCKeys, slog.LevelInfo, "issue",
		slog.Int64("user_id", userID),
		slog.Int("duration_days", durationDays),
	)
	return nil
}

// ListForUser returns the user's keys, newest first.
func (s *Keys) ListForUser(ctx context.Context, userID int64) ([]models.Key, error) {
	out, err := s.store.UserKeys(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("list keys", err)
	}
	return out, nil
}
