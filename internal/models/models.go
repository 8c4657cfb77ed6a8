package models

import "time"

// Payment statuses as stored in the payments table.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
)

// User is a Telegram account known to the shop. Rows are created on first
// contact and never mutated, so username can go stale.
type User struct {
	UserID       int64     `db:"user_id"`
	Username     *string   `db:"username"`
	RegisteredAt time.Time `db:"registered_at"`
}

// DisplayName returns the best human-readable handle for the user.
func (u User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return "@" + *u.Username
	}
	return "user"
}

// Key is an access key issued to a user for a fixed number of days.
// IsActive is stored at creation and no process ever flips it, so keys
// past expiry still carry is_active = true.
type Key struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	Secret       string    `db:"secret"`
	DurationDays int       `db:"duration_days"`
	ConfigURL    string    `db:"config_url"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// KeyExpiry computes expiry by calendar days from the issue time.
func KeyExpiry(createdAt time.Time, durationDays int) time.Time {
	return createdAt.AddDate(0, 0, durationDays)
}

// Payment is a purchase request awaiting or past admin review.
type Payment struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	Amount       float64   `db:"amount"`
	DurationDays int       `db:"duration_days"`
	PhotoFileID  string    `db:"photo_file_id"`
	Status       string    `db:"status"`
	IssuedSecret *string   `db:"issued_secret"`
	CreatedAt    time.Time `db:"created_at"`

	// Username is populated by queries joining the users table.
	Username *string `db:"username"`
}

// BuyerName returns the buyer handle for admin-facing messages.
func (p Payment) BuyerName() string {
	if p.Username != nil && *p.Username != "" {
		return "@" + *p.Username
	}
	return "user"
}
