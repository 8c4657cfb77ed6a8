package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyExpiry(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), KeyExpiry(created, 30))
	assert.Equal(t, time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC), KeyExpiry(created, 90))
	assert.Equal(t, time.Date(2024, 6, 29, 12, 0, 0, 0, time.UTC), KeyExpiry(created, 180))
	assert.Equal(t, time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC), KeyExpiry(created, 365))
}

func TestUserDisplayName(t *testing.T) {
	name := "alice"
	empty := ""

	assert.Equal(t, "@alice", User{Username: &name}.DisplayName())
	assert.Equal(t, "user", User{}.DisplayName())
	assert.Equal(t, "user", User{Username: &empty}.DisplayName())
}

func TestPaymentBuyerName(t *testing.T) {
	name := "bob"
	assert.Equal(t, "@bob", Payment{Username: &name}.BuyerName())
	assert.Equal(t, "user", Payment{}.BuyerName())
}
