package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/keybot/internal/models"
	"github.com/m3rciful/keybot/internal/tariffs"
)

func TestRequisitesText(t *testing.T) {
	tr, _ := tariffs.ByDays(90)
	text := requisitesText(tr, "Card 1234", "order-42")

	assert.Contains(t, text, "3 months")
	assert.Contains(t, text, "250")
	assert.Contains(t, text, "Card 1234")
	assert.Contains(t, text, "order-42")
	assert.Contains(t, text, "/cancel")
}

func TestKeysListText(t *testing.T) {
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	keys := []models.Key{
		{
			Secret:       "KEY-ONE",
			DurationDays: 30,
			IsActive:     true,
			CreatedAt:    created,
			ExpiresAt:    models.KeyExpiry(created, 30),
		},
		{
			Secret:       "KEY-TWO",
			DurationDays: 90,
			ConfigURL:    "https://example.com/cfg/2",
			CreatedAt:    created,
			ExpiresAt:    models.KeyExpiry(created, 90),
		},
	}
	text := keysListText(keys)

	assert.Contains(t, text, "KEY-ONE")
	assert.Contains(t, text, "KEY-TWO")
	assert.Contains(t, text, "active")
	assert.Contains(t, text, "inactive")
	assert.Contains(t, text, "31.05.2024")
	assert.Contains(t, text, "https://example.com/cfg/2")
	assert.Contains(t, text, "1 month")
}

func TestProofCaption(t *testing.T) {
	card := paymentCard{
		ID:           7,
		BuyerID:      100,
		BuyerLabel:   "@alice",
		Amount:       800,
		DurationDays: 365,
	}
	caption := proofCaption(card)

	assert.Contains(t, caption, "#7")
	assert.Contains(t, caption, "@alice")
	assert.Contains(t, caption, "12 months")
	assert.Contains(t, caption, "800")
}

func TestBuyerKeyText(t *testing.T) {
	text := buyerKeyText("SECRET-1", 180)
	assert.Contains(t, text, "SECRET-1")
	assert.Contains(t, text, "6 months")
}

func TestPaymentsListText(t *testing.T) {
	assert.Contains(t, paymentsListText("All payments", nil), "Nothing here yet")

	username := "bob"
	secret := "VERY-LONG-SECRET-KEY"
	list := []models.Payment{{
		ID:           3,
		Amount:       100,
		DurationDays: 30,
		Status:       models.PaymentStatusApproved,
		IssuedSecret: &secret,
		CreatedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Username:     &username,
	}}
	text := paymentsListText("All payments", list)
	assert.Contains(t, text, "✅ #3")
	assert.Contains(t, text, "@bob")
	assert.Contains(t, text, "100 ₽")
	assert.Contains(t, text, "key VERY-LONG-SE…")
	assert.Contains(t, text, "01.05.2024")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "250", formatAmount(250))
	assert.Equal(t, "99.5", formatAmount(99.5))
}

func TestMyIDText(t *testing.T) {
	assert.Contains(t, myIDText(42, false), "42")
	assert.NotContains(t, myIDText(42, false), "administrator")
	assert.Contains(t, myIDText(42, true), "administrator")
}

func TestAdminStatsText(t *testing.T) {
	text := adminStatsText(10, 4, 2)
	assert.Contains(t, text, "Users: 10")
	assert.Contains(t, text, "Payments total: 4")
	assert.Contains(t, text, "Pending review: 2")
}
