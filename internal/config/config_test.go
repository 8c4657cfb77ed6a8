package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const validYAML = `
telegram:
  token: "123:abc"
  admin_ids: [111, 222]
database:
  user: keybot
  password: secret
  name: keybot
shop:
  requisites: "Card 1234 5678"
  support_url: "https://t.me/support"
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Core.Telegram.Token)
	assert.Equal(t, []int64{111, 222}, cfg.Core.Telegram.AdminIDs)
	assert.True(t, cfg.Core.Telegram.IsAdmin(111))
	assert.False(t, cfg.Core.Telegram.IsAdmin(333))

	// Defaults applied by Normalize.
	assert.Equal(t, "longpoll", cfg.Core.Telegram.RunMode)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "order", cfg.Shop.PaymentComment)

	assert.Equal(t, "Card 1234 5678", cfg.Shop.Requisites)
	assert.Same(t, &cfg.Core, cfg.CoreConfig())
}

func TestLoadRejectsMissingAdmins(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
database:
  user: keybot
  name: keybot
shop:
  requisites: "Card"
`))
	assert.ErrorContains(t, err, "admin_ids")
}

func TestLoadRejectsMissingRequisites(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
  admin_ids: [1]
database:
  user: keybot
  name: keybot
`))
	assert.ErrorContains(t, err, "requisites")
}

func TestLoadRejectsMissingDatabase(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
  admin_ids: [1]
shop:
  requisites: "Card"
`))
	assert.ErrorContains(t, err, "database")
}
