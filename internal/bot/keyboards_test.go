package bot

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/keybot/internal/tariffs"

	tele "gopkg.in/telebot.v4"
)

func TestTariffsKeyboardMatchesCatalog(t *testing.T) {
	kb := tariffsKeyboard()
	cat := tariffs.Catalog()

	// Tariffs laid out two per row, then the back row.
	tariffRows := (len(cat) + 1) / 2
	require.Len(t, kb.InlineKeyboard, tariffRows+1)

	var flat []tele.InlineButton
	for _, row := range kb.InlineKeyboard[:tariffRows] {
		require.LessOrEqual(t, len(row), 2)
		flat = append(flat, row...)
	}
	require.Len(t, flat, len(cat))
	for i, tr := range cat {
		assert.Contains(t, flat[i].Text, tr.Label)
		assert.Contains(t, flat[i].Text, strconv.Itoa(tr.Price))
		assert.Contains(t, flat[i].Data, strconv.Itoa(tr.Days))
	}
	back := kb.InlineKeyboard[tariffRows][0]
	assert.Equal(t, cbMenu, back.Unique)
}

func TestMainMenuKeyboardSupportButton(t *testing.T) {
	withSupport := mainMenuKeyboard("https://t.me/support")
	require.Len(t, withSupport.InlineKeyboard, 3)
	assert.Equal(t, "https://t.me/support", withSupport.InlineKeyboard[2][0].URL)

	withoutSupport := mainMenuKeyboard("")
	assert.Len(t, withoutSupport.InlineKeyboard, 2)
}

func TestPaymentActionsKeyboard(t *testing.T) {
	kb := paymentActionsKeyboard(42)
	require.Len(t, kb.InlineKeyboard, 2)

	var datas []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			datas = append(datas, btn.Data)
		}
	}
	require.Len(t, datas, 3)
	for _, d := range datas {
		assert.Contains(t, d, "42")
	}
}

func TestAdminPanelKeyboard(t *testing.T) {
	kb := adminPanelKeyboard()
	assert.Len(t, kb.InlineKeyboard, 3)
}
