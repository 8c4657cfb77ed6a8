package bot

import (
	"fmt"
	"strconv"

	"github.com/m3rciful/keybot/core/telegram/keyboard"
	"github.com/m3rciful/keybot/internal/tariffs"

	tele "gopkg.in/telebot.v4"
)

// Callback uniques. Keyboard builders and callback registration must agree
// on these, so they live in one place.
const (
	cbMenu     = "menu"
	cbBuy      = "buy"
	cbMyKeys   = "my_keys"
	cbHelp     = "help"
	cbTariff   = "tariff"
	cbApprove  = "approve"
	cbReply    = "reply"
	cbDelete   = "delete"
	cbStats    = "adm_stats"
	cbPending  = "adm_pending"
	cbAllPays  = "adm_all"
	cbAdminTop = "adm_menu"
)

func mainMenuKeyboard(supportURL string) *tele.ReplyMarkup {
	rows := [][]keyboard.InlineBtn{
		{{Text: "🛒 Buy key", Unique: cbBuy}},
		{{Text: "🔑 My keys", Unique: cbMyKeys}, {Text: "❓ FAQ", Unique: cbHelp}},
	}
	if supportURL != "" {
		rows = append(rows, []keyboard.InlineBtn{{Text: "🆘 Support", URL: supportURL}})
	}
	return keyboard.InlineButtonsRows(rows...)
}

func tariffsKeyboard() *tele.ReplyMarkup {
	cat := tariffs.Catalog()
	buttons := make([]keyboard.InlineBtn, 0, len(cat))
	for _, t := range cat {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("%s — %d ₽", t.Label, t.Price),
			Unique: cbTariff,
			Data:   strconv.Itoa(t.Days),
		})
	}
	markup := keyboard.InlineButtonsNPerRow(buttons, 2)
	markup.InlineKeyboard = append(markup.InlineKeyboard,
		[]tele.InlineButton{*markup.Data("⬅️ Back", cbMenu).Inline()})
	return markup
}

func backToMenuKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⬅️ Back", Unique: cbMenu},
	})
}

func paymentActionsKeyboard(paymentID int64) *tele.ReplyMarkup {
	id := strconv.FormatInt(paymentID, 10)
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "✅ Approve", Unique: cbApprove, Data: id},
		},
		[]keyboard.InlineBtn{
			{Text: "✉️ Reply", Unique: cbReply, Data: id},
			{Text: "🗑 Delete", Unique: cbDelete, Data: id},
		},
	)
}

func adminPanelKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "📊 Stats", Unique: cbStats}},
		[]keyboard.InlineBtn{{Text: "🕒 Pending", Unique: cbPending}},
		[]keyboard.InlineBtn{{Text: "📜 All payments", Unique: cbAllPays}},
	)
}

func backToAdminKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⬅️ Back", Unique: cbAdminTop},
	})
}
