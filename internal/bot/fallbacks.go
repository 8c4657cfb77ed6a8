package bot

import (
	tghelpers "github.com/m3rciful/keybot/core/telegram/helpers"
	"github.com/m3rciful/keybot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// fallbacks answers updates that match no command, callback, or flow.
type fallbacks struct{}

var _ ui.FallbackProvider = fallbacks{}

func (fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, textUnknown)
	}
}

func (fallbacks) UnknownPhoto() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, textUnexpectedPhoto)
	}
}

func (fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.RespondNotice(c, textStaleAction)
	}
}
