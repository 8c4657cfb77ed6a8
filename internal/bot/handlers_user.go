package bot

import (
	"github.com/m3rciful/keybot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/keybot/core/telegram/helpers"
	"github.com/m3rciful/keybot/internal/tariffs"

	tele "gopkg.in/telebot.v4"
)

func (a *App) mainMenu() *tele.ReplyMarkup {
	return mainMenuKeyboard(a.cfg.Shop.SupportURL)
}

// handleStart registers the user and shows the main menu. Any flow in
// progress is dropped, /start always lands on a clean slate.
func (a *App) handleStart(c tele.Context) error {
	sender := c.Sender()
	if err := a.registerSender(c); err != nil {
		return err
	}
	a.fsm.Clear(sender.ID)
	return tghelpers.SendMD(c, textWelcome, a.mainMenu())
}

// registerSender records the sender on first contact. The stored profile
// is a snapshot and is not refreshed afterwards.
func (a *App) registerSender(c tele.Context) error {
	sender := c.Sender()
	var username *string
	if sender.Username != "" {
		username = &sender.Username
	}
	return a.users.Register(tghelpers.BuildContext(c), sender.ID, username)
}

func (a *App) cbMenuHandler(c tele.Context) error {
	if err := a.registerSender(c); err != nil {
		return err
	}
	a.fsm.Clear(c.Sender().ID)
	return tghelpers.EditOrSendMD(c, textWelcome, a.mainMenu())
}

func (a *App) cbBuyHandler(c tele.Context) error {
	return tghelpers.EditOrSendMD(c, textChooseTariff, tariffsKeyboard())
}

// cbTariffHandler starts the proof-submission flow for the picked tariff.
func (a *App) cbTariffHandler(c tele.Context) error {
	days, err := callbacks.PayloadInt(c)
	if err != nil {
		return tghelpers.SendText(c, textStaleAction)
	}
	t, ok := tariffs.ByDays(days)
	if !ok {
		return tghelpers.SendText(c, textStaleAction)
	}
	a.fsm.SetAwaitingProof(c.Sender().ID, t)
	text := requisitesText(t, a.cfg.Shop.Requisites, a.cfg.Shop.PaymentComment)
	return tghelpers.EditOrSendMD(c, text, backToMenuKeyboard())
}

func (a *App) handleMyKeys(c tele.Context) error {
	keys, err := a.keys.ListForUser(tghelpers.BuildContext(c), c.Sender().ID)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return tghelpers.EditOrSendMD(c, textNoKeys, backToMenuKeyboard())
	}
	return tghelpers.EditOrSendMD(c, keysListText(keys), backToMenuKeyboard())
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.EditOrSendMD(c, textHelp, backToMenuKeyboard())
}

func (a *App) handleMyID(c tele.Context) error {
	sender := c.Sender()
	return tghelpers.SendMD(c, myIDText(sender.ID, a.cfg.Core.Telegram.IsAdmin(sender.ID)))
}

// handleCancel aborts whatever flow the user is in.
func (a *App) handleCancel(c tele.Context) error {
	userID := c.Sender().ID
	if !a.fsm.InProgress(userID) {
		return tghelpers.SendText(c, textNothingToCancel)
	}
	a.fsm.Clear(userID)
	return tghelpers.SendMD(c, textCancelled, a.mainMenu())
}
