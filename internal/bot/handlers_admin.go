package bot

import (
	"github.com/m3rciful/keybot/core/apperrors"
	"github.com/m3rciful/keybot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/keybot/core/telegram/helpers"
	"github.com/m3rciful/keybot/internal/models"

	tele "gopkg.in/telebot.v4"
)

func (a *App) handleAdmin(c tele.Context) error {
	return tghelpers.EditOrSendMD(c, adminPanelText(), adminPanelKeyboard())
}

func (a *App) cbStatsHandler(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	users, err := a.users.Count(ctx)
	if err != nil {
		return err
	}
	all, err := a.payments.All(ctx)
	if err != nil {
		return err
	}
	pending := 0
	for _, p := range all {
		if p.Status == models.PaymentStatusPending {
			pending++
		}
	}
	return tghelpers.EditOrSendMD(c, adminStatsText(users, len(all), pending), backToAdminKeyboard())
}

// cbPendingHandler re-sends each pending payment as a reviewable card.
func (a *App) cbPendingHandler(c tele.Context) error {
	pending, err := a.payments.Pending(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return tghelpers.EditOrSendMD(c, "No payments awaiting review.", backToAdminKeyboard())
	}
	for _, p := range pending {
		if err := a.sendPaymentCard(c, cardFromPayment(p)); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) sendPaymentCard(c tele.Context, card paymentCard) error {
	photo := &tele.Photo{
		File:    tele.File{FileID: card.PhotoFileID},
		Caption: proofCaption(card),
	}
	opts := &tele.SendOptions{
		ParseMode:   tele.ModeMarkdown,
		ReplyMarkup: paymentActionsKeyboard(card.ID),
	}
	return a.sendTo(c, c.Chat(), photo, opts)
}

func (a *App) cbAllPaymentsHandler(c tele.Context) error {
	all, err := a.payments.All(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	// Plain text: usernames would break Markdown parsing.
	return c.EditOrSend(paymentsListText("All payments", all), backToAdminKeyboard())
}

// cbApproveHandler starts the key-issue flow for a pending payment.
func (a *App) cbApproveHandler(c tele.Context) error {
	paymentID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.SendText(c, textStaleAction)
	}
	p, err := a.payments.Get(tghelpers.BuildContext(c), paymentID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return tghelpers.SendText(c, textStaleAction)
		}
		return err
	}
	if p.Status != models.PaymentStatusPending {
		return tghelpers.SendText(c, textAlreadyProcessed)
	}

	card := cardFromPayment(p)
	a.fsm.SetAwaitingKey(c.Sender().ID, keyInputPayload(card))
	return tghelpers.SendMD(c, enterKeyText(card))
}

// cbReplyHandler starts the reply flow for a payment's buyer.
func (a *App) cbReplyHandler(c tele.Context) error {
	paymentID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.SendText(c, textStaleAction)
	}
	p, err := a.payments.Get(tghelpers.BuildContext(c), paymentID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return tghelpers.SendText(c, textStaleAction)
		}
		return err
	}

	card := cardFromPayment(p)
	a.fsm.SetAwaitingReply(c.Sender().ID, replyPayload(card))
	return tghelpers.SendMD(c, enterReplyText(card))
}

// cbDeleteHandler removes a payment without notifying the buyer.
func (a *App) cbDeleteHandler(c tele.Context) error {
	paymentID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.SendText(c, textStaleAction)
	}
	deleted, err := a.payments.Delete(tghelpers.BuildContext(c), paymentID)
	if err != nil {
		return err
	}
	if !deleted {
		return tghelpers.SendText(c, textStaleAction)
	}
	// Drop the card message so the queue view stays tidy.
	_ = c.Delete()
	return nil
}
