package bot

import (
	"log/slog"
	"strings"

	"github.com/m3rciful/keybot/core/apperrors"
	"github.com/m3rciful/keybot/core/logger"
	tghelpers "github.com/m3rciful/keybot/core/telegram/helpers"
	"github.com/m3rciful/keybot/internal/service"

	tele "gopkg.in/telebot.v4"
)

// Flow text handlers run before command routing, so the escape hatch has
// to be recognized here.
func isCancel(c tele.Context) bool {
	return strings.TrimSpace(c.Text()) == "/cancel"
}

// onProofPhoto completes the purchase flow: the buyer sent the receipt.
func (a *App) onProofPhoto(c tele.Context) error {
	sender := c.Sender()
	payload, ok := a.fsm.Proof(sender.ID)
	if !ok {
		return nil
	}

	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return tghelpers.SendMD(c, textAwaitProofReminder)
	}

	ctx := tghelpers.BuildContext(c)
	t := payload.Tariff
	paymentID, err := a.payments.Create(ctx, sender.ID, float64(t.Price), t.Days, msg.Photo.FileID)
	if err != nil {
		return err
	}
	a.fsm.Clear(sender.ID)

	card := paymentCard{
		ID:           paymentID,
		BuyerID:      sender.ID,
		BuyerLabel:   buyerLabel(sender),
		Amount:       float64(t.Price),
		DurationDays: t.Days,
		PhotoFileID:  msg.Photo.FileID,
	}
	a.broadcastProof(c, card)

	return tghelpers.SendMD(c, textProofAccepted, a.mainMenu())
}

// onAwaitProofText nudges the buyer who typed instead of sending a photo.
func (a *App) onAwaitProofText(c tele.Context) error {
	if isCancel(c) {
		return a.handleCancel(c)
	}
	return tghelpers.SendMD(c, textAwaitProofReminder)
}

// onKeyText finishes the approval: the admin typed the key to deliver.
func (a *App) onKeyText(c tele.Context) error {
	if isCancel(c) {
		return a.handleCancel(c)
	}
	adminID := c.Sender().ID
	payload, ok := a.fsm.KeyInput(adminID)
	if !ok {
		a.fsm.Clear(adminID)
		return nil
	}

	key, err := service.ValidateKeyValue(c.Text())
	if err != nil {
		return tghelpers.SendText(c, textKeyTooShort)
	}

	ctx := tghelpers.BuildContext(c)
	if err := a.payments.Approve(ctx, payload.PaymentID, key); err != nil {
		if apperrors.IsNotFound(err) {
			a.fsm.Clear(adminID)
			return tghelpers.SendText(c, textAlreadyProcessed)
		}
		return err
	}
	if err := a.keys.Issue(ctx, payload.RecipientID, key, payload.DurationDays); err != nil {
		return err
	}
	a.fsm.Clear(adminID)

	card := paymentCard{
		ID:           payload.PaymentID,
		BuyerID:      payload.RecipientID,
		BuyerLabel:   payload.RecipientName,
		Amount:       payload.Amount,
		DurationDays: payload.DurationDays,
	}
	if err := a.deliverKey(c, card, key); err != nil {
		logger.Warn(ctx, "tg", "key.delivery.failed",
			slog.Int64("payment_id", card.ID),
			slog.Int64("user_id", card.BuyerID),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendMD(c, keyDeliveryFailedText(card, key))
	}
	return tghelpers.SendMD(c, keyDeliveredText(card, key))
}

// onReplyText forwards the admin-typed message to the buyer.
func (a *App) onReplyText(c tele.Context) error {
	if isCancel(c) {
		return a.handleCancel(c)
	}
	adminID := c.Sender().ID
	payload, ok := a.fsm.Reply(adminID)
	if !ok {
		a.fsm.Clear(adminID)
		return nil
	}

	message := strings.TrimSpace(c.Text())
	if message == "" {
		return tghelpers.SendText(c, textEnterReplyAgain)
	}

	a.fsm.Clear(adminID)
	if err := a.deliverReply(c, payload.RecipientID, message); err != nil {
		logger.Warn(tghelpers.BuildContext(c), "tg", "reply.delivery.failed",
			slog.Int64("payment_id", payload.PaymentID),
			slog.Int64("user_id", payload.RecipientID),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendMD(c, replyFailedText(payload.RecipientName))
	}
	return tghelpers.SendMD(c, replySentText(payload.RecipientName))
}

func buyerLabel(u *tele.User) string {
	if u == nil {
		return "user"
	}
	if u.Username != "" {
		return escapeLabel("@" + u.Username)
	}
	if u.FirstName != "" {
		return escapeLabel(u.FirstName)
	}
	return "user"
}
