package bot

import (
	"log/slog"

	"github.com/m3rciful/keybot/core/apperrors"
	"github.com/m3rciful/keybot/core/logger"
	"github.com/m3rciful/keybot/core/telegram/format"
	tghelpers "github.com/m3rciful/keybot/core/telegram/helpers"
	"github.com/m3rciful/keybot/internal/fsm"
	"github.com/m3rciful/keybot/internal/models"

	tele "gopkg.in/telebot.v4"
)

// paymentCard is the view of a payment passed between the admin flows.
type paymentCard struct {
	ID           int64
	BuyerID      int64
	BuyerLabel   string
	Amount       float64
	DurationDays int
	PhotoFileID  string
}

// escapeLabel keeps buyer handles from breaking Markdown-formatted texts.
func escapeLabel(label string) string {
	escaped, err := format.EscapeMarkdown(label, format.MarkdownV1, "")
	if err != nil {
		return label
	}
	return escaped
}

func cardFromPayment(p models.Payment) paymentCard {
	label := escapeLabel(p.BuyerName())
	return paymentCard{
		ID:           p.ID,
		BuyerID:      p.UserID,
		BuyerLabel:   label,
		Amount:       p.Amount,
		DurationDays: p.DurationDays,
		PhotoFileID:  p.PhotoFileID,
	}
}

func keyInputPayload(card paymentCard) fsm.KeyInputPayload {
	return fsm.KeyInputPayload{
		PaymentID:     card.ID,
		RecipientID:   card.BuyerID,
		RecipientName: card.BuyerLabel,
		Amount:        card.Amount,
		DurationDays:  card.DurationDays,
	}
}

func replyPayload(card paymentCard) fsm.ReplyPayload {
	return fsm.ReplyPayload{
		PaymentID:     card.ID,
		RecipientID:   card.BuyerID,
		RecipientName: card.BuyerLabel,
	}
}

// broadcastProof fans the proof photo out to every administrator with the
// review keyboard attached. Delivery runs through the async sender, so one
// unreachable admin does not block the buyer's confirmation.
func (a *App) broadcastProof(c tele.Context, card paymentCard) {
	ctx := tghelpers.BuildContext(c)
	photo := &tele.Photo{
		File:    tele.File{FileID: card.PhotoFileID},
		Caption: proofCaption(card),
	}
	opts := &tele.SendOptions{
		ParseMode:   tele.ModeMarkdown,
		ReplyMarkup: paymentActionsKeyboard(card.ID),
	}
	for _, adminID := range a.cfg.Core.Telegram.AdminIDs {
		to := &tele.User{ID: adminID}
		if err := a.sendTo(c, to, photo, opts); err != nil {
			logger.Warn(ctx, "tg", "proof.fanout.failed",
				slog.Int64("payment_id", card.ID),
				slog.Int64("user_id", adminID),
				slog.String("err", err.Error()),
			)
		}
	}
	logger.Info(ctx, "tg", "proof.fanout",
		slog.Int64("payment_id", card.ID),
		slog.Int("admins", len(a.cfg.Core.Telegram.AdminIDs)),
	)
}

// deliverKey sends the issued key to the buyer synchronously so the admin
// learns about delivery failures (blocked bot, deleted account).
func (a *App) deliverKey(c tele.Context, card paymentCard, key string) error {
	to := &tele.User{ID: card.BuyerID}
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	if err := a.sendNow(c, to, buyerKeyText(key, card.DurationDays), opts); err != nil {
		return apperrors.Delivery("deliver key to buyer", err)
	}
	return nil
}

// deliverReply forwards an admin-typed message to the buyer.
func (a *App) deliverReply(c tele.Context, recipientID int64, message string) error {
	to := &tele.User{ID: recipientID}
	if err := a.sendNow(c, to, buyerReplyText(message)); err != nil {
		return apperrors.Delivery("deliver reply to buyer", err)
	}
	return nil
}
