package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/keybot/core/telegram/format"
	"github.com/m3rciful/keybot/internal/models"
	"github.com/m3rciful/keybot/internal/tariffs"
)

const (
	textWelcome = "Welcome! 👋\n" +
		"Here you can buy an access key for the period you need.\n\n" +
		"Use the buttons below to get started."

	textChooseTariff = "Choose a tariff:"

	textAwaitProofReminder = "Please send a *photo* of your payment receipt, or /cancel to abort."

	textProofAccepted = "Thanks! Your payment is under review.\n" +
		"You will receive your key as soon as an administrator confirms the transfer."

	textCancelled       = "Cancelled. You are back at the main menu."
	textNothingToCancel = "Nothing to cancel."

	textNoKeys = "You have no keys yet. Tap \"🛒 Buy key\" to get one."

	textHelp = "*FAQ*\n\n" +
		"*How do I buy a key?*\n" +
		"Tap \"🛒 Buy key\", pick a tariff, transfer the amount to the listed " +
		"requisites and send a screenshot of the receipt here.\n\n" +
		"*How fast will I get the key?*\n" +
		"Keys are issued manually after an administrator verifies the payment, " +
		"usually within a few hours.\n\n" +
		"*Where are my keys?*\n" +
		"Tap \"🔑 My keys\" to list every key you bought with its expiry date.\n\n" +
		"Commands: /start, /mykeys, /help, /myid, /cancel"

	textUnknown = "I did not understand that. Use /start to open the menu."

	textUnexpectedPhoto = "I was not expecting a photo right now.\n" +
		"If you want to submit a payment receipt, pick a tariff first via \"🛒 Buy key\"."

	textStaleAction = "This action is no longer available."

	textAdminsOnly = "This command is available to administrators only."

	textKeyTooShort = "The key looks too short (minimum 5 characters). Try again or /cancel."

	textAlreadyProcessed = "This payment was already processed."

	textEnterReplyAgain = "The message is empty. Type the text to send, or /cancel."

	textRateLimited = "Too many requests, give it a second."
)

func requisitesText(t tariffs.Tariff, requisites, comment string) string {
	return fmt.Sprintf(
		"*%s* — *%d ₽*\n\n"+
			"Transfer the amount to:\n%s\n\n"+
			"Payment comment: `%s`\n\n"+
			"After the transfer, send a *photo* of the receipt here.\n"+
			"To abort, use /cancel.",
		t.Label, t.Price, requisites, comment,
	)
}

// formatAmount renders a price without trailing zeros ("250", "99.5").
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func myIDText(userID int64, isAdmin bool) string {
	s := fmt.Sprintf("Your Telegram ID: `%d`", userID)
	if isAdmin {
		s += "\nYou are an administrator."
	}
	return s
}

func keysListText(keys []models.Key) string {
	var b strings.Builder
	b.WriteString("*Your keys:*\n")
	for _, k := range keys {
		status := "active"
		if !k.IsActive {
			status = "inactive"
		}
		fmt.Fprintf(&b, "\n`%s`\n%s, until %s (%s)\n",
			k.Secret, tariffs.Label(k.DurationDays), k.ExpiresAt.Format("02.01.2006"), status)
		if k.ConfigURL != "" {
			fmt.Fprintf(&b, "Config: %s\n", k.ConfigURL)
		}
	}
	return b.String()
}

func proofCaption(p paymentCard) string {
	return fmt.Sprintf(
		"💰 New payment #%d\nFrom: %s (`%d`)\nTariff: %s\nAmount: %s ₽",
		p.ID, p.BuyerLabel, p.BuyerID, tariffs.Label(p.DurationDays), formatAmount(p.Amount),
	)
}

func enterKeyText(p paymentCard) string {
	return fmt.Sprintf(
		"Payment #%d approved.\nType the key for %s (%s, %s ₽), or /cancel.",
		p.ID, p.BuyerLabel, tariffs.Label(p.DurationDays), formatAmount(p.Amount),
	)
}

func keyDeliveredText(p paymentCard, key string) string {
	return fmt.Sprintf("✅ Key `%s` sent to %s (payment #%d).", key, p.BuyerLabel, p.ID)
}

func keyDeliveryFailedText(p paymentCard, key string) string {
	return fmt.Sprintf(
		"⚠️ Payment #%d approved and key `%s` saved, but the message to %s could not be delivered. "+
			"Ask the buyer to contact support.",
		p.ID, key, p.BuyerLabel,
	)
}

func buyerKeyText(key string, durationDays int) string {
	return fmt.Sprintf(
		"✅ Your payment is confirmed!\n\nYour key:\n`%s`\n\nValid for %s.",
		key, tariffs.Label(durationDays),
	)
}

func buyerReplyText(message string) string {
	return "✉️ Message from the shop:\n\n" + message
}

func enterReplyText(p paymentCard) string {
	return fmt.Sprintf("Type the message for %s (payment #%d), or /cancel.", p.BuyerLabel, p.ID)
}

func replySentText(buyer string) string {
	return fmt.Sprintf("Message delivered to %s.", buyer)
}

func replyFailedText(buyer string) string {
	return fmt.Sprintf("Could not deliver the message to %s. The buyer may have blocked the bot.", buyer)
}

func adminPanelText() string {
	return "*Admin panel*\nPick a section:"
}

func adminStatsText(users, payments, pending int) string {
	return fmt.Sprintf(
		"*Stats*\nUsers: %d\nPayments total: %d\nPending review: %d",
		users, payments, pending,
	)
}

func paymentLine(p models.Payment) string {
	glyph := "🕒"
	if p.Status == models.PaymentStatusApproved {
		glyph = "✅"
	}
	line := fmt.Sprintf("%s #%d: %s, %s, %s ₽, %s",
		glyph, p.ID, p.BuyerName(), tariffs.Label(p.DurationDays),
		formatAmount(p.Amount), p.CreatedAt.Format("02.01.2006 15:04"))
	if secret := format.DerefString(p.IssuedSecret, ""); secret != "" {
		line += ", key " + truncateSecret(secret)
	}
	return line
}

// truncateSecret shortens long keys so admin listings stay readable.
func truncateSecret(secret string) string {
	const max = 12
	r := []rune(secret)
	if len(r) <= max {
		return secret
	}
	return string(r[:max]) + "…"
}

func failureText(reason string) string {
	return "⚠️ Something went wrong: " + reason + "\nPlease try again."
}

func paymentsListText(title string, list []models.Payment) string {
	if len(list) == 0 {
		return title + "\n\nNothing here yet."
	}
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, title)
	for _, p := range list {
		lines = append(lines, paymentLine(p))
	}
	return strings.Join(lines, "\n")
}
