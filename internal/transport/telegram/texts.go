package telegram

import (
	"fmt"
	"strings"
	"time"

	entitlementDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/domain"
)

const (
	textUnauthorized = "❌ You are not authorized to use this command."
	textJoinPrompt   = "Please join our channel to use this bot, then press ✅ Verify."
	textNotJoinedYet = "You haven't joined the channel yet. Please join and try again."
	textUnknown      = "🤔 Unknown command. Send /help to see what I can do."
	timeLayout       = "2006-01-02 15:04"
)

func welcomeText(firstName string) string {
	if firstName == "" {
		firstName = "there"
	}
	return fmt.Sprintf(`👋 Hi %s!

I re-publish forwarded posts in your channels without the "Forwarded from" tag.

1. Add me to your channel as an administrator with the "Delete messages" right.
2. Send /addchannel <channel_id> to register it.

Send /help for all commands.`, firstName)
}

func helpText(freeLimit int) string {
	return fmt.Sprintf(`❓ Help

/start - Main menu
/addchannel <channel_id> - Register a channel you administer
/removechannel <channel_id> - Unregister a channel
/mychannels - List your channels and plan
/remove_tags - Reply to a forwarded message to get a clean copy
/premium_check [id] - Premium status for you, a channel or a user

Free plan: up to %d channels. Premium removes the limit and leaves forwarded posts in your channels untouched.`, freeLimit)
}

func premiumText(paymentInfo string) string {
	var b strings.Builder
	b.WriteString("👑 Buy Premium\n\n")
	b.WriteString("Premium lifts the channel limit for all channels you own.\n\n")
	if paymentInfo != "" {
		b.WriteString(paymentInfo)
		b.WriteString("\n\n")
	}
	b.WriteString("After paying, send the screenshot to our admin using the button below.")
	return b.String()
}

// entitlementText renders the premium state of a subject for premium_check.
func entitlementText(subject string, e *entitlementDomain.Entitlement, now time.Time) string {
	if e == nil {
		return fmt.Sprintf("❌ %s has no premium subscription.", subject)
	}
	if !e.Active(now) {
		return fmt.Sprintf("❌ Premium expired\n\nSubject: %s\nExpired: %s UTC", subject, e.ExpiresAt.Format(timeLayout))
	}
	return fmt.Sprintf("✅ Premium active\n\nSubject: %s\nExpires: %s UTC\nRemaining: %s",
		subject, e.ExpiresAt.Format(timeLayout), entitlementDomain.FormatDays(e.RemainingDays(now)))
}
