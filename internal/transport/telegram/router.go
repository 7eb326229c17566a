package telegram

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/metrics"
)

// AllowedUpdates lists the update kinds the router has routes for.
var AllowedUpdates = []string{"message", "channel_post", "edited_channel_post", "my_chat_member", "callback_query"}

// HandlerFunc handles one routed update.
type HandlerFunc func(ctx context.Context, update *models.Update)

// Matcher decides whether a route applies to an update.
type Matcher func(update *models.Update) bool

type route struct {
	name    string
	match   Matcher
	handler HandlerFunc
}

// Router dispatches updates through an ordered table. The first matching route wins.
type Router struct {
	routes   []route
	fallback HandlerFunc
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{}
}

// Handle appends a route.
func (r *Router) Handle(name string, match Matcher, handler HandlerFunc) {
	r.routes = append(r.routes, route{name: name, match: match, handler: handler})
}

// Fallback sets the handler for updates no route matched.
func (r *Router) Fallback(handler HandlerFunc) {
	r.fallback = handler
}

// Dispatch has the bot.HandlerFunc signature so the router can be the bot's default handler.
func (r *Router) Dispatch(ctx context.Context, _ *bot.Bot, update *models.Update) {
	r.Route(ctx, update)
}

// Route runs the first matching handler and reports the route name, "" when nothing ran.
func (r *Router) Route(ctx context.Context, update *models.Update) string {
	if update == nil {
		return ""
	}

	for _, rt := range r.routes {
		if !rt.match(update) {
			continue
		}
		metrics.UpdatesHandled.WithLabelValues(rt.name).Inc()
		slog.Debug("Routing update", "route", rt.name, "update_id", update.ID)
		rt.handler(ctx, update)
		return rt.name
	}

	if r.fallback != nil {
		metrics.UpdatesHandled.WithLabelValues("fallback").Inc()
		r.fallback(ctx, update)
		return "fallback"
	}
	return ""
}

// ChannelPost matches new posts in channels.
func ChannelPost() Matcher {
	return func(u *models.Update) bool { return u.ChannelPost != nil }
}

// EditedChannelPost matches edits of channel posts.
func EditedChannelPost() Matcher {
	return func(u *models.Update) bool { return u.EditedChannelPost != nil }
}

// MyChatMember matches changes of the bot's own membership.
func MyChatMember() Matcher {
	return func(u *models.Update) bool { return u.MyChatMember != nil }
}

// Command matches a private-chat message invoking /name, with or without a @bot suffix.
func Command(name string) Matcher {
	return func(u *models.Update) bool {
		if u.Message == nil || u.Message.Chat.Type != models.ChatTypePrivate {
			return false
		}
		cmd, _ := parseCommand(u.Message.Text)
		return cmd == name
	}
}

// AnyCommand matches any private-chat message that starts with a slash.
func AnyCommand() Matcher {
	return func(u *models.Update) bool {
		if u.Message == nil || u.Message.Chat.Type != models.ChatTypePrivate {
			return false
		}
		cmd, _ := parseCommand(u.Message.Text)
		return cmd != ""
	}
}

// Callback matches a callback query with exactly this data.
func Callback(data string) Matcher {
	return func(u *models.Update) bool {
		return u.CallbackQuery != nil && u.CallbackQuery.Data == data
	}
}

// parseCommand splits "/cmd@bot arg1 arg2" into "cmd" and its arguments.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), fields[1:]
}
