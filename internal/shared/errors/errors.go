// Package errors holds the sentinel errors shared by every module.
// Callers wrap them with oops for context and classify them with errors.Is.
package errors

import "errors"

// Configuration
var (
	ErrMissingBotToken = errors.New("BOT_TOKEN environment variable is required")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// Authorization: the caller may not perform the operation.
var (
	ErrUnauthorized     = errors.New("unauthorized user")
	ErrNotChannelAdmin  = errors.New("caller is not an administrator of the chat")
	ErrChannelOwned     = errors.New("channel is registered by another user")
	ErrFreeLimitReached = errors.New("free channel limit reached")
)

// Validation: the request itself is malformed or cannot be satisfied.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrBotNotMember    = errors.New("bot is not a member of the chat")
)

// Permission: the bot lacks rights in a chat.
var ErrNoDeletePermission = errors.New("bot cannot delete messages in this chat")

// Not found: a normal negative lookup result.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrChannelNotFound     = errors.New("channel not found")
	ErrOwnershipNotFound   = errors.New("ownership not found")
	ErrEntitlementNotFound = errors.New("entitlement not found")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrChannelNotFound) ||
		errors.Is(err, ErrOwnershipNotFound) ||
		errors.Is(err, ErrEntitlementNotFound)
}

// IsAuthorization reports whether err denies the caller.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotChannelAdmin) ||
		errors.Is(err, ErrChannelOwned) ||
		errors.Is(err, ErrFreeLimitReached)
}

// IsValidation reports whether err rejects malformed input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrBotNotMember)
}
