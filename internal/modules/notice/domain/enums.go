//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Kind classifies an operator notice
// ENUM(new_user,channel_added,channel_registered,forward_failed,permission_missing,premium_granted,premium_revoked,premium_expiring,broadcast_finished)
type Kind string
