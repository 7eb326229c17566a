//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// ChatKind is the kind of chat the bot administers
// ENUM(channel,group,supergroup)
type ChatKind string
