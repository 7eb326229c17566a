//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// MediaKind is the content kind a post is re-created as
// ENUM(text,photo,video,document,audio,voice)
type MediaKind string

// Outcome is what happened to a channel post
// ENUM(original,skipped,replaced)
type Outcome string
