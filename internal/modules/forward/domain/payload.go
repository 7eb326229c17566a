package domain

import (
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"
)

// Payload is the captured content of a post: exactly one kind, the platform
// file reference for media, and the text or caption with its formatting.
type Payload struct {
	Kind     MediaKind
	FileID   string
	Text     string
	Entities []models.MessageEntity
}

// IsForwarded reports whether the message carries forward-origin metadata.
func IsForwarded(msg *models.Message) bool {
	return msg != nil && msg.ForwardOrigin != nil
}

// Extract captures msg as a Payload. Media takes priority over text in the
// order photo, video, document, audio, voice. ok is false for content that
// cannot be re-created: albums, stickers, animations, polls and the like.
func Extract(msg *models.Message) (Payload, bool) {
	if msg == nil || msg.MediaGroupID != "" || msg.Sticker != nil || msg.Animation != nil {
		return Payload{}, false
	}

	caption := func(kind MediaKind, fileID string) (Payload, bool) {
		return Payload{Kind: kind, FileID: fileID, Text: msg.Caption, Entities: msg.CaptionEntities}, true
	}

	switch {
	case len(msg.Photo) > 0:
		largest := lo.MaxBy(msg.Photo, func(a, b models.PhotoSize) bool {
			return a.Width*a.Height > b.Width*b.Height
		})
		return caption(MediaKindPhoto, largest.FileID)
	case msg.Video != nil:
		return caption(MediaKindVideo, msg.Video.FileID)
	case msg.Document != nil:
		return caption(MediaKindDocument, msg.Document.FileID)
	case msg.Audio != nil:
		return caption(MediaKindAudio, msg.Audio.FileID)
	case msg.Voice != nil:
		return caption(MediaKindVoice, msg.Voice.FileID)
	case msg.Text != "":
		return Payload{Kind: MediaKindText, Text: msg.Text, Entities: msg.Entities}, true
	default:
		return Payload{}, false
	}
}
