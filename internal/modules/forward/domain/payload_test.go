package domain

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func TestIsForwarded(t *testing.T) {
	assert.False(t, IsForwarded(nil))
	assert.False(t, IsForwarded(&models.Message{Text: "hi"}))
	assert.True(t, IsForwarded(&models.Message{Text: "hi", ForwardOrigin: &models.MessageOrigin{}}))
}

func TestExtract(t *testing.T) {
	bold := []models.MessageEntity{{Type: models.MessageEntityTypeBold, Offset: 0, Length: 4}}

	tests := []struct {
		name string
		msg  *models.Message
		want Payload
	}{
		{
			name: "text keeps entities",
			msg:  &models.Message{Text: "Hello world", Entities: bold},
			want: Payload{Kind: MediaKindText, Text: "Hello world", Entities: bold},
		},
		{
			name: "largest photo size wins",
			msg: &models.Message{
				Photo: []models.PhotoSize{
					{FileID: "small", Width: 90, Height: 90},
					{FileID: "large", Width: 1280, Height: 960},
					{FileID: "medium", Width: 320, Height: 240},
				},
				Caption:         "pic",
				CaptionEntities: bold,
			},
			want: Payload{Kind: MediaKindPhoto, FileID: "large", Text: "pic", Entities: bold},
		},
		{
			name: "photo beats video",
			msg: &models.Message{
				Photo: []models.PhotoSize{{FileID: "p", Width: 1, Height: 1}},
				Video: &models.Video{FileID: "v"},
			},
			want: Payload{Kind: MediaKindPhoto, FileID: "p"},
		},
		{
			name: "video beats document",
			msg:  &models.Message{Video: &models.Video{FileID: "v"}, Document: &models.Document{FileID: "d"}},
			want: Payload{Kind: MediaKindVideo, FileID: "v"},
		},
		{
			name: "document beats audio",
			msg:  &models.Message{Document: &models.Document{FileID: "d"}, Audio: &models.Audio{FileID: "a"}},
			want: Payload{Kind: MediaKindDocument, FileID: "d"},
		},
		{
			name: "audio beats voice",
			msg:  &models.Message{Audio: &models.Audio{FileID: "a"}, Voice: &models.Voice{FileID: "vo"}},
			want: Payload{Kind: MediaKindAudio, FileID: "a"},
		},
		{
			name: "voice with caption",
			msg:  &models.Message{Voice: &models.Voice{FileID: "vo"}, Caption: "listen"},
			want: Payload{Kind: MediaKindVoice, FileID: "vo", Text: "listen"},
		},
		{
			name: "media beats text",
			msg:  &models.Message{Text: "ignored", Document: &models.Document{FileID: "d"}},
			want: Payload{Kind: MediaKindDocument, FileID: "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.msg)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Unsupported(t *testing.T) {
	tests := map[string]*models.Message{
		"nil":       nil,
		"empty":     {},
		"album":     {MediaGroupID: "g1", Photo: []models.PhotoSize{{FileID: "p"}}},
		"sticker":   {Sticker: &models.Sticker{FileID: "s"}},
		"animation": {Animation: &models.Animation{FileID: "a"}, Document: &models.Document{FileID: "a"}},
		"poll":      {Poll: &models.Poll{Question: "?"}},
	}
	for name, msg := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := Extract(msg)
			assert.False(t, ok)
		})
	}
}
