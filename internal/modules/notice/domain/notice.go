package domain

import (
	"context"
	"time"
)

// Notice is one entry of the operator log.
type Notice struct {
	ID        uint64    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ChatID    int64     `json:"chat_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier accepts operator notices. Delivery is best effort and never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) {
	f(ctx, n)
}

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(context.Context, Notice) {})
