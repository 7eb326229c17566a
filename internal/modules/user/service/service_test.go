package service

import (
	"context"
	"testing"
	"time"

	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/user/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()
	repo, err := repository.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return New(repo, 42)
}

func TestTouch_CreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	first := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return first }

	user, created, err := s.Touch(ctx, 7, "alice", "Alice", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, first, user.FirstSeen)

	later := first.Add(48 * time.Hour)
	s.now = func() time.Time { return later }

	user, created, err = s.Touch(ctx, 7, "alice_new", "Alice", "Liddell")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, user.FirstSeen, "first-seen must not move")
	assert.Equal(t, later, user.UpdatedAt)
	assert.Equal(t, "alice_new", user.Username)
	assert.Equal(t, "Alice Liddell", user.DisplayName())

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestIsOperator(t *testing.T) {
	s := newService(t)
	assert.True(t, s.IsOperator(42))
	assert.False(t, s.IsOperator(43))

	unset := New(nil, 0)
	assert.False(t, unset.IsOperator(0))
}
