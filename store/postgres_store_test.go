package store

import (
	"context"
	"os"
	"testing"

	"github.com/BatmanBruc/yt-audio-bot/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set")
	}
	s, err := NewPostgresStore(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestPostgresStoreUsers(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()
	id := types.UserID(int64(uuid.New().ID()) + 1_000_000_000)

	_, err := s.GetUser(ctx, id)
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, s.UpsertUser(ctx, types.User{UserID: id, ChatID: 10, Username: " alice ", FirstName: "Alice"}))
	require.NoError(t, s.UpsertUser(ctx, types.User{UserID: id, ChatID: 11, Username: "alice2"}))

	u, err := s.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, u.UserID)
	assert.Equal(t, int64(11), u.ChatID)
	assert.Equal(t, "alice2", u.Username)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestPostgresStoreRequestsAndStats(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()
	id := types.UserID(int64(uuid.New().ID()) + 2_000_000_000)

	before, err := s.Stats(ctx)
	require.NoError(t, err)

	require.NoError(t, s.UpsertUser(ctx, types.User{UserID: id, ChatID: 1}))
	require.NoError(t, s.RecordRequest(ctx, types.RequestRecord{UserID: id, Flow: types.FlowSearch, Input: "lofi", Outcome: types.OutcomeOK}))
	require.NoError(t, s.RecordRequest(ctx, types.RequestRecord{UserID: id, Flow: types.FlowLinkDownload, Input: "https://youtu.be/x", Outcome: types.OutcomeFailed}))

	after, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Users+1, after.Users)
	assert.Equal(t, before.Requests+2, after.Requests)
	assert.Equal(t, before.RequestsToday+2, after.RequestsToday)
	assert.Equal(t, before.FailedRequests+1, after.FailedRequests)
}
