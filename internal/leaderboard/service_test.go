package leaderboard

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(client, zerolog.Nop(), ServiceOptions{TopN: 50}), mr
}

func TestSetIfGreaterOnlyRaisesScores(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.SetIfGreater(ctx, userID, "alice", 300))
	require.NoError(t, svc.SetIfGreater(ctx, userID, "alice", 150))

	top, err := svc.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 300, top[0].Score, "a lower score must never replace the best")

	require.NoError(t, svc.SetIfGreater(ctx, userID, "alice", 450))
	top, err = svc.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 450, top[0].Score)
}

func TestTopOrdersAndRanks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, svc.SetIfGreater(ctx, bob, "bob", 200))
	require.NoError(t, svc.SetIfGreater(ctx, alice, "alice", 500))
	require.NoError(t, svc.SetIfGreater(ctx, carol, "carol", 350))

	top, err := svc.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, alice, top[0].UserID)
	assert.Equal(t, "alice", top[0].DisplayName)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, carol, top[1].UserID)
	assert.Equal(t, 2, top[1].Rank)
	assert.Equal(t, bob, top[2].UserID)
	assert.Equal(t, 3, top[2].Rank)
}

func TestTopHonorsLimit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.SetIfGreater(ctx, uuid.New(), "player", 100+i))
	}

	top, err := svc.Top(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestRank(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	require.NoError(t, svc.SetIfGreater(ctx, alice, "alice", 500))
	require.NoError(t, svc.SetIfGreater(ctx, bob, "bob", 200))

	rank, err := svc.Rank(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	rank, err = svc.Rank(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, rank, "unranked players report rank 0")
}

func TestSetIfGreaterRefreshesDisplayName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.SetIfGreater(ctx, userID, "old-name", 300))
	// A lower score still refreshes the name metadata.
	require.NoError(t, svc.SetIfGreater(ctx, userID, "new-name", 100))

	top, err := svc.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "new-name", top[0].DisplayName)
	assert.Equal(t, 300, top[0].Score)
}
