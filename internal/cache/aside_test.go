package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fills := 0
	fetch := func(dest *cachedUser) error {
		return Aside(ctx, UserKey(7), dest, UserTTL, func() error {
			fills++
			dest.ID = 7
			dest.Username = "ada"
			return nil
		})
	}

	var first cachedUser
	require.NoError(t, fetch(&first))
	assert.Equal(t, 1, fills)
	assert.Equal(t, "ada", first.Username)

	// Second read must come from the cache.
	var second cachedUser
	require.NoError(t, fetch(&second))
	assert.Equal(t, 1, fills)
	assert.Equal(t, first, second)
}

func TestAside_FillErrorPropagatesAndNothingCached(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	var dest cachedUser
	err := Aside(ctx, UserKey(9), &dest, UserTTL, func() error {
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, mr.Exists(UserKey(9)))
}

func TestAside_NilClientFallsThrough(t *testing.T) {
	SetClient(nil)

	var dest cachedUser
	err := Aside(context.Background(), UserKey(1), &dest, UserTTL, func() error {
		dest.ID = 1
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), dest.ID)
}

func TestAside_CorruptEntryIsDropped(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(UserKey(3), "{not json"))

	var dest cachedUser
	err := Aside(ctx, UserKey(3), &dest, UserTTL, func() error {
		dest.ID = 3
		dest.Username = "grace"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "grace", dest.Username)

	// The corrupt value was replaced with the fresh one.
	raw, err := mr.Get(UserKey(3))
	require.NoError(t, err)
	assert.Contains(t, raw, `"grace"`)
}

func TestInvalidate(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(UserKey(5), `{"id":5}`))
	require.NoError(t, mr.Set(UsernameKey("bob"), `{"id":5}`))

	InvalidateUser(ctx, 5, "bob")

	assert.False(t, mr.Exists(UserKey(5)))
	assert.False(t, mr.Exists(UsernameKey("bob")))
}

func TestAside_EntryExpires(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	fills := 0
	fill := func(dest *cachedUser) error {
		return Aside(ctx, PostKey(2), dest, time.Minute, func() error {
			fills++
			dest.ID = 2
			return nil
		})
	}

	var dest cachedUser
	require.NoError(t, fill(&dest))
	mr.FastForward(2 * time.Minute)

	require.NoError(t, fill(&dest))
	assert.Equal(t, 2, fills)
}
