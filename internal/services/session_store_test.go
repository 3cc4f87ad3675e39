package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralpay/minibank/internal/models"
)

var sessionNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testSession() models.Session {
	return models.Session{
		ID:        "3f0c8a52-6b1e-4c1e-9d0a-2f4e5b6c7d8e",
		UserID:    7,
		FirstName: "Ada",
		ExpiresAt: sessionNow.Add(time.Hour),
	}
}

func TestRedisSessionStore(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	store := NewRedisSessionStore(client)
	store.now = func() time.Time { return sessionNow }

	session := testSession()
	data, err := json.Marshal(session)
	require.NoError(t, err)
	key := "session:" + session.ID

	t.Run("save uses remaining lifetime as ttl", func(t *testing.T) {
		mock.ExpectSet(key, data, time.Hour).SetVal("OK")
		assert.NoError(t, store.Save(ctx, session))
	})

	t.Run("get decodes session", func(t *testing.T) {
		mock.ExpectGet(key).SetVal(string(data))

		got, err := store.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.UserID, got.UserID)
		assert.Equal(t, "Ada", got.FirstName)
		assert.True(t, got.ExpiresAt.Equal(session.ExpiresAt))
	})

	t.Run("missing key is unauthorized", func(t *testing.T) {
		mock.ExpectGet("session:gone").RedisNil()

		_, err := store.Get(ctx, "gone")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("redis failure passes through", func(t *testing.T) {
		mock.ExpectGet(key).SetErr(errors.New("connection refused"))

		_, err := store.Get(ctx, session.ID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("delete", func(t *testing.T) {
		mock.ExpectDel(key).SetVal(1)
		assert.NoError(t, store.Delete(ctx, session.ID))
	})

	t.Run("expired session is not saved", func(t *testing.T) {
		expired := session
		expired.ExpiresAt = sessionNow.Add(-time.Second)
		assert.Error(t, store.Save(ctx, expired))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	now := sessionNow
	store.now = func() time.Time { return now }

	session := testSession()
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session, *got)

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, store.Delete(ctx, "never-existed"))

	t.Run("expires lazily", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, session))
		now = session.ExpiresAt

		_, err := store.Get(ctx, session.ID)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Empty(t, store.sessions)
	})

	t.Run("save prunes expired sessions", func(t *testing.T) {
		now = sessionNow
		stale := testSession()
		stale.ID = "stale"
		stale.ExpiresAt = sessionNow.Add(time.Minute)
		require.NoError(t, store.Save(ctx, stale))

		now = sessionNow.Add(2 * time.Minute)
		fresh := testSession()
		fresh.ID = "fresh"
		fresh.ExpiresAt = now.Add(time.Hour)
		require.NoError(t, store.Save(ctx, fresh))

		assert.NotContains(t, store.sessions, "stale")
		assert.Contains(t, store.sessions, "fresh")
	})
}
