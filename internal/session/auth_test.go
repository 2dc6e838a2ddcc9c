package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seifadel74/getyourtrip/internal/model"
)

func TestAuth_SaveAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	auth := NewAuth(store)

	require.NoError(t, auth.Save(ctx, model.Session{
		User:  model.User{ID: 1, Name: "Admin", Email: "admin@example.com", IsAdmin: true},
		Token: "secret-token",
	}))
	assert.Equal(t, 2, store.Len())

	token, err := auth.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)

	user, err := auth.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.True(t, user.IsAdmin)

	headers, err := auth.Headers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", headers.Get("Authorization"))

	require.NoError(t, auth.Clear(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestAuth_EmptyStore(t *testing.T) {
	ctx := context.Background()
	auth := NewAuth(NewMemoryStore())

	token, err := auth.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	user, err := auth.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	headers, err := auth.Headers(ctx)
	require.NoError(t, err)
	assert.Empty(t, headers.Get("Authorization"))

	// очистка пустой сессии не ошибка
	assert.NoError(t, auth.Clear(ctx))
}

func TestAuth_CorruptedUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, UserKey, "{not json"))

	user, err := NewAuth(store).User(ctx)
	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestAuth_ReadsGoThroughStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	auth := NewAuth(store)
	require.NoError(t, auth.SetToken(ctx, "first"))

	// запись в обход Auth сразу видна при следующем чтении
	require.NoError(t, store.Set(ctx, TokenKey, "second"))
	token, err := auth.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", token)
}
