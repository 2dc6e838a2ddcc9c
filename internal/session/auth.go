package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/seifadel74/getyourtrip/internal/model"
)

// Ключи, под которыми сохраняется сессия.
const (
	TokenKey = "auth_token"
	UserKey  = "auth_user"
)

// Auth - операции над сохраненной сессией. Кэша нет: каждое чтение идет в Store.
type Auth struct {
	store Store
}

// NewAuth создает Auth поверх хранилища.
func NewAuth(store Store) *Auth {
	return &Auth{store: store}
}

// Token возвращает сохраненный токен или пустую строку.
func (a *Auth) Token(ctx context.Context) (string, error) {
	token, err := a.store.Get(ctx, TokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return token, err
}

// SetToken сохраняет токен.
func (a *Auth) SetToken(ctx context.Context, token string) error {
	return a.store.Set(ctx, TokenKey, token)
}

// User возвращает сохраненного пользователя или nil.
func (a *Auth) User(ctx context.Context) (*model.User, error) {
	raw, err := a.store.Get(ctx, UserKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("поврежденные данные пользователя в сессии: %w", err)
	}
	return &user, nil
}

// SetUser сохраняет пользователя в виде JSON.
func (a *Auth) SetUser(ctx context.Context, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, UserKey, string(raw))
}

// Save сохраняет пользователя и токен.
func (a *Auth) Save(ctx context.Context, s model.Session) error {
	if err := a.SetToken(ctx, s.Token); err != nil {
		return err
	}
	return a.SetUser(ctx, s.User)
}

// Clear удаляет оба ключа сессии.
func (a *Auth) Clear(ctx context.Context) error {
	return errors.Join(
		a.store.Delete(ctx, TokenKey),
		a.store.Delete(ctx, UserKey),
	)
}

// Headers возвращает заголовки авторизации; пустые, если токена нет.
func (a *Auth) Headers(ctx context.Context) (http.Header, error) {
	header := http.Header{}
	token, err := a.Token(ctx)
	if err != nil {
		return header, err
	}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return header, nil
}
