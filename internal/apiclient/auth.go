package apiclient

import (
	"context"

	"github.com/seifadel74/getyourtrip/internal/model"
)

// AuthService - обертка над /auth.
type AuthService struct {
	client *Client
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login обменивает учетные данные на пользователя и токен. Сессию не сохраняет.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	sess, err := one[model.Session](ctx, s.client, "POST", "/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if sess.Token == "" {
		return nil, &Error{Kind: model.FailureInvalidResponse, Status: 200, Message: MsgInvalidResponse}
	}
	return sess, nil
}

// Logout уведомляет сервер о выходе.
func (s *AuthService) Logout(ctx context.Context) error {
	return ErrorFrom(s.client.Request(ctx, "POST", "/auth/logout", nil))
}

// Me возвращает пользователя, которому принадлежит текущий токен.
// Сервер может вернуть пользователя как data или как data.user.
func (s *AuthService) Me(ctx context.Context) (*model.User, error) {
	env := s.client.Request(ctx, "GET", "/auth/me", nil)
	if err := ErrorFrom(env); err != nil {
		return nil, err
	}
	var wrapped struct {
		User *model.User `json:"user"`
	}
	if err := env.Decode(&wrapped); err == nil && wrapped.User != nil {
		return wrapped.User, nil
	}
	var user model.User
	if err := env.Decode(&user); err != nil || user.ID == 0 {
		return nil, &Error{Kind: model.FailureInvalidResponse, Status: env.Status, Message: MsgInvalidResponse}
	}
	return &user, nil
}
