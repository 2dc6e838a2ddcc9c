package service

import (
	"context"
	"log"
	"sync"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/model"
	"github.com/seifadel74/getyourtrip/internal/session"
)

// AuthState - состояние контекста авторизации.
type AuthState int

const (
	AuthLoading AuthState = iota
	AuthAuthenticated
	AuthAnonymous
)

func (s AuthState) String() string {
	switch s {
	case AuthLoading:
		return "loading"
	case AuthAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// LoginResult - итог попытки входа. Login никогда не возвращает ошибку.
type LoginResult struct {
	Success bool
	Message string
}

// AuthService - контекст авторизации поверх сохраненной сессии.
type AuthService struct {
	api  *apiclient.Client
	auth *session.Auth

	mu    sync.RWMutex
	state AuthState
	user  *model.User
}

// NewAuthService создает контекст в состоянии AuthLoading.
func NewAuthService(api *apiclient.Client, auth *session.Auth) *AuthService {
	return &AuthService{api: api, auth: auth, state: AuthLoading}
}

// Init проверяет сохраненную сессию через /auth/me. При любой неудаче сессия очищается.
func (s *AuthService) Init(ctx context.Context) {
	s.setState(AuthLoading, nil)

	token, err := s.auth.Token(ctx)
	if err != nil {
		log.Printf("auth: ошибка чтения токена: %v", err)
	}
	stored, err := s.auth.User(ctx)
	if err != nil {
		log.Printf("auth: ошибка чтения пользователя: %v", err)
	}
	if token == "" || stored == nil {
		s.reset(ctx)
		return
	}

	user, err := s.api.Auth.Me(ctx)
	if err != nil {
		log.Printf("auth: сессия не подтверждена: %v", err)
		s.reset(ctx)
		return
	}
	if err := s.auth.SetUser(ctx, *user); err != nil {
		log.Printf("auth: ошибка сохранения пользователя: %v", err)
	}
	s.setState(AuthAuthenticated, user)
}

// Restore принимает сохраненную сессию без обращения к серверу.
// Устаревший токен будет отклонен первым же запросом (401 очищает сессию).
func (s *AuthService) Restore(ctx context.Context) {
	token, _ := s.auth.Token(ctx)
	user, err := s.auth.User(ctx)
	if err != nil || token == "" || user == nil {
		s.setState(AuthAnonymous, nil)
		return
	}
	s.setState(AuthAuthenticated, user)
}

// Login обменивает учетные данные на сессию и сохраняет ее.
func (s *AuthService) Login(ctx context.Context, email, password string) LoginResult {
	s.mu.Lock()
	prevState, prevUser := s.state, s.user
	s.state = AuthLoading
	s.mu.Unlock()

	sess, err := s.api.Auth.Login(ctx, email, password)
	if err != nil {
		// 401 уже очистил хранилище, прежней сессии больше нет
		if prevState == AuthLoading || apiclient.IsKind(err, model.FailureUnauthorized) {
			prevState, prevUser = AuthAnonymous, nil
		}
		s.setState(prevState, prevUser)
		return LoginResult{Message: apiclient.Message(err)}
	}
	if err := s.auth.Save(ctx, *sess); err != nil {
		log.Printf("auth: ошибка сохранения сессии: %v", err)
		s.reset(ctx)
		return LoginResult{Message: "Unable to save your session. Please try again."}
	}
	s.setState(AuthAuthenticated, &sess.User)
	return LoginResult{Success: true}
}

// Logout уведомляет сервер (ошибки игнорируются) и всегда очищает сессию.
func (s *AuthService) Logout(ctx context.Context) {
	s.setState(AuthLoading, s.User())
	if err := s.api.Auth.Logout(ctx); err != nil {
		log.Printf("auth: ошибка выхода на сервере: %v", err)
	}
	s.reset(ctx)
}

func (s *AuthService) reset(ctx context.Context) {
	if err := s.auth.Clear(ctx); err != nil {
		log.Printf("auth: ошибка очистки сессии: %v", err)
	}
	s.setState(AuthAnonymous, nil)
}

func (s *AuthService) setState(state AuthState, user *model.User) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.mu.Unlock()
}

// State возвращает текущее состояние.
func (s *AuthService) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User возвращает текущего пользователя или nil.
func (s *AuthService) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *AuthService) IsAuthenticated() bool {
	return s.State() == AuthAuthenticated
}

func (s *AuthService) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == AuthAuthenticated && s.user != nil && s.user.IsAdmin
}
