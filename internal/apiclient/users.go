package apiclient

import (
	"context"
	"fmt"

	"github.com/seifadel74/getyourtrip/internal/model"
)

// UserQuery - параметры списка пользователей.
type UserQuery struct {
	Search  string `mapstructure:"search"`
	Page    int    `mapstructure:"page"`
	PerPage int    `mapstructure:"per_page"`
}

// UserInput - создание или изменение учетной записи. Пустой пароль при изменении не трогается.
type UserInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

// UserService - обертка над /users.
type UserService struct {
	client *Client
}

func (s *UserService) List(ctx context.Context, q UserQuery) ([]model.User, *model.Pagination, error) {
	q.PerPage = clampPerPage(q.PerPage)
	return list[model.User](ctx, s.client, "/users", q)
}

func (s *UserService) Get(ctx context.Context, id int) (*model.User, error) {
	return one[model.User](ctx, s.client, "GET", fmt.Sprintf("/users/%d", id), nil)
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	return one[model.User](ctx, s.client, "POST", "/users", in)
}

func (s *UserService) Update(ctx context.Context, id int, in UserInput) (*model.User, error) {
	return one[model.User](ctx, s.client, "PUT", fmt.Sprintf("/users/%d", id), in)
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	return remove(ctx, s.client, fmt.Sprintf("/users/%d", id))
}
