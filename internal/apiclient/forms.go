package apiclient

import (
	"context"

	"github.com/seifadel74/getyourtrip/internal/model"
)

// ReviewService - обертка над /reviews.
type ReviewService struct {
	client *Client
}

// Create отправляет отзыв на модерацию. Возвращает сообщение сервера.
func (s *ReviewService) Create(ctx context.Context, review model.Review) (string, error) {
	env := s.client.Request(ctx, "POST", "/reviews", review)
	if err := ErrorFrom(env); err != nil {
		return "", err
	}
	return env.Message, nil
}

// ContactService - обертка над /contact.
type ContactService struct {
	client *Client
}

// Send отправляет сообщение из формы обратной связи.
func (s *ContactService) Send(ctx context.Context, msg model.ContactMessage) (string, error) {
	env := s.client.Request(ctx, "POST", "/contact", msg)
	if err := ErrorFrom(env); err != nil {
		return "", err
	}
	return env.Message, nil
}
