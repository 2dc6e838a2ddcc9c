package service

import (
	"context"
	"strings"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/model"
)

// ReviewForm - отзыв о туре от посетителя.
type ReviewForm struct {
	TourID    int
	BookingID int
	Author    string
	Email     string
	Rating    int
	Comment   string
}

func (f ReviewForm) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(f.Author) == "" {
		errs["author"] = "Please enter your name."
	}
	if !emailPattern.MatchString(strings.TrimSpace(f.Email)) {
		errs["email"] = "Please enter a valid email address."
	}
	if f.Rating < 1 || f.Rating > 5 {
		errs["rating"] = "Rating must be between 1 and 5."
	}
	if len([]rune(strings.TrimSpace(f.Comment))) < 10 {
		errs["comment"] = "Comment must be at least 10 characters."
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ReviewService отправляет отзывы на модерацию.
type ReviewService struct {
	reviews *apiclient.ReviewService
}

func NewReviewService(reviews *apiclient.ReviewService) *ReviewService {
	return &ReviewService{reviews: reviews}
}

// Submit проверяет форму и отправляет отзыв. Возвращает сообщение для посетителя.
func (s *ReviewService) Submit(ctx context.Context, f ReviewForm) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	review := model.Review{
		TourID:  f.TourID,
		Author:  strings.TrimSpace(f.Author),
		Email:   strings.TrimSpace(f.Email),
		Rating:  f.Rating,
		Comment: strings.TrimSpace(f.Comment),
	}
	if f.BookingID > 0 {
		id := f.BookingID
		review.BookingID = &id
	}
	msg, err := s.reviews.Create(ctx, review)
	if err != nil {
		return "", err
	}
	if msg == "" {
		msg = "Thank you! Your review will appear after moderation."
	}
	return msg, nil
}

// ContactForm - сообщение из формы обратной связи.
type ContactForm struct {
	Name         string
	Email        string
	Message      string
	MobileNumber string
}

func (f ContactForm) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Please enter your name."
	}
	if !emailPattern.MatchString(strings.TrimSpace(f.Email)) {
		errs["email"] = "Please enter a valid email address."
	}
	if strings.TrimSpace(f.Message) == "" {
		errs["message"] = "Please enter a message."
	}
	if m := strings.TrimSpace(f.MobileNumber); m != "" && !phonePattern.MatchString(m) {
		errs["mobile_number"] = "Please enter a valid phone number."
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ContactService отправляет сообщения обратной связи.
type ContactService struct {
	contact *apiclient.ContactService
}

func NewContactService(contact *apiclient.ContactService) *ContactService {
	return &ContactService{contact: contact}
}

// Send проверяет форму и отправляет сообщение.
func (s *ContactService) Send(ctx context.Context, f ContactForm) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	msg, err := s.contact.Send(ctx, model.ContactMessage{
		Name:         strings.TrimSpace(f.Name),
		Email:        strings.TrimSpace(f.Email),
		Message:      strings.TrimSpace(f.Message),
		MobileNumber: strings.TrimSpace(f.MobileNumber),
	})
	if err != nil {
		return "", err
	}
	if msg == "" {
		msg = "Thank you for contacting us!"
	}
	return msg, nil
}
