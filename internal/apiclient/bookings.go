package apiclient

import (
	"context"
	"fmt"

	"github.com/seifadel74/getyourtrip/internal/model"
)

// BookingQuery - параметры списка бронирований.
type BookingQuery struct {
	Status  string `mapstructure:"status"`
	TourID  int    `mapstructure:"tour_id"`
	Search  string `mapstructure:"search"`
	Page    int    `mapstructure:"page"`
	PerPage int    `mapstructure:"per_page"`
}

// BookingRequest - тело публичного запроса на бронирование.
type BookingRequest struct {
	TourID          int     `json:"tour_id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	BookingDate     string  `json:"booking_date,omitempty"`
	Adults          int     `json:"adults"`
	Children        int     `json:"children"`
	SpecialRequests string  `json:"special_requests,omitempty"`
	TotalAmount     float64 `json:"total_amount"`
}

// BookingUpdate - изменения, доступные администратору.
type BookingUpdate struct {
	Status          model.BookingStatus `json:"status,omitempty"`
	BookingDate     string              `json:"booking_date,omitempty"`
	SpecialRequests string              `json:"special_requests,omitempty"`
}

// BookingService - обертка над /bookings.
type BookingService struct {
	client *Client
}

func (s *BookingService) List(ctx context.Context, q BookingQuery) ([]model.Booking, *model.Pagination, error) {
	q.PerPage = clampPerPage(q.PerPage)
	return list[model.Booking](ctx, s.client, "/bookings", q)
}

func (s *BookingService) Get(ctx context.Context, id int) (*model.Booking, error) {
	return one[model.Booking](ctx, s.client, "GET", fmt.Sprintf("/bookings/%d", id), nil)
}

func (s *BookingService) Create(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	return one[model.Booking](ctx, s.client, "POST", "/bookings", req)
}

func (s *BookingService) Update(ctx context.Context, id int, upd BookingUpdate) (*model.Booking, error) {
	return one[model.Booking](ctx, s.client, "PUT", fmt.Sprintf("/bookings/%d", id), upd)
}

func (s *BookingService) Delete(ctx context.Context, id int) error {
	return remove(ctx, s.client, fmt.Sprintf("/bookings/%d", id))
}
