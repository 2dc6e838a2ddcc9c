package model

import (
	"encoding/json"
	"time"

	"github.com/spf13/cast"
)

// BookingStatus - статус заявки на бронирование.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// BookingStatuses перечисляет допустимые статусы в порядке отображения.
var BookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled}

// Valid сообщает, является ли статус одним из допустимых.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// Booking представляет заявку на бронирование тура. Номер бронирования назначает сервер.
type Booking struct {
	ID              int           `json:"id"`
	TourID          int           `json:"tour_id"`
	BookingNumber   string        `json:"booking_number"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	BookingDate     string        `json:"booking_date"` // YYYY-MM-DD
	Adults          int           `json:"adults"`
	Children        int           `json:"children"`
	SpecialRequests string        `json:"special_requests"`
	TotalAmount     float64       `json:"total_amount"`
	Status          BookingStatus `json:"status"`
	Tour            *Tour         `json:"tour,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type bookingAlias Booking

// UnmarshalJSON принимает total_amount как число или строку.
func (b *Booking) UnmarshalJSON(data []byte) error {
	aux := struct {
		*bookingAlias
		TotalAmount interface{} `json:"total_amount"`
	}{bookingAlias: (*bookingAlias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.TotalAmount = cast.ToFloat64(aux.TotalAmount)
	if b.Status == "" {
		b.Status = BookingPending
	}
	return nil
}
