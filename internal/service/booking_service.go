package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/model"
)

// ChildDiscount - доля базовой цены, которую платит ребенок.
const ChildDiscount = 0.7

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
)

// ErrWrongStep - операция недоступна на текущем шаге мастера.
var ErrWrongStep = errors.New("операция недоступна на текущем шаге бронирования")

// TotalPrice = взрослые × цена + дети × цена × ChildDiscount, с округлением до центов.
func TotalPrice(base float64, adults, children int) float64 {
	total := float64(adults)*base + float64(children)*base*ChildDiscount
	return math.Round(total*100) / 100
}

// ValidationErrors - ошибки клиентской проверки: поле -> сообщение.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, v[field])
	}
	return strings.Join(parts, " ")
}

// WizardStep - шаг мастера бронирования.
type WizardStep int

const (
	StepInfo WizardStep = iota
	StepPayment
	StepSubmitted
)

func (s WizardStep) String() string {
	switch s {
	case StepInfo:
		return "info"
	case StepPayment:
		return "payment"
	default:
		return "submitted"
	}
}

// BookingForm - данные первого шага.
type BookingForm struct {
	Name            string
	Email           string
	Phone           string
	BookingDate     string // YYYY-MM-DD, необязательно
	Adults          int
	Children        int
	SpecialRequests string
	AcceptTerms     bool
}

// Validate проверяет форму до обращения к API.
func (f BookingForm) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Please enter your name."
	}
	switch email := strings.TrimSpace(f.Email); {
	case email == "":
		errs["email"] = "Please enter your email."
	case !emailPattern.MatchString(email):
		errs["email"] = "Please enter a valid email address."
	}
	switch phone := strings.TrimSpace(f.Phone); {
	case phone == "":
		errs["phone"] = "Please enter your phone number."
	case !phonePattern.MatchString(phone):
		errs["phone"] = "Please enter a valid phone number."
	}
	if f.BookingDate != "" {
		if _, err := time.Parse("2006-01-02", f.BookingDate); err != nil {
			errs["booking_date"] = "Please choose a valid date."
		}
	}
	if f.Adults < 1 {
		errs["adults"] = "At least one adult is required."
	}
	if f.Children < 0 {
		errs["children"] = "Children cannot be negative."
	}
	if !f.AcceptTerms {
		errs["terms"] = "Please accept the terms and conditions."
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BookingCreator создает бронирование на сервере.
type BookingCreator interface {
	Create(ctx context.Context, req apiclient.BookingRequest) (*model.Booking, error)
}

// BookingWizard - двухшаговый мастер бронирования: StepInfo -> StepPayment -> StepSubmitted.
// Не потокобезопасен; у каждого диалога свой экземпляр.
type BookingWizard struct {
	tour         model.Tour
	bookings     BookingCreator
	paymentDelay time.Duration

	step    WizardStep
	form    BookingForm
	booking *model.Booking
}

// NewBookingWizard создает мастер на шаге StepInfo с одним взрослым.
func NewBookingWizard(tour model.Tour, bookings BookingCreator, paymentDelay time.Duration) *BookingWizard {
	return &BookingWizard{
		tour:         tour,
		bookings:     bookings,
		paymentDelay: paymentDelay,
		form:         BookingForm{Adults: 1},
	}
}

func (w *BookingWizard) Tour() model.Tour        { return w.tour }
func (w *BookingWizard) Step() WizardStep        { return w.step }
func (w *BookingWizard) Form() BookingForm       { return w.form }
func (w *BookingWizard) Booking() *model.Booking { return w.booking }

// Total - итоговая цена по текущей форме.
func (w *BookingWizard) Total() float64 {
	return TotalPrice(w.tour.Price, w.form.Adults, w.form.Children)
}

// Fill заменяет данные формы. Доступно только на шаге StepInfo.
func (w *BookingWizard) Fill(form BookingForm) error {
	if w.step != StepInfo {
		return ErrWrongStep
	}
	w.form = form
	return nil
}

// Next проверяет форму и переходит к оплате. При ошибке шаг не меняется.
func (w *BookingWizard) Next() error {
	if w.step != StepInfo {
		return ErrWrongStep
	}
	if err := w.form.Validate(); err != nil {
		return err
	}
	w.step = StepPayment
	return nil
}

// Back возвращает с оплаты на первый шаг, сохраняя данные.
// false означает, что мастер нужно покинуть.
func (w *BookingWizard) Back() bool {
	if w.step == StepPayment {
		w.step = StepInfo
		return true
	}
	return false
}

// Submit имитирует оплату и создает бронирование. При ошибке мастер остается на шаге оплаты.
func (w *BookingWizard) Submit(ctx context.Context) (*model.Booking, error) {
	if w.step != StepPayment {
		return nil, ErrWrongStep
	}

	if w.paymentDelay > 0 {
		timer := time.NewTimer(w.paymentDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	booking, err := w.bookings.Create(ctx, apiclient.BookingRequest{
		TourID:          w.tour.ID,
		Name:            strings.TrimSpace(w.form.Name),
		Email:           strings.TrimSpace(w.form.Email),
		Phone:           strings.TrimSpace(w.form.Phone),
		BookingDate:     w.form.BookingDate,
		Adults:          w.form.Adults,
		Children:        w.form.Children,
		SpecialRequests: strings.TrimSpace(w.form.SpecialRequests),
		TotalAmount:     w.Total(),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания бронирования: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.booking = booking
	w.step = StepSubmitted
	return booking, nil
}
