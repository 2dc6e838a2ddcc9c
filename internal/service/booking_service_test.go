package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/model"
)

type stubBookings struct {
	calls []apiclient.BookingRequest
	err   error
}

func (s *stubBookings) Create(_ context.Context, req apiclient.BookingRequest) (*model.Booking, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return &model.Booking{ID: 9, TourID: req.TourID, BookingNumber: "BK-0009", Status: model.BookingPending}, nil
}

func validForm() BookingForm {
	return BookingForm{
		Name:        "Mona Ali",
		Email:       "mona@example.com",
		Phone:       "+20 100 123 4567",
		BookingDate: "2025-03-01",
		Adults:      2,
		Children:    1,
		AcceptTerms: true,
	}
}

func TestTotalPrice(t *testing.T) {
	assert.Equal(t, 270.0, TotalPrice(100, 2, 1))
	assert.Equal(t, 749.0, TotalPrice(749, 1, 0))
	assert.Equal(t, 104.99, TotalPrice(61.76, 1, 1))
}

func TestBookingForm_Validate(t *testing.T) {
	require.NoError(t, validForm().Validate())

	form := BookingForm{Email: "not-an-email", Phone: "12", Adults: 0, Children: -1}
	err := form.Validate()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	for _, field := range []string{"name", "email", "phone", "adults", "children", "terms"} {
		assert.Contains(t, verrs, field)
	}

	form = validForm()
	form.BookingDate = "01/03/2025"
	require.ErrorAs(t, form.Validate(), &verrs)
	assert.Contains(t, verrs, "booking_date")
}

func TestBookingWizard_HappyPath(t *testing.T) {
	stub := &stubBookings{}
	w := NewBookingWizard(model.Tour{ID: 1, Price: 100}, stub, 0)
	assert.Equal(t, StepInfo, w.Step())

	require.NoError(t, w.Fill(validForm()))
	require.NoError(t, w.Next())
	assert.Equal(t, StepPayment, w.Step())
	assert.Equal(t, 270.0, w.Total())

	booking, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BK-0009", booking.BookingNumber)
	assert.Equal(t, StepSubmitted, w.Step())
	require.Len(t, stub.calls, 1)
	assert.Equal(t, 270.0, stub.calls[0].TotalAmount)
	assert.Equal(t, 1, stub.calls[0].TourID)
}

func TestBookingWizard_InvalidFormStaysOnInfo(t *testing.T) {
	w := NewBookingWizard(model.Tour{ID: 1, Price: 100}, &stubBookings{}, 0)
	form := validForm()
	form.AcceptTerms = false
	require.NoError(t, w.Fill(form))

	err := w.Next()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "terms")
	assert.Equal(t, StepInfo, w.Step())

	_, err = w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestBookingWizard_BackKeepsValues(t *testing.T) {
	w := NewBookingWizard(model.Tour{ID: 1, Price: 100}, &stubBookings{}, 0)
	assert.False(t, w.Back(), "с первого шага мастер покидается")

	require.NoError(t, w.Fill(validForm()))
	require.NoError(t, w.Next())
	assert.ErrorIs(t, w.Fill(BookingForm{}), ErrWrongStep)

	assert.True(t, w.Back())
	assert.Equal(t, StepInfo, w.Step())
	assert.Equal(t, validForm(), w.Form())
}

func TestBookingWizard_FailureStaysOnPayment(t *testing.T) {
	stub := &stubBookings{err: errors.New("boom")}
	w := NewBookingWizard(model.Tour{ID: 1, Price: 100}, stub, 0)
	require.NoError(t, w.Fill(validForm()))
	require.NoError(t, w.Next())

	_, err := w.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, StepPayment, w.Step())
	assert.Nil(t, w.Booking())
}

func TestBookingWizard_CancelledDuringPayment(t *testing.T) {
	stub := &stubBookings{}
	w := NewBookingWizard(model.Tour{ID: 1, Price: 100}, stub, time.Hour)
	require.NoError(t, w.Fill(validForm()))
	require.NoError(t, w.Next())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := w.Submit(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, stub.calls)
	assert.Equal(t, StepPayment, w.Step())
}
