package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTourUnmarshal_SingleImage(t *testing.T) {
	var tour Tour
	err := json.Unmarshal([]byte(`{"id":1,"title":"Pyramids","image":"https://cdn/p.jpg","price":"749.50","duration":5}`), &tour)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://cdn/p.jpg"}, tour.Images)
	assert.Equal(t, "https://cdn/p.jpg", tour.PrimaryImage())
	assert.Equal(t, 749.5, tour.Price)
	assert.Equal(t, "5", tour.Duration)
}

func TestTourUnmarshal_ImageList(t *testing.T) {
	var tour Tour
	err := json.Unmarshal([]byte(`{"id":2,"image":["a.jpg","","b.jpg"],"price":499}`), &tour)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.jpg", "b.jpg"}, tour.Images)
	assert.Equal(t, "a.jpg", tour.PrimaryImage())
	assert.Equal(t, 499.0, tour.Price)
}

func TestTourUnmarshal_MissingFieldsBecomeEmpty(t *testing.T) {
	var tour Tour
	err := json.Unmarshal([]byte(`{"id":3,"price":"on request","itinerary":[{"day":1,"title":"Arrival"}]}`), &tour)
	require.NoError(t, err)

	assert.Equal(t, 0.0, tour.Price)
	assert.NotNil(t, tour.Images)
	assert.Empty(t, tour.PrimaryImage())
	assert.NotNil(t, tour.Highlights)
	assert.NotNil(t, tour.Languages)
	require.Len(t, tour.Itinerary, 1)
	assert.NotNil(t, tour.Itinerary[0].Activities)
}

func TestTourMarshal_ImagesAsList(t *testing.T) {
	body, err := json.Marshal(Tour{Title: "Nile", Images: []string{"x.jpg"}})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"image":["x.jpg"]`)
}

func TestBookingUnmarshal(t *testing.T) {
	var booking Booking
	err := json.Unmarshal([]byte(`{"id":7,"booking_number":"BK-0007","total_amount":"270.00","adults":2,"children":1}`), &booking)
	require.NoError(t, err)

	assert.Equal(t, 270.0, booking.TotalAmount)
	assert.Equal(t, BookingPending, booking.Status)
	assert.True(t, booking.Status.Valid())
	assert.False(t, BookingStatus("rejected").Valid())
}
