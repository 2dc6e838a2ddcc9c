package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/apitest"
	"github.com/seifadel74/getyourtrip/internal/model"
	"github.com/seifadel74/getyourtrip/internal/repository"
	"github.com/seifadel74/getyourtrip/internal/service"
)

type site struct {
	api    *apitest.Server
	server *httptest.Server
	client *http.Client
}

func newSite(t *testing.T) *site {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := apitest.New()
	t.Cleanup(api.Close)

	db, err := repository.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sessions := repository.NewSessionRepository(db)
	require.NoError(t, sessions.Init(context.Background()))

	public := apiclient.New(api.URL, nil)
	catalog := service.NewCatalogService(public.Tours, repository.NewCacheRepository("", time.Minute))

	h, err := NewHandler(Options{
		APIBaseURL: api.URL,
		Sessions:   sessions,
		Catalog:    catalog,
	})
	require.NoError(t, err)

	server := httptest.NewServer(h.Router())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &site{api: api, server: server, client: client}
}

func (s *site) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := s.client.Get(s.server.URL + path)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (s *site) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := s.client.PostForm(s.server.URL+path, form)
	require.NoError(t, err)
	return readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (s *site) loginAdmin(t *testing.T) {
	t.Helper()
	status, _ := s.post(t, "/admin/login", url.Values{
		"email":    {apitest.AdminEmail},
		"password": {apitest.AdminPassword},
	})
	require.Equal(t, http.StatusSeeOther, status)
}

func TestHealth(t *testing.T) {
	s := newSite(t)
	status, body := s.get(t, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestHome_ShowsFeaturedTours(t *testing.T) {
	s := newSite(t)
	status, body := s.get(t, "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Red Sea Diving")
	assert.NotContains(t, body, "Luxor Balloon")
}

func TestListTours_AppliesQueryFilter(t *testing.T) {
	s := newSite(t)
	status, body := s.get(t, "/tours?destination=cairo&max_price=800")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "1 tours found")
	assert.Contains(t, body, "Cairo")
	assert.NotContains(t, body, "Red Sea Diving")

	// каталог кэшируется между запросами
	s.get(t, "/tours?duration=14%2B")
	n := 0
	for _, r := range s.api.Requests() {
		if r == "GET /tours" {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestShowTour_NotFound(t *testing.T) {
	s := newSite(t)

	status, body := s.get(t, "/tours/999")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Tour not found.")

	status, _ = s.get(t, "/tours/abc")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestShowTour_RendersMarkdownDescription(t *testing.T) {
	s := newSite(t)
	id := s.api.AddTour(model.Tour{Title: "Nile Cruise", Description: "Day one\nDay **two**", IsActive: true})

	status, body := s.get(t, "/tours/"+strconv.Itoa(id))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<strong>two</strong>")
	assert.Contains(t, body, "<br>")
}

func bookingForm(action string) url.Values {
	return url.Values{
		"name":         {"Jane Traveller"},
		"email":        {"jane@example.com"},
		"phone":        {"+20 100 123 4567"},
		"booking_date": {"2026-12-01"},
		"adults":       {"2"},
		"children":     {"1"},
		"accept_terms": {"true"},
		"action":       {action},
	}
}

func TestBookingWizard_FullFlow(t *testing.T) {
	s := newSite(t)

	status, body := s.get(t, "/tours/1/book")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Step 1 of 2")

	status, body = s.post(t, "/tours/1/book", bookingForm("next"))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Step 2 of 2")
	assert.Contains(t, body, "$2022.30") // 749*2 + 749*0.7

	status, body = s.post(t, "/tours/1/book", bookingForm("back"))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Step 1 of 2")
	assert.Contains(t, body, `value="Jane Traveller"`)

	status, body = s.post(t, "/tours/1/book", bookingForm("pay"))
	require.Equal(t, http.StatusCreated, status)
	assert.Contains(t, body, "Booking confirmed")
	assert.Contains(t, body, "BK-")

	bookings := s.api.Bookings()
	require.Len(t, bookings, 1)
	assert.Equal(t, 1, bookings[0].TourID)
	assert.InDelta(t, 2022.30, bookings[0].TotalAmount, 0.001)
}

func TestBookingWizard_ValidationKeepsInfoStep(t *testing.T) {
	s := newSite(t)
	form := bookingForm("next")
	form.Set("email", "not-an-email")
	form.Del("accept_terms")

	status, body := s.post(t, "/tours/1/book", form)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, "Step 1 of 2")
	assert.Empty(t, s.api.Bookings())
}

func TestBookingWizard_APIFailure(t *testing.T) {
	s := newSite(t)
	s.api.Fail(http.MethodPost, "/bookings", http.StatusInternalServerError)

	status, body := s.post(t, "/tours/1/book", bookingForm("pay"))

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body, "Step 2 of 2")
}

func TestSubmitReview(t *testing.T) {
	s := newSite(t)

	status, body := s.post(t, "/tours/1/reviews", url.Values{
		"author":  {"Omar"},
		"email":   {"omar@example.com"},
		"rating":  {"5"},
		"comment": {"Wonderful guides and great food."},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Thank you! Your review will appear after moderation.")
	assert.Len(t, s.api.Reviews(), 1)

	status, _ = s.post(t, "/tours/1/reviews", url.Values{
		"author":  {"Omar"},
		"email":   {"omar@example.com"},
		"rating":  {"9"},
		"comment": {"short"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Len(t, s.api.Reviews(), 1)
}

func TestSubmitContact(t *testing.T) {
	s := newSite(t)

	status, body := s.post(t, "/contact", url.Values{
		"name":    {"Sara"},
		"email":   {"sara@example.com"},
		"message": {"Do you run tours in January?"},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Thank you for contacting us!")
	assert.Len(t, s.api.Contacts(), 1)

	status, _ = s.post(t, "/contact", url.Values{"name": {"Sara"}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestAdmin_RedirectsAnonymous(t *testing.T) {
	s := newSite(t)
	resp, err := s.client.Get(s.server.URL + "/admin/tours")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
}

func TestAdmin_LoginRejectsBadCredentials(t *testing.T) {
	s := newSite(t)
	status, body := s.post(t, "/admin/login", url.Values{
		"email":    {apitest.AdminEmail},
		"password": {"nope"},
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "Invalid credentials.")
}

func TestAdmin_LoginRejectsNonAdmin(t *testing.T) {
	s := newSite(t)
	status, body := s.post(t, "/admin/login", url.Values{
		"email":    {apitest.UserEmail},
		"password": {apitest.UserPassword},
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "Admin access required.")

	status, _ = s.get(t, "/admin")
	assert.Equal(t, http.StatusSeeOther, status)
}

func TestAdmin_DashboardAndLogout(t *testing.T) {
	s := newSite(t)
	s.loginAdmin(t)

	status, body := s.get(t, "/admin")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Tours: 3")
	assert.Contains(t, body, "Users: 2")

	status, _ = s.post(t, "/admin/logout", nil)
	assert.Equal(t, http.StatusSeeOther, status)

	status, _ = s.get(t, "/admin")
	assert.Equal(t, http.StatusSeeOther, status)
}

func TestAdmin_TourCRUD(t *testing.T) {
	s := newSite(t)
	s.loginAdmin(t)

	status, body := s.post(t, "/admin/tours", url.Values{
		"title":      {"White Desert Camping"},
		"price":      {"650"},
		"location":   {"Farafra"},
		"duration":   {"4"},
		"type":       {"Adventure"},
		"highlights": {"Stars\nChalk rocks"},
		"itinerary":  {"Arrival | Drive from Cairo\nDesert night"},
		"is_active":  {"true"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Tour created.")
	assert.Contains(t, body, "White Desert Camping")

	// каталог сброшен: новый тур сразу виден на публичной странице
	_, body = s.get(t, "/tours?destination=farafra")
	assert.Contains(t, body, "White Desert Camping")

	status, body = s.post(t, "/admin/tours/101/delete", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Tour deleted.")
	assert.NotContains(t, body, "White Desert Camping")
}

func TestAdmin_BookingStatus(t *testing.T) {
	s := newSite(t)
	s.post(t, "/tours/1/book", bookingForm("pay"))
	require.Len(t, s.api.Bookings(), 1)
	id := s.api.Bookings()[0].ID
	s.loginAdmin(t)

	status, body := s.post(t, "/admin/bookings/"+strconv.Itoa(id)+"/status", url.Values{"status": {"confirmed"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Booking status updated.")
	assert.Equal(t, "confirmed", string(s.api.Bookings()[0].Status))

	status, _ = s.post(t, "/admin/bookings/"+strconv.Itoa(id)+"/status", url.Values{"status": {"lost"}})
	assert.Equal(t, http.StatusConflict, status)
}

func TestAdmin_CannotDeleteAdminOnLaterPage(t *testing.T) {
	s := newSite(t)
	s.loginAdmin(t)
	for i := 0; i < apiclient.MaxPerPage; i++ {
		s.api.AddUser(model.User{Name: "Guest " + strconv.Itoa(i), Email: "guest" + strconv.Itoa(i) + "@example.com"})
	}
	admin := s.api.AddUser(model.User{Name: "Late Admin", Email: "late@example.com", IsAdmin: true})

	status, body := s.post(t, "/admin/users/"+strconv.Itoa(admin)+"/delete", nil)

	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body, "Admin accounts cannot be deleted.")
	for _, r := range s.api.Requests() {
		assert.False(t, strings.HasPrefix(r, "DELETE "), r)
	}

	status, _ = s.post(t, "/admin/users/"+strconv.Itoa(admin)+"/delete?page=2", nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestAdmin_CannotDeleteSelf(t *testing.T) {
	s := newSite(t)
	s.loginAdmin(t)

	status, body := s.post(t, "/admin/users/1/delete", nil)

	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body, "You cannot delete your own account.")
	for _, r := range s.api.Requests() {
		assert.False(t, strings.HasPrefix(r, "DELETE "), r)
	}
}
