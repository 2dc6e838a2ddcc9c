package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seifadel74/getyourtrip/internal/apitest"
	"github.com/seifadel74/getyourtrip/internal/model"
	"github.com/seifadel74/getyourtrip/internal/session"
)

func newAuth(t *testing.T, token string) (*session.Auth, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	auth := session.NewAuth(store)
	if token != "" {
		require.NoError(t, auth.Save(context.Background(), model.Session{
			User:  model.User{ID: 1, Email: apitest.AdminEmail, IsAdmin: true},
			Token: token,
		}))
	}
	return auth, store
}

func TestRequest_UnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success":false,"message":"Unauthenticated."}`)
	}))
	defer srv.Close()

	auth, store := newAuth(t, "expired")
	env := New(srv.URL, auth).Request(context.Background(), "GET", "/bookings", nil)

	assert.False(t, env.Success)
	assert.Equal(t, model.FailureUnauthorized, env.Failure)
	assert.Equal(t, MsgSessionExpired, env.Message)
	assert.Equal(t, 0, store.Len())
}

func TestRequest_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	env := New(srv.URL, nil).Request(context.Background(), "GET", "/tours", nil)

	assert.False(t, env.Success)
	assert.Equal(t, model.FailureServer, env.Failure)
	assert.Equal(t, MsgServer, env.Message)
	assert.Equal(t, http.StatusBadGateway, env.Status)
}

func TestRequest_NonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html>maintenance</html>")
	}))
	defer srv.Close()

	env := New(srv.URL, nil).Request(context.Background(), "GET", "/tours", nil)

	assert.False(t, env.Success)
	assert.Equal(t, model.FailureInvalidResponse, env.Failure)
	assert.Equal(t, MsgInvalidResponse, env.Message)
}

func TestRequest_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, `{"success":`)
	}))
	defer srv.Close()

	env := New(srv.URL, nil).Request(context.Background(), "GET", "/tours", nil)
	assert.Equal(t, model.FailureInvalidResponse, env.Failure)
}

func TestRequest_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	env := New(url, nil).Request(context.Background(), "GET", "/tours", nil)

	assert.False(t, env.Success)
	assert.Equal(t, model.FailureNetwork, env.Failure)
	assert.Equal(t, MsgNetwork, env.Message)
	assert.Equal(t, 0, env.Status)
}

func TestRequest_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	env := New(srv.URL, nil).Request(context.Background(), "DELETE", "/tours/1", nil)
	assert.True(t, env.Success)
}

func TestRequest_ValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"success":false,"message":"The given data was invalid.","errors":{"email":["The email field is required."]}}`)
	}))
	defer srv.Close()

	err := ErrorFrom(New(srv.URL, nil).Request(context.Background(), "POST", "/bookings", map[string]string{}))
	require.Error(t, err)
	assert.True(t, IsKind(err, model.FailureValidation))
	assert.Equal(t, "The given data was invalid.", Message(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Errors, "email")
}

func TestRequest_AttachesBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":[]}`)
	}))
	defer srv.Close()

	auth, _ := newAuth(t, "abc123")
	env := New(srv.URL, auth).Request(context.Background(), "GET", "/tours", nil)

	assert.True(t, env.Success)
	assert.Equal(t, "Bearer abc123", got)
}

func TestEncodeQuery(t *testing.T) {
	yes := true
	query, err := encodeQuery(TourQuery{Featured: &yes, Type: "cultural", PerPage: 10})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "?"))
	assert.Contains(t, query, "featured=true")
	assert.Contains(t, query, "type=cultural")
	assert.Contains(t, query, "per_page=10")
	assert.NotContains(t, query, "location")
	assert.NotContains(t, query, "page=0")

	empty, err := encodeQuery(TourQuery{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTours_ListClampsPerPage(t *testing.T) {
	var perPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		perPage = r.URL.Query().Get("per_page")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":1,"title":"Nile","image":"n.jpg","price":"100"}]}`)
	}))
	defer srv.Close()

	tours, page, err := New(srv.URL, nil).Tours.List(context.Background(), TourQuery{PerPage: 500})
	require.NoError(t, err)

	assert.Equal(t, "100", perPage)
	require.Len(t, tours, 1)
	assert.Equal(t, []string{"n.jpg"}, tours[0].Images)
	// без pagination в ответе считается одна страница
	assert.Equal(t, 1, page.LastPage)
	assert.Equal(t, 1, page.Total)
}

func TestAgainstFakeAPI(t *testing.T) {
	api := apitest.New()
	defer api.Close()
	ctx := context.Background()
	auth, store := newAuth(t, "")
	client := New(api.URL, auth)

	yes := true
	featured, _, err := client.Tours.List(ctx, TourQuery{Featured: &yes})
	require.NoError(t, err)
	assert.Len(t, featured, 2)

	_, _, err = client.Bookings.List(ctx, BookingQuery{})
	assert.True(t, IsKind(err, model.FailureUnauthorized))

	sess, err := client.Auth.Login(ctx, apitest.AdminEmail, apitest.AdminPassword)
	require.NoError(t, err)
	require.NoError(t, auth.Save(ctx, *sess))

	me, err := client.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, apitest.AdminEmail, me.Email)

	created, err := client.Tours.Create(ctx, TourInput{Title: "Siwa Oasis", Price: 300, Duration: "4", IsActive: true})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	url, err := client.Uploads.Image(ctx, "siwa.jpg", strings.NewReader("jpeg-bytes"), "tours")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/tours/siwa.jpg", url)

	require.NoError(t, client.Auth.Logout(ctx))
	// после отзыва токена сервер отвечает 401, и сессия очищается
	_, err = client.Auth.Me(ctx)
	assert.True(t, IsKind(err, model.FailureUnauthorized))
	assert.Equal(t, 0, store.Len())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	api := apitest.New()
	defer api.Close()

	_, err := New(api.URL, nil).Auth.Login(context.Background(), apitest.AdminEmail, "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials.", Message(err))
}

func TestNew_SingleAttemptWithoutTimeout(t *testing.T) {
	c := New("http://api.example.com/", nil)
	assert.Same(t, http.DefaultClient, c.httpClient)
	assert.Zero(t, c.httpClient.Timeout)
	assert.Equal(t, "http://api.example.com", c.baseURL)
}
