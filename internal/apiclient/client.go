package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/seifadel74/getyourtrip/internal/model"
	"github.com/seifadel74/getyourtrip/internal/session"
)

// Сообщения, которые видит пользователь при сбоях.
const (
	MsgNetwork         = "Unable to connect to the server. Please check your connection and try again."
	MsgServer          = "Server error. Please try again later."
	MsgInvalidResponse = "Invalid response from server."
	MsgSessionExpired  = "Your session has expired. Please log in again."
)

// Client выполняет запросы к REST API агентства и приводит любой ответ к model.Envelope.
// Одна попытка на вызов, без повторов.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       *session.Auth

	Tours    *TourService
	Bookings *BookingService
	Users    *UserService
	Reviews  *ReviewService
	Contact  *ContactService
	Auth     *AuthService
	Uploads  *UploadService
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient задает HTTP-клиент (по умолчанию http.DefaultClient).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New создает клиента. auth может быть nil - тогда запросы идут без токена.
func New(baseURL string, auth *session.Auth, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		auth:       auth,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Tours = &TourService{client: c}
	c.Bookings = &BookingService{client: c}
	c.Users = &UserService{client: c}
	c.Reviews = &ReviewService{client: c}
	c.Contact = &ContactService{client: c}
	c.Auth = &AuthService{client: c}
	c.Uploads = &UploadService{client: c}
	return c
}

// Request отправляет JSON-запрос. Ответ никогда не nil; ошибки транспорта,
// 5xx, 401 и не-JSON ответы превращаются в Envelope с Success=false.
func (c *Client) Request(ctx context.Context, method, endpoint string, body interface{}) *model.Envelope {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			log.Printf("apiclient: не удалось сериализовать тело %s %s: %v", method, endpoint, err)
			return &model.Envelope{Message: "Invalid request data.", Failure: model.FailureRequest}
		}
		reader = bytes.NewReader(data)
	}
	return c.send(ctx, method, endpoint, "application/json", reader)
}

func (c *Client) send(ctx context.Context, method, endpoint, contentType string, body io.Reader) *model.Envelope {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		log.Printf("apiclient: некорректный запрос %s %s: %v", method, endpoint, err)
		return &model.Envelope{Message: MsgNetwork, Failure: model.FailureNetwork}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.auth != nil {
		headers, err := c.auth.Headers(ctx)
		if err != nil {
			log.Printf("apiclient: не удалось прочитать токен: %v", err)
		}
		for key, values := range headers {
			req.Header[key] = values
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("apiclient: %s %s: %v", method, endpoint, err)
		return &model.Envelope{Message: MsgNetwork, Failure: model.FailureNetwork}
	}
	defer resp.Body.Close()

	return c.normalize(ctx, resp)
}

func (c *Client) normalize(ctx context.Context, resp *http.Response) *model.Envelope {
	status := resp.StatusCode
	switch {
	case status == http.StatusUnauthorized:
		if c.auth != nil {
			if err := c.auth.Clear(ctx); err != nil {
				log.Printf("apiclient: не удалось очистить сессию: %v", err)
			}
		}
		return &model.Envelope{Status: status, Message: MsgSessionExpired, Failure: model.FailureUnauthorized}
	case status >= http.StatusInternalServerError:
		return &model.Envelope{Status: status, Message: MsgServer, Failure: model.FailureServer}
	case status == http.StatusNoContent:
		return &model.Envelope{Status: status, Success: true}
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		return &model.Envelope{Status: status, Message: MsgInvalidResponse, Failure: model.FailureInvalidResponse}
	}
	var env model.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		log.Printf("apiclient: не удалось разобрать ответ (status=%d): %v", status, err)
		return &model.Envelope{Status: status, Message: MsgInvalidResponse, Failure: model.FailureInvalidResponse}
	}
	env.Status = status

	if status >= http.StatusBadRequest {
		env.Success = false
		if env.Message == "" {
			env.Message = http.StatusText(status)
		}
		env.Failure = model.FailureRequest
		if len(env.Errors) > 0 || status == http.StatusUnprocessableEntity {
			env.Failure = model.FailureValidation
		}
	} else if !env.Success && env.Failure == model.FailureNone {
		env.Failure = model.FailureRequest
	}
	return &env
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
