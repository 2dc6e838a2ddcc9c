package model

import "encoding/json"

// Pagination - метаданные страницы списка.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Envelope - единый формат ответа API.
type Envelope struct {
	Success    bool                `json:"success"`
	Data       json.RawMessage     `json:"data,omitempty"`
	Message    string              `json:"message,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	Pagination *Pagination         `json:"pagination,omitempty"`

	// Status - HTTP-статус ответа, 0 если запрос не дошел до сервера.
	Status int `json:"-"`
	// Failure заполняется клиентом для неуспешных ответов.
	Failure FailureKind `json:"-"`
}

// Decode разбирает поле data в v.
func (e *Envelope) Decode(v interface{}) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// FailureKind классифицирует неуспешный ответ.
type FailureKind string

const (
	FailureNone            FailureKind = ""
	FailureNetwork         FailureKind = "network"
	FailureServer          FailureKind = "server"
	FailureInvalidResponse FailureKind = "invalid_response"
	FailureUnauthorized    FailureKind = "unauthorized"
	FailureValidation      FailureKind = "validation"
	FailureRequest         FailureKind = "request"
)
