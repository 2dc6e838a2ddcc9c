package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"

	"github.com/seifadel74/getyourtrip/internal/model"
)

// MaxPerPage - верхняя граница размера страницы.
const MaxPerPage = 100

// encodeQuery строит строку запроса из структуры фильтра с тегами mapstructure.
// Нулевые значения пропускаются.
func encodeQuery(filter interface{}) (string, error) {
	if filter == nil {
		return "", nil
	}
	var fields map[string]interface{}
	if err := mapstructure.Decode(filter, &fields); err != nil {
		return "", fmt.Errorf("некорректный фильтр: %w", err)
	}

	values := url.Values{}
	for key, value := range fields {
		if value == nil {
			continue
		}
		rv := reflect.ValueOf(value)
		if rv.IsZero() {
			continue
		}
		values.Set(key, cast.ToString(value))
	}
	if len(values) == 0 {
		return "", nil
	}
	return "?" + values.Encode(), nil
}

func clampPerPage(perPage int) int {
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

func list[T any](ctx context.Context, c *Client, endpoint string, filter interface{}) ([]T, *model.Pagination, error) {
	query, err := encodeQuery(filter)
	if err != nil {
		return nil, nil, err
	}
	env := c.Request(ctx, "GET", endpoint+query, nil)
	if err := ErrorFrom(env); err != nil {
		return nil, nil, err
	}
	items := []T{}
	if err := env.Decode(&items); err != nil {
		return nil, nil, &Error{Kind: model.FailureInvalidResponse, Status: env.Status, Message: MsgInvalidResponse}
	}
	pagination := env.Pagination
	if pagination == nil {
		pagination = &model.Pagination{CurrentPage: 1, LastPage: 1, PerPage: len(items), Total: len(items)}
	}
	return items, pagination, nil
}

func one[T any](ctx context.Context, c *Client, method, endpoint string, body interface{}) (*T, error) {
	env := c.Request(ctx, method, endpoint, body)
	if err := ErrorFrom(env); err != nil {
		return nil, err
	}
	var item T
	if err := env.Decode(&item); err != nil {
		return nil, &Error{Kind: model.FailureInvalidResponse, Status: env.Status, Message: MsgInvalidResponse}
	}
	return &item, nil
}

func remove(ctx context.Context, c *Client, endpoint string) error {
	return ErrorFrom(c.Request(ctx, "DELETE", endpoint, nil))
}
