package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/seifadel74/getyourtrip/internal/model"
)

// UploadService - обертка над /upload.
type UploadService struct {
	client *Client
}

// Image загружает файл изображения в папку folder и возвращает его URL.
func (s *UploadService) Image(ctx context.Context, filename string, file io.Reader, folder string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("ошибка формирования multipart: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}
	if err := w.WriteField("folder", folder); err != nil {
		return "", fmt.Errorf("ошибка формирования multipart: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("ошибка формирования multipart: %w", err)
	}

	env := s.client.send(ctx, "POST", "/upload/image", w.FormDataContentType(), &buf)
	if err := ErrorFrom(env); err != nil {
		return "", err
	}
	var data struct {
		URL string `json:"url"`
	}
	if err := env.Decode(&data); err != nil || data.URL == "" {
		return "", &Error{Kind: model.FailureInvalidResponse, Status: env.Status, Message: MsgInvalidResponse}
	}
	return data.URL, nil
}
