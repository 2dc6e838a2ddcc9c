package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/thoas/go-funk"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/model"
	"github.com/seifadel74/getyourtrip/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// сырой HTML в описаниях экранируется: WithUnsafe не задан
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var funcs = template.FuncMap{
	"markdown": func(md string) template.HTML {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(md), &buf); err != nil {
			return template.HTML(template.HTMLEscapeString(md))
		}
		return template.HTML(buf.String())
	},
	"money":    func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"lines":    func(items []string) string { return strings.Join(items, "\n") },
	"join":     strings.Join,
	"contains": funk.ContainsString,
	"statuses": func() []model.BookingStatus { return model.BookingStatuses },
	"buckets":  func() []string { return service.DurationBuckets },
	"add":      func(a, b int) int { return a + b },
}

type templates struct {
	pages map[string]*template.Template
}

func parseTemplates() (*templates, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	t := &templates{pages: make(map[string]*template.Template)}
	for _, path := range names {
		name := strings.TrimPrefix(path, "templates/")
		if name == "layout.html" {
			continue
		}
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		t.pages[name] = tpl
	}
	return t, nil
}

// render дополняет данные общими полями страницы и выполняет шаблон.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	tpl, ok := h.templates.pages[name]
	if !ok {
		log.Printf("handler: шаблон %s не найден", name)
		c.String(http.StatusInternalServerError, "template not found")
		return
	}
	if data == nil {
		data = gin.H{}
	}
	data["CSRFField"] = csrf.TemplateField(c.Request)
	if value, exists := c.Get(ctxAuth); exists {
		data["User"] = value.(*service.AuthService).User()
		data["IsAdmin"] = value.(*service.AuthService).IsAdmin()
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		log.Printf("handler: ошибка рендеринга %s: %v", name, err)
		c.String(http.StatusInternalServerError, "render error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// failure выбирает HTTP-статус и текст для ошибки сервиса.
func failure(err error) (int, string) {
	var verrs service.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusUnprocessableEntity, verrs.Error()
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case model.FailureNetwork, model.FailureServer, model.FailureInvalidResponse:
			return http.StatusBadGateway, apiErr.Message
		case model.FailureUnauthorized:
			return http.StatusUnauthorized, apiErr.Message
		case model.FailureValidation:
			return http.StatusUnprocessableEntity, apiErr.Message
		}
		if apiErr.Status >= 400 {
			return apiErr.Status, apiClientMessage(apiErr)
		}
	}
	switch {
	case errors.Is(err, service.ErrDeleteSelf), errors.Is(err, service.ErrDeleteAdmin),
		errors.Is(err, service.ErrInvalidStatus):
		return http.StatusConflict, capitalize(err.Error()) + "."
	}
	return http.StatusInternalServerError, apiclient.Message(err)
}

func apiClientMessage(err *apiclient.Error) string {
	if err.Message != "" {
		return err.Message
	}
	return http.StatusText(err.Status)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
