package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/service"
	"github.com/seifadel74/getyourtrip/internal/session"
)

// SessionCookie - cookie с идентификатором браузерной сессии.
const SessionCookie = "gyt_session"

const sessionMaxAge = 30 * 24 * time.Hour

// SessionStores выдает хранилище для пространства имен сессии.
type SessionStores interface {
	Scope(namespace string) session.Store
}

// Options - зависимости Handler.
type Options struct {
	APIBaseURL   string
	HTTPClient   *http.Client
	Sessions     SessionStores
	Catalog      *service.CatalogService
	PaymentDelay time.Duration
	CookieSecure bool
}

// Handler структурирует зависимости сервисов для обработки HTTP-запросов.
type Handler struct {
	opts      Options
	public    *apiclient.Client
	reviews   *service.ReviewService
	contact   *service.ContactService
	templates *templates
}

// NewHandler создает Handler. Публичный клиент API работает без токена.
func NewHandler(opts Options) (*Handler, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	tpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора шаблонов: %w", err)
	}
	public := apiclient.New(opts.APIBaseURL, nil, apiclient.WithHTTPClient(opts.HTTPClient))
	return &Handler{
		opts:      opts,
		public:    public,
		reviews:   service.NewReviewService(public.Reviews),
		contact:   service.NewContactService(public.Contact),
		templates: tpl,
	}, nil
}

// Router собирает gin.Engine со всеми маршрутами.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.CustomRecovery(h.recover), h.sessionMiddleware)

	r.GET("/health", h.Health)
	r.GET("/", h.Home)
	r.GET("/tours", h.ListTours)
	r.GET("/tours/:id", h.ShowTour)
	r.GET("/tours/:id/book", h.BookingForm)
	r.POST("/tours/:id/book", h.BookingStep)
	r.POST("/tours/:id/reviews", h.SubmitReview)
	r.GET("/contact", h.ContactForm)
	r.POST("/contact", h.SubmitContact)

	r.GET("/admin/login", h.LoginForm)
	r.POST("/admin/login", h.Login)
	r.POST("/admin/logout", h.Logout)

	admin := r.Group("/admin", h.requireAdmin)
	{
		admin.GET("", h.Dashboard)
		admin.GET("/tours", h.AdminTours)
		admin.GET("/tours/new", h.NewTourForm)
		admin.POST("/tours", h.CreateTour)
		admin.GET("/tours/:id/edit", h.EditTourForm)
		admin.POST("/tours/:id", h.UpdateTour)
		admin.POST("/tours/:id/delete", h.DeleteTour)

		admin.GET("/bookings", h.AdminBookings)
		admin.POST("/bookings/:id/status", h.UpdateBookingStatus)
		admin.POST("/bookings/:id/delete", h.DeleteBooking)

		admin.GET("/users", h.AdminUsers)
		admin.POST("/users", h.CreateUser)
		admin.POST("/users/:id", h.UpdateUser)
		admin.POST("/users/:id/delete", h.DeleteUser)
	}

	r.NoRoute(func(c *gin.Context) {
		h.render(c, http.StatusNotFound, "error.html", gin.H{"Title": "Not found", "Error": "Page not found."})
	})
	return r
}

// Health обработчик для GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sessionMiddleware связывает запрос с браузерной сессией: своим хранилищем,
// клиентом API с токеном этой сессии и контекстом авторизации.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	id, err := c.Cookie(SessionCookie)
	if _, parseErr := uuid.Parse(id); err != nil || parseErr != nil {
		id = uuid.New().String()
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, int(sessionMaxAge/time.Second), "/", "", h.opts.CookieSecure, true)

	auth := session.NewAuth(h.opts.Sessions.Scope("web:" + id))
	client := apiclient.New(h.opts.APIBaseURL, auth, apiclient.WithHTTPClient(h.opts.HTTPClient))
	authSvc := service.NewAuthService(client, auth)
	authSvc.Restore(c.Request.Context())

	c.Set(ctxClient, client)
	c.Set(ctxAuth, authSvc)
	c.Next()
}

const (
	ctxClient = "api_client"
	ctxAuth   = "auth"
)

func clientFrom(c *gin.Context) *apiclient.Client {
	return c.MustGet(ctxClient).(*apiclient.Client)
}

func authFrom(c *gin.Context) *service.AuthService {
	return c.MustGet(ctxAuth).(*service.AuthService)
}

// requireAdmin пропускает только администратора, остальных отправляет на страницу входа.
func (h *Handler) requireAdmin(c *gin.Context) {
	if !authFrom(c).IsAdmin() {
		c.Redirect(http.StatusSeeOther, "/admin/login")
		c.Abort()
		return
	}
	c.Next()
}

func (h *Handler) recover(c *gin.Context, recovered interface{}) {
	log.Printf("handler: паника при обработке %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
	h.render(c, http.StatusInternalServerError, "error.html", gin.H{
		"Title": "Something went wrong",
		"Error": "Something went wrong. Please try again later.",
	})
	c.Abort()
}
