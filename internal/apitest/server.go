// Package apitest - поддельный REST API агентства для тестов. Данные в памяти.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/seifadel74/getyourtrip/internal/model"
)

// Учетные данные, созданные New.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "secret123"
	UserEmail     = "guide@example.com"
	UserPassword  = "guide123"
)

type account struct {
	user         model.User
	passwordHash []byte
}

type claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// Server - поддельный API поверх httptest.Server.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	secret   []byte
	nextID   int
	tours    map[int]model.Tour
	bookings map[int]model.Booking
	accounts map[int]*account
	revoked  map[string]bool
	reviews  []model.Review
	contacts []model.ContactMessage
	requests []string
	failures map[string]int
}

// New запускает сервер с администратором, обычным пользователем и тремя турами.
func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		secret:   []byte("apitest-secret"),
		nextID:   100,
		tours:    make(map[int]model.Tour),
		bookings: make(map[int]model.Booking),
		accounts: make(map[int]*account),
		revoked:  make(map[string]bool),
		failures: make(map[string]int),
	}
	s.addAccount(model.User{ID: 1, Name: "Admin", Username: "admin", Email: AdminEmail, IsAdmin: true}, AdminPassword)
	s.addAccount(model.User{ID: 2, Name: "Guide", Username: "guide", Email: UserEmail}, UserPassword)
	for _, tour := range SampleTours() {
		s.tours[tour.ID] = tour
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

// SampleTours - туры, которыми заполняется New.
func SampleTours() []model.Tour {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.Tour{
		{ID: 1, Title: "Cairo & Pyramids", Location: "Cairo", Duration: "5", Price: 749, Type: "cultural",
			Images: []string{"https://cdn.example.com/cairo.jpg"}, Rating: 4.8, IsFeatured: true, IsActive: true,
			Description: "See the **pyramids** of Giza.", CreatedAt: now, UpdatedAt: now},
		{ID: 2, Title: "Luxor Balloon", Location: "Luxor", Duration: "3", Price: 499, Type: "adventure",
			Images: []string{"https://cdn.example.com/luxor.jpg"}, Rating: 4.5, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: 3, Title: "Red Sea Diving", Location: "Hurghada", Duration: "14", Price: 1200, Type: "diving",
			Images: []string{}, Rating: 4.9, IsFeatured: true, IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
}

func (s *Server) addAccount(user model.User, password string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.accounts[user.ID] = &account{user: user, passwordHash: hash}
}

// Token выдает токен для пользователя с указанным id.
func (s *Server) Token(userID int) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        strconv.Itoa(s.next()),
		},
	})
	signed, _ := token.SignedString(s.secret)
	return signed
}

// Fail заставляет запросы "METHOD /path" отвечать статусом status.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	s.failures[method+" "+path] = status
	s.mu.Unlock()
}

// Requests возвращает принятые запросы в виде "METHOD /path".
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Bookings возвращает сохраненные бронирования, упорядоченные по id.
func (s *Server) Bookings() []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reviews возвращает принятые отзывы.
func (s *Server) Reviews() []model.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Review(nil), s.reviews...)
}

// Contacts возвращает принятые сообщения обратной связи.
func (s *Server) Contacts() []model.ContactMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ContactMessage(nil), s.contacts...)
}

// AddTour добавляет тур и возвращает его id.
func (s *Server) AddTour(tour model.Tour) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tour.ID == 0 {
		tour.ID = s.nextLocked()
	}
	s.tours[tour.ID] = tour
	return tour.ID
}

// AddUser добавляет учетную запись без пароля и возвращает ее id.
func (s *Server) AddUser(user model.User) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		user.ID = s.nextLocked()
	}
	user.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.accounts[user.ID] = &account{user: user}
	return user.ID
}

func (s *Server) next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextLocked()
}

func (s *Server) nextLocked() int {
	s.nextID++
	return s.nextID
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(s.record)

	r.POST("/auth/login", s.login)
	r.POST("/auth/logout", s.authenticate(false), s.logout)
	r.GET("/auth/me", s.authenticate(false), s.me)

	r.GET("/tours", s.listTours)
	r.GET("/tours/:id", s.getTour)
	r.POST("/bookings", s.createBooking)
	r.POST("/reviews", s.createReview)
	r.POST("/contact", s.createContact)

	admin := r.Group("/", s.authenticate(true))
	{
		admin.POST("/tours", s.saveTour)
		admin.PUT("/tours/:id", s.saveTour)
		admin.DELETE("/tours/:id", s.deleteTour)

		admin.GET("/bookings", s.listBookings)
		admin.GET("/bookings/:id", s.getBooking)
		admin.PUT("/bookings/:id", s.updateBooking)
		admin.DELETE("/bookings/:id", s.deleteBooking)

		admin.GET("/users", s.listUsers)
		admin.GET("/users/:id", s.getUser)
		admin.POST("/users", s.saveUser)
		admin.PUT("/users/:id", s.saveUser)
		admin.DELETE("/users/:id", s.deleteUser)

		admin.POST("/upload/image", s.uploadImage)
	}
	return r
}

func (s *Server) record(c *gin.Context) {
	key := c.Request.Method + " " + c.Request.URL.Path
	s.mu.Lock()
	s.requests = append(s.requests, key)
	status, fail := s.failures[key]
	s.mu.Unlock()

	if fail {
		c.AbortWithStatusJSON(status, gin.H{"success": false, "message": fmt.Sprintf("forced %d", status)})
		return
	}
	c.Next()
}

func (s *Server) authenticate(adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthenticated."})
			return
		}
		parsed := &claims{}
		token, err := jwt.ParseWithClaims(raw, parsed, func(*jwt.Token) (interface{}, error) { return s.secret, nil })
		s.mu.Lock()
		acc, exists := s.accounts[parsed.UserID]
		revoked := s.revoked[raw]
		s.mu.Unlock()
		if err != nil || !token.Valid || !exists || revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthenticated."})
			return
		}
		if adminOnly && !acc.user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Admin privileges required."})
			return
		}
		c.Set("user", acc.user)
		c.Set("token", raw)
		c.Next()
	}
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, gin.H{"success": true, "data": data, "message": message})
}

func validationFailed(c *gin.Context, errs map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "The given data was invalid.", "errors": errs})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found."})
}

func paramID(c *gin.Context) int {
	id, _ := strconv.Atoi(c.Param("id"))
	return id
}

func paginate[T any](c *gin.Context, items []T) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}
	total := len(items)
	lastPage := (total + perPage - 1) / perPage
	if lastPage == 0 {
		lastPage = 1
	}
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items[start:end],
		"pagination": model.Pagination{
			CurrentPage: page, LastPage: lastPage, PerPage: perPage, Total: total,
		},
	})
}
