package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/seifadel74/getyourtrip/internal/model"
)

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		validationFailed(c, map[string][]string{"email": {"The email field is required."}})
		return
	}

	s.mu.Lock()
	var found *account
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, req.Email) {
			found = acc
		}
	}
	s.mu.Unlock()
	if found == nil || bcrypt.CompareHashAndPassword(found.passwordHash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Invalid credentials."})
		return
	}
	respond(c, http.StatusOK, model.Session{User: found.user, Token: s.Token(found.user.ID)}, "Logged in.")
}

func (s *Server) logout(c *gin.Context) {
	s.mu.Lock()
	s.revoked[c.GetString("token")] = true
	s.mu.Unlock()
	respond(c, http.StatusOK, nil, "Logged out.")
}

func (s *Server) me(c *gin.Context) {
	user := c.MustGet("user").(model.User)
	respond(c, http.StatusOK, gin.H{"user": user}, "")
}

func (s *Server) listTours(c *gin.Context) {
	s.mu.Lock()
	tours := make([]model.Tour, 0, len(s.tours))
	for _, t := range s.tours {
		tours = append(tours, t)
	}
	s.mu.Unlock()
	sort.Slice(tours, func(i, j int) bool { return tours[i].ID < tours[j].ID })

	featured := c.Query("featured")
	active := c.Query("is_active")
	tourType := strings.ToLower(c.Query("type"))
	location := strings.ToLower(c.Query("location"))
	search := strings.ToLower(c.Query("search"))

	filtered := []model.Tour{}
	for _, t := range tours {
		if featured == "true" && !t.IsFeatured {
			continue
		}
		if active == "true" && !t.IsActive {
			continue
		}
		if tourType != "" && strings.ToLower(t.Type) != tourType {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(t.Location), location) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title+" "+t.Description), search) {
			continue
		}
		filtered = append(filtered, t)
	}
	paginate(c, filtered)
}

func (s *Server) getTour(c *gin.Context) {
	s.mu.Lock()
	tour, ok := s.tours[paramID(c)]
	s.mu.Unlock()
	if !ok {
		notFound(c)
		return
	}
	respond(c, http.StatusOK, tour, "")
}

func (s *Server) saveTour(c *gin.Context) {
	var tour model.Tour
	if err := c.ShouldBindJSON(&tour); err != nil || strings.TrimSpace(tour.Title) == "" {
		validationFailed(c, map[string][]string{"title": {"The title field is required."}})
		return
	}

	s.mu.Lock()
	status := http.StatusCreated
	now := time.Now().UTC()
	if id := paramID(c); id != 0 {
		existing, ok := s.tours[id]
		if !ok {
			s.mu.Unlock()
			notFound(c)
			return
		}
		tour.ID = id
		tour.CreatedAt = existing.CreatedAt
		status = http.StatusOK
	} else {
		tour.ID = s.nextLocked()
		tour.CreatedAt = now
	}
	tour.UpdatedAt = now
	s.tours[tour.ID] = tour
	s.mu.Unlock()
	respond(c, status, tour, "Tour saved.")
}

func (s *Server) deleteTour(c *gin.Context) {
	s.mu.Lock()
	_, ok := s.tours[paramID(c)]
	delete(s.tours, paramID(c))
	s.mu.Unlock()
	if !ok {
		notFound(c)
		return
	}
	respond(c, http.StatusOK, nil, "Tour deleted.")
}

func (s *Server) createBooking(c *gin.Context) {
	var b model.Booking
	if err := c.ShouldBindJSON(&b); err != nil {
		validationFailed(c, map[string][]string{"body": {"Invalid JSON."}})
		return
	}
	errs := map[string][]string{}
	if b.Name == "" {
		errs["name"] = []string{"The name field is required."}
	}
	if b.Email == "" {
		errs["email"] = []string{"The email field is required."}
	}
	if b.Adults < 1 {
		errs["adults"] = []string{"At least one adult is required."}
	}
	s.mu.Lock()
	_, tourExists := s.tours[b.TourID]
	s.mu.Unlock()
	if !tourExists {
		errs["tour_id"] = []string{"The selected tour is invalid."}
	}
	if len(errs) > 0 {
		validationFailed(c, errs)
		return
	}

	s.mu.Lock()
	b.ID = s.nextLocked()
	b.BookingNumber = "BK-" + time.Now().UTC().Format("20060102") + "-" + strconv.Itoa(b.ID)
	b.Status = model.BookingPending
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	s.bookings[b.ID] = b
	s.mu.Unlock()
	respond(c, http.StatusCreated, b, "Booking created.")
}

func (s *Server) listBookings(c *gin.Context) {
	status := c.Query("status")
	s.mu.Lock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if status != "" && string(b.Status) != status {
			continue
		}
		out = append(out, b)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	paginate(c, out)
}

func (s *Server) getBooking(c *gin.Context) {
	s.mu.Lock()
	b, ok := s.bookings[paramID(c)]
	s.mu.Unlock()
	if !ok {
		notFound(c)
		return
	}
	respond(c, http.StatusOK, b, "")
}

func (s *Server) updateBooking(c *gin.Context) {
	var upd struct {
		Status          model.BookingStatus `json:"status"`
		BookingDate     string              `json:"booking_date"`
		SpecialRequests string              `json:"special_requests"`
	}
	if err := c.ShouldBindJSON(&upd); err != nil || (upd.Status != "" && !upd.Status.Valid()) {
		validationFailed(c, map[string][]string{"status": {"The selected status is invalid."}})
		return
	}
	s.mu.Lock()
	b, ok := s.bookings[paramID(c)]
	if ok {
		if upd.Status != "" {
			b.Status = upd.Status
		}
		if upd.BookingDate != "" {
			b.BookingDate = upd.BookingDate
		}
		if upd.SpecialRequests != "" {
			b.SpecialRequests = upd.SpecialRequests
		}
		b.UpdatedAt = time.Now().UTC()
		s.bookings[b.ID] = b
	}
	s.mu.Unlock()
	if !ok {
		notFound(c)
		return
	}
	respond(c, http.StatusOK, b, "Booking updated.")
}

func (s *Server) deleteBooking(c *gin.Context) {
	s.mu.Lock()
	_, ok := s.bookings[paramID(c)]
	delete(s.bookings, paramID(c))
	s.mu.Unlock()
	if !ok {
		notFound(c)
		return
	}
	respond(c, http.StatusOK, nil, "Booking deleted.")
}

func (s *Server) listUsers(c *gin.Context) {
	search := strings.ToLower(c.Query("search"))
	s.mu.Lock()
	out := []model.User{}
	for _, acc := range s.accounts {
		u := acc.user
		if search != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email+" "+u.Username), search) {
			continue
		}
		out = append(out, u)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	paginate(c, out)
}

func (s *Server) getUser(c *gin.Context) {
	s.mu.Lock()
	acc, ok := s.accounts[paramID(c)]
	s.mu.Unlock()
	if !ok {
		notFound(c)
		return
	}
	respond(c, http.StatusOK, acc.user, "")
}

func (s *Server) saveUser(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Name == "" {
		validationFailed(c, map[string][]string{"email": {"The email field is required."}})
		return
	}

	id := paramID(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.ID != id && strings.EqualFold(acc.user.Email, req.Email) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false, "message": "The email has already been taken.",
				"errors": map[string][]string{"email": {"The email has already been taken."}},
			})
			return
		}
	}

	status := http.StatusCreated
	acc, ok := s.accounts[id]
	if id != 0 {
		if !ok {
			notFound(c)
			return
		}
		status = http.StatusOK
	} else {
		if len(req.Password) < 6 {
			validationFailed(c, map[string][]string{"password": {"The password must be at least 6 characters."}})
			return
		}
		acc = &account{user: model.User{ID: s.nextLocked(), CreatedAt: time.Now().UTC()}}
		s.accounts[acc.user.ID] = acc
	}
	acc.user.Name = req.Name
	acc.user.Username = req.Username
	acc.user.Email = req.Email
	acc.user.IsAdmin = req.IsAdmin
	if req.Password != "" {
		acc.passwordHash, _ = bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	}
	respond(c, status, acc.user, "User saved.")
}

func (s *Server) deleteUser(c *gin.Context) {
	s.mu.Lock()
	_, ok := s.accounts[paramID(c)]
	delete(s.accounts, paramID(c))
	s.mu.Unlock()
	if !ok {
		notFound(c)
		return
	}
	respond(c, http.StatusOK, nil, "User deleted.")
}

func (s *Server) createReview(c *gin.Context) {
	var r model.Review
	if err := c.ShouldBindJSON(&r); err != nil || r.Rating < 1 || r.Rating > 5 || len(r.Comment) < 10 {
		validationFailed(c, map[string][]string{"comment": {"The comment must be at least 10 characters."}})
		return
	}
	s.mu.Lock()
	r.ID = s.nextLocked()
	s.reviews = append(s.reviews, r)
	s.mu.Unlock()
	respond(c, http.StatusCreated, r, "Thank you! Your review will appear after moderation.")
}

func (s *Server) createContact(c *gin.Context) {
	var m model.ContactMessage
	if err := c.ShouldBindJSON(&m); err != nil || m.Name == "" || m.Email == "" || m.Message == "" {
		validationFailed(c, map[string][]string{"message": {"The message field is required."}})
		return
	}
	s.mu.Lock()
	s.contacts = append(s.contacts, m)
	s.mu.Unlock()
	respond(c, http.StatusCreated, nil, "Thank you for contacting us!")
}

func (s *Server) uploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		validationFailed(c, map[string][]string{"image": {"The image field is required."}})
		return
	}
	folder := c.DefaultPostForm("folder", "uploads")
	respond(c, http.StatusCreated, gin.H{"url": "https://cdn.example.com/" + folder + "/" + file.Filename}, "Uploaded.")
}
