package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/model"
	"github.com/seifadel74/getyourtrip/internal/service"
)

// LoginForm обработчик для GET /admin/login.
func (h *Handler) LoginForm(c *gin.Context) {
	if authFrom(c).IsAdmin() {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	h.render(c, http.StatusOK, "admin_login.html", gin.H{"Title": "Admin login"})
}

// Login обработчик для POST /admin/login.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	auth := authFrom(c)
	email := strings.TrimSpace(c.PostForm("email"))

	res := auth.Login(ctx, email, c.PostForm("password"))
	if !res.Success {
		h.render(c, http.StatusUnauthorized, "admin_login.html", gin.H{"Title": "Admin login", "Email": email, "Error": res.Message})
		return
	}
	if !auth.IsAdmin() {
		auth.Logout(ctx)
		h.render(c, http.StatusForbidden, "admin_login.html", gin.H{"Title": "Admin login", "Email": email, "Error": "Admin access required."})
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

// Logout обработчик для POST /admin/logout.
func (h *Handler) Logout(c *gin.Context) {
	authFrom(c).Logout(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

// Dashboard обработчик для GET /admin. Сессия перепроверяется на сервере.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	auth := authFrom(c)
	auth.Init(ctx)
	if !auth.IsAdmin() {
		c.Redirect(http.StatusSeeOther, "/admin/login")
		return
	}

	stats, err := service.NewDashboardService(clientFrom(c)).Stats(ctx)
	if err != nil {
		status, msg := failure(err)
		h.render(c, status, "admin_dashboard.html", gin.H{"Title": "Dashboard", "Error": msg})
		return
	}
	h.render(c, http.StatusOK, "admin_dashboard.html", gin.H{"Title": "Dashboard", "Stats": stats})
}

func pageParam(c *gin.Context) int {
	page, _ := strconv.Atoi(c.Query("page"))
	return page
}

func idParam(c *gin.Context) int {
	id, _ := strconv.Atoi(c.Param("id"))
	return id
}

// --- туры ---

func (h *Handler) toursPanel(c *gin.Context) *service.ToursPanel {
	return service.NewToursPanel(clientFrom(c), h.opts.Catalog)
}

// renderTours показывает список туров; notice и errMsg - итог предыдущего действия.
func (h *Handler) renderTours(c *gin.Context, status int, panel *service.ToursPanel, notice, errMsg string) {
	h.render(c, status, "admin_tours.html", gin.H{
		"Title":      "Tours",
		"Tours":      panel.Items(),
		"Pagination": panel.Pagination(),
		"Search":     c.Query("search"),
		"Notice":     notice,
		"Error":      errMsg,
	})
}

// AdminTours обработчик для GET /admin/tours.
func (h *Handler) AdminTours(c *gin.Context) {
	panel := h.toursPanel(c)
	panel.SetPage(pageParam(c))
	panel.SetSearch(c.Query("search"))
	if err := panel.Load(c.Request.Context()); err != nil {
		status, msg := failure(err)
		h.renderTours(c, status, panel, "", msg)
		return
	}
	h.renderTours(c, http.StatusOK, panel, "", "")
}

type tourInput struct {
	Title        string `form:"title"`
	Description  string `form:"description"`
	Price        string `form:"price"`
	Location     string `form:"location"`
	Duration     string `form:"duration"`
	Type         string `form:"type"`
	MaxGroupSize string `form:"max_group_size"`
	Rating       string `form:"rating"`
	Images       string `form:"images"`
	Itinerary    string `form:"itinerary"`
	Highlights   string `form:"highlights"`
	Included     string `form:"included"`
	Excluded     string `form:"excluded"`
	Countries    string `form:"countries"`
	Languages    string `form:"languages"`
	IsFeatured   bool   `form:"is_featured"`
	IsActive     bool   `form:"is_active"`
}

// splitLines разбивает текст по строкам, отбрасывая пустые.
func splitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// parseItinerary читает строки вида "Заголовок | описание".
func parseItinerary(s string) []model.ItineraryDay {
	days := []model.ItineraryDay{}
	for i, line := range splitLines(s) {
		title, description, _ := strings.Cut(line, "|")
		days = append(days, model.ItineraryDay{
			Day:         i + 1,
			Title:       strings.TrimSpace(title),
			Description: strings.TrimSpace(description),
			Activities:  []string{},
		})
	}
	return days
}

func formatItinerary(days []model.ItineraryDay) string {
	lines := make([]string, 0, len(days))
	for _, d := range days {
		line := d.Title
		if d.Description != "" {
			line += " | " + d.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (in tourInput) toAPI() apiclient.TourInput {
	return apiclient.TourInput{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Price:        cast.ToFloat64(strings.TrimSpace(in.Price)),
		Location:     strings.TrimSpace(in.Location),
		Duration:     strings.TrimSpace(in.Duration),
		Images:       splitLines(in.Images),
		Type:         strings.ToLower(strings.TrimSpace(in.Type)),
		MaxGroupSize: cast.ToInt(strings.TrimSpace(in.MaxGroupSize)),
		Rating:       cast.ToFloat64(strings.TrimSpace(in.Rating)),
		Itinerary:    parseItinerary(in.Itinerary),
		Highlights:   splitLines(in.Highlights),
		Included:     splitLines(in.Included),
		Excluded:     splitLines(in.Excluded),
		Countries:    splitLines(in.Countries),
		Languages:    splitLines(in.Languages),
		IsFeatured:   in.IsFeatured,
		IsActive:     in.IsActive,
	}
}

func tourFormFrom(t *model.Tour) tourInput {
	return tourInput{
		Title:        t.Title,
		Description:  t.Description,
		Price:        cast.ToString(t.Price),
		Location:     t.Location,
		Duration:     t.Duration,
		Type:         t.Type,
		MaxGroupSize: cast.ToString(t.MaxGroupSize),
		Rating:       cast.ToString(t.Rating),
		Images:       strings.Join(t.Images, "\n"),
		Itinerary:    formatItinerary(t.Itinerary),
		Highlights:   strings.Join(t.Highlights, "\n"),
		Included:     strings.Join(t.Included, "\n"),
		Excluded:     strings.Join(t.Excluded, "\n"),
		Countries:    strings.Join(t.Countries, "\n"),
		Languages:    strings.Join(t.Languages, "\n"),
		IsFeatured:   t.IsFeatured,
		IsActive:     t.IsActive,
	}
}

func (h *Handler) renderTourForm(c *gin.Context, status int, id int, form tourInput, errMsg string) {
	action, title := "/admin/tours", "New tour"
	if id > 0 {
		action, title = "/admin/tours/"+strconv.Itoa(id), "Edit tour"
	}
	h.render(c, status, "admin_tour_form.html", gin.H{"Title": title, "Action": action, "Form": form, "Error": errMsg})
}

// NewTourForm обработчик для GET /admin/tours/new.
func (h *Handler) NewTourForm(c *gin.Context) {
	h.renderTourForm(c, http.StatusOK, 0, tourInput{IsActive: true}, "")
}

// EditTourForm обработчик для GET /admin/tours/:id/edit.
func (h *Handler) EditTourForm(c *gin.Context) {
	tour, err := clientFrom(c).Tours.Get(c.Request.Context(), idParam(c))
	if err != nil {
		status, msg := failure(err)
		h.render(c, status, "error.html", gin.H{"Title": "Edit tour", "Error": msg})
		return
	}
	h.renderTourForm(c, http.StatusOK, tour.ID, tourFormFrom(tour), "")
}

// bindTour разбирает форму тура и загружает приложенное изображение, если оно есть.
// Загруженный URL становится основным изображением.
func (h *Handler) bindTour(c *gin.Context, panel *service.ToursPanel) (tourInput, apiclient.TourInput, error) {
	var in tourInput
	if err := c.ShouldBind(&in); err != nil {
		return in, apiclient.TourInput{}, service.ValidationErrors{"form": "Please check the form values."}
	}
	input := in.toAPI()
	if input.Title == "" {
		return in, input, service.ValidationErrors{"title": "Title is required."}
	}

	fh, err := c.FormFile("image_file")
	if err != nil {
		return in, input, nil
	}
	file, err := fh.Open()
	if err != nil {
		return in, input, err
	}
	defer file.Close()
	url, err := panel.UploadImage(c.Request.Context(), fh.Filename, file)
	if err != nil {
		return in, input, err
	}
	input.Images = append([]string{url}, input.Images...)
	in.Images = strings.Join(input.Images, "\n")
	return in, input, nil
}

// CreateTour обработчик для POST /admin/tours.
func (h *Handler) CreateTour(c *gin.Context) {
	panel := h.toursPanel(c)
	form, input, err := h.bindTour(c, panel)
	if err == nil {
		_, err = panel.Create(c.Request.Context(), input)
	}
	if err != nil {
		status, msg := failure(err)
		h.renderTourForm(c, status, 0, form, msg)
		return
	}
	h.renderTours(c, http.StatusOK, panel, "Tour created.", "")
}

// UpdateTour обработчик для POST /admin/tours/:id.
func (h *Handler) UpdateTour(c *gin.Context) {
	id := idParam(c)
	panel := h.toursPanel(c)
	form, input, err := h.bindTour(c, panel)
	if err == nil {
		_, err = panel.Update(c.Request.Context(), id, input)
	}
	if err != nil {
		status, msg := failure(err)
		h.renderTourForm(c, status, id, form, msg)
		return
	}
	h.renderTours(c, http.StatusOK, panel, "Tour updated.", "")
}

// DeleteTour обработчик для POST /admin/tours/:id/delete.
func (h *Handler) DeleteTour(c *gin.Context) {
	panel := h.toursPanel(c)
	if err := panel.Delete(c.Request.Context(), idParam(c)); err != nil {
		status, msg := failure(err)
		_ = panel.Load(c.Request.Context())
		h.renderTours(c, status, panel, "", msg)
		return
	}
	h.renderTours(c, http.StatusOK, panel, "Tour deleted.", "")
}

// --- бронирования ---

func (h *Handler) renderBookings(c *gin.Context, status int, panel *service.BookingsPanel, notice, errMsg string) {
	h.render(c, status, "admin_bookings.html", gin.H{
		"Title":      "Bookings",
		"Bookings":   panel.Items(),
		"Pagination": panel.Pagination(),
		"Status":     string(panel.Status()),
		"Search":     c.Query("search"),
		"Notice":     notice,
		"Error":      errMsg,
	})
}

// AdminBookings обработчик для GET /admin/bookings.
func (h *Handler) AdminBookings(c *gin.Context) {
	panel := service.NewBookingsPanel(clientFrom(c))
	panel.SetPage(pageParam(c))
	panel.SetSearch(c.Query("search"))
	if err := panel.SetStatus(model.BookingStatus(c.Query("status"))); err != nil {
		status, msg := failure(err)
		h.renderBookings(c, status, panel, "", msg)
		return
	}
	if err := panel.Load(c.Request.Context()); err != nil {
		status, msg := failure(err)
		h.renderBookings(c, status, panel, "", msg)
		return
	}
	h.renderBookings(c, http.StatusOK, panel, "", "")
}

// UpdateBookingStatus обработчик для POST /admin/bookings/:id/status.
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	ctx := c.Request.Context()
	panel := service.NewBookingsPanel(clientFrom(c))
	err := panel.UpdateStatus(ctx, idParam(c), model.BookingStatus(c.PostForm("status")))
	if err != nil {
		status, msg := failure(err)
		_ = panel.Load(ctx)
		h.renderBookings(c, status, panel, "", msg)
		return
	}
	h.renderBookings(c, http.StatusOK, panel, "Booking status updated.", "")
}

// DeleteBooking обработчик для POST /admin/bookings/:id/delete.
func (h *Handler) DeleteBooking(c *gin.Context) {
	ctx := c.Request.Context()
	panel := service.NewBookingsPanel(clientFrom(c))
	if err := panel.Delete(ctx, idParam(c)); err != nil {
		status, msg := failure(err)
		_ = panel.Load(ctx)
		h.renderBookings(c, status, panel, "", msg)
		return
	}
	h.renderBookings(c, http.StatusOK, panel, "Booking deleted.", "")
}

// --- пользователи ---

func (h *Handler) usersPanel(c *gin.Context) *service.UsersPanel {
	return service.NewUsersPanel(clientFrom(c), authFrom(c).User)
}

func (h *Handler) renderUsers(c *gin.Context, status int, panel *service.UsersPanel, notice, errMsg string) {
	h.render(c, status, "admin_users.html", gin.H{
		"Title":      "Users",
		"Users":      panel.Items(),
		"Pagination": panel.Pagination(),
		"Search":     c.Query("search"),
		"Notice":     notice,
		"Error":      errMsg,
	})
}

// AdminUsers обработчик для GET /admin/users.
func (h *Handler) AdminUsers(c *gin.Context) {
	panel := h.usersPanel(c)
	panel.SetPage(pageParam(c))
	panel.SetSearch(c.Query("search"))
	if err := panel.Load(c.Request.Context()); err != nil {
		status, msg := failure(err)
		h.renderUsers(c, status, panel, "", msg)
		return
	}
	h.renderUsers(c, http.StatusOK, panel, "", "")
}

type userInput struct {
	Name     string `form:"name"`
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
	IsAdmin  bool   `form:"is_admin"`
}

func (in userInput) toAPI() apiclient.UserInput {
	return apiclient.UserInput{
		Name:     strings.TrimSpace(in.Name),
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
		IsAdmin:  in.IsAdmin,
	}
}

// saveUser создает (id == 0) или изменяет пользователя.
func (h *Handler) saveUser(c *gin.Context, id int) {
	ctx := c.Request.Context()
	panel := h.usersPanel(c)
	var in userInput
	err := c.ShouldBind(&in)
	if err == nil {
		if id == 0 {
			_, err = panel.Create(ctx, in.toAPI())
		} else {
			_, err = panel.Update(ctx, id, in.toAPI())
		}
	}
	if err != nil {
		status, msg := failure(err)
		_ = panel.Load(ctx)
		h.renderUsers(c, status, panel, "", msg)
		return
	}
	notice := "User created."
	if id > 0 {
		notice = "User updated."
	}
	h.renderUsers(c, http.StatusOK, panel, notice, "")
}

// CreateUser обработчик для POST /admin/users.
func (h *Handler) CreateUser(c *gin.Context) {
	h.saveUser(c, 0)
}

// UpdateUser обработчик для POST /admin/users/:id.
func (h *Handler) UpdateUser(c *gin.Context) {
	h.saveUser(c, idParam(c))
}

// DeleteUser обработчик для POST /admin/users/:id/delete.
// Список загружается до удаления: по нему проверяется флаг администратора.
func (h *Handler) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	panel := h.usersPanel(c)
	panel.SetPage(pageParam(c))
	if err := panel.Load(ctx); err != nil {
		status, msg := failure(err)
		h.renderUsers(c, status, panel, "", msg)
		return
	}
	if err := panel.Delete(ctx, idParam(c)); err != nil {
		status, msg := failure(err)
		h.renderUsers(c, status, panel, "", msg)
		return
	}
	h.renderUsers(c, http.StatusOK, panel, "User deleted.", "")
}
