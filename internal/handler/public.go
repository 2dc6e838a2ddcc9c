package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/seifadel74/getyourtrip/internal/model"
	"github.com/seifadel74/getyourtrip/internal/service"
)

// Home обработчик для GET / - рекомендуемые туры.
func (h *Handler) Home(c *gin.Context) {
	featured, err := h.opts.Catalog.Featured(c.Request.Context())
	if err != nil {
		status, msg := failure(err)
		h.render(c, status, "home.html", gin.H{"Title": "Get Your Trip", "Error": msg})
		return
	}
	h.render(c, http.StatusOK, "home.html", gin.H{"Title": "Get Your Trip", "Tours": featured})
}

// ListTours обработчик для GET /tours - каталог с фильтрами из строки запроса.
func (h *Handler) ListTours(c *gin.Context) {
	ctx := c.Request.Context()
	filter := service.ParseTourFilter(c.Request.URL.Query())
	data := gin.H{"Title": "Tours", "Filter": filter, "Duration": "", "Tours": []model.Tour{}}
	if filter.Duration != nil {
		data["Duration"] = filter.Duration.String()
	}

	tours, err := h.opts.Catalog.Search(ctx, filter)
	if err == nil {
		data["Types"], err = h.opts.Catalog.Types(ctx)
	}
	if err != nil {
		status, msg := failure(err)
		data["Error"] = msg
		h.render(c, status, "tours.html", data)
		return
	}
	data["Tours"] = tours
	h.render(c, http.StatusOK, "tours.html", data)
}

// loadTour загружает тур из параметра :id. При ошибке ответ уже отправлен.
func (h *Handler) loadTour(c *gin.Context) (*model.Tour, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.render(c, http.StatusNotFound, "error.html", gin.H{"Title": "Not found", "Error": "Tour not found."})
		return nil, false
	}
	tour, err := h.opts.Catalog.Tour(c.Request.Context(), id)
	if err != nil {
		status, msg := failure(err)
		if status == http.StatusNotFound {
			msg = "Tour not found."
		}
		h.render(c, status, "error.html", gin.H{"Title": "Tour", "Error": msg})
		return nil, false
	}
	return tour, true
}

// ShowTour обработчик для GET /tours/:id.
func (h *Handler) ShowTour(c *gin.Context) {
	tour, ok := h.loadTour(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "tour.html", gin.H{"Title": tour.Title, "Tour": tour, "Review": reviewInput{Rating: 5}})
}

type bookingInput struct {
	Name            string `form:"name"`
	Email           string `form:"email"`
	Phone           string `form:"phone"`
	BookingDate     string `form:"booking_date"`
	Adults          int    `form:"adults"`
	Children        int    `form:"children"`
	SpecialRequests string `form:"special_requests"`
	AcceptTerms     bool   `form:"accept_terms"`
	Action          string `form:"action"`
}

func (in bookingInput) form() service.BookingForm {
	return service.BookingForm{
		Name:            in.Name,
		Email:           in.Email,
		Phone:           in.Phone,
		BookingDate:     in.BookingDate,
		Adults:          in.Adults,
		Children:        in.Children,
		SpecialRequests: in.SpecialRequests,
		AcceptTerms:     in.AcceptTerms,
	}
}

// BookingForm обработчик для GET /tours/:id/book - первый шаг мастера.
func (h *Handler) BookingForm(c *gin.Context) {
	tour, ok := h.loadTour(c)
	if !ok {
		return
	}
	wizard := service.NewBookingWizard(*tour, h.public.Bookings, h.opts.PaymentDelay)
	h.renderWizard(c, http.StatusOK, wizard, "")
}

// BookingStep обработчик для POST /tours/:id/book. Мастер восстанавливается из полей формы:
// данные первого шага приходят скрытыми полями со страницы оплаты.
func (h *Handler) BookingStep(c *gin.Context) {
	tour, ok := h.loadTour(c)
	if !ok {
		return
	}
	wizard := service.NewBookingWizard(*tour, h.public.Bookings, h.opts.PaymentDelay)

	var in bookingInput
	if err := c.ShouldBind(&in); err != nil {
		h.renderWizard(c, http.StatusUnprocessableEntity, wizard, "Please check the form values.")
		return
	}
	_ = wizard.Fill(in.form())

	switch in.Action {
	case "back":
		if wizard.Next() == nil {
			wizard.Back()
		}
		h.renderWizard(c, http.StatusOK, wizard, "")
	case "pay":
		if err := wizard.Next(); err != nil {
			status, msg := failure(err)
			h.renderWizard(c, status, wizard, msg)
			return
		}
		if _, err := wizard.Submit(c.Request.Context()); err != nil {
			status, msg := failure(err)
			h.renderWizard(c, status, wizard, msg)
			return
		}
		h.renderWizard(c, http.StatusCreated, wizard, "")
	default:
		if err := wizard.Next(); err != nil {
			status, msg := failure(err)
			h.renderWizard(c, status, wizard, msg)
			return
		}
		h.renderWizard(c, http.StatusOK, wizard, "")
	}
}

func (h *Handler) renderWizard(c *gin.Context, status int, w *service.BookingWizard, errMsg string) {
	h.render(c, status, "book.html", gin.H{
		"Title":   "Book " + w.Tour().Title,
		"Tour":    w.Tour(),
		"Step":    w.Step().String(),
		"Form":    w.Form(),
		"Total":   w.Total(),
		"Booking": w.Booking(),
		"Error":   errMsg,
	})
}

type reviewInput struct {
	Author    string `form:"author"`
	Email     string `form:"email"`
	Rating    int    `form:"rating"`
	Comment   string `form:"comment"`
	BookingID int    `form:"booking_id"`
}

// SubmitReview обработчик для POST /tours/:id/reviews.
func (h *Handler) SubmitReview(c *gin.Context) {
	tour, ok := h.loadTour(c)
	if !ok {
		return
	}
	data := gin.H{"Title": tour.Title, "Tour": tour}

	var in reviewInput
	if err := c.ShouldBind(&in); err != nil {
		data["Review"], data["Error"] = in, "Please check the form values."
		h.render(c, http.StatusUnprocessableEntity, "tour.html", data)
		return
	}
	msg, err := h.reviews.Submit(c.Request.Context(), service.ReviewForm{
		TourID:    tour.ID,
		BookingID: in.BookingID,
		Author:    in.Author,
		Email:     in.Email,
		Rating:    in.Rating,
		Comment:   in.Comment,
	})
	if err != nil {
		status, errMsg := failure(err)
		data["Review"], data["Error"] = in, errMsg
		h.render(c, status, "tour.html", data)
		return
	}
	data["Review"], data["Notice"] = reviewInput{Rating: 5}, msg
	h.render(c, http.StatusOK, "tour.html", data)
}

type contactInput struct {
	Name         string `form:"name"`
	Email        string `form:"email"`
	Message      string `form:"message"`
	MobileNumber string `form:"mobile_number"`
}

// ContactForm обработчик для GET /contact.
func (h *Handler) ContactForm(c *gin.Context) {
	h.render(c, http.StatusOK, "contact.html", gin.H{"Title": "Contact us", "Form": contactInput{}})
}

// SubmitContact обработчик для POST /contact.
func (h *Handler) SubmitContact(c *gin.Context) {
	var in contactInput
	_ = c.ShouldBind(&in)
	msg, err := h.contact.Send(c.Request.Context(), service.ContactForm{
		Name:         in.Name,
		Email:        in.Email,
		Message:      in.Message,
		MobileNumber: in.MobileNumber,
	})
	if err != nil {
		status, errMsg := failure(err)
		h.render(c, status, "contact.html", gin.H{"Title": "Contact us", "Form": in, "Error": errMsg})
		return
	}
	h.render(c, http.StatusOK, "contact.html", gin.H{"Title": "Contact us", "Form": contactInput{}, "Notice": msg})
}
