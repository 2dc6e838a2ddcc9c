package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cast"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/service"
	"github.com/seifadel74/getyourtrip/internal/session"
)

type conversationKind int

const (
	kindBooking conversationKind = iota
	kindContact
)

// skipAnswer оставляет текущее значение поля (или пропускает необязательное).
const skipAnswer = "-"

type question struct {
	key      string
	prompt   string
	optional bool
}

var bookingQuestions = []question{
	{key: "name", prompt: "What is the full name for the booking?"},
	{key: "email", prompt: "Your email address?"},
	{key: "phone", prompt: "Your phone number?"},
	{key: "booking_date", prompt: "Travel date (YYYY-MM-DD)? Send - to skip.", optional: true},
	{key: "adults", prompt: "How many adults?"},
	{key: "children", prompt: "How many children? Send 0 if none."},
	{key: "special_requests", prompt: "Any special requests? Send - to skip.", optional: true},
}

var contactQuestions = []question{
	{key: "name", prompt: "What is your name?"},
	{key: "email", prompt: "Your email address?"},
	{key: "mobile_number", prompt: "Mobile number? Send - to skip.", optional: true},
	{key: "message", prompt: "Your message?"},
}

// profileKeys - поля, которые запоминаются в сессии чата после успешного бронирования.
var profileKeys = map[string]string{
	"name":  "profile_name",
	"email": "profile_email",
	"phone": "profile_phone",
}

var errRequired = errors.New("This answer is required.")

// conversation - пошаговый опрос в чате: бронирование или сообщение в поддержку.
type conversation struct {
	kind      conversationKind
	questions []question
	pending   []string

	wizard  *service.BookingWizard
	form    service.BookingForm
	contact service.ContactForm
}

func newBookingConversation(w *service.BookingWizard) *conversation {
	return &conversation{
		kind:      kindBooking,
		questions: bookingQuestions,
		pending:   questionKeys(bookingQuestions),
		wizard:    w,
		form:      w.Form(),
	}
}

func newContactConversation() *conversation {
	return &conversation{
		kind:      kindContact,
		questions: contactQuestions,
		pending:   questionKeys(contactQuestions),
	}
}

func questionKeys(qs []question) []string {
	keys := make([]string, len(qs))
	for i, q := range qs {
		keys[i] = q.key
	}
	return keys
}

func (c *conversation) question(key string) question {
	for _, q := range c.questions {
		if q.key == key {
			return q
		}
	}
	return question{key: key, prompt: key + "?"}
}

func (c *conversation) prompt() string {
	q := c.question(c.pending[0])
	if current := c.current(q.key); current != "" {
		return fmt.Sprintf("%s (now: %s, send - to keep)", q.prompt, current)
	}
	return q.prompt
}

// answer записывает ответ на текущий вопрос и переходит к следующему.
func (c *conversation) answer(text string) error {
	q := c.question(c.pending[0])
	text = strings.TrimSpace(text)
	if text == skipAnswer {
		if !q.optional && c.current(q.key) == "" {
			return errRequired
		}
		c.pending = c.pending[1:]
		return nil
	}
	if text == "" && !q.optional {
		return errRequired
	}
	if err := c.set(q.key, text); err != nil {
		return err
	}
	c.pending = c.pending[1:]
	return nil
}

func (c *conversation) current(key string) string {
	if c.kind == kindContact {
		switch key {
		case "name":
			return c.contact.Name
		case "email":
			return c.contact.Email
		case "mobile_number":
			return c.contact.MobileNumber
		case "message":
			return c.contact.Message
		}
		return ""
	}
	switch key {
	case "name":
		return c.form.Name
	case "email":
		return c.form.Email
	case "phone":
		return c.form.Phone
	case "booking_date":
		return c.form.BookingDate
	case "adults":
		return strconv.Itoa(c.form.Adults)
	case "children":
		return strconv.Itoa(c.form.Children)
	case "special_requests":
		return c.form.SpecialRequests
	}
	return ""
}

func (c *conversation) set(key, value string) error {
	if c.kind == kindContact {
		switch key {
		case "name":
			c.contact.Name = value
		case "email":
			c.contact.Email = value
		case "mobile_number":
			c.contact.MobileNumber = value
		case "message":
			c.contact.Message = value
		}
		return nil
	}
	switch key {
	case "name":
		c.form.Name = value
	case "email":
		c.form.Email = value
	case "phone":
		c.form.Phone = value
	case "booking_date":
		c.form.BookingDate = value
	case "adults", "children":
		n, err := cast.ToIntE(value)
		if err != nil || n < 0 {
			return errors.New("Please send a whole number.")
		}
		if key == "adults" {
			c.form.Adults = n
		} else {
			c.form.Children = n
		}
	case "special_requests":
		c.form.SpecialRequests = value
	}
	return nil
}

// refill снова задает вопросы по полям, не прошедшим проверку.
// Возвращает false, если err не является ошибкой валидации формы.
func refill(c *conversation, err error) bool {
	var verrs service.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	c.pending = c.pending[:0]
	for _, q := range c.questions {
		if _, ok := verrs[q.key]; ok {
			c.pending = append(c.pending, q.key)
		}
	}
	return len(c.pending) > 0
}

// --- бронирование ---

func (b *Bot) startBooking(ctx context.Context, chatID int64, c *chat, tourID int) {
	tour, err := b.opts.Catalog.Tour(ctx, tourID)
	if err != nil {
		b.send(chatID, apiclient.Message(err))
		return
	}
	conv := newBookingConversation(service.NewBookingWizard(*tour, b.opts.API.Bookings, b.opts.PaymentDelay))
	b.loadProfile(ctx, chatID, conv)
	c.conv = conv

	b.send(chatID, fmt.Sprintf("Booking %s: %s per adult, children pay %d%%. Send /cancel to stop.",
		tour.Title, money(tour.Price), int(service.ChildDiscount*100)))
	if len(conv.pending) == 0 {
		b.showSummary(chatID, conv)
		return
	}
	b.ask(chatID, conv)
}

// loadProfile подставляет контактные данные из прошлого бронирования в этом чате.
func (b *Bot) loadProfile(ctx context.Context, chatID int64, conv *conversation) {
	store := b.store(chatID)
	pending := conv.pending[:0]
	for _, key := range questionKeys(bookingQuestions) {
		if storeKey, ok := profileKeys[key]; ok {
			value, err := store.Get(ctx, storeKey)
			if err == nil && value != "" {
				_ = conv.set(key, value)
				continue
			}
			if err != nil && !errors.Is(err, session.ErrNotFound) {
				log.Printf("bot: не удалось прочитать профиль чата %d: %v", chatID, err)
			}
		}
		pending = append(pending, key)
	}
	conv.pending = pending
}

func (b *Bot) saveProfile(ctx context.Context, chatID int64, form service.BookingForm) {
	store := b.store(chatID)
	values := map[string]string{"name": form.Name, "email": form.Email, "phone": form.Phone}
	for key, storeKey := range profileKeys {
		if err := store.Set(ctx, storeKey, strings.TrimSpace(values[key])); err != nil {
			log.Printf("bot: не удалось сохранить профиль чата %d: %v", chatID, err)
			return
		}
	}
}

func (b *Bot) showSummary(chatID int64, conv *conversation) {
	msg := tgbotapi.NewMessage(chatID, summaryText(conv.wizard.Tour(), conv.form))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Accept terms & continue", actionConfirm),
		tgbotapi.NewInlineKeyboardButtonData("Cancel", actionCancel),
	))
	b.deliver(msg)
}

func (b *Bot) activeWizard(c *chat, step service.WizardStep) *service.BookingWizard {
	if c.conv == nil || c.conv.kind != kindBooking || c.conv.wizard.Step() != step {
		return nil
	}
	return c.conv.wizard
}

func (b *Bot) confirmDetails(chatID int64, c *chat) {
	w := b.activeWizard(c, service.StepInfo)
	if w == nil || len(c.conv.pending) > 0 {
		b.send(chatID, "There is no booking waiting for confirmation.")
		return
	}
	c.conv.form.AcceptTerms = true
	if err := w.Fill(c.conv.form); err != nil {
		b.send(chatID, apiclient.Message(err))
		return
	}
	if err := w.Next(); err != nil {
		if refill(c.conv, err) {
			b.send(chatID, err.Error())
			b.ask(chatID, c.conv)
			return
		}
		b.send(chatID, err.Error())
		return
	}
	b.showPayment(chatID, w)
}

func (b *Bot) showPayment(chatID int64, w *service.BookingWizard) {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Total to pay: %s", money(w.Total())))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Pay "+money(w.Total()), actionPay),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Back", actionBack),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", actionCancel),
		),
	)
	b.deliver(msg)
}

func (b *Bot) backToDetails(chatID int64, c *chat) {
	w := b.activeWizard(c, service.StepPayment)
	if w == nil {
		b.send(chatID, "There is no booking to go back to.")
		return
	}
	w.Back()
	c.conv.form = w.Form()
	c.conv.pending = questionKeys(bookingQuestions)
	b.ask(chatID, c.conv)
}

func (b *Bot) pay(ctx context.Context, chatID int64, c *chat) {
	w := b.activeWizard(c, service.StepPayment)
	if w == nil {
		b.send(chatID, "There is no booking waiting for payment.")
		return
	}
	b.send(chatID, "Processing your payment...")
	booking, err := w.Submit(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("bot: бронирование в чате %d не создано: %v", chatID, err)
		b.send(chatID, "Payment failed: "+apiclient.Message(err))
		b.showPayment(chatID, w)
		return
	}
	b.saveProfile(ctx, chatID, w.Form())
	c.conv = nil
	b.send(chatID, fmt.Sprintf("Booking confirmed! Your booking number is %s. We sent the details to %s.",
		booking.BookingNumber, booking.Email))
}
