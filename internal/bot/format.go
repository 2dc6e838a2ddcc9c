package bot

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/seifadel74/getyourtrip/internal/model"
	"github.com/seifadel74/getyourtrip/internal/service"
)

// Данные inline-кнопок: "tour:<id>", "book:<id>" или действие мастера без id.
const (
	actionTour    = "tour"
	actionBook    = "book"
	actionConfirm = "confirm"
	actionBack    = "back"
	actionPay     = "pay"
	actionCancel  = "cancel"
)

// maxButtons - сколько туров помещается в одну клавиатуру.
const maxButtons = 10

const maxButtonTitle = 32

func callbackData(action string, id int) string {
	return action + ":" + strconv.Itoa(id)
}

// ParseCallback разбирает данные inline-кнопки. Для кнопок без id возвращается 0.
func ParseCallback(data string) (string, int) {
	action, rest, _ := strings.Cut(data, ":")
	id, _ := strconv.Atoi(rest)
	return action, id
}

// ParseTourArgs превращает аргументы /tours в фильтр.
// Понимает key=value (destination, duration, min, max, type), голые диапазоны
// длительности ("4-7", "14+") и слова, которые складываются в направление.
func ParseTourArgs(args string) service.TourFilter {
	values := url.Values{}
	var words []string
	for _, tok := range strings.Fields(args) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			if _, err := service.ParseDurationBucket(tok); err == nil {
				values.Set("duration", tok)
				continue
			}
			words = append(words, tok)
			continue
		}
		switch strings.ToLower(key) {
		case "destination", "to":
			words = append(words, value)
		case "duration", "days":
			values.Set("duration", value)
		case "min", "min_price":
			values.Set("min_price", value)
		case "max", "max_price":
			values.Set("max_price", value)
		case "type":
			for _, t := range strings.Split(value, ",") {
				values.Add("type", t)
			}
		}
	}
	if len(words) > 0 {
		values.Set("destination", strings.Join(words, " "))
	}
	return service.ParseTourFilter(values)
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func tourListText(n int) string {
	if n > maxButtons {
		return fmt.Sprintf("Found %d tours, showing the first %d. Add filters to narrow the list.", n, maxButtons)
	}
	return fmt.Sprintf("Found %d tours:", n)
}

func tourKeyboard(tours []model.Tour) tgbotapi.InlineKeyboardMarkup {
	if len(tours) > maxButtons {
		tours = tours[:maxButtons]
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tours))
	for _, t := range tours {
		label := fmt.Sprintf("%s · %s", truncate(t.Title, maxButtonTitle), money(t.Price))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackData(actionTour, t.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func tourText(t model.Tour) string {
	var sb strings.Builder
	sb.WriteString(t.Title)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s · %s days · %s\n", t.Location, t.Duration, t.Type)
	fmt.Fprintf(&sb, "%s per adult", money(t.Price))
	if t.Rating > 0 {
		fmt.Fprintf(&sb, " · rated %.1f", t.Rating)
	}
	sb.WriteString("\n")
	if d := strings.TrimSpace(t.Description); d != "" {
		sb.WriteString("\n")
		sb.WriteString(d)
		sb.WriteString("\n")
	}
	if len(t.Highlights) > 0 {
		sb.WriteString("\nHighlights:\n")
		for _, h := range t.Highlights {
			sb.WriteString("• " + h + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func summaryText(t model.Tour, f service.BookingForm) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Please check your booking for %s:\n\n", t.Title)
	fmt.Fprintf(&sb, "Name: %s\nEmail: %s\nPhone: %s\n", f.Name, f.Email, f.Phone)
	if f.BookingDate != "" {
		fmt.Fprintf(&sb, "Date: %s\n", f.BookingDate)
	}
	fmt.Fprintf(&sb, "Travellers: %d adults, %d children\n", f.Adults, f.Children)
	if f.SpecialRequests != "" {
		fmt.Fprintf(&sb, "Requests: %s\n", f.SpecialRequests)
	}
	fmt.Fprintf(&sb, "\nTotal: %s", money(service.TotalPrice(t.Price, f.Adults, f.Children)))
	return sb.String()
}
