package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/thoas/go-funk"

	"github.com/seifadel74/getyourtrip/internal/model"
)

// DurationBucket - диапазон длительности в днях: "a-b" или "a+" (Open).
type DurationBucket struct {
	Min  int
	Max  int
	Open bool
}

// ParseDurationBucket разбирает строку вида "4-7" или "14+".
func ParseDurationBucket(s string) (DurationBucket, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "+") {
		min, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
		if err != nil || min < 0 {
			return DurationBucket{}, fmt.Errorf("некорректный диапазон длительности %q", s)
		}
		return DurationBucket{Min: min, Open: true}, nil
	}
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return DurationBucket{}, fmt.Errorf("некорректный диапазон длительности %q", s)
	}
	min, err1 := strconv.Atoi(strings.TrimSpace(lo))
	max, err2 := strconv.Atoi(strings.TrimSpace(hi))
	if err1 != nil || err2 != nil || min < 0 || max < min {
		return DurationBucket{}, fmt.Errorf("некорректный диапазон длительности %q", s)
	}
	return DurationBucket{Min: min, Max: max}, nil
}

func (b DurationBucket) String() string {
	if b.Open {
		return fmt.Sprintf("%d+", b.Min)
	}
	return fmt.Sprintf("%d-%d", b.Min, b.Max)
}

// Contains сообщает, попадает ли число дней в диапазон (границы включительно).
func (b DurationBucket) Contains(days int) bool {
	if days < b.Min {
		return false
	}
	return b.Open || days <= b.Max
}

// DurationBuckets - диапазоны, которые предлагает интерфейс.
var DurationBuckets = []string{"1-3", "4-7", "8-13", "14+"}

// TourFilter - критерии фильтрации каталога. Нулевое значение пропускает все туры.
type TourFilter struct {
	Destination string
	Duration    *DurationBucket
	MinPrice    float64
	// MaxPrice 0 - без верхней границы.
	MaxPrice float64
	Types    []string
}

// Active сообщает, задан ли хотя бы один критерий.
func (f TourFilter) Active() bool {
	return f.Destination != "" || f.Duration != nil || f.MinPrice > 0 || f.MaxPrice > 0 || len(f.Types) > 0
}

// FilterTours возвращает новый срез туров, удовлетворяющих всем критериям, в исходном порядке.
func FilterTours(tours []model.Tour, f TourFilter) []model.Tour {
	destination := strings.ToLower(strings.TrimSpace(f.Destination))
	types := make([]string, 0, len(f.Types))
	for _, t := range f.Types {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			types = append(types, t)
		}
	}

	result := make([]model.Tour, 0, len(tours))
	for _, tour := range tours {
		if destination != "" && !strings.Contains(strings.ToLower(tour.Location), destination) {
			continue
		}
		if f.Duration != nil {
			days, ok := LeadingDays(tour.Duration)
			if !ok || !f.Duration.Contains(days) {
				continue
			}
		}
		if tour.Price < f.MinPrice || (f.MaxPrice > 0 && tour.Price > f.MaxPrice) {
			continue
		}
		if len(types) > 0 && !funk.ContainsString(types, strings.ToLower(tour.Type)) {
			continue
		}
		result = append(result, tour)
	}
	return result
}

// LeadingDays извлекает ведущее целое из строки длительности ("5 days" -> 5).
func LeadingDays(duration string) (int, bool) {
	duration = strings.TrimSpace(duration)
	end := 0
	for end < len(duration) && duration[end] >= '0' && duration[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	days, err := strconv.Atoi(duration[:end])
	return days, err == nil
}

// ParseTourFilter строит фильтр из параметров запроса.
// Некорректные значения игнорируются.
func ParseTourFilter(q url.Values) TourFilter {
	f := TourFilter{
		Destination: strings.TrimSpace(q.Get("destination")),
		MinPrice:    nonNegative(q.Get("min_price")),
		MaxPrice:    nonNegative(q.Get("max_price")),
	}
	if raw := q.Get("duration"); raw != "" {
		if bucket, err := ParseDurationBucket(raw); err == nil {
			f.Duration = &bucket
		}
	}
	for _, t := range q["type"] {
		if t = strings.TrimSpace(t); t != "" {
			f.Types = append(f.Types, t)
		}
	}
	return f
}

// Values - обратное преобразование для ссылок с сохранением фильтра.
func (f TourFilter) Values() url.Values {
	q := url.Values{}
	if f.Destination != "" {
		q.Set("destination", f.Destination)
	}
	if f.Duration != nil {
		q.Set("duration", f.Duration.String())
	}
	if f.MinPrice > 0 {
		q.Set("min_price", cast.ToString(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		q.Set("max_price", cast.ToString(f.MaxPrice))
	}
	for _, t := range f.Types {
		q.Add("type", t)
	}
	return q
}

func nonNegative(raw string) float64 {
	v, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
