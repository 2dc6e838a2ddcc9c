package model

import (
	"encoding/json"
	"time"

	"github.com/spf13/cast"
)

// ItineraryDay описывает один день программы тура.
type ItineraryDay struct {
	Day         int      `json:"day"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Activities  []string `json:"activities"`
}

// Tour представляет тур из каталога агентства.
type Tour struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Price        float64        `json:"price"`
	Location     string         `json:"location"`
	Duration     string         `json:"duration"` // "5", "5 days" и т.п.
	Images       []string       `json:"image"`    // первое изображение - основное
	Type         string         `json:"type"`
	MaxGroupSize int            `json:"max_group_size"`
	Rating       float64        `json:"rating"`
	Itinerary    []ItineraryDay `json:"itinerary"`
	Highlights   []string       `json:"highlights"`
	Included     []string       `json:"included"`
	Excluded     []string       `json:"excluded"`
	Countries    []string       `json:"countries"`
	Languages    []string       `json:"languages"`
	IsFeatured   bool           `json:"is_featured"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type tourAlias Tour

// UnmarshalJSON приводит ответ API к полностью заполненной структуре:
// image может прийти строкой или массивом, числовые поля - строками,
// отсутствующие списки становятся пустыми.
func (t *Tour) UnmarshalJSON(data []byte) error {
	aux := struct {
		*tourAlias
		Image        json.RawMessage `json:"image"`
		Price        interface{}     `json:"price"`
		Duration     interface{}     `json:"duration"`
		MaxGroupSize interface{}     `json:"max_group_size"`
		Rating       interface{}     `json:"rating"`
	}{tourAlias: (*tourAlias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	images, err := decodeImages(aux.Image)
	if err != nil {
		return err
	}
	t.Images = images
	// нечисловая цена считается нулевой
	t.Price = cast.ToFloat64(aux.Price)
	t.Duration = cast.ToString(aux.Duration)
	t.MaxGroupSize = cast.ToInt(aux.MaxGroupSize)
	t.Rating = cast.ToFloat64(aux.Rating)
	t.normalize()
	return nil
}

func decodeImages(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return []string{}, nil
		}
		return []string{single}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	images := make([]string, 0, len(list))
	for _, img := range list {
		if img != "" {
			images = append(images, img)
		}
	}
	return images, nil
}

func (t *Tour) normalize() {
	if t.Images == nil {
		t.Images = []string{}
	}
	if t.Itinerary == nil {
		t.Itinerary = []ItineraryDay{}
	}
	for i := range t.Itinerary {
		if t.Itinerary[i].Activities == nil {
			t.Itinerary[i].Activities = []string{}
		}
	}
	for _, list := range []*[]string{&t.Highlights, &t.Included, &t.Excluded, &t.Countries, &t.Languages} {
		if *list == nil {
			*list = []string{}
		}
	}
}

// PrimaryImage возвращает основное изображение тура или пустую строку.
func (t Tour) PrimaryImage() string {
	if len(t.Images) == 0 {
		return ""
	}
	return t.Images[0]
}
