package apiclient

import (
	"context"
	"fmt"

	"github.com/seifadel74/getyourtrip/internal/model"
)

// TourQuery - параметры списка туров.
type TourQuery struct {
	Featured *bool  `mapstructure:"featured"`
	Active   *bool  `mapstructure:"is_active"`
	Type     string `mapstructure:"type"`
	Location string `mapstructure:"location"`
	Search   string `mapstructure:"search"`
	Sort     string `mapstructure:"sort"`
	Page     int    `mapstructure:"page"`
	PerPage  int    `mapstructure:"per_page"`
}

// TourInput - тело запроса на создание или изменение тура.
type TourInput struct {
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Price        float64              `json:"price"`
	Location     string               `json:"location"`
	Duration     string               `json:"duration"`
	Images       []string             `json:"image"`
	Type         string               `json:"type"`
	MaxGroupSize int                  `json:"max_group_size"`
	Rating       float64              `json:"rating"`
	Itinerary    []model.ItineraryDay `json:"itinerary"`
	Highlights   []string             `json:"highlights"`
	Included     []string             `json:"included"`
	Excluded     []string             `json:"excluded"`
	Countries    []string             `json:"countries"`
	Languages    []string             `json:"languages"`
	IsFeatured   bool                 `json:"is_featured"`
	IsActive     bool                 `json:"is_active"`
}

// TourService - обертка над /tours.
type TourService struct {
	client *Client
}

func (s *TourService) List(ctx context.Context, q TourQuery) ([]model.Tour, *model.Pagination, error) {
	q.PerPage = clampPerPage(q.PerPage)
	return list[model.Tour](ctx, s.client, "/tours", q)
}

func (s *TourService) Get(ctx context.Context, id int) (*model.Tour, error) {
	return one[model.Tour](ctx, s.client, "GET", fmt.Sprintf("/tours/%d", id), nil)
}

func (s *TourService) Create(ctx context.Context, in TourInput) (*model.Tour, error) {
	return one[model.Tour](ctx, s.client, "POST", "/tours", in)
}

func (s *TourService) Update(ctx context.Context, id int, in TourInput) (*model.Tour, error) {
	return one[model.Tour](ctx, s.client, "PUT", fmt.Sprintf("/tours/%d", id), in)
}

func (s *TourService) Delete(ctx context.Context, id int) error {
	return remove(ctx, s.client, fmt.Sprintf("/tours/%d", id))
}
