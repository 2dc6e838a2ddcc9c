package service

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/thoas/go-funk"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/model"
	"github.com/seifadel74/getyourtrip/internal/repository"
)

const catalogCacheKey = "catalog:active_tours"

// CatalogService - публичный каталог туров. Список активных туров кэшируется,
// фильтрация выполняется локально поверх кэша.
type CatalogService struct {
	tours *apiclient.TourService
	cache repository.CacheRepository
}

// NewCatalogService создает сервис каталога.
func NewCatalogService(tours *apiclient.TourService, cache repository.CacheRepository) *CatalogService {
	return &CatalogService{tours: tours, cache: cache}
}

// All возвращает все активные туры, постранично по apiclient.MaxPerPage.
func (s *CatalogService) All(ctx context.Context) ([]model.Tour, error) {
	if tours, ok := s.cache.Get(catalogCacheKey); ok {
		return tours, nil
	}
	active := true
	var tours []model.Tour
	for page, last := 1, 1; page <= last; page++ {
		batch, pagination, err := s.tours.List(ctx, apiclient.TourQuery{Active: &active, Page: page, PerPage: apiclient.MaxPerPage})
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tours = append(tours, batch...)
		if pagination != nil && page == 1 {
			last = pagination.LastPage
			if last > 1 {
				log.Printf("catalog: %d активных туров, загружается %d страниц", pagination.Total, last)
			}
		}
	}
	if tours == nil {
		tours = []model.Tour{}
	}
	s.cache.Set(catalogCacheKey, tours)
	return tours, nil
}

// Search применяет фильтр к каталогу.
func (s *CatalogService) Search(ctx context.Context, f TourFilter) ([]model.Tour, error) {
	tours, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return FilterTours(tours, f), nil
}

// Featured возвращает рекомендуемые туры в порядке каталога.
func (s *CatalogService) Featured(ctx context.Context) ([]model.Tour, error) {
	tours, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return funk.Filter(tours, func(t model.Tour) bool { return t.IsFeatured }).([]model.Tour), nil
}

// Types возвращает отсортированный список различных типов туров в нижнем регистре.
func (s *CatalogService) Types(ctx context.Context) ([]string, error) {
	tours, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(tours))
	for _, t := range tours {
		if t.Type != "" {
			types = append(types, strings.ToLower(t.Type))
		}
	}
	types = funk.UniqString(types)
	sort.Strings(types)
	return types, nil
}

// Tour загружает тур по id напрямую из API.
func (s *CatalogService) Tour(ctx context.Context, id int) (*model.Tour, error) {
	return s.tours.Get(ctx, id)
}

// Invalidate сбрасывает кэш после изменений каталога.
func (s *CatalogService) Invalidate() {
	s.cache.Delete(catalogCacheKey)
}
