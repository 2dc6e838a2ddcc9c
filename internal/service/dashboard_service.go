package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
)

// Stats - счетчики панели администратора.
type Stats struct {
	Tours    int
	Bookings int
	Users    int
}

// DashboardService собирает статистику для панели администратора.
type DashboardService struct {
	api *apiclient.Client
}

func NewDashboardService(api *apiclient.Client) *DashboardService {
	return &DashboardService{api: api}
}

// Stats выполняет три запроса параллельно. Ошибка любого из них - ошибка всей загрузки.
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, page, err := s.api.Tours.List(gctx, apiclient.TourQuery{PerPage: 1})
		if err != nil {
			return err
		}
		stats.Tours = page.Total
		return nil
	})
	g.Go(func() error {
		_, page, err := s.api.Bookings.List(gctx, apiclient.BookingQuery{PerPage: 1})
		if err != nil {
			return err
		}
		stats.Bookings = page.Total
		return nil
	})
	g.Go(func() error {
		_, page, err := s.api.Users.List(gctx, apiclient.UserQuery{PerPage: 1})
		if err != nil {
			return err
		}
		stats.Users = page.Total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
