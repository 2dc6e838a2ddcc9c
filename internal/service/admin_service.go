package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/model"
)

// Ошибки клиентских ограничений на удаление пользователей. Сервер обязан проверять то же самое.
var (
	ErrDeleteSelf    = errors.New("you cannot delete your own account")
	ErrDeleteAdmin   = errors.New("admin accounts cannot be deleted")
	ErrInvalidStatus = errors.New("invalid booking status")
)

// PageFetcher загружает одну страницу ресурса.
type PageFetcher[T any] func(ctx context.Context, page, perPage int) ([]T, *model.Pagination, error)

// Panel хранит одну загруженную страницу ресурса. Поиск фильтрует только ее,
// серверной пагинации по поиску нет.
type Panel[T any] struct {
	fetch PageFetcher[T]
	match func(item T, term string) bool

	mu         sync.RWMutex
	items      []T
	pagination model.Pagination
	page       int
	perPage    int
	search     string
}

// NewPanel создает панель; perPage ограничивается apiclient.MaxPerPage.
func NewPanel[T any](fetch PageFetcher[T], match func(T, string) bool, perPage int) *Panel[T] {
	if perPage <= 0 || perPage > apiclient.MaxPerPage {
		perPage = apiclient.MaxPerPage
	}
	return &Panel[T]{fetch: fetch, match: match, page: 1, perPage: perPage}
}

// Load заново загружает текущую страницу. Результат отменённого запроса отбрасывается.
func (p *Panel[T]) Load(ctx context.Context) error {
	p.mu.RLock()
	page, perPage := p.page, p.perPage
	p.mu.RUnlock()

	items, pagination, err := p.fetch(ctx, page, perPage)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	p.items = items
	if pagination != nil {
		p.pagination = *pagination
	}
	p.mu.Unlock()
	return nil
}

// SetPage выбирает страницу для следующего Load.
func (p *Panel[T]) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	p.mu.Lock()
	p.page = page
	p.mu.Unlock()
}

// SetSearch задает строку локального поиска.
func (p *Panel[T]) SetSearch(term string) {
	p.mu.Lock()
	p.search = strings.ToLower(strings.TrimSpace(term))
	p.mu.Unlock()
}

// Items возвращает загруженную страницу, отфильтрованную локальным поиском.
func (p *Panel[T]) Items() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]T, 0, len(p.items))
	for _, item := range p.items {
		if p.search == "" || p.match(item, p.search) {
			out = append(out, item)
		}
	}
	return out
}

func (p *Panel[T]) Pagination() model.Pagination {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pagination
}

func containsFold(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// ToursPanel - управление турами.
type ToursPanel struct {
	*Panel[model.Tour]
	api     *apiclient.Client
	catalog *CatalogService
}

// NewToursPanel создает панель. catalog может быть nil.
func NewToursPanel(api *apiclient.Client, catalog *CatalogService) *ToursPanel {
	fetch := func(ctx context.Context, page, perPage int) ([]model.Tour, *model.Pagination, error) {
		return api.Tours.List(ctx, apiclient.TourQuery{Page: page, PerPage: perPage})
	}
	match := func(t model.Tour, term string) bool { return containsFold(term, t.Title, t.Location) }
	return &ToursPanel{Panel: NewPanel[model.Tour](fetch, match, apiclient.MaxPerPage), api: api, catalog: catalog}
}

func (p *ToursPanel) Create(ctx context.Context, in apiclient.TourInput) (*model.Tour, error) {
	tour, err := p.api.Tours.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return tour, p.afterChange(ctx)
}

func (p *ToursPanel) Update(ctx context.Context, id int, in apiclient.TourInput) (*model.Tour, error) {
	tour, err := p.api.Tours.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return tour, p.afterChange(ctx)
}

func (p *ToursPanel) Delete(ctx context.Context, id int) error {
	if err := p.api.Tours.Delete(ctx, id); err != nil {
		return err
	}
	return p.afterChange(ctx)
}

// UploadImage загружает изображение тура и возвращает URL.
func (p *ToursPanel) UploadImage(ctx context.Context, filename string, file io.Reader) (string, error) {
	return p.api.Uploads.Image(ctx, filename, file, "tours")
}

func (p *ToursPanel) afterChange(ctx context.Context) error {
	if p.catalog != nil {
		p.catalog.Invalidate()
	}
	if err := p.Load(ctx); err != nil {
		return fmt.Errorf("список туров не обновлен: %w", err)
	}
	return nil
}

// BookingsPanel - управление бронированиями.
type BookingsPanel struct {
	*Panel[model.Booking]
	api *apiclient.Client

	statusMu sync.RWMutex
	status   model.BookingStatus
}

func NewBookingsPanel(api *apiclient.Client) *BookingsPanel {
	p := &BookingsPanel{api: api}
	fetch := func(ctx context.Context, page, perPage int) ([]model.Booking, *model.Pagination, error) {
		return api.Bookings.List(ctx, apiclient.BookingQuery{Status: string(p.Status()), Page: page, PerPage: perPage})
	}
	match := func(b model.Booking, term string) bool { return containsFold(term, b.Name, b.Email, b.BookingNumber) }
	p.Panel = NewPanel[model.Booking](fetch, match, apiclient.MaxPerPage)
	return p
}

// SetStatus задает серверный фильтр по статусу; пустое значение снимает фильтр.
func (p *BookingsPanel) SetStatus(status model.BookingStatus) error {
	if status != "" && !status.Valid() {
		return ErrInvalidStatus
	}
	p.statusMu.Lock()
	p.status = status
	p.statusMu.Unlock()
	return nil
}

func (p *BookingsPanel) Status() model.BookingStatus {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}

// UpdateStatus меняет статус бронирования и перезагружает список.
func (p *BookingsPanel) UpdateStatus(ctx context.Context, id int, status model.BookingStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if _, err := p.api.Bookings.Update(ctx, id, apiclient.BookingUpdate{Status: status}); err != nil {
		return err
	}
	return p.Load(ctx)
}

func (p *BookingsPanel) Delete(ctx context.Context, id int) error {
	if err := p.api.Bookings.Delete(ctx, id); err != nil {
		return err
	}
	return p.Load(ctx)
}

// UsersPanel - управление учетными записями.
type UsersPanel struct {
	*Panel[model.User]
	api     *apiclient.Client
	current func() *model.User
}

// NewUsersPanel создает панель. current возвращает вошедшего пользователя.
func NewUsersPanel(api *apiclient.Client, current func() *model.User) *UsersPanel {
	fetch := func(ctx context.Context, page, perPage int) ([]model.User, *model.Pagination, error) {
		return api.Users.List(ctx, apiclient.UserQuery{Page: page, PerPage: perPage})
	}
	match := func(u model.User, term string) bool { return containsFold(term, u.Name, u.Username, u.Email) }
	return &UsersPanel{Panel: NewPanel[model.User](fetch, match, apiclient.MaxPerPage), api: api, current: current}
}

func (p *UsersPanel) Create(ctx context.Context, in apiclient.UserInput) (*model.User, error) {
	user, err := p.api.Users.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return user, p.Load(ctx)
}

func (p *UsersPanel) Update(ctx context.Context, id int, in apiclient.UserInput) (*model.User, error) {
	user, err := p.api.Users.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return user, p.Load(ctx)
}

func (p *UsersPanel) loaded(id int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, u := range p.items {
		if u.ID == id {
			return true
		}
	}
	return false
}

// CanDelete проверяет ограничения удаления без обращения к сети.
func (p *UsersPanel) CanDelete(id int) error {
	if p.current != nil {
		if me := p.current(); me != nil && me.ID == id {
			return ErrDeleteSelf
		}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, u := range p.items {
		if u.ID == id && u.IsAdmin {
			return ErrDeleteAdmin
		}
	}
	return nil
}

// Delete удаляет учетную запись. Если ее нет на загруженной странице,
// роль проверяется отдельным запросом.
func (p *UsersPanel) Delete(ctx context.Context, id int) error {
	if err := p.CanDelete(id); err != nil {
		return err
	}
	if !p.loaded(id) {
		user, err := p.api.Users.Get(ctx, id)
		if err != nil {
			return err
		}
		if user.IsAdmin {
			return ErrDeleteAdmin
		}
	}
	if err := p.api.Users.Delete(ctx, id); err != nil {
		return err
	}
	return p.Load(ctx)
}
