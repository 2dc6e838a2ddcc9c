package repository

import (
	"encoding/json"
	"log"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/karlseguin/ccache/v3"

	"github.com/seifadel74/getyourtrip/internal/model"
)

// CacheRepository кэширует списки туров публичного каталога.
type CacheRepository interface {
	Get(key string) ([]model.Tour, bool)
	Set(key string, tours []model.Tour)
	Delete(key string)
}

// cacheRepository - двухуровневый кэш: локальный ccache и, если настроен, Memcached.
type cacheRepository struct {
	localCache      *ccache.Cache[[]model.Tour]
	memcachedClient *memcache.Client
	localTTL        time.Duration
	sharedTTL       time.Duration
}

// NewCacheRepository создает кэш. Пустой memcachedHost отключает второй уровень.
func NewCacheRepository(memcachedHost string, ttl time.Duration) CacheRepository {
	repo := &cacheRepository{
		localCache: ccache.New(ccache.Configure[[]model.Tour]().MaxSize(100)),
		localTTL:   ttl,
		sharedTTL:  3 * ttl,
	}
	if memcachedHost != "" {
		repo.memcachedClient = memcache.New(memcachedHost)
		log.Printf("cache: Memcached на %s", memcachedHost)
	}
	return repo
}

// Get ищет сначала в локальном кэше, затем в Memcached.
func (r *cacheRepository) Get(key string) ([]model.Tour, bool) {
	if item := r.localCache.Get(key); item != nil && !item.Expired() {
		return item.Value(), true
	}
	if r.memcachedClient == nil {
		return nil, false
	}

	item, err := r.memcachedClient.Get(key)
	if err != nil {
		if err != memcache.ErrCacheMiss {
			log.Printf("cache: ошибка чтения из Memcached key=%s: %v", key, err)
		}
		return nil, false
	}
	var tours []model.Tour
	if err := json.Unmarshal(item.Value, &tours); err != nil {
		log.Printf("cache: поврежденные данные в Memcached key=%s: %v", key, err)
		return nil, false
	}
	r.localCache.Set(key, tours, r.localTTL)
	return tours, true
}

// Set сохраняет список на обоих уровнях.
func (r *cacheRepository) Set(key string, tours []model.Tour) {
	r.localCache.Set(key, tours, r.localTTL)
	if r.memcachedClient == nil {
		return
	}

	data, err := json.Marshal(tours)
	if err != nil {
		log.Printf("cache: ошибка сериализации key=%s: %v", key, err)
		return
	}
	err = r.memcachedClient.Set(&memcache.Item{
		Key:        key,
		Value:      data,
		Expiration: int32(r.sharedTTL / time.Second),
	})
	if err != nil {
		log.Printf("cache: ошибка записи в Memcached key=%s: %v", key, err)
	}
}

// Delete удаляет ключ с обоих уровней.
func (r *cacheRepository) Delete(key string) {
	r.localCache.Delete(key)
	if r.memcachedClient == nil {
		return
	}
	if err := r.memcachedClient.Delete(key); err != nil && err != memcache.ErrCacheMiss {
		log.Printf("cache: ошибка удаления из Memcached key=%s: %v", key, err)
	}
}
