package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
	apperrors "github.com/bytebolt/bytebolt-api/internal/pkg/errors"
)

// fakeCacheRepo - потокобезопасный кеш в памяти для тестов
// (реализует repository.CacheRepository поверх json)
type fakeCacheRepo struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{data: make(map[string]string)}
}

func (f *fakeCacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	return nil
}

func (f *fakeCacheRepo) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (f *fakeCacheRepo) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeCacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	bytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return f.Set(key, string(bytes), expiration)
}

func (f *fakeCacheRepo) GetJSON(key string, dest interface{}) error {
	raw, err := f.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dest)
}

func (f *fakeCacheRepo) Exists(key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeCacheRepo) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value.(string)
	return true, nil
}

func TestNewsService_ListNews_FetchesAndCaches(t *testing.T) {
	// Arrange
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]entity.NewsItem{
			{ID: "1", Title: "Go 1.24 released", Source: "golang.org"},
			{ID: "2", Title: "Postgres 18 beta", Source: "postgresql.org"},
		})
	}))
	defer server.Close()

	cache := newFakeCacheRepo()
	service := NewNewsService(server.URL, 5*time.Second, time.Minute, cache, nil)

	// Act: два запроса подряд
	first, err := service.ListNews(context.Background())
	require.NoError(t, err)
	second, err := service.ListNews(context.Background())
	require.NoError(t, err)

	// Assert: второй запрос обслужен из кеша
	assert.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetches, "Повторный запрос должен идти из кеша")
}

func TestNewsService_ListNews_UpstreamErrorWithEmptyCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	service := NewNewsService(server.URL, 5*time.Second, time.Minute, newFakeCacheRepo(), nil)

	_, err := service.ListNews(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNewsUnavailable)
}

func TestNewsService_ListNews_ServesCacheWhenUpstreamDown(t *testing.T) {
	// Arrange: кеш уже наполнен, внешний API лежит
	cache := newFakeCacheRepo()
	items := []entity.NewsItem{{ID: "1", Title: "Cached item"}}
	require.NoError(t, cache.SetJSON(newsCacheKey, items, time.Minute))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	service := NewNewsService(server.URL, 5*time.Second, time.Minute, cache, nil)

	// Act
	got, err := service.ListNews(context.Background())

	// Assert
	require.NoError(t, err, "Свежий кеш обслуживается без обращения к API")
	assert.Equal(t, items, got)
}

func TestNewsService_Refresh_NoURLConfigured(t *testing.T) {
	service := NewNewsService("", time.Second, time.Minute, nil, nil)

	_, err := service.Refresh(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNewsUnavailable)
}
