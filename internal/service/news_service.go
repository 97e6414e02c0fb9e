package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
	"github.com/bytebolt/bytebolt-api/internal/domain/repository"
	"github.com/bytebolt/bytebolt-api/internal/metrics"
)

const newsCacheKey = "news:list"

// NewsService загружает ленту технических новостей из внешнего API
// и кеширует её в Redis. Лента только для отображения и не персистится.
type NewsService struct {
	url       string
	client    *http.Client
	cacheRepo repository.CacheRepository
	cacheTTL  time.Duration
	metrics   *metrics.Metrics
}

// NewNewsService создает новый сервис новостей.
// cacheRepo и metrics опциональны.
func NewNewsService(url string, timeout, cacheTTL time.Duration, cacheRepo repository.CacheRepository, m *metrics.Metrics) *NewsService {
	return &NewsService{
		url:       url,
		client:    &http.Client{Timeout: timeout},
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
		metrics:   m,
	}
}

// ListNews возвращает ленту новостей: из кеша, если он свежий,
// иначе из внешнего API. Недоступность API при пустом кеше - ErrNewsUnavailable.
func (s *NewsService) ListNews(ctx context.Context) ([]entity.NewsItem, error) {
	if s.cacheRepo != nil {
		var cached []entity.NewsItem
		if err := s.cacheRepo.GetJSON(newsCacheKey, &cached); err == nil {
			return cached, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh принудительно загружает ленту из внешнего API и обновляет кеш
func (s *NewsService) Refresh(ctx context.Context) ([]entity.NewsItem, error) {
	if s.url == "" {
		return nil, fmt.Errorf("news url is not configured: %w", ErrNewsUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.countFetch("transport_error")
		return nil, fmt.Errorf("news fetch failed: %w: %v", ErrNewsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.countFetch("error")
		return nil, fmt.Errorf("news feed status %d: %w", resp.StatusCode, ErrNewsUnavailable)
	}

	var items []entity.NewsItem
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&items); err != nil {
		s.countFetch("bad_response")
		return nil, fmt.Errorf("failed to decode news feed: %w: %v", ErrNewsUnavailable, err)
	}

	s.countFetch("ok")
	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(newsCacheKey, items, s.cacheTTL); err != nil {
			log.Printf("[NewsService] Не удалось закешировать новости: %v", err)
		}
	}
	return items, nil
}

// StartBackgroundRefresh запускает периодическое обновление ленты.
// Останавливается отменой контекста. interval <= 0 отключает обновление.
func (s *NewsService) StartBackgroundRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Printf("[NewsService] Фоновое обновление новостей каждые %s", interval)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[NewsService] Фоновое обновление остановлено")
				return
			case <-ticker.C:
				refreshCtx, cancel := context.WithTimeout(ctx, s.client.Timeout)
				if _, err := s.Refresh(refreshCtx); err != nil {
					log.Printf("[NewsService] Ошибка фонового обновления: %v", err)
				}
				cancel()
			}
		}
	}()
}

func (s *NewsService) countFetch(status string) {
	if s.metrics != nil {
		s.metrics.NewsFetches.WithLabelValues(status).Inc()
	}
}
