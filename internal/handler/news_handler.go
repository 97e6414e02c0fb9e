package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bytebolt/bytebolt-api/internal/service"
)

// NewsHandler обрабатывает запросы новостной ленты
type NewsHandler struct {
	newsService *service.NewsService
}

// NewNewsHandler создает новый обработчик новостей
func NewNewsHandler(newsService *service.NewsService) *NewsHandler {
	return &NewsHandler{newsService: newsService}
}

// ListNews возвращает ленту технических новостей
func (h *NewsHandler) ListNews(c *gin.Context) {
	items, err := h.newsService.ListNews(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNewsUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "News feed is temporarily unavailable"})
			return
		}
		log.Printf("ERROR: Internal server error in NewsHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"news": items})
}
