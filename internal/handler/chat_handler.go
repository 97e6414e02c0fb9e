package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/bytebolt/bytebolt-api/internal/service"
)

const (
	chatWriteWait   = 10 * time.Second
	chatPongWait    = 60 * time.Second
	chatPingPeriod  = (chatPongWait * 9) / 10
	chatMaxMsgSize  = 8192
	chatReplyBudget = 45 * time.Second
)

// ChatHandler обрабатывает запросы технического ассистента:
// одиночные запросы по HTTP и диалог по WebSocket
type ChatHandler struct {
	aiService *service.AIService
	upgrader  websocket.Upgrader
}

// NewChatHandler создает новый обработчик чата
func NewChatHandler(aiService *service.AIService) *ChatHandler {
	return &ChatHandler{
		aiService: aiService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Браузерный SPA ходит с другого origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ChatRequest представляет запрос к ассистенту
type ChatRequest struct {
	Prompt string `json:"prompt" binding:"required,min=1,max=4000"`
}

// Chat обрабатывает одиночный запрос к ассистенту
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.aiService.GenerateReply(c.Request.Context(), req.Prompt)
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// chatMessage - формат сообщений WebSocket-диалога
type chatMessage struct {
	Type    string `json:"type"` // "user" или "bot"
	Content string `json:"content"`
}

// ChatWS ведет диалог с ассистентом по WebSocket.
// Каждое входящее сообщение - отдельный запрос; ответ возвращается
// в то же соединение.
func (h *ChatHandler) ChatWS(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[ChatHandler] Ошибка апгрейда WebSocket для пользователя %d: %v", userID, err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(chatMaxMsgSize)
	conn.SetReadDeadline(time.Now().Add(chatPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(chatPongWait))
		return nil
	})

	// Пинги держат соединение живым, пока пользователь думает
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(chatPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	log.Printf("[ChatHandler] Открыт чат для пользователя %d", userID)
	for {
		var msg chatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ChatHandler] Чат пользователя %d закрыт с ошибкой: %v", userID, err)
			}
			return
		}
		if msg.Content == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), chatReplyBudget)
		reply, err := h.aiService.GenerateReply(ctx, msg.Content)
		cancel()
		if err != nil {
			reply = h.wsErrorMessage(err)
		}

		conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
		if err := conn.WriteJSON(chatMessage{Type: "bot", Content: reply}); err != nil {
			log.Printf("[ChatHandler] Ошибка записи ответа пользователю %d: %v", userID, err)
			return
		}
	}
}

// wsErrorMessage превращает ошибку генерации в текст для диалога
func (h *ChatHandler) wsErrorMessage(err error) string {
	if errors.Is(err, service.ErrAIRateLimited) {
		return "I'm currently experiencing high demand. Please wait a moment and try again."
	}
	return "I'm having trouble processing your request right now. Please try again later."
}

func (h *ChatHandler) handleChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAIRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Text generation service is rate limited"})
	case errors.Is(err, service.ErrAIUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Text generation service is unavailable"})
	default:
		log.Printf("ERROR: Internal server error in ChatHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
