package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIService_GenerateReply_RefusesOffTopicWithoutRemoteCall(t *testing.T) {
	// Arrange: сервер считает обращения - их не должно быть
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewAIService(server.URL, "test-key", "test-model", 5*time.Second, nil)

	// Act: запрос не содержит ни одного технического ключевого слова
	reply, err := service.GenerateReply(context.Background(), "What is the best pasta recipe?")

	// Assert
	require.NoError(t, err, "Отказ по фильтру - не ошибка")
	assert.Equal(t, refusalMessage, reply, "Должен вернуться фиксированный отказ")
	assert.Equal(t, 0, calls, "Внешний API не должен вызываться для офтопика")
}

func TestAIService_GenerateReply_CallsGenerateContent(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "models/test-model:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "What is a database index?", req.Contents[0].Parts[0].Text)

		resp := generateResponse{}
		resp.Candidates = append(resp.Candidates, struct {
			Content generateContent `json:"content"`
		}{Content: generateContent{Parts: []generatePart{{Text: "An index speeds up lookups."}}}})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	service := NewAIService(server.URL, "test-key", "test-model", 5*time.Second, nil)

	// Act
	reply, err := service.GenerateReply(context.Background(), "What is a database index?")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "An index speeds up lookups.", reply)
}

func TestAIService_GenerateReply_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	service := NewAIService(server.URL, "test-key", "test-model", 5*time.Second, nil)

	_, err := service.GenerateReply(context.Background(), "Explain the HTTP protocol")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAIRateLimited, "Статус 429 должен давать типизированную ошибку квоты")
}

func TestAIService_GenerateReply_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewAIService(server.URL, "test-key", "test-model", 5*time.Second, nil)

	_, err := service.GenerateReply(context.Background(), "Explain the HTTP protocol")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestAIService_GenerateReply_MissingAPIKey(t *testing.T) {
	service := NewAIService("http://localhost:0", "", "test-model", time.Second, nil)

	_, err := service.GenerateReply(context.Background(), "Explain the HTTP protocol")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAIUnavailable, "Отсутствие ключа - недоступность сервиса")
}

func TestAIService_GenerateReply_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	service := NewAIService(server.URL, "test-key", "test-model", 5*time.Second, nil)

	_, err := service.GenerateReply(context.Background(), "Explain the HTTP protocol")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestAIService_IsTechRelated(t *testing.T) {
	assert.True(t, isTechRelated("How do I design a REST API?"))
	assert.True(t, isTechRelated("Explain MACHINE LEARNING basics"), "Фильтр не зависит от регистра")
	assert.False(t, isTechRelated("Tell me about medieval history"))
}
