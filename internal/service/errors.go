package service

import "errors"

// Определяем кастомные ошибки для сервисов
var (
	// ErrActiveChallengeConflict возвращается при попытке начать испытание,
	// когда другое испытание уже в процессе прохождения
	ErrActiveChallengeConflict = errors.New("another challenge is already in progress")

	// ErrInvalidStateTransition возвращается при недопустимом переходе
	// состояния прогресса (например, отправка ответов без активной попытки)
	ErrInvalidStateTransition = errors.New("operation not allowed in current progress state")

	// ErrAIUnavailable возвращается, когда внешний API генерации недоступен
	// или вернул неожиданный ответ
	ErrAIUnavailable = errors.New("text generation service unavailable")
	// ErrAIRateLimited возвращается при превышении квоты внешнего API генерации
	ErrAIRateLimited = errors.New("text generation service rate limited")

	// ErrNewsUnavailable возвращается, когда лента новостей недоступна
	// и кеш пуст
	ErrNewsUnavailable = errors.New("news feed unavailable")
)
