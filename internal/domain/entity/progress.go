package entity

import (
	"time"
)

// ProgressStatus определяет состояние прохождения испытания.
// Переходы только вперёд: in_progress -> completed. Состояние not_started
// не хранится - это отсутствие записи. Повторный запуск (restart/retake)
// явно сбрасывает запись обратно в in_progress.
type ProgressStatus string

const (
	ProgressStatusInProgress ProgressStatus = "in_progress"
	ProgressStatusCompleted  ProgressStatus = "completed"
)

// ChallengeProgress представляет прогресс пользователя по испытанию.
// Уникальность пары (user_id, challenge_id) обеспечивается индексом в базе.
// Запись никогда не удаляется движком - история постоянна.
type ChallengeProgress struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index;uniqueIndex:idx_user_challenge" json:"user_id"`
	ChallengeID string         `gorm:"size:64;not null;index;uniqueIndex:idx_user_challenge" json:"challenge_id"`
	Status      ProgressStatus `gorm:"size:20;not null;default:'in_progress'" json:"status"`
	StartedAt   time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time     `gorm:"type:timestamp" json:"completed_at,omitempty"`
	// TimeSpentSeconds - накопленное время между started_at и completed_at
	TimeSpentSeconds int `gorm:"not null;default:0" json:"time_spent_seconds"`
	// Score и EarnedCredits значимы только при Status = completed
	Score         int `gorm:"not null;default:0" json:"score"`
	MaxScore      int `gorm:"not null;default:0" json:"max_score"`
	EarnedCredits int `gorm:"not null;default:0" json:"earned_credits"`
	// Submission - текст последней отправки задания (опционально)
	Submission string    `gorm:"type:text;not null;default:''" json:"submission,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (ChallengeProgress) TableName() string {
	return "challenge_progress"
}

// IsInProgress возвращает true, если испытание ещё проходится
func (p *ChallengeProgress) IsInProgress() bool {
	return p.Status == ProgressStatusInProgress
}

// IsCompleted возвращает true, если испытание завершено
func (p *ChallengeProgress) IsCompleted() bool {
	return p.Status == ProgressStatusCompleted
}

// Reset возвращает запись в начальное состояние новой попытки.
// Очки и кредиты прошлой попытки очищаются, накопленное время обнуляется.
func (p *ChallengeProgress) Reset(now time.Time) {
	p.Status = ProgressStatusInProgress
	p.StartedAt = now
	p.CompletedAt = nil
	p.TimeSpentSeconds = 0
	p.Score = 0
	p.MaxScore = 0
	p.EarnedCredits = 0
	p.Submission = ""
}
