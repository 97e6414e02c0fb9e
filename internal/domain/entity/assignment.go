package entity

import (
	"time"
)

// SubmissionType определяет формат отправки задания
type SubmissionType string

const (
	SubmissionTypeText SubmissionType = "text"
	SubmissionTypeCode SubmissionType = "code"
)

// Assignment представляет практическое задание испытания.
// В отличие от вопросов, задание не оценивается автоматически:
// отправка даёт фиксированную награду "за сдачу на проверку".
type Assignment struct {
	ID             string         `gorm:"primaryKey;size:64" json:"id"`
	ChallengeID    string         `gorm:"size:64;not null;index" json:"challenge_id"`
	Title          string         `gorm:"size:200;not null" json:"title"`
	Description    string         `gorm:"size:1000;not null;default:''" json:"description"`
	Instructions   string         `gorm:"type:text;not null;default:''" json:"instructions"`
	Deadline       *time.Time     `gorm:"type:timestamp" json:"deadline,omitempty"`
	SubmissionType SubmissionType `gorm:"size:10;not null;default:'code'" json:"submission_type"`
	MaxPoints      int            `gorm:"not null;default:50" json:"max_points"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Assignment) TableName() string {
	return "assignments"
}

// AssignmentSubmission представляет отправку задания пользователем.
// Записи не удаляются и не перезаписываются: каждая отправка - отдельная строка.
type AssignmentSubmission struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	AssignmentID string    `gorm:"size:64;not null;index" json:"assignment_id"`
	ChallengeID  string    `gorm:"size:64;not null;index" json:"challenge_id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Submission   string    `gorm:"type:text;not null" json:"submission"`
	SubmittedAt  time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (AssignmentSubmission) TableName() string {
	return "assignment_submissions"
}
