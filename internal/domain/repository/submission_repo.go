package repository

import (
	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
)

// SubmissionRepository определяет методы для работы с отправками заданий
type SubmissionRepository interface {
	// SaveWithReward атомарно сохраняет отправку, текст на записи прогресса
	// и начисляет фиксированную награду за сдачу
	SaveWithReward(submission *entity.AssignmentSubmission, credits int) error
	ListByUser(userID uint) ([]entity.AssignmentSubmission, error)
	ListByAssignment(assignmentID string) ([]entity.AssignmentSubmission, error)
}
