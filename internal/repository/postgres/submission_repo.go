package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
	apperrors "github.com/bytebolt/bytebolt-api/internal/pkg/errors"
)

// SubmissionRepo реализует repository.SubmissionRepository
type SubmissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo создает новый репозиторий отправок заданий
func NewSubmissionRepo(db *gorm.DB) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

// SaveWithReward атомарно сохраняет отправку задания, текст последней отправки
// на записи прогресса и фиксированную награду за сдачу. Все три записи
// выполняются в одной транзакции.
func (r *SubmissionRepo) SaveWithReward(submission *entity.AssignmentSubmission, credits int) error {
	if credits < 0 {
		return fmt.Errorf("credits delta must be non-negative, got %d", credits)
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return fmt.Errorf("failed to save submission: %w", err)
		}

		err := tx.Model(&entity.ChallengeProgress{}).
			Where("user_id = ? AND challenge_id = ?", submission.UserID, submission.ChallengeID).
			Update("submission", submission.Submission).Error
		if err != nil {
			return fmt.Errorf("failed to update progress submission: %w", err)
		}

		result := tx.Model(&entity.User{}).
			Where("id = ?", submission.UserID).
			UpdateColumn("credits", gorm.Expr("credits + ?", credits))
		if result.Error != nil {
			return fmt.Errorf("failed to add credits: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("failed to add credits: %w", apperrors.ErrNotFound)
		}
		return nil
	})
}

// ListByUser возвращает отправки пользователя
func (r *SubmissionRepo) ListByUser(userID uint) ([]entity.AssignmentSubmission, error) {
	var submissions []entity.AssignmentSubmission
	err := r.db.Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// ListByAssignment возвращает отправки по заданию
func (r *SubmissionRepo) ListByAssignment(assignmentID string) ([]entity.AssignmentSubmission, error) {
	var submissions []entity.AssignmentSubmission
	err := r.db.Where("assignment_id = ?", assignmentID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}
