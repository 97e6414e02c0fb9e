package postgres

import (
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
	apperrors "github.com/bytebolt/bytebolt-api/internal/pkg/errors"
)

// ProgressRepo реализует repository.ProgressRepository
type ProgressRepo struct {
	db *gorm.DB
}

// NewProgressRepo создает новый репозиторий прогресса испытаний
func NewProgressRepo(db *gorm.DB) *ProgressRepo {
	return &ProgressRepo{db: db}
}

// GetByUserAndChallenge возвращает запись прогресса по составному ключу
func (r *ProgressRepo) GetByUserAndChallenge(userID uint, challengeID string) (*entity.ChallengeProgress, error) {
	var progress entity.ChallengeProgress
	err := r.db.Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// GetInProgressByUser возвращает текущее незавершённое испытание пользователя
func (r *ProgressRepo) GetInProgressByUser(userID uint) (*entity.ChallengeProgress, error) {
	var progress entity.ChallengeProgress
	err := r.db.Where("user_id = ? AND status = ?", userID, entity.ProgressStatusInProgress).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// Upsert создаёт или обновляет запись прогресса.
// Гонка двух одновременных стартов упирается в уникальный индекс
// (user_id, challenge_id) и возвращается как ErrConflict.
func (r *ProgressRepo) Upsert(progress *entity.ChallengeProgress) error {
	err := r.db.Save(progress).Error
	if err != nil && isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

// CompleteWithReward атомарно сохраняет завершённый прогресс и увеличивает
// баланс кредитов. Инкремент выполняется на стороне базы (credits = credits + ?),
// чтобы одновременные начисления не теряли обновления. Запись прогресса
// обновляется только из состояния in_progress: из двух одновременных
// завершений награду получает ровно одно, второе видит ErrConflict.
func (r *ProgressRepo) CompleteWithReward(progress *entity.ChallengeProgress, credits int) error {
	if credits < 0 {
		return fmt.Errorf("credits delta must be non-negative, got %d", credits)
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.ChallengeProgress{}).
			Where("id = ? AND status = ?", progress.ID, entity.ProgressStatusInProgress).
			Updates(map[string]interface{}{
				"status":             progress.Status,
				"completed_at":       progress.CompletedAt,
				"time_spent_seconds": progress.TimeSpentSeconds,
				"score":              progress.Score,
				"max_score":          progress.MaxScore,
				"earned_credits":     progress.EarnedCredits,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to save progress: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("progress %d is no longer in progress: %w", progress.ID, apperrors.ErrConflict)
		}

		result := tx.Model(&entity.User{}).
			Where("id = ?", progress.UserID).
			Updates(map[string]interface{}{
				"credits":              gorm.Expr("credits + ?", credits),
				"challenges_completed": gorm.Expr("challenges_completed + ?", 1),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to add credits: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("failed to add credits: %w", apperrors.ErrNotFound)
		}

		log.Printf("[ProgressRepo] Завершение испытания %s пользователем #%d: score=%d, credits=+%d",
			progress.ChallengeID, progress.UserID, progress.Score, credits)
		return nil
	})
}

// ListByUser возвращает все записи прогресса пользователя
func (r *ProgressRepo) ListByUser(userID uint) ([]entity.ChallengeProgress, error) {
	var records []entity.ChallengeProgress
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&records).Error
	return records, err
}

// ListAll возвращает все записи прогресса с пагинацией (для экспорта)
func (r *ProgressRepo) ListAll(limit, offset int) ([]entity.ChallengeProgress, int64, error) {
	var records []entity.ChallengeProgress
	var total int64

	if err := r.db.Model(&entity.ChallengeProgress{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Limit(limit).Offset(offset).
		Order("user_id, challenge_id").
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
