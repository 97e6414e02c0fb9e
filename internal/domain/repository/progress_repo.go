package repository

import (
	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
)

// ProgressRepository определяет методы для работы с прогрессом испытаний.
// Это шлюз персистентности движка: уникальность (user_id, challenge_id)
// и атомарность парных записей (прогресс + кредиты) - его ответственность.
type ProgressRepository interface {
	// GetByUserAndChallenge возвращает запись прогресса по составному ключу
	// или apperrors.ErrNotFound
	GetByUserAndChallenge(userID uint, challengeID string) (*entity.ChallengeProgress, error)

	// GetInProgressByUser возвращает текущее незавершённое испытание пользователя
	// или apperrors.ErrNotFound
	GetInProgressByUser(userID uint) (*entity.ChallengeProgress, error)

	// Upsert создаёт или обновляет запись прогресса. Конфликт по уникальному
	// индексу (гонка двух одновременных стартов) возвращается как apperrors.ErrConflict.
	Upsert(progress *entity.ChallengeProgress) error

	// CompleteWithReward атомарно сохраняет завершённый прогресс и увеличивает
	// баланс кредитов пользователя. Обе записи выполняются в одной транзакции:
	// либо применяются целиком, либо не применяются вовсе.
	CompleteWithReward(progress *entity.ChallengeProgress, credits int) error

	ListByUser(userID uint) ([]entity.ChallengeProgress, error)
	// ListAll возвращает все записи прогресса (для административного экспорта)
	ListAll(limit, offset int) ([]entity.ChallengeProgress, int64, error)
}
