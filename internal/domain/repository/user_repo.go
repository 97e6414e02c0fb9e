package repository

import (
	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error

	// AddCredits атомарно увеличивает баланс кредитов на delta
	// (чистый инкремент на стороне базы, не read-modify-write)
	AddCredits(userID uint, delta int64) error

	// GetLeaderboard возвращает пользователей, отсортированных по кредитам,
	// с пагинацией и общим количеством
	GetLeaderboard(limit, offset int) ([]entity.User, int64, error)
}
