package repository

import (
	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
)

// ChallengeRepository определяет методы для работы с каталогом испытаний
type ChallengeRepository interface {
	Create(challenge *entity.Challenge) error
	GetByID(id string) (*entity.Challenge, error)
	// GetWithQuestions возвращает испытание вместе с вопросами (в порядке Position)
	// и заданиями
	GetWithQuestions(id string) (*entity.Challenge, error)
	List(limit, offset int) ([]entity.Challenge, int64, error)
	AddQuestions(challengeID string, questions []entity.Question) error
}
