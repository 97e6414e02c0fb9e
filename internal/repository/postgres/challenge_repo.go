package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
	apperrors "github.com/bytebolt/bytebolt-api/internal/pkg/errors"
)

// ChallengeRepo реализует repository.ChallengeRepository
type ChallengeRepo struct {
	db *gorm.DB
}

// NewChallengeRepo создает новый репозиторий испытаний
func NewChallengeRepo(db *gorm.DB) *ChallengeRepo {
	return &ChallengeRepo{db: db}
}

// Create создает испытание вместе с вопросами и заданиями
func (r *ChallengeRepo) Create(challenge *entity.Challenge) error {
	err := r.db.Create(challenge).Error
	if err != nil && isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

// GetByID возвращает испытание без вопросов
func (r *ChallengeRepo) GetByID(id string) (*entity.Challenge, error) {
	var challenge entity.Challenge
	err := r.db.First(&challenge, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &challenge, nil
}

// GetWithQuestions возвращает испытание с вопросами в порядке Position и заданиями
func (r *ChallengeRepo) GetWithQuestions(id string) (*entity.Challenge, error) {
	var challenge entity.Challenge
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Assignments").
		First(&challenge, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &challenge, nil
}

// List возвращает список испытаний с пагинацией и общим количеством
func (r *ChallengeRepo) List(limit, offset int) ([]entity.Challenge, int64, error) {
	var challenges []entity.Challenge
	var total int64

	if err := r.db.Model(&entity.Challenge{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Limit(limit).Offset(offset).Order("id").Find(&challenges).Error
	if err != nil {
		return nil, 0, err
	}

	return challenges, total, nil
}

// AddQuestions добавляет вопросы к испытанию одной транзакцией
func (r *ChallengeRepo) AddQuestions(challengeID string, questions []entity.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var challenge entity.Challenge
		if err := tx.First(&challenge, "id = ?", challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		for i := range questions {
			questions[i].ChallengeID = challengeID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
