package service

import (
	"fmt"
	"log"
	"time"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
	"github.com/bytebolt/bytebolt-api/internal/domain/repository"
	apperrors "github.com/bytebolt/bytebolt-api/internal/pkg/errors"
)

const (
	challengeListCacheKey = "challenges:list"
	challengeListCacheTTL = 5 * time.Minute
	// Кешируется всегда полная первая страница (максимальный per_page),
	// ответ нарезается под запрошенный limit. Иначе первый запрос
	// с маленьким per_page усекал бы кеш для всех остальных.
	challengeListCachePageSize = 100
)

// ChallengeService предоставляет доступ к каталогу испытаний
type ChallengeService struct {
	challengeRepo repository.ChallengeRepository
	cacheRepo     repository.CacheRepository
}

// NewChallengeService создает новый сервис каталога испытаний.
// cacheRepo опционален (nil = без кеширования списка).
func NewChallengeService(challengeRepo repository.ChallengeRepository, cacheRepo repository.CacheRepository) *ChallengeService {
	return &ChallengeService{
		challengeRepo: challengeRepo,
		cacheRepo:     cacheRepo,
	}
}

// challengeListPage - кешируемая страница каталога
type challengeListPage struct {
	Challenges []entity.Challenge `json:"challenges"`
	Total      int64              `json:"total"`
}

// ListChallenges возвращает страницу каталога испытаний (без вопросов).
// Первая страница кешируется в Redis: каталог статичен в рамках сессии.
func (s *ChallengeService) ListChallenges(limit, offset int) ([]entity.Challenge, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	if s.cacheRepo != nil && offset == 0 {
		var page challengeListPage
		if err := s.cacheRepo.GetJSON(challengeListCacheKey, &page); err == nil {
			return trimChallengePage(page.Challenges, limit), page.Total, nil
		}

		challenges, total, err := s.challengeRepo.List(challengeListCachePageSize, 0)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list challenges: %w", err)
		}
		page = challengeListPage{Challenges: challenges, Total: total}
		if err := s.cacheRepo.SetJSON(challengeListCacheKey, page, challengeListCacheTTL); err != nil {
			// Кеш - оптимизация, его недоступность не ошибка запроса
			log.Printf("[ChallengeService] Не удалось закешировать список испытаний: %v", err)
		}
		return trimChallengePage(challenges, limit), total, nil
	}

	challenges, total, err := s.challengeRepo.List(limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, total, nil
}

func trimChallengePage(challenges []entity.Challenge, limit int) []entity.Challenge {
	if len(challenges) > limit {
		return challenges[:limit]
	}
	return challenges
}

// GetChallenge возвращает испытание без вопросов
func (s *ChallengeService) GetChallenge(id string) (*entity.Challenge, error) {
	return s.challengeRepo.GetByID(id)
}

// GetChallengeWithQuestions возвращает испытание с вопросами (в порядке
// Position) и заданиями. Ключи ответов из вопросов не сериализуются в JSON.
func (s *ChallengeService) GetChallengeWithQuestions(id string) (*entity.Challenge, error) {
	return s.challengeRepo.GetWithQuestions(id)
}

// CreateChallenge создает испытание вместе с вопросами (административная
// операция). Каждый вопрос проверяется доменным инвариантом до записи.
func (s *ChallengeService) CreateChallenge(challenge *entity.Challenge) error {
	if challenge.ID == "" || challenge.Title == "" {
		return fmt.Errorf("challenge id and title are required: %w", apperrors.ErrValidation)
	}
	if !challenge.Difficulty.IsValid() {
		return fmt.Errorf("invalid difficulty %q: %w", challenge.Difficulty, apperrors.ErrValidation)
	}
	if !challenge.Category.IsValid() {
		return fmt.Errorf("invalid category %q: %w", challenge.Category, apperrors.ErrValidation)
	}
	if challenge.BaseXP <= 0 {
		return fmt.Errorf("base_xp must be positive: %w", apperrors.ErrValidation)
	}
	for i := range challenge.Questions {
		challenge.Questions[i].ChallengeID = challenge.ID
		if err := challenge.Questions[i].Validate(); err != nil {
			return fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
		}
	}

	if err := s.challengeRepo.Create(challenge); err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	s.invalidateListCache()
	log.Printf("[ChallengeService] Создано испытание %s (%d вопросов)", challenge.ID, len(challenge.Questions))
	return nil
}

// AddQuestions добавляет вопросы к существующему испытанию
func (s *ChallengeService) AddQuestions(challengeID string, questions []entity.Question) error {
	if _, err := s.challengeRepo.GetByID(challengeID); err != nil {
		return fmt.Errorf("challenge %s: %w", challengeID, err)
	}
	for i := range questions {
		questions[i].ChallengeID = challengeID
		if err := questions[i].Validate(); err != nil {
			return fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
		}
	}
	if err := s.challengeRepo.AddQuestions(challengeID, questions); err != nil {
		return fmt.Errorf("failed to add questions: %w", err)
	}
	s.invalidateListCache()
	return nil
}

func (s *ChallengeService) invalidateListCache() {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(challengeListCacheKey); err != nil {
		log.Printf("[ChallengeService] Не удалось сбросить кеш списка испытаний: %v", err)
	}
}
