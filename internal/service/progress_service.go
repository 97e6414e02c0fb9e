package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
	"github.com/bytebolt/bytebolt-api/internal/domain/repository"
	"github.com/bytebolt/bytebolt-api/internal/metrics"
	apperrors "github.com/bytebolt/bytebolt-api/internal/pkg/errors"
	"github.com/bytebolt/bytebolt-api/internal/service/scoring"
)

// QuizResult представляет итог завершённой попытки для ответа API
type QuizResult struct {
	ChallengeID      string  `json:"challenge_id"`
	Score            int     `json:"score"`
	MaxScore         int     `json:"max_score"`
	Percentage       float64 `json:"percentage"`
	Multiplier       float64 `json:"multiplier"`
	EarnedCredits    int     `json:"earned_credits"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`
}

// ProgressService управляет машиной состояний прохождения испытаний.
// Переходы: (нет записи) -> in_progress -> completed; повторный запуск
// и retake явно сбрасывают запись обратно в in_progress.
type ProgressService struct {
	challengeRepo  repository.ChallengeRepository
	progressRepo   repository.ProgressRepository
	submissionRepo repository.SubmissionRepository
	userRepo       repository.UserRepository
	emailService   EmailService
	metrics        *metrics.Metrics
}

// NewProgressService создает новый сервис прогресса.
// emailService и metrics опциональны (nil = выключено).
func NewProgressService(
	challengeRepo repository.ChallengeRepository,
	progressRepo repository.ProgressRepository,
	submissionRepo repository.SubmissionRepository,
	userRepo repository.UserRepository,
	emailService EmailService,
	m *metrics.Metrics,
) *ProgressService {
	return &ProgressService{
		challengeRepo:  challengeRepo,
		progressRepo:   progressRepo,
		submissionRepo: submissionRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		metrics:        m,
	}
}

// StartChallenge начинает (или перезапускает) прохождение испытания.
// Правило единственного активного испытания: пока одно испытание in_progress,
// начать другое нельзя (ErrActiveChallengeConflict). Перезапуск того же
// незавершённого испытания разрешён и сбрасывает попытку. Завершённое
// испытание запускается только через RetakeChallenge.
func (s *ProgressService) StartChallenge(userID uint, challengeID string) (*entity.ChallengeProgress, error) {
	if _, err := s.challengeRepo.GetByID(challengeID); err != nil {
		return nil, fmt.Errorf("challenge %s: %w", challengeID, err)
	}

	active, err := s.progressRepo.GetInProgressByUser(userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active challenge: %w", err)
	}
	if err == nil && active.ChallengeID != challengeID {
		return nil, fmt.Errorf("challenge %s is in progress: %w", active.ChallengeID, ErrActiveChallengeConflict)
	}

	now := time.Now()

	progress, err := s.progressRepo.GetByUserAndChallenge(userID, challengeID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		progress = &entity.ChallengeProgress{
			UserID:      userID,
			ChallengeID: challengeID,
			Status:      entity.ProgressStatusInProgress,
			StartedAt:   now,
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load progress: %w", err)
	case progress.IsCompleted():
		// Завершённая попытка перезапускается только явным retake
		return nil, fmt.Errorf("challenge %s already completed: %w", challengeID, ErrInvalidStateTransition)
	default:
		progress.Reset(now)
	}

	if err := s.progressRepo.Upsert(progress); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ChallengesStarted.Inc()
	}
	log.Printf("[ProgressService] Пользователь %d начал испытание %s", userID, challengeID)
	return progress, nil
}

// CompleteQuiz оценивает ответы и завершает активную попытку.
// Допустим только из состояния in_progress. Обновление прогресса и начисление
// кредитов выполняются одной транзакцией шлюза персистентности.
func (s *ProgressService) CompleteQuiz(userID uint, challengeID string, answers map[string][]string) (*QuizResult, error) {
	progress, err := s.progressRepo.GetByUserAndChallenge(userID, challengeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("challenge %s not started: %w", challengeID, ErrInvalidStateTransition)
		}
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if !progress.IsInProgress() {
		return nil, fmt.Errorf("challenge %s is not in progress: %w", challengeID, ErrInvalidStateTransition)
	}

	challenge, err := s.challengeRepo.GetWithQuestions(challengeID)
	if err != nil {
		return nil, fmt.Errorf("challenge %s: %w", challengeID, err)
	}

	result, err := scoring.Score(challenge.Questions, answers)
	if err != nil {
		return nil, err
	}
	credits := scoring.ComputeReward(result.Total, result.MaxPossible, challenge.BaseXP)

	now := time.Now()
	timeSpent := int(now.Sub(progress.StartedAt).Seconds())
	if timeSpent < 0 {
		timeSpent = 0
	}

	progress.Status = entity.ProgressStatusCompleted
	progress.CompletedAt = &now
	progress.TimeSpentSeconds = timeSpent
	progress.Score = result.Total
	progress.MaxScore = result.MaxPossible
	progress.EarnedCredits = credits

	if err := s.progressRepo.CompleteWithReward(progress, credits); err != nil {
		return nil, fmt.Errorf("failed to complete challenge: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ChallengesCompleted.Inc()
		s.metrics.CreditsGranted.Add(float64(credits))
	}
	log.Printf("[ProgressService] Пользователь %d завершил испытание %s: %d/%d очков, %d кредитов",
		userID, challengeID, result.Total, result.MaxPossible, credits)

	// Письмо-поздравление отправляется в фоне и не влияет на результат
	s.notifyCompletion(userID, challenge.Title, credits)

	return &QuizResult{
		ChallengeID:      challengeID,
		Score:            result.Total,
		MaxScore:         result.MaxPossible,
		Percentage:       result.Percentage(),
		Multiplier:       scoring.RewardMultiplier(result.Percentage()),
		EarnedCredits:    credits,
		TimeSpentSeconds: timeSpent,
	}, nil
}

// notifyCompletion асинхронно отправляет письмо о завершении испытания
func (s *ProgressService) notifyCompletion(userID uint, challengeTitle string, credits int) {
	if s.emailService == nil {
		return
	}
	go func() {
		user, err := s.userRepo.GetByID(userID)
		if err != nil {
			log.Printf("[ProgressService] Не удалось загрузить пользователя %d для письма: %v", userID, err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.emailService.SendChallengeCompleted(ctx, user.Email, user.Username, challengeTitle, credits); err != nil {
			log.Printf("[ProgressService] Не удалось отправить письмо пользователю %d: %v", userID, err)
		}
	}()
}

// SubmitAssignment сохраняет отправку практического задания и начисляет
// фиксированную награду за сдачу на проверку. Испытание не завершается.
// Допустимо только при активной попытке.
func (s *ProgressService) SubmitAssignment(userID uint, challengeID, assignmentID, text string) (*entity.AssignmentSubmission, error) {
	if text == "" {
		return nil, fmt.Errorf("submission text is empty: %w", apperrors.ErrValidation)
	}

	progress, err := s.progressRepo.GetByUserAndChallenge(userID, challengeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("challenge %s not started: %w", challengeID, ErrInvalidStateTransition)
		}
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if !progress.IsInProgress() {
		return nil, fmt.Errorf("challenge %s is not in progress: %w", challengeID, ErrInvalidStateTransition)
	}

	challenge, err := s.challengeRepo.GetWithQuestions(challengeID)
	if err != nil {
		return nil, fmt.Errorf("challenge %s: %w", challengeID, err)
	}

	var assignment *entity.Assignment
	for i := range challenge.Assignments {
		if challenge.Assignments[i].ID == assignmentID {
			assignment = &challenge.Assignments[i]
			break
		}
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, apperrors.ErrNotFound)
	}

	credits := scoring.AssignmentReward(challenge.BaseXP)
	submission := &entity.AssignmentSubmission{
		ID:           uuid.NewString(),
		AssignmentID: assignmentID,
		ChallengeID:  challengeID,
		UserID:       userID,
		Submission:   text,
		SubmittedAt:  time.Now(),
	}

	if err := s.submissionRepo.SaveWithReward(submission, credits); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AssignmentsReceived.Inc()
		s.metrics.CreditsGranted.Add(float64(credits))
	}
	log.Printf("[ProgressService] Пользователь %d сдал задание %s (испытание %s), %d кредитов",
		userID, assignmentID, challengeID, credits)
	return submission, nil
}

// RetakeChallenge начинает новую попытку завершённого испытания.
// Очки и кредиты прошлой попытки на записи очищаются, но уже начисленный
// баланс пользователя сохраняется - баланс только растёт.
func (s *ProgressService) RetakeChallenge(userID uint, challengeID string) (*entity.ChallengeProgress, error) {
	progress, err := s.progressRepo.GetByUserAndChallenge(userID, challengeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("challenge %s not started: %w", challengeID, ErrInvalidStateTransition)
		}
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if !progress.IsCompleted() {
		return nil, fmt.Errorf("challenge %s is not completed: %w", challengeID, ErrInvalidStateTransition)
	}

	// Retake подчиняется правилу единственного активного испытания
	active, err := s.progressRepo.GetInProgressByUser(userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active challenge: %w", err)
	}
	if err == nil {
		return nil, fmt.Errorf("challenge %s is in progress: %w", active.ChallengeID, ErrActiveChallengeConflict)
	}

	progress.Reset(time.Now())
	if err := s.progressRepo.Upsert(progress); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ChallengeRetakes.Inc()
	}
	log.Printf("[ProgressService] Пользователь %d перепроходит испытание %s", userID, challengeID)
	return progress, nil
}

// GetProgress возвращает запись прогресса или apperrors.ErrNotFound,
// если пользователь не начинал испытание (состояние not_started)
func (s *ProgressService) GetProgress(userID uint, challengeID string) (*entity.ChallengeProgress, error) {
	return s.progressRepo.GetByUserAndChallenge(userID, challengeID)
}

// ListUserProgress возвращает все записи прогресса пользователя
func (s *ProgressService) ListUserProgress(userID uint) ([]entity.ChallengeProgress, error) {
	return s.progressRepo.ListByUser(userID)
}

// ListAllProgress возвращает записи прогресса всех пользователей
// (административный экспорт)
func (s *ProgressService) ListAllProgress(limit, offset int) ([]entity.ChallengeProgress, int64, error) {
	return s.progressRepo.ListAll(limit, offset)
}
