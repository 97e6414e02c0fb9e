package dto

import (
	"time"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
)

// ProgressResponse представляет состояние прохождения для фронтенда.
// Отсутствие записи прогресса отдаётся как status=not_started.
type ProgressResponse struct {
	ChallengeID      string     `json:"challenge_id"`
	Status           string     `json:"status"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
	Score            int        `json:"score"`
	MaxScore         int        `json:"max_score"`
	EarnedCredits    int        `json:"earned_credits"`
	Submission       string     `json:"submission,omitempty"`
}

// NewProgressResponse строит ответ из записи прогресса
func NewProgressResponse(p *entity.ChallengeProgress) *ProgressResponse {
	return &ProgressResponse{
		ChallengeID:      p.ChallengeID,
		Status:           string(p.Status),
		StartedAt:        &p.StartedAt,
		CompletedAt:      p.CompletedAt,
		TimeSpentSeconds: p.TimeSpentSeconds,
		Score:            p.Score,
		MaxScore:         p.MaxScore,
		EarnedCredits:    p.EarnedCredits,
		Submission:       p.Submission,
	}
}

// NewNotStartedResponse строит ответ для испытания без записи прогресса
func NewNotStartedResponse(challengeID string) *ProgressResponse {
	return &ProgressResponse{
		ChallengeID: challengeID,
		Status:      "not_started",
	}
}

// PaginatedChallengesResponse представляет страницу каталога испытаний
type PaginatedChallengesResponse struct {
	Challenges []entity.Challenge `json:"challenges"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
}

// LeaderboardUserDTO представляет одного пользователя в лидерборде
type LeaderboardUserDTO struct {
	Rank                int    `json:"rank"`
	UserID              uint   `json:"user_id"`
	Username            string `json:"username"`
	ProfilePicture      string `json:"profile_picture"`
	Credits             int64  `json:"credits"`
	ChallengesCompleted int64  `json:"challenges_completed"`
}

// PaginatedLeaderboardResponse представляет пагинированный ответ для лидерборда
type PaginatedLeaderboardResponse struct {
	Users   []*LeaderboardUserDTO `json:"users"`
	Total   int64                 `json:"total"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"per_page"`
}

// NewLeaderboardResponse строит страницу лидерборда с абсолютными рангами
func NewLeaderboardResponse(users []entity.User, total int64, page, perPage int) *PaginatedLeaderboardResponse {
	dtos := make([]*LeaderboardUserDTO, len(users))
	for i := range users {
		dtos[i] = &LeaderboardUserDTO{
			Rank:                (page-1)*perPage + i + 1,
			UserID:              users[i].ID,
			Username:            users[i].Username,
			ProfilePicture:      users[i].ProfilePicture,
			Credits:             users[i].Credits,
			ChallengesCompleted: users[i].ChallengesCompleted,
		}
	}
	return &PaginatedLeaderboardResponse{
		Users:   dtos,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
}
