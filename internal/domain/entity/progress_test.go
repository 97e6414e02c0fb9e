package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChallengeProgress_Reset(t *testing.T) {
	// Arrange: завершённая попытка с очками и кредитами
	completedAt := time.Now().Add(-time.Hour)
	progress := &ChallengeProgress{
		UserID:           1,
		ChallengeID:      "c1",
		Status:           ProgressStatusCompleted,
		StartedAt:        time.Now().Add(-2 * time.Hour),
		CompletedAt:      &completedAt,
		TimeSpentSeconds: 3600,
		Score:            17,
		MaxScore:         25,
		EarnedCredits:    50,
		Submission:       "func main() {}",
	}

	// Act
	now := time.Now()
	progress.Reset(now)

	// Assert: новая попытка не сохраняет ничего от прошлой
	assert.Equal(t, ProgressStatusInProgress, progress.Status)
	assert.Equal(t, now, progress.StartedAt)
	assert.Nil(t, progress.CompletedAt, "CompletedAt должен быть сброшен")
	assert.Zero(t, progress.TimeSpentSeconds)
	assert.Zero(t, progress.Score)
	assert.Zero(t, progress.MaxScore)
	assert.Zero(t, progress.EarnedCredits, "Кредиты прошлой попытки должны быть очищены")
	assert.Empty(t, progress.Submission)
}

func TestChallengeProgress_StatusHelpers(t *testing.T) {
	inProgress := &ChallengeProgress{Status: ProgressStatusInProgress}
	completed := &ChallengeProgress{Status: ProgressStatusCompleted}

	assert.True(t, inProgress.IsInProgress())
	assert.False(t, inProgress.IsCompleted())
	assert.True(t, completed.IsCompleted())
	assert.False(t, completed.IsInProgress())
}
