package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
)

func TestRewardMultiplier_TierBoundaries(t *testing.T) {
	// Нижняя граница каждой ступени включительна
	testCases := []struct {
		name       string
		percentage float64
		expected   float64
	}{
		{"ровно 90", 90, 1.5},
		{"выше 90", 97.3, 1.5},
		{"ровно 75", 75, 1.25},
		{"между 75 и 90", 89.999, 1.25},
		{"ровно 60", 60, 1.0},
		{"между 60 и 75", 74.999, 1.0},
		{"чуть ниже 60", 59.999, 0.5},
		{"ноль", 0, 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RewardMultiplier(tc.percentage),
				"Множитель для %.3f%% должен быть %.2f", tc.percentage, tc.expected)
		})
	}
}

func TestComputeReward_Rounding(t *testing.T) {
	// Округление до ближайшего целого, половина - вверх
	testCases := []struct {
		name        string
		total       int
		maxPossible int
		baseXP      int
		expected    int
	}{
		{"100% от 100 XP", 25, 25, 100, 150},
		{"80% от 100 XP", 20, 25, 100, 125},
		{"68% от 50 XP", 17, 25, 50, 50},
		{"провал от 25 XP: 12.5 округляется вверх", 0, 25, 25, 13},
		{"1.25 * 250", 20, 25, 250, 313}, // 312.5 -> 313
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			credits := ComputeReward(tc.total, tc.maxPossible, tc.baseXP)
			assert.Equal(t, tc.expected, credits)
		})
	}
}

func TestComputeReward_ZeroMaxPossible(t *testing.T) {
	// Испытание без вопросов: процент определяется как 0, множитель 0.5
	credits := ComputeReward(0, 0, 100)

	assert.Equal(t, 50, credits, "При MaxPossible=0 награда должна быть round(baseXP*0.5)")
}

// TestComputeReward_WorkedExample воспроизводит сквозной сценарий:
// два вопроса на 10 и 15 очков, правильный ответ на первый и код с другой
// логикой на второй -> 10 + 7 = 17 из 25 (68%) -> множитель 1.0.
func TestComputeReward_WorkedExample(t *testing.T) {
	// Arrange
	questions := []entity.Question{
		{
			ID:             "q1",
			Type:           entity.QuestionTypeMultipleChoice,
			Prompt:         "prompt",
			Options:        entity.StringArray{"flex-wrap", "flex-flow"},
			CorrectAnswers: entity.StringArray{"flex-wrap"},
			Points:         10,
		},
		{
			ID:             "q2",
			Type:           entity.QuestionTypeCode,
			Prompt:         "prompt",
			CorrectAnswers: entity.StringArray{"return a + b"},
			Points:         15,
		},
	}
	answers := map[string][]string{
		"q1": {"flex-wrap"},
		"q2": {"return   a - b"},
	}

	// Act
	result, err := Score(questions, answers)
	require.NoError(t, err)
	credits := ComputeReward(result.Total, result.MaxPossible, 50)

	// Assert
	assert.Equal(t, 17, result.Total, "10 за верный ответ + 15/2 за код")
	assert.Equal(t, 25, result.MaxPossible)
	assert.InDelta(t, 68.0, result.Percentage(), 0.001)
	assert.Equal(t, 50, credits, "68%% попадает в ступень 1.0: награда равна baseXP")
}

func TestAssignmentReward(t *testing.T) {
	testCases := []struct {
		baseXP   int
		expected int
	}{
		{100, 50},
		{250, 125},
		{25, 13}, // 12.5 -> 13
		{0, 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, AssignmentReward(tc.baseXP),
			"Награда за сдачу задания должна быть round(%d*0.5)", tc.baseXP)
	}
}
