package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_Validate_Valid(t *testing.T) {
	// Arrange
	question := &Question{
		ID:             "q1",
		ChallengeID:    "c1",
		Type:           QuestionTypeMultipleChoice,
		Prompt:         "Какое свойство CSS переносит элементы flex-контейнера?",
		Options:        StringArray{"flex-wrap", "flex-flow", "flex-direction", "flex-basis"},
		CorrectAnswers: StringArray{"flex-wrap"},
		Points:         10,
	}

	// Act & Assert
	require.NoError(t, question.Validate(), "Корректный вопрос должен проходить валидацию")
}

func TestQuestion_Validate_UnknownType(t *testing.T) {
	// Arrange
	question := &Question{
		ID:             "q1",
		Type:           "essay",
		CorrectAnswers: StringArray{"x"},
		Points:         10,
	}

	// Act & Assert
	assert.Error(t, question.Validate(), "Неизвестный тип вопроса должен отклоняться")
}

func TestQuestion_Validate_NonPositivePoints(t *testing.T) {
	testCases := []struct {
		name   string
		points int
	}{
		{"ноль очков", 0},
		{"отрицательные очки", -5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			question := &Question{
				ID:             "q1",
				Type:           QuestionTypeShortAnswer,
				CorrectAnswers: StringArray{"x"},
				Points:         tc.points,
			}
			assert.Error(t, question.Validate(), "Очки должны быть строго положительными")
		})
	}
}

func TestQuestion_Validate_CorrectAnswerMustBeOption(t *testing.T) {
	// Arrange: правильный ответ не входит в варианты
	question := &Question{
		ID:             "q1",
		Type:           QuestionTypeTrueFalse,
		Options:        StringArray{"True", "False"},
		CorrectAnswers: StringArray{"Maybe"},
		Points:         5,
	}

	// Act & Assert
	assert.Error(t, question.Validate(),
		"Для вопросов с вариантами правильный ответ обязан быть одним из вариантов")
}

func TestQuestion_Validate_ShortAnswerWithoutOptions(t *testing.T) {
	// Arrange: для short_answer и code варианты не требуются
	question := &Question{
		ID:             "q1",
		Type:           QuestionTypeShortAnswer,
		CorrectAnswers: StringArray{"42"},
		Points:         5,
	}

	// Act & Assert
	assert.NoError(t, question.Validate())
}

func TestQuestion_IsMultiAnswer(t *testing.T) {
	// Arrange
	single := &Question{CorrectAnswers: StringArray{"a"}}
	multi := &Question{CorrectAnswers: StringArray{"a", "b"}}

	// Act & Assert
	assert.False(t, single.IsMultiAnswer())
	assert.True(t, multi.IsMultiAnswer())
}

func TestStringArray_Contains(t *testing.T) {
	// Arrange
	arr := StringArray{"a", "b", "c"}

	// Act & Assert
	assert.True(t, arr.Contains("b"))
	assert.False(t, arr.Contains("z"))
	assert.False(t, StringArray(nil).Contains("a"))
}
