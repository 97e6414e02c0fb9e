package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
)

func mcQuestion(id, correct string, points int) entity.Question {
	return entity.Question{
		ID:             id,
		Type:           entity.QuestionTypeMultipleChoice,
		Prompt:         "prompt",
		Options:        entity.StringArray{correct, "wrong-a", "wrong-b"},
		CorrectAnswers: entity.StringArray{correct},
		Points:         points,
	}
}

func codeQuestion(id, correct string, points int) entity.Question {
	return entity.Question{
		ID:             id,
		Type:           entity.QuestionTypeCode,
		Prompt:         "prompt",
		CorrectAnswers: entity.StringArray{correct},
		Points:         points,
	}
}

func TestScore_AllCorrect(t *testing.T) {
	// Arrange
	questions := []entity.Question{
		mcQuestion("q1", "flex-wrap", 10),
		{
			ID:             "q2",
			Type:           entity.QuestionTypeTrueFalse,
			Prompt:         "prompt",
			Options:        entity.StringArray{"True", "False"},
			CorrectAnswers: entity.StringArray{"True"},
			Points:         5,
		},
	}
	answers := map[string][]string{
		"q1": {"flex-wrap"},
		"q2": {"True"},
	}

	// Act
	result, err := Score(questions, answers)

	// Assert
	require.NoError(t, err, "Подсчёт очков не должен возвращать ошибку")
	assert.Equal(t, 15, result.Total, "Все правильные ответы должны дать полную сумму")
	assert.Equal(t, 15, result.MaxPossible, "MaxPossible должен быть суммой очков вопросов")
}

func TestScore_EmptyAnswers(t *testing.T) {
	// Arrange
	questions := []entity.Question{mcQuestion("q1", "a", 10)}

	// Act
	result, err := Score(questions, map[string][]string{})

	// Assert
	require.NoError(t, err, "Пустая карта ответов - не ошибка")
	assert.Equal(t, 0, result.Total, "Без ответов Total должен быть 0")
	assert.Equal(t, 10, result.MaxPossible, "MaxPossible не зависит от ответов")
}

func TestScore_UnknownQuestionIDIgnored(t *testing.T) {
	// Arrange
	questions := []entity.Question{mcQuestion("q1", "a", 10)}
	answers := map[string][]string{
		"q1":      {"a"},
		"ghost-q": {"whatever"},
	}

	// Act
	result, err := Score(questions, answers)

	// Assert
	require.NoError(t, err, "Неизвестный ID вопроса должен игнорироваться")
	assert.Equal(t, 10, result.Total)
	assert.Equal(t, 10, result.MaxPossible)
}

func TestScore_ShortAnswerExactMatchOnly(t *testing.T) {
	// Arrange
	questions := []entity.Question{
		{
			ID:             "q1",
			Type:           entity.QuestionTypeShortAnswer,
			Prompt:         "prompt",
			CorrectAnswers: entity.StringArray{"O(n log n)"},
			Points:         10,
		},
	}

	// Act: точное совпадение
	exact, err := Score(questions, map[string][]string{"q1": {"O(n log n)"}})
	require.NoError(t, err)

	// Act: близкий, но не точный ответ
	fuzzy, err := Score(questions, map[string][]string{"q1": {"o(n log n)"}})
	require.NoError(t, err)

	// Assert: нечёткого сопоставления нет
	assert.Equal(t, 10, exact.Total, "Точное совпадение должно дать полный балл")
	assert.Equal(t, 0, fuzzy.Total, "Отличие в регистре должно дать 0")
}

func TestScore_MultiAnswerSetEquality(t *testing.T) {
	// Arrange
	question := entity.Question{
		ID:             "q1",
		Type:           entity.QuestionTypeMultipleChoice,
		Prompt:         "prompt",
		Options:        entity.StringArray{"a", "b", "c", "d"},
		CorrectAnswers: entity.StringArray{"a", "c"},
		Points:         20,
	}
	questions := []entity.Question{question}

	testCases := []struct {
		name      string
		submitted []string
		expected  int
	}{
		{"точное множество", []string{"a", "c"}, 20},
		{"другой порядок", []string{"c", "a"}, 20},
		{"частичное совпадение", []string{"a"}, 0},
		{"лишний элемент", []string{"a", "c", "b"}, 0},
		{"дубликат вместо второго ответа", []string{"a", "a"}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			result, err := Score(questions, map[string][]string{"q1": tc.submitted})

			// Assert: частичного балла за частичное множество нет
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result.Total)
		})
	}
}

func TestScore_CodePartialCredit(t *testing.T) {
	// Arrange
	reference := "func add(a, b int) int {\n\treturn a + b\n}"
	questions := []entity.Question{codeQuestion("q1", reference, 15)}

	// Act: тот же код с другими пробелами
	whitespaceOnly, err := Score(questions, map[string][]string{
		"q1": {"func add(a, b int) int { return a + b }"},
	})
	require.NoError(t, err)

	// Act: другая логика
	differentLogic, err := Score(questions, map[string][]string{
		"q1": {"func add(a, b int) int { return a - b }"},
	})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 15, whitespaceOnly.Total, "Отличие только в пробелах должно дать полный балл")
	assert.Equal(t, 7, differentLogic.Total, "Другая логика должна дать ровно половину очков (15/2 = 7)")
}

func TestScore_Determinism(t *testing.T) {
	// Arrange
	questions := []entity.Question{
		mcQuestion("q1", "a", 10),
		codeQuestion("q2", "return x", 15),
	}
	answers := map[string][]string{
		"q1": {"a"},
		"q2": {"return y"},
	}

	// Act
	first, err := Score(questions, answers)
	require.NoError(t, err)

	// Assert: повторные вызовы дают тот же результат
	for i := 0; i < 10; i++ {
		again, err := Score(questions, answers)
		require.NoError(t, err)
		assert.Equal(t, first, again, "Score должен быть детерминированным")
	}
}

func TestScore_BoundsInvariant(t *testing.T) {
	// Arrange
	questions := []entity.Question{
		mcQuestion("q1", "a", 10),
		mcQuestion("q2", "b", 5),
		codeQuestion("q3", "x", 7),
	}
	answerSets := []map[string][]string{
		{},
		{"q1": {"a"}},
		{"q1": {"wrong"}, "q2": {"wrong"}, "q3": {"wrong"}},
		{"q1": {"a"}, "q2": {"b"}, "q3": {"x"}},
	}

	for _, answers := range answerSets {
		// Act
		result, err := Score(questions, answers)

		// Assert: 0 <= Total <= MaxPossible
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Total, 0, "Total не может быть отрицательным")
		assert.LessOrEqual(t, result.Total, result.MaxPossible, "Total не может превышать MaxPossible")
	}
}

func TestScore_MalformedCatalog(t *testing.T) {
	// Arrange: неизвестный тип вопроса
	questions := []entity.Question{
		{
			ID:             "q1",
			Type:           "essay",
			Prompt:         "prompt",
			CorrectAnswers: entity.StringArray{"x"},
			Points:         10,
		},
	}

	// Act
	_, err := Score(questions, map[string][]string{})

	// Assert: некорректный каталог - ошибка программирования, не данных пользователя
	require.Error(t, err, "Неизвестный тип вопроса должен возвращать ошибку")
	assert.Contains(t, err.Error(), "malformed challenge catalog")
}

func TestScore_NonPositivePointsRejected(t *testing.T) {
	// Arrange
	q := mcQuestion("q1", "a", 0)

	// Act
	_, err := Score([]entity.Question{q}, nil)

	// Assert
	require.Error(t, err, "Вопрос с нулевыми очками нарушает инвариант каталога")
}
