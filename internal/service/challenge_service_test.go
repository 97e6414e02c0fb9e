package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
	apperrors "github.com/bytebolt/bytebolt-api/internal/pkg/errors"
)

func TestChallengeService_ListChallenges_CachesFirstPage(t *testing.T) {
	// Arrange
	mockChallengeRepo := new(MockChallengeRepo)
	cache := newFakeCacheRepo()

	expected := []entity.Challenge{
		{ID: "algorithm-fundamentals", Title: "Algorithm Fundamentals"},
		{ID: "web-security", Title: "Web Security"},
	}
	mockChallengeRepo.On("List", challengeListCachePageSize, 0).Return(expected, int64(2), nil).Once()

	service := NewChallengeService(mockChallengeRepo, cache)

	// Act: два запроса первой страницы
	first, total, err := service.ListChallenges(20, 0)
	require.NoError(t, err)
	second, _, err := service.ListChallenges(20, 0)
	require.NoError(t, err)

	// Assert: репозиторий вызван один раз, второй ответ из кеша
	assert.Equal(t, int64(2), total)
	assert.Len(t, first, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	mockChallengeRepo.AssertExpectations(t)
	mockChallengeRepo.AssertNumberOfCalls(t, "List", 1)
}

func TestChallengeService_ListChallenges_SmallFirstRequestDoesNotTruncateCache(t *testing.T) {
	// Arrange: в каталоге 10 испытаний, первый запрос берет только 5
	mockChallengeRepo := new(MockChallengeRepo)
	cache := newFakeCacheRepo()

	catalog := make([]entity.Challenge, 10)
	for i := range catalog {
		catalog[i] = entity.Challenge{ID: fmt.Sprintf("challenge-%d", i+1)}
	}
	mockChallengeRepo.On("List", challengeListCachePageSize, 0).Return(catalog, int64(10), nil).Once()

	service := NewChallengeService(mockChallengeRepo, cache)

	// Act
	small, _, err := service.ListChallenges(5, 0)
	require.NoError(t, err)
	full, total, err := service.ListChallenges(20, 0)
	require.NoError(t, err)

	// Assert: маленький первый запрос не усекает кеш для последующих
	assert.Len(t, small, 5)
	assert.Len(t, full, 10, "Запрос с большим per_page должен получить весь каталог из кеша")
	assert.Equal(t, int64(10), total)
	mockChallengeRepo.AssertNumberOfCalls(t, "List", 1)
}

func TestChallengeService_ListChallenges_NormalizesPagination(t *testing.T) {
	mockChallengeRepo := new(MockChallengeRepo)

	// limit <= 0 корректируется до 20, offset < 0 до 0
	mockChallengeRepo.On("List", 20, 0).Return([]entity.Challenge{}, int64(0), nil)

	service := NewChallengeService(mockChallengeRepo, nil)

	_, _, err := service.ListChallenges(-5, -1)

	require.NoError(t, err)
	mockChallengeRepo.AssertExpectations(t)
}

func TestChallengeService_CreateChallenge_ValidatesQuestions(t *testing.T) {
	// Тест: вопрос с верным ответом вне options отклоняется до записи
	mockChallengeRepo := new(MockChallengeRepo)
	service := NewChallengeService(mockChallengeRepo, nil)

	challenge := &entity.Challenge{
		ID:         "bad-challenge",
		Title:      "Bad",
		Difficulty: entity.DifficultyBeginner,
		Category:   entity.CategoryBackend,
		BaseXP:     100,
		Questions: []entity.Question{
			{
				ID:             "q1",
				Type:           entity.QuestionTypeMultipleChoice,
				Options:        entity.StringArray{"a", "b"},
				CorrectAnswers: entity.StringArray{"c"},
				Points:         10,
			},
		},
	}

	err := service.CreateChallenge(challenge)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockChallengeRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestChallengeService_CreateChallenge_RejectsInvalidDifficulty(t *testing.T) {
	mockChallengeRepo := new(MockChallengeRepo)
	service := NewChallengeService(mockChallengeRepo, nil)

	err := service.CreateChallenge(&entity.Challenge{
		ID:         "x",
		Title:      "X",
		Difficulty: "Impossible",
		Category:   entity.CategoryBackend,
		BaseXP:     100,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestChallengeService_CreateChallenge_InvalidatesListCache(t *testing.T) {
	// Arrange: кеш наполнен, создание испытания должно его сбросить
	mockChallengeRepo := new(MockChallengeRepo)
	cache := newFakeCacheRepo()
	require.NoError(t, cache.SetJSON(challengeListCacheKey, challengeListPage{}, challengeListCacheTTL))

	mockChallengeRepo.On("Create", mock.AnythingOfType("*entity.Challenge")).Return(nil)

	service := NewChallengeService(mockChallengeRepo, cache)

	// Act
	err := service.CreateChallenge(&entity.Challenge{
		ID:         "new-challenge",
		Title:      "New",
		Difficulty: entity.DifficultyAdvanced,
		Category:   entity.CategorySecurity,
		BaseXP:     150,
	})

	// Assert
	require.NoError(t, err)
	exists, _ := cache.Exists(challengeListCacheKey)
	assert.False(t, exists, "Кеш списка должен быть сброшен после создания")
	mockChallengeRepo.AssertExpectations(t)
}

func TestChallengeService_AddQuestions_AppendsValidatedQuestions(t *testing.T) {
	// Arrange
	mockChallengeRepo := new(MockChallengeRepo)
	cache := newFakeCacheRepo()
	require.NoError(t, cache.SetJSON(challengeListCacheKey, challengeListPage{}, challengeListCacheTTL))

	mockChallengeRepo.On("GetByID", "algorithm-fundamentals").
		Return(&entity.Challenge{ID: "algorithm-fundamentals"}, nil)
	mockChallengeRepo.On("AddQuestions", "algorithm-fundamentals", mock.AnythingOfType("[]entity.Question")).
		Return(nil)

	service := NewChallengeService(mockChallengeRepo, cache)

	questions := []entity.Question{
		{
			ID:             "q3",
			Type:           entity.QuestionTypeTrueFalse,
			Prompt:         "Binary search requires sorted input.",
			Options:        entity.StringArray{"True", "False"},
			CorrectAnswers: entity.StringArray{"True"},
			Points:         5,
		},
	}

	// Act
	err := service.AddQuestions("algorithm-fundamentals", questions)

	// Assert: вопросы записаны, кеш списка сброшен
	require.NoError(t, err)
	exists, _ := cache.Exists(challengeListCacheKey)
	assert.False(t, exists, "Кеш списка должен быть сброшен после добавления вопросов")
	mockChallengeRepo.AssertExpectations(t)
}

func TestChallengeService_AddQuestions_UnknownChallenge(t *testing.T) {
	mockChallengeRepo := new(MockChallengeRepo)
	mockChallengeRepo.On("GetByID", "missing").Return(nil, apperrors.ErrNotFound)

	service := NewChallengeService(mockChallengeRepo, nil)

	err := service.AddQuestions("missing", []entity.Question{})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	mockChallengeRepo.AssertNotCalled(t, "AddQuestions", mock.Anything, mock.Anything)
}
