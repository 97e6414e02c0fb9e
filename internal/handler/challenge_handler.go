package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
	"github.com/bytebolt/bytebolt-api/internal/handler/dto"
	apperrors "github.com/bytebolt/bytebolt-api/internal/pkg/errors"
	"github.com/bytebolt/bytebolt-api/internal/service"
)

// ChallengeHandler обрабатывает запросы каталога испытаний и прогресса
type ChallengeHandler struct {
	challengeService *service.ChallengeService
	progressService  *service.ProgressService
}

// NewChallengeHandler создает новый обработчик испытаний
func NewChallengeHandler(
	challengeService *service.ChallengeService,
	progressService *service.ProgressService,
) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
		progressService:  progressService,
	}
}

// ListChallenges возвращает страницу каталога испытаний
func (h *ChallengeHandler) ListChallenges(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	challenges, total, err := h.challengeService.ListChallenges(perPage, (page-1)*perPage)
	if err != nil {
		h.handleChallengeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedChallengesResponse{
		Challenges: challenges,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
	})
}

// GetChallenge возвращает испытание без вопросов
func (h *ChallengeHandler) GetChallenge(c *gin.Context) {
	challengeID := c.MustGet("challengeID").(string)

	challenge, err := h.challengeService.GetChallenge(challengeID)
	if err != nil {
		h.handleChallengeError(c, err)
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// GetChallengeWithQuestions возвращает испытание с вопросами и заданиями.
// Ключи ответов не сериализуются (json:"-" на CorrectAnswers).
func (h *ChallengeHandler) GetChallengeWithQuestions(c *gin.Context) {
	challengeID := c.MustGet("challengeID").(string)

	challenge, err := h.challengeService.GetChallengeWithQuestions(challengeID)
	if err != nil {
		h.handleChallengeError(c, err)
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// StartChallenge начинает (или перезапускает) прохождение испытания
func (h *ChallengeHandler) StartChallenge(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	challengeID := c.MustGet("challengeID").(string)

	progress, err := h.progressService.StartChallenge(userID, challengeID)
	if err != nil {
		h.handleChallengeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProgressResponse(progress))
}

// SubmitQuizRequest представляет отправку ответов на вопросы.
// Ответы на каждый вопрос передаются списком даже для одиночного выбора.
type SubmitQuizRequest struct {
	Answers map[string][]string `json:"answers" binding:"required"`
}

// SubmitQuiz оценивает ответы и завершает активную попытку
func (h *ChallengeHandler) SubmitQuiz(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	challengeID := c.MustGet("challengeID").(string)

	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.progressService.CompleteQuiz(userID, challengeID, req.Answers)
	if err != nil {
		h.handleChallengeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitAssignmentRequest представляет отправку практического задания
type SubmitAssignmentRequest struct {
	AssignmentID string `json:"assignment_id" binding:"required"`
	Submission   string `json:"submission" binding:"required"`
}

// SubmitAssignment сохраняет отправку задания и начисляет награду за сдачу
func (h *ChallengeHandler) SubmitAssignment(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	challengeID := c.MustGet("challengeID").(string)

	var req SubmitAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.progressService.SubmitAssignment(userID, challengeID, req.AssignmentID, req.Submission)
	if err != nil {
		h.handleChallengeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// RetakeChallenge начинает новую попытку завершённого испытания
func (h *ChallengeHandler) RetakeChallenge(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	challengeID := c.MustGet("challengeID").(string)

	progress, err := h.progressService.RetakeChallenge(userID, challengeID)
	if err != nil {
		h.handleChallengeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProgressResponse(progress))
}

// GetProgress возвращает прогресс пользователя по испытанию.
// Отсутствие записи - это состояние not_started, а не 404.
func (h *ChallengeHandler) GetProgress(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	challengeID := c.MustGet("challengeID").(string)

	progress, err := h.progressService.GetProgress(userID, challengeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusOK, dto.NewNotStartedResponse(challengeID))
			return
		}
		h.handleChallengeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProgressResponse(progress))
}

// ListMyProgress возвращает прогресс пользователя по всем испытаниям
func (h *ChallengeHandler) ListMyProgress(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	records, err := h.progressService.ListUserProgress(userID)
	if err != nil {
		h.handleChallengeError(c, err)
		return
	}

	responses := make([]*dto.ProgressResponse, len(records))
	for i := range records {
		responses[i] = dto.NewProgressResponse(&records[i])
	}
	c.JSON(http.StatusOK, gin.H{"progress": responses})
}

// CreateChallengeRequest представляет запрос на создание испытания
type CreateChallengeRequest struct {
	ID               string              `json:"id" binding:"required,min=3,max=64"`
	Title            string              `json:"title" binding:"required,min=3,max=200"`
	Description      string              `json:"description" binding:"omitempty,max=1000"`
	Difficulty       entity.Difficulty   `json:"difficulty" binding:"required"`
	Category         entity.Category     `json:"category" binding:"required"`
	BaseXP           int                 `json:"base_xp" binding:"required,min=1"`
	TimeLimitSeconds int                 `json:"time_limit_seconds" binding:"omitempty,min=0"`
	Questions        []QuestionRequest   `json:"questions" binding:"omitempty,dive"`
	Assignments      []AssignmentRequest `json:"assignments" binding:"omitempty,dive"`
}

// QuestionRequest представляет вопрос в запросе создания
type QuestionRequest struct {
	ID             string              `json:"id" binding:"required"`
	Type           entity.QuestionType `json:"type" binding:"required"`
	Prompt         string              `json:"prompt" binding:"required"`
	Options        []string            `json:"options"`
	CorrectAnswers []string            `json:"correct_answers" binding:"required,min=1"`
	Points         int                 `json:"points" binding:"required,min=1"`
	Position       int                 `json:"position"`
}

// AssignmentRequest представляет задание в запросе создания
type AssignmentRequest struct {
	ID             string                `json:"id" binding:"required"`
	Title          string                `json:"title" binding:"required"`
	Description    string                `json:"description"`
	Instructions   string                `json:"instructions"`
	Deadline       *time.Time            `json:"deadline"`
	SubmissionType entity.SubmissionType `json:"submission_type"`
	MaxPoints      int                   `json:"max_points"`
}

// CreateChallenge создает испытание вместе с вопросами и заданиями
// (административная операция)
func (h *ChallengeHandler) CreateChallenge(c *gin.Context) {
	var req CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge := &entity.Challenge{
		ID:               req.ID,
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		Category:         req.Category,
		BaseXP:           req.BaseXP,
		TimeLimitSeconds: req.TimeLimitSeconds,
	}
	for i, q := range req.Questions {
		position := q.Position
		if position == 0 {
			position = i + 1
		}
		challenge.Questions = append(challenge.Questions, entity.Question{
			ID:             q.ID,
			ChallengeID:    req.ID,
			Type:           q.Type,
			Prompt:         q.Prompt,
			Options:        entity.StringArray(q.Options),
			CorrectAnswers: entity.StringArray(q.CorrectAnswers),
			Points:         q.Points,
			Position:       position,
		})
	}
	for _, a := range req.Assignments {
		submissionType := a.SubmissionType
		if submissionType == "" {
			submissionType = entity.SubmissionTypeCode
		}
		challenge.Assignments = append(challenge.Assignments, entity.Assignment{
			ID:             a.ID,
			ChallengeID:    req.ID,
			Title:          a.Title,
			Description:    a.Description,
			Instructions:   a.Instructions,
			Deadline:       a.Deadline,
			SubmissionType: submissionType,
			MaxPoints:      a.MaxPoints,
		})
	}

	if err := h.challengeService.CreateChallenge(challenge); err != nil {
		h.handleChallengeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, challenge)
}

// AddQuestionsRequest представляет запрос на добавление вопросов
type AddQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// AddQuestions добавляет вопросы к существующему испытанию
// (административная операция)
func (h *ChallengeHandler) AddQuestions(c *gin.Context) {
	challengeID := c.MustGet("challengeID").(string)

	var req AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions := make([]entity.Question, 0, len(req.Questions))
	for i, q := range req.Questions {
		position := q.Position
		if position == 0 {
			position = i + 1
		}
		questions = append(questions, entity.Question{
			ID:             q.ID,
			ChallengeID:    challengeID,
			Type:           q.Type,
			Prompt:         q.Prompt,
			Options:        entity.StringArray(q.Options),
			CorrectAnswers: entity.StringArray(q.CorrectAnswers),
			Points:         q.Points,
			Position:       position,
		})
	}

	if err := h.challengeService.AddQuestions(challengeID, questions); err != nil {
		h.handleChallengeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Questions added successfully"})
}

// ExportProgress выгружает прогресс всех пользователей в Excel
// (административная операция)
func (h *ChallengeHandler) ExportProgress(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10000"))
	if limit < 1 || limit > 100000 {
		limit = 10000
	}

	records, _, err := h.progressService.ListAllProgress(limit, 0)
	if err != nil {
		h.handleChallengeError(c, err)
		return
	}

	filename := fmt.Sprintf("challenge-progress-%s", time.Now().Format("2006-01-02"))
	h.exportXLSX(c, records, filename)
}

// exportXLSX экспортирует записи прогресса в Excel через StreamWriter
func (h *ChallengeHandler) exportXLSX(c *gin.Context, records []entity.ChallengeProgress, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Прогресс"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[ChallengeHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	// Заголовки
	headers := []interface{}{"Пользователь", "Испытание", "Статус", "Начато", "Завершено", "Время (сек)", "Очки", "Максимум", "Кредиты"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[ChallengeHandler] Ошибка записи заголовков: %v", err)
	}

	// Данные
	for i, r := range records {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		completed := ""
		if r.CompletedAt != nil {
			completed = r.CompletedAt.Format(time.RFC3339)
		}

		row := []interface{}{
			r.UserID,
			r.ChallengeID,
			string(r.Status),
			r.StartedAt.Format(time.RFC3339),
			completed,
			r.TimeSpentSeconds,
			r.Score,
			r.MaxScore,
			r.EarnedCredits,
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[ChallengeHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[ChallengeHandler] Ошибка Flush: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
		return
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ChallengeHandler] Ошибка записи файла в ответ: %v", err)
	}
}

func (h *ChallengeHandler) handleChallengeError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, service.ErrActiveChallengeConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "active_challenge_conflict"})
	} else if errors.Is(err, service.ErrInvalidStateTransition) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "invalid_state_transition"})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in ChallengeHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
