package scoring

import (
	"fmt"
	"strings"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
)

// Result представляет итог подсчёта очков по испытанию
type Result struct {
	// Total - набранные очки
	Total int `json:"total"`
	// MaxPossible - сумма очков всех вопросов испытания
	MaxPossible int `json:"max_possible"`
}

// Percentage возвращает результат в процентах от максимума (0-100).
// При MaxPossible = 0 определяется как 0, чтобы избежать деления на ноль.
func (r Result) Percentage() float64 {
	if r.MaxPossible == 0 {
		return 0
	}
	return 100 * float64(r.Total) / float64(r.MaxPossible)
}

// Score подсчитывает очки по отправленным ответам. Функция чистая и
// детерминированная: для одних и тех же входов результат всегда одинаков.
//
// Правила по типам вопросов:
//   - multiple_choice / true_false / short_answer: точное совпадение строки -
//     полные очки, иначе 0;
//   - вопрос с несколькими правильными ответами: полный балл только при
//     точном совпадении множеств (без учёта порядка), частичных совпадений нет;
//   - code: обе стороны нормализуются по пробелам; совпадение - полный балл,
//     любое другое отличие - половина очков (целочисленно, без выполнения кода).
//
// Неотвеченные вопросы считаются неправильными. Ответы на неизвестные
// вопросы игнорируются. Ошибка возвращается только для некорректного
// каталога (неизвестный тип вопроса, неположительные очки).
func Score(questions []entity.Question, answers map[string][]string) (Result, error) {
	var res Result

	for i := range questions {
		q := &questions[i]
		if err := q.Validate(); err != nil {
			return Result{}, fmt.Errorf("malformed challenge catalog: %w", err)
		}
		res.MaxPossible += q.Points

		submitted, ok := answers[q.ID]
		if !ok || len(submitted) == 0 {
			continue // нет ответа - 0 очков, не ошибка
		}

		res.Total += scoreQuestion(q, submitted)
	}

	return res, nil
}

// scoreQuestion возвращает очки за один вопрос
func scoreQuestion(q *entity.Question, submitted []string) int {
	if q.IsMultiAnswer() {
		if setsEqual(q.CorrectAnswers, submitted) {
			return q.Points
		}
		return 0
	}

	answer := submitted[0]
	correct := q.CorrectAnswers[0]

	switch q.Type {
	case entity.QuestionTypeMultipleChoice, entity.QuestionTypeTrueFalse, entity.QuestionTypeShortAnswer:
		if answer == correct {
			return q.Points
		}
		return 0
	case entity.QuestionTypeCode:
		if normalizeWhitespace(answer) == normalizeWhitespace(correct) {
			return q.Points
		}
		// Плоский частичный балл за попытку: код не выполняется
		// и семантически не оценивается
		return q.Points / 2
	}

	// Недостижимо: Validate отклоняет неизвестные типы
	return 0
}

// setsEqual проверяет равенство множеств ответов: одинаковая длина
// и каждый правильный ответ присутствует в отправленных
func setsEqual(correct entity.StringArray, submitted []string) bool {
	if len(correct) != len(submitted) {
		return false
	}
	seen := make(map[string]bool, len(submitted))
	for _, s := range submitted {
		seen[s] = true
	}
	if len(seen) != len(correct) {
		return false // дубликаты в отправленных
	}
	for _, c := range correct {
		if !seen[c] {
			return false
		}
	}
	return true
}

// normalizeWhitespace схлопывает последовательности пробельных символов
// в один пробел и обрезает края
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
