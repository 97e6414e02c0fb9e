package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	// Обработка пустого массива байтов
	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Contains проверяет наличие значения в массиве
func (o StringArray) Contains(value string) bool {
	for _, v := range o {
		if v == value {
			return true
		}
	}
	return false
}

// QuestionType определяет тип вопроса в испытании.
// Набор типов закрытый: движок подсчёта очков сопоставляет их исчерпывающе.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
	QuestionTypeCode           QuestionType = "code"
)

// IsValid проверяет, что тип вопроса входит в закрытый набор
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer, QuestionTypeCode:
		return true
	}
	return false
}

// IsChoice возвращает true для типов с фиксированными вариантами ответа
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// Question представляет вопрос в испытании
type Question struct {
	ID          string       `gorm:"primaryKey;size:64" json:"id"`
	ChallengeID string       `gorm:"size:64;not null;index" json:"challenge_id"`
	Type        QuestionType `gorm:"size:20;not null" json:"type"`
	Prompt      string       `gorm:"size:1000;not null" json:"prompt"`
	Options     StringArray  `gorm:"type:jsonb;not null" json:"options"`
	// CorrectAnswers скрыт от клиента. Один элемент для обычных вопросов,
	// несколько - для вопросов с множественным выбором.
	CorrectAnswers StringArray `gorm:"type:jsonb;not null" json:"-"`
	Points         int         `gorm:"not null;default:10" json:"points"`
	Position       int         `gorm:"not null;default:0" json:"position"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsMultiAnswer возвращает true, если вопрос требует несколько ответов
func (q *Question) IsMultiAnswer() bool {
	return len(q.CorrectAnswers) > 1
}

// Validate проверяет инварианты каталога.
// Нарушение - ошибка данных каталога, а не ошибка пользователя.
func (q *Question) Validate() error {
	if !q.Type.IsValid() {
		return fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
	}
	if q.Points <= 0 {
		return fmt.Errorf("question %s: points must be positive, got %d", q.ID, q.Points)
	}
	if len(q.CorrectAnswers) == 0 {
		return fmt.Errorf("question %s: correct answer is required", q.ID)
	}
	if q.Type.IsChoice() {
		if len(q.Options) < 2 {
			return fmt.Errorf("question %s: choice question requires at least 2 options", q.ID)
		}
		for _, ans := range q.CorrectAnswers {
			if !q.Options.Contains(ans) {
				return fmt.Errorf("question %s: correct answer %q is not among options", q.ID, ans)
			}
		}
	}
	return nil
}
