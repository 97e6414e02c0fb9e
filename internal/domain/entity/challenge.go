package entity

import (
	"time"
)

// Difficulty определяет уровень сложности испытания
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// IsValid проверяет, что сложность входит в допустимый набор
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Category определяет тематическую категорию испытания
type Category string

const (
	CategoryAlgorithm   Category = "Algorithm"
	CategoryFrontend    Category = "Frontend"
	CategoryBackend     Category = "Backend"
	CategoryDatabase    Category = "Database"
	CategorySecurity    Category = "Security"
	CategoryProgramming Category = "Programming"
)

// IsValid проверяет, что категория входит в допустимый набор
func (c Category) IsValid() bool {
	switch c {
	case CategoryAlgorithm, CategoryFrontend, CategoryBackend,
		CategoryDatabase, CategorySecurity, CategoryProgramming:
		return true
	}
	return false
}

// Challenge представляет испытание: набор оцениваемых вопросов и заданий.
// Каталог статичен в рамках сессии; порядок вопросов задаётся Position
// и не меняется пользователем.
type Challenge struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"size:1000;not null;default:''" json:"description"`
	Difficulty  Difficulty `gorm:"size:20;not null" json:"difficulty"`
	Category    Category   `gorm:"size:20;not null" json:"category"`
	// BaseXP - базовый пул награды, к которому применяется множитель за результат
	BaseXP int `gorm:"column:base_xp;not null;default:100" json:"base_xp"`
	// TimeLimitSeconds - рекомендательный лимит времени. 0 = без лимита.
	// Сервер не прерывает отправку по истечении: лимит не является границей безопасности.
	TimeLimitSeconds int          `gorm:"not null;default:0" json:"time_limit_seconds"`
	Questions        []Question   `gorm:"foreignKey:ChallengeID;references:ID" json:"questions,omitempty"`
	Assignments      []Assignment `gorm:"foreignKey:ChallengeID;references:ID" json:"assignments,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Challenge) TableName() string {
	return "challenges"
}

// MaxPossibleScore возвращает сумму очков всех вопросов испытания
func (c *Challenge) MaxPossibleScore() int {
	total := 0
	for _, q := range c.Questions {
		total += q.Points
	}
	return total
}

// QuestionByID возвращает вопрос по идентификатору или nil
func (c *Challenge) QuestionByID(id string) *Question {
	for i := range c.Questions {
		if c.Questions[i].ID == id {
			return &c.Questions[i]
		}
	}
	return nil
}
