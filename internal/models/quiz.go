package models

import "time"

type Quiz struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	SubjectID      uint       `gorm:"not null;index" json:"subject_id"`
	Subject        Subject    `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	CreatedBy      uint       `gorm:"not null;index" json:"created_by"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	GradeLevel     int        `gorm:"not null;index" json:"grade_level"`
	Difficulty     string     `gorm:"size:10;not null" json:"difficulty"`
	TotalQuestions int        `gorm:"not null;default:0" json:"total_questions"`
	TotalMarks     int        `gorm:"not null;default:0" json:"total_marks"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	Questions      []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

func IsValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
