package models

import (
	"time"

	"gorm.io/datatypes"
)

type Submission struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;uniqueIndex:idx_submission_attempt" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	QuizID        uint           `gorm:"not null;uniqueIndex:idx_submission_attempt;index" json:"quiz_id"`
	Quiz          Quiz           `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"-"`
	AttemptNumber int            `gorm:"not null;uniqueIndex:idx_submission_attempt" json:"attempt_number"`
	Status        string         `gorm:"size:20;not null;default:'in_progress';index" json:"status"`
	Score         int            `gorm:"not null;default:0" json:"score"`
	TotalMarks    int            `gorm:"not null;default:0" json:"total_marks"`
	Percentage    float64        `gorm:"not null;default:0" json:"percentage"`
	Feedback      datatypes.JSON `json:"feedback,omitempty"`
	Answers       []UserAnswer   `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   *time.Time     `gorm:"index" json:"completed_at,omitempty"`
}

const (
	SubmissionStatusInProgress = "in_progress"
	SubmissionStatusCompleted  = "completed"
	SubmissionStatusAbandoned  = "abandoned"
	SubmissionStatusExpired    = "expired"
)
