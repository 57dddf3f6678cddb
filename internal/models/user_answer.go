package models

type UserAnswer struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	SubmissionID     uint   `gorm:"not null;index" json:"submission_id"`
	QuestionID       uint   `gorm:"not null;index" json:"question_id"`
	SelectedOptionID *uint  `json:"selected_option_id,omitempty"`
	AnswerText       string `gorm:"type:text" json:"answer_text"`
	IsCorrect        bool   `gorm:"not null" json:"is_correct"`
	MarksObtained    int    `gorm:"not null;default:0" json:"marks_obtained"`
}
