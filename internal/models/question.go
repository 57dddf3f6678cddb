package models

type Question struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	QuizID     uint     `gorm:"not null;index" json:"quiz_id"`
	Text       string   `gorm:"type:text;not null" json:"text"`
	Type       string   `gorm:"size:20;not null;default:'single_choice'" json:"type"`
	Difficulty string   `gorm:"size:10" json:"difficulty"`
	Marks      int      `gorm:"not null;default:1" json:"marks"`
	OrderNum   int      `gorm:"not null" json:"order_num"`
	Options    []Option `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

const QuestionTypeSingleChoice = "single_choice"

// CorrectOption returns the first option flagged as correct.
func (q *Question) CorrectOption() (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i], true
		}
	}
	return nil, false
}
