package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"quiz-ai-backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SortRecent = "recent"
	SortOldest = "oldest"
	SortScore  = "score"
)

// HistoryFilter narrows a user's history. Nil/empty fields impose no
// constraint; all set fields apply together.
type HistoryFilter struct {
	GradeLevel    *int
	Subject       string
	Marks         *int
	CompletedDate *time.Time
	From          *time.Time
	To            *time.Time
	Sort          string
}

type HistoryEntry struct {
	SubmissionID  uint       `json:"submission_id"`
	QuizID        uint       `json:"quiz_id"`
	QuizTitle     string     `json:"quiz_title"`
	Subject       string     `json:"subject"`
	GradeLevel    int        `json:"grade_level"`
	Difficulty    string     `json:"difficulty"`
	AttemptNumber int        `json:"attempt_number"`
	Score         int        `json:"score"`
	TotalMarks    int        `json:"total_marks"`
	Percentage    float64    `json:"percentage"`
	Suggestions   []string   `json:"suggestions"`
	CompletedAt   *time.Time `json:"completed_at"`
}

type historyRow struct {
	SubmissionID  uint
	QuizID        uint
	QuizTitle     string
	Subject       string
	GradeLevel    int
	Difficulty    string
	AttemptNumber int
	Score         int
	TotalMarks    int
	Percentage    float64
	Feedback      datatypes.JSON
	CompletedAt   *time.Time
}

type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// History lists the user's completed submissions matching f. Without a sort
// the order is unspecified.
func (s *HistoryService) History(ctx context.Context, userID uint, f HistoryFilter) ([]HistoryEntry, error) {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, validationError("from must not be after to")
	}

	q := s.db.WithContext(ctx).
		Table("submissions").
		Select(`submissions.id AS submission_id, submissions.quiz_id, quizzes.title AS quiz_title,
			subjects.name AS subject, quizzes.grade_level, quizzes.difficulty, submissions.attempt_number,
			submissions.score, submissions.total_marks, submissions.percentage, COALESCE(submissions.feedback, '[]') AS feedback,
			submissions.completed_at`).
		Joins("JOIN quizzes ON quizzes.id = submissions.quiz_id").
		Joins("JOIN subjects ON subjects.id = quizzes.subject_id").
		Where("submissions.user_id = ? AND submissions.status = ?", userID, models.SubmissionStatusCompleted)

	if f.GradeLevel != nil {
		q = q.Where("quizzes.grade_level = ?", *f.GradeLevel)
	}
	if f.Subject != "" {
		q = q.Where("LOWER(subjects.name) = LOWER(?)", f.Subject)
	}
	if f.Marks != nil {
		q = q.Where("submissions.score = ?", *f.Marks)
	}
	if f.CompletedDate != nil {
		start := startOfDay(*f.CompletedDate)
		q = q.Where("submissions.completed_at >= ? AND submissions.completed_at < ?", start, start.AddDate(0, 0, 1))
	}
	if f.From != nil {
		q = q.Where("submissions.completed_at >= ?", startOfDay(*f.From))
	}
	if f.To != nil {
		q = q.Where("submissions.completed_at < ?", startOfDay(*f.To).AddDate(0, 0, 1))
	}

	switch f.Sort {
	case "":
	case SortRecent:
		q = q.Order("submissions.completed_at DESC")
	case SortOldest:
		q = q.Order("submissions.completed_at ASC")
	case SortScore:
		q = q.Order("submissions.score DESC").Order("submissions.completed_at DESC")
	default:
		return nil, validationError("sort must be one of recent, oldest, score")
	}

	var rows []historyRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, HistoryEntry{
			SubmissionID:  r.SubmissionID,
			QuizID:        r.QuizID,
			QuizTitle:     r.QuizTitle,
			Subject:       r.Subject,
			GradeLevel:    r.GradeLevel,
			Difficulty:    r.Difficulty,
			AttemptNumber: r.AttemptNumber,
			Score:         r.Score,
			TotalMarks:    r.TotalMarks,
			Percentage:    r.Percentage,
			Suggestions:   decodeSuggestions(r.SubmissionID, r.Feedback),
			CompletedAt:   r.CompletedAt,
		})
	}
	return entries, nil
}

func decodeSuggestions(submissionID uint, raw datatypes.JSON) []string {
	suggestions := []string{}
	if len(raw) == 0 {
		return suggestions
	}
	if err := json.Unmarshal(raw, &suggestions); err != nil {
		log.Printf("history: submission %d has unreadable feedback: %v", submissionID, err)
		return []string{}
	}
	if suggestions == nil {
		return []string{}
	}
	return suggestions
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
