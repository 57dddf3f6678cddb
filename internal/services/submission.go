package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"quiz-ai-backend/internal/events"
	"quiz-ai-backend/internal/metrics"
	"quiz-ai-backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MaxSuggestions = 2

	maxAttemptAllocations = 5
)

var errAttemptNotOpen = errors.New("attempt is no longer in progress")

type SubmissionEvents interface {
	PublishSubmissionCompleted(ctx context.Context, e events.SubmissionCompleted) error
}

type SubmissionService struct {
	db       *gorm.DB
	quizzes  *QuizService
	feedback *FeedbackService
	events   SubmissionEvents
}

func NewSubmissionService(db *gorm.DB, quizzes *QuizService, feedback *FeedbackService, ev SubmissionEvents) *SubmissionService {
	return &SubmissionService{db: db, quizzes: quizzes, feedback: feedback, events: ev}
}

type SubmitResult struct {
	SubmissionID  uint `json:"submission_id"`
	QuizID        uint `json:"quiz_id"`
	AttemptNumber int  `json:"attempt_number"`
	ScoreSummary
	Suggestions []string       `json:"suggestions"`
	Results     []AnswerResult `json:"results"`
	CompletedAt time.Time      `json:"completed_at"`
}

// Submit grades the answers, asks for feedback and records the finished
// attempt. Steps run strictly in that order; only a failed write aborts the
// submission.
func (s *SubmissionService) Submit(ctx context.Context, userID, quizID uint, answers []SubmittedAnswer) (*SubmitResult, error) {
	if len(answers) == 0 {
		return nil, validationError("answers are required")
	}

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsActive {
		return nil, validationError("quiz is no longer active")
	}
	if quiz.TotalQuestions <= 0 || len(quiz.Questions) == 0 {
		return nil, newError(KindConfiguration, nil, "quiz has no questions")
	}

	results, err := EvaluateAnswers(quiz.Questions, answers)
	if err != nil {
		return nil, err
	}

	summary, err := AggregateScore(results, quiz.TotalQuestions, quiz.TotalMarks)
	if err != nil {
		return nil, err
	}

	suggestions := s.feedback.Suggestions(ctx, incorrectAnswers(results), summary.Score, summary.TotalMarks)
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}

	sub, err := s.record(ctx, userID, quiz.ID, summary, results, suggestions)
	if err != nil {
		return nil, err
	}
	metrics.SubmissionsCompleted.Inc()

	if s.events != nil {
		err := s.events.PublishSubmissionCompleted(ctx, events.SubmissionCompleted{
			SubmissionID:  sub.ID,
			UserID:        userID,
			QuizID:        quiz.ID,
			AttemptNumber: sub.AttemptNumber,
			Score:         sub.Score,
			TotalMarks:    sub.TotalMarks,
			Percentage:    sub.Percentage,
			CompletedAt:   *sub.CompletedAt,
		})
		if err != nil {
			log.Printf("submission: event publish failed for submission %d: %v", sub.ID, err)
		}
	}

	return &SubmitResult{
		SubmissionID:  sub.ID,
		QuizID:        quiz.ID,
		AttemptNumber: sub.AttemptNumber,
		ScoreSummary:  summary,
		Suggestions:   suggestions,
		Results:       results,
		CompletedAt:   *sub.CompletedAt,
	}, nil
}

// record finalizes the user's open attempt for the quiz if there is one,
// otherwise inserts a new completed attempt.
func (s *SubmissionService) record(ctx context.Context, userID, quizID uint, summary ScoreSummary, results []AnswerResult, suggestions []string) (*models.Submission, error) {
	feedback, err := json.Marshal(suggestions)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	var open models.Submission
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quizID, models.SubmissionStatusInProgress).
		Order("attempt_number DESC").
		First(&open).Error
	switch {
	case err == nil:
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Submission{}).
				Where("id = ? AND status = ?", open.ID, models.SubmissionStatusInProgress).
				Updates(map[string]interface{}{
					"status":       models.SubmissionStatusCompleted,
					"score":        summary.Score,
					"total_marks":  summary.TotalMarks,
					"percentage":   summary.Percentage,
					"feedback":     datatypes.JSON(feedback),
					"completed_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errAttemptNotOpen
			}
			return createAnswers(tx, open.ID, results)
		})
		if err == nil {
			open.Status = models.SubmissionStatusCompleted
			open.Score = summary.Score
			open.TotalMarks = summary.TotalMarks
			open.Percentage = summary.Percentage
			open.Feedback = datatypes.JSON(feedback)
			open.CompletedAt = &now
			return &open, nil
		}
		if !errors.Is(err, errAttemptNotOpen) {
			return nil, err
		}
		// the open attempt was finalized or expired concurrently
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	sub := &models.Submission{
		UserID:      userID,
		QuizID:      quizID,
		Status:      models.SubmissionStatusCompleted,
		Score:       summary.Score,
		TotalMarks:  summary.TotalMarks,
		Percentage:  summary.Percentage,
		Feedback:    datatypes.JSON(feedback),
		StartedAt:   now,
		CompletedAt: &now,
	}
	return s.allocateAttempt(ctx, sub, func(tx *gorm.DB, submissionID uint) error {
		return createAnswers(tx, submissionID, results)
	})
}

// allocateAttempt inserts sub with the next attempt number for its user and
// quiz. The unique (user, quiz, attempt) index rejects a concurrent insert of
// the same number, in which case allocation is retried.
func (s *SubmissionService) allocateAttempt(ctx context.Context, sub *models.Submission, after func(tx *gorm.DB, submissionID uint) error) (*models.Submission, error) {
	for i := 0; i < maxAttemptAllocations; i++ {
		candidate := *sub
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			n, err := nextAttemptNumber(tx, candidate.UserID, candidate.QuizID)
			if err != nil {
				return err
			}
			candidate.AttemptNumber = n
			if err := tx.Omit(clause.Associations).Create(&candidate).Error; err != nil {
				return err
			}
			if after != nil {
				return after(tx, candidate.ID)
			}
			return nil
		})
		if err == nil {
			return &candidate, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		log.Printf("submission: attempt number taken for user %d quiz %d, retrying", sub.UserID, sub.QuizID)
	}
	return nil, newError(KindConflict, nil, "could not allocate an attempt number, please retry")
}

func nextAttemptNumber(tx *gorm.DB, userID, quizID uint) (int, error) {
	var last int
	err := tx.Model(&models.Submission{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Select("COALESCE(MAX(attempt_number), 0)").
		Scan(&last).Error
	return last + 1, err
}

func createAnswers(tx *gorm.DB, submissionID uint, results []AnswerResult) error {
	if len(results) == 0 {
		return nil
	}
	answers := make([]models.UserAnswer, 0, len(results))
	for _, r := range results {
		answers = append(answers, models.UserAnswer{
			SubmissionID:     submissionID,
			QuestionID:       r.QuestionID,
			SelectedOptionID: r.SelectedOptionID,
			AnswerText:       r.Submitted,
			IsCorrect:        r.IsCorrect,
			MarksObtained:    r.MarksAwarded,
		})
	}
	return tx.Create(&answers).Error
}

// StartAttempt opens an in-progress attempt, or returns the one already open.
func (s *SubmissionService) StartAttempt(ctx context.Context, userID, quizID uint) (*models.Submission, error) {
	var quiz models.Quiz
	if err := s.db.WithContext(ctx).Select("id", "is_active").First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("quiz not found")
		}
		return nil, err
	}
	if !quiz.IsActive {
		return nil, validationError("quiz is no longer active")
	}

	var open models.Submission
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quizID, models.SubmissionStatusInProgress).
		Order("attempt_number DESC").
		First(&open).Error
	if err == nil {
		return &open, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.allocateAttempt(ctx, &models.Submission{
		UserID:    userID,
		QuizID:    quizID,
		Status:    models.SubmissionStatusInProgress,
		StartedAt: time.Now().UTC(),
	}, nil)
}

func (s *SubmissionService) Abandon(ctx context.Context, userID, submissionID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ? AND user_id = ? AND status = ?", submissionID, userID, models.SubmissionStatusInProgress).
		Update("status", models.SubmissionStatusAbandoned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ? AND user_id = ?", submissionID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFoundError("submission not found")
	}
	return newError(KindConflict, nil, "submission is not in progress")
}

// ExpireStale marks in-progress attempts started before now-maxAge as expired.
func (s *SubmissionService) ExpireStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	res := s.db.WithContext(ctx).Model(&models.Submission{}).
		Where("status = ? AND started_at < ?", models.SubmissionStatusInProgress, cutoff).
		Update("status", models.SubmissionStatusExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	metrics.AttemptsExpired.Add(float64(res.RowsAffected))
	return res.RowsAffected, nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, userID, submissionID uint) (*models.Submission, error) {
	var sub models.Submission
	err := s.db.WithContext(ctx).
		Preload("Answers").
		Where("id = ? AND user_id = ?", submissionID, userID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("submission not found")
		}
		return nil, err
	}
	return &sub, nil
}
