package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"quiz-ai-backend/internal/database"
	"quiz-ai-backend/internal/events"
	"quiz-ai-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "services.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { database.Close(db) })
	return db
}

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeEvents struct {
	mu        sync.Mutex
	published int
	err       error
}

func (f *fakeEvents) PublishSubmissionCompleted(ctx context.Context, e events.SubmissionCompleted) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published++
	return f.err
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", GradeLevel: 7}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createSubject(t *testing.T, db *gorm.DB, name string) models.Subject {
	t.Helper()
	s := models.Subject{Name: name}
	require.NoError(t, db.Create(&s).Error)
	return s
}

type questionFixture struct {
	text    string
	marks   int
	options []string
	correct int
}

// createQuiz stores a quiz whose totals are derived from the fixtures.
func createQuiz(t *testing.T, db *gorm.DB, subjectID uint, grade int, fixtures ...questionFixture) models.Quiz {
	t.Helper()
	quiz := models.Quiz{
		SubjectID:      subjectID,
		CreatedBy:      1,
		Title:          "fixture quiz",
		GradeLevel:     grade,
		Difficulty:     models.DifficultyEasy,
		TotalQuestions: len(fixtures),
		IsActive:       true,
	}
	for i, f := range fixtures {
		q := models.Question{Text: f.text, Type: models.QuestionTypeSingleChoice, Marks: f.marks, OrderNum: i + 1}
		for j, o := range f.options {
			q.Options = append(q.Options, models.Option{Text: o, IsCorrect: j == f.correct, OrderNum: j + 1})
		}
		quiz.Questions = append(quiz.Questions, q)
		quiz.TotalMarks += f.marks
	}
	require.NoError(t, db.Create(&quiz).Error)
	return quiz
}

func twoQuestionQuiz(t *testing.T, db *gorm.DB, subjectID uint) models.Quiz {
	return createQuiz(t, db, subjectID, 7,
		questionFixture{text: "2 + 2 = ?", marks: 5, options: []string{"3", "4", "5", "6"}, correct: 1},
		questionFixture{text: "Capital of France?", marks: 5, options: []string{"Berlin", "Madrid", "Paris", "Rome"}, correct: 2},
	)
}

// completeSubmission inserts a completed submission directly.
func completeSubmission(t *testing.T, db *gorm.DB, userID, quizID uint, attempt, score int, percentage float64, completedAt time.Time) models.Submission {
	t.Helper()
	completedAt = completedAt.UTC()
	sub := models.Submission{
		UserID:        userID,
		QuizID:        quizID,
		AttemptNumber: attempt,
		Status:        models.SubmissionStatusCompleted,
		Score:         score,
		TotalMarks:    10,
		Percentage:    percentage,
		StartedAt:     completedAt.Add(-10 * time.Minute),
		CompletedAt:   &completedAt,
	}
	require.NoError(t, db.Create(&sub).Error)
	return sub
}
