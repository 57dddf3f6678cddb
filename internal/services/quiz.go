package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"quiz-ai-backend/internal/models"

	"gorm.io/gorm"
)

const (
	MaxQuestionCount = 50
	MinGradeLevel    = 1
	MaxGradeLevel    = 12
)

type QuizService struct {
	db        *gorm.DB
	subjects  *SubjectService
	generator TextGenerator
}

func NewQuizService(db *gorm.DB, subjects *SubjectService, generator TextGenerator) *QuizService {
	return &QuizService{db: db, subjects: subjects, generator: generator}
}

type GenerateQuizInput struct {
	GradeLevel    int
	Subject       string
	QuestionCount int
	MaxScore      int
	Difficulty    string
}

func (in GenerateQuizInput) validate() error {
	if strings.TrimSpace(in.Subject) == "" {
		return validationError("subject is required")
	}
	if in.GradeLevel < MinGradeLevel || in.GradeLevel > MaxGradeLevel {
		return validationError("grade must be between %d and %d", MinGradeLevel, MaxGradeLevel)
	}
	if in.QuestionCount < 1 || in.QuestionCount > MaxQuestionCount {
		return validationError("number of questions must be between 1 and %d", MaxQuestionCount)
	}
	if in.MaxScore < in.QuestionCount {
		return validationError("max score must be at least the number of questions")
	}
	if !models.IsValidDifficulty(in.Difficulty) {
		return validationError("difficulty must be one of easy, medium, hard")
	}
	return nil
}

// GenerateQuiz asks the generator for questions and stores the quiz, its
// questions and their options in a single transaction.
func (s *QuizService) GenerateQuiz(ctx context.Context, userID uint, in GenerateQuizInput) (*models.Quiz, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	subject, err := s.subjects.FindByName(ctx, in.Subject)
	if err != nil {
		return nil, err
	}

	text, err := generate(ctx, s.generator, "generate", BuildQuizPrompt(in, subject.Name))
	if err != nil {
		return nil, err
	}

	generated, err := ParseGeneratedQuestions(text, in.QuestionCount)
	if err != nil {
		return nil, err
	}

	marks := distributeMarks(in.MaxScore, len(generated))
	quiz := models.Quiz{
		SubjectID:      subject.ID,
		CreatedBy:      userID,
		Title:          fmt.Sprintf("%s quiz for grade %d (%s)", subject.Name, in.GradeLevel, in.Difficulty),
		GradeLevel:     in.GradeLevel,
		Difficulty:     in.Difficulty,
		TotalQuestions: len(generated),
		TotalMarks:     in.MaxScore,
		IsActive:       true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Questions", "Subject").Create(&quiz).Error; err != nil {
			return err
		}

		for i, g := range generated {
			difficulty := g.Difficulty
			if !models.IsValidDifficulty(difficulty) {
				difficulty = in.Difficulty
			}
			q := models.Question{
				QuizID:     quiz.ID,
				Text:       g.Question,
				Type:       models.QuestionTypeSingleChoice,
				Difficulty: difficulty,
				Marks:      marks[i],
				OrderNum:   i + 1,
			}
			if err := tx.Omit("Options").Create(&q).Error; err != nil {
				return err
			}

			for j, optText := range g.Options {
				opt := models.Option{
					QuestionID: q.ID,
					Text:       optText,
					IsCorrect:  j == g.correctIndex,
					OrderNum:   j + 1,
				}
				if err := tx.Create(&opt).Error; err != nil {
					return err
				}
				q.Options = append(q.Options, opt)
			}
			quiz.Questions = append(quiz.Questions, q)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store generated quiz: %w", err)
	}

	quiz.Subject = *subject
	return &quiz, nil
}

func BuildQuizPrompt(in GenerateQuizInput, subject string) string {
	return fmt.Sprintf(`Create %d multiple-choice questions on %s for grade %d students at %s difficulty.

Respond with ONLY a JSON array inside a single fenced json code block, in this exact shape:

%s
[
  {
    "question": "Question text?",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correct_answer": "Option A",
    "difficulty": "%s"
  }
]
%s

Rules:
- Every question has exactly four options
- "correct_answer" is copied verbatim from one of the options
- "difficulty" is one of easy, medium, hard
- Questions must be factually accurate and suitable for the grade`,
		in.QuestionCount, subject, in.GradeLevel, in.Difficulty, "```json", in.Difficulty, "```")
}

type generatedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Difficulty    string   `json:"difficulty"`

	correctIndex int
}

var (
	fencedJSON    = regexp.MustCompile("(?s)```(?:json|JSON)\\s*(.*?)```")
	fencedUntyped = regexp.MustCompile("(?s)```[ \\t]*\\r?\\n(.*?)```")
)

// ExtractJSON returns the body of the first ```json block in text. Without
// one it falls back to the first fence with no language tag, then to the
// trimmed text itself.
func ExtractJSON(text string) string {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := fencedUntyped.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// ParseGeneratedQuestions decodes the generator reply, drops malformed
// questions and keeps at most limit of the rest.
func ParseGeneratedQuestions(text string, limit int) ([]generatedQuestion, error) {
	raw := []byte(ExtractJSON(text))

	var questions []generatedQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		var wrapped struct {
			Questions []generatedQuestion `json:"questions"`
		}
		if werr := json.Unmarshal(raw, &wrapped); werr != nil || len(wrapped.Questions) == 0 {
			return nil, newError(KindUpstreamFormat, err, "AI returned invalid JSON")
		}
		questions = wrapped.Questions
	}

	valid := make([]generatedQuestion, 0, len(questions))
	for _, q := range questions {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" || len(q.Options) < 2 {
			continue
		}
		idx := correctOptionIndex(q.Options, q.CorrectAnswer)
		if idx < 0 {
			continue
		}
		q.correctIndex = idx
		q.Difficulty = strings.ToLower(strings.TrimSpace(q.Difficulty))
		valid = append(valid, q)
		if limit > 0 && len(valid) == limit {
			break
		}
	}

	if len(valid) == 0 {
		return nil, newError(KindUpstreamFormat, nil, "AI returned no usable questions")
	}
	return valid, nil
}

func correctOptionIndex(options []string, answer string) int {
	for i, o := range options {
		if o == answer {
			return i
		}
	}
	trimmed := strings.TrimSpace(answer)
	for i, o := range options {
		if strings.TrimSpace(o) == trimmed {
			return i
		}
	}
	// models sometimes answer with the option letter
	if len(trimmed) == 1 {
		idx := int(strings.ToUpper(trimmed)[0]) - 'A'
		if idx >= 0 && idx < len(options) {
			return idx
		}
	}
	return -1
}

// distributeMarks splits total across n questions so the parts sum to total.
func distributeMarks(total, n int) []int {
	marks := make([]int, n)
	if n == 0 {
		return marks
	}
	base, rem := total/n, total%n
	for i := range marks {
		marks[i] = base
		if i < rem {
			marks[i]++
		}
	}
	return marks
}

type QuizFilter struct {
	GradeLevel *int
	Subject    string
	ActiveOnly bool
}

func (s *QuizService) ListQuizzes(ctx context.Context, f QuizFilter) ([]models.Quiz, error) {
	q := s.db.WithContext(ctx).Model(&models.Quiz{}).Preload("Subject")
	if f.GradeLevel != nil {
		q = q.Where("quizzes.grade_level = ?", *f.GradeLevel)
	}
	if f.Subject != "" {
		q = q.Joins("JOIN subjects ON subjects.id = quizzes.subject_id").
			Where("LOWER(subjects.name) = LOWER(?)", f.Subject)
	}
	if f.ActiveOnly {
		q = q.Where("quizzes.is_active = ?", true)
	}

	var quizzes []models.Quiz
	if err := q.Order("quizzes.created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

// GetQuiz loads a quiz with its questions and options in display order.
func (s *QuizService) GetQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC")
		}).
		First(&quiz, quizID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("quiz not found")
		}
		return nil, err
	}
	return &quiz, nil
}

// GetOwnQuiz loads a quiz only if userID created it.
func (s *QuizService) GetOwnQuiz(ctx context.Context, quizID, userID uint) (*models.Quiz, error) {
	quiz, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CreatedBy != userID {
		return nil, notFoundError("quiz not found")
	}
	return quiz, nil
}

// Deactivate hides a quiz from new attempts. Only its creator may do so.
func (s *QuizService) Deactivate(ctx context.Context, quizID, userID uint) error {
	result := s.db.WithContext(ctx).Model(&models.Quiz{}).
		Where("id = ? AND created_by = ?", quizID, userID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundError("quiz not found")
	}
	return nil
}

func (s *QuizService) GetQuestion(ctx context.Context, quizID, questionID uint) (*models.Question, error) {
	var question models.Question
	err := s.db.WithContext(ctx).
		Where("id = ? AND quiz_id = ?", questionID, quizID).
		First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("question not found")
		}
		return nil, err
	}
	return &question, nil
}
