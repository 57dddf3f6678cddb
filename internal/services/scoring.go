package services

import (
	"math"

	"quiz-ai-backend/internal/models"
)

type SubmittedAnswer struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

type AnswerResult struct {
	QuestionID       uint   `json:"question_id"`
	QuestionText     string `json:"-"`
	Submitted        string `json:"submitted"`
	CorrectAnswer    string `json:"correct_answer"`
	SelectedOptionID *uint  `json:"-"`
	IsCorrect        bool   `json:"is_correct"`
	MarksAwarded     int    `json:"marks_awarded"`
	MarksPossible    int    `json:"marks_possible"`
}

type ScoreSummary struct {
	Score          int     `json:"score"`
	TotalMarks     int     `json:"total"`
	CorrectCount   int     `json:"correct_count"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
}

// EvaluateAnswers grades each submitted answer against the quiz's questions.
// A submitted value is correct only when it equals the correct option's text
// exactly; correct answers earn the question's full marks, anything else zero.
func EvaluateAnswers(questions []models.Question, submitted []SubmittedAnswer) ([]AnswerResult, error) {
	byID := make(map[uint]*models.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	seen := make(map[uint]bool, len(submitted))
	results := make([]AnswerResult, 0, len(submitted))
	for _, a := range submitted {
		q, ok := byID[a.QuestionID]
		if !ok {
			return nil, validationError("question %d does not belong to this quiz", a.QuestionID)
		}
		if seen[a.QuestionID] {
			return nil, validationError("question %d answered more than once", a.QuestionID)
		}
		seen[a.QuestionID] = true

		correct, ok := q.CorrectOption()
		if !ok {
			return nil, newError(KindDataIntegrity, nil, "question %d has no correct option", q.ID)
		}

		res := AnswerResult{
			QuestionID:    q.ID,
			QuestionText:  q.Text,
			Submitted:     a.Answer,
			CorrectAnswer: correct.Text,
			MarksPossible: q.Marks,
		}
		for i := range q.Options {
			if q.Options[i].Text == a.Answer {
				id := q.Options[i].ID
				res.SelectedOptionID = &id
				break
			}
		}
		if a.Answer == correct.Text {
			res.IsCorrect = true
			res.MarksAwarded = q.Marks
		}
		results = append(results, res)
	}

	return results, nil
}

// AggregateScore sums awarded marks and computes the percentage of questions
// answered correctly, rounded to two decimals.
func AggregateScore(results []AnswerResult, totalQuestions, totalMarks int) (ScoreSummary, error) {
	if totalQuestions <= 0 {
		return ScoreSummary{}, newError(KindConfiguration, nil, "quiz has no questions")
	}

	summary := ScoreSummary{
		TotalMarks:     totalMarks,
		TotalQuestions: totalQuestions,
	}
	for _, r := range results {
		summary.Score += r.MarksAwarded
		if r.IsCorrect {
			summary.CorrectCount++
		}
	}
	summary.Percentage = roundTo2(float64(summary.CorrectCount) / float64(totalQuestions) * 100)
	return summary, nil
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func incorrectAnswers(results []AnswerResult) []IncorrectAnswer {
	var out []IncorrectAnswer
	for _, r := range results {
		if r.IsCorrect {
			continue
		}
		out = append(out, IncorrectAnswer{
			QuestionText:  r.QuestionText,
			Submitted:     r.Submitted,
			CorrectAnswer: r.CorrectAnswer,
		})
	}
	return out
}
