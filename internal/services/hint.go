package services

import (
	"context"
	"fmt"
)

type HintService struct {
	quizzes   *QuizService
	generator TextGenerator
}

func NewHintService(quizzes *QuizService, generator TextGenerator) *HintService {
	return &HintService{quizzes: quizzes, generator: generator}
}

// Hint returns the generator's reply verbatim. The question lookup happens
// first so a missing question never reaches the generator.
func (s *HintService) Hint(ctx context.Context, quizID, questionID uint) (string, error) {
	question, err := s.quizzes.GetQuestion(ctx, quizID, questionID)
	if err != nil {
		return "", err
	}

	return generate(ctx, s.generator, "hint", BuildHintPrompt(question.Text))
}

func BuildHintPrompt(questionText string) string {
	return fmt.Sprintf("Give a short hint for the following quiz question. "+
		"The hint must guide the student towards the answer without revealing it.\n\nQuestion: %s", questionText)
}
