package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"quiz-ai-backend/internal/metrics"
)

type IncorrectAnswer struct {
	QuestionText  string
	Submitted     string
	CorrectAnswer string
}

type FeedbackService struct {
	generator TextGenerator
}

func NewFeedbackService(generator TextGenerator) *FeedbackService {
	return &FeedbackService{generator: generator}
}

// Suggestions asks the generator for improvement tips. It never fails: a
// generator error or an empty reply yields an empty list.
func (s *FeedbackService) Suggestions(ctx context.Context, incorrect []IncorrectAnswer, score, total int) []string {
	if len(incorrect) == 0 {
		return []string{}
	}

	text, err := generate(ctx, s.generator, "feedback", BuildFeedbackPrompt(incorrect, score, total))
	if err != nil {
		metrics.FeedbackDegraded.Inc()
		log.Printf("feedback: continuing without suggestions: %v", err)
		return []string{}
	}

	return ParseSuggestions(text)
}

func BuildFeedbackPrompt(incorrect []IncorrectAnswer, score, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A student scored %d out of %d on a quiz and answered these questions incorrectly:\n\n", score, total)
	for i, a := range incorrect {
		submitted := a.Submitted
		if strings.TrimSpace(submitted) == "" {
			submitted = "(no answer)"
		}
		fmt.Fprintf(&b, "%d. Question: %s\n   Student's answer: %s\n   Correct answer: %s\n", i+1, a.QuestionText, submitted, a.CorrectAnswer)
	}
	b.WriteString("\nGive exactly two short suggestions to help the student improve. ")
	b.WriteString("Write each suggestion on its own line with no introduction or closing remarks.")
	return b.String()
}

// ParseSuggestions treats each non-empty line of text as one suggestion.
func ParseSuggestions(text string) []string {
	suggestions := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = trimListMarker(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		suggestions = append(suggestions, line)
	}
	return suggestions
}

func trimListMarker(line string) string {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}

	// "1. tip" or "2) tip"
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(line) && (line[i] == '.' || line[i] == ')') && line[i+1] == ' ' {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}
