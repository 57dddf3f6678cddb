package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFeedbackPrompt(t *testing.T) {
	prompt := BuildFeedbackPrompt([]IncorrectAnswer{
		{QuestionText: "Capital of France?", Submitted: "Rome", CorrectAnswer: "Paris"},
		{QuestionText: "2 + 2 = ?", Submitted: "", CorrectAnswer: "4"},
	}, 5, 10)

	assert.Contains(t, prompt, "scored 5 out of 10")
	assert.Contains(t, prompt, "1. Question: Capital of France?")
	assert.Contains(t, prompt, "Student's answer: Rome")
	assert.Contains(t, prompt, "Correct answer: Paris")
	assert.Contains(t, prompt, "Student's answer: (no answer)")
	assert.Contains(t, prompt, "exactly two")
}

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain lines", "Review fractions.\nPractice daily.", []string{"Review fractions.", "Practice daily."}},
		{"blank lines dropped", "\n\nReview fractions.\n\n  \nPractice daily.\n", []string{"Review fractions.", "Practice daily."}},
		{"numbered", "1. Review fractions.\n2) Practice daily.", []string{"Review fractions.", "Practice daily."}},
		{"bullets", "- Review fractions.\n* Practice daily.\n• Sleep well.", []string{"Review fractions.", "Practice daily.", "Sleep well."}},
		{"decimal kept", "1.5 hours of reading helps", []string{"1.5 hours of reading helps"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSuggestions(tt.in))
		})
	}
}

func TestSuggestionsSkipsGeneratorWhenAllCorrect(t *testing.T) {
	gen := &fakeGenerator{reply: "tip"}
	out := NewFeedbackService(gen).Suggestions(context.Background(), nil, 10, 10)

	assert.Equal(t, []string{}, out)
	assert.Equal(t, 0, gen.calls())
}

func TestSuggestionsSwallowsGeneratorErrors(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	out := NewFeedbackService(gen).Suggestions(context.Background(), []IncorrectAnswer{{QuestionText: "q"}}, 0, 10)

	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Equal(t, 1, gen.calls())
}

func TestSuggestionsWithoutGenerator(t *testing.T) {
	out := NewFeedbackService(nil).Suggestions(context.Background(), []IncorrectAnswer{{QuestionText: "q"}}, 0, 10)
	assert.Equal(t, []string{}, out)
}
