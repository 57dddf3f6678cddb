package services

import (
	"context"
	"errors"
	"testing"

	"quiz-ai-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatedReply = "Sure! Here is your quiz:\n```json\n" + `[
  {"question": "2 + 2 = ?", "options": ["3", "4", "5", "6"], "correct_answer": "4", "difficulty": "easy"},
  {"question": "3 x 3 = ?", "options": ["6", "9", "12", "8"], "correct_answer": "B", "difficulty": "medium"},
  {"question": "10 / 2 = ?", "options": ["2", "5", "10", "20"], "correct_answer": "5", "difficulty": "weird"}
]` + "\n```"

func validInput() GenerateQuizInput {
	return GenerateQuizInput{GradeLevel: 5, Subject: "mathematics", QuestionCount: 3, MaxScore: 10, Difficulty: "easy"}
}

func TestGenerateQuizUnknownSubject(t *testing.T) {
	db := openTestDB(t)
	gen := &fakeGenerator{reply: generatedReply}
	svc := NewQuizService(db, NewSubjectService(db), gen)

	in := validInput()
	in.Subject = "Alchemy"
	_, err := svc.GenerateQuiz(context.Background(), 1, in)

	assert.True(t, IsKind(err, KindNotFound))
	assert.Equal(t, 0, gen.calls())
	var count int64
	db.Model(&models.Quiz{}).Count(&count)
	assert.Zero(t, count)
}

func TestGenerateQuizValidation(t *testing.T) {
	db := openTestDB(t)
	gen := &fakeGenerator{reply: generatedReply}
	svc := NewQuizService(db, NewSubjectService(db), gen)

	tests := []struct {
		name   string
		mutate func(*GenerateQuizInput)
	}{
		{"missing subject", func(in *GenerateQuizInput) { in.Subject = " " }},
		{"grade too high", func(in *GenerateQuizInput) { in.GradeLevel = 13 }},
		{"no questions", func(in *GenerateQuizInput) { in.QuestionCount = 0 }},
		{"max score below question count", func(in *GenerateQuizInput) { in.MaxScore = 2 }},
		{"bad difficulty", func(in *GenerateQuizInput) { in.Difficulty = "extreme" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.GenerateQuiz(context.Background(), 1, in)
			assert.True(t, IsKind(err, KindValidation))
		})
	}
	assert.Equal(t, 0, gen.calls())
}

func TestGenerateQuizStoresQuestions(t *testing.T) {
	db := openTestDB(t)
	createSubject(t, db, "Mathematics")
	gen := &fakeGenerator{reply: generatedReply}
	svc := NewQuizService(db, NewSubjectService(db), gen)

	quiz, err := svc.GenerateQuiz(context.Background(), 42, validInput())
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls())
	assert.Contains(t, gen.prompts[0], "Create 3 multiple-choice questions on Mathematics for grade 5")

	assert.Equal(t, uint(42), quiz.CreatedBy)
	assert.Equal(t, 3, quiz.TotalQuestions)
	assert.Equal(t, 10, quiz.TotalMarks)
	assert.Equal(t, "Mathematics", quiz.Subject.Name)

	stored, err := svc.GetQuiz(context.Background(), quiz.ID)
	require.NoError(t, err)
	require.Len(t, stored.Questions, 3)

	sum := 0
	for _, q := range stored.Questions {
		sum += q.Marks
		require.Len(t, q.Options, 4)
		_, ok := q.CorrectOption()
		assert.True(t, ok)
	}
	assert.Equal(t, 10, sum)

	correct, _ := stored.Questions[1].CorrectOption()
	assert.Equal(t, "9", correct.Text)
	assert.Equal(t, "medium", stored.Questions[1].Difficulty)
	assert.Equal(t, "easy", stored.Questions[2].Difficulty)
}

func TestGenerateQuizBadReplyWritesNothing(t *testing.T) {
	db := openTestDB(t)
	createSubject(t, db, "Mathematics")
	svc := NewQuizService(db, NewSubjectService(db), &fakeGenerator{reply: "I cannot help with that."})

	_, err := svc.GenerateQuiz(context.Background(), 1, validInput())
	assert.True(t, IsKind(err, KindUpstreamFormat))

	var count int64
	db.Model(&models.Quiz{}).Count(&count)
	assert.Zero(t, count)
}

func TestGenerateQuizGeneratorFailure(t *testing.T) {
	db := openTestDB(t)
	createSubject(t, db, "Mathematics")
	svc := NewQuizService(db, NewSubjectService(db), &fakeGenerator{err: errors.New("timeout")})

	_, err := svc.GenerateQuiz(context.Background(), 1, validInput())
	assert.True(t, IsKind(err, KindTransientUpstream))
}

func TestParseGeneratedQuestions(t *testing.T) {
	t.Run("wrapped object", func(t *testing.T) {
		qs, err := ParseGeneratedQuestions(`{"questions":[{"question":"q","options":["a","b"],"correct_answer":"b"}]}`, 5)
		require.NoError(t, err)
		require.Len(t, qs, 1)
		assert.Equal(t, 1, qs[0].correctIndex)
	})

	t.Run("invalid questions dropped", func(t *testing.T) {
		qs, err := ParseGeneratedQuestions(`[
			{"question":"", "options":["a","b"], "correct_answer":"a"},
			{"question":"q1", "options":["a"], "correct_answer":"a"},
			{"question":"q2", "options":["a","b"], "correct_answer":"c"},
			{"question":"q3", "options":["a","b"], "correct_answer":"a"}
		]`, 5)
		require.NoError(t, err)
		require.Len(t, qs, 1)
		assert.Equal(t, "q3", qs[0].Question)
	})

	t.Run("truncated to limit", func(t *testing.T) {
		qs, err := ParseGeneratedQuestions(generatedReply, 2)
		require.NoError(t, err)
		assert.Len(t, qs, 2)
	})

	t.Run("nothing usable", func(t *testing.T) {
		_, err := ParseGeneratedQuestions(`[{"question":"q","options":["a","b"],"correct_answer":"z"}]`, 5)
		assert.True(t, IsKind(err, KindUpstreamFormat))
	})

	t.Run("json block after another fence", func(t *testing.T) {
		reply := "```python\nprint(1)\n```\n```json\n[{\"question\":\"q\",\"options\":[\"a\",\"b\"],\"correct_answer\":\"a\"}]\n```"
		qs, err := ParseGeneratedQuestions(reply, 5)
		require.NoError(t, err)
		require.Len(t, qs, 1)
		assert.Equal(t, "q", qs[0].Question)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseGeneratedQuestions("```json\nnot json\n```", 5)
		assert.True(t, IsKind(err, KindUpstreamFormat))
	})
}

func TestDistributeMarks(t *testing.T) {
	assert.Equal(t, []int{4, 3, 3}, distributeMarks(10, 3))
	assert.Equal(t, []int{5, 5}, distributeMarks(10, 2))
	assert.Equal(t, []int{}, distributeMarks(10, 0))
}

func TestListQuizzesAndDeactivate(t *testing.T) {
	db := openTestDB(t)
	math := createSubject(t, db, "Mathematics")
	science := createSubject(t, db, "Science")
	q1 := twoQuestionQuiz(t, db, math.ID)
	createQuiz(t, db, science.ID, 9, questionFixture{text: "H2O?", marks: 1, options: []string{"water", "salt"}, correct: 0})

	svc := NewQuizService(db, NewSubjectService(db), nil)
	ctx := context.Background()

	all, err := svc.ListQuizzes(ctx, QuizFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	grade := 9
	byGrade, err := svc.ListQuizzes(ctx, QuizFilter{GradeLevel: &grade})
	require.NoError(t, err)
	require.Len(t, byGrade, 1)
	assert.Equal(t, "Science", byGrade[0].Subject.Name)

	bySubject, err := svc.ListQuizzes(ctx, QuizFilter{Subject: "MATHEMATICS"})
	require.NoError(t, err)
	require.Len(t, bySubject, 1)
	assert.Equal(t, q1.ID, bySubject[0].ID)

	assert.True(t, IsKind(svc.Deactivate(ctx, q1.ID, 999), KindNotFound))
	require.NoError(t, svc.Deactivate(ctx, q1.ID, q1.CreatedBy))

	active, err := svc.ListQuizzes(ctx, QuizFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestGetQuestion(t *testing.T) {
	db := openTestDB(t)
	subject := createSubject(t, db, "Mathematics")
	quiz := twoQuestionQuiz(t, db, subject.ID)
	other := twoQuestionQuiz(t, db, subject.ID)
	svc := NewQuizService(db, NewSubjectService(db), nil)

	q, err := svc.GetQuestion(context.Background(), quiz.ID, quiz.Questions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "2 + 2 = ?", q.Text)

	_, err = svc.GetQuestion(context.Background(), quiz.ID, other.Questions[0].ID)
	assert.True(t, IsKind(err, KindNotFound))
}
