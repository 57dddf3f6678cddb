package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	data, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func TestLeaderboardRanksBestScores(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	math := createSubject(t, db, "Mathematics")
	science := createSubject(t, db, "Science")
	q1 := twoQuestionQuiz(t, db, math.ID)
	q2 := createQuiz(t, db, science.ID, 9, questionFixture{text: "H2O?", marks: 10, options: []string{"water", "salt"}, correct: 0})

	now := time.Now()
	// only alice's best attempt on q1 counts
	completeSubmission(t, db, alice.ID, q1.ID, 1, 5, 50, now)
	completeSubmission(t, db, alice.ID, q1.ID, 2, 10, 100, now)
	completeSubmission(t, db, alice.ID, q2.ID, 1, 5, 50, now)
	completeSubmission(t, db, bob.ID, q1.ID, 1, 10, 100, now)
	completeSubmission(t, db, bob.ID, q2.ID, 1, 5, 50, now)
	completeSubmission(t, db, carol.ID, q1.ID, 1, 5, 50, now)

	svc := NewLeaderboardService(db, newMemoryCache(), time.Minute)
	entries, err := svc.Leaderboard(context.Background(), LeaderboardFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 15, entries[0].TotalScore)
	assert.Equal(t, 2, entries[0].QuizzesTaken)
	assert.Equal(t, 75.0, entries[0].AveragePercentage)

	assert.Equal(t, "bob", entries[1].Username)
	assert.Equal(t, 1, entries[1].Rank, "equal totals share a rank")

	assert.Equal(t, "carol", entries[2].Username)
	assert.Equal(t, 3, entries[2].Rank)
	assert.Equal(t, 5, entries[2].TotalScore)
}

func TestLeaderboardFilters(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	math := createSubject(t, db, "Mathematics")
	science := createSubject(t, db, "Science")
	q1 := twoQuestionQuiz(t, db, math.ID)
	q2 := createQuiz(t, db, science.ID, 9, questionFixture{text: "H2O?", marks: 10, options: []string{"water", "salt"}, correct: 0})

	now := time.Now()
	completeSubmission(t, db, alice.ID, q1.ID, 1, 5, 50, now)
	completeSubmission(t, db, bob.ID, q2.ID, 1, 10, 100, now)

	svc := NewLeaderboardService(db, newMemoryCache(), time.Minute)
	ctx := context.Background()

	byQuiz, err := svc.Leaderboard(ctx, LeaderboardFilter{QuizID: &q1.ID})
	require.NoError(t, err)
	require.Len(t, byQuiz, 1)
	assert.Equal(t, "alice", byQuiz[0].Username)

	byGrade, err := svc.Leaderboard(ctx, LeaderboardFilter{GradeLevel: ptr(9)})
	require.NoError(t, err)
	require.Len(t, byGrade, 1)
	assert.Equal(t, "bob", byGrade[0].Username)

	bySubject, err := svc.Leaderboard(ctx, LeaderboardFilter{Subject: "mathematics"})
	require.NoError(t, err)
	require.Len(t, bySubject, 1)
	assert.Equal(t, "alice", bySubject[0].Username)

	limited, err := svc.Leaderboard(ctx, LeaderboardFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "bob", limited[0].Username)
}

func TestLeaderboardUsesCache(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")
	subject := createSubject(t, db, "Mathematics")
	quiz := twoQuestionQuiz(t, db, subject.ID)
	completeSubmission(t, db, alice.ID, quiz.ID, 1, 5, 50, time.Now())

	c := newMemoryCache()
	svc := NewLeaderboardService(db, c, time.Minute)
	ctx := context.Background()

	first, err := svc.Leaderboard(ctx, LeaderboardFilter{})
	require.NoError(t, err)
	assert.True(t, c.has("leaderboard:limit=10"))

	bob := createUser(t, db, "bob")
	completeSubmission(t, db, bob.ID, quiz.ID, 1, 10, 100, time.Now())

	cached, err := svc.Leaderboard(ctx, LeaderboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	fresh, err := svc.Refresh(ctx, LeaderboardFilter{})
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "bob", fresh[0].Username)
}

func TestLeaderboardEmpty(t *testing.T) {
	db := openTestDB(t)
	svc := NewLeaderboardService(db, newMemoryCache(), time.Minute)

	entries, err := svc.Leaderboard(context.Background(), LeaderboardFilter{})
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
