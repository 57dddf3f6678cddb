package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"quiz-ai-backend/internal/cache"
	"quiz-ai-backend/internal/models"

	"gorm.io/gorm"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

type LeaderboardFilter struct {
	QuizID     *uint
	GradeLevel *int
	Subject    string
	Limit      int
}

func (f LeaderboardFilter) cacheKey() string {
	var b strings.Builder
	b.WriteString("leaderboard")
	if f.QuizID != nil {
		fmt.Fprintf(&b, ":quiz=%d", *f.QuizID)
	}
	if f.GradeLevel != nil {
		fmt.Fprintf(&b, ":grade=%d", *f.GradeLevel)
	}
	if f.Subject != "" {
		fmt.Fprintf(&b, ":subject=%s", strings.ToLower(f.Subject))
	}
	fmt.Fprintf(&b, ":limit=%d", f.Limit)
	return b.String()
}

type LeaderboardEntry struct {
	Rank              int     `json:"rank" gorm:"column:ranking"`
	UserID            uint    `json:"user_id"`
	Username          string  `json:"username"`
	QuizzesTaken      int     `json:"quizzes_taken"`
	TotalScore        int     `json:"total_score"`
	AveragePercentage float64 `json:"average_percentage"`
}

type LeaderboardService struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
}

func NewLeaderboardService(db *gorm.DB, c cache.Cache, ttl time.Duration) *LeaderboardService {
	return &LeaderboardService{db: db, cache: c, ttl: ttl}
}

// Leaderboard ranks users by the sum of their best score on each quiz in
// scope. Users with equal totals share a rank.
func (s *LeaderboardService) Leaderboard(ctx context.Context, f LeaderboardFilter) ([]LeaderboardEntry, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultLeaderboardLimit
	}
	if f.Limit > MaxLeaderboardLimit {
		f.Limit = MaxLeaderboardLimit
	}

	var cached []LeaderboardEntry
	found, err := s.cache.Get(ctx, f.cacheKey(), &cached)
	if err != nil {
		log.Printf("leaderboard: cache read failed: %v", err)
	}
	if found {
		return cached, nil
	}
	return s.Refresh(ctx, f)
}

// Refresh recomputes the leaderboard for f and replaces the cached copy.
func (s *LeaderboardService) Refresh(ctx context.Context, f LeaderboardFilter) ([]LeaderboardEntry, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultLeaderboardLimit
	}
	if f.Limit > MaxLeaderboardLimit {
		f.Limit = MaxLeaderboardLimit
	}

	best := s.db.
		Table("submissions").
		Select("submissions.user_id, submissions.quiz_id, MAX(submissions.score) AS best_score, MAX(submissions.percentage) AS best_percentage").
		Joins("JOIN quizzes ON quizzes.id = submissions.quiz_id").
		Where("submissions.status = ?", models.SubmissionStatusCompleted).
		Group("submissions.user_id, submissions.quiz_id")
	if f.QuizID != nil {
		best = best.Where("submissions.quiz_id = ?", *f.QuizID)
	}
	if f.GradeLevel != nil {
		best = best.Where("quizzes.grade_level = ?", *f.GradeLevel)
	}
	if f.Subject != "" {
		best = best.Joins("JOIN subjects ON subjects.id = quizzes.subject_id").
			Where("LOWER(subjects.name) = LOWER(?)", f.Subject)
	}

	entries := []LeaderboardEntry{}
	err := s.db.WithContext(ctx).
		Table("(?) AS best", best).
		Select(`RANK() OVER (ORDER BY SUM(best.best_score) DESC) AS ranking,
			best.user_id, users.username, COUNT(*) AS quizzes_taken,
			SUM(best.best_score) AS total_score, AVG(best.best_percentage) AS average_percentage`).
		Joins("JOIN users ON users.id = best.user_id").
		Group("best.user_id, users.username").
		Order("total_score DESC, users.username ASC").
		Limit(f.Limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].AveragePercentage = roundTo2(entries[i].AveragePercentage)
	}

	if err := s.cache.Set(ctx, f.cacheKey(), entries, s.ttl); err != nil {
		log.Printf("leaderboard: cache write failed: %v", err)
	}
	return entries, nil
}
