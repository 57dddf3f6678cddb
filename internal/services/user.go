package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"quiz-ai-backend/internal/cache"
	"quiz-ai-backend/internal/models"

	"gorm.io/gorm"
)

type UserService struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
}

func NewUserService(db *gorm.DB, c cache.Cache, ttl time.Duration) *UserService {
	return &UserService{db: db, cache: c, ttl: ttl}
}

func profileCacheKey(userID uint) string {
	return fmt.Sprintf("user:profile:%d", userID)
}

// GetProfile reads through the cache. Cache failures are logged and fall back
// to the database.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	key := profileCacheKey(userID)

	var cached models.User
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("user: profile cache read failed: %v", err)
	}
	if found {
		return &cached, nil
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("user not found")
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, key, user, s.ttl); err != nil {
		log.Printf("user: profile cache write failed: %v", err)
	}
	return &user, nil
}

type ProfileUpdate struct {
	FullName   *string
	GradeLevel *int
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("user not found")
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}
	if in.GradeLevel != nil {
		updates["grade_level"] = *in.GradeLevel
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
			return nil, err
		}
	}

	if err := s.cache.Delete(ctx, profileCacheKey(userID)); err != nil {
		log.Printf("user: profile cache invalidation failed: %v", err)
	}
	return &user, nil
}
