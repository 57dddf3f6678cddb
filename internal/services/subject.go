package services

import (
	"context"
	"errors"
	"strings"

	"quiz-ai-backend/internal/models"

	"gorm.io/gorm"
)

type SubjectService struct {
	db *gorm.DB
}

func NewSubjectService(db *gorm.DB) *SubjectService {
	return &SubjectService{db: db}
}

func (s *SubjectService) List(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	err := s.db.WithContext(ctx).Order("name ASC").Find(&subjects).Error
	return subjects, err
}

func (s *SubjectService) Create(ctx context.Context, name, description string) (*models.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("subject name is required")
	}

	subject := models.Subject{Name: name, Description: description}
	if err := s.db.WithContext(ctx).Create(&subject).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(KindConflict, nil, "subject %q already exists", name)
		}
		return nil, err
	}
	return &subject, nil
}

// FindByName resolves a subject case-insensitively.
func (s *SubjectService) FindByName(ctx context.Context, name string) (*models.Subject, error) {
	var subject models.Subject
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		First(&subject).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("subject %q not found", name)
		}
		return nil, err
	}
	return &subject, nil
}

// Delete removes a subject; its quizzes and everything below them go with it
// through the foreign key cascade.
func (s *SubjectService) Delete(ctx context.Context, subjectID uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Subject{}, subjectID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundError("subject not found")
	}
	return nil
}
