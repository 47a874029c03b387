package repository

import (
	"context"
	"errors"

	"improtango-backend/internal/contact/domain"
	"improtango-backend/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormSubmissionRepository struct {
	db *gorm.DB
}

func NewGormSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &gormSubmissionRepository{db: db}
}

func (r *gormSubmissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = domain.StatusPending
	}
	return database.Conn(ctx, r.db).Create(s).Error
}

func (r *gormSubmissionRepository) UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus) error {
	return database.Conn(ctx, r.db).Model(&domain.Submission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *gormSubmissionRepository) FindByID(ctx context.Context, id string) (*domain.Submission, error) {
	var s domain.Submission
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormSubmissionRepository) List(ctx context.Context, status *domain.SubmissionStatus, limit, offset int) ([]*domain.Submission, int64, error) {
	var subs []*domain.Submission
	var total int64

	query := database.Conn(ctx, r.db).Model(&domain.Submission{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&subs).Error
	return subs, total, err
}
