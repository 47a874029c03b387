package repository

import (
	"context"
	"errors"

	"improtango-backend/internal/newsletter/domain"
	"improtango-backend/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormSubscriberRepository struct {
	db *gorm.DB
}

func NewGormSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &gormSubscriberRepository{db: db}
}

func (r *gormSubscriberRepository) Create(ctx context.Context, s *domain.Subscriber) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return database.Conn(ctx, r.db).Create(s).Error
}

func (r *gormSubscriberRepository) FindByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	var s domain.Subscriber
	err := database.Conn(ctx, r.db).Where("email = ?", email).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormSubscriberRepository) Delete(ctx context.Context, id string) error {
	return database.Conn(ctx, r.db).Delete(&domain.Subscriber{}, "id = ?", id).Error
}

func (r *gormSubscriberRepository) List(ctx context.Context) ([]*domain.Subscriber, error) {
	var subs []*domain.Subscriber
	err := database.Conn(ctx, r.db).Order("subscribed_at DESC, id DESC").Find(&subs).Error
	return subs, err
}

func (r *gormSubscriberRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&domain.Subscriber{}).Count(&n).Error
	return n, err
}
