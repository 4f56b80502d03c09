package repository

import (
	"context"
	"time"

	"filemart/internal/model"

	"gorm.io/gorm"
)

type DownloadRepository interface {
	Append(ctx context.Context, email, productID string) error
	ListByEmail(ctx context.Context, email string) ([]*model.DownloadEvent, error)
}

type downloadRepoImpl struct {
	db *gorm.DB
}

func NewDownloadRepository(db *gorm.DB) DownloadRepository {
	return &downloadRepoImpl{
		db: db,
	}
}

func (r *downloadRepoImpl) Append(ctx context.Context, email, productID string) error {
	return r.db.WithContext(ctx).Create(&model.DownloadEvent{
		Email:     email,
		ProductID: productID,
		CreatedAt: time.Now(),
	}).Error
}

func (r *downloadRepoImpl) ListByEmail(ctx context.Context, email string) ([]*model.DownloadEvent, error) {
	var events []*model.DownloadEvent
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		Find(&events).Error

	if err != nil {
		return nil, err
	}

	return events, nil
}
