package repository

import (
	"context"

	"filemart/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	Add(ctx context.Context, item *model.CartItem) error
	Remove(ctx context.Context, email, productID string) error
	List(ctx context.Context, email string) ([]*model.CartItem, error)
	// Clear takes a tx so checkout can clear the cart in the same
	// transaction that writes the ledger rows.
	Clear(ctx context.Context, tx *gorm.DB, email string) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) Add(ctx context.Context, item *model.CartItem) error {
	// One row per (email, product); re-adding is a no-op.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(item).Error
}

func (r *cartRepoImpl) Remove(ctx context.Context, email, productID string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", email).
		Where("product_id = ?", productID).
		Delete(&model.CartItem{}).Error
}

func (r *cartRepoImpl) List(ctx context.Context, email string) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at ASC").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *cartRepoImpl) Clear(ctx context.Context, tx *gorm.DB, email string) error {
	return tx.WithContext(ctx).
		Where("email = ?", email).
		Delete(&model.CartItem{}).Error
}
