package repository

import (
	"context"
	"time"

	"filemart/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseRepository is the purchase ledger: the only source of truth for
// "has this principal paid for this product".
type PurchaseRepository interface {
	// Record inserts one completed purchase. The (product_id, buy_order)
	// unique index makes the write idempotent per callback: a replay
	// conflicts and created comes back false instead of double-writing.
	Record(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) (created bool, err error)
	HasPurchased(ctx context.Context, email, productID string) (bool, error)
	ListByEmail(ctx context.Context, email string) ([]*model.Purchase, error)
	ExistsForBuyOrder(ctx context.Context, buyOrder string) (bool, error)
	ListAll(ctx context.Context, limit int) ([]*model.Purchase, error)
}

type purchaseRepoImpl struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepoImpl{
		db: db,
	}
}

func (r *purchaseRepoImpl) Record(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) (bool, error) {
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now()
	}

	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "buy_order"}},
			DoNothing: true,
		}).
		Create(purchase)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *purchaseRepoImpl) HasPurchased(ctx context.Context, email, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("email = ?", email).
		Where("product_id = ?", productID).
		Where("status = ?", model.PurchaseCompleted).
		Count(&count).Error

	return count > 0, err
}

func (r *purchaseRepoImpl) ListByEmail(ctx context.Context, email string) ([]*model.Purchase, error) {
	var purchases []*model.Purchase
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Where("status = ?", model.PurchaseCompleted).
		Order("created_at DESC").
		Find(&purchases).Error

	if err != nil {
		return nil, err
	}

	return purchases, nil
}

func (r *purchaseRepoImpl) ExistsForBuyOrder(ctx context.Context, buyOrder string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("buy_order = ?", buyOrder).
		Count(&count).Error

	return count > 0, err
}

func (r *purchaseRepoImpl) ListAll(ctx context.Context, limit int) ([]*model.Purchase, error) {
	var purchases []*model.Purchase
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&purchases).Error

	if err != nil {
		return nil, err
	}

	return purchases, nil
}
