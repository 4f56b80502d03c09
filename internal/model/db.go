package model

import "time"

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "PENDING"
	PurchaseCompleted PurchaseStatus = "COMPLETED"
	PurchaseFailed    PurchaseStatus = "FAILED"
)

type Product struct {
	ID          string `gorm:"primaryKey;size:64;not null"` // product sku
	Name        string `gorm:"size:128;not null"`
	Description string `gorm:"size:512"`
	Price       int64  `gorm:"not null"` // CLP, no minor units
	Currency    string `gorm:"size:8;not null"`
	StoragePath string `gorm:"size:256;not null"` // object key of the purchasable file
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Purchase is the ledger row gating downloads. The (product_id, buy_order)
// unique index is what absorbs replayed gateway callbacks: a second commit
// for the same buyOrder conflicts instead of double-writing.
type Purchase struct {
	ID        uint           `gorm:"primaryKey"`
	ProductID string         `gorm:"size:64;uniqueIndex:idx_product_buy_order;not null"`
	BuyOrder  string         `gorm:"size:64;uniqueIndex:idx_product_buy_order;not null"`
	Email     string         `gorm:"size:128;index;not null"`
	Amount    int64          `gorm:"not null"` // unit price actually paid, CLP
	Status    PurchaseStatus `gorm:"size:16;index;not null"`
	CreatedAt time.Time
}

type CartItem struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"size:128;uniqueIndex:idx_cart_email_product;not null"` // user email or guest:<id>
	ProductID string `gorm:"size:64;uniqueIndex:idx_cart_email_product;not null"`
	CreatedAt time.Time
}

type User struct {
	Email        string `gorm:"primaryKey;size:128;not null"`
	Name         string `gorm:"size:128"`
	PasswordHash string `gorm:"size:128;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Admin struct {
	Email        string `gorm:"primaryKey;size:128;not null"`
	Name         string `gorm:"size:128"`
	PasswordHash string `gorm:"size:128;not null"`
	CreatedAt    time.Time
}

// DownloadEvent is best-effort audit history; writes never block a download.
type DownloadEvent struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"size:128;index;not null"`
	ProductID string `gorm:"size:64;index;not null"`
	CreatedAt time.Time
}
