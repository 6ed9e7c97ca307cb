package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles the repositories that take part in a transaction.
type Repositories struct {
	Products ProductRepository
	Carts    CartRepository
	Orders   OrderRepository
}

// TxManager runs a function as one all-or-nothing unit against the store.
// The unit is rolled back when fn returns an error.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error
}

// GORMTxManager is a TxManager backed by a database transaction.
type GORMTxManager struct {
	db *gorm.DB
}

// NewGORMTxManager creates a new instance of GORMTxManager.
func NewGORMTxManager(db *gorm.DB) *GORMTxManager {
	return &GORMTxManager{db: db}
}

func (m *GORMTxManager) WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repositories{
			Products: NewGORMProductRepository(tx),
			Carts:    NewGORMCartRepository(tx),
			Orders:   NewGORMOrderRepository(tx),
		})
	})
}
