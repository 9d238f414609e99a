package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the gorm handle shared by the domain repositories. Embedding
// it keeps context propagation in one place instead of repeating
// WithContext in every query.
type Base struct {
	db *gorm.DB
}

// NewBase wraps a gorm handle; callers pass either the root connection or an
// open transaction.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the handle scoped to the request context.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
