package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
)

// Store is a tenant of the marketplace: one storefront with its own catalog
// configuration, carts, orders, and quotes.
type Store struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Slug         string         `gorm:"column:slug;not null;uniqueIndex:ux_stores_slug"`
	ContactEmail string         `gorm:"column:contact_email;not null"`
	Phone        *string        `gorm:"column:phone"`
	Currency     enums.Currency `gorm:"column:currency;type:text;not null;default:'MXN'"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
