package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	"github.com/dmendezdev/partsmarket-backend/pkg/types"
)

// CartRecord is the server-held cart for one storefront session. At most one
// active cart exists per (store, session).
type CartRecord struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID         uuid.UUID        `gorm:"column:store_id;type:uuid;not null;index:ix_carts_store_session"`
	SessionID       string           `gorm:"column:session_id;not null;index:ix_carts_store_session"`
	Status          enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CustomerName    *string          `gorm:"column:customer_name"`
	CustomerEmail   *string          `gorm:"column:customer_email"`
	CustomerPhone   *string          `gorm:"column:customer_phone"`
	DeliveryAddress *types.Address   `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	Notes           *string          `gorm:"column:notes"`
	Items           []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
