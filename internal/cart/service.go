package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmendezdev/partsmarket-backend/pkg/db"
	"github.com/dmendezdev/partsmarket-backend/pkg/db/models"
	"github.com/dmendezdev/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
	"github.com/dmendezdev/partsmarket-backend/pkg/pricing"
	"github.com/dmendezdev/partsmarket-backend/pkg/types"
)

// Service manages the session cart for one storefront.
type Service interface {
	GetOrCreateCart(ctx context.Context, storeID uuid.UUID, sessionID string) (*CartDTO, error)
	UpsertItem(ctx context.Context, storeID uuid.UUID, sessionID string, input UpsertItemInput) (*CartDTO, error)
	SetQuantity(ctx context.Context, storeID uuid.UUID, sessionID, sku string, quantity int) (*CartDTO, error)
	ApplyDiscount(ctx context.Context, storeID uuid.UUID, sessionID, sku string, input DiscountInput) (*CartDTO, error)
	RemoveItem(ctx context.Context, storeID uuid.UUID, sessionID, sku string) (*CartDTO, error)
	Clear(ctx context.Context, storeID uuid.UUID, sessionID string) (*CartDTO, error)
	SetCustomer(ctx context.Context, storeID uuid.UUID, sessionID string, input CustomerInput) (*CartDTO, error)
}

// UpsertItemInput adds quantity of a product; re-adding a SKU merges into the
// existing line.
type UpsertItemInput struct {
	ProductSKU string
	Quantity   int
	ItemNotes  *string
}

// DiscountInput carries exactly one of a percentage or a fixed amount.
type DiscountInput struct {
	Pct    *decimal.Decimal
	Amount *decimal.Decimal
}

// CustomerInput is the checkout contact/delivery snapshot held on the cart.
type CustomerInput struct {
	Name            *string
	Email           *string
	Phone           *string
	DeliveryAddress *types.Address
	Notes           *string
}

type service struct {
	repo         Repository
	storefront   storefrontFinder
	shippingCost decimal.Decimal
}

// NewService constructs a cart service instance. Shipping is a flat rate,
// zero unless configured otherwise.
func NewService(repo Repository, storefront storefrontFinder, shippingCost decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if storefront == nil {
		return nil, fmt.Errorf("storefront finder required")
	}
	if shippingCost.IsNegative() {
		return nil, fmt.Errorf("shipping cost cannot be negative")
	}
	return &service{repo: repo, storefront: storefront, shippingCost: shippingCost}, nil
}

// GetOrCreateCart returns the session's active cart, creating one when none
// exists. A concurrent create loses to the active-cart unique index and
// falls back to the winner's row.
func (s *service) GetOrCreateCart(ctx context.Context, storeID uuid.UUID, sessionID string) (*CartDTO, error) {
	cart, err := s.activeCart(ctx, storeID, sessionID)
	if err == nil {
		return NewCartDTO(cart, s.shippingCost), nil
	}
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) || typed.Code() != pkgerrors.CodeNotFound {
		return nil, err
	}

	created, createErr := s.repo.CreateCart(ctx, &models.CartRecord{
		StoreID:   storeID,
		SessionID: sessionID,
		Status:    enums.CartStatusActive,
	})
	if createErr != nil {
		if db.IsUniqueViolation(createErr, "ux_carts_active_session") {
			existing, findErr := s.activeCart(ctx, storeID, sessionID)
			if findErr != nil {
				return nil, findErr
			}
			return NewCartDTO(existing, s.shippingCost), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "db: insert cart")
	}
	return NewCartDTO(created, s.shippingCost), nil
}

// UpsertItem adds the product to the cart at its current effective price,
// merging quantities when the SKU is already present.
func (s *service) UpsertItem(ctx context.Context, storeID uuid.UUID, sessionID string, input UpsertItemInput) (*CartDTO, error) {
	sku := strings.TrimSpace(input.ProductSKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_sku is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	cart, err := s.activeCart(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}

	row, err := s.storefront.FindStorefrontProduct(ctx, storeID, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not available in store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load storefront product")
	}

	existing := findItem(cart, sku)
	quantity := input.Quantity
	if existing != nil {
		quantity += existing.Quantity
	}
	if quantity > row.Config.StockQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock")
	}

	if existing == nil {
		unit := pricing.EffectivePrice(row.Product.BasePrice, &pricing.Overlay{
			CustomPrice:     row.Config.CustomPrice,
			CustomProfitPct: row.Config.CustomProfitPct,
		})
		line, lineErr := pricing.ComputeLine(unit, quantity, decimal.Zero)
		if lineErr != nil {
			return nil, lineErr
		}
		item := &models.CartItem{
			CartID:             cart.ID,
			ProductSKU:         row.Product.SKU,
			ProductName:        row.Product.Name,
			ProductDescription: row.Product.Description,
			ProductBrand:       row.Product.Brand,
			ProductImage:       row.Product.ImageURL,
			UnitPrice:          line.UnitPrice,
			Quantity:           line.Quantity,
			DiscountPct:        decimal.Zero,
			DiscountAmount:     line.DiscountAmount,
			TaxRate:            line.TaxRate,
			TaxAmount:          line.TaxAmount,
			TotalPrice:         line.TotalPrice,
			ItemNotes:          input.ItemNotes,
		}
		if _, err := s.repo.CreateItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert cart item")
		}
		return s.reload(ctx, cart.ID)
	}

	existing.Quantity = quantity
	if input.ItemNotes != nil {
		existing.ItemNotes = input.ItemNotes
	}
	if err := recomputeItem(existing); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateItem(ctx, existing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
	}
	return s.reload(ctx, cart.ID)
}

// SetQuantity sets the line to an absolute quantity. Zero removes the line;
// setting the current value is a no-op.
func (s *service) SetQuantity(ctx context.Context, storeID uuid.UUID, sessionID, sku string, quantity int) (*CartDTO, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	cart, err := s.activeCart(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}

	item := findItem(cart, strings.TrimSpace(sku))
	if item == nil {
		if quantity == 0 {
			return NewCartDTO(cart, s.shippingCost), nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}

	if quantity == 0 {
		if err := s.repo.DeleteItem(ctx, cart.ID, item.ProductSKU); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart item")
		}
		return s.reload(ctx, cart.ID)
	}
	if quantity == item.Quantity {
		return NewCartDTO(cart, s.shippingCost), nil
	}

	if quantity > item.Quantity {
		row, rowErr := s.storefront.FindStorefrontProduct(ctx, storeID, item.ProductSKU)
		if rowErr != nil {
			if errors.Is(rowErr, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not available in store")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, rowErr, "load storefront product")
		}
		if quantity > row.Config.StockQuantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock")
		}
	}

	item.Quantity = quantity
	if err := recomputeItem(item); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
	}
	return s.reload(ctx, cart.ID)
}

// ApplyDiscount sets the line discount as a percentage or a fixed amount.
func (s *service) ApplyDiscount(ctx context.Context, storeID uuid.UUID, sessionID, sku string, input DiscountInput) (*CartDTO, error) {
	if (input.Pct == nil) == (input.Amount == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of pct or amount is required")
	}

	cart, err := s.activeCart(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}
	item := findItem(cart, strings.TrimSpace(sku))
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}

	if input.Pct != nil {
		line, lineErr := pricing.ComputeLinePct(item.UnitPrice, item.Quantity, *input.Pct)
		if lineErr != nil {
			return nil, lineErr
		}
		item.DiscountPct = *input.Pct
		applyLine(item, line)
	} else {
		line, lineErr := pricing.ComputeLine(item.UnitPrice, item.Quantity, *input.Amount)
		if lineErr != nil {
			return nil, lineErr
		}
		item.DiscountPct = decimal.Zero
		applyLine(item, line)
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
	}
	return s.reload(ctx, cart.ID)
}

// RemoveItem drops the line from the cart.
func (s *service) RemoveItem(ctx context.Context, storeID uuid.UUID, sessionID, sku string) (*CartDTO, error) {
	cart, err := s.activeCart(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, cart.ID, strings.TrimSpace(sku)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart item")
	}
	return s.reload(ctx, cart.ID)
}

// Clear removes every line, keeping the cart and its customer snapshot.
func (s *service) Clear(ctx context.Context, storeID uuid.UUID, sessionID string) (*CartDTO, error) {
	cart, err := s.activeCart(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItems(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
	}
	return s.reload(ctx, cart.ID)
}

// SetCustomer stores contact and delivery details on the cart ahead of
// checkout.
func (s *service) SetCustomer(ctx context.Context, storeID uuid.UUID, sessionID string, input CustomerInput) (*CartDTO, error) {
	if input.DeliveryAddress != nil && !input.DeliveryAddress.Validate() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is incomplete")
	}

	cart, err := s.activeCart(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		cart.CustomerName = input.Name
	}
	if input.Email != nil {
		cart.CustomerEmail = input.Email
	}
	if input.Phone != nil {
		cart.CustomerPhone = input.Phone
	}
	if input.DeliveryAddress != nil {
		cart.DeliveryAddress = input.DeliveryAddress
	}
	if input.Notes != nil {
		cart.Notes = input.Notes
	}

	if err := s.repo.UpdateCart(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart")
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) activeCart(ctx context.Context, storeID uuid.UUID, sessionID string) (*models.CartRecord, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	cart, err := s.repo.FindActiveCart(ctx, storeID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart for session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) reload(ctx context.Context, cartID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindCart(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return NewCartDTO(cart, s.shippingCost), nil
}

func findItem(cart *models.CartRecord, sku string) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ProductSKU == sku {
			return &cart.Items[i]
		}
	}
	return nil
}

// recomputeItem re-derives the line amounts after a quantity change,
// preserving a percentage discount and revalidating a fixed one.
func recomputeItem(item *models.CartItem) error {
	var (
		line pricing.LineAmounts
		err  error
	)
	if item.DiscountPct.IsPositive() {
		line, err = pricing.ComputeLinePct(item.UnitPrice, item.Quantity, item.DiscountPct)
	} else {
		line, err = pricing.ComputeLine(item.UnitPrice, item.Quantity, item.DiscountAmount)
	}
	if err != nil {
		return err
	}
	applyLine(item, line)
	return nil
}

func applyLine(item *models.CartItem, line pricing.LineAmounts) {
	item.DiscountAmount = line.DiscountAmount
	item.TaxRate = line.TaxRate
	item.TaxAmount = line.TaxAmount
	item.TotalPrice = line.TotalPrice
}
