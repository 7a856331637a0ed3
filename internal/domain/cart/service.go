// internal/domain/cart/service.go
package cart

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/product"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrProductInactive = errors.New("product is not available")
	ErrInvalidSize     = errors.New("invalid size for product")
	ErrInvalidTopping  = errors.New("invalid or inactive topping")
)

// Service handles cart business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new cart service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// AddItemRequest represents an add-to-cart request
type AddItemRequest struct {
	ProductID  uint            `json:"product_id" binding:"required"`
	Size       string          `json:"size" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required,min=1"`
	IceLevel   string          `json:"ice_level"`
	SweetLevel string          `json:"sweet_level"`
	Toppings   []ToppingChoice `json:"toppings"`
}

// CartLine is a cart item joined with current catalog detail
type CartLine struct {
	Item         CartItem          `json:"item"`
	Product      product.Product   `json:"product"`
	ToppingInfo  []product.Topping `json:"topping_info"`
	LineSubtotal int64             `json:"line_subtotal"`
}

// CartSummary is the full cart view for a user
type CartSummary struct {
	Lines     []CartLine `json:"lines"`
	ItemCount int        `json:"item_count"`
	Subtotal  int64      `json:"subtotal"`
}

// AddItem adds a product selection to the user's cart. Rows are locked per
// user so concurrent adds of the same selection merge instead of violating
// the identity index.
func (s *Service) AddItem(userID uint, req *AddItemRequest) (*CartItem, error) {
	var prod product.Product
	if err := s.db.Preload("Prices").First(&prod, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if !prod.IsActive {
		return nil, ErrProductInactive
	}

	prices := prod.PriceBySize()
	unitPrice, ok := prices[req.Size]
	if !ok {
		return nil, ErrInvalidSize
	}

	if err := s.validateToppings(req.Toppings); err != nil {
		return nil, err
	}

	hash := CustomizationHash(req.IceLevel, req.SweetLevel, req.Toppings)

	var item CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing CartItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND product_id = ? AND size = ? AND custom_hash = ?",
				userID, req.ProductID, req.Size, hash).
			First(&existing).Error
		switch {
		case err == nil:
			existing.Quantity += req.Quantity
			if err := tx.Model(&existing).UpdateColumn("quantity", existing.Quantity).Error; err != nil {
				return fmt.Errorf("failed to merge cart item: %w", err)
			}
			item = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = CartItem{
				UserID:     userID,
				ProductID:  req.ProductID,
				Size:       req.Size,
				CustomHash: hash,
				Quantity:   req.Quantity,
				IceLevel:   req.IceLevel,
				SweetLevel: req.SweetLevel,
				UnitPrice:  unitPrice,
			}
			for _, t := range req.Toppings {
				item.Toppings = append(item.Toppings, CartItemTopping{
					ToppingID: t.ToppingID,
					Quantity:  t.Quantity,
				})
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create cart item: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("failed to read cart: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemQuantity sets the quantity of a cart line. Quantity 0 removes it.
func (s *Service) UpdateItemQuantity(userID, itemID uint, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(userID, itemID)
	}

	result := s.db.Model(&CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		UpdateColumn("quantity", quantity)
	if result.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// RemoveItem deletes one cart line for the user
func (s *Service) RemoveItem(userID, itemID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var item CartItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", itemID, userID).
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to read cart item: %w", err)
		}
		if err := tx.Where("cart_item_id = ?", item.ID).Delete(&CartItemTopping{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart item toppings: %w", err)
		}
		if err := tx.Delete(&item).Error; err != nil {
			return fmt.Errorf("failed to delete cart item: %w", err)
		}
		return nil
	})
}

// Clear removes every cart line for the user
func (s *Service) Clear(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.ClearTx(tx, userID)
	})
}

// ClearTx removes the user's cart inside an existing transaction. Checkout
// paths call this so cart teardown commits together with order creation.
func (s *Service) ClearTx(tx *gorm.DB, userID uint) error {
	var ids []uint
	if err := tx.Model(&CartItem{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("failed to list cart items: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("cart_item_id IN ?", ids).Delete(&CartItemTopping{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart toppings: %w", err)
	}
	if err := tx.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// GetCart returns the user's cart joined with current catalog data
func (s *Service) GetCart(userID uint) (*CartSummary, error) {
	var items []CartItem
	if err := s.db.Preload("Toppings").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	summary := &CartSummary{Lines: make([]CartLine, 0, len(items))}
	for _, item := range items {
		var prod product.Product
		if err := s.db.Preload("Prices").First(&prod, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // product removed from catalog, skip stale line
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}

		line := CartLine{Item: item, Product: prod}
		lineUnit := item.UnitPrice
		for _, ct := range item.Toppings {
			var top product.Topping
			if err := s.db.First(&top, ct.ToppingID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, fmt.Errorf("failed to load topping: %w", err)
			}
			line.ToppingInfo = append(line.ToppingInfo, top)
			lineUnit += top.Price * int64(ct.Quantity)
		}
		line.LineSubtotal = lineUnit * int64(item.Quantity)

		summary.Lines = append(summary.Lines, line)
		summary.ItemCount += item.Quantity
		summary.Subtotal += line.LineSubtotal
	}
	return summary, nil
}

// ItemsForUser returns raw cart rows with toppings preloaded
func (s *Service) ItemsForUser(tx *gorm.DB, userID uint) ([]CartItem, error) {
	var items []CartItem
	if err := tx.Preload("Toppings").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return items, nil
}

func (s *Service) validateToppings(choices []ToppingChoice) error {
	if len(choices) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(choices))
	for _, c := range choices {
		ids = append(ids, c.ToppingID)
	}
	var count int64
	if err := s.db.Model(&product.Topping{}).
		Where("id IN ? AND is_active = ?", ids, true).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to validate toppings: %w", err)
	}
	if count != int64(len(ids)) {
		return ErrInvalidTopping
	}
	return nil
}
