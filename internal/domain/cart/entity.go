// internal/domain/cart/entity.go
package cart

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// CartItem represents one line in a user's cart. Identity is the composite
// (user, product, size, customization hash): the same drink with different
// toppings or ice/sweet levels is a separate row, while re-adding an
// identical selection merges into one row.
type CartItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_cart_identity" json:"user_id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_cart_identity" json:"product_id"`
	Size       string    `gorm:"not null;size:1;uniqueIndex:idx_cart_identity" json:"size"`
	CustomHash string    `gorm:"not null;size:40;uniqueIndex:idx_cart_identity" json:"-"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	IceLevel   string    `gorm:"size:20" json:"ice_level"`
	SweetLevel string    `gorm:"size:20" json:"sweet_level"`
	UnitPrice  int64     `gorm:"not null" json:"unit_price"` // Price at time of adding
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Toppings []CartItemTopping `gorm:"foreignKey:CartItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"toppings"`
}

// CartItemTopping is one topping choice on a cart item
type CartItemTopping struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	CartItemID uint `gorm:"not null;index" json:"cart_item_id"`
	ToppingID  uint `gorm:"not null" json:"topping_id"`
	Quantity   int  `gorm:"not null;default:1" json:"quantity"`
}

// TableName overrides
func (CartItem) TableName() string        { return "cart_items" }
func (CartItemTopping) TableName() string { return "cart_item_toppings" }

// ToppingChoice is a topping reference in an add-to-cart request
type ToppingChoice struct {
	ToppingID uint `json:"topping_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CustomizationHash canonicalizes ice level, sweet level and the topping
// set into a stable digest. A positional scan over toppings would treat
// reordered selections as distinct; hashing a sorted encoding does not.
func CustomizationHash(iceLevel, sweetLevel string, toppings []ToppingChoice) string {
	parts := make([]string, 0, len(toppings))
	for _, t := range toppings {
		parts = append(parts, fmt.Sprintf("%d:%d", t.ToppingID, t.Quantity))
	}
	sort.Strings(parts)

	canonical := strings.ToLower(iceLevel) + "|" + strings.ToLower(sweetLevel) + "|" + strings.Join(parts, ",")
	sum := sha1.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
