// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Cup sizes offered for every drink
const (
	SizeS = "S"
	SizeM = "M"
	SizeL = "L"
)

// Category represents a drink category (coffee, tea, smoothie, ...)
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product represents a drink on the menu. Prices are size-keyed rows so a
// drink can be sold in any subset of S/M/L.
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"size:500" json:"image_url"`
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`
	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Prices []ProductPrice `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"prices"`
}

// ProductPrice is the price of one product in one cup size (VND)
type ProductPrice struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"not null;uniqueIndex:idx_product_size" json:"product_id"`
	Size      string `gorm:"not null;size:1;uniqueIndex:idx_product_size" json:"size"`
	Price     int64  `gorm:"not null" json:"price"`
}

// Topping represents an add-on (pearls, cheese foam, ...) priced per unit
type Topping struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	Price     int64     `gorm:"not null" json:"price"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Category) TableName() string     { return "categories" }
func (Product) TableName() string      { return "products" }
func (ProductPrice) TableName() string { return "product_prices" }
func (Topping) TableName() string      { return "toppings" }

// PriceBySize returns the product's prices keyed by size
func (p *Product) PriceBySize() map[string]int64 {
	prices := make(map[string]int64, len(p.Prices))
	for _, pp := range p.Prices {
		prices[pp.Size] = pp.Price
	}
	return prices
}

// ValidSize reports whether s is a recognized cup size
func ValidSize(s string) bool {
	return s == SizeS || s == SizeM || s == SizeL
}
