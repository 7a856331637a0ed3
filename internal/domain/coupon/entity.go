// internal/domain/coupon/entity.go
package coupon

import "time"

// Coupon represents a fixed-amount discount code. The order flow only ever
// reads coupons; creation and deactivation are admin operations.
type Coupon struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Code           string    `gorm:"uniqueIndex;not null;size:50" json:"code"`
	DiscountAmount int64     `gorm:"not null" json:"discount_amount"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	ExpiresAt      time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// Expired reports whether the coupon is past its expiration instant
func (c *Coupon) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
