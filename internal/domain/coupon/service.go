// internal/domain/coupon/service.go
package coupon

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no coupon exists for a code
var ErrNotFound = errors.New("coupon not found")

// Service handles coupon business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new coupon service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetByCode retrieves a coupon by its code (case-insensitive)
func (s *Service) GetByCode(code string) (*Coupon, error) {
	var c Coupon
	result := s.db.Where("UPPER(code) = ?", strings.ToUpper(code)).First(&c)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve coupon: %w", result.Error)
	}
	return &c, nil
}

// CreateCoupon creates a new coupon (admin)
func (s *Service) CreateCoupon(c *Coupon) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" {
		return fmt.Errorf("coupon code is required")
	}
	if c.DiscountAmount <= 0 {
		return fmt.Errorf("discount amount must be positive")
	}
	if err := s.db.Create(c).Error; err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

// DeactivateCoupon disables a coupon without deleting it (admin)
func (s *Service) DeactivateCoupon(id uint) error {
	result := s.db.Model(&Coupon{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCoupons lists all coupons (admin)
func (s *Service) GetCoupons() ([]Coupon, error) {
	var coupons []Coupon
	if err := s.db.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve coupons: %w", err)
	}
	return coupons, nil
}
