// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/branch"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/cart"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/coupon"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/order"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/product"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/user"
)

// RunMigrations runs database migrations for all domain models
func RunMigrations(db *gorm.DB) error {
	models := []interface{}{
		&user.User{},
		&branch.Branch{},
		&product.Category{},
		&product.Product{},
		&product.ProductPrice{},
		&product.Topping{},
		&coupon.Coupon{},
		&cart.CartItem{},
		&cart.CartItemTopping{},
		&order.Order{},
		&order.OrderItem{},
		&order.OrderItemTopping{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return createIndexes(db)
}

// createIndexes creates indexes AutoMigrate does not cover
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_coupons_active_expiry ON coupons(is_active, expires_at)",
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
