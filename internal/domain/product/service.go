// internal/domain/product/service.go
package product

import (
	"fmt"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/config"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search"`
}

// ProductListResponse represents a page of products
type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// GetProducts retrieves active products with optional category filter
func (s *Service) GetProducts(req *ProductListRequest) (*ProductListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).
		Preload("Prices").
		Preload("Category").
		Where("is_active = ?", true)

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.Search != "" {
		query = query.Where("name ILIKE ?", "%"+req.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("name").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ProductListResponse{
		Products: products,
		Total:    total,
		Page:     req.Page,
		Limit:    req.Limit,
	}, nil
}

// GetProduct retrieves a single active product with its prices
func (s *Service) GetProduct(id uint) (*Product, error) {
	var prod Product
	result := s.db.Preload("Prices").Preload("Category").
		Where("id = ? AND is_active = ?", id, true).
		First(&prod)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &prod, nil
}

// GetToppings retrieves all active toppings
func (s *Service) GetToppings() ([]Topping, error) {
	var toppings []Topping
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&toppings).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve toppings: %w", err)
	}
	return toppings, nil
}

// GetCategories retrieves all active categories
func (s *Service) GetCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateProduct creates a product with its size prices (admin)
func (s *Service) CreateProduct(prod *Product) error {
	for _, pp := range prod.Prices {
		if !ValidSize(pp.Size) {
			return fmt.Errorf("invalid size %q", pp.Size)
		}
		if pp.Price < 0 {
			return fmt.Errorf("price for size %s cannot be negative", pp.Size)
		}
	}
	if err := s.db.Create(prod).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateProduct applies partial updates to a product (admin)
func (s *Service) UpdateProduct(id uint, updates map[string]interface{}) (*Product, error) {
	var prod Product
	if err := s.db.First(&prod, id).Error; err != nil {
		return nil, fmt.Errorf("product not found")
	}

	if err := s.db.Model(&prod).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.GetProduct(id)
}
