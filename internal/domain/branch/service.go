// internal/domain/branch/service.go
package branch

import (
	"fmt"

	"gorm.io/gorm"
)

// Service handles branch lookups
type Service struct {
	db *gorm.DB
}

// NewService creates a new branch service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetBranches retrieves all active branches
func (s *Service) GetBranches() ([]Branch, error) {
	var branches []Branch
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&branches).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve branches: %w", err)
	}
	return branches, nil
}

// GetBranch retrieves a single active branch
func (s *Service) GetBranch(id uint) (*Branch, error) {
	var b Branch
	result := s.db.Where("id = ? AND is_active = ?", id, true).First(&b)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("branch not found")
		}
		return nil, fmt.Errorf("failed to retrieve branch: %w", result.Error)
	}
	return &b, nil
}
