// internal/domain/branch/entity.go
package branch

import "time"

// Branch represents a store location that fulfills pickup and delivery
// orders
type Branch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Address   string    `gorm:"not null;size:500" json:"address"`
	Phone     string    `gorm:"size:20" json:"phone"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Branch) TableName() string {
	return "branches"
}
