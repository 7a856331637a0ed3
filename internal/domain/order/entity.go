// internal/domain/order/entity.go
package order

import (
	"errors"
	"strings"
	"time"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	StatusNew           OrderStatus = "new"
	StatusProcessing    OrderStatus = "processing"
	StatusConfirmed     OrderStatus = "confirmed"
	StatusShipped       OrderStatus = "shipped"
	StatusDelivered     OrderStatus = "delivered"
	StatusCanceled      OrderStatus = "canceled"
	StatusCancelRequest OrderStatus = "cancel_request"
)

// PaymentMethod identifies how an order is paid
type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "cod"
	PaymentGateway PaymentMethod = "gateway"
)

// PaymentStatus tracks whether the order's money has been collected
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// DeliveryType identifies how the customer receives the order
type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryShipping DeliveryType = "delivery"
)

var (
	ErrIllegalTransition = errors.New("illegal order status transition")
	ErrNotFound          = errors.New("order not found")
	ErrCancelWindow      = errors.New("order can no longer be canceled directly")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrAddressRequired   = errors.New("delivery orders require a delivery address")
)

// ValidateFulfillment rejects checkout intents that cannot be fulfilled.
// Delivery orders must carry a destination address; pickup orders are
// fulfilled at the branch and ignore it. Both checkout paths run this
// before anything is persisted or frozen into a pending payment.
func ValidateFulfillment(deliveryType DeliveryType, deliveryAddress string) error {
	if deliveryType == DeliveryShipping && strings.TrimSpace(deliveryAddress) == "" {
		return ErrAddressRequired
	}
	return nil
}

// statusTransitions is the full map of legal moves. Terminal states map to
// an empty slice so unknown statuses and terminal statuses are
// distinguishable from each other.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusNew:           {StatusProcessing, StatusCanceled},
	StatusProcessing:    {StatusConfirmed, StatusCanceled, StatusCancelRequest},
	StatusConfirmed:     {StatusShipped, StatusCanceled},
	StatusShipped:       {StatusDelivered},
	StatusDelivered:     {},
	StatusCanceled:      {},
	StatusCancelRequest: {StatusCanceled},
}

// CanTransition reports whether moving from one status to another is legal
func CanTransition(from, to OrderStatus) bool {
	allowed, ok := statusTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Valid reports whether the status is a known lifecycle state
func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// Terminal reports whether no further transition is possible
func (s OrderStatus) Terminal() bool {
	allowed, ok := statusTransitions[s]
	return ok && len(allowed) == 0
}

// Order is a placed order with priced snapshot lines
type Order struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	UserID          uint          `gorm:"not null;index" json:"user_id"`
	BranchID        uint          `gorm:"index" json:"branch_id"`
	Status          OrderStatus   `gorm:"not null;default:'new';index" json:"status"`
	PaymentMethod   PaymentMethod `gorm:"not null" json:"payment_method"`
	PaymentStatus   PaymentStatus `gorm:"not null;default:'unpaid'" json:"payment_status"`
	DeliveryType    DeliveryType  `gorm:"not null;default:'pickup'" json:"delivery_type"`
	DeliveryAddress string        `json:"delivery_address"`
	Note            string        `json:"note"`

	// TransactionID is set only for gateway orders and is unique so a
	// replayed payment callback cannot create a second order.
	TransactionID *string `gorm:"uniqueIndex;size:64" json:"transaction_id,omitempty"`

	TotalPrice     int64  `gorm:"not null" json:"total_price"`
	CouponDiscount int64  `gorm:"not null;default:0" json:"coupon_discount"`
	PointsDiscount int64  `gorm:"not null;default:0" json:"points_discount"`
	FinalPrice     int64  `gorm:"not null" json:"final_price"`
	CouponCode     string `gorm:"size:50" json:"coupon_code,omitempty"`
	RedeemedPoints int    `gorm:"not null;default:0" json:"redeemed_points"`
	EarnedPoints   int    `gorm:"not null;default:0" json:"earned_points"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem is a priced snapshot of one cart line at checkout time.
// Catalog edits after checkout never change what an order shows.
type OrderItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderID     uint   `gorm:"not null;index" json:"order_id"`
	ProductID   uint   `gorm:"not null" json:"product_id"`
	ProductName string `gorm:"not null" json:"product_name"`
	Size        string `gorm:"not null;size:1" json:"size"`
	Quantity    int    `gorm:"not null" json:"quantity"`
	UnitPrice   int64  `gorm:"not null" json:"unit_price"`
	IceLevel    string `gorm:"size:20" json:"ice_level"`
	SweetLevel  string `gorm:"size:20" json:"sweet_level"`
	Subtotal    int64  `gorm:"not null" json:"subtotal"`

	Toppings []OrderItemTopping `gorm:"foreignKey:OrderItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"toppings"`
}

// OrderItemTopping is a priced topping snapshot on an order line
type OrderItemTopping struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderItemID uint   `gorm:"not null;index" json:"order_item_id"`
	ToppingID   uint   `gorm:"not null" json:"topping_id"`
	ToppingName string `gorm:"not null" json:"topping_name"`
	Price       int64  `gorm:"not null" json:"price"`
	Quantity    int    `gorm:"not null" json:"quantity"`
}

// TableName overrides
func (Order) TableName() string            { return "orders" }
func (OrderItem) TableName() string        { return "order_items" }
func (OrderItemTopping) TableName() string { return "order_item_toppings" }

// ToppingSnapshot carries a priced topping between quote and persistence
type ToppingSnapshot struct {
	ToppingID   uint   `json:"topping_id"`
	ToppingName string `json:"topping_name"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
}

// LineSnapshot carries a priced line between quote and persistence. Gateway
// checkouts serialize these into the pending payment record so the order
// written at reconciliation matches what was quoted at initiation.
type LineSnapshot struct {
	ProductID   uint              `json:"product_id"`
	ProductName string            `json:"product_name"`
	Size        string            `json:"size"`
	Quantity    int               `json:"quantity"`
	UnitPrice   int64             `json:"unit_price"`
	IceLevel    string            `json:"ice_level"`
	SweetLevel  string            `json:"sweet_level"`
	Subtotal    int64             `json:"subtotal"`
	Toppings    []ToppingSnapshot `json:"toppings,omitempty"`
}

// PaidOrderParams is everything needed to materialize a gateway order once
// its payment is confirmed
type PaidOrderParams struct {
	UserID          uint           `json:"user_id"`
	BranchID        uint           `json:"branch_id"`
	TransactionID   string         `json:"transaction_id"`
	DeliveryType    DeliveryType   `json:"delivery_type"`
	DeliveryAddress string         `json:"delivery_address"`
	Note            string         `json:"note"`
	Lines           []LineSnapshot `json:"lines"`
	TotalPrice      int64          `json:"total_price"`
	CouponDiscount  int64          `json:"coupon_discount"`
	PointsDiscount  int64          `json:"points_discount"`
	FinalPrice      int64          `json:"final_price"`
	CouponCode      string         `json:"coupon_code"`
	RedeemedPoints  int            `json:"redeemed_points"`
}
