// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/config"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/cart"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/coupon"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/notification"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/pricing"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/product"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/user"
)

// pointsEarnRate is how many VND of final price earn one loyalty point
const pointsEarnRate = 1000

// Service handles order business logic
type Service struct {
	db      *gorm.DB
	cfg     *config.Config
	carts   *cart.Service
	coupons *coupon.Service
	users   *user.Service
	relay   notification.Relay
	logger  *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, carts *cart.Service, coupons *coupon.Service, users *user.Service, relay notification.Relay, logger *logrus.Logger) *Service {
	if relay == nil {
		relay = notification.NopRelay{}
	}
	return &Service{
		db:      db,
		cfg:     cfg,
		carts:   carts,
		coupons: coupons,
		users:   users,
		relay:   relay,
		logger:  logger,
	}
}

// CheckoutRequest is common to COD checkout and payment initiation
type CheckoutRequest struct {
	BranchID        uint         `json:"branch_id" binding:"required"`
	DeliveryType    DeliveryType `json:"delivery_type" binding:"required,oneof=pickup delivery"`
	DeliveryAddress string       `json:"delivery_address"`
	Note            string       `json:"note"`
	CouponCode      string       `json:"coupon_code"`
	RedeemPoints    int          `json:"redeem_points"`
}

// QuoteCart prices the user's current cart with the requested coupon and
// point redemption. It reads but never mutates state, so both checkout
// paths and the preview endpoint share it.
func (s *Service) QuoteCart(ctx context.Context, userID uint, couponCode string, redeemPoints int) (*pricing.Quote, []LineSnapshot, error) {
	items, err := s.carts.ItemsForUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		return nil, nil, ErrEmptyCart
	}

	lineItems, err := s.buildLineItems(ctx, items)
	if err != nil {
		return nil, nil, err
	}

	var cpn *coupon.Coupon
	if couponCode != "" {
		cpn, err = s.coupons.GetByCode(couponCode)
		if err != nil && !errors.Is(err, coupon.ErrNotFound) {
			return nil, nil, err
		}
	}

	balance := 0
	if redeemPoints > 0 {
		balance, err = s.users.GetPointsBalance(userID)
		if err != nil {
			return nil, nil, err
		}
	}

	quote, err := pricing.Compute(lineItems, cpn, redeemPoints, balance, time.Now())
	if err != nil {
		return nil, nil, err
	}
	if couponCode != "" && cpn == nil {
		return nil, nil, pricing.ErrCouponInvalid
	}

	return quote, snapshotsFromQuote(quote), nil
}

// CreateCODOrder checks out the user's cart as a cash-on-delivery order.
// Order rows, point deduction and cart teardown land in one transaction.
func (s *Service) CreateCODOrder(ctx context.Context, userID uint, req *CheckoutRequest) (*Order, error) {
	if err := ValidateFulfillment(req.DeliveryType, req.DeliveryAddress); err != nil {
		return nil, err
	}

	quote, lines, err := s.QuoteCart(ctx, userID, req.CouponCode, req.RedeemPoints)
	if err != nil {
		return nil, err
	}

	ord := s.orderFromQuote(userID, req, quote, lines)
	ord.PaymentMethod = PaymentCOD

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if quote.RedeemPoints > 0 {
			if err := s.users.ApplyRedemption(tx, userID, quote.RedeemPoints); err != nil {
				return err
			}
		}
		if err := tx.Create(ord).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return s.carts.ClearTx(tx, userID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    ord.ID,
		"user_id":     userID,
		"final_price": ord.FinalPrice,
	}).Info("COD order created")
	return ord, nil
}

// TransactionExists reports whether a gateway transaction already produced
// an order
func (s *Service) TransactionExists(ctx context.Context, transactionID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Order{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check transaction: %w", err)
	}
	return count > 0, nil
}

// CreatePaidOrder materializes a gateway order from a confirmed payment.
// All effects commit together: order rows, point deduction, cart teardown.
// The unique transaction id turns a concurrent duplicate into a constraint
// error instead of a second order.
func (s *Service) CreatePaidOrder(ctx context.Context, params *PaidOrderParams) (*Order, error) {
	ord := newPaidOrder(params)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if params.RedeemedPoints > 0 {
			if err := s.users.ApplyRedemption(tx, params.UserID, params.RedeemedPoints); err != nil {
				return err
			}
		}
		if err := tx.Create(ord).Error; err != nil {
			return fmt.Errorf("failed to create paid order: %w", err)
		}
		return s.carts.ClearTx(tx, params.UserID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":       ord.ID,
		"user_id":        params.UserID,
		"transaction_id": params.TransactionID,
		"final_price":    ord.FinalPrice,
	}).Info("Paid order created")
	return ord, nil
}

// GetOrders returns the user's orders, newest first
func (s *Service) GetOrders(ctx context.Context, userID uint, page, limit int) ([]Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.Preload("Items").Preload("Items.Toppings").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, total, nil
}

// GetOrder returns one order owned by the user
func (s *Service) GetOrder(ctx context.Context, userID, orderID uint) (*Order, error) {
	var ord Order
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Items.Toppings").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&ord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &ord, nil
}

// GetOrderByID returns one order regardless of owner. Admin paths use it.
func (s *Service) GetOrderByID(ctx context.Context, orderID uint) (*Order, error) {
	var ord Order
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Items.Toppings").
		First(&ord, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &ord, nil
}

// ListOrders returns orders across all users with optional status filter.
// Admin paths use it.
func (s *Service) ListOrders(ctx context.Context, status OrderStatus, page, limit int) ([]Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Order{})
	if status != "" {
		if !status.Valid() {
			return nil, 0, fmt.Errorf("unknown order status: %s", status)
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus moves an order along the lifecycle. The transition table is
// enforced under a row lock so concurrent updates cannot race past it.
// Delivered orders credit their earned points in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, to OrderStatus) (*Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("unknown order status: %s", to)
	}

	var ord Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOrder(tx, orderID, &ord); err != nil {
			return err
		}
		if !CanTransition(ord.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, ord.Status, to)
		}
		cols := transitionColumns(&ord, to)
		if err := tx.Model(&ord).UpdateColumns(cols).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if to == StatusCanceled && ord.RedeemedPoints > 0 {
			if err := s.users.RefundPoints(tx, ord.UserID, ord.RedeemedPoints); err != nil {
				return err
			}
		}
		if to == StatusDelivered && ord.EarnedPoints > 0 {
			if err := s.users.RefundPoints(tx, ord.UserID, ord.EarnedPoints); err != nil {
				return err
			}
		}
		ord.Status = to
		if ps, ok := cols["payment_status"]; ok {
			ord.PaymentStatus = ps.(PaymentStatus)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, &ord)
	return &ord, nil
}

// CancelOrder is the customer-facing direct cancel. Only fresh orders
// qualify: status new and created inside the configured cancel window.
// Redeemed points come back in the same transaction.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID uint) (*Order, error) {
	var ord Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUserOrder(tx, userID, orderID, &ord); err != nil {
			return err
		}
		if ord.Status != StatusNew {
			return ErrCancelWindow
		}
		if time.Since(ord.CreatedAt) > s.cfg.Order.CancelWindow {
			return ErrCancelWindow
		}
		if err := tx.Model(&ord).UpdateColumn("status", StatusCanceled).Error; err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		if ord.RedeemedPoints > 0 {
			if err := s.users.RefundPoints(tx, userID, ord.RedeemedPoints); err != nil {
				return err
			}
		}
		ord.Status = StatusCanceled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": ord.ID,
		"user_id":  userID,
	}).Info("Order canceled by customer")
	s.emit(ctx, &ord)
	return &ord, nil
}

// RequestCancellation flags an order for staff review when direct cancel
// is no longer allowed
func (s *Service) RequestCancellation(ctx context.Context, userID, orderID uint) (*Order, error) {
	var ord Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUserOrder(tx, userID, orderID, &ord); err != nil {
			return err
		}
		if !CanTransition(ord.Status, StatusCancelRequest) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, ord.Status, StatusCancelRequest)
		}
		if err := tx.Model(&ord).UpdateColumn("status", StatusCancelRequest).Error; err != nil {
			return fmt.Errorf("failed to request cancellation: %w", err)
		}
		ord.Status = StatusCancelRequest
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, &ord)
	return &ord, nil
}

func (s *Service) emit(ctx context.Context, ord *Order) {
	event := notification.Event{
		OrderID:   ord.ID,
		NewStatus: string(ord.Status),
		Timestamp: time.Now(),
	}
	if err := s.relay.Notify(ctx, ord.UserID, event); err != nil {
		s.logger.WithField("order_id", ord.ID).WithError(err).Warn("Order notification dropped")
	}
}

func lockOrder(tx *gorm.DB, orderID uint, out *Order) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(out, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	return nil
}

func lockUserOrder(tx *gorm.DB, userID, orderID uint, out *Order) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	return nil
}

func (s *Service) buildLineItems(ctx context.Context, items []cart.CartItem) ([]pricing.LineItem, error) {
	lineItems := make([]pricing.LineItem, 0, len(items))
	for _, item := range items {
		var prod product.Product
		if err := s.db.WithContext(ctx).Preload("Prices").First(&prod, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %d no longer exists", pricing.ErrInvalidLineItem, item.ProductID)
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}

		li := pricing.LineItem{
			ProductID:   prod.ID,
			ProductName: prod.Name,
			Size:        item.Size,
			Quantity:    item.Quantity,
			PriceBySize: prod.PriceBySize(),
			IceLevel:    item.IceLevel,
			SweetLevel:  item.SweetLevel,
		}
		for _, ct := range item.Toppings {
			var top product.Topping
			if err := s.db.WithContext(ctx).First(&top, ct.ToppingID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, fmt.Errorf("failed to load topping: %w", err)
			}
			li.Toppings = append(li.Toppings, pricing.ToppingSelection{
				ToppingID: top.ID,
				Name:      top.Name,
				Price:     top.Price,
				Quantity:  ct.Quantity,
			})
		}
		lineItems = append(lineItems, li)
	}
	return lineItems, nil
}

// transitionColumns is the column set a legal transition writes. Delivery
// is the moment a COD courier collects cash, so an unpaid order turns paid
// alongside the status change.
func transitionColumns(ord *Order, to OrderStatus) map[string]interface{} {
	cols := map[string]interface{}{"status": to}
	if to == StatusDelivered && ord.PaymentStatus == PaymentUnpaid {
		cols["payment_status"] = PaymentPaid
	}
	return cols
}

// newPaidOrder builds the order row for a reconciled gateway payment. The
// money is already collected, so it starts out confirmed and paid.
func newPaidOrder(params *PaidOrderParams) *Order {
	txID := params.TransactionID
	return &Order{
		UserID:          params.UserID,
		BranchID:        params.BranchID,
		Status:          StatusConfirmed,
		PaymentMethod:   PaymentGateway,
		PaymentStatus:   PaymentPaid,
		DeliveryType:    params.DeliveryType,
		DeliveryAddress: params.DeliveryAddress,
		Note:            params.Note,
		TransactionID:   &txID,
		TotalPrice:      params.TotalPrice,
		CouponDiscount:  params.CouponDiscount,
		PointsDiscount:  params.PointsDiscount,
		FinalPrice:      params.FinalPrice,
		CouponCode:      params.CouponCode,
		RedeemedPoints:  params.RedeemedPoints,
		EarnedPoints:    int(params.FinalPrice / pointsEarnRate),
		Items:           itemsFromSnapshots(params.Lines),
	}
}

func (s *Service) orderFromQuote(userID uint, req *CheckoutRequest, quote *pricing.Quote, lines []LineSnapshot) *Order {
	return &Order{
		UserID:          userID,
		BranchID:        req.BranchID,
		Status:          StatusNew,
		PaymentStatus:   PaymentUnpaid,
		DeliveryType:    req.DeliveryType,
		DeliveryAddress: req.DeliveryAddress,
		Note:            req.Note,
		TotalPrice:      quote.TotalPrice,
		CouponDiscount:  quote.CouponDiscount,
		PointsDiscount:  quote.PointsDiscount,
		FinalPrice:      quote.FinalPrice,
		CouponCode:      quote.CouponCode,
		RedeemedPoints:  quote.RedeemPoints,
		EarnedPoints:    int(quote.FinalPrice / pointsEarnRate),
		Items:           itemsFromSnapshots(lines),
	}
}

func snapshotsFromQuote(quote *pricing.Quote) []LineSnapshot {
	lines := make([]LineSnapshot, 0, len(quote.Lines))
	for _, pl := range quote.Lines {
		line := LineSnapshot{
			ProductID:   pl.ProductID,
			ProductName: pl.ProductName,
			Size:        pl.Size,
			Quantity:    pl.Quantity,
			UnitPrice:   pl.UnitPrice,
			IceLevel:    pl.IceLevel,
			SweetLevel:  pl.SweetLevel,
			Subtotal:    pl.LineTotal,
		}
		for _, t := range pl.Toppings {
			line.Toppings = append(line.Toppings, ToppingSnapshot{
				ToppingID:   t.ToppingID,
				ToppingName: t.Name,
				Price:       t.Price,
				Quantity:    t.Quantity,
			})
		}
		lines = append(lines, line)
	}
	return lines
}

func itemsFromSnapshots(lines []LineSnapshot) []OrderItem {
	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		item := OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Size:        line.Size,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			IceLevel:    line.IceLevel,
			SweetLevel:  line.SweetLevel,
			Subtotal:    line.Subtotal,
		}
		for _, t := range line.Toppings {
			item.Toppings = append(item.Toppings, OrderItemTopping{
				ToppingID:   t.ToppingID,
				ToppingName: t.ToppingName,
				Price:       t.Price,
				Quantity:    t.Quantity,
			})
		}
		items = append(items, item)
	}
	return items
}
