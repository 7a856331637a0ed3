// internal/domain/pricing/pricing.go
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/coupon"
)

// Loyalty exchange rate: every 1000 points redeemed knocks 5000 VND off the
// order. Points are only redeemable in whole 1000-point blocks.
const (
	PointsBlock      = 1000
	PointsBlockValue = 5000
)

// Sentinel errors surfaced to checkout callers
var (
	ErrInvalidLineItem    = errors.New("cart item has no price for its size")
	ErrCouponInvalid      = errors.New("coupon is invalid or inactive")
	ErrCouponExpired      = errors.New("coupon has expired")
	ErrInvalidRedemption  = errors.New("points must be a positive multiple of 1000")
	ErrInsufficientPoints = errors.New("not enough points for requested redemption")
)

// LineItem is one cart item with its catalog data already resolved. The
// engine never touches storage; callers hand it a complete snapshot.
type LineItem struct {
	ProductID   uint
	ProductName string
	Size        string
	Quantity    int
	PriceBySize map[string]int64
	IceLevel    string
	SweetLevel  string
	Toppings    []ToppingSelection
}

// ToppingSelection is one topping choice on a line item
type ToppingSelection struct {
	ToppingID uint
	Name      string
	Price     int64
	Quantity  int
}

// PricedLine is the computed price breakdown for one line item
type PricedLine struct {
	ProductID     uint
	ProductName   string
	Size          string
	Quantity      int
	IceLevel      string
	SweetLevel    string
	UnitPrice     int64
	ToppingsPrice int64
	LinePrice     int64
	LineTotal     int64
	Toppings      []ToppingSelection
}

// Quote is the full pricing result for a cart snapshot
type Quote struct {
	Lines          []PricedLine
	TotalPrice     int64
	CouponDiscount int64
	PointsDiscount int64
	DiscountPrice  int64
	FinalPrice     int64
	RedeemPoints   int
	CouponCode     string
}

// Compute prices a cart snapshot. It is deterministic and side-effect free:
// the async payment path trusts the amount frozen at initiation time and
// never re-runs pricing at callback time, so the same inputs must always
// yield the same totals.
func Compute(items []LineItem, cpn *coupon.Coupon, redeemPoints int, pointsBalance int, now time.Time) (*Quote, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("cannot price an empty cart")
	}

	quote := &Quote{
		Lines:        make([]PricedLine, 0, len(items)),
		RedeemPoints: redeemPoints,
	}

	for _, item := range items {
		unitPrice, ok := item.PriceBySize[item.Size]
		if !ok {
			return nil, fmt.Errorf("%w: product %d size %s", ErrInvalidLineItem, item.ProductID, item.Size)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %d quantity %d", ErrInvalidLineItem, item.ProductID, item.Quantity)
		}

		var toppingsPrice int64
		for _, t := range item.Toppings {
			// A corrupt topping price is a data-integrity problem with that
			// topping, not with the order; skip its contribution instead of
			// failing the whole checkout.
			if t.Price < 0 {
				continue
			}
			toppingsPrice += t.Price * int64(t.Quantity)
		}

		linePrice := unitPrice + toppingsPrice
		lineTotal := linePrice * int64(item.Quantity)

		quote.Lines = append(quote.Lines, PricedLine{
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			Size:          item.Size,
			Quantity:      item.Quantity,
			IceLevel:      item.IceLevel,
			SweetLevel:    item.SweetLevel,
			UnitPrice:     unitPrice,
			ToppingsPrice: toppingsPrice,
			LinePrice:     linePrice,
			LineTotal:     lineTotal,
			Toppings:      item.Toppings,
		})
		quote.TotalPrice += lineTotal
	}

	if cpn != nil {
		if !cpn.IsActive {
			return nil, ErrCouponInvalid
		}
		if cpn.Expired(now) {
			return nil, ErrCouponExpired
		}
		quote.CouponDiscount = cpn.DiscountAmount
		quote.CouponCode = cpn.Code
	}

	if redeemPoints != 0 {
		if redeemPoints < 0 || redeemPoints%PointsBlock != 0 {
			return nil, ErrInvalidRedemption
		}
		if redeemPoints > pointsBalance {
			return nil, ErrInsufficientPoints
		}
		quote.PointsDiscount = int64(redeemPoints/PointsBlock) * PointsBlockValue
	}

	quote.DiscountPrice = quote.CouponDiscount + quote.PointsDiscount

	quote.FinalPrice = quote.TotalPrice - quote.DiscountPrice
	if quote.FinalPrice < 0 {
		quote.FinalPrice = 0
	}

	return quote, nil
}
