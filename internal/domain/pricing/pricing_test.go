package pricing

import (
	"testing"
	"time"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/coupon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func milkTeaItem() LineItem {
	return LineItem{
		ProductID:   1,
		ProductName: "Tra Sua Tran Chau",
		Size:        "M",
		Quantity:    1,
		PriceBySize: map[string]int64{"S": 25000, "M": 30000, "L": 35000},
		Toppings: []ToppingSelection{
			{ToppingID: 7, Name: "Tran Chau Den", Price: 5000, Quantity: 2},
		},
	}
}

func activeCoupon(amount int64) *coupon.Coupon {
	return &coupon.Coupon{
		Code:           "WELCOME",
		DiscountAmount: amount,
		IsActive:       true,
		ExpiresAt:      now.Add(24 * time.Hour),
	}
}

func TestCompute_SingleItemWithToppings(t *testing.T) {
	// base 30000 + topping 5000 x 2, quantity 1
	quote, err := Compute([]LineItem{milkTeaItem()}, nil, 0, 0, now)
	require.NoError(t, err)

	require.Len(t, quote.Lines, 1)
	assert.Equal(t, int64(30000), quote.Lines[0].UnitPrice)
	assert.Equal(t, int64(10000), quote.Lines[0].ToppingsPrice)
	assert.Equal(t, int64(40000), quote.Lines[0].LineTotal)
	assert.Equal(t, int64(40000), quote.TotalPrice)
	assert.Equal(t, int64(40000), quote.FinalPrice)
}

func TestCompute_QuantityMultipliesLinePrice(t *testing.T) {
	item := milkTeaItem()
	item.Quantity = 3

	quote, err := Compute([]LineItem{item}, nil, 0, 0, now)
	require.NoError(t, err)
	assert.Equal(t, int64(120000), quote.TotalPrice)
}

func TestCompute_CouponAndPointsStack(t *testing.T) {
	// 40000 order, 5000 coupon, 2000 points worth 10000
	quote, err := Compute([]LineItem{milkTeaItem()}, activeCoupon(5000), 2000, 5000, now)
	require.NoError(t, err)

	assert.Equal(t, int64(5000), quote.CouponDiscount)
	assert.Equal(t, int64(10000), quote.PointsDiscount)
	assert.Equal(t, int64(15000), quote.DiscountPrice)
	assert.Equal(t, int64(25000), quote.FinalPrice)
}

func TestCompute_FinalPriceFloorsAtZero(t *testing.T) {
	quote, err := Compute([]LineItem{milkTeaItem()}, activeCoupon(100000), 0, 0, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), quote.FinalPrice)
}

func TestCompute_MissingSizePrice(t *testing.T) {
	item := milkTeaItem()
	item.Size = "XL"

	_, err := Compute([]LineItem{item}, nil, 0, 0, now)
	assert.ErrorIs(t, err, ErrInvalidLineItem)
}

func TestCompute_CorruptToppingPriceIsSkipped(t *testing.T) {
	item := milkTeaItem()
	item.Toppings = append(item.Toppings, ToppingSelection{ToppingID: 9, Name: "Bad", Price: -1, Quantity: 1})

	quote, err := Compute([]LineItem{item}, nil, 0, 0, now)
	require.NoError(t, err)
	// only the valid topping contributes
	assert.Equal(t, int64(40000), quote.TotalPrice)
}

func TestCompute_InactiveCoupon(t *testing.T) {
	cpn := activeCoupon(5000)
	cpn.IsActive = false

	_, err := Compute([]LineItem{milkTeaItem()}, cpn, 0, 0, now)
	assert.ErrorIs(t, err, ErrCouponInvalid)
}

func TestCompute_ExpiredCoupon(t *testing.T) {
	cpn := activeCoupon(5000)
	cpn.ExpiresAt = now.Add(-time.Minute)

	_, err := Compute([]LineItem{milkTeaItem()}, cpn, 0, 0, now)
	assert.ErrorIs(t, err, ErrCouponExpired)
}

func TestCompute_PointsNotMultipleOfBlock(t *testing.T) {
	_, err := Compute([]LineItem{milkTeaItem()}, nil, 1500, 5000, now)
	assert.ErrorIs(t, err, ErrInvalidRedemption)
}

func TestCompute_NegativePoints(t *testing.T) {
	_, err := Compute([]LineItem{milkTeaItem()}, nil, -1000, 5000, now)
	assert.ErrorIs(t, err, ErrInvalidRedemption)
}

func TestCompute_PointsExceedBalance(t *testing.T) {
	_, err := Compute([]LineItem{milkTeaItem()}, nil, 3000, 2000, now)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestCompute_EmptyCart(t *testing.T) {
	_, err := Compute(nil, nil, 0, 0, now)
	assert.Error(t, err)
}

func TestCompute_Deterministic(t *testing.T) {
	items := []LineItem{milkTeaItem()}
	first, err := Compute(items, activeCoupon(5000), 1000, 1000, now)
	require.NoError(t, err)

	second, err := Compute(items, activeCoupon(5000), 1000, 1000, now)
	require.NoError(t, err)
	assert.Equal(t, first.FinalPrice, second.FinalPrice)
	assert.Equal(t, first.TotalPrice, second.TotalPrice)
}
