// internal/domain/order/service_test.go
package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/pricing"
)

func TestCreateCODOrderRejectsDeliveryWithoutAddress(t *testing.T) {
	// Fulfillment is checked before any dependency is touched, so a bare
	// service is enough to exercise the guard.
	s := &Service{}

	_, err := s.CreateCODOrder(context.Background(), 7, &CheckoutRequest{
		BranchID:     1,
		DeliveryType: DeliveryShipping,
	})
	assert.ErrorIs(t, err, ErrAddressRequired)
}

func TestOrderFromQuoteStartsUnpaid(t *testing.T) {
	s := &Service{}
	quote := &pricing.Quote{TotalPrice: 40000, FinalPrice: 40000}

	ord := s.orderFromQuote(7, &CheckoutRequest{BranchID: 1, DeliveryType: DeliveryPickup}, quote, nil)

	assert.Equal(t, StatusNew, ord.Status)
	assert.Equal(t, PaymentUnpaid, ord.PaymentStatus)
	assert.Equal(t, 40, ord.EarnedPoints)
}

func TestNewPaidOrderIsConfirmedAndPaid(t *testing.T) {
	ord := newPaidOrder(&PaidOrderParams{
		UserID:        7,
		BranchID:      1,
		TransactionID: "240315_abcdef123456",
		DeliveryType:  DeliveryPickup,
		TotalPrice:    45000,
		FinalPrice:    40000,
		Lines: []LineSnapshot{
			{ProductID: 1, ProductName: "Tra Sua Tran Chau", Size: "M", Quantity: 2, UnitPrice: 20000, Subtotal: 40000},
		},
	})

	assert.Equal(t, StatusConfirmed, ord.Status)
	assert.Equal(t, PaymentGateway, ord.PaymentMethod)
	assert.Equal(t, PaymentPaid, ord.PaymentStatus)
	require.NotNil(t, ord.TransactionID)
	assert.Equal(t, "240315_abcdef123456", *ord.TransactionID)
	assert.Equal(t, 40, ord.EarnedPoints)
	require.Len(t, ord.Items, 1)
}

func TestTransitionColumnsSettleCODOnDelivery(t *testing.T) {
	cod := &Order{Status: StatusShipped, PaymentMethod: PaymentCOD, PaymentStatus: PaymentUnpaid}
	cols := transitionColumns(cod, StatusDelivered)
	assert.Equal(t, StatusDelivered, cols["status"])
	assert.Equal(t, PaymentPaid, cols["payment_status"])

	// Gateway orders are paid up front; delivery must not touch the field.
	paid := &Order{Status: StatusShipped, PaymentMethod: PaymentGateway, PaymentStatus: PaymentPaid}
	cols = transitionColumns(paid, StatusDelivered)
	assert.Equal(t, StatusDelivered, cols["status"])
	assert.NotContains(t, cols, "payment_status")

	// No other transition settles payment.
	cols = transitionColumns(cod, StatusCanceled)
	assert.NotContains(t, cols, "payment_status")
}
