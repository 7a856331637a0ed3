// internal/domain/payment/service.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/order"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/pricing"
)

// Callback acknowledgment codes, provider wire contract. The provider
// retries on Retry, stops on everything else.
const (
	AckSuccess   = 1
	AckDuplicate = 2
	AckRetry     = 0
	AckInvalid   = -1
)

// callbackTypePaid marks a successful payment notification
const callbackTypePaid = 1

var ErrGatewayRejected = errors.New("payment gateway rejected the order")

// Ledger is the order-side surface the reconciliation path needs. Keeping
// it an interface here avoids an import cycle and lets tests substitute
// the database entirely.
type Ledger interface {
	TransactionExists(ctx context.Context, transactionID string) (bool, error)
	CreatePaidOrder(ctx context.Context, params *order.PaidOrderParams) (*order.Order, error)
}

// Quoter prices a live cart for payment initiation
type Quoter interface {
	QuoteCart(ctx context.Context, userID uint, couponCode string, redeemPoints int) (*pricing.Quote, []order.LineSnapshot, error)
}

// Service coordinates payment initiation and asynchronous reconciliation
type Service struct {
	adapter *Adapter
	pending *Register
	ledger  Ledger
	quoter  Quoter
	logger  *logrus.Logger
}

// NewService creates a payment service
func NewService(adapter *Adapter, pending *Register, ledger Ledger, quoter Quoter, logger *logrus.Logger) *Service {
	return &Service{
		adapter: adapter,
		pending: pending,
		ledger:  ledger,
		quoter:  quoter,
		logger:  logger,
	}
}

// InitiateRequest is a gateway checkout request
type InitiateRequest struct {
	BranchID        uint               `json:"branch_id" binding:"required"`
	DeliveryType    order.DeliveryType `json:"delivery_type" binding:"required,oneof=pickup delivery"`
	DeliveryAddress string             `json:"delivery_address"`
	Note            string             `json:"note"`
	CouponCode      string             `json:"coupon_code"`
	RedeemPoints    int                `json:"redeem_points"`
}

// InitiateResponse is what the client needs to complete payment
type InitiateResponse struct {
	PaymentURL    string    `json:"payment_url"`
	TransactionID string    `json:"transaction_id"`
	Amount        int64     `json:"amount"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// CallbackAck is the envelope returned to the provider
type CallbackAck struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
}

func ack(code int, message string) *CallbackAck {
	return &CallbackAck{ReturnCode: code, ReturnMessage: message}
}

// Initiate prices the live cart, freezes the checkout intent in the
// pending register, and asks the provider for a payment URL. Nothing is
// deducted or cleared here; all mutation waits for the callback.
func (s *Service) Initiate(ctx context.Context, userID uint, req *InitiateRequest) (*InitiateResponse, error) {
	if err := order.ValidateFulfillment(req.DeliveryType, req.DeliveryAddress); err != nil {
		return nil, err
	}

	quote, lines, err := s.quoter.QuoteCart(ctx, userID, req.CouponCode, req.RedeemPoints)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	transactionID := NewTransactionID(now)

	params := &order.PaidOrderParams{
		UserID:          userID,
		BranchID:        req.BranchID,
		TransactionID:   transactionID,
		DeliveryType:    req.DeliveryType,
		DeliveryAddress: req.DeliveryAddress,
		Note:            req.Note,
		Lines:           lines,
		TotalPrice:      quote.TotalPrice,
		CouponDiscount:  quote.CouponDiscount,
		PointsDiscount:  quote.PointsDiscount,
		FinalPrice:      quote.FinalPrice,
		CouponCode:      quote.CouponCode,
		RedeemedPoints:  quote.RedeemPoints,
	}

	record := &PendingPayment{
		TransactionID: transactionID,
		Amount:        quote.FinalPrice,
		Params:        params,
	}
	// Registered before the provider call. A callback racing an
	// in-flight registration would otherwise find nothing to reconcile.
	if err := s.pending.Create(ctx, record); err != nil {
		return nil, err
	}

	embedData, item := encodeCartSummary(params)
	gwReq := s.adapter.BuildSignedRequest(transactionID, userID, quote.FinalPrice, embedData, item, now)

	resp, err := s.adapter.CreateOrder(ctx, gwReq)
	if err != nil {
		s.compensate(ctx, transactionID)
		return nil, err
	}
	if !resp.Accepted() {
		s.compensate(ctx, transactionID)
		s.logger.WithFields(logrus.Fields{
			"transaction_id": transactionID,
			"return_code":    resp.ReturnCode,
			"return_message": resp.ReturnMessage,
		}).Warn("Gateway rejected payment order")
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, resp.ReturnMessage)
	}

	s.logger.WithFields(logrus.Fields{
		"transaction_id": transactionID,
		"user_id":        userID,
		"amount":         quote.FinalPrice,
	}).Info("Payment initiated")

	return &InitiateResponse{
		PaymentURL:    resp.OrderURL,
		TransactionID: transactionID,
		Amount:        quote.FinalPrice,
		ExpiresAt:     record.ExpiresAt,
	}, nil
}

// HandleCallback reconciles a provider payment notification. It always
// produces an acknowledgment; the HTTP layer returns it with status 200
// regardless of outcome. Mutation happens on exactly one code path and
// only after the mac, duplicate, amount and claim gates all pass.
func (s *Service) HandleCallback(ctx context.Context, payload *CallbackPayload) *CallbackAck {
	if payload == nil || payload.Data == "" || payload.Mac == "" {
		return ack(AckInvalid, "malformed callback")
	}

	data, err := s.adapter.VerifyCallback(payload)
	if err != nil {
		s.logger.WithError(err).Warn("Callback verification failed")
		return ack(AckInvalid, "mac verification failed")
	}

	log := s.logger.WithField("transaction_id", data.AppTransID)

	// Type 1 is a successful payment. Anything else is informational and
	// acknowledged so the provider stops resending it.
	if payload.Type != callbackTypePaid {
		log.WithField("type", payload.Type).Info("Ignoring non-payment callback")
		return ack(AckSuccess, "acknowledged")
	}

	exists, err := s.ledger.TransactionExists(ctx, data.AppTransID)
	if err != nil {
		log.WithError(err).Error("Failed to check for existing order")
		return ack(AckRetry, "temporary failure")
	}
	if exists {
		log.Info("Callback for already reconciled transaction")
		return ack(AckDuplicate, "order already created")
	}

	record, err := s.pending.Get(ctx, data.AppTransID)
	if errors.Is(err, ErrPendingNotFound) {
		log.Warn("Callback for unknown or expired transaction")
		return ack(AckDuplicate, "order not found")
	}
	if err != nil {
		log.WithError(err).Error("Failed to read pending payment")
		return ack(AckRetry, "temporary failure")
	}

	// An amount mismatch is not retriable and must not consume the
	// record: the legitimate callback may still arrive.
	if data.Amount != record.Amount {
		log.WithFields(logrus.Fields{
			"expected": record.Amount,
			"got":      data.Amount,
		}).Warn("Callback amount mismatch")
		return ack(AckInvalid, "invalid amount")
	}

	claimed, err := s.pending.Claim(ctx, data.AppTransID)
	if errors.Is(err, ErrPendingNotFound) {
		log.Info("Pending payment claimed by concurrent callback")
		return ack(AckDuplicate, "order already created")
	}
	if err != nil {
		log.WithError(err).Error("Failed to claim pending payment")
		return ack(AckRetry, "temporary failure")
	}

	ord, err := s.ledger.CreatePaidOrder(ctx, claimed.Params)
	if err != nil {
		log.WithError(err).Error("Failed to create paid order")
		if restoreErr := s.pending.Restore(ctx, claimed); restoreErr != nil {
			log.WithError(restoreErr).Error("Failed to restore pending payment")
		}
		return ack(AckRetry, "order creation failed")
	}

	log.WithField("order_id", ord.ID).Info("Payment reconciled")
	return ack(AckSuccess, "success")
}

// compensate removes a pending record whose provider call failed. Losing
// the delete is tolerable, the TTL reaps it.
func (s *Service) compensate(ctx context.Context, transactionID string) {
	if err := s.pending.Delete(ctx, transactionID); err != nil {
		s.logger.WithField("transaction_id", transactionID).
			WithError(err).Warn("Failed to delete pending payment after gateway rejection")
	}
}

type embedPayload struct {
	BranchID uint `json:"branch_id"`
}

type itemEntry struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

func encodeCartSummary(params *order.PaidOrderParams) (string, string) {
	items := make([]itemEntry, 0, len(params.Lines))
	for _, l := range params.Lines {
		items = append(items, itemEntry{Name: l.ProductName, Quantity: l.Quantity, Price: l.Subtotal})
	}
	itemJSON, _ := json.Marshal(items)
	embedJSON, _ := json.Marshal(embedPayload{BranchID: params.BranchID})
	return string(embedJSON), string(itemJSON)
}
