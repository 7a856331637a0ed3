// internal/domain/payment/service_test.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/config"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/order"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/pricing"
)

type mockLedger struct {
	mu         sync.Mutex
	existing   map[string]bool
	created    []*order.PaidOrderParams
	existsErr  error
	createErr  error
	nextOrder  uint
	failOnce   bool
	failedOnce bool
}

func newMockLedger() *mockLedger {
	return &mockLedger{existing: map[string]bool{}, nextOrder: 100}
}

func (m *mockLedger) TransactionExists(ctx context.Context, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existing[transactionID], nil
}

func (m *mockLedger) CreatePaidOrder(ctx context.Context, params *order.PaidOrderParams) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.failOnce && !m.failedOnce {
		m.failedOnce = true
		return nil, errors.New("transient database failure")
	}
	m.existing[params.TransactionID] = true
	m.created = append(m.created, params)
	m.nextOrder++
	return &order.Order{ID: m.nextOrder, UserID: params.UserID, FinalPrice: params.FinalPrice}, nil
}

type mockQuoter struct {
	quote *pricing.Quote
	lines []order.LineSnapshot
	err   error
}

func (m *mockQuoter) QuoteCart(ctx context.Context, userID uint, couponCode string, redeemPoints int) (*pricing.Quote, []order.LineSnapshot, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.quote, m.lines, nil
}

type paymentFixture struct {
	service *Service
	ledger  *mockLedger
	quoter  *mockQuoter
	mr      *miniredis.Miniredis
	cfg     config.GatewayConfig
}

func newFixture(t *testing.T, providerHandler http.HandlerFunc) *paymentFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := testGatewayConfig()
	if providerHandler != nil {
		srv := httptest.NewServer(providerHandler)
		t.Cleanup(srv.Close)
		cfg.Endpoint = srv.URL
	}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	ledger := newMockLedger()
	quoter := &mockQuoter{
		quote: &pricing.Quote{
			TotalPrice:   45000,
			FinalPrice:   40000,
			RedeemPoints: 1000,
		},
		lines: []order.LineSnapshot{
			{ProductID: 1, ProductName: "Tra Sua Tran Chau", Size: "M", Quantity: 2, UnitPrice: 20000, Subtotal: 40000},
		},
	}

	adapter := NewAdapter(cfg)
	register := NewRegister(client, cfg.PendingTTL)
	return &paymentFixture{
		service: NewService(adapter, register, ledger, quoter, logger),
		ledger:  ledger,
		quoter:  quoter,
		mr:      mr,
		cfg:     cfg,
	}
}

func acceptingProvider() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ProviderResponse{
			ReturnCode:    1,
			ReturnMessage: "success",
			OrderURL:      "https://pay.example/order/abc",
		})
	}
}

func initiateReq() *InitiateRequest {
	return &InitiateRequest{
		BranchID:     1,
		DeliveryType: order.DeliveryPickup,
		RedeemPoints: 1000,
	}
}

// signedCallback builds a valid provider callback for the fixture's keys
func (f *paymentFixture) signedCallback(t *testing.T, transactionID string, amount int64) *CallbackPayload {
	t.Helper()
	data := CallbackData{
		AppID:      f.cfg.AppID,
		AppTransID: transactionID,
		Amount:     amount,
		ZPTransID:  123456789,
	}
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &CallbackPayload{
		Data: string(raw),
		Type: 1,
		Mac:  signWith(f.cfg.CallbackKey, string(raw)),
	}
}

func TestInitiateRegistersPendingAndReturnsPaymentURL(t *testing.T) {
	f := newFixture(t, acceptingProvider())

	resp, err := f.service.Initiate(context.Background(), 7, initiateReq())
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example/order/abc", resp.PaymentURL)
	assert.Equal(t, int64(40000), resp.Amount)
	assert.NotEmpty(t, resp.TransactionID)
	assert.WithinDuration(t, time.Now().Add(f.cfg.PendingTTL), resp.ExpiresAt, 5*time.Second)

	// Nothing mutated yet
	assert.Empty(t, f.ledger.created)
	assert.True(t, f.mr.Exists(pendingKey(resp.TransactionID)))
}

func TestInitiateCompensatesOnProviderRejection(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ProviderResponse{ReturnCode: -2, ReturnMessage: "invalid app"})
	})

	_, err := f.service.Initiate(context.Background(), 7, initiateReq())
	require.ErrorIs(t, err, ErrGatewayRejected)

	keys := f.mr.Keys()
	assert.Empty(t, keys, "rejected initiation must not leave a pending record")
}

func TestInitiateFailsWhenQuoteFails(t *testing.T) {
	f := newFixture(t, acceptingProvider())
	f.quoter.err = pricing.ErrInsufficientPoints

	_, err := f.service.Initiate(context.Background(), 7, initiateReq())
	assert.ErrorIs(t, err, pricing.ErrInsufficientPoints)
	assert.Empty(t, f.mr.Keys())
}

func TestInitiateRejectsDeliveryWithoutAddress(t *testing.T) {
	called := false
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := initiateReq()
	req.DeliveryType = order.DeliveryShipping
	req.DeliveryAddress = ""

	_, err := f.service.Initiate(context.Background(), 7, req)
	assert.ErrorIs(t, err, order.ErrAddressRequired)

	// Nothing frozen, provider never contacted
	assert.Empty(t, f.mr.Keys())
	assert.False(t, called)
}

func TestInitiateEmbedsBranchAndItems(t *testing.T) {
	var captured GatewayRequest
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(ProviderResponse{ReturnCode: 1, OrderURL: "https://pay.example/order/abc"})
	})

	req := initiateReq()
	req.BranchID = 42

	_, err := f.service.Initiate(context.Background(), 7, req)
	require.NoError(t, err)

	var embed struct {
		BranchID uint `json:"branch_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(captured.EmbedData), &embed))
	assert.Equal(t, uint(42), embed.BranchID)

	var items []itemEntry
	require.NoError(t, json.Unmarshal([]byte(captured.Item), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Tra Sua Tran Chau", items[0].Name)
}

func TestHandleCallbackHappyPath(t *testing.T) {
	f := newFixture(t, acceptingProvider())
	ctx := context.Background()

	resp, err := f.service.Initiate(ctx, 7, initiateReq())
	require.NoError(t, err)

	res := f.service.HandleCallback(ctx, f.signedCallback(t, resp.TransactionID, 40000))
	assert.Equal(t, AckSuccess, res.ReturnCode)

	require.Len(t, f.ledger.created, 1)
	assert.Equal(t, resp.TransactionID, f.ledger.created[0].TransactionID)
	assert.Equal(t, 1000, f.ledger.created[0].RedeemedPoints)

	// Record consumed
	assert.False(t, f.mr.Exists(pendingKey(resp.TransactionID)))
}

func TestHandleCallbackMalformed(t *testing.T) {
	f := newFixture(t, acceptingProvider())
	ctx := context.Background()

	res := f.service.HandleCallback(ctx, nil)
	assert.Equal(t, AckInvalid, res.ReturnCode)

	res = f.service.HandleCallback(ctx, &CallbackPayload{Data: "", Mac: "x"})
	assert.Equal(t, AckInvalid, res.ReturnCode)

	res = f.service.HandleCallback(ctx, &CallbackPayload{Data: "{}", Mac: ""})
	assert.Equal(t, AckInvalid, res.ReturnCode)
}

func TestHandleCallbackRejectsBadMac(t *testing.T) {
	f := newFixture(t, acceptingProvider())
	ctx := context.Background()

	resp, err := f.service.Initiate(ctx, 7, initiateReq())
	require.NoError(t, err)

	payload := f.signedCallback(t, resp.TransactionID, 40000)
	payload.Mac = "deadbeef"

	res := f.service.HandleCallback(ctx, payload)
	assert.Equal(t, AckInvalid, res.ReturnCode)
	assert.Empty(t, f.ledger.created)
	assert.True(t, f.mr.Exists(pendingKey(resp.TransactionID)), "record must survive a forged callback")
}

func TestHandleCallbackDuplicateTransaction(t *testing.T) {
	f := newFixture(t, acceptingProvider())
	ctx := context.Background()

	resp, err := f.service.Initiate(ctx, 7, initiateReq())
	require.NoError(t, err)

	first := f.service.HandleCallback(ctx, f.signedCallback(t, resp.TransactionID, 40000))
	require.Equal(t, AckSuccess, first.ReturnCode)

	second := f.service.HandleCallback(ctx, f.signedCallback(t, resp.TransactionID, 40000))
	assert.Equal(t, AckDuplicate, second.ReturnCode)
	assert.Len(t, f.ledger.created, 1, "replay must not create a second order")
}

func TestHandleCallbackUnknownTransaction(t *testing.T) {
	f := newFixture(t, acceptingProvider())

	res := f.service.HandleCallback(context.Background(), f.signedCallback(t, "240315_ffffffffffff", 40000))
	assert.Equal(t, AckDuplicate, res.ReturnCode)
	assert.Empty(t, f.ledger.created)
}

func TestHandleCallbackExpiredPending(t *testing.T) {
	f := newFixture(t, acceptingProvider())
	ctx := context.Background()

	resp, err := f.service.Initiate(ctx, 7, initiateReq())
	require.NoError(t, err)

	f.mr.FastForward(16 * time.Minute)

	res := f.service.HandleCallback(ctx, f.signedCallback(t, resp.TransactionID, 40000))
	assert.Equal(t, AckDuplicate, res.ReturnCode)
	assert.Empty(t, f.ledger.created)
}

func TestHandleCallbackAmountMismatchLeavesRecord(t *testing.T) {
	f := newFixture(t, acceptingProvider())
	ctx := context.Background()

	resp, err := f.service.Initiate(ctx, 7, initiateReq())
	require.NoError(t, err)

	res := f.service.HandleCallback(ctx, f.signedCallback(t, resp.TransactionID, 1))
	assert.Equal(t, AckInvalid, res.ReturnCode)
	assert.Empty(t, f.ledger.created)

	// The legitimate callback can still reconcile
	assert.True(t, f.mr.Exists(pendingKey(resp.TransactionID)))
	res = f.service.HandleCallback(ctx, f.signedCallback(t, resp.TransactionID, 40000))
	assert.Equal(t, AckSuccess, res.ReturnCode)
	assert.Len(t, f.ledger.created, 1)
}

func TestHandleCallbackRestoresRecordOnOrderFailure(t *testing.T) {
	f := newFixture(t, acceptingProvider())
	ctx := context.Background()

	resp, err := f.service.Initiate(ctx, 7, initiateReq())
	require.NoError(t, err)

	f.ledger.failOnce = true

	res := f.service.HandleCallback(ctx, f.signedCallback(t, resp.TransactionID, 40000))
	assert.Equal(t, AckRetry, res.ReturnCode)
	assert.Empty(t, f.ledger.created)
	assert.True(t, f.mr.Exists(pendingKey(resp.TransactionID)), "record must come back for the provider retry")

	// Provider retry succeeds
	res = f.service.HandleCallback(ctx, f.signedCallback(t, resp.TransactionID, 40000))
	assert.Equal(t, AckSuccess, res.ReturnCode)
	assert.Len(t, f.ledger.created, 1)
}

func TestHandleCallbackIgnoresNonPaymentType(t *testing.T) {
	f := newFixture(t, acceptingProvider())
	ctx := context.Background()

	resp, err := f.service.Initiate(ctx, 7, initiateReq())
	require.NoError(t, err)

	payload := f.signedCallback(t, resp.TransactionID, 40000)
	payload.Type = 3

	res := f.service.HandleCallback(ctx, payload)
	assert.Equal(t, AckSuccess, res.ReturnCode)
	assert.Empty(t, f.ledger.created)
	assert.True(t, f.mr.Exists(pendingKey(resp.TransactionID)))
}
