// internal/domain/payment/pending.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/order"
)

var (
	// ErrPendingNotFound means the record expired, was already claimed, or
	// never existed. Callers cannot distinguish these cases and must not
	// try.
	ErrPendingNotFound = errors.New("pending payment not found")
	// ErrPendingExists means a record with this transaction id is already
	// registered
	ErrPendingExists = errors.New("pending payment already registered")
)

// PendingPayment is the full checkout intent frozen at initiation time.
// Reconciliation materializes the order from this record alone and never
// re-reads the cart.
type PendingPayment struct {
	TransactionID string                 `json:"transaction_id"`
	Amount        int64                  `json:"amount"`
	Params        *order.PaidOrderParams `json:"params"`
	CreatedAt     time.Time              `json:"created_at"`
	ExpiresAt     time.Time              `json:"expires_at"`
}

// Register stores pending payments in Redis keyed by transaction id. The
// TTL bounds how long an unpaid checkout intent survives; claiming is a
// single GETDEL so two concurrent callbacks cannot both win.
type Register struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRegister creates a pending payment register
func NewRegister(client *redis.Client, ttl time.Duration) *Register {
	return &Register{client: client, ttl: ttl}
}

func pendingKey(transactionID string) string {
	return fmt.Sprintf("payment:pending:%s", transactionID)
}

// Create registers a new pending payment with the configured TTL
func (r *Register) Create(ctx context.Context, p *PendingPayment) error {
	now := time.Now()
	p.CreatedAt = now
	p.ExpiresAt = now.Add(r.ttl)

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pending payment: %w", err)
	}

	ok, err := r.client.SetNX(ctx, pendingKey(p.TransactionID), payload, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to register pending payment: %w", err)
	}
	if !ok {
		return ErrPendingExists
	}
	return nil
}

// Get reads a pending payment without claiming it
func (r *Register) Get(ctx context.Context, transactionID string) (*PendingPayment, error) {
	payload, err := r.client.Get(ctx, pendingKey(transactionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPendingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending payment: %w", err)
	}
	return decodePending(payload)
}

// Claim atomically removes and returns the pending payment. Exactly one
// caller can claim a given transaction id.
func (r *Register) Claim(ctx context.Context, transactionID string) (*PendingPayment, error) {
	payload, err := r.client.GetDel(ctx, pendingKey(transactionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPendingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending payment: %w", err)
	}
	return decodePending(payload)
}

// Restore puts a claimed record back with whatever lifetime it had left,
// so a transient reconciliation failure does not consume the payment
// window. An already-expired record stays gone.
func (r *Register) Restore(ctx context.Context, p *PendingPayment) error {
	remaining := time.Until(p.ExpiresAt)
	if remaining <= 0 {
		return nil
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pending payment: %w", err)
	}
	if err := r.client.Set(ctx, pendingKey(p.TransactionID), payload, remaining).Err(); err != nil {
		return fmt.Errorf("failed to restore pending payment: %w", err)
	}
	return nil
}

// Delete removes a pending payment outright. Initiation uses it to undo a
// registration the provider rejected.
func (r *Register) Delete(ctx context.Context, transactionID string) error {
	if err := r.client.Del(ctx, pendingKey(transactionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete pending payment: %w", err)
	}
	return nil
}

func decodePending(payload []byte) (*PendingPayment, error) {
	var p PendingPayment
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode pending payment: %w", err)
	}
	return &p, nil
}
