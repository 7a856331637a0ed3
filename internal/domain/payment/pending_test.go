// internal/domain/payment/pending_test.go
package payment

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/order"
)

func testRegister(t *testing.T) (*Register, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRegister(client, 15*time.Minute), mr
}

func testPending(txID string) *PendingPayment {
	return &PendingPayment{
		TransactionID: txID,
		Amount:        40000,
		Params: &order.PaidOrderParams{
			UserID:        7,
			TransactionID: txID,
			FinalPrice:    40000,
			Lines: []order.LineSnapshot{
				{ProductID: 1, ProductName: "Tra Sua Tran Chau", Size: "M", Quantity: 2, UnitPrice: 20000, Subtotal: 40000},
			},
		},
	}
}

func TestRegisterCreateAndGet(t *testing.T) {
	reg, _ := testRegister(t)
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, testPending("240315_aaa")))

	got, err := reg.Get(ctx, "240315_aaa")
	require.NoError(t, err)
	assert.Equal(t, int64(40000), got.Amount)
	assert.Equal(t, uint(7), got.Params.UserID)
	assert.Len(t, got.Params.Lines, 1)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), got.ExpiresAt, 5*time.Second)
}

func TestRegisterCreateRejectsDuplicate(t *testing.T) {
	reg, _ := testRegister(t)
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, testPending("240315_aaa")))
	err := reg.Create(ctx, testPending("240315_aaa"))
	assert.ErrorIs(t, err, ErrPendingExists)
}

func TestRegisterClaimIsExclusive(t *testing.T) {
	reg, _ := testRegister(t)
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, testPending("240315_aaa")))

	first, err := reg.Claim(ctx, "240315_aaa")
	require.NoError(t, err)
	assert.Equal(t, "240315_aaa", first.TransactionID)

	_, err = reg.Claim(ctx, "240315_aaa")
	assert.ErrorIs(t, err, ErrPendingNotFound)

	_, err = reg.Get(ctx, "240315_aaa")
	assert.ErrorIs(t, err, ErrPendingNotFound)
}

func TestRegisterExpiry(t *testing.T) {
	reg, mr := testRegister(t)
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, testPending("240315_aaa")))

	mr.FastForward(16 * time.Minute)

	_, err := reg.Get(ctx, "240315_aaa")
	assert.ErrorIs(t, err, ErrPendingNotFound)
	_, err = reg.Claim(ctx, "240315_aaa")
	assert.ErrorIs(t, err, ErrPendingNotFound)
}

func TestRegisterRestoreKeepsRemainingTTL(t *testing.T) {
	reg, mr := testRegister(t)
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, testPending("240315_aaa")))

	claimed, err := reg.Claim(ctx, "240315_aaa")
	require.NoError(t, err)

	require.NoError(t, reg.Restore(ctx, claimed))

	got, err := reg.Get(ctx, "240315_aaa")
	require.NoError(t, err)
	assert.Equal(t, claimed.ExpiresAt.Unix(), got.ExpiresAt.Unix())

	ttl := mr.TTL(pendingKey("240315_aaa"))
	assert.LessOrEqual(t, ttl, 15*time.Minute)
	assert.Greater(t, ttl, 14*time.Minute)
}

func TestRegisterRestoreSkipsExpiredRecord(t *testing.T) {
	reg, _ := testRegister(t)
	ctx := context.Background()

	stale := testPending("240315_bbb")
	stale.CreatedAt = time.Now().Add(-20 * time.Minute)
	stale.ExpiresAt = time.Now().Add(-5 * time.Minute)

	require.NoError(t, reg.Restore(ctx, stale))

	_, err := reg.Get(ctx, "240315_bbb")
	assert.ErrorIs(t, err, ErrPendingNotFound)
}

func TestRegisterDelete(t *testing.T) {
	reg, _ := testRegister(t)
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, testPending("240315_ccc")))
	require.NoError(t, reg.Delete(ctx, "240315_ccc"))

	_, err := reg.Get(ctx, "240315_ccc")
	assert.ErrorIs(t, err, ErrPendingNotFound)

	// Deleting a missing key is not an error
	assert.NoError(t, reg.Delete(ctx, "240315_ccc"))
}
