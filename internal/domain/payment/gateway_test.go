// internal/domain/payment/gateway_test.go
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/config"
)

func testGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		AppID:       "2554",
		RequestKey:  "request-key-secret",
		CallbackKey: "callback-key-secret",
		Endpoint:    "https://provider.example/v2/create",
		CallbackURL: "https://api.example/api/v1/order/gateway-callback",
		PendingTTL:  15 * time.Minute,
	}
}

func signWith(key, data string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestNewTransactionIDFormat(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	id := NewTransactionID(now)

	assert.Regexp(t, regexp.MustCompile(`^240315_[0-9a-f]{12}$`), id)

	other := NewTransactionID(now)
	assert.NotEqual(t, id, other)
}

func TestBuildSignedRequestMac(t *testing.T) {
	adapter := NewAdapter(testGatewayConfig())
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	req := adapter.BuildSignedRequest("240315_abc123def456", 42, 40000, `{"branch_id":1}`, `[]`, now)

	require.NotEmpty(t, req.Mac)
	assert.Equal(t, "2554", req.AppID)
	assert.Equal(t, "user_42", req.AppUser)
	assert.Equal(t, int64(40000), req.Amount)
	assert.Equal(t, now.UnixMilli(), req.AppTime)

	base := fmt.Sprintf("%s|%s|%s|%d|%d|%s|%s",
		req.AppID, req.AppTransID, req.AppUser, req.Amount, req.AppTime, req.EmbedData, req.Item)
	assert.Equal(t, signWith("request-key-secret", base), req.Mac)

	// The callback key must never produce the same signature
	assert.NotEqual(t, signWith("callback-key-secret", base), req.Mac)
}

func TestVerifyCallbackAcceptsValidMac(t *testing.T) {
	adapter := NewAdapter(testGatewayConfig())

	data := CallbackData{
		AppID:      "2554",
		AppTransID: "240315_abc123def456",
		AppUser:    "user_42",
		Amount:     40000,
		ZPTransID:  9900011122,
	}
	raw, err := json.Marshal(data)
	require.NoError(t, err)

	payload := &CallbackPayload{
		Data: string(raw),
		Type: 1,
		Mac:  signWith("callback-key-secret", string(raw)),
	}

	decoded, err := adapter.VerifyCallback(payload)
	require.NoError(t, err)
	assert.Equal(t, "240315_abc123def456", decoded.AppTransID)
	assert.Equal(t, int64(40000), decoded.Amount)
}

func TestVerifyCallbackRejectsTampering(t *testing.T) {
	adapter := NewAdapter(testGatewayConfig())

	raw := `{"app_trans_id":"240315_abc123def456","amount":40000}`
	mac := signWith("callback-key-secret", raw)

	tampered := `{"app_trans_id":"240315_abc123def456","amount":1}`
	_, err := adapter.VerifyCallback(&CallbackPayload{Data: tampered, Type: 1, Mac: mac})
	assert.Error(t, err)

	_, err = adapter.VerifyCallback(&CallbackPayload{Data: raw, Type: 1, Mac: "deadbeef"})
	assert.Error(t, err)
}

func TestVerifyCallbackRejectsRequestKeySignature(t *testing.T) {
	adapter := NewAdapter(testGatewayConfig())

	raw := `{"app_trans_id":"240315_abc123def456","amount":40000}`
	payload := &CallbackPayload{
		Data: raw,
		Type: 1,
		Mac:  signWith("request-key-secret", raw),
	}

	_, err := adapter.VerifyCallback(payload)
	assert.Error(t, err)
}

func TestVerifyCallbackRejectsMalformedData(t *testing.T) {
	adapter := NewAdapter(testGatewayConfig())

	raw := `{not json`
	payload := &CallbackPayload{
		Data: raw,
		Type: 1,
		Mac:  signWith("callback-key-secret", raw),
	}

	_, err := adapter.VerifyCallback(payload)
	assert.Error(t, err)
}
