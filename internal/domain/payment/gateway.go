// internal/domain/payment/gateway.go
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/config"
)

// Adapter builds signed create-order requests for the payment provider and
// verifies inbound callbacks. Outbound requests sign with the request key,
// callbacks verify with the callback key; the two are never interchangeable.
type Adapter struct {
	cfg        config.GatewayConfig
	httpClient *http.Client
}

// NewAdapter creates a gateway adapter
func NewAdapter(cfg config.GatewayConfig) *Adapter {
	return &Adapter{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GatewayRequest is the outbound create-order payload. Field names follow
// the provider wire format.
type GatewayRequest struct {
	AppID       string `json:"app_id"`
	AppTransID  string `json:"app_trans_id"`
	AppUser     string `json:"app_user"`
	AppTime     int64  `json:"app_time"`
	Amount      int64  `json:"amount"`
	EmbedData   string `json:"embed_data"`
	Item        string `json:"item"`
	Description string `json:"description"`
	CallbackURL string `json:"callback_url"`
	Mac         string `json:"mac"`
}

// ProviderResponse is the provider's answer to a create-order request
type ProviderResponse struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
	OrderURL      string `json:"order_url"`
	ZPTransToken  string `json:"zp_trans_token"`
}

// Accepted reports whether the provider accepted the create-order request
func (r *ProviderResponse) Accepted() bool {
	return r.ReturnCode == 1
}

// CallbackPayload is the envelope the provider posts to the callback
// endpoint. Data is an opaque JSON string covered by Mac.
type CallbackPayload struct {
	Data string `json:"data"`
	Type int    `json:"type"`
	Mac  string `json:"mac"`
}

// CallbackData is the decoded content of CallbackPayload.Data
type CallbackData struct {
	AppID      string `json:"app_id"`
	AppTransID string `json:"app_trans_id"`
	AppUser    string `json:"app_user"`
	AppTime    int64  `json:"app_time"`
	Amount     int64  `json:"amount"`
	EmbedData  string `json:"embed_data"`
	Item       string `json:"item"`
	ZPTransID  int64  `json:"zp_trans_id"`
	ServerTime int64  `json:"server_time"`
	Channel    int    `json:"channel"`
}

// NewTransactionID mints a provider-format transaction id. The provider
// requires the yymmdd prefix to match its settlement day.
func NewTransactionID(now time.Time) string {
	fragment := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("%s_%s", now.Format("060102"), fragment)
}

// BuildSignedRequest assembles the create-order payload and signs it with
// the request key. The mac covers the provider-mandated field sequence.
func (a *Adapter) BuildSignedRequest(transactionID string, userID uint, amount int64, embedData, item string, now time.Time) *GatewayRequest {
	req := &GatewayRequest{
		AppID:       a.cfg.AppID,
		AppTransID:  transactionID,
		AppUser:     fmt.Sprintf("user_%d", userID),
		AppTime:     now.UnixMilli(),
		Amount:      amount,
		EmbedData:   embedData,
		Item:        item,
		Description: fmt.Sprintf("DrinkUp - Payment for order %s", transactionID),
		CallbackURL: a.cfg.CallbackURL,
	}

	base := fmt.Sprintf("%s|%s|%s|%d|%d|%s|%s",
		req.AppID, req.AppTransID, req.AppUser, req.Amount, req.AppTime, req.EmbedData, req.Item)
	req.Mac = a.sign(a.cfg.RequestKey, base)
	return req
}

// CreateOrder posts the signed request to the provider
func (a *Adapter) CreateOrder(ctx context.Context, req *GatewayRequest) (*ProviderResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var out ProviderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return &out, nil
}

// VerifyCallback checks the callback mac over the raw data string using the
// callback key and decodes the data on success. Comparison is constant
// time.
func (a *Adapter) VerifyCallback(payload *CallbackPayload) (*CallbackData, error) {
	expected := a.sign(a.cfg.CallbackKey, payload.Data)
	if !hmac.Equal([]byte(expected), []byte(payload.Mac)) {
		return nil, fmt.Errorf("callback mac mismatch")
	}

	var data CallbackData
	if err := json.Unmarshal([]byte(payload.Data), &data); err != nil {
		return nil, fmt.Errorf("failed to decode callback data: %w", err)
	}
	return &data, nil
}

func (a *Adapter) sign(key, data string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
