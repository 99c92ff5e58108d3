package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"keja/models"

	"go.uber.org/zap"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	timestampLayout = "20060102150405"
)

// Credentials holds the long-lived Daraja credentials.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
	Environment    string // "sandbox" or "production"
}

// DarajaClient implements Gateway against the Safaricom Daraja API.
type DarajaClient struct {
	httpClient *http.Client
	baseURL    string
	creds      Credentials
	logger     *zap.Logger

	// now is swappable for deterministic signing in tests.
	now func() time.Time
}

// NewDarajaClient constructs a gateway client for the configured environment.
func NewDarajaClient(creds Credentials, logger *zap.Logger) *DarajaClient {
	baseURL := sandboxBaseURL
	if creds.Environment == "production" {
		baseURL = productionBaseURL
	}
	return &DarajaClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		creds:      creds,
		logger:     logger,
		now:        time.Now,
	}
}

// GetAccessToken performs the Basic-auth client-credentials exchange.
func (c *DarajaClient) GetAccessToken(ctx context.Context) (string, error) {
	if c.creds.ConsumerKey == "" || c.creds.ConsumerSecret == "" {
		return "", GatewayAuthError{Reason: "consumer key or secret is not configured"}
	}

	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.creds.ConsumerKey + ":" + c.creds.ConsumerSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", GatewayRequestError{Op: "token exchange", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", GatewayAuthError{Reason: fmt.Sprintf("token endpoint returned %d: %s", resp.StatusCode, string(body))}
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", GatewayAuthError{Reason: fmt.Sprintf("malformed token response: %v", err)}
	}
	if res.AccessToken == "" {
		return "", GatewayAuthError{Reason: "token response contained no access token"}
	}
	return res.AccessToken, nil
}

// InitiatePayment sends an STK push for the given amount and phone number.
// The gateway only accepts integer amounts; fractions round up so the tenant
// is never undercharged.
func (c *DarajaClient) InitiatePayment(ctx context.Context, phoneNumber string, amount float64, accountRef string) (*models.STKPushResult, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	phone := NormalizePhone(phoneNumber)
	timestamp := c.now().Format(timestampLayout)
	body := models.STKPushRequest{
		BusinessShortCode: c.creds.Shortcode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            int64(math.Ceil(amount)),
		PartyA:            phone,
		PartyB:            c.creds.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       c.creds.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   "Rent payment for booking " + accountRef,
	}

	var pushResp models.STKPushResponse
	status, err := c.postJSON(ctx, token, "/mpesa/stkpush/v1/processrequest", body, &pushResp)
	if err != nil {
		return nil, GatewayRequestError{Op: "stk push", Err: err}
	}

	if status < 200 || status >= 300 || pushResp.ResponseCode != "0" {
		message := pushResp.ErrorMessage
		if message == "" {
			message = pushResp.ResponseDescription
		}
		if message == "" {
			message = fmt.Sprintf("gateway returned status %d", status)
		}
		c.logger.Warn("stk push rejected by gateway",
			zap.String("accountRef", accountRef), zap.Int("status", status), zap.String("message", message))
		return &models.STKPushResult{Success: false, Message: message}, nil
	}

	return &models.STKPushResult{
		Success:           true,
		CheckoutRequestID: pushResp.CheckoutRequestID,
		MerchantRequestID: pushResp.MerchantRequestID,
		ResponseCode:      pushResp.ResponseCode,
		CustomerMessage:   pushResp.CustomerMessage,
	}, nil
}

// QueryStatus polls the gateway for the outcome of a payment attempt.
func (c *DarajaClient) QueryStatus(ctx context.Context, checkoutRequestID string) (*models.STKQueryResponse, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.now().Format(timestampLayout)
	body := models.STKQueryRequest{
		BusinessShortCode: c.creds.Shortcode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	var queryResp models.STKQueryResponse
	status, err := c.postJSON(ctx, token, "/mpesa/stkpushquery/v1/query", body, &queryResp)
	if err != nil {
		return nil, GatewayRequestError{Op: "status query", Err: err}
	}
	if status < 200 || status >= 300 {
		return nil, GatewayRequestError{Op: "status query",
			Err: fmt.Errorf("gateway returned status %d", status)}
	}
	return &queryResp, nil
}

// password derives the request signature from shortcode, passkey and timestamp.
func (c *DarajaClient) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString(
		[]byte(c.creds.Shortcode + c.creds.Passkey + timestamp),
	)
}

func (c *DarajaClient) postJSON(ctx context.Context, token, path string, body, out interface{}) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return 0, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	// Decode regardless of status: Daraja returns structured error bodies.
	// A non-JSON error body is tolerated; the caller treats the non-2xx
	// status as the rejection.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp.StatusCode, fmt.Errorf("decode gateway response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
