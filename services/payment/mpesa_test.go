package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"keja/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCreds() Credentials {
	return Credentials{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Shortcode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.com/callback",
		Environment:    "sandbox",
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*DarajaClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewDarajaClient(testCreds(), zap.NewNop())
	client.baseURL = srv.URL
	client.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)
	}
	return client, srv
}

func tokenHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/v1/generate", r.URL.Path)
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))

		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("key:secret"))
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token"})
	}
}

func TestGetAccessToken(t *testing.T) {
	client, _ := newTestClient(t, tokenHandler(t))

	token, err := client.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-token", token)
}

func TestGetAccessTokenMissingCredentials(t *testing.T) {
	client := NewDarajaClient(Credentials{}, zap.NewNop())

	_, err := client.GetAccessToken(context.Background())
	require.Error(t, err)
	assert.IsType(t, GatewayAuthError{}, err)
}

func TestGetAccessTokenRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.GetAccessToken(context.Background())
	require.Error(t, err)
	assert.IsType(t, GatewayAuthError{}, err)
}

func TestInitiatePayment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", tokenHandler(t))
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req models.STKPushRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		// Amount 1500.20 must round UP to integer 1501.
		assert.Equal(t, int64(1501), req.Amount)
		assert.Equal(t, "254712345678", req.PhoneNumber)
		assert.Equal(t, "254712345678", req.PartyA)
		assert.Equal(t, "174379", req.BusinessShortCode)
		assert.Equal(t, "CustomerPayBillOnline", req.TransactionType)
		assert.Equal(t, "20240601123045", req.Timestamp)

		wantPassword := base64.StdEncoding.EncodeToString([]byte("174379" + "passkey" + "20240601123045"))
		assert.Equal(t, wantPassword, req.Password)

		json.NewEncoder(w).Encode(models.STKPushResponse{
			MerchantRequestID: "mr-1",
			CheckoutRequestID: "ws_CO_123",
			ResponseCode:      "0",
			CustomerMessage:   "Success. Request accepted for processing",
		})
	})

	client, _ := newTestClient(t, mux)

	result, err := client.InitiatePayment(context.Background(), "0712345678", 1500.20, "BK-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "ws_CO_123", result.CheckoutRequestID)
	assert.Equal(t, "mr-1", result.MerchantRequestID)
}

func TestInitiatePaymentGatewayRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", tokenHandler(t))
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"errorCode":    "500.001.1001",
			"errorMessage": "Unable to lock subscriber",
		})
	})

	client, _ := newTestClient(t, mux)

	// An expected gateway rejection is not an error, it is Success=false.
	result, err := client.InitiatePayment(context.Background(), "0712345678", 1000, "BK-2")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Unable to lock subscriber", result.Message)
}

func TestQueryStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", tokenHandler(t))
	mux.HandleFunc("/mpesa/stkpushquery/v1/query", func(w http.ResponseWriter, r *http.Request) {
		var req models.STKQueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ws_CO_123", req.CheckoutRequestID)
		assert.Equal(t, "174379", req.BusinessShortCode)

		json.NewEncoder(w).Encode(models.STKQueryResponse{
			ResponseCode:      "0",
			CheckoutRequestID: "ws_CO_123",
			ResultCode:        "0",
			ResultDesc:        "The service request is processed successfully.",
		})
	})

	client, _ := newTestClient(t, mux)

	resp, err := client.QueryStatus(context.Background(), "ws_CO_123")
	require.NoError(t, err)
	assert.Equal(t, "0", resp.ResultCode)
}
