package payment

import (
	"context"
	"fmt"

	"keja/models"
)

// Gateway wraps the mobile-money push-payment provider.
type Gateway interface {
	// GetAccessToken exchanges the consumer credentials for a short-lived
	// bearer token. Tokens are fetched fresh per logical operation; their
	// lifetime is not guaranteed and re-fetching is cheap.
	GetAccessToken(ctx context.Context) (string, error)

	// InitiatePayment pushes a payment prompt to the tenant's phone. Expected
	// gateway rejections come back as Success=false; only unrecoverable local
	// failures return an error.
	InitiatePayment(ctx context.Context, phoneNumber string, amount float64, accountRef string) (*models.STKPushResult, error)

	// QueryStatus polls the gateway's status endpoint for a payment attempt.
	QueryStatus(ctx context.Context, checkoutRequestID string) (*models.STKQueryResponse, error)
}

// GatewayAuthError signals a failed token exchange or missing credentials.
type GatewayAuthError struct {
	Reason string
}

func (e GatewayAuthError) Error() string {
	return "gateway authentication failed: " + e.Reason
}

// GatewayRequestError signals a network-level failure before a gateway
// response was obtained.
type GatewayRequestError struct {
	Op  string
	Err error
}

func (e GatewayRequestError) Error() string {
	return fmt.Sprintf("gateway request failed during %s: %v", e.Op, e.Err)
}

func (e GatewayRequestError) Unwrap() error {
	return e.Err
}
