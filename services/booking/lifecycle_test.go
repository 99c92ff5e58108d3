package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingRepo "keja/database/repository/booking"
	"keja/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// --- In-memory fakes ---

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *fakeBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking not found: %w", mongo.ErrNoDocuments)
	}
	clone := *b
	return &clone, nil
}

func (r *fakeBookingRepo) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.CheckoutRequestID == checkoutRequestID {
			clone := *b
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("booking not found: %w", mongo.ErrNoDocuments)
}

func (r *fakeBookingRepo) ListByLandlord(ctx context.Context, landlordID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.LandlordID == landlordID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByTenantEmail(ctx context.Context, email string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.UserEmail == email {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListStalePayments(ctx context.Context, olderThan time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == models.BookingStatusConfirmed &&
			b.PaymentStatus == models.PaymentStatusPending &&
			b.CheckoutRequestID != "" && b.UpdatedAt.Before(olderThan) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) applyFields(b *models.Booking, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "confirmed_at":
			t := v.(time.Time)
			b.ConfirmedAt = &t
		case "rejected_at":
			t := v.(time.Time)
			b.RejectedAt = &t
		case "cancelled_at":
			t := v.(time.Time)
			b.CancelledAt = &t
		case "paid_at":
			t := v.(time.Time)
			b.PaidAt = &t
		case "transaction_id":
			b.TransactionID = v.(string)
		}
	}
	b.UpdatedAt = time.Now()
}

func (r *fakeBookingRepo) UpdateStatusIf(ctx context.Context, id, fromStatus, toStatus string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != fromStatus {
		return bookingRepo.ErrNoMatch
	}
	b.Status = toStatus
	r.applyFields(b, fields)
	return nil
}

func (r *fakeBookingRepo) UpdatePaymentStatusIf(ctx context.Context, id, fromStatus, toStatus string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.PaymentStatus != fromStatus {
		return bookingRepo.ErrNoMatch
	}
	b.PaymentStatus = toStatus
	r.applyFields(b, fields)
	return nil
}

func (r *fakeBookingRepo) SetPaymentSession(ctx context.Context, id, checkoutRequestID, method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNoMatch
	}
	b.CheckoutRequestID = checkoutRequestID
	b.PaymentMethod = method
	b.UpdatedAt = time.Now()
	return nil
}

func (r *fakeBookingRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bookings, id)
	return nil
}

type fakePropertyRepo struct {
	properties map[string]*models.Property
	statCalls  int
}

func (r *fakePropertyRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	p, ok := r.properties[id]
	if !ok {
		return nil, fmt.Errorf("property not found: %w", mongo.ErrNoDocuments)
	}
	clone := *p
	return &clone, nil
}

func (r *fakePropertyRepo) IncrementBookingStats(ctx context.Context, id string, amount float64) error {
	if p, ok := r.properties[id]; ok {
		p.CompletedBookings++
		p.TotalRevenue += amount
	}
	r.statCalls++
	return nil
}

type fakeCommissionRepo struct {
	entries []models.Commission
}

func (r *fakeCommissionRepo) Create(ctx context.Context, entry *models.Commission) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeCommissionRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.Commission, error) {
	for i := range r.entries {
		if r.entries[i].BookingID == bookingID {
			return &r.entries[i], nil
		}
	}
	return nil, fmt.Errorf("commission entry not found: %w", mongo.ErrNoDocuments)
}

func (r *fakeCommissionRepo) ListByLandlord(ctx context.Context, landlordID string) ([]models.Commission, error) {
	return r.entries, nil
}

func (r *fakeCommissionRepo) MonthlySummary(ctx context.Context, landlordID string, year int) ([]models.CommissionSummary, error) {
	return nil, nil
}

func (r *fakeCommissionRepo) MarkRefunded(ctx context.Context, bookingID string) error {
	return nil
}

type stubSubscriptionSvc struct {
	rate float64
}

func (s *stubSubscriptionSvc) GetCommissionRate(ctx context.Context, landlordID string) (float64, error) {
	return s.rate, nil
}

func (s *stubSubscriptionSvc) GetSubscription(ctx context.Context, landlordID string) (*models.Subscription, error) {
	return &models.Subscription{LandlordID: landlordID, Plan: models.PlanFree}, nil
}

func (s *stubSubscriptionSvc) Upgrade(ctx context.Context, landlordID, paymentMethod string) (*models.Subscription, error) {
	s.rate = 5
	return &models.Subscription{LandlordID: landlordID, Plan: models.PlanPremium}, nil
}

func (s *stubSubscriptionSvc) Cancel(ctx context.Context, landlordID string) error {
	return nil
}

type fakeGateway struct {
	initiations int
	lastPhone   string
	lastAmount  float64
	rejectNext  bool
	queryResult string
}

func (g *fakeGateway) GetAccessToken(ctx context.Context) (string, error) {
	return "token", nil
}

func (g *fakeGateway) InitiatePayment(ctx context.Context, phoneNumber string, amount float64, accountRef string) (*models.STKPushResult, error) {
	g.initiations++
	g.lastPhone = phoneNumber
	g.lastAmount = amount
	if g.rejectNext {
		g.rejectNext = false
		return &models.STKPushResult{Success: false, Message: "Unable to lock subscriber"}, nil
	}
	return &models.STKPushResult{
		Success:           true,
		CheckoutRequestID: fmt.Sprintf("ws_CO_%d", g.initiations),
		MerchantRequestID: fmt.Sprintf("mr_%d", g.initiations),
		ResponseCode:      "0",
	}, nil
}

func (g *fakeGateway) QueryStatus(ctx context.Context, checkoutRequestID string) (*models.STKQueryResponse, error) {
	return &models.STKQueryResponse{ResultCode: g.queryResult}, nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []string
}

func (e *recordingEmitter) Emit(ctx context.Context, eventType, recipient string, data map[string]string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, eventType)
}

func (e *recordingEmitter) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

type fakeQueue struct {
	enqueued []string
}

func (q *fakeQueue) EnqueuePaymentInitiation(ctx context.Context, bookingID string) error {
	q.enqueued = append(q.enqueued, bookingID)
	return nil
}

// --- Fixture ---

type fixture struct {
	svc        *DefaultBookingService
	repo       *fakeBookingRepo
	properties *fakePropertyRepo
	ledger     *fakeCommissionRepo
	subs       *stubSubscriptionSvc
	gateway    *fakeGateway
	emitter    *recordingEmitter
	queue      *fakeQueue
}

func newFixture() *fixture {
	f := &fixture{
		repo: newFakeBookingRepo(),
		properties: &fakePropertyRepo{properties: map[string]*models.Property{
			"prop-1": {ID: "prop-1", LandlordID: "landlord-1", Price: 50000, Status: "available"},
			"prop-2": {ID: "prop-2", LandlordID: "landlord-2", Price: 30000, Status: "rented"},
		}},
		ledger:  &fakeCommissionRepo{},
		subs:    &stubSubscriptionSvc{rate: 15},
		gateway: &fakeGateway{queryResult: "0"},
		emitter: &recordingEmitter{},
		queue:   &fakeQueue{},
	}
	f.svc = &DefaultBookingService{
		Repo:            f.repo,
		PropertyRepo:    f.properties,
		CommissionRepo:  f.ledger,
		SubscriptionSvc: f.subs,
		Gateway:         f.gateway,
		Notifier:        f.emitter,
		Queue:           f.queue,
		Logger:          zap.NewNop(),
	}
	return f
}

func validRequest() CreateBookingRequest {
	return CreateBookingRequest{
		PropertyID: "prop-1",
		UserName:   "Jane Wanjiku",
		UserEmail:  "jane@example.com",
		Phone:      "0712345678",
		MoveInDate: "2026-10-01",
	}
}

// --- Tests ---

func TestCreateBooking(t *testing.T) {
	f := newFixture()

	b, err := f.svc.CreateBooking(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.Equal(t, models.PaymentStatusPending, b.PaymentStatus)
	assert.Equal(t, 50000.0, b.MonthlyRent)
	assert.Equal(t, 15.0, b.CommissionRate)
	assert.Equal(t, 7500.0, b.CommissionAmount)
	assert.Equal(t, 42500.0, b.LandlordPayout)
	assert.Equal(t, "landlord-1", b.LandlordID)
	assert.Equal(t, "254712345678", b.Phone)
	assert.Equal(t, 12, b.LeaseDuration)
	assert.Contains(t, f.emitter.all(), models.EventNewBooking)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []func(*CreateBookingRequest){
		func(r *CreateBookingRequest) { r.UserName = "" },
		func(r *CreateBookingRequest) { r.UserEmail = "not-an-email" },
		func(r *CreateBookingRequest) { r.Phone = "12345" },
		func(r *CreateBookingRequest) { r.MoveInDate = "" },
		func(r *CreateBookingRequest) { r.MoveInDate = "01/10/2026" },
	}
	for i, mutate := range cases {
		req := validRequest()
		mutate(&req)
		_, err := f.svc.CreateBooking(ctx, req)
		assert.IsType(t, ValidationError{}, err, "case %d", i)
	}
}

func TestCreateBookingPropertyMissingOrHidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := validRequest()
	req.PropertyID = "nope"
	_, err := f.svc.CreateBooking(ctx, req)
	assert.IsType(t, NotFoundError{}, err)

	req = validRequest()
	req.PropertyID = "prop-2" // not visible
	_, err = f.svc.CreateBooking(ctx, req)
	assert.IsType(t, NotFoundError{}, err)
}

func TestDecideApprove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)

	decided, err := f.svc.Decide(ctx, b.ID, DecisionApprove, "landlord-1")
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusConfirmed, decided.Status)
	assert.NotNil(t, decided.ConfirmedAt)
	assert.Equal(t, []string{b.ID}, f.queue.enqueued)
	assert.Contains(t, f.emitter.all(), models.EventBookingApproved)
}

func TestDecideAuthorization(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, b.ID, DecisionApprove, "landlord-2")
	assert.IsType(t, ForbiddenError{}, err)

	unchanged, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, unchanged.Status)
}

func TestDecideExclusivity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, b.ID, DecisionApprove, "landlord-1")
	require.NoError(t, err)

	// A second decision must fail, not no-op: approval already triggered
	// payment collection.
	_, err = f.svc.Decide(ctx, b.ID, DecisionReject, "landlord-1")
	assert.IsType(t, InvalidStateError{}, err)

	current, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, current.Status)
}

func TestReconcilePaidIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)
	_, err = f.svc.Decide(ctx, b.ID, DecisionApprove, "landlord-1")
	require.NoError(t, err)

	first, err := f.svc.ReconcilePayment(ctx, b.ID, models.PaymentStatusPaid, "RCPT123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, first.PaymentStatus)
	assert.Equal(t, "RCPT123", first.TransactionID)
	require.NotNil(t, first.PaidAt)
	assert.Len(t, f.ledger.entries, 1)
	assert.Equal(t, 7500.0, f.ledger.entries[0].Amount)
	assert.Equal(t, 1, f.properties.statCalls)

	// Duplicate callback delivery: nothing changes.
	second, err := f.svc.ReconcilePayment(ctx, b.ID, models.PaymentStatusPaid, "RCPT999")
	require.NoError(t, err)
	assert.Equal(t, "RCPT123", second.TransactionID)
	assert.Equal(t, first.PaidAt.Unix(), second.PaidAt.Unix())
	assert.Len(t, f.ledger.entries, 1)
	assert.Equal(t, 1, f.properties.statCalls)
}

func TestReconcileFailedAllowsRetry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)
	_, err = f.svc.Decide(ctx, b.ID, DecisionApprove, "landlord-1")
	require.NoError(t, err)

	failed, err := f.svc.ReconcilePayment(ctx, b.ID, models.PaymentStatusFailed, "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, failed.PaymentStatus)
	// The approval stands; only the payment failed.
	assert.Equal(t, models.BookingStatusConfirmed, failed.Status)
	assert.Empty(t, f.ledger.entries)

	// Tenant retry opens a fresh gateway session on the same booking.
	result, err := f.svc.InitiatePayment(ctx, b.ID, "")
	require.NoError(t, err)
	assert.True(t, result.Success)

	current, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, current.PaymentStatus)
	assert.Equal(t, result.CheckoutRequestID, current.CheckoutRequestID)
}

func TestCommissionSnapshotSurvivesUpgrade(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)

	// Landlord upgrades after the booking was created.
	_, err = f.subs.Upgrade(ctx, "landlord-1", "mpesa")
	require.NoError(t, err)

	current, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, current.CommissionRate)
	assert.Equal(t, 7500.0, current.CommissionAmount)

	// A new booking picks up the new rate.
	b2, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 5.0, b2.CommissionRate)
	assert.Equal(t, 2500.0, b2.CommissionAmount)
}

func TestInitiatePaymentRequiresConfirmedBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)

	_, err = f.svc.InitiatePayment(ctx, b.ID, "")
	assert.IsType(t, InvalidStateError{}, err)
}

func TestInitiatePaymentGatewayRejection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)
	_, err = f.svc.Decide(ctx, b.ID, DecisionApprove, "landlord-1")
	require.NoError(t, err)

	f.gateway.rejectNext = true
	result, err := f.svc.InitiatePayment(ctx, b.ID, "")
	require.NoError(t, err)
	assert.False(t, result.Success)

	// Booking stays pending; the tenant may retry.
	current, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, current.PaymentStatus)
}

func TestWaitForPaymentTimeout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)

	_, err = f.svc.WaitForPayment(ctx, b.ID, time.Millisecond, 3)
	require.Error(t, err)
	assert.IsType(t, PaymentTimeoutError{}, err)

	// Timeout must not mutate the booking.
	current, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, current.PaymentStatus)
}

func TestReconcileCallback(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)
	_, err = f.svc.Decide(ctx, b.ID, DecisionApprove, "landlord-1")
	require.NoError(t, err)
	result, err := f.svc.InitiatePayment(ctx, b.ID, "")
	require.NoError(t, err)

	var payload models.STKCallbackPayload
	payload.Body.StkCallback.CheckoutRequestID = result.CheckoutRequestID
	payload.Body.StkCallback.ResultCode = 0
	payload.Body.StkCallback.CallbackMetadata.Item = []models.STKCallbackItem{
		{Name: "MpesaReceiptNumber", Value: "NLJ7RT61SV"},
	}

	reconciled, err := f.svc.ReconcileCallback(ctx, &payload)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, reconciled.PaymentStatus)
	assert.Equal(t, "NLJ7RT61SV", reconciled.TransactionID)
}

func TestReconcileCallbackUnknownBooking(t *testing.T) {
	f := newFixture()

	var payload models.STKCallbackPayload
	payload.Body.StkCallback.CheckoutRequestID = "ws_CO_unknown"
	payload.Body.StkCallback.ResultCode = 0

	_, err := f.svc.ReconcileCallback(context.Background(), &payload)
	assert.IsType(t, NotFoundError{}, err)
}

func TestCancelBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)

	cancelled, err := f.svc.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = f.svc.Decide(ctx, b.ID, DecisionApprove, "landlord-1")
	assert.IsType(t, InvalidStateError{}, err)
}

func TestSweepStalePayments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)
	_, err = f.svc.Decide(ctx, b.ID, DecisionApprove, "landlord-1")
	require.NoError(t, err)
	_, err = f.svc.InitiatePayment(ctx, b.ID, "")
	require.NoError(t, err)

	f.gateway.queryResult = "1032" // user cancelled the prompt
	require.NoError(t, f.svc.SweepStalePayments(ctx, time.Now().Add(time.Minute)))

	current, err := f.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, current.PaymentStatus)
}

func TestEndToEnd(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 15.0, b.CommissionRate)
	assert.Equal(t, 7500.0, b.CommissionAmount)
	assert.Equal(t, 42500.0, b.LandlordPayout)

	_, err = f.svc.Decide(ctx, b.ID, DecisionApprove, "landlord-1")
	require.NoError(t, err)

	result, err := f.svc.InitiatePayment(ctx, b.ID, "")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 50000.0, f.gateway.lastAmount)
	assert.Equal(t, "254712345678", f.gateway.lastPhone)

	final, err := f.svc.ReconcilePayment(ctx, b.ID, models.PaymentStatusPaid, "RCPT1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, final.PaymentStatus)

	require.Len(t, f.ledger.entries, 1)
	assert.Equal(t, 7500.0, f.ledger.entries[0].Amount)
	assert.Equal(t, models.CommissionStatusCollected, f.ledger.entries[0].Status)

	assert.Equal(t, 1, f.properties.properties["prop-1"].CompletedBookings)
	assert.Equal(t, 50000.0, f.properties.properties["prop-1"].TotalRevenue)
}
