package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/security"
	"buyback-backend/internal/service"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) Submit(ctx context.Context, in service.SubmitOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderService) List(ctx context.Context, status domain.Status, page, pageSize int) ([]domain.Order, error) {
	args := m.Called(ctx, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderService) Transition(ctx context.Context, id string, target domain.Status, actor, note string) (*domain.Order, error) {
	args := m.Called(ctx, id, target, actor, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderService) Cancel(ctx context.Context, id, actor, reason string) (*domain.Order, error) {
	args := m.Called(ctx, id, actor, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderService) ManualFulfill(ctx context.Context, id, actor string) (*domain.Order, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderService) UpdateShippingInfo(ctx context.Context, id string, info domain.ShippingInfo) (*domain.Order, error) {
	args := m.Called(ctx, id, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderService) HandleTrackingEvent(ctx context.Context, trackingNumber, carrierStatus string) (*domain.Order, error) {
	args := m.Called(ctx, trackingNumber, carrierStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type mockLabelService struct {
	mock.Mock
}

func (m *mockLabelService) GenerateShippingLabel(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockLabelService) GenerateReturnLabel(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockLabelService) MarkKitSent(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockLabelService) RequestVoid(ctx context.Context, orderID string, keys []domain.LabelKey, actor string) (*domain.Order, []domain.VoidResult, error) {
	args := m.Called(ctx, orderID, keys, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Order), args.Get(1).([]domain.VoidResult), args.Error(2)
}

const testSecret = "0123456789abcdef0123456789abcdef"

func testRouter(orders *mockOrderService, labels *mockLabelService) (http.Handler, security.TokenManager) {
	tokens := security.NewTokenManager(testSecret, "buyback-test")
	h := NewHandler(orders, nil, labels, nil)
	return NewRouter(h, tokens), tokens
}

func adminToken(t *testing.T, tokens security.TokenManager) string {
	t.Helper()
	token, err := tokens.GenerateToken("ops@example.com", security.RoleAdmin, time.Hour)
	require.NoError(t, err)
	return token
}

func sampleOrder() *domain.Order {
	return domain.NewOrder("iPhone 13", "128GB", "Verizon", 450,
		domain.ShippingPreferenceEmailLabel,
		domain.ShippingInfo{Name: "Jamie Doe", Email: "jamie@example.com", Address1: "1 Main St", Zip: "78701"},
		"paypal", nil, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
}

func TestSubmitOrder(t *testing.T) {
	o := sampleOrder()
	orders := new(mockOrderService)
	orders.On("Submit", mock.Anything, mock.AnythingOfType("service.SubmitOrderInput")).Return(o, nil)
	router, _ := testRouter(orders, nil)

	body, _ := json.Marshal(submitOrderRequest{
		Device:             "iPhone 13",
		Storage:            "128GB",
		EstimatedQuote:     450,
		ShippingPreference: domain.ShippingPreferenceEmailLabel,
		ShippingInfo:       o.ShippingInfo,
	})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, domain.StatusOrderPending, got.Status)
}

func TestSubmitOrder_MalformedBody(t *testing.T) {
	router, _ := testRouter(new(mockOrderService), nil)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "invalid request body")
	// The decode failure itself is part of the message, not swallowed.
	assert.Greater(t, len(resp.Error), len("validation error: invalid request body"))
}

func TestGetOrder_NotFound(t *testing.T) {
	orders := new(mockOrderService)
	orders.On("Get", mock.Anything, "missing").Return(nil, fmt.Errorf("%w: order missing", domain.ErrNotFound))
	router, _ := testRouter(orders, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransition_InvalidTransitionMapsTo409(t *testing.T) {
	orders := new(mockOrderService)
	orders.On("Transition", mock.Anything, "o1", domain.StatusCompleted, "ops@example.com", "").
		Return(nil, fmt.Errorf("%w: order_pending -> completed", domain.ErrInvalidTransition))
	router, tokens := testRouter(orders, nil)

	body, _ := json.Marshal(transitionRequest{Status: domain.StatusCompleted})
	req := httptest.NewRequest(http.MethodPost, "/orders/o1/status", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+adminToken(t, tokens))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminRoute_RequiresToken(t *testing.T) {
	router, tokens := testRouter(new(mockOrderService), nil)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A valid token with the wrong role is forbidden, not unauthorized.
	customerToken, err := tokens.GenerateToken("jamie@example.com", security.RoleCustomer, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// Per-label void outcomes come back as 200 with a results array even when
// some labels are denied.
func TestVoidLabel_ResponseShape(t *testing.T) {
	o := sampleOrder()
	labels := new(mockLabelService)
	labels.On("RequestVoid", mock.Anything, o.ID,
		[]domain.LabelKey{domain.LabelKeyPrimary, domain.LabelKeyReturn}, "ops@example.com").
		Return(o, []domain.VoidResult{
			{Key: domain.LabelKeyPrimary, Approved: true, Message: "void accepted"},
			{Key: domain.LabelKeyReturn, Approved: false, Message: "label already in use"},
		}, nil)
	router, tokens := testRouter(new(mockOrderService), labels)

	body, _ := json.Marshal(voidLabelRequest{Keys: []domain.LabelKey{domain.LabelKeyPrimary, domain.LabelKeyReturn}})
	req := httptest.NewRequest(http.MethodPost, "/orders/"+o.ID+"/void-label", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+adminToken(t, tokens))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp voidLabelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Approved)
	assert.False(t, resp.Results[1].Approved)
	assert.Equal(t, "label already in use", resp.Results[1].Message)
}

func TestCarrierWebhook_UnknownTrackingAcknowledged(t *testing.T) {
	orders := new(mockOrderService)
	orders.On("HandleTrackingEvent", mock.Anything, "1ZNOPE", "delivered").
		Return(nil, fmt.Errorf("%w: order for tracking number 1ZNOPE", domain.ErrNotFound))
	router, _ := testRouter(orders, nil)

	body, _ := json.Marshal(carrierWebhookRequest{TrackingNumber: "1ZNOPE", Status: "delivered"})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/carrier", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
}

func TestGetTimeline(t *testing.T) {
	o := sampleOrder()
	orders := new(mockOrderService)
	orders.On("Get", mock.Anything, o.ID).Return(o, nil)
	router, _ := testRouter(orders, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+o.ID+"/timeline", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Shipping []map[string]any `json:"shipping"`
		Payout   []map[string]any `json:"payout"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Shipping)
	assert.NotEmpty(t, resp.Payout)
}
