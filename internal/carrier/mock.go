package carrier

import (
	"context"
	"fmt"
	"sync"

	"buyback-backend/internal/logger"
)

// MockClient is the development stand-in for the real carrier API. It issues
// deterministic-looking labels and approves every void request, and keeps
// what it issued in memory so tests can assert against it.
type MockClient struct {
	baseURL string

	mu      sync.Mutex
	counter int
	issued  map[string]IssuedLabel // by label ID
	voided  map[string]bool
}

func NewMockClient(baseURL string) *MockClient {
	if baseURL == "" {
		baseURL = "https://carrier.invalid"
	}
	return &MockClient{
		baseURL: baseURL,
		issued:  map[string]IssuedLabel{},
		voided:  map[string]bool{},
	}
}

func (m *MockClient) CreateLabel(ctx context.Context, req LabelRequest) (*IssuedLabel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	id := fmt.Sprintf("mock-%s-%d", req.Role, m.counter)
	label := IssuedLabel{
		LabelID:        id,
		TrackingNumber: fmt.Sprintf("1ZMOCK%010d", m.counter),
		LabelURL:       fmt.Sprintf("%s/labels/%s.pdf", m.baseURL, id),
	}
	m.issued[id] = label

	logger.ExternalServiceCall("carrier", "create_label", "order_id", req.OrderID, "role", req.Role, "label_id", id)
	return &label, nil
}

func (m *MockClient) VoidLabel(ctx context.Context, labelID string) (*VoidOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.issued[labelID]; !ok {
		return &VoidOutcome{Approved: false, Message: "unknown label id"}, nil
	}
	m.voided[labelID] = true
	return &VoidOutcome{Approved: true, Message: "void accepted"}, nil
}

// Voided reports whether a label was voided through this mock.
func (m *MockClient) Voided(labelID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voided[labelID]
}
