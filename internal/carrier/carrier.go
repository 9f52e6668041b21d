// Package carrier defines the shipping-label collaborator consumed by the
// lifecycle engine. Label issuing and voiding happen at the carrier; this
// engine only records the outcomes.
package carrier

import "context"

// LabelRequest asks the carrier for one label.
type LabelRequest struct {
	OrderID  string
	Role     string // primary, outboundkit, inbounddevice, return
	ToName   string
	Address1 string
	Address2 string
	City     string
	State    string
	Zip      string
}

// IssuedLabel is the carrier's answer to a label request.
type IssuedLabel struct {
	LabelID        string
	TrackingNumber string
	LabelURL       string
}

// VoidOutcome is the carrier's per-label verdict on a void request. A denial
// is a normal business outcome (the label was already scanned), not an error.
type VoidOutcome struct {
	Approved bool
	Message  string
}

// Client is the carrier API surface the engine needs.
type Client interface {
	CreateLabel(ctx context.Context, req LabelRequest) (*IssuedLabel, error)
	VoidLabel(ctx context.Context, labelID string) (*VoidOutcome, error)
}
