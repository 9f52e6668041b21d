package timeline

import "buyback-backend/internal/domain"

// Step definition tables. The admin list view and the customer account page
// both render from these; there is intentionally no second copy anywhere.

func shippingSteps(pref domain.ShippingPreference) []stepDef {
	if pref == domain.ShippingPreferenceKit {
		return kitShippingSteps
	}
	return emailShippingSteps
}

var kitShippingSteps = []stepDef{
	{
		id:               "submitted",
		title:            "Order submitted",
		completionStatus: domain.StatusOrderPending,
		timestampFields:  []string{"createdAt"},
	},
	{
		id:               "kit_requested",
		title:            "Shipping kit requested",
		completionStatus: domain.StatusShippingKitRequested,
		timestampFields:  []string{"statusAt.shipping_kit_requested"},
	},
	{
		id:               "label_generated",
		title:            "Kit labels generated",
		completionStatus: domain.StatusLabelGenerated,
		timestampFields:  []string{"labels.outboundkit.generatedAt", "statusAt.label_generated"},
	},
	{
		id:               "kit_sent",
		title:            "Kit on its way to you",
		completionStatus: domain.StatusKitSent,
		timestampFields:  []string{"statusAt.kit_sent"},
	},
	{
		id:               "kit_delivered",
		title:            "Kit delivered",
		completionStatus: domain.StatusKitDelivered,
		extraCompletionStatuses: []domain.Status{
			domain.StatusReceived,
		},
		timestampFields: []string{"statusAt.kit_delivered"},
	},
	{
		id:               "received",
		title:            "Device received",
		completionStatus: domain.StatusReceived,
		timestampFields:  []string{"statusAt.received"},
	},
}

var emailShippingSteps = []stepDef{
	{
		id:               "submitted",
		title:            "Order submitted",
		completionStatus: domain.StatusOrderPending,
		timestampFields:  []string{"createdAt"},
	},
	{
		id:               "label_generated",
		title:            "Shipping label generated",
		completionStatus: domain.StatusLabelGenerated,
		timestampFields:  []string{"labels.primary.generatedAt", "statusAt.label_generated"},
	},
	{
		id:               "label_emailed",
		title:            "Label emailed to you",
		completionStatus: domain.StatusEmailed,
		timestampFields:  []string{"statusAt.emailed"},
	},
	{
		id:               "received",
		title:            "Device received",
		completionStatus: domain.StatusReceived,
		timestampFields:  []string{"statusAt.received"},
	},
}

func payoutSteps() []stepDef {
	return payoutStepDefs
}

var payoutStepDefs = []stepDef{
	{
		id:               "inspection",
		title:            "Device inspected",
		completionStatus: domain.StatusReceived,
		timestampFields:  []string{"statusAt.received"},
	},
	{
		id:               "price_confirmed",
		title:            "Price confirmed",
		completionStatus: domain.StatusReofferAccepted,
		extraCompletionStatuses: []domain.Status{
			domain.StatusReofferAutoAccepted,
			domain.StatusCompleted,
		},
		timestampFields: []string{
			"statusAt.re-offered-accepted",
			"statusAt.re-offered-auto-accepted",
			"statusAt.completed",
		},
	},
	{
		id:               "payout",
		title:            "Payment sent",
		completionStatus: domain.StatusCompleted,
		timestampFields:  []string{"statusAt.completed"},
		// A generated return label short-circuits the payout track: the
		// device is going back, there is nothing left to pay.
		override: hasReturnLabelURL,
	},
}

func hasReturnLabelURL(o *domain.Order) bool {
	l, ok := o.Labels[domain.LabelKeyReturn]
	return ok && l.LabelURL != ""
}
