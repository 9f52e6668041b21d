package http

import (
	"errors"
	"net/http"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
)

type carrierWebhookRequest struct {
	TrackingNumber string `json:"trackingNumber"`
	Status         string `json:"status"`
}

// carrierWebhook applies a tracking update. Carriers redeliver on non-2xx,
// so an unknown tracking number is acknowledged and logged rather than
// bounced back forever.
func (h *Handler) carrierWebhook(w http.ResponseWriter, r *http.Request) {
	var req carrierWebhookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.TrackingNumber == "" || req.Status == "" {
		writeError(w, domain.ErrValidation)
		return
	}

	o, err := h.orders.HandleTrackingEvent(r.Context(), req.TrackingNumber, req.Status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Tracking event for unknown tracking number", "tracking_number", req.TrackingNumber)
			writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "orderStatus": o.Status})
}
