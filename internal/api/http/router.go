// Package http exposes the order lifecycle over REST. Customer-facing routes
// are open (submission and the actions reachable from signed order links),
// admin routes require a JWT with the admin role.
package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"buyback-backend/internal/security"
	"buyback-backend/internal/service"
)

// Handler bundles the services behind the REST surface.
type Handler struct {
	orders    service.OrderService
	reoffers  service.ReofferService
	labels    service.LabelService
	reminders service.ReminderService
}

func NewHandler(orders service.OrderService, reoffers service.ReofferService, labels service.LabelService, reminders service.ReminderService) *Handler {
	return &Handler{
		orders:    orders,
		reoffers:  reoffers,
		labels:    labels,
		reminders: reminders,
	}
}

// NewRouter builds the full route table.
func NewRouter(h *Handler, tokens security.TokenManager) http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogging)

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.HandleFunc("/webhooks/carrier", h.carrierWebhook).Methods(http.MethodPost)

	// Customer routes
	r.HandleFunc("/orders", h.submitOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders/{id}", h.getOrder).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/timeline", h.getTimeline).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/shipping-info", h.updateShippingInfo).Methods(http.MethodPut)
	r.HandleFunc("/orders/{id}/re-offer/accept", h.acceptReoffer).Methods(http.MethodPost)
	r.HandleFunc("/orders/{id}/re-offer/decline", h.declineReoffer).Methods(http.MethodPost)

	// Admin routes
	admin := r.NewRoute().Subrouter()
	admin.Use(requireRole(tokens, security.RoleAdmin))
	admin.HandleFunc("/orders", h.listOrders).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}/status", h.transitionOrder).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/re-offer", h.proposeReoffer).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/re-offer/suggestion", h.reofferSuggestion).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}/generate-label", h.generateLabel).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/return-label", h.generateReturnLabel).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/void-label", h.voidLabel).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/mark-kit-sent", h.markKitSent).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/cancel", h.cancelOrder).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/manual-fulfill", h.manualFulfill).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/send-reminder-email", h.sendReminder).Methods(http.MethodPost)
	admin.HandleFunc("/orders/{id}/reset-reminder", h.resetReminder).Methods(http.MethodPost)

	return r
}
