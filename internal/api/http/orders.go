package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/service"
	"buyback-backend/internal/timeline"
)

type submitOrderRequest struct {
	Device             string                    `json:"device"`
	Storage            string                    `json:"storage"`
	Carrier            string                    `json:"carrier"`
	EstimatedQuote     int64                     `json:"estimatedQuote"`
	ShippingPreference domain.ShippingPreference `json:"shippingPreference"`
	ShippingInfo       domain.ShippingInfo       `json:"shippingInfo"`
	PaymentMethod      string                    `json:"paymentMethod"`
	PaymentDetails     map[string]string         `json:"paymentDetails,omitempty"`
}

func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	o, err := h.orders.Submit(r.Context(), service.SubmitOrderInput{
		Device:             req.Device,
		StorageSize:        req.Storage,
		Carrier:            req.Carrier,
		EstimatedQuote:     req.EstimatedQuote,
		ShippingPreference: req.ShippingPreference,
		ShippingInfo:       req.ShippingInfo,
		PaymentMethod:      req.PaymentMethod,
		PaymentDetails:     req.PaymentDetails,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	orders, err := h.orders.List(r.Context(), domain.Status(q.Get("status")), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) getTimeline(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, timeline.Project(o))
}

func (h *Handler) updateShippingInfo(w http.ResponseWriter, r *http.Request) {
	var info domain.ShippingInfo
	if err := decodeBody(r, &info); err != nil {
		writeError(w, err)
		return
	}
	o, err := h.orders.UpdateShippingInfo(r.Context(), mux.Vars(r)["id"], info)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type transitionRequest struct {
	Status domain.Status `json:"status"`
	Note   string        `json:"note,omitempty"`
}

func (h *Handler) transitionOrder(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	o, err := h.orders.Transition(r.Context(), mux.Vars(r)["id"], req.Status, actorFrom(r.Context()), req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	o, err := h.orders.Cancel(r.Context(), mux.Vars(r)["id"], actorFrom(r.Context()), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) manualFulfill(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.ManualFulfill(r.Context(), mux.Vars(r)["id"], actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type proposeReofferRequest struct {
	NewPrice       int64                  `json:"newPrice"`
	Reasons        []domain.ReofferReason `json:"reasons"`
	Comments       string                 `json:"comments,omitempty"`
	AutoAcceptDate *time.Time             `json:"autoAcceptDate,omitempty"`
}

func (h *Handler) proposeReoffer(w http.ResponseWriter, r *http.Request) {
	var req proposeReofferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	o, err := h.reoffers.Propose(r.Context(), mux.Vars(r)["id"], req.NewPrice, req.Reasons,
		req.Comments, req.AutoAcceptDate, actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) reofferSuggestion(w http.ResponseWriter, r *http.Request) {
	price, err := h.reoffers.SuggestPrice(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"suggestedPrice": price})
}

func (h *Handler) acceptReoffer(w http.ResponseWriter, r *http.Request) {
	o, err := h.reoffers.Accept(r.Context(), mux.Vars(r)["id"], actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) declineReoffer(w http.ResponseWriter, r *http.Request) {
	o, err := h.reoffers.Decline(r.Context(), mux.Vars(r)["id"], actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) generateLabel(w http.ResponseWriter, r *http.Request) {
	o, err := h.labels.GenerateShippingLabel(r.Context(), mux.Vars(r)["id"], actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) generateReturnLabel(w http.ResponseWriter, r *http.Request) {
	o, err := h.labels.GenerateReturnLabel(r.Context(), mux.Vars(r)["id"], actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) markKitSent(w http.ResponseWriter, r *http.Request) {
	o, err := h.labels.MarkKitSent(r.Context(), mux.Vars(r)["id"], actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type voidLabelRequest struct {
	Keys []domain.LabelKey `json:"keys"`
}

type voidLabelResponse struct {
	Results []domain.VoidResult `json:"results"`
	Order   *domain.Order       `json:"order"`
}

// voidLabel returns 200 with per-label results even when some or all labels
// were denied; only a request-level failure is an error status.
func (h *Handler) voidLabel(w http.ResponseWriter, r *http.Request) {
	var req voidLabelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	o, results, err := h.labels.RequestVoid(r.Context(), mux.Vars(r)["id"], req.Keys, actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voidLabelResponse{Results: results, Order: o})
}

type sendReminderRequest struct {
	Kind domain.ReminderKind `json:"kind"`
}

func (h *Handler) sendReminder(w http.ResponseWriter, r *http.Request) {
	var req sendReminderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	o, err := h.reminders.SendReminder(r.Context(), mux.Vars(r)["id"], req.Kind, actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) resetReminder(w http.ResponseWriter, r *http.Request) {
	o, err := h.reminders.Reset(r.Context(), mux.Vars(r)["id"], actorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
