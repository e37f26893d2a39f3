package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/powerfit/powerfit-api/internal/domain/order"
)

// PaymentWebhook receives asynchronous payment notifications from the
// provider. The notification may arrive as a JSON body or as query
// parameters; both carry only the event type and the payment id, never a
// trusted status.
func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	n := parseNotification(r)

	processed, err := h.webhooks.Process(r.Context(), n)
	if err != nil {
		zctx.From(r.Context()).Error("webhook processing failed",
			zap.String("payment_id", n.PaymentID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !processed {
		writeJSON(w, http.StatusOK, webhookResponse{Message: "not processed"})
		return
	}

	writeJSON(w, http.StatusOK, webhookResponse{Success: true})
}

func parseNotification(r *http.Request) order.Notification {
	var body webhookBody
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Type != "" {
		return order.Notification{Type: body.Type, PaymentID: body.Data.ID}
	}

	// Older notification format delivers via query string.
	q := r.URL.Query()
	n := order.Notification{Type: q.Get("type"), PaymentID: q.Get("data.id")}
	if n.Type == "" {
		n.Type = q.Get("topic")
	}
	if n.PaymentID == "" {
		n.PaymentID = q.Get("id")
	}
	return n
}
