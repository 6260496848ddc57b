package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"millionGridAPI/internal/payment"
	"millionGridAPI/internal/pixel"
	"millionGridAPI/middleware"
)

type WebhookHandler struct {
	store    PixelStore
	provider PaymentProvider
}

func NewWebhookHandler(store PixelStore, provider PaymentProvider) *WebhookHandler {
	return &WebhookHandler{
		store:    store,
		provider: provider,
	}
}

// HandlePaymentWebhook processes provider notifications. The endpoint
// always acknowledges with 200: the provider retries on anything else, and
// the status poll covers any notification we fail to process. Approval is
// idempotent, so duplicate deliveries for the same charge are safe no-ops.
func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var event payment.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.Printf("Error parsing payment webhook: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if event.Action != "payment.updated" || event.Data.ID == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx := r.Context()
	info, err := h.provider.GetPayment(ctx, event.Data.ID)
	if err != nil {
		log.Printf("Webhook processing error for payment %s: %v", event.Data.ID, err)
		w.WriteHeader(http.StatusOK)
		return
	}

	log.Printf("Payment %s status: %s", event.Data.ID, info.Status)

	if info.Status == "approved" && h.approveFromInfo(ctx, info, event.Data.ID) {
		middleware.CountPixelApproved()
	}

	w.WriteHeader(http.StatusOK)
}

// approveFromInfo flips the referenced pixel to approved, preferring the
// provider's external reference and falling back to the stored charge id.
// It reports whether a pixel actually changed; notifications that resolve
// to no known pixel are dropped without counting as approvals.
func (h *WebhookHandler) approveFromInfo(ctx context.Context, info *payment.Info, paymentID string) bool {
	if info.ExternalReference != "" {
		err := h.store.Approve(ctx, info.ExternalReference)
		if err == nil {
			log.Printf("Pixel %s approved", info.ExternalReference)
			return true
		}
		if !errors.Is(err, pixel.ErrNotFound) {
			log.Printf("Error approving pixel %s: %v", info.ExternalReference, err)
		}
		return false
	}

	err := h.store.ApproveByPaymentID(ctx, paymentID)
	if err == nil {
		log.Printf("Pixel updated by payment id %s", paymentID)
		return true
	}
	if !errors.Is(err, pixel.ErrNotFound) {
		log.Printf("Error approving pixel by payment id %s: %v", paymentID, err)
	}
	return false
}
