package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"millionGridAPI/internal/payment"
)

type PaymentHandler struct {
	store    PixelStore
	provider PaymentProvider
}

func NewPaymentHandler(store PixelStore, provider PaymentProvider) *PaymentHandler {
	return &PaymentHandler{
		store:    store,
		provider: provider,
	}
}

// CreatePixPayment creates a PIX charge with the provider. When the request
// names a pixel, the returned charge id is stored against it so the webhook
// fallback lookup works.
func (h *PaymentHandler) CreatePixPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var req payment.PixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TransactionAmount <= 0 {
		respondWithError(w, http.StatusBadRequest, "transaction_amount must be positive")
		return
	}

	charge, err := h.provider.CreatePixCharge(ctx, &req)
	if err != nil {
		log.Printf("Payment provider error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create PIX payment")
		return
	}

	if req.PixelID != "" {
		if err := h.store.SetPaymentID(ctx, req.PixelID, charge.ID); err != nil {
			// The charge exists either way; the status endpoint can still
			// resolve it through the provider's external reference.
			log.Printf("Error storing payment id %s for pixel %s: %v", charge.ID, req.PixelID, err)
		}
	}

	respondWithJSON(w, http.StatusOK, charge)
}
