package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"millionGridAPI/internal/payment"
	"millionGridAPI/internal/pixel"
)

// PixelStore is the persistence surface the handlers need. Implemented by
// services.PixelService; tests substitute an in-memory store.
type PixelStore interface {
	ListApproved(ctx context.Context) ([]pixel.GridItem, error)
	Create(ctx context.Context, it *pixel.GridItem) (*pixel.GridItem, error)
	Status(ctx context.Context, id string) (pixel.Status, string, error)
	SetPaymentID(ctx context.Context, id, paymentID string) error
	Approve(ctx context.Context, id string) error
	ApproveByPaymentID(ctx context.Context, paymentID string) error
	DeletePending(ctx context.Context, id string) error
}

// PaymentProvider is the external charge API. Implemented by
// services.MercadoPagoService.
type PaymentProvider interface {
	CreatePixCharge(ctx context.Context, req *payment.PixRequest) (*payment.PixCharge, error)
	GetPayment(ctx context.Context, id string) (*payment.Info, error)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
