package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"millionGridAPI/internal/pixel"
	"millionGridAPI/middleware"
)

type PixelHandler struct {
	store    PixelStore
	provider PaymentProvider
}

func NewPixelHandler(store PixelStore, provider PaymentProvider) *PixelHandler {
	return &PixelHandler{
		store:    store,
		provider: provider,
	}
}

// GetPixels returns every approved pixel, ascending by creation time.
func (h *PixelHandler) GetPixels(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.store.ListApproved(ctx)
	if err != nil {
		log.Printf("Error listing pixels: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

// CreatePixel persists a new pixel. Status and the creation timestamp are
// always server-set; client-supplied values for either are ignored.
func (h *PixelHandler) CreatePixel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var it pixel.GridItem
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	it.Status = pixel.StatusPending
	it.PaymentID = ""
	it.CreatedAt = time.Time{}
	it.ApplyDefaults()
	if err := it.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.Create(ctx, &it)
	if err != nil {
		if errors.Is(err, pixel.ErrOverlap) {
			respondWithError(w, http.StatusConflict, "area already occupied")
			return
		}
		log.Printf("Error creating pixel %s: %v", it.ID, err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.CountPixelCreated()
	respondWithJSON(w, http.StatusCreated, created)
}

// GetPixelStatus reports a pixel's payment status. If the stored status is
// already approved it short-circuits; otherwise it asks the provider and
// persists an observed approval before answering.
func (h *PixelHandler) GetPixelStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]

	status, paymentID, err := h.store.Status(ctx, id)
	if err != nil {
		if errors.Is(err, pixel.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Pixel not found")
			return
		}
		log.Printf("Error getting status for pixel %s: %v", id, err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if status == pixel.StatusApproved {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "approved"})
		return
	}

	// No charge generated yet, nothing to ask the provider about.
	if paymentID == "" {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "pending"})
		return
	}

	info, err := h.provider.GetPayment(ctx, paymentID)
	if err != nil {
		log.Printf("Status check error for pixel %s: %v", id, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to check status")
		return
	}

	if info.Status == "approved" {
		if err := h.store.Approve(ctx, id); err != nil {
			log.Printf("Error approving pixel %s after status check: %v", id, err)
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		middleware.CountPixelApproved()
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "approved"})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": info.Status})
}

// DeletePixel discards a pixel, but only while it is still pending.
func (h *PixelHandler) DeletePixel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]

	err := h.store.DeletePending(ctx, id)
	switch {
	case err == nil:
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "Pixel discarded"})
	case errors.Is(err, pixel.ErrNotPending):
		respondWithError(w, http.StatusBadRequest, "Pixel already approved")
	case errors.Is(err, pixel.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Pixel not found")
	default:
		log.Printf("Error deleting pixel %s: %v", id, err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
