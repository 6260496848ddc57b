package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"millionGridAPI/internal/payment"
)

// MercadoPagoService is a thin typed client for the provider's payments
// API. The provider is treated as a black box: we create PIX charges and
// read their status, nothing else.
type MercadoPagoService struct {
	accessToken string
	baseURL     string
	backendURL  string
	client      *http.Client
}

func NewMercadoPagoService(accessToken, backendURL string) *MercadoPagoService {
	return &MercadoPagoService{
		accessToken: accessToken,
		baseURL:     "https://api.mercadopago.com",
		backendURL:  backendURL,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// NewMercadoPagoServiceWithBaseURL points the client at a different API
// host. Tests use it with an httptest server.
func NewMercadoPagoServiceWithBaseURL(accessToken, backendURL, baseURL string) *MercadoPagoService {
	s := NewMercadoPagoService(accessToken, backendURL)
	s.baseURL = baseURL
	return s
}

type mpCreateBody struct {
	TransactionAmount float64       `json:"transaction_amount"`
	Description       string        `json:"description"`
	PaymentMethodID   string        `json:"payment_method_id"`
	Payer             payment.Payer `json:"payer"`
	NotificationURL   string        `json:"notification_url,omitempty"`
	ExternalReference string        `json:"external_reference,omitempty"`
}

type mpPayment struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	ExternalReference  string      `json:"external_reference"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// CreatePixCharge creates a PIX charge scoped to externalRef (the pixel id)
// so the webhook can resolve the notification back to the pixel. The
// notification URL is only attached when the backend is publicly reachable.
func (s *MercadoPagoService) CreatePixCharge(ctx context.Context, req *payment.PixRequest) (*payment.PixCharge, error) {
	body := mpCreateBody{
		TransactionAmount: req.TransactionAmount,
		Description:       req.Description,
		PaymentMethodID:   "pix",
		Payer:             req.Payer,
		ExternalReference: req.PixelID,
	}
	if s.backendURL != "" && !strings.Contains(s.backendURL, "localhost") {
		body.NotificationURL = s.backendURL + "/api/payments/webhook"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/payments", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.accessToken)
	httpReq.Header.Set("X-Idempotency-Key", uuid.NewString())

	mp, err := s.do(httpReq)
	if err != nil {
		return nil, err
	}

	return &payment.PixCharge{
		ID:           mp.ID.String(),
		Status:       mp.Status,
		QRCode:       mp.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64: mp.PointOfInteraction.TransactionData.QRCodeBase64,
	}, nil
}

// GetPayment looks up a charge by its provider id.
func (s *MercadoPagoService) GetPayment(ctx context.Context, id string) (*payment.Info, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/payments/"+id, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.accessToken)

	mp, err := s.do(httpReq)
	if err != nil {
		return nil, err
	}

	return &payment.Info{
		ID:                mp.ID.String(),
		Status:            mp.Status,
		ExternalReference: mp.ExternalReference,
	}, nil
}

func (s *MercadoPagoService) do(req *http.Request) (*mpPayment, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment provider request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, string(raw))
	}

	var mp mpPayment
	if err := json.Unmarshal(raw, &mp); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	return &mp, nil
}
