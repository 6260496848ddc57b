package payment

// Payer identifies the paying customer the way the PIX provider expects it.
type Payer struct {
	Email          string         `json:"email"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Identification Identification `json:"identification"`
}

type Identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

// PixRequest is the body of POST /api/payments/pix. PixelID ties the charge
// to a pending pixel through the provider's external reference.
type PixRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	Payer             Payer   `json:"payer"`
	PixelID           string  `json:"pixel_id,omitempty"`
}

// PixCharge is the subset of the provider's payment object the client needs
// to render a QR code and track the charge.
type PixCharge struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
}

// Info is a provider-side charge lookup result.
type Info struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

// WebhookEvent is the provider notification body. Only payment.updated
// actions carry information we act on.
type WebhookEvent struct {
	Action string      `json:"action"`
	Data   WebhookData `json:"data"`
}

type WebhookData struct {
	ID string `json:"id"`
}
