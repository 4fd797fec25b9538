package models

// Card gateway wire types. The gateway is an external collaborator reached over
// HTTPS; see services.CardGatewayService.

// IntentRequest is the payload for creating a payment intent
type IntentRequest struct {
	Amount   float64           `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Intent statuses as reported by the gateway
const (
	IntentStatusRequiresPayment = "requires_payment"
	IntentStatusSucceeded       = "succeeded"
	IntentStatusFailed          = "failed"
)

// Intent is the gateway's view of one card payment attempt
type Intent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"clientSecret,omitempty"`
	Status       string  `json:"status"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	ReceiptURL   string  `json:"receiptUrl,omitempty"`
}

// GatewayResponse is the envelope every gateway endpoint returns
type GatewayResponse struct {
	Status  bool        `json:"status"`
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Intent  *Intent     `json:"intent,omitempty"`
}

// CardIntentResponse is what our API returns to the storefront client so it
// can complete the card flow
type CardIntentResponse struct {
	IntentID     string  `json:"intentId"`
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
}
