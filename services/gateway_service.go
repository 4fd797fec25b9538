// services/gateway_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/floracart/floracart_backend/models"
)

// CardGatewayConfig holds the credentials and endpoint for the card payment
// provider
type CardGatewayConfig struct {
	BaseURL  string
	APIKey   string
	Currency string
	Timeout  time.Duration
}

// CardGatewayConfigFromEnv reads the gateway configuration from environment
// variables
func CardGatewayConfigFromEnv() CardGatewayConfig {
	cfg := CardGatewayConfig{
		BaseURL:  os.Getenv("CARD_GATEWAY_URL"),
		APIKey:   os.Getenv("CARD_GATEWAY_KEY"),
		Currency: os.Getenv("CARD_GATEWAY_CURRENCY"),
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		log.Printf("WARNING: card gateway not fully configured:")
		if cfg.BaseURL == "" {
			log.Printf("  - CARD_GATEWAY_URL is missing")
		}
		if cfg.APIKey == "" {
			log.Printf("  - CARD_GATEWAY_KEY is missing")
		}
		log.Printf("Card commission payments will fail until these are set")
	}
	return cfg
}

// CardGatewayService talks to the card payment provider. The provider round
// trip is the only external blocking call in the commission workflow; the
// client timeout bounds it so a hung gateway cannot hold a ledger mutation
// open.
type CardGatewayService struct {
	baseURL    string
	apiKey     string
	currency   string
	httpClient *http.Client
}

// NewCardGatewayService creates a new gateway client
func NewCardGatewayService(cfg CardGatewayConfig) *CardGatewayService {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &CardGatewayService{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		currency: cfg.Currency,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Currency returns the gateway settlement currency
func (s *CardGatewayService) Currency() string {
	return s.currency
}

// CreateIntent asks the gateway for a new payment intent and returns its id
// and client secret
func (s *CardGatewayService) CreateIntent(ctx context.Context, amount float64, metadata map[string]string) (*models.Intent, error) {
	payload := models.IntentRequest{
		Amount:   amount,
		Currency: s.currency,
		Metadata: metadata,
	}

	resp, err := s.makeRequest(ctx, http.MethodPost, "intents", payload)
	if err != nil {
		return nil, err
	}
	if resp.Intent == nil {
		return nil, errors.New("gateway response missing intent")
	}
	return resp.Intent, nil
}

// RetrieveIntent fetches the current status of a payment intent
func (s *CardGatewayService) RetrieveIntent(ctx context.Context, intentID string) (*models.Intent, error) {
	resp, err := s.makeRequest(ctx, http.MethodGet, "intents/"+intentID, nil)
	if err != nil {
		return nil, err
	}
	if resp.Intent == nil {
		return nil, errors.New("gateway response missing intent")
	}
	return resp.Intent, nil
}

// makeRequest performs one HTTP round trip against the gateway API
func (s *CardGatewayService) makeRequest(ctx context.Context, method, endpoint string, payload interface{}) (*models.GatewayResponse, error) {
	if s.baseURL == "" || s.apiKey == "" {
		return nil, errors.New("missing card gateway credentials: set CARD_GATEWAY_URL and CARD_GATEWAY_KEY")
	}

	url := s.baseURL + "/" + endpoint

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if os.Getenv("CARD_GATEWAY_DEBUG") == "true" {
		log.Printf("Gateway %s %s -> %d: %s", method, url, resp.StatusCode, string(respBody))
	}

	var gatewayResp models.GatewayResponse
	if err := json.Unmarshal(respBody, &gatewayResp); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w\nResponse body: %s", err, string(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !gatewayResp.Status {
		msg := gatewayResp.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return &gatewayResp, fmt.Errorf("gateway error: %s", msg)
	}

	return &gatewayResp, nil
}
