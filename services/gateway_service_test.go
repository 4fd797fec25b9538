package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/floracart/floracart_backend/models"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*CardGatewayService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewCardGatewayService(CardGatewayConfig{
		BaseURL:  server.URL,
		APIKey:   "test-key",
		Currency: "USD",
	})
	return svc, server
}

func TestCreateIntent(t *testing.T) {
	svc, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/intents" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req models.IntentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Amount != 500 || req.Currency != "USD" {
			t.Errorf("request = %+v", req)
		}

		json.NewEncoder(w).Encode(models.GatewayResponse{
			Status: true,
			Intent: &models.Intent{
				ID:           "int_123",
				ClientSecret: "secret_abc",
				Status:       models.IntentStatusRequiresPayment,
				Amount:       500,
				Currency:     "USD",
			},
		})
	})

	intent, err := svc.CreateIntent(context.Background(), 500, map[string]string{"sellerId": "abc"})
	if err != nil {
		t.Fatalf("CreateIntent failed: %v", err)
	}
	if intent.ID != "int_123" || intent.ClientSecret != "secret_abc" {
		t.Errorf("intent = %+v", intent)
	}
}

func TestRetrieveIntent(t *testing.T) {
	svc, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/intents/int_123" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.GatewayResponse{
			Status: true,
			Intent: &models.Intent{ID: "int_123", Status: models.IntentStatusSucceeded},
		})
	})

	intent, err := svc.RetrieveIntent(context.Background(), "int_123")
	if err != nil {
		t.Fatalf("RetrieveIntent failed: %v", err)
	}
	if intent.Status != models.IntentStatusSucceeded {
		t.Errorf("status = %s, want succeeded", intent.Status)
	}
}

func TestGatewayErrorStatus(t *testing.T) {
	svc, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(models.GatewayResponse{
			Status:  false,
			Message: "card declined",
		})
	})

	_, err := svc.CreateIntent(context.Background(), 100, nil)
	if err == nil {
		t.Fatal("expected error for declined payment")
	}
}

func TestGatewayEnvelopeFailure(t *testing.T) {
	// HTTP 200 but status=false in the envelope still fails
	svc, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.GatewayResponse{
			Status:  false,
			Message: "invalid api key",
		})
	})

	_, err := svc.RetrieveIntent(context.Background(), "int_x")
	if err == nil {
		t.Fatal("expected error for status=false envelope")
	}
}

func TestGatewayMissingCredentials(t *testing.T) {
	svc := NewCardGatewayService(CardGatewayConfig{})
	_, err := svc.CreateIntent(context.Background(), 100, nil)
	if err == nil {
		t.Fatal("expected error with no credentials configured")
	}
}

func TestGatewayMalformedResponse(t *testing.T) {
	svc, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway down</html>"))
	})

	_, err := svc.RetrieveIntent(context.Background(), "int_x")
	if err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}
