package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelechukwu/quick-pickup/models"
)

func TestCheckoutLinkFlutterwave(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"link": "https://checkout.flutterwave.com/pay/abc"},
		})
	}))
	defer server.Close()

	gateway := &Gateway{Client: server.Client(), FlutterwaveURL: server.URL}

	link, err := gateway.CheckoutLink(context.Background(), "order-7-x", decimal.RequireFromString("37.50"), "guest@example.com", "sk_test", models.ProviderFlutterwave)
	if err != nil {
		t.Fatalf("CheckoutLink: %v", err)
	}
	if link != "https://checkout.flutterwave.com/pay/abc" {
		t.Errorf("unexpected link %q", link)
	}
	if gotAuth != "Bearer sk_test" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	// Flutterwave takes the natural currency unit.
	if gotBody["amount"] != "37.50" {
		t.Errorf("amount = %v, want 37.50", gotBody["amount"])
	}
	if gotBody["tx_ref"] != "order-7-x" {
		t.Errorf("tx_ref = %v", gotBody["tx_ref"])
	}
}

func TestCheckoutLinkPaystackMinorUnit(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"authorization_url": "https://checkout.paystack.com/xyz"},
		})
	}))
	defer server.Close()

	gateway := &Gateway{Client: server.Client(), PaystackURL: server.URL}

	link, err := gateway.CheckoutLink(context.Background(), "order-7-x", decimal.RequireFromString("37.50"), "guest@example.com", "sk_test", models.ProviderPaystack)
	if err != nil {
		t.Fatalf("CheckoutLink: %v", err)
	}
	if link != "https://checkout.paystack.com/xyz" {
		t.Errorf("unexpected link %q", link)
	}
	// Paystack takes integer kobo: 37.50 NGN -> 3750.
	if gotBody["amount"] != float64(3750) {
		t.Errorf("amount = %v, want 3750", gotBody["amount"])
	}
}

func TestCheckoutLinkUnsupportedProvider(t *testing.T) {
	gateway := &Gateway{Client: http.DefaultClient}

	_, err := gateway.CheckoutLink(context.Background(), "ref", decimal.NewFromInt(10), "a@b.c", "sk", models.PaymentProvider("stripe"))
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestCheckoutLinkProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	gateway := &Gateway{Client: server.Client(), FlutterwaveURL: server.URL}

	_, err := gateway.CheckoutLink(context.Background(), "ref", decimal.NewFromInt(10), "a@b.c", "sk", models.ProviderFlutterwave)
	var linkErr *PaymentLinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("expected PaymentLinkError, got %v", err)
	}
}

func TestVerifyTransactionFlutterwave(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/verify_by_reference" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("tx_ref") != "order-7-x" {
			t.Errorf("tx_ref = %q", r.URL.Query().Get("tx_ref"))
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"status": "successful"},
		})
	}))
	defer server.Close()

	gateway := &Gateway{Client: server.Client(), FlutterwaveURL: server.URL}

	status, err := gateway.VerifyTransaction(context.Background(), "order-7-x", "sk_test", models.ProviderFlutterwave)
	if err != nil {
		t.Fatalf("VerifyTransaction: %v", err)
	}
	if status != models.PaymentSuccess {
		t.Errorf("status = %s, want success", status)
	}
	if gotAuth != "Bearer sk_test" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
}

func TestVerifyTransactionPaystackUnsettled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/order-7-x" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"status": "ongoing"},
		})
	}))
	defer server.Close()

	gateway := &Gateway{Client: server.Client(), PaystackURL: server.URL}

	status, err := gateway.VerifyTransaction(context.Background(), "order-7-x", "sk_test", models.ProviderPaystack)
	if err != nil {
		t.Fatalf("VerifyTransaction: %v", err)
	}
	// Anything the provider has not settled stays pending.
	if status != models.PaymentPending {
		t.Errorf("status = %s, want pending", status)
	}
}

func TestVerifyTransactionProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	gateway := &Gateway{Client: server.Client(), PaystackURL: server.URL}

	_, err := gateway.VerifyTransaction(context.Background(), "ref", "sk", models.ProviderPaystack)
	var linkErr *PaymentLinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("expected PaymentLinkError, got %v", err)
	}
}

func TestCheckoutLinkTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	gateway := &Gateway{
		Client:         &http.Client{Timeout: 20 * time.Millisecond},
		FlutterwaveURL: server.URL,
	}

	_, err := gateway.CheckoutLink(context.Background(), "ref", decimal.NewFromInt(10), "a@b.c", "sk", models.ProviderFlutterwave)
	var linkErr *PaymentLinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("expected PaymentLinkError on timeout, got %v", err)
	}
}
