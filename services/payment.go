package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelechukwu/quick-pickup/models"
)

// LinkBuilder is the contract the order lifecycle depends on. Adding a
// provider means extending the Gateway, never touching the order service.
type LinkBuilder interface {
	CheckoutLink(ctx context.Context, txRef string, amount decimal.Decimal, customerEmail, secret string, provider models.PaymentProvider) (string, error)
	// VerifyTransaction reports the settled state of a transaction
	// reference as the provider sees it. A non-terminal result means the
	// payment is still in flight.
	VerifyTransaction(ctx context.Context, txRef, secret string, provider models.PaymentProvider) (models.PaymentStatus, error)
}

// Gateway builds provider checkout links over HTTP. The client timeout
// bounds every provider call; a timeout is surfaced as a PaymentLinkError
// like any other transient failure.
type Gateway struct {
	Client         *http.Client
	FlutterwaveURL string
	PaystackURL    string
	CallbackURL    string
}

// NewGateway wires the default endpoints. PAYMENT_CALLBACK_URL points the
// provider redirect back at this deployment.
func NewGateway() *Gateway {
	return &Gateway{
		Client:         &http.Client{Timeout: 15 * time.Second},
		FlutterwaveURL: "https://api.flutterwave.com/v3",
		PaystackURL:    "https://api.paystack.co",
		CallbackURL:    os.Getenv("PAYMENT_CALLBACK_URL"),
	}
}

// CheckoutLink builds a redirect link for one payable amount. Flutterwave
// takes the amount in its natural currency unit; Paystack takes an integer
// minor unit (kobo).
func (g *Gateway) CheckoutLink(ctx context.Context, txRef string, amount decimal.Decimal, customerEmail, secret string, provider models.PaymentProvider) (string, error) {
	switch provider {
	case models.ProviderFlutterwave:
		return g.flutterwaveLink(ctx, txRef, amount, customerEmail, secret)
	case models.ProviderPaystack:
		return g.paystackLink(ctx, txRef, amount, customerEmail, secret)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
}

func (g *Gateway) flutterwaveLink(ctx context.Context, txRef string, amount decimal.Decimal, customerEmail, secret string) (string, error) {
	body := map[string]any{
		"tx_ref":       txRef,
		"amount":       amount.StringFixed(2),
		"currency":     "NGN",
		"redirect_url": g.CallbackURL,
		"customer": map[string]any{
			"email": customerEmail,
		},
	}

	var response struct {
		Status string `json:"status"`
		Data   struct {
			Link string `json:"link"`
		} `json:"data"`
	}
	if err := g.post(ctx, g.FlutterwaveURL+"/payments", secret, body, &response); err != nil {
		return "", &PaymentLinkError{Provider: string(models.ProviderFlutterwave), Err: err}
	}
	if response.Data.Link == "" {
		return "", &PaymentLinkError{Provider: string(models.ProviderFlutterwave), Err: fmt.Errorf("no link in response, status %q", response.Status)}
	}
	return response.Data.Link, nil
}

func (g *Gateway) paystackLink(ctx context.Context, txRef string, amount decimal.Decimal, customerEmail, secret string) (string, error) {
	// Paystack expects the amount in kobo.
	amountInKobo := amount.Mul(decimal.NewFromInt(100)).IntPart()
	body := map[string]any{
		"reference":    txRef,
		"amount":       amountInKobo,
		"currency":     "NGN",
		"email":        customerEmail,
		"callback_url": g.CallbackURL,
	}

	var response struct {
		Status bool `json:"status"`
		Data   struct {
			AuthorizationURL string `json:"authorization_url"`
		} `json:"data"`
	}
	if err := g.post(ctx, g.PaystackURL+"/transaction/initialize", secret, body, &response); err != nil {
		return "", &PaymentLinkError{Provider: string(models.ProviderPaystack), Err: err}
	}
	if response.Data.AuthorizationURL == "" {
		return "", &PaymentLinkError{Provider: string(models.ProviderPaystack), Err: fmt.Errorf("no authorization_url in response")}
	}
	return response.Data.AuthorizationURL, nil
}

// VerifyTransaction asks the provider what actually happened to a
// transaction. The redirect that lands on the callback carries a status
// parameter anyone can forge; this call is what marks a payment.
func (g *Gateway) VerifyTransaction(ctx context.Context, txRef, secret string, provider models.PaymentProvider) (models.PaymentStatus, error) {
	switch provider {
	case models.ProviderFlutterwave:
		return g.flutterwaveVerify(ctx, txRef, secret)
	case models.ProviderPaystack:
		return g.paystackVerify(ctx, txRef, secret)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
}

func (g *Gateway) flutterwaveVerify(ctx context.Context, txRef, secret string) (models.PaymentStatus, error) {
	var response struct {
		Status string `json:"status"`
		Data   struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	endpoint := g.FlutterwaveURL + "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(txRef)
	if err := g.get(ctx, endpoint, secret, &response); err != nil {
		return "", &PaymentLinkError{Provider: string(models.ProviderFlutterwave), Err: err}
	}
	switch response.Data.Status {
	case "successful":
		return models.PaymentSuccess, nil
	case "failed":
		return models.PaymentFailed, nil
	default:
		return models.PaymentPending, nil
	}
}

func (g *Gateway) paystackVerify(ctx context.Context, txRef, secret string) (models.PaymentStatus, error) {
	var response struct {
		Status bool `json:"status"`
		Data   struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	endpoint := g.PaystackURL + "/transaction/verify/" + url.PathEscape(txRef)
	if err := g.get(ctx, endpoint, secret, &response); err != nil {
		return "", &PaymentLinkError{Provider: string(models.ProviderPaystack), Err: err}
	}
	switch response.Data.Status {
	case "success":
		return models.PaymentSuccess, nil
	case "failed", "abandoned":
		return models.PaymentFailed, nil
	default:
		return models.PaymentPending, nil
	}
}

func (g *Gateway) post(ctx context.Context, endpoint, secret string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return g.do(req, secret, out)
}

func (g *Gateway) get(ctx context.Context, endpoint, secret string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return g.do(req, secret, out)
}

func (g *Gateway) do(req *http.Request, secret string, out any) error {
	req.Header.Set("Authorization", "Bearer "+secret)

	resp, err := g.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("provider returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
