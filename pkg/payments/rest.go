package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/shopspring/decimal"
)

// RESTProvider implements Provider against the provider's REST API using
// client-credentials OAuth.
type RESTProvider struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewRESTProvider creates a new RESTProvider.
func NewRESTProvider(baseURL, clientID, clientSecret string) *RESTProvider {
	return &RESTProvider{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Make sure we conform to the interface
var _ Provider = (*RESTProvider)(nil)

func (p *RESTProvider) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(p.ClientID, p.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	p.accessToken = body.AccessToken
	// Refresh a minute early so in-flight calls never race expiry.
	p.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn-60) * time.Second)
	return p.accessToken, nil
}

// do issues an authenticated JSON request and decodes the response into out
// when out is non-nil.
func (p *RESTProvider) do(ctx context.Context, method, path string, in, out any) error {
	token, err := p.token(ctx)
	if err != nil {
		return err
	}

	var payload *bytes.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(body)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("provider request %s %s returned status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return nil
}

type link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type orderResponse struct {
	Id     string `json:"id"`
	Status string `json:"status"`
	Links  []link `json:"links"`
}

func approveLink(links []link) string {
	for _, l := range links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

// CreateOrder creates a one-off order for the given price.
func (p *RESTProvider) CreateOrder(ctx context.Context, price models.Price) (*Order, error) {
	in := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{"amount": Amount{Total: price.Amount.StringFixed(2), Currency: price.Currency}},
		},
	}
	var out orderResponse
	if err := p.do(ctx, http.MethodPost, "/v2/checkout/orders", in, &out); err != nil {
		return nil, err
	}
	return &Order{Id: out.Id, Status: out.Status, Price: price, ApproveURL: approveLink(out.Links)}, nil
}

// CaptureOrder captures a previously approved order.
func (p *RESTProvider) CaptureOrder(ctx context.Context, orderID string) (*Order, error) {
	var out orderResponse
	if err := p.do(ctx, http.MethodPost, "/v2/checkout/orders/"+orderID+"/capture", nil, &out); err != nil {
		return nil, err
	}
	return &Order{Id: out.Id, Status: out.Status}, nil
}

// CreateSubscription creates a recurring subscription for a tier.
func (p *RESTProvider) CreateSubscription(ctx context.Context, tier *models.DashiFanTier, userID, returnURL, cancelURL string) (*ProviderSubscription, error) {
	in := map[string]any{
		"plan_id":   tier.Id,
		"custom_id": userID,
		"application_context": map[string]string{
			"return_url": returnURL,
			"cancel_url": cancelURL,
		},
	}
	var out struct {
		Id     string `json:"id"`
		Status string `json:"status"`
		Links  []link `json:"links"`
	}
	if err := p.do(ctx, http.MethodPost, "/v1/billing/subscriptions", in, &out); err != nil {
		return nil, err
	}
	return &ProviderSubscription{Id: out.Id, Status: out.Status, ApproveURL: approveLink(out.Links)}, nil
}

func (p *RESTProvider) subscriptionAction(ctx context.Context, providerSubID, action, reason string) error {
	in := map[string]string{"reason": reason}
	return p.do(ctx, http.MethodPost, "/v1/billing/subscriptions/"+providerSubID+"/"+action, in, nil)
}

// CancelSubscription cancels a provider subscription.
func (p *RESTProvider) CancelSubscription(ctx context.Context, providerSubID, reason string) error {
	return p.subscriptionAction(ctx, providerSubID, "cancel", reason)
}

// SuspendSubscription suspends a provider subscription.
func (p *RESTProvider) SuspendSubscription(ctx context.Context, providerSubID, reason string) error {
	return p.subscriptionAction(ctx, providerSubID, "suspend", reason)
}

// ReactivateSubscription resumes a suspended provider subscription.
func (p *RESTProvider) ReactivateSubscription(ctx context.Context, providerSubID, reason string) error {
	return p.subscriptionAction(ctx, providerSubID, "activate", reason)
}

// PayoutRevenue sends a payout to an author's provider account.
func (p *RESTProvider) PayoutRevenue(ctx context.Context, accountID string, price models.Price) error {
	in := map[string]any{
		"items": []map[string]any{
			{
				"receiver": accountID,
				"amount":   Amount{Total: price.Amount.StringFixed(2), Currency: price.Currency},
			},
		},
	}
	return p.do(ctx, http.MethodPost, "/v1/payments/payouts", in, nil)
}

// ConvertPrice converts a price into the target currency using the provider's
// quoted rate.
func (p *RESTProvider) ConvertPrice(ctx context.Context, price models.Price, targetCurrency string) (models.Price, error) {
	if price.Currency == targetCurrency {
		return price, nil
	}
	var out struct {
		Rate string `json:"rate"`
	}
	path := fmt.Sprintf("/v1/fx/quote?from=%s&to=%s", url.QueryEscape(price.Currency), url.QueryEscape(targetCurrency))
	if err := p.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return models.Price{}, err
	}
	rate, err := decimal.NewFromString(out.Rate)
	if err != nil {
		return models.Price{}, fmt.Errorf("failed to parse fx rate: %w", err)
	}
	return models.Price{Amount: price.Amount.Mul(rate).RoundFloor(2), Currency: targetCurrency}, nil
}
