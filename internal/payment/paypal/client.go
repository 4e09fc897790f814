package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ticketly/internal/logger"
	"ticketly/internal/models"
	"ticketly/internal/payment"
)

// Client talks to the PayPal Orders v2 API. Every call is bounded by the
// injected http.Client's timeout; a timed-out call surfaces as a provider
// failure, never as success.
type Client struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTP         *http.Client
	Tokens       TokenCache
	Logger       *logger.Logger
}

func NewClient(baseURL, clientID, clientSecret string, httpClient *http.Client, tokens TokenCache, log *logger.Logger) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTP:         httpClient,
		Tokens:       tokens,
		Logger:       log,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// errorBody is the shape PayPal uses for 4xx responses. The first detail's
// issue field is the short machine-readable code we surface to callers.
type errorBody struct {
	Name    string `json:"name"`
	Details []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

func extractIssue(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if len(parsed.Details) > 0 && parsed.Details[0].Issue != "" {
		return parsed.Details[0].Issue
	}
	return parsed.Name
}

// accessToken returns a cached OAuth token or fetches a fresh one with the
// client-credentials grant.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if token, ok := c.Tokens.Get(ctx); ok {
		return token, nil
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/oauth2/token", strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.ClientID, c.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.Logger.Error("PAYPAL", fmt.Sprintf("Token request returned %s: %s", resp.Status, string(body)))
		return "", fmt.Errorf("token request failed with status %s", resp.Status)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.Tokens.Put(ctx, token.AccessToken, token.ExpiresIn)
	return token.AccessToken, nil
}

type purchaseUnit struct {
	Amount amount `json:"amount"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type createOrderRequest struct {
	Intent             string         `json:"intent"`
	PurchaseUnits      []purchaseUnit `json:"purchase_units"`
	ApplicationContext struct {
		ReturnURL string `json:"return_url"`
	} `json:"application_context"`
}

// CreateOrder builds a CAPTURE-intent order for the given total and returns
// the provider order with its link list.
func (c *Client) CreateOrder(ctx context.Context, total float64, currency, returnURL string) (*payment.ProviderOrder, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, &models.PaymentOrderError{Err: err}
	}

	orderReq := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{
			{Amount: amount{CurrencyCode: currency, Value: fmt.Sprintf("%.2f", total)}},
		},
	}
	orderReq.ApplicationContext.ReturnURL = returnURL

	body, err := json.Marshal(orderReq)
	if err != nil {
		return nil, &models.PaymentOrderError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v2/checkout/orders", bytes.NewReader(body))
	if err != nil {
		return nil, &models.PaymentOrderError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Error("PAYPAL", fmt.Sprintf("Create order request failed: %v", err))
		return nil, &models.PaymentOrderError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.PaymentOrderError{Err: err}
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		issue := extractIssue(respBody)
		c.Logger.Error("PAYPAL", fmt.Sprintf("Create order returned %s (issue=%s)", resp.Status, issue))
		return nil, &models.PaymentOrderError{
			Issue: issue,
			Err:   fmt.Errorf("create order returned status %s", resp.Status),
		}
	}

	var order payment.ProviderOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, &models.PaymentOrderError{Err: fmt.Errorf("failed to decode order response: %w", err)}
	}

	c.Logger.LogPayment("CREATE", order.ID, fmt.Sprintf("provider order created for %s %.2f", currency, total))
	return &order, nil
}

type captureResponse struct {
	Status string `json:"status"`
}

// CaptureOrder requests capture and returns the provider's status verbatim.
// Ticket state is not touched here; that is the reconciler's job.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", &models.OrderCaptureError{Err: err}
	}

	captureURL := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.BaseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, captureURL, bytes.NewReader([]byte("{}")))
	if err != nil {
		return "", &models.OrderCaptureError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Error("PAYPAL", fmt.Sprintf("Capture request for order %s failed: %v", orderID, err))
		return "", &models.OrderCaptureError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.OrderCaptureError{Err: err}
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		issue := extractIssue(respBody)
		c.Logger.Error("PAYPAL", fmt.Sprintf("Capture for order %s returned %s (issue=%s)", orderID, resp.Status, issue))
		return "", &models.OrderCaptureError{
			Issue: issue,
			Err:   fmt.Errorf("capture returned status %s", resp.Status),
		}
	}

	var capture captureResponse
	if err := json.Unmarshal(respBody, &capture); err != nil {
		return "", &models.OrderCaptureError{Err: fmt.Errorf("failed to decode capture response: %w", err)}
	}

	c.Logger.LogPayment("CAPTURE", orderID, fmt.Sprintf("provider status: %s", capture.Status))
	return capture.Status, nil
}
