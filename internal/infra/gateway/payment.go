package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront-core/internal/pkg/config"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/commands"
)

// HTTPPaymentGateway talks to the external payment provider. Transient
// failures are retried with backoff; a decline is a terminal answer and is
// never retried.
type HTTPPaymentGateway struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
}

func NewHTTPPaymentGateway(cfg config.PaymentConfig) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
	}
}

type authorizeRequest struct {
	Reference   string `json:"reference"`
	CustomerRef string `json:"customer_ref"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Method      string `json:"method"`
}

type authorizeResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	DeclineReason string `json:"decline_reason"`
}

func (g *HTTPPaymentGateway) Authorize(ctx context.Context, req commands.PaymentRequest) (*commands.PaymentResult, error) {
	body := authorizeRequest{
		Reference:   req.OrderNumber,
		CustomerRef: req.PrincipalID.String(),
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Method:      req.Method,
	}

	var resp authorizeResponse
	if err := g.post(ctx, "/v1/authorizations", body, &resp); err != nil {
		return nil, err
	}

	return &commands.PaymentResult{
		ProviderRef:   resp.ID,
		Authorized:    resp.Status == "authorized" || resp.Status == "captured",
		Settled:       resp.Status == "captured",
		DeclineReason: resp.DeclineReason,
	}, nil
}

type refundRequest struct {
	AuthorizationID string `json:"authorization_id"`
	AmountCents     int64  `json:"amount_cents"`
	IdempotencyKey  string `json:"idempotency_key"`
}

// Refund keys the request on the authorization ref so the provider collapses
// a repeated refund for the same capture into one.
func (g *HTTPPaymentGateway) Refund(ctx context.Context, providerRef string, amountCents int64) error {
	body := refundRequest{AuthorizationID: providerRef, AmountCents: amountCents, IdempotencyKey: providerRef}
	var resp struct {
		Status string `json:"status"`
	}
	if err := g.post(ctx, "/v1/refunds", body, &resp); err != nil {
		return err
	}
	if resp.Status != "refunded" {
		return errs.New("refund was not accepted")
	}
	return nil
}

func (g *HTTPPaymentGateway) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errs.Wrap(err, "encoding gateway request")
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return errs.Wrap(err, "building gateway request")
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

		httpResp, err := g.client.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}

		if httpResp.StatusCode >= 500 {
			httpResp.Body.Close()
			lastErr = fmt.Errorf("gateway returned status %d", httpResp.StatusCode)
			continue
		}
		if httpResp.StatusCode >= 400 && httpResp.StatusCode != http.StatusPaymentRequired {
			httpResp.Body.Close()
			return errs.New(fmt.Sprintf("gateway rejected request with status %d", httpResp.StatusCode))
		}

		err = json.NewDecoder(httpResp.Body).Decode(out)
		httpResp.Body.Close()
		if err != nil {
			return errs.Wrap(err, "decoding gateway response")
		}
		return nil
	}
	return errs.Wrap(lastErr, "payment gateway unreachable")
}
