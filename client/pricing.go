package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"lodgify-exporter/models"
	"lodgify-exporter/utils"
)

// PricingClient talks to the hosted pricing calculator over its REST RPC
// surface. It implements services.PriceSource.
type PricingClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *utils.Logger
}

// NewPricingClient creates a client for the given base URL. Every request
// carries the API key and is bounded by timeoutMs.
func NewPricingClient(baseURL, apiKey string, timeoutMs int, logger *utils.Logger) *PricingClient {
	if timeoutMs <= 0 {
		timeoutMs = 15000
	}
	return &PricingClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		logger:  logger,
	}
}

// GetPricingPreview prices a whole date range for one property in a single
// bulk call.
func (c *PricingClient) GetPricingPreview(ctx context.Context, propertyID int64, startDate, endDate string, stayLength int) ([]models.PricingPreviewEntry, error) {
	body := map[string]any{
		"property_id": propertyID,
		"start_date":  startDate,
		"end_date":    endDate,
		"stay_length": stayLength,
	}

	var entries []models.PricingPreviewEntry
	if err := c.rpc(ctx, "get_pricing_preview", body, &entries); err != nil {
		return nil, fmt.Errorf("pricing preview for property %d (%s..%s): %w",
			propertyID, startDate, endDate, err)
	}
	return entries, nil
}

// CalculatePrice prices a single day. Used as the degraded fallback when a
// bulk chunk fails.
func (c *PricingClient) CalculatePrice(ctx context.Context, propertyID int64, date string, stayLength int) ([]models.PriceQuote, error) {
	body := map[string]any{
		"property_id": propertyID,
		"check_date":  date,
		"stay_length": stayLength,
	}

	var quotes []models.PriceQuote
	if err := c.rpc(ctx, "calculate_price", body, &quotes); err != nil {
		return nil, fmt.Errorf("price for property %d on %s: %w", propertyID, date, err)
	}
	return quotes, nil
}

// rpc posts a JSON body to one of the calculator's RPC functions and
// decodes the JSON response into out.
func (c *PricingClient) rpc(ctx context.Context, fn string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/rest/v1/rpc/%s", c.baseURL, fn)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("[pricing] POST %s %s", url, payload)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned HTTP %d: %s", fn, resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
