package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lodgify-exporter/utils"
)

func TestGetPricingPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/get_pricing_preview", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2025-07-01", body["start_date"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"check_date":"2025-07-01","final_price_per_night":120.5,"base_price":100},
			{"check_date":"2025-07-02","final_price_per_night":120.5,"base_price":100}
		]`))
	}))
	defer srv.Close()

	c := NewPricingClient(srv.URL, "test-key", 1000, utils.NewLogger(false))
	entries, err := c.GetPricingPreview(context.Background(), 7, "2025-07-01", "2025-07-02", 3)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-07-01", entries[0].CheckDate)
	assert.Equal(t, 120.5, entries[0].FinalPricePerNight)
}

func TestCalculatePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/calculate_price", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"final_price_per_night":99.99,"base_price":90,"min_price_enforced":true}]`))
	}))
	defer srv.Close()

	c := NewPricingClient(srv.URL, "", 1000, utils.NewLogger(false))
	quotes, err := c.CalculatePrice(context.Background(), 7, "2025-07-01", 3)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, 99.99, quotes[0].FinalPricePerNight)
	assert.True(t, quotes[0].MinPriceEnforced)
}

func TestRPCErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"function not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewPricingClient(srv.URL, "", 1000, utils.NewLogger(false))
	_, err := c.GetPricingPreview(context.Background(), 7, "2025-07-01", "2025-07-31", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestRPCCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewPricingClient(srv.URL, "", 1000, utils.NewLogger(false))
	_, err := c.CalculatePrice(ctx, 7, "2025-07-01", 3)
	assert.Error(t, err)
}
