package services

import (
	"context"

	"lodgify-exporter/models"
)

// PropertyCatalog resolves the exportable property set.
type PropertyCatalog interface {
	GetAll(ctx context.Context) ([]models.Property, error)
}

// PriceSource is the remote per-day price calculator. GetPricingPreview
// prices a whole date range in one call; CalculatePrice prices a single day
// and is used as the degraded fallback when a bulk call fails.
type PriceSource interface {
	GetPricingPreview(ctx context.Context, propertyID int64, startDate, endDate string, stayLength int) ([]models.PricingPreviewEntry, error)
	CalculatePrice(ctx context.Context, propertyID int64, date string, stayLength int) ([]models.PriceQuote, error)
}

// OverrideSource supplies the active manual price overrides for a property,
// used to audit that overrides survived range optimization.
type OverrideSource interface {
	ActiveOverrides(ctx context.Context, propertyID int64) ([]models.PriceOverride, error)
}
