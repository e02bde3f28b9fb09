package models

import "time"

// StayLengthCategory partitions the 1..365-night stay space into a priced
// band. Each band is priced once, using a representative stay length.
type StayLengthCategory struct {
	Name       string
	MinStay    int
	MaxStay    int
	StayLength int
}

// DatePriceData is one computed nightly price for a (property, stay
// category, date) triple, as returned by the remote calculator. Instances
// are immutable once produced and consumed exactly once by the optimizer.
type DatePriceData struct {
	Date                      time.Time
	Price                     float64
	MinStay                   int
	MaxStay                   int
	StayLength                int
	BasePrice                 float64
	SeasonalAdjustmentPercent float64
	LastMinuteDiscountPercent float64
	MinPriceEnforced          bool
}

// OptimizedRange is a contiguous span of dates sharing identical price and
// stay terms. One range replaces one or more consecutive DatePriceData
// records; the union of all ranges for a property+category covers exactly
// the input date set.
type OptimizedRange struct {
	StartDate  time.Time
	EndDate    time.Time // inclusive
	Price      float64
	MinStay    int
	MaxStay    int
	StayLength int
}

// Days returns the number of calendar days the range covers (inclusive).
func (r *OptimizedRange) Days() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}

// PricingPreviewEntry is one day of the bulk calculator's response.
type PricingPreviewEntry struct {
	CheckDate                 string  `json:"check_date"`
	FinalPricePerNight        float64 `json:"final_price_per_night"`
	BasePrice                 float64 `json:"base_price"`
	SeasonalAdjustmentPercent float64 `json:"seasonal_adjustment_percent"`
	LastMinuteDiscountPercent float64 `json:"last_minute_discount_percent"`
	MinPriceEnforced          bool    `json:"min_price_enforced"`
}

// PriceQuote is one row of the single-day calculator's response. The
// calculator returns a list; callers use the first element.
type PriceQuote struct {
	FinalPricePerNight float64 `json:"final_price_per_night"`
	BasePrice          float64 `json:"base_price"`
	SeasonalAdjustment float64 `json:"seasonal_adjustment"`
	LastMinuteDiscount float64 `json:"last_minute_discount"`
	MinPriceEnforced   bool    `json:"min_price_enforced"`
}
