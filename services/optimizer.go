package services

import (
	"fmt"
	"math"

	"lodgify-exporter/models"
)

// DefaultMinReduction is the compression ratio an optimized range set must
// reach before it is preferred over per-day entries.
const DefaultMinReduction = 0.6

// RoundCents rounds a price to 2 decimal places. All price equality in the
// pipeline is decided after this rounding, so sub-cent floating-point noise
// never prevents a merge.
func RoundCents(price float64) float64 {
	return math.Round(price*100) / 100
}

// Optimize merges consecutive day records with identical price and stay
// terms into inclusive date ranges. Records must be pre-sorted by date; the
// merge is a single linear pass.
func Optimize(records []models.DatePriceData) []models.OptimizedRange {
	ranges := make([]models.OptimizedRange, 0, len(records))
	var cur *models.OptimizedRange

	for _, rec := range records {
		price := RoundCents(rec.Price)
		if cur != nil && extends(cur, rec, price) {
			cur.EndDate = rec.Date
			continue
		}
		if cur != nil {
			ranges = append(ranges, *cur)
		}
		cur = &models.OptimizedRange{
			StartDate:  rec.Date,
			EndDate:    rec.Date,
			Price:      price,
			MinStay:    rec.MinStay,
			MaxStay:    rec.MaxStay,
			StayLength: rec.StayLength,
		}
	}
	if cur != nil {
		ranges = append(ranges, *cur)
	}
	return ranges
}

// extends reports whether rec continues cur: same price (rounded to cents),
// same stay terms, and dated the calendar day right after cur's end.
func extends(cur *models.OptimizedRange, rec models.DatePriceData, price float64) bool {
	return price == cur.Price &&
		rec.MinStay == cur.MinStay &&
		rec.MaxStay == cur.MaxStay &&
		rec.StayLength == cur.StayLength &&
		rec.Date.Equal(cur.EndDate.AddDate(0, 0, 1))
}

// OptimizationCheck is the outcome of re-expanding an optimized range set
// against its source records.
type OptimizationCheck struct {
	Valid  bool
	Errors []string
}

// ValidateOptimization expands every optimized range back into calendar
// days and compares the result, as a set, with the original records. Any
// date present on one side only is reported. This is the correctness gate
// run before an optimized form is trusted.
func ValidateOptimization(original []models.DatePriceData, optimized []models.OptimizedRange) OptimizationCheck {
	originalDates := make(map[string]struct{}, len(original))
	for _, rec := range original {
		originalDates[FormatForWire(rec.Date)] = struct{}{}
	}

	expanded := make(map[string]int, len(original))
	for _, r := range optimized {
		for d := r.StartDate; !d.After(r.EndDate); d = d.AddDate(0, 0, 1) {
			expanded[FormatForWire(d)]++
		}
	}

	var errs []string
	for dateStr := range originalDates {
		if _, ok := expanded[dateStr]; !ok {
			errs = append(errs, fmt.Sprintf("date %s missing from optimized ranges", dateStr))
		}
	}
	for dateStr, count := range expanded {
		if _, ok := originalDates[dateStr]; !ok {
			errs = append(errs, fmt.Sprintf("date %s not present in original records", dateStr))
		} else if count > 1 {
			errs = append(errs, fmt.Sprintf("date %s covered by %d overlapping ranges", dateStr, count))
		}
	}

	return OptimizationCheck{Valid: len(errs) == 0, Errors: errs}
}

// MeetsThreshold reports whether the optimized form compresses the input by
// at least minReduction. An empty input trivially passes.
func MeetsThreshold(originalCount, optimizedCount int, minReduction float64) bool {
	if originalCount == 0 {
		return true
	}
	if minReduction <= 0 {
		minReduction = DefaultMinReduction
	}
	reduction := float64(originalCount-optimizedCount) / float64(originalCount)
	return reduction >= minReduction
}

// ToIndividualEntries converts day records 1:1 into single-day ranges. It
// is the fallback representation used whenever optimization is disabled,
// fails validation, or misses the compression threshold.
func ToIndividualEntries(records []models.DatePriceData) []models.OptimizedRange {
	ranges := make([]models.OptimizedRange, 0, len(records))
	for _, rec := range records {
		ranges = append(ranges, models.OptimizedRange{
			StartDate:  rec.Date,
			EndDate:    rec.Date,
			Price:      RoundCents(rec.Price),
			MinStay:    rec.MinStay,
			MaxStay:    rec.MaxStay,
			StayLength: rec.StayLength,
		})
	}
	return ranges
}
