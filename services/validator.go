package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"lodgify-exporter/models"
	"lodgify-exporter/utils"
)

// Sanity bounds for nightly prices; rates outside them are flagged as
// warnings, never errors.
const (
	MinSanePrice = 10
	MaxSanePrice = 10000
)

// overrideTolerance is the largest price difference still considered a
// match when auditing overrides against assembled rates.
const overrideTolerance = 0.01

// ValidationResult holds one payload's structural errors and business-rule
// warnings. Only errors make a payload invalid.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// BatchValidationSummary aggregates validation over a whole export batch.
type BatchValidationSummary struct {
	Valid           bool
	TotalPayloads   int
	ValidPayloads   int
	InvalidPayloads int
	Errors          []string
	Warnings        []string
}

// OverrideAudit reports whether every active manual override survived range
// optimization into the assembled payload.
type OverrideAudit struct {
	Valid  bool
	Issues []string
}

// PayloadValidator checks assembled payloads against the channel API's
// structural contract and the exporter's business rules.
type PayloadValidator struct {
	validate *validator.Validate
	logger   *utils.Logger
}

// NewPayloadValidator builds a validator with the wire-date rule registered.
func NewPayloadValidator(logger *utils.Logger) *PayloadValidator {
	v := validator.New()
	_ = v.RegisterValidation("wire_date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(WireDateFormat, fl.Field().String())
		return err == nil
	})
	return &PayloadValidator{validate: v, logger: logger}
}

// ValidatePayload runs the structural layer followed by the business-rule
// layer. Structural violations are errors; business-rule findings are
// warnings and never invalidate a payload.
func (pv *PayloadValidator) ValidatePayload(payload *models.LodgifyPayload) ValidationResult {
	result := ValidationResult{
		Errors:   pv.structuralErrors(payload),
		Warnings: pv.ValidateBusinessRules(payload),
	}
	result.Valid = len(result.Errors) == 0
	return result
}

// structuralErrors checks the payload against the channel contract:
// identifier positivity, field presence, the default/dated rate rule, date
// format and monetary precision.
func (pv *PayloadValidator) structuralErrors(payload *models.LodgifyPayload) []string {
	var errs []string

	if err := pv.validate.Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Sprintf("%s: failed rule %q", wirePath(fe), fe.Tag()))
			}
		} else {
			errs = append(errs, fmt.Sprintf("payload: %v", err))
		}
	}

	for i, rate := range payload.Rates {
		path := fmt.Sprintf("rates[%d]", i)

		if rate.IsDefault {
			if rate.StartDate != "" || rate.EndDate != "" {
				errs = append(errs, path+": default rate must not carry start_date/end_date")
			}
		} else {
			if rate.StartDate == "" {
				errs = append(errs, path+".start_date: required for non-default rate")
			}
			if rate.EndDate == "" {
				errs = append(errs, path+".end_date: required for non-default rate")
			}
		}

		if !hasCleanCents(rate.PricePerDay) {
			errs = append(errs, fmt.Sprintf("%s.price_per_day: %v has more than 2 decimal places", path, rate.PricePerDay))
		}
		if !hasCleanCents(rate.PricePerAdditionalGuest) {
			errs = append(errs, fmt.Sprintf("%s.price_per_additional_guest: %v has more than 2 decimal places", path, rate.PricePerAdditionalGuest))
		}
	}

	return errs
}

// ValidateBusinessRules applies the advisory rules: exactly one default rate,
// sane price bounds, min_stay <= max_stay, and no overlapping date spans
// among dated rates sharing identical stay bounds.
func (pv *PayloadValidator) ValidateBusinessRules(payload *models.LodgifyPayload) []string {
	var warnings []string

	defaults := 0
	for _, r := range payload.Rates {
		if r.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		warnings = append(warnings, fmt.Sprintf("expected exactly one default rate, found %d", defaults))
	}

	type span struct {
		index      int
		start, end time.Time
		minStay    int
		maxStay    int
	}
	var spans []span

	for i, r := range payload.Rates {
		path := fmt.Sprintf("rates[%d]", i)

		if r.PricePerDay < MinSanePrice || r.PricePerDay > MaxSanePrice {
			warnings = append(warnings, fmt.Sprintf("%s: price %.2f outside sane bounds [%d, %d]",
				path, r.PricePerDay, MinSanePrice, MaxSanePrice))
		}
		if r.MinStay > r.MaxStay {
			warnings = append(warnings, fmt.Sprintf("%s: min_stay %d exceeds max_stay %d", path, r.MinStay, r.MaxStay))
		}

		if r.IsDefault {
			continue
		}
		start, err1 := time.Parse(WireDateFormat, r.StartDate)
		end, err2 := time.Parse(WireDateFormat, r.EndDate)
		if err1 != nil || err2 != nil {
			continue // unparsable dates are a structural problem, not ours
		}
		spans = append(spans, span{index: i, start: start, end: end, minStay: r.MinStay, maxStay: r.MaxStay})
	}

	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			a, b := spans[i], spans[j]
			if a.minStay != b.minStay || a.maxStay != b.maxStay {
				continue
			}
			if !a.start.After(b.end) && !b.start.After(a.end) {
				warnings = append(warnings, fmt.Sprintf(
					"rates[%d] and rates[%d] overlap with identical stay bounds %d-%d",
					a.index, b.index, a.minStay, a.maxStay))
			}
		}
	}

	return warnings
}

// ValidateOverrideInclusion audits that every active override is reflected
// in the payload. A date inside a dated rate's span must match that rate's
// price; a date outside every dated span must match the default rate. This
// catches an optimizer merging an overridden day into a neighboring range.
func (pv *PayloadValidator) ValidateOverrideInclusion(payload *models.LodgifyPayload, overrides []models.PriceOverride) OverrideAudit {
	audit := OverrideAudit{Valid: true}
	defaultRate := payload.DefaultRate()

	for _, o := range overrides {
		if !o.Active {
			continue
		}
		dateStr := FormatForWire(o.Date)

		covering := pv.rateCovering(payload, o.Date)
		switch {
		case covering != nil:
			if math.Abs(covering.PricePerDay-o.Price) > overrideTolerance {
				audit.Issues = append(audit.Issues, fmt.Sprintf(
					"override %s: expected %.2f but covering rate prices at %.2f",
					dateStr, o.Price, covering.PricePerDay))
			}
		case defaultRate != nil:
			if math.Abs(defaultRate.PricePerDay-o.Price) > overrideTolerance {
				audit.Issues = append(audit.Issues, fmt.Sprintf(
					"override %s: no dated rate covers it and default rate prices at %.2f, expected %.2f",
					dateStr, defaultRate.PricePerDay, o.Price))
			}
		default:
			audit.Issues = append(audit.Issues, fmt.Sprintf(
				"override %s: no rate covers it and payload has no default rate", dateStr))
		}
	}

	audit.Valid = len(audit.Issues) == 0
	return audit
}

// rateCovering returns the first dated rate whose span contains d, or nil.
func (pv *PayloadValidator) rateCovering(payload *models.LodgifyPayload, d time.Time) *models.LodgifyRate {
	target := FormatForWire(d)
	for i := range payload.Rates {
		r := &payload.Rates[i]
		if r.IsDefault {
			continue
		}
		if r.StartDate <= target && target <= r.EndDate {
			return r
		}
	}
	return nil
}

// ValidateCompletePayload runs structural and business validation over a
// whole batch and aggregates the findings per property.
func (pv *PayloadValidator) ValidateCompletePayload(payloads []models.LodgifyPayload) BatchValidationSummary {
	summary := BatchValidationSummary{TotalPayloads: len(payloads)}

	for i := range payloads {
		p := &payloads[i]
		result := pv.ValidatePayload(p)

		if result.Valid {
			summary.ValidPayloads++
		} else {
			summary.InvalidPayloads++
		}
		for _, e := range result.Errors {
			summary.Errors = append(summary.Errors, fmt.Sprintf("property %d: %s", p.PropertyID, e))
		}
		for _, w := range result.Warnings {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("property %d: %s", p.PropertyID, w))
		}
	}

	summary.Valid = summary.InvalidPayloads == 0
	if pv.logger != nil {
		pv.logger.Info("[validator] batch: %d/%d payloads valid, %d errors, %d warnings",
			summary.ValidPayloads, summary.TotalPayloads, len(summary.Errors), len(summary.Warnings))
	}
	return summary
}

// hasCleanCents reports whether a monetary value resolves to at most 2
// decimal places once floating-point noise is accounted for: anything
// beyond the cents that is zero or a sub-5 trailing remainder is clean.
func hasCleanCents(v float64) bool {
	scaled := math.Abs(v) * 100
	// a whole number of cents up to representation noise is always clean;
	// this also covers clean values that scale to just under an integer,
	// like 110.99 → 11098.999999999998
	if math.Abs(scaled-math.Round(scaled)) < 1e-6 {
		return true
	}
	remainder := scaled - math.Floor(scaled)
	return remainder < 0.5
}

// wirePath translates a validator namespace like
// "LodgifyPayload.Rates[2].EndDate" into the wire-level "rates[2].end_date".
func wirePath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}

	var out strings.Builder
	for i := 0; i < len(ns); i++ {
		c := ns[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 && ns[i-1] != '.' && ns[i-1] != '[' {
				out.WriteByte('_')
			}
			out.WriteByte(c - 'A' + 'a')
			continue
		}
		out.WriteByte(c)
	}
	return out.String()
}
