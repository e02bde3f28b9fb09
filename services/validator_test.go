package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lodgify-exporter/models"
	"lodgify-exporter/utils"
)

func newTestValidator() *PayloadValidator {
	return NewPayloadValidator(utils.NewLogger(false))
}

func defaultRate(price float64) models.LodgifyRate {
	return models.LodgifyRate{
		IsDefault:                  true,
		PricePerDay:                price,
		MinStay:                    models.DefaultRateMinStay,
		MaxStay:                    models.DefaultRateMaxStay,
		PricePerAdditionalGuest:    models.DefaultPricePerAdditionalGuest,
		AdditionalGuestsStartsFrom: models.DefaultAdditionalGuestsStartsFrom,
	}
}

func datedRate(start, end string, price float64) models.LodgifyRate {
	return models.LodgifyRate{
		StartDate:                  start,
		EndDate:                    end,
		PricePerDay:                price,
		MinStay:                    1,
		MaxStay:                    7,
		PricePerAdditionalGuest:    models.DefaultPricePerAdditionalGuest,
		AdditionalGuestsStartsFrom: models.DefaultAdditionalGuestsStartsFrom,
	}
}

func validPayload() models.LodgifyPayload {
	return models.LodgifyPayload{
		PropertyID: 101,
		RoomTypeID: 201,
		Rates: []models.LodgifyRate{
			defaultRate(95),
			datedRate("2025-07-01", "2025-07-31", 120),
			datedRate("2025-08-01", "2025-08-31", 140),
		},
	}
}

func TestValidatePayloadAccepted(t *testing.T) {
	pv := newTestValidator()
	payload := validPayload()

	result := pv.ValidatePayload(&payload)
	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidatePayloadMissingEndDate(t *testing.T) {
	pv := newTestValidator()
	payload := validPayload()
	payload.Rates[2].EndDate = ""

	result := pv.ValidatePayload(&payload)
	assert.False(t, result.Valid)

	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "rates[2]") && strings.Contains(e, "end_date") {
			found = true
		}
	}
	assert.True(t, found, "expected an error referencing rates[2].end_date, got %v", result.Errors)
}

func TestValidatePayloadDefaultRateWithDates(t *testing.T) {
	pv := newTestValidator()
	payload := validPayload()
	payload.Rates[0].StartDate = "2025-07-01"
	payload.Rates[0].EndDate = "2025-07-31"

	result := pv.ValidatePayload(&payload)
	assert.False(t, result.Valid)
}

func TestValidatePayloadBadIdentifiers(t *testing.T) {
	pv := newTestValidator()
	payload := validPayload()
	payload.PropertyID = 0
	payload.RoomTypeID = -5

	result := pv.ValidatePayload(&payload)
	assert.False(t, result.Valid)
	assert.GreaterOrEqual(t, len(result.Errors), 2)
}

func TestValidatePayloadEmptyRates(t *testing.T) {
	pv := newTestValidator()
	payload := models.LodgifyPayload{PropertyID: 1, RoomTypeID: 2}

	result := pv.ValidatePayload(&payload)
	assert.False(t, result.Valid)
}

func TestValidatePayloadMalformedDate(t *testing.T) {
	pv := newTestValidator()
	payload := validPayload()
	payload.Rates[1].StartDate = "01/07/2025"

	result := pv.ValidatePayload(&payload)
	assert.False(t, result.Valid)
}

func TestValidatePayloadDecimalPrecision(t *testing.T) {
	pv := newTestValidator()

	clean := validPayload()
	clean.Rates[1].PricePerDay = 120.0000001
	result := pv.ValidatePayload(&clean)
	assert.True(t, result.Valid, "float noise below a cent must be tolerated: %v", result.Errors)

	dirty := validPayload()
	dirty.Rates[1].PricePerDay = 120.126
	result = pv.ValidatePayload(&dirty)
	assert.False(t, result.Valid)
}

func TestTwoDefaultRatesIsWarningOnly(t *testing.T) {
	pv := newTestValidator()
	payload := validPayload()
	payload.Rates = append(payload.Rates, defaultRate(80))

	result := pv.ValidatePayload(&payload)
	assert.True(t, result.Valid, "duplicate default rate must stay advisory: %v", result.Errors)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "default rate")
}

func TestValidateBusinessRulesPriceBounds(t *testing.T) {
	pv := newTestValidator()
	payload := validPayload()
	payload.Rates[1].PricePerDay = 5
	payload.Rates[2].PricePerDay = 15000

	warnings := pv.ValidateBusinessRules(&payload)
	assert.Len(t, warnings, 2)
}

func TestValidateBusinessRulesMinStayAboveMaxStay(t *testing.T) {
	pv := newTestValidator()
	payload := validPayload()
	payload.Rates[1].MinStay = 10
	payload.Rates[1].MaxStay = 7

	warnings := pv.ValidateBusinessRules(&payload)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "min_stay")
}

func TestValidateBusinessRulesOverlapSameStayBounds(t *testing.T) {
	pv := newTestValidator()
	payload := models.LodgifyPayload{
		PropertyID: 1,
		RoomTypeID: 2,
		Rates: []models.LodgifyRate{
			defaultRate(95),
			datedRate("2025-07-01", "2025-07-20", 120),
			datedRate("2025-07-15", "2025-07-31", 130),
		},
	}

	warnings := pv.ValidateBusinessRules(&payload)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "overlap")
}

func TestValidateBusinessRulesNoOverlapAcrossStayBands(t *testing.T) {
	pv := newTestValidator()
	other := datedRate("2025-07-10", "2025-07-25", 110)
	other.MinStay = 8
	other.MaxStay = 14
	payload := models.LodgifyPayload{
		PropertyID: 1,
		RoomTypeID: 2,
		Rates: []models.LodgifyRate{
			defaultRate(95),
			datedRate("2025-07-01", "2025-07-31", 120),
			other,
		},
	}

	assert.Empty(t, pv.ValidateBusinessRules(&payload))
}

func TestOverrideInclusionMismatch(t *testing.T) {
	pv := newTestValidator()
	payload := models.LodgifyPayload{
		PropertyID: 1,
		RoomTypeID: 2,
		Rates: []models.LodgifyRate{
			defaultRate(95),
			datedRate("2025-07-01", "2025-07-31", 110),
		},
	}
	overrides := []models.PriceOverride{{
		PropertyID: 1,
		Date:       time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC),
		Price:      120,
		Active:     true,
	}}

	audit := pv.ValidateOverrideInclusion(&payload, overrides)
	assert.False(t, audit.Valid)
	require.Len(t, audit.Issues, 1)
	assert.Contains(t, audit.Issues[0], "2025-07-10")
}

func TestOverrideInclusionMatchWithinTolerance(t *testing.T) {
	pv := newTestValidator()
	payload := models.LodgifyPayload{
		PropertyID: 1,
		RoomTypeID: 2,
		Rates: []models.LodgifyRate{
			defaultRate(95),
			datedRate("2025-07-01", "2025-07-31", 120.005),
		},
	}
	overrides := []models.PriceOverride{{
		Date:   time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC),
		Price:  120,
		Active: true,
	}}

	audit := pv.ValidateOverrideInclusion(&payload, overrides)
	assert.True(t, audit.Valid, "issues: %v", audit.Issues)
}

func TestOverrideInclusionFallsBackToDefaultRate(t *testing.T) {
	pv := newTestValidator()
	payload := models.LodgifyPayload{
		PropertyID: 1,
		RoomTypeID: 2,
		Rates: []models.LodgifyRate{
			defaultRate(95),
			datedRate("2025-07-01", "2025-07-31", 120),
		},
	}
	overrides := []models.PriceOverride{
		// outside every dated span, matches the default rate
		{Date: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), Price: 95, Active: true},
		// outside every dated span, does not match the default rate
		{Date: time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), Price: 150, Active: true},
	}

	audit := pv.ValidateOverrideInclusion(&payload, overrides)
	assert.False(t, audit.Valid)
	require.Len(t, audit.Issues, 1)
	assert.Contains(t, audit.Issues[0], "2025-10-01")
}

func TestOverrideInclusionIgnoresInactive(t *testing.T) {
	pv := newTestValidator()
	payload := validPayload()
	overrides := []models.PriceOverride{{
		Date:   time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC),
		Price:  999,
		Active: false,
	}}

	audit := pv.ValidateOverrideInclusion(&payload, overrides)
	assert.True(t, audit.Valid)
}

func TestValidateCompletePayloadAggregates(t *testing.T) {
	pv := newTestValidator()

	good := validPayload()
	bad := validPayload()
	bad.PropertyID = 999
	bad.Rates[1].EndDate = ""

	summary := pv.ValidateCompletePayload([]models.LodgifyPayload{good, bad})
	assert.False(t, summary.Valid)
	assert.Equal(t, 2, summary.TotalPayloads)
	assert.Equal(t, 1, summary.ValidPayloads)
	assert.Equal(t, 1, summary.InvalidPayloads)
	require.NotEmpty(t, summary.Errors)
	assert.Contains(t, summary.Errors[0], "property 999")
}

func TestValidateCompletePayloadAllValid(t *testing.T) {
	pv := newTestValidator()
	summary := pv.ValidateCompletePayload([]models.LodgifyPayload{validPayload()})
	assert.True(t, summary.Valid)
	assert.Empty(t, summary.Warnings)
}
