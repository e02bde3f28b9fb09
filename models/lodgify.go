package models

// LodgifyRate is one rate line in the Lodgify channel API's wire format.
// Exactly one rate per property must be the default: it carries no dates
// and acts as the fallback price. Every other rate carries both dates.
type LodgifyRate struct {
	IsDefault                  bool    `json:"is_default"`
	StartDate                  string  `json:"start_date,omitempty" validate:"omitempty,wire_date"`
	EndDate                    string  `json:"end_date,omitempty"   validate:"omitempty,wire_date"`
	PricePerDay                float64 `json:"price_per_day"        validate:"gt=0"`
	MinStay                    int     `json:"min_stay"             validate:"gte=0"`
	MaxStay                    int     `json:"max_stay"             validate:"gte=0"`
	PricePerAdditionalGuest    float64 `json:"price_per_additional_guest"    validate:"gte=0"`
	AdditionalGuestsStartsFrom int     `json:"additional_guests_starts_from" validate:"gte=0"`
}

// LodgifyPayload is the root export unit: the full rate schedule for one
// property, ready to be synced to the booking channel.
type LodgifyPayload struct {
	PropertyID int64         `json:"property_id" validate:"gt=0"`
	RoomTypeID int64         `json:"room_type_id" validate:"gt=0"`
	Rates      []LodgifyRate `json:"rates" validate:"min=1,dive"`
}

// DefaultRate returns the payload's default rate, or nil if none exists.
func (p *LodgifyPayload) DefaultRate() *LodgifyRate {
	for i := range p.Rates {
		if p.Rates[i].IsDefault {
			return &p.Rates[i]
		}
	}
	return nil
}

// DatedRates returns the non-default (dated) rates in payload order.
func (p *LodgifyPayload) DatedRates() []LodgifyRate {
	rates := make([]LodgifyRate, 0, len(p.Rates))
	for _, r := range p.Rates {
		if !r.IsDefault {
			rates = append(rates, r)
		}
	}
	return rates
}

// Guest-pricing defaults applied to every default rate. The channel
// requires these fields even when guest pricing is unused.
const (
	DefaultRateMinStay                = 2
	DefaultRateMaxStay                = 6
	DefaultPricePerAdditionalGuest    = 5
	DefaultAdditionalGuestsStartsFrom = 2
)
