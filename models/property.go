package models

import "time"

// Property is one rentable unit from the catalog, carrying the identifiers
// the Lodgify channel needs plus the base nightly price used for the
// default rate.
type Property struct {
	ID                int64
	Name              string
	LodgifyPropertyID int64
	LodgifyRoomTypeID int64
	BasePricePerDay   float64
	Active            bool
	CreatedAt         time.Time
}

// HasLodgifyIDs reports whether the property carries the channel identifiers
// required for export. Properties without them are skipped defensively.
func (p *Property) HasLodgifyIDs() bool {
	return p.LodgifyPropertyID > 0 && p.LodgifyRoomTypeID > 0
}

// PriceOverride is a manually pinned nightly price for one property+date.
// Overrides take precedence over computed pricing and must survive range
// optimization intact.
type PriceOverride struct {
	ID         int64
	PropertyID int64
	Date       time.Time
	Price      float64
	Reason     string
	Active     bool
}
