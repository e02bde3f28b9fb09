package services

import (
	"time"

	"lodgify-exporter/models"
)

const (
	// WireDateFormat is the canonical date format of the channel API.
	WireDateFormat = "2006-01-02"

	// DefaultHorizonDays is how far ahead prices are exported by default.
	DefaultHorizonDays = 730
)

// DateChunk is a month-aligned sub-range of the export horizon, sized to
// bound one bulk price request.
type DateChunk struct {
	Start time.Time
	End   time.Time // inclusive
}

// Horizon returns every calendar date from today (local midnight) through
// today+days, both inclusive. Dates are produced by calendar arithmetic so
// leap days are handled correctly.
func Horizon(days int) []time.Time {
	if days <= 0 {
		days = DefaultHorizonDays
	}
	start := startOfDay(time.Now())
	dates := make([]time.Time, 0, days+1)
	for i := 0; i <= days; i++ {
		dates = append(dates, start.AddDate(0, 0, i))
	}
	return dates
}

// CustomRange returns every calendar date from start through end, both
// inclusive. It fails when start falls after end.
func CustomRange(start, end time.Time) ([]time.Time, error) {
	start = startOfDay(start)
	end = startOfDay(end)
	if start.After(end) {
		return nil, &InvalidRangeError{Start: start, End: end}
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

// MonthlyChunks divides [start, end] into contiguous, gapless chunks, each
// spanning at most one calendar month. The first chunk starts at start and
// the last ends at end; interior chunks cover whole months.
func MonthlyChunks(start, end time.Time) []DateChunk {
	start = startOfDay(start)
	end = startOfDay(end)
	if start.After(end) {
		return nil
	}

	var chunks []DateChunk
	for cur := start; !cur.After(end); {
		chunkEnd := endOfMonth(cur)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		chunks = append(chunks, DateChunk{Start: cur, End: chunkEnd})
		cur = chunkEnd.AddDate(0, 0, 1)
	}
	return chunks
}

// DefaultStayCategories returns the fixed partition of the stay-length
// space: short (1-7 nights), medium (8-14) and long (15+), each priced at a
// representative stay length.
func DefaultStayCategories() []models.StayLengthCategory {
	return []models.StayLengthCategory{
		{Name: "short", MinStay: 1, MaxStay: 7, StayLength: 3},
		{Name: "medium", MinStay: 8, MaxStay: 14, StayLength: 10},
		{Name: "long", MinStay: 15, MaxStay: 365, StayLength: 21},
	}
}

// FormatForWire renders a date in the channel API's YYYY-MM-DD form.
func FormatForWire(d time.Time) string {
	return d.Format(WireDateFormat)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}
