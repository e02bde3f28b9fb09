package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHorizonLengthAndOrder(t *testing.T) {
	dates := Horizon(30)
	require.Len(t, dates, 31)

	for i := 1; i < len(dates); i++ {
		assert.Equal(t, dates[i-1].AddDate(0, 0, 1), dates[i],
			"dates must be consecutive calendar days")
	}
}

func TestHorizonDefaultsTo730Days(t *testing.T) {
	dates := Horizon(0)
	assert.Len(t, dates, DefaultHorizonDays+1)
}

func TestCustomRangeInclusive(t *testing.T) {
	dates, err := CustomRange(date(2025, time.July, 1), date(2025, time.July, 5))
	require.NoError(t, err)
	require.Len(t, dates, 5)
	assert.Equal(t, date(2025, time.July, 1), dates[0])
	assert.Equal(t, date(2025, time.July, 5), dates[4])
}

func TestCustomRangeSingleDay(t *testing.T) {
	dates, err := CustomRange(date(2025, time.July, 1), date(2025, time.July, 1))
	require.NoError(t, err)
	assert.Len(t, dates, 1)
}

func TestCustomRangeInvalid(t *testing.T) {
	_, err := CustomRange(date(2025, time.July, 5), date(2025, time.July, 1))
	require.Error(t, err)

	var invalid *InvalidRangeError
	assert.True(t, errors.As(err, &invalid))
}

func TestCustomRangeCoversLeapDay(t *testing.T) {
	dates, err := CustomRange(date(2024, time.February, 27), date(2024, time.March, 1))
	require.NoError(t, err)
	require.Len(t, dates, 4)
	assert.Equal(t, date(2024, time.February, 29), dates[2])
}

func TestMonthlyChunksContiguous(t *testing.T) {
	start := date(2025, time.January, 15)
	end := date(2025, time.April, 10)
	chunks := MonthlyChunks(start, end)
	require.Len(t, chunks, 4)

	assert.Equal(t, start, chunks[0].Start)
	assert.Equal(t, date(2025, time.January, 31), chunks[0].End)
	assert.Equal(t, date(2025, time.February, 1), chunks[1].Start)
	assert.Equal(t, date(2025, time.February, 28), chunks[1].End)
	assert.Equal(t, end, chunks[3].End)

	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].End.AddDate(0, 0, 1), chunks[i].Start,
			"chunks must be contiguous and gapless")
	}
}

func TestMonthlyChunksLeapFebruary(t *testing.T) {
	chunks := MonthlyChunks(date(2024, time.February, 1), date(2024, time.March, 5))
	require.Len(t, chunks, 2)
	assert.Equal(t, date(2024, time.February, 29), chunks[0].End)
	assert.Equal(t, date(2024, time.March, 1), chunks[1].Start)
}

func TestMonthlyChunksWithinSingleMonth(t *testing.T) {
	chunks := MonthlyChunks(date(2025, time.June, 5), date(2025, time.June, 20))
	require.Len(t, chunks, 1)
	assert.Equal(t, date(2025, time.June, 5), chunks[0].Start)
	assert.Equal(t, date(2025, time.June, 20), chunks[0].End)
}

func TestDefaultStayCategories(t *testing.T) {
	cats := DefaultStayCategories()
	require.Len(t, cats, 3)
	assert.Equal(t, 1, cats[0].MinStay)
	assert.Equal(t, 7, cats[0].MaxStay)
	assert.Equal(t, 8, cats[1].MinStay)
	assert.Equal(t, 14, cats[1].MaxStay)
	assert.Equal(t, 15, cats[2].MinStay)

	for _, c := range cats {
		assert.GreaterOrEqual(t, c.StayLength, c.MinStay,
			"representative stay length must sit inside its band")
		assert.LessOrEqual(t, c.StayLength, c.MaxStay)
	}
}

func TestFormatForWire(t *testing.T) {
	assert.Equal(t, "2025-07-04", FormatForWire(date(2025, time.July, 4)))
	assert.Equal(t, "2024-02-29", FormatForWire(date(2024, time.February, 29)))
}
