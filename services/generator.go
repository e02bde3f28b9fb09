package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"lodgify-exporter/models"
	"lodgify-exporter/utils"
)

// GenerateOptions controls one generation run.
type GenerateOptions struct {
	// PropertyIDs restricts the run to the given catalog ids; empty means
	// every exportable property.
	PropertyIDs []int64

	// StartDate/EndDate select a custom range. When nil the run covers the
	// HorizonDays horizon from today.
	StartDate *time.Time
	EndDate   *time.Time

	// HorizonDays overrides the default 730-day horizon. Ignored when a
	// custom range is set.
	HorizonDays int

	// StayCategories overrides the default 3-band partition.
	StayCategories []models.StayLengthCategory

	IncludeDefaultRate bool
	OptimizeRanges     bool

	// MinReductionPct is the compression the optimizer must reach before
	// its output is preferred over per-day entries. Zero means the default
	// of 0.6.
	MinReductionPct float64
}

// ProgressFunc receives transient progress snapshots during a run.
type ProgressFunc func(models.GenerationProgress)

// GenerateResult is the outcome of one successful run: the assembled
// payloads (one per property, aligned with Properties) and the run summary.
type GenerateResult struct {
	Payloads   []models.LodgifyPayload
	Properties []models.Property
	Statistics models.GenerationStatistics
}

// Generator builds channel-ready rate schedules from the property catalog
// and the remote price calculator. One Generate call owns its accumulator
// exclusively; callers must not run two Generate calls concurrently on the
// same Generator.
type Generator struct {
	catalog PropertyCatalog
	prices  PriceSource
	logger  *utils.Logger
	limiter *utils.RateLimiter
	retry   *utils.RetryConfig
}

// NewGenerator creates a Generator. rateLimitMs paces degraded per-day
// calls; maxRetries bounds bulk chunk retries before falling back.
func NewGenerator(catalog PropertyCatalog, prices PriceSource, logger *utils.Logger, rateLimitMs, maxRetries int) *Generator {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Generator{
		catalog: catalog,
		prices:  prices,
		logger:  logger,
		limiter: utils.NewRateLimiter(rateLimitMs),
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

// Generate runs the full pipeline: resolve properties, price every
// property × stay category × month chunk, optimize, and assemble one
// payload per property. Properties are processed strictly sequentially;
// cancellation is sampled at property and chunk boundaries.
func (g *Generator) Generate(ctx context.Context, opts GenerateOptions, onProgress ProgressFunc) (*GenerateResult, error) {
	start := time.Now()
	stats := models.GenerationStatistics{RunID: uuid.NewString()}

	emit := func(p models.GenerationProgress) {
		if onProgress != nil {
			p.TimeElapsed = time.Since(start)
			onProgress(p)
		}
	}
	fail := func(err error) (*GenerateResult, error) {
		emit(models.GenerationProgress{Phase: models.PhaseError})
		return nil, err
	}

	emit(models.GenerationProgress{Phase: models.PhaseLoading})

	properties, err := g.resolveProperties(ctx, opts.PropertyIDs)
	if err != nil {
		return fail(err)
	}

	dates, err := g.resolveDates(opts)
	if err != nil {
		return fail(err)
	}
	categories := opts.StayCategories
	if len(categories) == 0 {
		categories = DefaultStayCategories()
	}

	g.logger.Info("[generator] run %s: %d properties, %d dates, %d stay categories",
		stats.RunID, len(properties), len(dates), len(categories))

	stats.TotalProperties = len(properties)
	stats.OptimizationApplied = opts.OptimizeRanges

	payloads := make([]models.LodgifyPayload, 0, len(properties))
	for i, prop := range properties {
		if err := ctx.Err(); err != nil {
			return fail(ErrGenerationCancelled)
		}

		emit(models.GenerationProgress{
			Phase:               models.PhaseCalculating,
			CurrentProperty:     prop.Name,
			TotalProperties:     len(properties),
			CompletedProperties: i,
			Percentage:          float64(i) / float64(len(properties)) * 100,
			EstimatedRemaining:  estimateRemaining(start, i, len(properties)),
		})

		payload, err := g.buildPropertyPayload(ctx, prop, dates, categories, opts, &stats)
		if err != nil {
			if errors.Is(err, ErrGenerationCancelled) || errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				return fail(ErrGenerationCancelled)
			}
			return fail(&PropertyGenerationError{PropertyID: prop.ID, Err: err})
		}
		payloads = append(payloads, *payload)
	}

	stats.GenerationTime = time.Since(start)
	if stats.EntriesBeforeOptimization > 0 {
		stats.OptimizationReductionPct = float64(stats.EntriesBeforeOptimization-stats.EntriesAfterOptimization) /
			float64(stats.EntriesBeforeOptimization) * 100
	}

	emit(models.GenerationProgress{
		Phase:               models.PhaseComplete,
		TotalProperties:     len(properties),
		CompletedProperties: len(properties),
		Percentage:          100,
	})
	g.logger.Info("[generator] run %s complete: %d payloads, %d rates, %.1f%% compression in %v",
		stats.RunID, len(payloads), stats.TotalRatesGenerated, stats.OptimizationReductionPct, stats.GenerationTime)

	return &GenerateResult{Payloads: payloads, Properties: properties, Statistics: stats}, nil
}

// resolveProperties loads the catalog, drops records missing channel
// identifiers, and applies the requested id filter. Requesting an id that
// is not in the resolved set is fatal.
func (g *Generator) resolveProperties(ctx context.Context, requested []int64) ([]models.Property, error) {
	all, err := g.catalog.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading property catalog: %w", err)
	}

	exportable := make([]models.Property, 0, len(all))
	for _, p := range all {
		if !p.HasLodgifyIDs() {
			g.logger.Warn("[generator] skipping property %d (%s): missing Lodgify identifiers", p.ID, p.Name)
			continue
		}
		exportable = append(exportable, p)
	}

	if len(requested) == 0 {
		return exportable, nil
	}

	byID := make(map[int64]models.Property, len(exportable))
	for _, p := range exportable {
		byID[p.ID] = p
	}

	var missing []int64
	selected := make([]models.Property, 0, len(requested))
	for _, id := range requested {
		p, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		selected = append(selected, p)
	}
	if len(missing) > 0 {
		return nil, &PropertiesNotFoundError{MissingIDs: missing}
	}
	return selected, nil
}

func (g *Generator) resolveDates(opts GenerateOptions) ([]time.Time, error) {
	if opts.StartDate != nil && opts.EndDate != nil {
		return CustomRange(*opts.StartDate, *opts.EndDate)
	}
	days := opts.HorizonDays
	if days <= 0 {
		days = DefaultHorizonDays
	}
	return Horizon(days), nil
}

// buildPropertyPayload assembles the full rate schedule for one property.
// Either it succeeds completely or the run fails; partial payloads are
// never returned.
func (g *Generator) buildPropertyPayload(
	ctx context.Context,
	prop models.Property,
	dates []time.Time,
	categories []models.StayLengthCategory,
	opts GenerateOptions,
	stats *models.GenerationStatistics,
) (*models.LodgifyPayload, error) {
	rates := make([]models.LodgifyRate, 0, 64)

	if opts.IncludeDefaultRate {
		rates = append(rates, models.LodgifyRate{
			IsDefault:                  true,
			PricePerDay:                RoundCents(prop.BasePricePerDay),
			MinStay:                    models.DefaultRateMinStay,
			MaxStay:                    models.DefaultRateMaxStay,
			PricePerAdditionalGuest:    models.DefaultPricePerAdditionalGuest,
			AdditionalGuestsStartsFrom: models.DefaultAdditionalGuestsStartsFrom,
		})
	}

	for _, cat := range categories {
		records, err := g.collectPrices(ctx, prop, dates, cat)
		if err != nil {
			return nil, err
		}
		stats.TotalDates += len(records)
		stats.EntriesBeforeOptimization += len(records)

		ranges := g.chooseRanges(prop, cat, records, opts)
		stats.EntriesAfterOptimization += len(ranges)

		for _, r := range ranges {
			rates = append(rates, models.LodgifyRate{
				IsDefault:                  false,
				StartDate:                  FormatForWire(r.StartDate),
				EndDate:                    FormatForWire(r.EndDate),
				PricePerDay:                RoundCents(r.Price),
				MinStay:                    r.MinStay,
				MaxStay:                    r.MaxStay,
				PricePerAdditionalGuest:    models.DefaultPricePerAdditionalGuest,
				AdditionalGuestsStartsFrom: models.DefaultAdditionalGuestsStartsFrom,
			})
		}
	}

	stats.TotalRatesGenerated += len(rates)
	return &models.LodgifyPayload{
		PropertyID: prop.LodgifyPropertyID,
		RoomTypeID: prop.LodgifyRoomTypeID,
		Rates:      rates,
	}, nil
}

// chooseRanges applies the optimize → validate → threshold chain. The
// optimizer is best-effort compression: any failure in the chain falls back
// to per-day entries instead of failing the run.
func (g *Generator) chooseRanges(prop models.Property, cat models.StayLengthCategory, records []models.DatePriceData, opts GenerateOptions) []models.OptimizedRange {
	if !opts.OptimizeRanges {
		return ToIndividualEntries(records)
	}

	optimized := Optimize(records)
	if check := ValidateOptimization(records, optimized); !check.Valid {
		g.logger.Warn("[generator] property %d %s: optimization dropped data (%d issues), using per-day entries",
			prop.ID, cat.Name, len(check.Errors))
		return ToIndividualEntries(records)
	}
	if !MeetsThreshold(len(records), len(optimized), opts.MinReductionPct) {
		g.logger.Debug("[generator] property %d %s: compression %d→%d below threshold, using per-day entries",
			prop.ID, cat.Name, len(records), len(optimized))
		return ToIndividualEntries(records)
	}
	return optimized
}

// collectPrices fetches one stay category's nightly prices chunk by chunk.
// A failed bulk chunk degrades to per-day retrieval; a day that still fails
// is logged and omitted. Partial data for a chunk is acceptable.
func (g *Generator) collectPrices(ctx context.Context, prop models.Property, dates []time.Time, cat models.StayLengthCategory) ([]models.DatePriceData, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	chunks := MonthlyChunks(dates[0], dates[len(dates)-1])
	records := make([]models.DatePriceData, 0, len(dates))

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, ErrGenerationCancelled
		}

		var entries []models.PricingPreviewEntry
		err := g.retry.Do(ctx, "bulk pricing preview", func() error {
			var callErr error
			entries, callErr = g.prices.GetPricingPreview(ctx,
				prop.ID, FormatForWire(chunk.Start), FormatForWire(chunk.End), cat.StayLength)
			return callErr
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrGenerationCancelled
			}
			g.logger.Warn("[generator] property %d %s: chunk %s..%s bulk lookup failed (%v), degrading to per-day",
				prop.ID, cat.Name, FormatForWire(chunk.Start), FormatForWire(chunk.End), err)
			records = append(records, g.fallbackChunk(ctx, prop, chunk, cat)...)
			continue
		}

		records = append(records, g.recordsFromPreview(prop, cat, entries)...)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

// fallbackChunk prices a failed chunk one day at a time, paced by the rate
// limiter so a bad month cannot hammer the calculator. Individual day
// failures are logged and skipped.
func (g *Generator) fallbackChunk(ctx context.Context, prop models.Property, chunk DateChunk, cat models.StayLengthCategory) []models.DatePriceData {
	var records []models.DatePriceData

	for d := chunk.Start; !d.After(chunk.End); d = d.AddDate(0, 0, 1) {
		if err := g.limiter.Wait(ctx); err != nil {
			return records
		}

		dateStr := FormatForWire(d)
		quotes, err := g.prices.CalculatePrice(ctx, prop.ID, dateStr, cat.StayLength)
		if err != nil {
			g.logger.Warn("[generator] property %d %s: per-day lookup failed for %s: %v",
				prop.ID, cat.Name, dateStr, err)
			continue
		}
		if len(quotes) == 0 {
			g.logger.Debug("[generator] property %d %s: no quote for %s", prop.ID, cat.Name, dateStr)
			continue
		}

		q := quotes[0]
		records = append(records, models.DatePriceData{
			Date:                      asWireDate(d),
			Price:                     q.FinalPricePerNight,
			MinStay:                   cat.MinStay,
			MaxStay:                   cat.MaxStay,
			StayLength:                cat.StayLength,
			BasePrice:                 q.BasePrice,
			SeasonalAdjustmentPercent: q.SeasonalAdjustment,
			LastMinuteDiscountPercent: q.LastMinuteDiscount,
			MinPriceEnforced:          q.MinPriceEnforced,
		})
	}
	return records
}

// recordsFromPreview converts a bulk response into day records, dropping
// rows with unparsable dates and duplicate dates within the chunk.
func (g *Generator) recordsFromPreview(prop models.Property, cat models.StayLengthCategory, entries []models.PricingPreviewEntry) []models.DatePriceData {
	records := make([]models.DatePriceData, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		d, err := time.Parse(WireDateFormat, e.CheckDate)
		if err != nil {
			g.logger.Warn("[generator] property %d %s: dropping row with bad check_date %q",
				prop.ID, cat.Name, e.CheckDate)
			continue
		}
		if _, dup := seen[e.CheckDate]; dup {
			g.logger.Debug("[generator] property %d %s: duplicate check_date %s skipped",
				prop.ID, cat.Name, e.CheckDate)
			continue
		}
		seen[e.CheckDate] = struct{}{}

		records = append(records, models.DatePriceData{
			Date:                      d,
			Price:                     e.FinalPricePerNight,
			MinStay:                   cat.MinStay,
			MaxStay:                   cat.MaxStay,
			StayLength:                cat.StayLength,
			BasePrice:                 e.BasePrice,
			SeasonalAdjustmentPercent: e.SeasonalAdjustmentPercent,
			LastMinuteDiscountPercent: e.LastMinuteDiscountPercent,
			MinPriceEnforced:          e.MinPriceEnforced,
		})
	}
	return records
}

// asWireDate normalizes a date to UTC midnight so records built from bulk
// responses (parsed from wire strings) and from per-day fallback compare
// equal and can merge across chunk boundaries.
func asWireDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func estimateRemaining(start time.Time, completed, total int) time.Duration {
	if completed == 0 || total == 0 {
		return 0
	}
	perProperty := time.Since(start) / time.Duration(completed)
	return perProperty * time.Duration(total-completed)
}
