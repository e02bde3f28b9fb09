package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"lodgify-exporter/client"
	"lodgify-exporter/config"
	"lodgify-exporter/models"
	"lodgify-exporter/services"
	"lodgify-exporter/storage"
	"lodgify-exporter/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Verbose)

	logger.Info("=== Lodgify Pricing Export starting ===")
	logger.Info("Config — horizon: %dd | optimize: %v (min %.0f%%) | rate: %dms | retries: %d",
		cfg.HorizonDays, cfg.OptimizeRanges, cfg.MinReductionPct*100, cfg.RateLimitMs, cfg.MaxRetries)

	catalog, err := storage.NewPostgresCatalog(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer catalog.Close()

	pricing := client.NewPricingClient(cfg.PricingAPIBaseURL, cfg.PricingAPIKey, cfg.RequestTimeoutMs, logger)
	generator := services.NewGenerator(catalog, pricing, logger, cfg.RateLimitMs, cfg.MaxRetries)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := services.GenerateOptions{
		HorizonDays:        cfg.HorizonDays,
		IncludeDefaultRate: cfg.IncludeDefaultRate,
		OptimizeRanges:     cfg.OptimizeRanges,
		MinReductionPct:    cfg.MinReductionPct,
	}

	startedAt := time.Now()
	result, err := generator.Generate(ctx, opts, progressLogger(logger))
	if err != nil {
		if errors.Is(err, services.ErrGenerationCancelled) {
			logger.Warn("Generation cancelled — no export produced")
			recordRun(catalog, "", startedAt, models.RunStatusCancelled, nil, err, logger)
			os.Exit(130)
		}
		logger.Error("Generation failed: %v", err)
		recordRun(catalog, "", startedAt, models.RunStatusFailed, nil, err, logger)
		os.Exit(1)
	}

	logger.Info("Generated %d payloads — validating...", len(result.Payloads))

	validator := services.NewPayloadValidator(logger)
	summary := validator.ValidateCompletePayload(result.Payloads)
	for _, e := range summary.Errors {
		logger.Error("[validation] %s", e)
	}
	for _, w := range summary.Warnings {
		logger.Warn("[validation] %s", w)
	}
	if !summary.Valid {
		logger.Error("%d of %d payloads failed structural validation — not exporting",
			summary.InvalidPayloads, summary.TotalPayloads)
		recordRun(catalog, result.Statistics.RunID, startedAt, models.RunStatusFailed, result,
			fmt.Errorf("%d invalid payloads", summary.InvalidPayloads), logger)
		os.Exit(1)
	}

	auditOverrides(ctx, catalog, validator, result, logger)

	jsonWriter, err := storage.NewJSONWriter(cfg.OutputDir)
	if err != nil {
		logger.Error("Failed to create JSON writer: %v", err)
		os.Exit(1)
	}
	if err := jsonWriter.WritePayloads(result.Statistics.RunID, result.Payloads); err != nil {
		logger.Error("JSON export failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Payloads exported to %s", cfg.OutputDir)

	csvWriter, err := storage.NewCSVWriter(filepath.Join(cfg.OutputDir, "statistics.csv"))
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
	} else {
		defer csvWriter.Close()
		if err := csvWriter.WriteStatistics(&result.Statistics); err != nil {
			logger.Error("CSV statistics write failed: %v", err)
		}
	}

	recordRun(catalog, result.Statistics.RunID, startedAt, models.RunStatusCompleted, result, nil, logger)

	reporter := services.NewReportService(logger)
	reporter.Print(reporter.Build(result, summary))

	fmt.Printf("  Done. Payloads → %s | Run %s recorded\n\n", cfg.OutputDir, result.Statistics.RunID)
}

// progressLogger reports phase changes and per-property progress.
func progressLogger(logger *utils.Logger) services.ProgressFunc {
	var lastPhase models.GenerationPhase
	return func(p models.GenerationProgress) {
		if p.Phase != lastPhase {
			logger.Info("[progress] phase: %s", p.Phase)
			lastPhase = p.Phase
		}
		if p.Phase == models.PhaseCalculating {
			logger.Info("[progress] %s (%d/%d, %.0f%%, ~%v remaining)",
				p.CurrentProperty, p.CompletedProperties+1, p.TotalProperties,
				p.Percentage, p.EstimatedRemaining.Round(time.Second))
		}
	}
}

// auditOverrides confirms every active manual override survived range
// optimization. Findings are advisory: they are logged loudly but do not
// block the export.
func auditOverrides(ctx context.Context, catalog *storage.PostgresCatalog, validator *services.PayloadValidator, result *services.GenerateResult, logger *utils.Logger) {
	for i := range result.Payloads {
		if i >= len(result.Properties) {
			break
		}
		prop := result.Properties[i]

		overrides, err := catalog.ActiveOverrides(ctx, prop.ID)
		if err != nil {
			logger.Warn("[audit] could not load overrides for property %d: %v", prop.ID, err)
			continue
		}
		if len(overrides) == 0 {
			continue
		}

		audit := validator.ValidateOverrideInclusion(&result.Payloads[i], overrides)
		if audit.Valid {
			logger.Info("[audit] property %d: %d overrides intact", prop.ID, len(overrides))
			continue
		}
		for _, issue := range audit.Issues {
			logger.Warn("[audit] property %d: %s", prop.ID, issue)
		}
	}
}

func recordRun(catalog *storage.PostgresCatalog, runID string, startedAt time.Time, status string, result *services.GenerateResult, runErr error, logger *utils.Logger) {
	run := &models.ExportRun{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Status:     status,
	}
	if run.RunID == "" {
		run.RunID = fmt.Sprintf("failed-%d", startedAt.UnixNano())
	}
	if result != nil {
		run.TotalProperties = result.Statistics.TotalProperties
		run.TotalRates = result.Statistics.TotalRatesGenerated
	}
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}

	// best effort: run bookkeeping must not mask the real outcome
	if err := catalog.RecordRun(context.Background(), run); err != nil {
		logger.Warn("Failed to record export run: %v", err)
	}
}
