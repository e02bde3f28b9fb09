package services

import (
	"fmt"
	"sort"
	"strings"

	"lodgify-exporter/models"
	"lodgify-exporter/utils"
)

// PropertyReportLine is one property's row in the run report.
type PropertyReportLine struct {
	PropertyID int64
	Name       string
	TotalRates int
	DatedRates int
	MinPrice   float64
	MaxPrice   float64
}

// RunReport summarizes an export run for terminal display.
type RunReport struct {
	Statistics   models.GenerationStatistics
	Properties   []PropertyReportLine
	AveragePrice float64
	MinPrice     float64
	MaxPrice     float64
	Errors       int
	Warnings     int
}

type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Build computes the run report from a finished generation and its batch
// validation summary.
func (s *ReportService) Build(result *GenerateResult, summary BatchValidationSummary) *RunReport {
	report := &RunReport{
		Statistics: result.Statistics,
		Errors:     len(summary.Errors),
		Warnings:   len(summary.Warnings),
	}

	var total float64
	var priced int

	for i := range result.Payloads {
		p := &result.Payloads[i]
		line := PropertyReportLine{PropertyID: p.PropertyID, TotalRates: len(p.Rates)}
		if i < len(result.Properties) {
			line.Name = result.Properties[i].Name
		}

		for _, r := range p.DatedRates() {
			line.DatedRates++
			if line.MinPrice == 0 || r.PricePerDay < line.MinPrice {
				line.MinPrice = r.PricePerDay
			}
			if r.PricePerDay > line.MaxPrice {
				line.MaxPrice = r.PricePerDay
			}
			total += r.PricePerDay
			priced++

			if report.MinPrice == 0 || r.PricePerDay < report.MinPrice {
				report.MinPrice = r.PricePerDay
			}
			if r.PricePerDay > report.MaxPrice {
				report.MaxPrice = r.PricePerDay
			}
		}
		report.Properties = append(report.Properties, line)
	}

	if priced > 0 {
		report.AveragePrice = RoundCents(total / float64(priced))
	}

	sort.Slice(report.Properties, func(i, j int) bool {
		return report.Properties[i].TotalRates > report.Properties[j].TotalRates
	})

	return report
}

// Print renders the run report to the terminal.
func (s *ReportService) Print(r *RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📦 LODGIFY EXPORT SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Run\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Run id          : \033[1m%s\033[0m\n", r.Statistics.RunID)
	fmt.Printf("  Properties      : \033[1m%d\033[0m\n", r.Statistics.TotalProperties)
	fmt.Printf("  Dates priced    : \033[1m%d\033[0m\n", r.Statistics.TotalDates)
	fmt.Printf("  Rates generated : \033[1m%d\033[0m\n", r.Statistics.TotalRatesGenerated)
	fmt.Printf("  Duration        : \033[1m%v\033[0m\n", r.Statistics.GenerationTime)
	fmt.Println()

	fmt.Printf("\033[1;33m  Optimization\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.Statistics.OptimizationApplied {
		fmt.Printf("  Entries before : %d\n", r.Statistics.EntriesBeforeOptimization)
		fmt.Printf("  Entries after  : %d\n", r.Statistics.EntriesAfterOptimization)
		fmt.Printf("  Compression    : \033[1;32m%.1f%%\033[0m\n", r.Statistics.OptimizationReductionPct)
	} else {
		fmt.Printf("  Disabled — per-day rates exported\n")
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Nightly Prices\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Printf("  Average price : \033[1;32m€%.2f\033[0m\n", r.AveragePrice)
		fmt.Printf("  Minimum price : \033[1;32m€%.2f\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum price : \033[1;32m€%.2f\033[0m\n", r.MaxPrice)
	} else {
		fmt.Printf("  No dated rates generated\n")
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Properties by Rate Count\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, line := range r.Properties {
		name := line.Name
		if name == "" {
			name = fmt.Sprintf("property %d", line.PropertyID)
		}
		fmt.Printf("  %-30s %4d rates  \033[1;32m€%.2f–€%.2f\033[0m\n",
			truncate(name, 28), line.TotalRates, line.MinPrice, line.MaxPrice)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Validation\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.Errors == 0 {
		fmt.Printf("  Errors   : \033[1;32m0\033[0m\n")
	} else {
		fmt.Printf("  Errors   : \033[1;31m%d\033[0m\n", r.Errors)
	}
	fmt.Printf("  Warnings : %d\n", r.Warnings)

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
