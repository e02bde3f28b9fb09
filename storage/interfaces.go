package storage

import "lodgify-exporter/models"

// PayloadWriter is the interface any export backend must satisfy.
type PayloadWriter interface {
	WritePayloads(runID string, payloads []models.LodgifyPayload) error
	Close() error
}

// ReportWriter is the interface for persisting run statistics.
type ReportWriter interface {
	WriteStatistics(stats *models.GenerationStatistics) error
	Close() error
}
