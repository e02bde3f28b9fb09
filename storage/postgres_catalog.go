package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"lodgify-exporter/models"
)

// PostgresCatalog backs the property catalog, manual price overrides and
// the export run log with PostgreSQL. It implements services.PropertyCatalog
// and services.OverrideSource.
type PostgresCatalog struct {
	db *sql.DB
}

// NewPostgresCatalog opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresCatalog.
func NewPostgresCatalog(dsn string) (*PostgresCatalog, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pc := &PostgresCatalog{db: db}
	if err := pc.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pc, nil
}

func (pc *PostgresCatalog) migrate() error {
	_, err := pc.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id                   SERIAL PRIMARY KEY,
			name                 TEXT          NOT NULL,
			lodgify_property_id  BIGINT        NOT NULL DEFAULT 0,
			lodgify_room_type_id BIGINT        NOT NULL DEFAULT 0,
			base_price_per_day   NUMERIC(10,2) NOT NULL DEFAULT 0,
			active               BOOLEAN       NOT NULL DEFAULT TRUE,
			created_at           TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS price_overrides (
			id            SERIAL PRIMARY KEY,
			property_id   BIGINT        NOT NULL REFERENCES properties(id),
			override_date DATE          NOT NULL,
			price         NUMERIC(10,2) NOT NULL,
			reason        TEXT          NOT NULL DEFAULT '',
			active        BOOLEAN       NOT NULL DEFAULT TRUE,
			UNIQUE (property_id, override_date)
		);

		CREATE TABLE IF NOT EXISTS export_runs (
			run_id           TEXT PRIMARY KEY,
			started_at       TIMESTAMPTZ NOT NULL,
			finished_at      TIMESTAMPTZ NOT NULL,
			status           VARCHAR(20) NOT NULL,
			total_properties INT         NOT NULL DEFAULT 0,
			total_rates      INT         NOT NULL DEFAULT 0,
			error_message    TEXT        NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_overrides_property ON price_overrides(property_id);
		CREATE INDEX IF NOT EXISTS idx_runs_started       ON export_runs(started_at);
	`)
	return err
}

// GetAll retrieves every active property from the catalog.
func (pc *PostgresCatalog) GetAll(ctx context.Context) ([]models.Property, error) {
	rows, err := pc.db.QueryContext(ctx, `
		SELECT id, name, lodgify_property_id, lodgify_room_type_id, base_price_per_day, active, created_at
		FROM properties
		WHERE active
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch properties: %w", err)
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(
			&p.ID, &p.Name, &p.LodgifyPropertyID, &p.LodgifyRoomTypeID,
			&p.BasePricePerDay, &p.Active, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan property: %w", err)
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// ActiveOverrides retrieves the active manual price overrides for one
// property, ordered by date.
func (pc *PostgresCatalog) ActiveOverrides(ctx context.Context, propertyID int64) ([]models.PriceOverride, error) {
	rows, err := pc.db.QueryContext(ctx, `
		SELECT id, property_id, override_date, price, reason, active
		FROM price_overrides
		WHERE property_id = $1 AND active
		ORDER BY override_date
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch overrides: %w", err)
	}
	defer rows.Close()

	var overrides []models.PriceOverride
	for rows.Next() {
		var o models.PriceOverride
		if err := rows.Scan(&o.ID, &o.PropertyID, &o.Date, &o.Price, &o.Reason, &o.Active); err != nil {
			return nil, fmt.Errorf("postgres: scan override: %w", err)
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

// RecordRun persists the outcome of one export invocation.
func (pc *PostgresCatalog) RecordRun(ctx context.Context, run *models.ExportRun) error {
	_, err := pc.db.ExecContext(ctx, `
		INSERT INTO export_runs (run_id, started_at, finished_at, status, total_properties, total_rates, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.RunID, run.StartedAt, run.FinishedAt, run.Status,
		run.TotalProperties, run.TotalRates, run.ErrorMessage)
	if err != nil {
		return fmt.Errorf("postgres: record run: %w", err)
	}
	return nil
}

func (pc *PostgresCatalog) Close() error {
	return pc.db.Close()
}
