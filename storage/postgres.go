package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadgen/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 5
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS businesses (
		id UUID PRIMARY KEY,
		gbp_url TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		phone TEXT,
		address TEXT,
		city TEXT,
		category TEXT,
		has_website BOOLEAN NOT NULL DEFAULT FALSE,
		website_url TEXT,
		google_rating DOUBLE PRECISION,
		review_count INTEGER,
		website_alive BOOLEAN,
		website_checked_at TIMESTAMPTZ,
		first_scraped TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_scraped TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS scrape_runs (
		id BIGSERIAL PRIMARY KEY,
		location TEXT NOT NULL,
		category TEXT NOT NULL,
		mode TEXT,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		status TEXT NOT NULL,
		businesses_found INTEGER NOT NULL DEFAULT 0,
		businesses_without_websites INTEGER NOT NULL DEFAULT 0,
		new_businesses_added INTEGER NOT NULL DEFAULT 0,
		errors_count INTEGER NOT NULL DEFAULT 0,
		error_log TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_businesses_no_website
		ON businesses(city, last_scraped) WHERE has_website = FALSE;
	CREATE INDEX IF NOT EXISTS idx_runs_status ON scrape_runs(status, started_at);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Upsert persists one record keyed by its GBP URL. Returns true when a
// new row was inserted, false when an existing lead was refreshed.
func (s *PostgresStore) Upsert(ctx context.Context, rec *models.BusinessRecord) (bool, error) {
	query := `
		INSERT INTO businesses (
			id, gbp_url, name, phone, address, city, category,
			has_website, website_url, google_rating, review_count,
			first_scraped, last_scraped
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		ON CONFLICT (gbp_url) DO UPDATE SET
			name = EXCLUDED.name,
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), businesses.phone),
			address = COALESCE(NULLIF(EXCLUDED.address, ''), businesses.address),
			city = EXCLUDED.city,
			category = EXCLUDED.category,
			has_website = EXCLUDED.has_website,
			website_url = EXCLUDED.website_url,
			google_rating = COALESCE(EXCLUDED.google_rating, businesses.google_rating),
			review_count = COALESCE(EXCLUDED.review_count, businesses.review_count),
			last_scraped = EXCLUDED.last_scraped
		RETURNING (xmax = 0) AS inserted`

	var inserted bool
	err := s.pool.QueryRow(ctx, query,
		uuid.New(), rec.ExternalID, rec.Name, rec.Phone, rec.Address,
		rec.City, rec.Category, rec.HasWebsite, nullString(rec.WebsiteURL),
		rec.Rating, rec.ReviewCount, rec.ScrapedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert business %q: %w", rec.Name, err)
	}
	return inserted, nil
}

func (s *PostgresStore) CreateScrapeRun(ctx context.Context, run *models.RunSummary) error {
	query := `
		INSERT INTO scrape_runs (location, category, mode, started_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	return s.pool.QueryRow(ctx, query,
		run.Location, run.Category, run.Mode, run.StartedAt, run.Status,
	).Scan(&run.ID)
}

func (s *PostgresStore) FinalizeScrapeRun(ctx context.Context, run *models.RunSummary) error {
	query := `
		UPDATE scrape_runs SET
			finished_at = $2,
			status = $3,
			businesses_found = $4,
			businesses_without_websites = $5,
			new_businesses_added = $6,
			errors_count = $7,
			error_log = NULLIF($8, '')
		WHERE id = $1 AND finished_at IS NULL`
	_, err := s.pool.Exec(ctx, query,
		run.ID, run.FinishedAt, run.Status, run.BusinessesFound,
		run.BusinessesWithoutWebsites, run.NewBusinessesAdded,
		run.ErrorsCount, run.ErrorLog)
	return err
}

// LeadsWithoutWebsites returns export rows for stored businesses that
// have no website, most recently scraped first.
func (s *PostgresStore) LeadsWithoutWebsites(ctx context.Context, city string) ([]models.Lead, error) {
	query := `
		SELECT name, COALESCE(phone, ''), COALESCE(address, ''),
			COALESCE(city, ''), COALESCE(category, ''), last_scraped
		FROM businesses
		WHERE has_website = FALSE`
	args := []any{}
	if city != "" {
		query += ` AND city = $1`
		args = append(args, city)
	}
	query += ` ORDER BY last_scraped DESC, name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		var l models.Lead
		if err := rows.Scan(&l.Name, &l.Phone, &l.Address, &l.City, &l.Category, &l.LastScraped); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// WebsitesToCheck returns stored websites not verified within olderThan.
func (s *PostgresStore) WebsitesToCheck(ctx context.Context, olderThan time.Duration, limit int) ([]models.WebsiteTarget, error) {
	query := `
		SELECT id, website_url
		FROM businesses
		WHERE has_website = TRUE AND website_url IS NOT NULL
			AND (website_checked_at IS NULL OR website_checked_at < $1)
		ORDER BY website_checked_at NULLS FIRST
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, time.Now().Add(-olderThan), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []models.WebsiteTarget
	for rows.Next() {
		var t models.WebsiteTarget
		if err := rows.Scan(&t.BusinessID, &t.URL); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (s *PostgresStore) SetWebsiteAlive(ctx context.Context, businessID string, alive bool) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE businesses SET website_alive = $2, website_checked_at = NOW()
		WHERE id = $1`, businessID, alive)
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
