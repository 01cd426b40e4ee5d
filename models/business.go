package models

import "time"

// BusinessRecord is one extracted business listing. Records are built
// fresh for every extraction and handed to the store immediately; they
// are never reused between iterations.
type BusinessRecord struct {
	ExternalID  string    `json:"external_id" db:"gbp_url"`
	Name        string    `json:"name" db:"name"`
	Phone       string    `json:"phone,omitempty" db:"phone"`
	Address     string    `json:"address,omitempty" db:"address"`
	City        string    `json:"city" db:"city"`
	Category    string    `json:"category" db:"category"`
	HasWebsite  bool      `json:"has_website" db:"has_website"`
	WebsiteURL  string    `json:"website_url,omitempty" db:"website_url"`
	Rating      *float64  `json:"rating,omitempty" db:"google_rating"`
	ReviewCount *int      `json:"review_count,omitempty" db:"review_count"`
	ScrapedAt   time.Time `json:"scraped_at" db:"last_scraped"`
}

// Lead is the export projection of a stored business without a website.
type Lead struct {
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Category    string    `json:"category"`
	LastScraped time.Time `json:"last_scraped"`
}

// WebsiteTarget is a stored website URL queued for a liveness check.
type WebsiteTarget struct {
	BusinessID string `json:"business_id"`
	URL        string `json:"url"`
}
