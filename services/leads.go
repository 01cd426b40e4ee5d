package services

import (
	"context"
	"fmt"
	"strings"

	"leadgen/models"
)

// BusinessStore is the persistence capability LeadService writes to.
type BusinessStore interface {
	Upsert(ctx context.Context, rec *models.BusinessRecord) (bool, error)
}

// LeadService validates and normalizes extracted records on their way
// into the store. The orchestrator calls it once per record, before
// requesting the next item.
type LeadService struct {
	store BusinessStore
}

func NewLeadService(store BusinessStore) *LeadService {
	return &LeadService{store: store}
}

// Upsert persists one record. Returns true when the lead is new.
func (s *LeadService) Upsert(ctx context.Context, rec *models.BusinessRecord) (bool, error) {
	if rec.ExternalID == "" {
		return false, fmt.Errorf("record %q has no external id", rec.Name)
	}
	if rec.Name == "" {
		return false, fmt.Errorf("record %s has no name", rec.ExternalID)
	}

	rec.Name = strings.TrimSpace(rec.Name)
	rec.Phone = strings.TrimSpace(rec.Phone)
	rec.Address = strings.TrimSpace(rec.Address)

	// hasWebsite without a URL would poison the export filter.
	if rec.WebsiteURL == "" {
		rec.HasWebsite = false
	}

	return s.store.Upsert(ctx, rec)
}
