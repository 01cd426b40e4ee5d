package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"leadgen/models"
)

// LeadSource is the read side of the export: businesses with no
// website, optionally filtered by city.
type LeadSource interface {
	LeadsWithoutWebsites(ctx context.Context, city string) ([]models.Lead, error)
}

// ExportService writes outreach-ready CSVs of businesses that have no
// website.
type ExportService struct {
	source LeadSource
}

func NewExportService(source LeadSource) *ExportService {
	return &ExportService{source: source}
}

var exportHeader = []string{"Business Name", "Phone", "Address", "City", "Category", "Last Scraped"}

// ExportCSV writes leads to filename (auto-generated when empty) and
// returns the path written and the number of rows.
func (s *ExportService) ExportCSV(ctx context.Context, city, filename string) (string, int, error) {
	leads, err := s.source.LeadsWithoutWebsites(ctx, city)
	if err != nil {
		return "", 0, fmt.Errorf("query leads: %w", err)
	}

	if filename == "" {
		filename = defaultExportName(city, time.Now())
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	if err := writeLeads(f, leads); err != nil {
		return "", 0, err
	}
	return filename, len(leads), nil
}

func writeLeads(w io.Writer, leads []models.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, l := range leads {
		row := []string{
			l.Name, l.Phone, l.Address, l.City, l.Category,
			l.LastScraped.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func defaultExportName(city string, now time.Time) string {
	suffix := "all"
	if city != "" {
		suffix = strings.ToLower(city)
	}
	return fmt.Sprintf("leads_without_websites_%s_%s.csv", suffix, now.Format("20060102_150405"))
}
