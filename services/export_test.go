package services

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"leadgen/models"
)

type fakeLeadSource struct {
	leads []models.Lead
	err   error
	city  string
}

func (s *fakeLeadSource) LeadsWithoutWebsites(ctx context.Context, city string) ([]models.Lead, error) {
	s.city = city
	return s.leads, s.err
}

func TestExportCSV(t *testing.T) {
	scraped := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)
	source := &fakeLeadSource{leads: []models.Lead{
		{Name: "Bedrock Pizza", Phone: "815-555-0134", Address: "742 Main St", City: "Shorewood", Category: "pizza", LastScraped: scraped},
		{Name: "Taco, Haven", Phone: "", Address: "15 Jefferson St", City: "Joliet", Category: "mexican restaurant", LastScraped: scraped},
	}}
	svc := NewExportService(source)

	out := filepath.Join(t.TempDir(), "leads.csv")
	path, count, err := svc.ExportCSV(context.Background(), "Joliet", out)
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	if path != out {
		t.Errorf("unexpected path: %q", path)
	}
	if count != 2 {
		t.Errorf("unexpected row count: %d", count)
	}
	if source.city != "Joliet" {
		t.Errorf("city filter not passed through: %q", source.city)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	wantHeader := []string{"Business Name", "Phone", "Address", "City", "Category", "Last Scraped"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header column %d: got %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][0] != "Bedrock Pizza" || rows[1][5] != "2026-08-20 14:30:00" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
	// The CSV writer must keep a comma inside a field intact.
	if rows[2][0] != "Taco, Haven" {
		t.Errorf("comma in name was mangled: %q", rows[2][0])
	}
}

func TestExportCSVSourceError(t *testing.T) {
	svc := NewExportService(&fakeLeadSource{err: errors.New("connection refused")})

	if _, _, err := svc.ExportCSV(context.Background(), "", "ignored.csv"); err == nil {
		t.Fatal("expected the source error to propagate")
	}
	if _, err := os.Stat("ignored.csv"); err == nil {
		t.Error("no file should be written when the query fails")
	}
}

func TestDefaultExportName(t *testing.T) {
	now := time.Date(2026, 8, 20, 14, 30, 5, 0, time.UTC)

	got := defaultExportName("Joliet", now)
	if got != "leads_without_websites_joliet_20260820_143005.csv" {
		t.Errorf("unexpected export name: %q", got)
	}
	if !strings.Contains(defaultExportName("", now), "_all_") {
		t.Errorf("empty city should export as all: %q", defaultExportName("", now))
	}
}
