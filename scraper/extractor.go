package scraper

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"leadgen/models"
)

// Extractor reads a best-effort BusinessRecord from an opened detail
// view. Optional fields are left unset when absent; only a missing name
// is an error. Every call builds a fresh record so no field can leak
// from one extraction into the next.
type Extractor struct {
	blockedHosts []string
}

func NewExtractor(blockedHosts []string) *Extractor {
	return &Extractor{blockedHosts: blockedHosts}
}

// Selector candidates per logical field, tried in order. Markup changes
// on the source site should only ever touch this table.
var fieldSelectors = map[string][]string{
	"website": {
		`a[data-item-id="authority"]`,
		`a[data-tooltip="Open website"]`,
	},
	"phone": {
		`a[href^="tel:"]`,
		`span[data-dtype="d3ph"]`,
	},
	"address": {
		`span[data-dtype="d3adr"]`,
		`a[data-item-id="address"]`,
	},
}

var (
	phoneRegex   = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	addressRegex = regexp.MustCompile(`\d+[^<>\n]*\b(?:St|Ave|Rd|Blvd|Dr|Way|Ln|Pkwy|Ct|Cir|Hwy)\b[^<>\n]*`)
	ratingRegex  = regexp.MustCompile(`(\d\.\d|\d)\s*(?:star|stars|★)`)
	reviewsRegex = regexp.MustCompile(`\(([\d,]+)\)|([\d,]+)\s+(?:Google\s+)?reviews?`)

	// Labels that mark a true website affordance. A "Menu" affordance
	// must never be taken for one: it opens a details panel on the
	// platform itself.
	websiteLabels = []string{"website", "visit website", "view website", "go to website"}
)

// Extract opens the item's detail view and builds its record. The
// listing URL is read and cached before any navigation, because the
// click-through invalidates the handle's addressable state.
func (e *Extractor) Extract(ctx context.Context, item ItemHandle, location, category string) (*models.BusinessRecord, error) {
	name, err := item.Name(ctx)
	if err != nil || strings.TrimSpace(name) == "" {
		return nil, ErrMandatoryFieldMissing{Field: "name"}
	}

	listingURL, err := item.ListingURL(ctx)
	if err != nil {
		listingURL = ""
	}

	detail, err := item.OpenDetail(ctx)
	if err != nil {
		return nil, err
	}
	defer detail.Close(ctx)

	externalID := detail.CanonicalURL()
	if externalID == "" {
		externalID = listingURL
	}
	if externalID == "" {
		// Without a canonical URL the record cannot be deduplicated.
		return nil, ErrMandatoryFieldMissing{Field: "externalId"}
	}

	rec := &models.BusinessRecord{
		ExternalID: externalID,
		Name:       strings.TrimSpace(name),
		City:       CityOf(location),
		Category:   category,
		ScrapedAt:  time.Now(),
	}

	html, err := detail.HTML(ctx)
	if err != nil {
		// Detail content unreadable but identity is known; return the
		// sparse record rather than dropping the lead.
		return rec, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return rec, nil
	}

	rec.Phone = e.extractPhone(doc)
	rec.Address = e.extractAddress(doc)
	rec.Rating, rec.ReviewCount = extractRating(html)

	if websiteURL := e.extractWebsite(doc); websiteURL != "" {
		rec.HasWebsite = true
		rec.WebsiteURL = websiteURL
	}

	return rec, nil
}

func (e *Extractor) extractPhone(doc *goquery.Document) string {
	for _, sel := range fieldSelectors["phone"] {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if href, ok := node.Attr("href"); ok && strings.HasPrefix(href, "tel:") {
			return strings.TrimPrefix(href, "tel:")
		}
		if text := strings.TrimSpace(node.Text()); text != "" {
			return text
		}
	}
	if m := phoneRegex.FindString(doc.Text()); m != "" {
		return m
	}
	return ""
}

func (e *Extractor) extractAddress(doc *goquery.Document) string {
	for _, sel := range fieldSelectors["address"] {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	if m := addressRegex.FindString(doc.Text()); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

// extractWebsite finds a website affordance by its stable attribute or
// label (never by position) and returns its URL only when the resolved
// host is not the platform's own domain.
func (e *Extractor) extractWebsite(doc *goquery.Document) string {
	for _, sel := range fieldSelectors["website"] {
		if href := e.validWebsiteHref(doc.Find(sel).First()); href != "" {
			return href
		}
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		label := strings.ToLower(strings.TrimSpace(a.Text()))
		if aria, ok := a.Attr("aria-label"); ok && label == "" {
			label = strings.ToLower(strings.TrimSpace(aria))
		}
		for _, want := range websiteLabels {
			if label == want {
				if href := e.validWebsiteHref(a); href != "" {
					found = href
					return false
				}
			}
		}
		return true
	})
	return found
}

func (e *Extractor) validWebsiteHref(a *goquery.Selection) string {
	href, ok := a.Attr("href")
	if !ok {
		return ""
	}
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "tel:") {
		return ""
	}
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		href = "https://" + href
	}
	if e.isBlockedHost(href) {
		return ""
	}
	return href
}

func (e *Extractor) isBlockedHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, blocked := range e.blockedHosts {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return true
		}
	}
	return false
}

func extractRating(html string) (*float64, *int) {
	var rating *float64
	var reviews *int

	if m := ratingRegex.FindStringSubmatch(html); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v <= 5 {
			rating = &v
		}
	}
	if m := reviewsRegex.FindStringSubmatch(html); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		raw = strings.ReplaceAll(raw, ",", "")
		if v, err := strconv.Atoi(raw); err == nil {
			reviews = &v
		}
	}
	return rating, reviews
}

// CityOf extracts the city from a "City, ST" location string.
func CityOf(location string) string {
	if idx := strings.Index(location, ","); idx >= 0 {
		return strings.TrimSpace(location[:idx])
	}
	return strings.TrimSpace(location)
}
