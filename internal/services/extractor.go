package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/courtdata/ecourts-api/internal/models"
	"github.com/courtdata/ecourts-api/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// maxOrders caps how many order links are extracted from one result page
const maxOrders = 5

// dateLayouts are tried in order when normalizing a portal date string
var dateLayouts = []string{"02-01-2006", "02/01/2006", "2006-01-02", "02.01.2006"}

// orderDateLayouts are tried against date-like substrings near order links
var orderDateLayouts = []string{"02-01-2006", "02/01/2006", "02.01.2006"}

var orderDateRegex = regexp.MustCompile(`\d{1,2}[-/.]\d{1,2}[-/.]\d{4}`)

// fieldRule maps one case record field to its ordered keyword synonyms. The
// extractor walks the rules in order; for each, the first keyword with a
// non-empty adjacent value wins.
type fieldRule struct {
	name     string
	keywords []string
	isDate   bool
	assign   func(*models.CaseRecord, string)
}

var fieldRules = []fieldRule{
	{
		name:     "cnr_number",
		keywords: []string{"cnr", "case number registry"},
		assign:   func(r *models.CaseRecord, v string) { r.CNRNumber = v },
	},
	{
		name:     "case_title",
		keywords: []string{"case title", "title"},
		assign:   func(r *models.CaseRecord, v string) { r.CaseTitle = v },
	},
	{
		name:     "petitioner",
		keywords: []string{"petitioner", "plaintiff", "complainant"},
		assign:   func(r *models.CaseRecord, v string) { r.Petitioner = v },
	},
	{
		name:     "respondent",
		keywords: []string{"respondent", "defendant", "accused"},
		assign:   func(r *models.CaseRecord, v string) { r.Respondent = v },
	},
	{
		name:     "filing_date",
		keywords: []string{"filing date", "date of filing"},
		isDate:   true,
		assign:   func(r *models.CaseRecord, v string) { r.FilingDate = v },
	},
	{
		name:     "next_hearing_date",
		keywords: []string{"next hearing", "next date", "hearing date"},
		isDate:   true,
		assign:   func(r *models.CaseRecord, v string) { r.NextHearingDate = v },
	},
	{
		name:     "status",
		keywords: []string{"status", "case status"},
		assign:   func(r *models.CaseRecord, v string) { r.Status = v },
	},
	{
		name:     "judge_name",
		keywords: []string{"judge", "presiding officer"},
		assign:   func(r *models.CaseRecord, v string) { r.JudgeName = v },
	},
}

// ExtractorService converts a rendered result page into a case record using
// keyword-driven heuristics. It is a pure function of the markup: no
// network, no browser.
type ExtractorService struct {
	baseURL *url.URL
	logger  *logrus.Logger
}

// NewExtractorService creates a new extractor service. baseURL is used to
// resolve relative order PDF links.
func NewExtractorService(baseURL string, logger *logrus.Logger) (*ExtractorService, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid portal base URL: %w", err)
	}
	return &ExtractorService{baseURL: parsed, logger: logger}, nil
}

// Extract parses the rendered markup into a case record. A record carrying
// neither a case title nor a petitioner is reported as ErrNoCaseData.
func (e *ExtractorService) Extract(html string) (*models.CaseRecord, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse result page: %w", err)
	}

	record := &models.CaseRecord{Orders: []models.OrderRecord{}}
	for _, rule := range fieldRules {
		value := e.findLabeledValue(doc, rule.keywords)
		if value == "" {
			continue
		}
		if rule.isDate {
			normalized, ok := NormalizeDate(value)
			if !ok {
				// Unparseable dates yield an absent field, never an error
				continue
			}
			value = normalized
		}
		rule.assign(record, value)
	}

	record.Orders = e.extractOrders(doc)

	if record.CaseTitle == "" && record.Petitioner == "" {
		return nil, ErrNoCaseData
	}

	e.logger.WithFields(logrus.Fields{
		"case_title": record.CaseTitle,
		"orders":     len(record.Orders),
	}).Debug("Case record extracted")

	return record, nil
}

// findLabeledValue scans labeled cells for the first keyword match and reads
// the adjacent value: the matched cell's next sibling, or its parent's next
// sibling. First matching keyword wins, first non-empty value wins.
func (e *ExtractorService) findLabeledValue(doc *goquery.Document, keywords []string) string {
	for _, keyword := range keywords {
		var value string
		doc.Find("td, th, div, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			// Only leaf cells count as labels; containers match every
			// keyword their descendants carry
			if sel.Children().Length() > 0 {
				return true
			}
			if !strings.Contains(strings.ToLower(sel.Text()), keyword) {
				return true
			}

			next := sel.Next()
			if next.Length() == 0 {
				next = sel.Parent().Next()
			}
			if next.Length() == 0 {
				return true
			}

			text := utils.CleanText(next.Text())
			if text != "" && text != ":" {
				value = text
				return false
			}
			return true
		})
		if value != "" {
			return value
		}
	}
	return ""
}

// extractOrders discovers order records by scanning hyperlinks with PDF
// targets, in document order, truncated to maxOrders entries.
func (e *ExtractorService) extractOrders(doc *goquery.Document) []models.OrderRecord {
	orders := []models.OrderRecord{}

	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if !strings.Contains(strings.ToLower(href), ".pdf") {
			return true
		}
		text := strings.TrimSpace(link.Text())
		if text == "" {
			return true
		}

		orders = append(orders, models.OrderRecord{
			OrderType: ClassifyOrderType(text),
			PDFURL:    e.resolveURL(href),
			OrderDate: e.findOrderDate(link),
		})
		return len(orders) < maxOrders
	})

	return orders
}

// findOrderDate recovers a date from the link's and its parent's combined text
func (e *ExtractorService) findOrderDate(link *goquery.Selection) string {
	text := link.Text()
	if parent := link.Parent(); parent.Length() > 0 {
		text += " " + parent.Text()
	}

	match := orderDateRegex.FindString(text)
	if match == "" {
		return ""
	}
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, match); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// resolveURL makes an order link absolute against the portal base
func (e *ExtractorService) resolveURL(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return e.baseURL.ResolveReference(ref).String()
}

// ClassifyOrderType classifies an order by keywords in the link's visible text
func ClassifyOrderType(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "judgment") || strings.Contains(lower, "judgement"):
		return models.OrderTypeJudgment
	case strings.Contains(lower, "interim"):
		return models.OrderTypeInterim
	case strings.Contains(lower, "final"):
		return models.OrderTypeFinal
	default:
		return models.OrderTypeOrder
	}
}

// NormalizeDate parses a portal date string against the accepted layouts and
// canonicalizes it to YYYY-MM-DD. Returns false when no layout matches.
func NormalizeDate(text string) (string, bool) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// parseDocument parses HTML through a charset-aware reader, falling back to
// a plain parse when charset detection fails
func parseDocument(html string) (*goquery.Document, error) {
	utf8Reader, err := charset.NewReader(strings.NewReader(html), "")
	if err != nil {
		return goquery.NewDocumentFromReader(strings.NewReader(html))
	}
	return goquery.NewDocumentFromReader(utf8Reader)
}
