package models

import (
	"time"
)

// OutcomeStatus classifies the result of one search attempt
type OutcomeStatus string

const (
	OutcomeSuccess  OutcomeStatus = "success"
	OutcomeNotFound OutcomeStatus = "not_found"
	OutcomeError    OutcomeStatus = "error"
)

// CauseKind identifies why a search failed
type CauseKind string

const (
	CauseValidation CauseKind = "validation_error"
	CauseTimeout    CauseKind = "timeout"
	CauseNavigation CauseKind = "navigation_error"
	CauseCaptcha    CauseKind = "captcha_error"
	CauseParse      CauseKind = "parse_error"
)

// Order type values assigned by the extractor
const (
	OrderTypeOrder    = "Order"
	OrderTypeInterim  = "Interim Order"
	OrderTypeFinal    = "Final Order"
	OrderTypeJudgment = "Judgment"
)

// SearchRequest describes one case lookup against the portal
type SearchRequest struct {
	CourtName  string `json:"court_name"`
	CaseType   string `json:"case_type"`
	CaseNumber string `json:"case_number"`
	FilingYear int    `json:"filing_year"`
}

// CaseRecord holds the case information extracted from the result page.
// Every scalar field is optional; an empty string means the portal page
// did not expose that field, not that extraction failed.
type CaseRecord struct {
	CNRNumber       string        `json:"cnr_number,omitempty"`
	CaseTitle       string        `json:"case_title,omitempty"`
	Petitioner      string        `json:"petitioner,omitempty"`
	Respondent      string        `json:"respondent,omitempty"`
	FilingDate      string        `json:"filing_date,omitempty"`
	NextHearingDate string        `json:"next_hearing_date,omitempty"`
	Status          string        `json:"status,omitempty"`
	JudgeName       string        `json:"judge_name,omitempty"`
	Orders          []OrderRecord `json:"orders"`
}

// OrderRecord describes a single order or judgment discovered on the page
type OrderRecord struct {
	OrderType string `json:"order_type"`
	PDFURL    string `json:"pdf_url,omitempty"`
	OrderDate string `json:"order_date,omitempty"`
}

// SearchOutcome is the sole artifact returned across the engine boundary
type SearchOutcome struct {
	Status  OutcomeStatus `json:"status"`
	Cause   CauseKind     `json:"cause,omitempty"`
	Message string        `json:"message,omitempty"`
	Case    *CaseRecord   `json:"case,omitempty"`
}

// Success builds a success outcome wrapping an extracted record
func Success(record *CaseRecord) SearchOutcome {
	return SearchOutcome{Status: OutcomeSuccess, Case: record}
}

// NotFound builds the negative-result outcome
func NotFound(message string) SearchOutcome {
	return SearchOutcome{Status: OutcomeNotFound, Message: message}
}

// Failure builds an error outcome carrying its cause kind
func Failure(cause CauseKind, message string) SearchOutcome {
	return SearchOutcome{Status: OutcomeError, Cause: cause, Message: message}
}

// Query is a persisted record of one search attempt
type Query struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	CourtName    string    `json:"court_name"`
	CaseType     string    `json:"case_type"`
	CaseNumber   string    `json:"case_number"`
	FilingYear   int       `json:"filing_year"`
	SearchStatus string    `json:"search_status"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// StoredCase is a persisted case row linked to the query that produced it
type StoredCase struct {
	ID        int64      `json:"id"`
	QueryID   int64      `json:"query_id"`
	CourtName string     `json:"court_name"`
	CreatedAt time.Time  `json:"created_at"`
	Record    CaseRecord `json:"record"`
}

// StoredOrder is a persisted order row with its download bookkeeping
type StoredOrder struct {
	ID           int64       `json:"id"`
	CaseID       int64       `json:"case_id"`
	Order        OrderRecord `json:"order"`
	Downloaded   bool        `json:"pdf_downloaded"`
	LocalPDFPath string      `json:"local_pdf_path,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// DashboardStats aggregates search history for the stats endpoint
type DashboardStats struct {
	TotalQueries      int64   `json:"total_queries"`
	SuccessfulQueries int64   `json:"successful_queries"`
	FailedQueries     int64   `json:"failed_queries"`
	SuccessRate       float64 `json:"success_rate"`
	UniqueCourts      int64   `json:"unique_courts"`
	RecentQueries     []Query `json:"recent_queries"`
}

// Court is an entry of the supported courts listing
type Court struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CaseType is an entry of the supported case type listing
type CaseType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
