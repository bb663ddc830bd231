package models

import "strings"

// SearchAPIRequest is the JSON body accepted by the search endpoint
// @Description Case search request against the eCourts portal
type SearchAPIRequest struct {
	// Court identifier, e.g. "delhi_district"
	Court string `json:"court" binding:"required" example:"delhi_district"`
	// Case type, e.g. "civil"
	CaseType string `json:"case_type" binding:"required" example:"civil"`
	// Case number as printed on the filing
	CaseNumber string `json:"case_number" binding:"required" example:"123"`
	// Year the case was filed
	FilingYear int `json:"filing_year" binding:"required" example:"2022"`
}

// ToSearchRequest trims the fields and converts to the engine request
func (r *SearchAPIRequest) ToSearchRequest() SearchRequest {
	return SearchRequest{
		CourtName:  strings.TrimSpace(r.Court),
		CaseType:   strings.TrimSpace(r.CaseType),
		CaseNumber: strings.TrimSpace(r.CaseNumber),
		FilingYear: r.FilingYear,
	}
}
