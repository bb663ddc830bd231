package services

import (
	"testing"

	"github.com/courtdata/ecourts-api/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *ExtractorService {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	extractor, err := NewExtractorService("https://services.ecourts.gov.in/ecourtindia_v6/", logger)
	require.NoError(t, err)
	return extractor
}

const resultPageHTML = `
<html><body>
<table class="case_details">
  <tr><td>CNR Number</td><td>DLND010012342022</td></tr>
  <tr><td>Case Title</td><td>ABC vs XYZ</td></tr>
  <tr><td>Petitioner</td><td>ABC</td></tr>
  <tr><td>Respondent</td><td>XYZ</td></tr>
  <tr><td>Filing Date</td><td>15-03-2022</td></tr>
  <tr><td>Next Hearing</td><td>10/09/2022</td></tr>
  <tr><td>Case Status</td><td>Pending</td></tr>
  <tr><td>Judge</td><td>Sh. R. Kumar</td></tr>
</table>
<div>
  <a href="/orders/final_123.pdf">Final Order dated 20-04-2022</a>
</div>
</body></html>`

func TestExtractResultPage(t *testing.T) {
	extractor := newTestExtractor(t)

	record, err := extractor.Extract(resultPageHTML)
	require.NoError(t, err)

	assert.Equal(t, "DLND010012342022", record.CNRNumber)
	assert.Equal(t, "ABC vs XYZ", record.CaseTitle)
	assert.Equal(t, "ABC", record.Petitioner)
	assert.Equal(t, "XYZ", record.Respondent)
	assert.Equal(t, "2022-03-15", record.FilingDate)
	assert.Equal(t, "2022-09-10", record.NextHearingDate)
	assert.Equal(t, "Pending", record.Status)
	assert.Equal(t, "Sh. R. Kumar", record.JudgeName)

	require.Len(t, record.Orders, 1)
	assert.Equal(t, models.OrderTypeFinal, record.Orders[0].OrderType)
	assert.Equal(t, "2022-04-20", record.Orders[0].OrderDate)
	assert.Equal(t, "https://services.ecourts.gov.in/orders/final_123.pdf", record.Orders[0].PDFURL)
}

func TestExtractSynonymLabels(t *testing.T) {
	extractor := newTestExtractor(t)

	html := `
	<table>
	  <tr><td>Plaintiff</td><td>John Doe</td></tr>
	  <tr><td>Defendant</td><td>Jane Roe</td></tr>
	  <tr><td>Date of Filing</td><td>01.02.2021</td></tr>
	</table>`

	record, err := extractor.Extract(html)
	require.NoError(t, err)

	assert.Equal(t, "John Doe", record.Petitioner)
	assert.Equal(t, "Jane Roe", record.Respondent)
	assert.Equal(t, "2021-02-01", record.FilingDate)
}

func TestExtractNoCaseData(t *testing.T) {
	extractor := newTestExtractor(t)

	html := `
	<table>
	  <tr><td>Status</td><td>Disposed</td></tr>
	  <tr><td>Judge</td><td>Sh. A. Singh</td></tr>
	</table>`

	_, err := extractor.Extract(html)
	assert.ErrorIs(t, err, ErrNoCaseData)
}

func TestExtractUnparseableDateOmitted(t *testing.T) {
	extractor := newTestExtractor(t)

	html := `
	<table>
	  <tr><td>Petitioner</td><td>ABC</td></tr>
	  <tr><td>Filing Date</td><td>sometime in March</td></tr>
	</table>`

	record, err := extractor.Extract(html)
	require.NoError(t, err)
	assert.Empty(t, record.FilingDate)
	assert.Equal(t, "ABC", record.Petitioner)
}

func TestExtractOrdersCapped(t *testing.T) {
	extractor := newTestExtractor(t)

	html := `<div><table><tr><td>Case Title</td><td>A vs B</td></tr></table>`
	for i := 0; i < 8; i++ {
		html += `<a href="/orders/order_` + string(rune('a'+i)) + `.pdf">Order</a>`
	}
	html += `</div>`

	record, err := extractor.Extract(html)
	require.NoError(t, err)
	assert.Len(t, record.Orders, 5)
	// Document order is preserved
	assert.Contains(t, record.Orders[0].PDFURL, "order_a.pdf")
	assert.Contains(t, record.Orders[4].PDFURL, "order_e.pdf")
}

func TestExtractSkipsNonPDFLinks(t *testing.T) {
	extractor := newTestExtractor(t)

	html := `
	<table><tr><td>Case Title</td><td>A vs B</td></tr></table>
	<a href="/help.html">Help</a>
	<a href="/orders/judgment.pdf">Judgment</a>`

	record, err := extractor.Extract(html)
	require.NoError(t, err)
	require.Len(t, record.Orders, 1)
	assert.Equal(t, models.OrderTypeJudgment, record.Orders[0].OrderType)
}

func TestClassifyOrderType(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Judgment dated 01-01-2020", models.OrderTypeJudgment},
		{"Judgement copy", models.OrderTypeJudgment},
		{"Interim Order", models.OrderTypeInterim},
		{"Final Order dated 20-04-2022", models.OrderTypeFinal},
		{"Order sheet", models.OrderTypeOrder},
		{"Daily proceedings", models.OrderTypeOrder},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyOrderType(tc.text), "text: %s", tc.text)
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"15-03-2022", "2022-03-15"},
		{"15/03/2022", "2022-03-15"},
		{"2022-03-15", "2022-03-15"},
		{"15.03.2022", "2022-03-15"},
	}

	for _, tc := range cases {
		got, ok := NormalizeDate(tc.in)
		require.True(t, ok, "input: %s", tc.in)
		assert.Equal(t, tc.want, got)

		// Already-canonical output normalizes to itself
		again, ok := NormalizeDate(got)
		require.True(t, ok)
		assert.Equal(t, got, again)
	}

	_, ok := NormalizeDate("31-31-2022")
	assert.False(t, ok)
	_, ok = NormalizeDate("not a date")
	assert.False(t, ok)
}
