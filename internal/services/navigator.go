package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/courtdata/ecourts-api/internal/models"
	"github.com/courtdata/ecourts-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// NavState identifies a position in the portal navigation state machine
type NavState int

const (
	StateInit NavState = iota
	StateStateChosen
	StateDistrictChosen
	StateComplexChosen
	StateEstablishmentChosen
	StateCaseTypeTabActive
	StateFormFilled
	StateCaptchaPending
	StateSubmitted
	StateResultPage
	StateNoRecordPage
	StateUnexpectedPage
)

var navStateNames = map[NavState]string{
	StateInit:                "Init",
	StateStateChosen:         "StateChosen",
	StateDistrictChosen:      "DistrictChosen",
	StateComplexChosen:       "ComplexChosen",
	StateEstablishmentChosen: "EstablishmentChosen",
	StateCaseTypeTabActive:   "CaseTypeTabActive",
	StateFormFilled:          "FormFilled",
	StateCaptchaPending:      "CaptchaPending",
	StateSubmitted:           "Submitted",
	StateResultPage:          "ResultPage",
	StateNoRecordPage:        "NoRecordPage",
	StateUnexpectedPage:      "UnexpectedPage",
}

func (s NavState) String() string {
	if name, ok := navStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("NavState(%d)", int(s))
}

// Portal form selectors (eCourts case status page)
const (
	selStateDropdown         = `select[name="state_code"]`
	selDistrictDropdown      = `select[name="dist_code"]`
	selComplexDropdown       = `select[name="court_complex_code"]`
	selEstablishmentDropdown = `select[name="court_code"]`
	selCaseTypeDropdown      = `select[name="case_type"]`
	selCaseNumberInput       = `input[name="case_no"]`
	selFilingYearInput       = `input[name="case_year"]`
	selCaptchaImage          = `img[src*="captcha"]`
	selCaptchaInput          = `input[name="captcha_code"]`
	selSubmitButton          = `input[value="Go"]`
	selResultsTable          = `table[class*="case_details"], table[id*="case"]`

	caseNumberTabText = "Case Number"
)

// noRecordPhrases mark an explicit negative result from the portal
var noRecordPhrases = []string{"no record found", "no case found"}

// NavigationController drives a single case-search session through the
// portal's cascading-selection form. It owns no resources: the driver is
// injected and released by the caller.
type NavigationController struct {
	driver  PortalDriver
	captcha CaptchaServiceInterface
	portal  config.PortalConfig
	courts  *config.CourtMappings
	logger  *logrus.Logger
	state   NavState
	settle  func(time.Duration)
}

// NewNavigationController creates a controller for one search session
func NewNavigationController(driver PortalDriver, captcha CaptchaServiceInterface, portal config.PortalConfig, courts *config.CourtMappings, logger *logrus.Logger) *NavigationController {
	return &NavigationController{
		driver:  driver,
		captcha: captcha,
		portal:  portal,
		courts:  courts,
		logger:  logger,
		state:   StateInit,
		settle:  time.Sleep,
	}
}

// State returns the controller's current position in the state machine
func (n *NavigationController) State() NavState {
	return n.state
}

// Run walks the form to a terminal page state and returns the rendered
// markup of the landing page. The returned error, if any, is always a
// *NavigationFailure carrying the cause kind.
func (n *NavigationController) Run(ctx context.Context, req models.SearchRequest) (string, error) {
	mapping, mapped := n.courts.Lookup(req.CourtName)
	if !mapped {
		// First-option defaulting targets *a* court in the default state,
		// not necessarily the requested one. See COURT_MAP_FILE.
		n.logger.WithField("court", req.CourtName).Warn("No jurisdiction mapping for court, defaulting to first options")
	}

	if err := n.openSearchForm(ctx); err != nil {
		return "", err
	}
	if err := n.selectJurisdiction(ctx, mapping); err != nil {
		return "", err
	}
	if err := n.fillCaseForm(ctx, req); err != nil {
		return "", err
	}
	if err := n.resolveCaptcha(ctx); err != nil {
		return "", err
	}
	if err := n.submit(ctx); err != nil {
		return "", err
	}
	return n.classifyLanding(ctx)
}

// openSearchForm loads the case-status page and waits for the state dropdown
func (n *NavigationController) openSearchForm(ctx context.Context) error {
	searchURL := n.portal.BaseURL
	if parsed, err := url.Parse(n.portal.BaseURL); err == nil {
		query := parsed.Query()
		query.Set("p", "casestatus")
		parsed.RawQuery = query.Encode()
		searchURL = parsed.String()
	}

	n.logger.WithField("url", searchURL).Debug("Opening case status form")
	if err := n.driver.Navigate(ctx, searchURL); err != nil {
		return n.classifyStepError(ctx, err, fmt.Errorf("failed to load search form: %w", err))
	}
	return n.waitStep(ctx, selStateDropdown)
}

// selectJurisdiction walks the four cascading dropdowns. Each selection
// repopulates the next dropdown, so every step waits for the element and
// then allows a settle delay before reading options.
func (n *NavigationController) selectJurisdiction(ctx context.Context, mapping config.CourtMapping) error {
	steps := []struct {
		selector string
		label    string
		next     NavState
	}{
		{selStateDropdown, n.stateLabel(mapping), StateStateChosen},
		{selDistrictDropdown, mapping.District, StateDistrictChosen},
		{selComplexDropdown, mapping.CourtComplex, StateComplexChosen},
		{selEstablishmentDropdown, mapping.Establishment, StateEstablishmentChosen},
	}

	for _, step := range steps {
		if err := n.waitStep(ctx, step.selector); err != nil {
			return err
		}
		if err := n.selectOption(ctx, step.selector, step.label); err != nil {
			return err
		}
		n.state = step.next
		n.logger.WithField("state", n.state.String()).Debug("Jurisdiction step completed")
		n.settle(n.portal.SettleDelay)
	}
	return nil
}

// stateLabel picks the portal state to select: the mapped state when
// configured, else the global default
func (n *NavigationController) stateLabel(mapping config.CourtMapping) string {
	if mapping.State != "" {
		return mapping.State
	}
	return n.portal.DefaultState
}

// selectOption selects by visible text when a label is configured,
// otherwise falls back to the first enumerable option
func (n *NavigationController) selectOption(ctx context.Context, selector, label string) error {
	if label != "" {
		if err := n.driver.SelectByText(ctx, selector, label); err == nil {
			return nil
		}
		n.logger.WithFields(logrus.Fields{
			"selector": selector,
			"label":    label,
		}).Warn("Dropdown option not found by text, falling back to first option")
	}
	if err := n.driver.SelectFirstOption(ctx, selector); err != nil {
		return n.classifyStepError(ctx, err, fmt.Errorf("failed to select option in %s: %w", selector, err))
	}
	return nil
}

// fillCaseForm activates the case-number tab and fills type, number and year
func (n *NavigationController) fillCaseForm(ctx context.Context, req models.SearchRequest) error {
	if err := n.driver.ClickText(ctx, caseNumberTabText); err != nil {
		return n.classifyStepError(ctx, err, fmt.Errorf("case number tab not found: %w", err))
	}
	n.state = StateCaseTypeTabActive
	n.settle(n.portal.SettleDelay / 2)

	if err := n.waitStep(ctx, selCaseTypeDropdown); err != nil {
		return err
	}

	// Exact title-cased match against the dropdown; an unknown case type
	// falls back to the first option rather than failing the search
	if err := n.driver.SelectByText(ctx, selCaseTypeDropdown, utils.TitleCase(req.CaseType)); err != nil {
		n.logger.WithField("case_type", req.CaseType).Warn("Case type not found in dropdown, selecting first option")
		if err := n.driver.SelectFirstOption(ctx, selCaseTypeDropdown); err != nil {
			return n.classifyStepError(ctx, err, fmt.Errorf("failed to select case type: %w", err))
		}
	}

	if err := n.driver.Type(ctx, selCaseNumberInput, req.CaseNumber); err != nil {
		return n.classifyStepError(ctx, err, fmt.Errorf("failed to enter case number: %w", err))
	}
	if err := n.driver.Type(ctx, selFilingYearInput, fmt.Sprintf("%d", req.FilingYear)); err != nil {
		return n.classifyStepError(ctx, err, fmt.Errorf("failed to enter filing year: %w", err))
	}

	n.state = StateFormFilled
	return nil
}

// resolveCaptcha extracts the challenge image, delegates to the captcha
// service and types the solution. Failure terminates the search before the
// form is ever submitted.
func (n *NavigationController) resolveCaptcha(ctx context.Context) error {
	n.state = StateCaptchaPending

	imageSource, err := n.driver.GetAttribute(ctx, selCaptchaImage, "src")
	if err != nil || imageSource == "" {
		return n.classifyStepError(ctx, err, fmt.Errorf("captcha image not found on page"))
	}

	solution, err := n.captcha.Solve(ctx, models.CaptchaChallenge{ImageSource: n.absoluteURL(imageSource)})
	if err != nil || solution == "" {
		if err == nil {
			err = ErrCaptchaNotSolved
		}
		return navFailure(models.CauseCaptcha, n.state, err)
	}

	if err := n.driver.Type(ctx, selCaptchaInput, solution); err != nil {
		return n.classifyStepError(ctx, err, fmt.Errorf("failed to enter captcha solution: %w", err))
	}
	return nil
}

// submit posts the form and waits briefly for the landing page
func (n *NavigationController) submit(ctx context.Context) error {
	if err := n.driver.Click(ctx, selSubmitButton); err != nil {
		return n.classifyStepError(ctx, err, fmt.Errorf("submit button not found: %w", err))
	}
	n.state = StateSubmitted
	n.settle(n.portal.SettleDelay + time.Second)
	return nil
}

// classifyLanding inspects the post-submit page: a results table marks a
// result page, an explicit no-record phrase a negative result, anything
// else is treated as portal drift.
func (n *NavigationController) classifyLanding(ctx context.Context) (string, error) {
	html, err := n.driver.GetHTML(ctx)
	if err != nil {
		return "", n.classifyStepError(ctx, err, fmt.Errorf("failed to read landing page: %w", err))
	}

	lower := strings.ToLower(html)
	if strings.Contains(lower, "case_details") || n.hasResultsTable(ctx) {
		n.state = StateResultPage
		return html, nil
	}

	for _, phrase := range noRecordPhrases {
		if strings.Contains(lower, phrase) {
			n.state = StateNoRecordPage
			return html, nil
		}
	}

	n.state = StateUnexpectedPage
	return "", navFailure(models.CauseNavigation, n.state, errors.New("unexpected response from court website"))
}

// hasResultsTable probes for the results table with a short bounded wait
func (n *NavigationController) hasResultsTable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return n.driver.WaitVisible(probeCtx, selResultsTable) == nil
}

// waitStep waits for an element with the per-step timeout
func (n *NavigationController) waitStep(ctx context.Context, selector string) error {
	stepCtx, cancel := context.WithTimeout(ctx, n.portal.StepTimeout)
	defer cancel()

	if err := n.driver.WaitVisible(stepCtx, selector); err != nil {
		return n.classifyStepError(ctx, err, fmt.Errorf("element %s not present: %w", selector, err))
	}
	return nil
}

// classifyStepError folds a step failure into a navigation failure: an
// expired deadline is a timeout, anything else signals the portal layout
// diverging from the expected structure.
func (n *NavigationController) classifyStepError(ctx context.Context, cause error, err error) *NavigationFailure {
	if errors.Is(cause, context.DeadlineExceeded) || ctx.Err() != nil {
		return navFailure(models.CauseTimeout, n.state, err)
	}
	return navFailure(models.CauseNavigation, n.state, err)
}

// absoluteURL resolves a page-relative image source against the portal base
func (n *NavigationController) absoluteURL(src string) string {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") || strings.HasPrefix(src, "data:") {
		return src
	}
	base, err := url.Parse(n.portal.BaseURL)
	if err != nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
