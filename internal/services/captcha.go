package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/courtdata/ecourts-api/internal/models"
	"github.com/courtdata/ecourts-api/internal/monitoring"
	"github.com/courtdata/ecourts-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// captchaNotReady is the provider's only retryable poll response
const captchaNotReady = "CAPCHA_NOT_READY"

// captchaAPIResponse is the wire shape of the provider's in.php and res.php
// endpoints: status 1 carries an ID or solution in request, status 0 carries
// the error text.
type captchaAPIResponse struct {
	Status  int    `json:"status"`
	Request string `json:"request"`
	Error   string `json:"error_text,omitempty"`
}

// errorText returns whichever field the provider put the error message in
func (r *captchaAPIResponse) errorText() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Request
}

// CaptchaService solves image captchas through the paid provider with a
// local fallback path. It knows nothing about the portal.
type CaptchaService struct {
	config     config.CaptchaConfig
	httpClient *http.Client
	logger     *logrus.Logger
	metrics    *monitoring.Metrics

	// sleep, now and input are injectable so tests can run the full poll
	// timeout instantly and script manual entry
	sleep func(time.Duration)
	now   func() time.Time
	input io.Reader

	mu         sync.Mutex
	solveCount int64
	failCount  int64
}

// NewCaptchaService creates a new captcha service
func NewCaptchaService(cfg config.CaptchaConfig, httpClient *http.Client, logger *logrus.Logger) *CaptchaService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &CaptchaService{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger,
		sleep:      time.Sleep,
		now:        time.Now,
		input:      os.Stdin,
	}
}

// Solve resolves a captcha challenge. The provider strategy is used when an
// API key is configured; the fallback strategy runs when there is no key or
// the provider fails.
func (s *CaptchaService) Solve(ctx context.Context, challenge models.CaptchaChallenge) (string, error) {
	if s.config.APIKey == "" {
		s.logger.Warn("No captcha API key configured, using fallback methods")
		return s.fallbackSolve(challenge)
	}

	solution, err := s.solveWithProvider(ctx, challenge)
	if err != nil {
		s.logger.WithError(err).Error("Provider captcha solving failed")
		s.recordFailure()
		return s.fallbackSolve(challenge)
	}

	if !ValidateSolution(solution) {
		s.logger.WithField("solution_len", len(solution)).Warn("Provider returned malformed captcha solution")
		s.recordFailure()
		return "", ErrCaptchaNotSolved
	}

	s.recordSuccess()
	return solution, nil
}

// solveWithProvider submits the challenge image and polls for the solution
func (s *CaptchaService) solveWithProvider(ctx context.Context, challenge models.CaptchaChallenge) (string, error) {
	imageData, err := s.fetchImage(ctx, challenge.ImageSource)
	if err != nil {
		return "", fmt.Errorf("failed to obtain captcha image: %w", err)
	}

	captchaID, err := s.submitCaptcha(ctx, imageData)
	if err != nil {
		return "", err
	}

	s.logger.WithField("captcha_id", captchaID).Info("Captcha submitted to provider")
	return s.pollForSolution(ctx, captchaID)
}

// fetchImage resolves the challenge source into raw image bytes: fetched
// when it is a URL, decoded when inline
func (s *CaptchaService) fetchImage(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("captcha image fetch returned status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	// Inline image: data URI or bare base64
	payload := source
	if idx := strings.Index(payload, "base64,"); idx >= 0 {
		payload = payload[idx+len("base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode inline captcha image: %w", err)
	}
	return data, nil
}

// submitCaptcha uploads the image to the provider's in.php endpoint.
// Transport failures are retried up to the configured limit; a rejection
// from the provider is terminal.
func (s *CaptchaService) submitCaptcha(ctx context.Context, imageData []byte) (string, error) {
	attempts := s.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		id, err := s.submitCaptchaOnce(ctx, imageData)
		if err == nil {
			return id, nil
		}
		lastErr = err
		var rejection *captchaRejectionError
		if errors.As(err, &rejection) {
			return "", err
		}
		s.logger.WithError(err).WithField("attempt", attempt).Warn("Captcha submission failed")
		if attempt < attempts {
			s.sleep(s.config.PollInterval)
		}
	}
	return "", lastErr
}

func (s *CaptchaService) submitCaptchaOnce(ctx context.Context, imageData []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "captcha.png")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(imageData); err != nil {
		return "", err
	}
	_ = writer.WriteField("key", s.config.APIKey)
	_ = writer.WriteField("method", "post")
	_ = writer.WriteField("json", "1")
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/in.php", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("captcha submission request failed: %w", err)
	}
	defer resp.Body.Close()

	result, err := decodeCaptchaResponse(resp.Body)
	if err != nil {
		return "", err
	}
	if result.Status != 1 {
		return "", &captchaRejectionError{reason: result.errorText()}
	}
	return result.Request, nil
}

// captchaRejectionError marks a provider-side rejection that must not be
// retried (bad key, zero balance, malformed request).
type captchaRejectionError struct {
	reason string
}

func (e *captchaRejectionError) Error() string {
	return fmt.Sprintf("captcha submission rejected: %s", e.reason)
}

// pollForSolution polls res.php at a fixed interval until a solution
// arrives, a terminal error is reported, or the hard timeout elapses.
// Network failures during polling are retried within the same window.
func (s *CaptchaService) pollForSolution(ctx context.Context, captchaID string) (string, error) {
	deadline := s.now().Add(s.config.Timeout)

	for s.now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		s.sleep(s.config.PollInterval)

		result, err := s.checkResult(ctx, captchaID)
		if err != nil {
			s.logger.WithError(err).WithField("captcha_id", captchaID).Warn("Captcha poll request failed, retrying")
			continue
		}

		if result.Status == 1 {
			s.logger.WithField("captcha_id", captchaID).Info("Captcha solved by provider")
			return result.Request, nil
		}
		if result.errorText() != captchaNotReady {
			return "", fmt.Errorf("captcha provider error: %s", result.errorText())
		}
	}

	return "", ErrCaptchaTimeout
}

// checkResult queries the provider's res.php endpoint once
func (s *CaptchaService) checkResult(ctx context.Context, captchaID string) (*captchaAPIResponse, error) {
	url := fmt.Sprintf("%s/res.php?key=%s&action=get&id=%s&json=1", s.config.BaseURL, s.config.APIKey, captchaID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeCaptchaResponse(resp.Body)
}

func decodeCaptchaResponse(r io.Reader) (*captchaAPIResponse, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var result captchaAPIResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode captcha API response: %w", err)
	}
	return &result, nil
}

// fallbackSolve runs the non-provider strategies: local OCR (not
// implemented) and, when explicitly enabled, interactive manual entry.
// Interactive entry has no place in a non-interactive service run, so it is
// gated behind the manual-fallback flag.
func (s *CaptchaService) fallbackSolve(challenge models.CaptchaChallenge) (string, error) {
	s.logger.Info("Using fallback captcha solving method")

	if solution := s.ocrSolve(challenge); solution != "" {
		return solution, nil
	}

	if s.config.ManualFallback {
		if solution := s.manualPrompt(challenge); ValidateSolution(solution) {
			return solution, nil
		}
	}

	s.recordFailure()
	return "", ErrCaptchaNotSolved
}

// ocrSolve is a placeholder for local optical recognition
func (s *CaptchaService) ocrSolve(_ models.CaptchaChallenge) string {
	s.logger.Warn("Local OCR solving not implemented")
	return ""
}

// manualPrompt asks a human to read the captcha, for manual and test runs only
func (s *CaptchaService) manualPrompt(challenge models.CaptchaChallenge) string {
	fmt.Printf("\nPlease solve the captcha manually.\nImage source: %s\nEnter captcha text: ", challenge.ImageSource)

	scanner := bufio.NewScanner(s.input)
	if !scanner.Scan() {
		return ""
	}
	solution := strings.TrimSpace(scanner.Text())
	if solution == "" {
		s.logger.Warn("No captcha text entered")
		return ""
	}
	s.logger.Info("Manual captcha entry received")
	return solution
}

// ValidateSolution checks a candidate solution: 3 to 10 characters,
// alphanumeric only.
func ValidateSolution(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) < 3 || len(text) > 10 {
		return false
	}
	return utils.IsAlphanumeric(text)
}

// SetMetrics attaches the metrics registry. Safe to leave unset in tests.
func (s *CaptchaService) SetMetrics(metrics *monitoring.Metrics) {
	s.metrics = metrics
}

func (s *CaptchaService) recordSuccess() {
	s.mu.Lock()
	s.solveCount++
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordCaptcha(true)
	}
}

func (s *CaptchaService) recordFailure() {
	s.mu.Lock()
	s.failCount++
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordCaptcha(false)
	}
}

// Health returns captcha service health status
func (s *CaptchaService) Health() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode := "provider"
	if s.config.APIKey == "" {
		mode = "fallback"
	}
	return map[string]interface{}{
		"status": "healthy",
		"mode":   mode,
		"solved": s.solveCount,
		"failed": s.failCount,
	}
}
