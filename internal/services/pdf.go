package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/courtdata/ecourts-api/internal/config"
	"github.com/courtdata/ecourts-api/internal/monitoring"
	"github.com/sirupsen/logrus"
)

// PDFService downloads order PDFs from the portal and stores them locally.
// Already-downloaded URLs are resolved through the cache so an order is
// fetched at most once while its entry lives.
type PDFService struct {
	config     config.PDFConfig
	userAgent  string
	cache      CacheServiceInterface
	httpClient *http.Client
	logger     *logrus.Logger
	metrics    *monitoring.Metrics
}

// NewPDFService creates a new PDF download service
func NewPDFService(cfg config.PDFConfig, userAgent string, cache CacheServiceInterface, httpClient *http.Client, logger *logrus.Logger) *PDFService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &PDFService{
		config:     cfg,
		userAgent:  userAgent,
		cache:      cache,
		httpClient: httpClient,
		logger:     logger,
	}
}

// SetMetrics attaches the metrics registry. Safe to leave unset in tests.
func (s *PDFService) SetMetrics(metrics *monitoring.Metrics) {
	s.metrics = metrics
}

// Download fetches an order PDF and returns the local file path. Cache hits
// are not counted as downloads.
func (s *PDFService) Download(ctx context.Context, pdfURL string, orderID int64) (string, error) {
	cacheKey := fmt.Sprintf("pdf:%s", pdfURL)
	if path, err := s.cache.Get(ctx, cacheKey); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			s.logger.WithField("path", path).Debug("PDF already downloaded")
			return path, nil
		}
		_ = s.cache.Delete(ctx, cacheKey)
	}

	path, err := s.fetch(ctx, pdfURL, orderID)
	if s.metrics != nil {
		s.metrics.RecordPDFDownload(err == nil)
	}
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, cacheKey, path); err != nil {
		s.logger.WithError(err).Warn("Failed to cache PDF path")
	}
	return path, nil
}

// fetch performs the actual HTTP download and writes the file to disk
func (s *PDFService) fetch(ctx context.Context, pdfURL string, orderID int64) (string, error) {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid PDF URL: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("PDF download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("PDF download returned status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "pdf") {
		s.logger.WithField("content_type", ct).Warn("Downloaded file may not be a PDF")
	}

	filename := fmt.Sprintf("order_%d_%d.pdf", orderID, time.Now().Unix())
	path := filepath.Join(s.config.StoragePath, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create PDF file: %w", err)
	}
	defer file.Close()

	maxSize := int64(s.config.MaxSizeMB) * 1024 * 1024
	written, err := io.Copy(file, io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write PDF file: %w", err)
	}
	if written > maxSize {
		os.Remove(path)
		return "", fmt.Errorf("PDF file exceeds %dMB limit", s.config.MaxSizeMB)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"path":     path,
		"bytes":    written,
	}).Info("PDF downloaded successfully")
	return path, nil
}
