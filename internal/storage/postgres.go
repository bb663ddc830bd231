package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/courtdata/ecourts-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS queries (
	id             BIGSERIAL PRIMARY KEY,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	court_name     TEXT NOT NULL,
	case_type      TEXT NOT NULL,
	case_number    TEXT NOT NULL,
	filing_year    INT NOT NULL,
	search_status  TEXT NOT NULL DEFAULT 'pending',
	error_message  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS cases (
	id                BIGSERIAL PRIMARY KEY,
	query_id          BIGINT NOT NULL REFERENCES queries(id),
	court_name        TEXT NOT NULL,
	cnr_number        TEXT NOT NULL DEFAULT '',
	case_title        TEXT NOT NULL DEFAULT '',
	petitioner        TEXT NOT NULL DEFAULT '',
	respondent        TEXT NOT NULL DEFAULT '',
	filing_date       TEXT NOT NULL DEFAULT '',
	next_hearing_date TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT '',
	judge_name        TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
	id             BIGSERIAL PRIMARY KEY,
	case_id        BIGINT NOT NULL REFERENCES cases(id),
	order_type     TEXT NOT NULL DEFAULT 'Order',
	pdf_url        TEXT NOT NULL DEFAULT '',
	order_date     TEXT NOT NULL DEFAULT '',
	pdf_downloaded BOOLEAN NOT NULL DEFAULT FALSE,
	local_pdf_path TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_cases_query_id ON cases (query_id);
CREATE INDEX IF NOT EXISTS idx_orders_case_id ON orders (case_id);
`

// Store handles interactions with the PostgreSQL database
type Store struct {
	db     *pgxpool.Pool
	logger *logrus.Logger
}

// NewStore connects to the database and ensures the schema exists
func NewStore(ctx context.Context, connStr string, logger *logrus.Logger) (*Store, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	store := &Store{db: db, logger: logger}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema init failed: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the connection pool
func (s *Store) Close() {
	s.db.Close()
}

// SaveQuery records a search attempt and returns its assigned ID
func (s *Store) SaveQuery(ctx context.Context, req models.SearchRequest) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO queries (court_name, case_type, case_number, filing_year)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		req.CourtName, req.CaseType, req.CaseNumber, req.FilingYear,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save query: %w", err)
	}
	return id, nil
}

// UpdateQueryStatus records the final status of a search attempt
func (s *Store) UpdateQueryStatus(ctx context.Context, queryID int64, status models.OutcomeStatus, errorMessage string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE queries SET search_status = $2, error_message = $3 WHERE id = $1`,
		queryID, string(status), errorMessage)
	return err
}

// SaveCaseResult persists an extracted case and its orders in one
// transaction and returns the new case ID.
func (s *Store) SaveCaseResult(ctx context.Context, queryID int64, courtName string, record *models.CaseRecord) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var caseID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO cases (query_id, court_name, cnr_number, case_title, petitioner, respondent,
		                    filing_date, next_hearing_date, status, judge_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		queryID, courtName, record.CNRNumber, record.CaseTitle, record.Petitioner, record.Respondent,
		record.FilingDate, record.NextHearingDate, record.Status, record.JudgeName,
	).Scan(&caseID)
	if err != nil {
		return 0, fmt.Errorf("failed to save case: %w", err)
	}

	if len(record.Orders) > 0 {
		batch := &pgx.Batch{}
		for _, order := range record.Orders {
			batch.Queue(
				`INSERT INTO orders (case_id, order_type, pdf_url, order_date) VALUES ($1, $2, $3, $4)`,
				caseID, order.OrderType, order.PDFURL, order.OrderDate)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("failed to save orders: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return caseID, nil
}

// GetCase retrieves a stored case with its orders
func (s *Store) GetCase(ctx context.Context, caseID int64) (*models.StoredCase, []models.StoredOrder, error) {
	var stored models.StoredCase
	err := s.db.QueryRow(ctx,
		`SELECT id, query_id, court_name, cnr_number, case_title, petitioner, respondent,
		        filing_date, next_hearing_date, status, judge_name, created_at
		 FROM cases WHERE id = $1`,
		caseID,
	).Scan(&stored.ID, &stored.QueryID, &stored.CourtName,
		&stored.Record.CNRNumber, &stored.Record.CaseTitle, &stored.Record.Petitioner,
		&stored.Record.Respondent, &stored.Record.FilingDate, &stored.Record.NextHearingDate,
		&stored.Record.Status, &stored.Record.JudgeName, &stored.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	orders, err := s.ListOrders(ctx, caseID)
	if err != nil {
		return nil, nil, err
	}
	for _, order := range orders {
		stored.Record.Orders = append(stored.Record.Orders, order.Order)
	}
	return &stored, orders, nil
}

// ListOrders returns the stored orders of a case
func (s *Store) ListOrders(ctx context.Context, caseID int64) ([]models.StoredOrder, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, case_id, order_type, pdf_url, order_date, pdf_downloaded, local_pdf_path, created_at
		 FROM orders WHERE case_id = $1 ORDER BY id`,
		caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.StoredOrder
	for rows.Next() {
		var order models.StoredOrder
		if err := rows.Scan(&order.ID, &order.CaseID, &order.Order.OrderType, &order.Order.PDFURL,
			&order.Order.OrderDate, &order.Downloaded, &order.LocalPDFPath, &order.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// GetOrder retrieves a single stored order
func (s *Store) GetOrder(ctx context.Context, orderID int64) (*models.StoredOrder, error) {
	var order models.StoredOrder
	err := s.db.QueryRow(ctx,
		`SELECT id, case_id, order_type, pdf_url, order_date, pdf_downloaded, local_pdf_path, created_at
		 FROM orders WHERE id = $1`,
		orderID,
	).Scan(&order.ID, &order.CaseID, &order.Order.OrderType, &order.Order.PDFURL,
		&order.Order.OrderDate, &order.Downloaded, &order.LocalPDFPath, &order.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkOrderDownloaded records the local path of a fetched order PDF
func (s *Store) MarkOrderDownloaded(ctx context.Context, orderID int64, localPath string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE orders SET pdf_downloaded = TRUE, local_pdf_path = $2 WHERE id = $1`,
		orderID, localPath)
	return err
}

// ListQueries returns the search history, newest first
func (s *Store) ListQueries(ctx context.Context, limit, offset int) ([]models.Query, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM queries`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, created_at, court_name, case_type, case_number, filing_year, search_status, error_message
		 FROM queries ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var queries []models.Query
	for rows.Next() {
		var q models.Query
		if err := rows.Scan(&q.ID, &q.Timestamp, &q.CourtName, &q.CaseType, &q.CaseNumber,
			&q.FilingYear, &q.SearchStatus, &q.ErrorMessage); err != nil {
			return nil, 0, err
		}
		queries = append(queries, q)
	}
	return queries, total, rows.Err()
}

// Stats aggregates the search history for the dashboard endpoint
func (s *Store) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE search_status = 'success'),
		        COUNT(*) FILTER (WHERE search_status = 'error'),
		        COUNT(DISTINCT court_name)
		 FROM queries`,
	).Scan(&stats.TotalQueries, &stats.SuccessfulQueries, &stats.FailedQueries, &stats.UniqueCourts)
	if err != nil {
		return nil, err
	}

	if stats.TotalQueries > 0 {
		stats.SuccessRate = float64(stats.SuccessfulQueries) / float64(stats.TotalQueries) * 100
	}

	recent, _, err := s.ListQueries(ctx, 10, 0)
	if err != nil {
		return nil, err
	}
	stats.RecentQueries = recent
	return stats, nil
}

// queryTimeout bounds every persistence call made outside a request context
const queryTimeout = 5 * time.Second

// HealthCheck reports database health for the health endpoint
func (s *Store) HealthCheck() map[string]interface{} {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	}
	return map[string]interface{}{
		"status": "healthy",
	}
}
