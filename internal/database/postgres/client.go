package postgres

import (
	"context"
	"time"

	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DB is the subset of pgxpool.Pool the client needs
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// Client runs mentorship queries against PostgreSQL with observability
type Client struct {
	db DB
}

// NewClient wraps a connection pool
func NewClient(db DB) *Client {
	return &Client{db: db}
}

// observe records duration metrics and logs the outcome of a database call
func observe(operation string, start time.Time, err error) {
	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil {
		status = "error"
	}

	metrics.DBClientOperationDuration.WithLabelValues("postgres_"+operation, status).Observe(duration)
	metrics.DBClientOperationTotal.WithLabelValues("postgres_"+operation, status).Inc()

	if err != nil {
		logger.LogAPICall("postgres", operation, status, duration, zap.Error(err))
		return
	}
	logger.LogAPICall("postgres", operation, status, duration)
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
