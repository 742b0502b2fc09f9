package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const engagementColumns = `
	id, request_id, mentee_id, mentor_id, topic, status,
	start_date, end_date, goals_set, withdrawn_by, sessions, tasks,
	created_at, updated_at`

// GetEngagement fetches a single engagement by id
func (c *Client) GetEngagement(ctx context.Context, id string) (e *models.Engagement, err error) {
	start := time.Now()
	defer func() { observe("getEngagement", start, ignoreNotFound(err)) }()

	row := c.db.QueryRow(ctx, "SELECT "+engagementColumns+", version FROM engagements WHERE id = $1", id)
	e, err = scanEngagement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFoundError("engagement", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get engagement: %w", err)
	}
	return e, nil
}

// UpsertEngagement inserts a new engagement (Version 0) or updates the stored
// row if it is still at e.Version. A stale write fails with ErrConflict.
// On success e.Version holds the new stored version.
func (c *Client) UpsertEngagement(ctx context.Context, e *models.Engagement) (err error) {
	start := time.Now()
	defer func() { observe("upsertEngagement", start, err) }()

	sessions, err := json.Marshal(nonNilSessions(e.Sessions))
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	tasks, err := json.Marshal(nonNilTasks(e.Tasks))
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}

	var tag pgconn.CommandTag
	if e.Version == 0 {
		tag, err = c.db.Exec(ctx, `
			INSERT INTO engagements (`+engagementColumns+`, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1)
			ON CONFLICT (id) DO NOTHING`,
			e.ID,
			nilIfEmpty(e.RequestID),
			e.MenteeID,
			e.MentorID,
			e.Topic,
			string(e.Status),
			e.StartDate,
			e.EndDate,
			e.GoalsSet,
			nilIfEmpty(string(e.WithdrawnBy)),
			sessions,
			tasks,
			e.CreatedAt,
			e.UpdatedAt,
		)
	} else {
		tag, err = c.db.Exec(ctx, `
			UPDATE engagements SET
				status       = $2,
				start_date   = $3,
				end_date     = $4,
				goals_set    = $5,
				withdrawn_by = $6,
				sessions     = $7,
				tasks        = $8,
				updated_at   = $9,
				version      = version + 1
			WHERE id = $1 AND version = $10`,
			e.ID,
			string(e.Status),
			e.StartDate,
			e.EndDate,
			e.GoalsSet,
			nilIfEmpty(string(e.WithdrawnBy)),
			sessions,
			tasks,
			e.UpdatedAt,
			e.Version,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert engagement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ConflictError("engagement", e.ID)
	}

	e.Version++
	return nil
}

// ListEngagements fetches engagements matching the filter ordered by creation time
func (c *Client) ListEngagements(ctx context.Context, filter models.EngagementFilter) (result []*models.Engagement, err error) {
	start := time.Now()
	defer func() { observe("listEngagements", start, err) }()

	where, args := buildWhere(map[string]string{
		"mentee_id": filter.MenteeID,
		"mentor_id": filter.MentorID,
		"status":    string(filter.Status),
	})
	query := "SELECT " + engagementColumns + ", version FROM engagements" + where + " ORDER BY created_at, id"

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}
	defer rows.Close()

	result = make([]*models.Engagement, 0)
	for rows.Next() {
		e, scanErr := scanEngagement(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan engagement: %w", scanErr)
		}
		result = append(result, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate engagements: %w", err)
	}
	return result, nil
}

func scanEngagement(row pgx.Row) (*models.Engagement, error) {
	var (
		e           models.Engagement
		requestID   *string
		status      string
		withdrawnBy *string
		sessions    []byte
		tasks       []byte
	)

	err := row.Scan(
		&e.ID, &requestID, &e.MenteeID, &e.MentorID, &e.Topic, &status,
		&e.StartDate, &e.EndDate, &e.GoalsSet, &withdrawnBy, &sessions, &tasks,
		&e.CreatedAt, &e.UpdatedAt, &e.Version,
	)
	if err != nil {
		return nil, err
	}

	e.RequestID = valueOrEmpty(requestID)
	e.Status = models.EngagementStatus(status)
	e.WithdrawnBy = models.Party(valueOrEmpty(withdrawnBy))

	e.Sessions = []models.Session{}
	if len(sessions) > 0 {
		if err := json.Unmarshal(sessions, &e.Sessions); err != nil {
			return nil, fmt.Errorf("failed to decode sessions: %w", err)
		}
	}
	e.Tasks = []models.Task{}
	if len(tasks) > 0 {
		if err := json.Unmarshal(tasks, &e.Tasks); err != nil {
			return nil, fmt.Errorf("failed to decode tasks: %w", err)
		}
	}
	return &e, nil
}

// buildWhere turns non-empty equality filters into a WHERE clause.
// Columns are emitted in sorted order so queries stay stable.
func buildWhere(filters map[string]string) (string, []any) {
	columns := make([]string, 0, len(filters))
	for column, value := range filters {
		if value != "" {
			columns = append(columns, column)
		}
	}
	if len(columns) == 0 {
		return "", nil
	}
	sort.Strings(columns)

	clauses := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for i, column := range columns {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, i+1))
		args = append(args, filters[column])
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func ignoreNotFound(err error) error {
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}

func nonNilSessions(s []models.Session) []models.Session {
	if s == nil {
		return []models.Session{}
	}
	return s
}

func nonNilTasks(t []models.Task) []models.Task {
	if t == nil {
		return []models.Task{}
	}
	return t
}
