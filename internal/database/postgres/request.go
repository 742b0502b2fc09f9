package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const requestColumns = `
	id, mentee_id, mentor_id, topic, message, submitted_date, status,
	response_message, rejection_reason, engagement_id, responded_date`

// GetRequest fetches a single mentorship request by id
func (c *Client) GetRequest(ctx context.Context, id string) (r *models.MentorshipRequest, err error) {
	start := time.Now()
	defer func() { observe("getRequest", start, ignoreNotFound(err)) }()

	row := c.db.QueryRow(ctx, "SELECT "+requestColumns+", version FROM mentorship_requests WHERE id = $1", id)
	r, err = scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFoundError("request", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return r, nil
}

// UpsertRequest inserts a new request (Version 0) or updates the stored row
// if it is still at r.Version. A stale write fails with ErrConflict.
func (c *Client) UpsertRequest(ctx context.Context, r *models.MentorshipRequest) (err error) {
	start := time.Now()
	defer func() { observe("upsertRequest", start, err) }()

	var tag pgconn.CommandTag
	if r.Version == 0 {
		tag, err = c.db.Exec(ctx, `
			INSERT INTO mentorship_requests (`+requestColumns+`, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)
			ON CONFLICT (id) DO NOTHING`,
			r.ID,
			r.MenteeID,
			r.MentorID,
			r.Topic,
			r.Message,
			r.SubmittedDate,
			string(r.Status),
			r.ResponseMessage,
			r.RejectionReason,
			nilIfEmpty(r.EngagementID),
			r.RespondedDate,
		)
	} else {
		tag, err = c.db.Exec(ctx, `
			UPDATE mentorship_requests SET
				status           = $2,
				response_message = $3,
				rejection_reason = $4,
				engagement_id    = $5,
				responded_date   = $6,
				version          = version + 1
			WHERE id = $1 AND version = $7`,
			r.ID,
			string(r.Status),
			r.ResponseMessage,
			r.RejectionReason,
			nilIfEmpty(r.EngagementID),
			r.RespondedDate,
			r.Version,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ConflictError("request", r.ID)
	}

	r.Version++
	return nil
}

// ListRequests fetches requests matching the filter ordered by submission time
func (c *Client) ListRequests(ctx context.Context, filter models.RequestFilter) (result []*models.MentorshipRequest, err error) {
	start := time.Now()
	defer func() { observe("listRequests", start, err) }()

	where, args := buildWhere(map[string]string{
		"mentee_id": filter.MenteeID,
		"mentor_id": filter.MentorID,
		"status":    string(filter.Status),
	})
	query := "SELECT " + requestColumns + ", version FROM mentorship_requests" + where + " ORDER BY submitted_date, id"

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	result = make([]*models.MentorshipRequest, 0)
	for rows.Next() {
		r, scanErr := scanRequest(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan request: %w", scanErr)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}
	return result, nil
}

func scanRequest(row pgx.Row) (*models.MentorshipRequest, error) {
	var (
		r            models.MentorshipRequest
		status       string
		engagementID *string
	)

	err := row.Scan(
		&r.ID, &r.MenteeID, &r.MentorID, &r.Topic, &r.Message, &r.SubmittedDate, &status,
		&r.ResponseMessage, &r.RejectionReason, &engagementID, &r.RespondedDate, &r.Version,
	)
	if err != nil {
		return nil, err
	}

	r.Status = models.RequestStatus(status)
	r.EngagementID = valueOrEmpty(engagementID)
	return &r, nil
}
