// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package agrirequest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agroviatech/portal/internal/platform/dberr"
	"github.com/agroviatech/portal/internal/platform/postgres"
	"github.com/agroviatech/portal/pkg/pagination"
)

// pendingUniqueConstraint is the partial unique index on (userid) WHERE status = 'pending'.
const pendingUniqueConstraint = "one_pending_request_per_user"

const requestColumns = `id, userid, firstname, lastname, location, phone,
	experience, culturetype, justification, status, createdat, updatedat`

// PostgresStore implements [Store] on the users.agriculteurrequest table.
type PostgresStore struct {
	db postgres.DBTX
}

// NewPostgresStore wraps a pool (or any [postgres.DBTX]).
func NewPostgresStore(db postgres.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

/*
Create inserts a pending request.

Description: The partial unique index one_pending_request_per_user rejects a
second pending row for the same user, which surfaces as
[ErrRequestAlreadyPending].

Parameters:
  - context: context.Context
  - request: *Request

Returns:
  - error: ErrRequestAlreadyPending or wrapped database errors
*/
func (repository *PostgresStore) Create(context context.Context, request *Request) error {
	const query = `
		INSERT INTO users.agriculteurrequest (
			id, userid, firstname, lastname, location, phone,
			experience, culturetype, justification, status, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := repository.db.Exec(context, query,
		request.ID,
		request.UserID,
		request.FirstName,
		request.LastName,
		request.Location,
		request.Phone,
		request.Experience,
		request.CultureType,
		request.Justification,
		string(request.Status),
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err, pendingUniqueConstraint) {
			return ErrRequestAlreadyPending.WithCause(err)
		}
		return dberr.Wrap(err, "postgres_agri_request_create_failed")
	}

	return nil
}

// FindByID returns the request or [ErrRequestNotFound].
func (repository *PostgresStore) FindByID(context context.Context, id string) (*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM users.agriculteurrequest WHERE id = $1`
	return repository.findOne(context, query, id)
}

// LatestForUser returns the newest request of a user.
func (repository *PostgresStore) LatestForUser(context context.Context, userID string) (*Request, error) {
	query := `SELECT ` + requestColumns + `
		FROM users.agriculteurrequest
		WHERE userid = $1
		ORDER BY createdat DESC, id DESC
		LIMIT 1`
	return repository.findOne(context, query, userID)
}

/*
Transition moves a request between statuses with a conditional update.

Description: The WHERE clause pins the expected status so concurrent
resolutions cannot both succeed. When no row is returned, a lookup tells a
missing request apart from one that already left the expected status.

Returns:
  - *Request: The updated request
  - error: ErrRequestNotFound, ErrInvalidTransition or database errors
*/
func (repository *PostgresStore) Transition(context context.Context, id string, from, to Status, at time.Time) (*Request, error) {
	query := `
		UPDATE users.agriculteurrequest SET status = $3, updatedat = $4
		WHERE id = $1 AND status = $2
		RETURNING ` + requestColumns

	request, err := scanRequest(repository.db.QueryRow(context, query, id, string(from), string(to), at))
	if err == nil {
		return request, nil
	}
	if !dberr.IsNoRows(err) {
		return nil, dberr.Wrap(err, "postgres_agri_request_transition_failed")
	}

	if _, err := repository.FindByID(context, id); err != nil {
		return nil, err
	}
	return nil, ErrInvalidTransition
}

/*
List returns a filtered page of requests, newest first.

Parameters:
  - context: context.Context
  - filter: ListFilter (optional status and user)
  - params: pagination.Params

Returns:
  - []*Request: Page of requests
  - int: Number of requests matching the filter
  - error: Database errors
*/
func (repository *PostgresStore) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Request, int, error) {
	where, args := filterClause(filter)

	var total int
	countQuery := `SELECT count(*) FROM users.agriculteurrequest` + where
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_agri_request_count_failed")
	}

	query := fmt.Sprintf(`SELECT %s FROM users.agriculteurrequest%s
		ORDER BY createdat DESC, id DESC
		LIMIT $%d OFFSET $%d`, requestColumns, where, len(args)+1, len(args)+2)

	rows, err := repository.db.Query(context, query, append(args, params.Limit, params.Offset())...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_agri_request_list_failed")
	}
	defer rows.Close()

	requests := make([]*Request, 0, params.Limit)
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_agri_request_scan_failed")
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_agri_request_rows_failed")
	}

	return requests, total, nil
}

// CountByStatus groups the table by status.
func (repository *PostgresStore) CountByStatus(context context.Context) (map[Status]int, error) {
	rows, err := repository.db.Query(context, `SELECT status, count(*) FROM users.agriculteurrequest GROUP BY status`)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_agri_request_stats_failed")
	}
	defer rows.Close()

	counts := make(map[Status]int, 3)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, dberr.Wrap(err, "postgres_agri_request_scan_failed")
		}
		counts[Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "postgres_agri_request_rows_failed")
	}

	return counts, nil
}

// # Scanning

func (repository *PostgresStore) findOne(context context.Context, query string, args ...any) (*Request, error) {
	request, err := scanRequest(repository.db.QueryRow(context, query, args...))
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrRequestNotFound
		}
		return nil, dberr.Wrap(err, "postgres_agri_request_find_failed")
	}
	return request, nil
}

func scanRequest(row pgx.Row) (*Request, error) {
	var (
		request Request
		status  string
	)

	err := row.Scan(
		&request.ID,
		&request.UserID,
		&request.FirstName,
		&request.LastName,
		&request.Location,
		&request.Phone,
		&request.Experience,
		&request.CultureType,
		&request.Justification,
		&status,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	request.Status = Status(status)
	return &request, nil
}

// filterClause renders the optional WHERE clause and its positional args.
func filterClause(filter ListFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("userid = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
