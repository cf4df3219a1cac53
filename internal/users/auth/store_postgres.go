// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/agroviatech/portal/internal/platform/dberr"
	"github.com/agroviatech/portal/internal/platform/postgres"
	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/pkg/pagination"
)

// emailUniqueConstraint is the unique index on lower(email).
const emailUniqueConstraint = "account_email_key"

const userColumns = `id, nom, prenom, email, passwordhash, role,
	COALESCE(telephone, ''), COALESCE(adresse, ''), COALESCE(region, ''),
	estactif, dernierlogin, createdat, updatedat`

// # User Directory

// PostgresUserDirectory implements [UserDirectory] on the users.account table.
type PostgresUserDirectory struct {
	db postgres.DBTX
}

// NewPostgresUserDirectory wraps a pool (or any [postgres.DBTX]).
func NewPostgresUserDirectory(db postgres.DBTX) *PostgresUserDirectory {
	return &PostgresUserDirectory{db: db}
}

/*
Create persists a new user record into the users.account table.

Description: The unique index on lower(email) makes the insert atomic with
respect to duplicates; a violation of that index surfaces as
[ErrEmailAlreadyUsed].

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: ErrEmailAlreadyUsed or wrapped database errors
*/
func (repository *PostgresUserDirectory) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, nom, prenom, email, passwordhash, role,
			telephone, adresse, region, estactif, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12)`

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	user.Email = NormalizeEmail(user.Email)

	_, err := repository.db.Exec(context, query,
		user.ID,
		user.Nom,
		user.Prenom,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Telephone,
		user.Adresse,
		user.Region,
		user.EstActif,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err, emailUniqueConstraint) {
			return ErrEmailAlreadyUsed.WithCause(err)
		}
		return dberr.Wrap(err, "postgres_user_directory_create_failed")
	}

	return nil
}

/*
FindByID retrieves a user record by its identifier.

Returns:
  - *User: Hydrated account entity
  - error: ErrUserNotFound or database errors
*/
func (repository *PostgresUserDirectory) FindByID(context context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users.account WHERE id = $1`
	return repository.findOne(context, query, id)
}

/*
FindByEmail retrieves a user record by email, compared case-insensitively.

Returns:
  - *User: Hydrated account entity
  - error: ErrUserNotFound or database errors
*/
func (repository *PostgresUserDirectory) FindByEmail(context context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users.account WHERE lower(email) = $1`
	return repository.findOne(context, query, NormalizeEmail(email))
}

// Update persists profile fields. The email, role, password hash and account
// status are not touched here.
func (repository *PostgresUserDirectory) Update(context context.Context, user *User, at time.Time) error {
	const query = `
		UPDATE users.account
		SET nom = $2, prenom = $3, telephone = NULLIF($4, ''), adresse = NULLIF($5, ''),
			region = NULLIF($6, ''), updatedat = $7
		WHERE id = $1`

	tag, err := repository.db.Exec(context, query,
		user.ID,
		user.Nom,
		user.Prenom,
		user.Telephone,
		user.Adresse,
		user.Region,
		at,
	)
	if err != nil {
		return dberr.Wrap(err, "postgres_user_directory_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	user.UpdatedAt = at
	return nil
}

// SetActive enables or disables the account.
func (repository *PostgresUserDirectory) SetActive(context context.Context, id string, active bool, at time.Time) error {
	const query = `UPDATE users.account SET estactif = $2, updatedat = $3 WHERE id = $1`

	tag, err := repository.db.Exec(context, query, id, active, at)
	if err != nil {
		return dberr.Wrap(err, "postgres_user_directory_set_active_failed")
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateRole sets the role and returns the refreshed record in one round trip.
func (repository *PostgresUserDirectory) UpdateRole(context context.Context, id string, role sec.UserRole, at time.Time) (*User, error) {
	query := `
		UPDATE users.account SET role = $2, updatedat = $3
		WHERE id = $1
		RETURNING ` + userColumns

	return repository.findOne(context, query, id, string(role), at)
}

// TouchLogin records the last successful login.
func (repository *PostgresUserDirectory) TouchLogin(context context.Context, id string, at time.Time) error {
	const query = `UPDATE users.account SET dernierlogin = $2 WHERE id = $1`

	tag, err := repository.db.Exec(context, query, id, at)
	if err != nil {
		return dberr.Wrap(err, "postgres_user_directory_touch_login_failed")
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

/*
List returns a page of users with the total count.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*User: Page of users ordered by creation date
  - int: Total number of users
  - error: Database errors
*/
func (repository *PostgresUserDirectory) List(context context.Context, params pagination.Params) ([]*User, int, error) {
	var total int
	if err := repository.db.QueryRow(context, `SELECT count(*) FROM users.account`).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_user_directory_count_failed")
	}

	query := `SELECT ` + userColumns + `
		FROM users.account
		ORDER BY createdat ASC, id ASC
		LIMIT $1 OFFSET $2`

	rows, err := repository.db.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_user_directory_list_failed")
	}
	defer rows.Close()

	users := make([]*User, 0, params.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_user_directory_scan_failed")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_user_directory_rows_failed")
	}

	return users, total, nil
}

// # Scanning

func (repository *PostgresUserDirectory) findOne(context context.Context, query string, args ...any) (*User, error) {
	user, err := scanUser(repository.db.QueryRow(context, query, args...))
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, dberr.Wrap(err, "postgres_user_directory_find_failed")
	}
	return user, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		user      User
		role      string
		lastLogin pgtype.Timestamptz
	)

	err := row.Scan(
		&user.ID,
		&user.Nom,
		&user.Prenom,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.Telephone,
		&user.Adresse,
		&user.Region,
		&user.EstActif,
		&lastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = sec.UserRole(role)
	if lastLogin.Valid {
		at := lastLogin.Time
		user.DernierLogin = &at
	}
	return &user, nil
}
