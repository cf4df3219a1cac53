// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/internal/users/auth"
	"github.com/agroviatech/portal/pkg/pagination"
)

// # Memory Directory

/*
TestMemoryDirectory_UniqueEmail rejects a second account with the same email
in any letter case.
*/
func TestMemoryDirectory_UniqueEmail(t *testing.T) {
	directory := auth.NewMemoryUserDirectory()
	ctx := context.Background()

	require.NoError(t, directory.Create(ctx, &auth.User{ID: "a", Email: "Awa@Test.com", Role: sec.RoleVisiteur, EstActif: true}))

	err := directory.Create(ctx, &auth.User{ID: "b", Email: "awa@TEST.com", Role: sec.RoleVisiteur})
	assert.True(t, errors.Is(err, auth.ErrEmailAlreadyUsed))

	found, err := directory.FindByEmail(ctx, "AWA@test.com")
	require.NoError(t, err)
	assert.Equal(t, "a", found.ID)
	assert.Equal(t, "awa@test.com", found.Email)
}

/*
TestMemoryDirectory_ReturnsCopies ensures callers cannot mutate stored records.
*/
func TestMemoryDirectory_ReturnsCopies(t *testing.T) {
	directory := auth.NewMemoryUserDirectory()
	ctx := context.Background()
	require.NoError(t, directory.Create(ctx, &auth.User{ID: "a", Email: "a@test.com", Role: sec.RoleVisiteur}))

	first, err := directory.FindByID(ctx, "a")
	require.NoError(t, err)
	first.Role = sec.RoleAdmin

	second, err := directory.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleVisiteur, second.Role)
}

/*
TestMemoryDirectory_Mutations covers profile update, status and role changes,
login touch and missing ids.
*/
func TestMemoryDirectory_Mutations(t *testing.T) {
	directory := auth.NewMemoryUserDirectory()
	ctx := context.Background()
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	require.NoError(t, directory.Create(ctx, &auth.User{ID: "a", Nom: "Ba", Email: "a@test.com", Role: sec.RoleVisiteur}))

	updated, err := directory.UpdateRole(ctx, "a", sec.RoleAgriculteur, at)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAgriculteur, updated.Role)
	assert.True(t, at.Equal(updated.UpdatedAt))

	require.NoError(t, directory.TouchLogin(ctx, "a", at))
	user, err := directory.FindByID(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, user.DernierLogin)

	later := at.Add(time.Hour)
	user.Region = "Louga"
	user.EstActif = false
	require.NoError(t, directory.Update(ctx, user, later))
	user, err = directory.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Louga", user.Region)
	assert.True(t, later.Equal(user.UpdatedAt))
	assert.True(t, user.EstActif, "profile updates never change the account status")

	require.NoError(t, directory.SetActive(ctx, "a", false, later))
	user, err = directory.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.False(t, user.EstActif)

	_, err = directory.FindByID(ctx, "missing")
	assert.True(t, errors.Is(err, auth.ErrUserNotFound))
	_, err = directory.UpdateRole(ctx, "missing", sec.RoleAdmin, at)
	assert.True(t, errors.Is(err, auth.ErrUserNotFound))
	assert.True(t, errors.Is(directory.TouchLogin(ctx, "missing", at), auth.ErrUserNotFound))
	assert.True(t, errors.Is(directory.Update(ctx, &auth.User{ID: "missing"}, at), auth.ErrUserNotFound))
	assert.True(t, errors.Is(directory.SetActive(ctx, "missing", true, at), auth.ErrUserNotFound))
}

/*
TestMemoryDirectory_List pages in creation order.
*/
func TestMemoryDirectory_List(t *testing.T) {
	directory := auth.NewMemoryUserDirectory()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, directory.Create(ctx, &auth.User{
			ID:        fmt.Sprintf("u%d", i),
			Email:     fmt.Sprintf("u%d@test.com", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	page, total, err := directory.List(ctx, pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "u2", page[0].ID)
	assert.Equal(t, "u3", page[1].ID)

	page, _, err = directory.List(ctx, pagination.Params{Page: 4, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page)
}

/*
TestSeedDemoUsers seeds once and skips existing accounts on a second run.
*/
func TestSeedDemoUsers(t *testing.T) {
	f := newFixture(t)

	created, err := auth.SeedDemoUsers(context.Background(), f.directory, f.hasher, demoPassword)
	require.NoError(t, err)
	assert.Zero(t, created)

	_, total, err := f.directory.List(context.Background(), pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

// # Postgres Directory

func newPostgresFixture(t *testing.T) (*auth.PostgresUserDirectory, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return auth.NewPostgresUserDirectory(mock), mock
}

func accountColumns() []string {
	return []string{
		"id", "nom", "prenom", "email", "passwordhash", "role",
		"telephone", "adresse", "region", "estactif", "dernierlogin", "createdat", "updatedat",
	}
}

func sampleAccount() *auth.User {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &auth.User{
		ID:           "u-1",
		Nom:          "Ba",
		Prenom:       "Awa",
		Email:        "awa@test.com",
		PasswordHash: "hash",
		Role:         sec.RoleVisiteur,
		Telephone:    "+221770000000",
		EstActif:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func accountRow(user *auth.User) *pgxmock.Rows {
	return pgxmock.NewRows(accountColumns()).AddRow(
		user.ID, user.Nom, user.Prenom, user.Email, user.PasswordHash, string(user.Role),
		user.Telephone, user.Adresse, user.Region, user.EstActif, nil, user.CreatedAt, user.UpdatedAt,
	)
}

/*
TestPostgresDirectory_Create inserts the normalized record.
*/
func TestPostgresDirectory_Create(t *testing.T) {
	directory, mock := newPostgresFixture(t)
	user := sampleAccount()
	user.Email = "Awa@Test.com"

	mock.ExpectExec("INSERT INTO users.account").
		WithArgs(
			user.ID, user.Nom, user.Prenom, "awa@test.com", user.PasswordHash, "VISITEUR",
			user.Telephone, "", "", true, user.CreatedAt, user.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, directory.Create(context.Background(), user))
	assert.Equal(t, "awa@test.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresDirectory_CreateDuplicateEmail maps the unique index violation.
*/
func TestPostgresDirectory_CreateDuplicateEmail(t *testing.T) {
	directory, mock := newPostgresFixture(t)

	mock.ExpectExec("INSERT INTO users.account").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "account_email_key"})

	err := directory.Create(context.Background(), sampleAccount())
	assert.True(t, errors.Is(err, auth.ErrEmailAlreadyUsed), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresDirectory_FindByEmail looks up by lower(email).
*/
func TestPostgresDirectory_FindByEmail(t *testing.T) {
	directory, mock := newPostgresFixture(t)
	user := sampleAccount()

	mock.ExpectQuery("SELECT .+ FROM users.account WHERE lower\\(email\\) =").
		WithArgs("awa@test.com").
		WillReturnRows(accountRow(user))

	found, err := directory.FindByEmail(context.Background(), " AWA@test.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, sec.RoleVisiteur, found.Role)
	assert.Equal(t, user.Telephone, found.Telephone)
	assert.Nil(t, found.DernierLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresDirectory_FindByIDNotFound maps pgx.ErrNoRows.
*/
func TestPostgresDirectory_FindByIDNotFound(t *testing.T) {
	directory, mock := newPostgresFixture(t)

	mock.ExpectQuery("SELECT .+ FROM users.account WHERE id =").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	found, err := directory.FindByID(context.Background(), "missing")
	assert.Nil(t, found)
	assert.True(t, errors.Is(err, auth.ErrUserNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresDirectory_UpdateRole returns the refreshed row.
*/
func TestPostgresDirectory_UpdateRole(t *testing.T) {
	directory, mock := newPostgresFixture(t)
	user := sampleAccount()
	user.Role = sec.RoleAgriculteur
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("UPDATE users.account SET role").
		WithArgs(user.ID, "AGRICULTEUR", at).
		WillReturnRows(accountRow(user))

	updated, err := directory.UpdateRole(context.Background(), user.ID, sec.RoleAgriculteur, at)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAgriculteur, updated.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresDirectory_Update writes the profile fields with the given time and
leaves estactif out of the statement.
*/
func TestPostgresDirectory_Update(t *testing.T) {
	directory, mock := newPostgresFixture(t)
	user := sampleAccount()
	user.Region = "Louga"
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE users.account SET nom = \$2, .+ region = NULLIF\(\$6, ''\), updatedat = \$7 WHERE id = \$1`).
		WithArgs(user.ID, user.Nom, user.Prenom, user.Telephone, "", "Louga", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, directory.Update(context.Background(), user, at))
	assert.True(t, at.Equal(user.UpdatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresDirectory_UpdateMissing reports ErrUserNotFound when no row changed.
*/
func TestPostgresDirectory_UpdateMissing(t *testing.T) {
	directory, mock := newPostgresFixture(t)
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE users.account").
		WithArgs("missing", "", "", "", "", "", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := directory.Update(context.Background(), &auth.User{ID: "missing"}, at)
	assert.True(t, errors.Is(err, auth.ErrUserNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresDirectory_SetActive flips estactif and reports unknown ids.
*/
func TestPostgresDirectory_SetActive(t *testing.T) {
	directory, mock := newPostgresFixture(t)
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE users.account SET estactif").
		WithArgs("u-1", false, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users.account SET estactif").
		WithArgs("missing", true, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, directory.SetActive(context.Background(), "u-1", false, at))
	assert.True(t, errors.Is(directory.SetActive(context.Background(), "missing", true, at), auth.ErrUserNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresDirectory_List counts then pages.
*/
func TestPostgresDirectory_List(t *testing.T) {
	directory, mock := newPostgresFixture(t)
	user := sampleAccount()

	mock.ExpectQuery("SELECT count").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery("SELECT .+ FROM users.account\\s+ORDER BY").
		WithArgs(2, 2).
		WillReturnRows(accountRow(user))

	users, total, err := directory.List(context.Background(), pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, users, 1)
	assert.Equal(t, user.ID, users[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
