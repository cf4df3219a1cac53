// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroviatech/portal/internal/platform/apperr"
)

/*
TestAppError_WithCode derives a specific error without mutating the base one.
*/
func TestAppError_WithCode(t *testing.T) {
	base := apperr.Conflict("Cet email est déjà utilisé")
	specific := base.WithCode("EMAIL_ALREADY_USED")

	assert.Equal(t, "CONFLICT", base.Code)
	assert.Equal(t, "EMAIL_ALREADY_USED", specific.Code)
	assert.Equal(t, http.StatusConflict, specific.HTTPStatus)
	assert.Equal(t, base.Message, specific.Message)
}

/*
TestAppError_Is matches sentinels by code through wrapping and WithCause.
*/
func TestAppError_Is(t *testing.T) {
	sentinel := apperr.New(http.StatusNotFound, "USER_NOT_FOUND", "Utilisateur non trouvé")

	wrapped := fmt.Errorf("lookup: %w", sentinel.WithCause(errors.New("no rows")))
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, apperr.NotFound("Parcel")))

	extracted := apperr.As(wrapped)
	require.NotNil(t, extracted)
	assert.Equal(t, "no rows", extracted.Cause.Error())
}

/*
TestIsAppError distinguishes plain errors.
*/
func TestIsAppError(t *testing.T) {
	assert.True(t, apperr.IsAppError(apperr.Forbidden("Accès non autorisé")))
	assert.False(t, apperr.IsAppError(errors.New("plain")))
	assert.Nil(t, apperr.As(errors.New("plain")))
}
