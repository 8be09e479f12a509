package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncYearFailure() *Error {
	return FromStorage(errors.New("connection refused"), "failed to sync year y1")
}

func TestFromStorageRecordsWrapSiteStack(t *testing.T) {
	err := syncYearFailure()

	require.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, ErrStorage.Code, err.Code)
	assert.Equal(t, "failed to sync year y1: connection refused", err.Error())
	assert.Contains(t, err.Stack(), "syncYearFailure")
}

func TestFromStorageClassifiesConstraints(t *testing.T) {
	dup := FromStorage(&pq.Error{Code: "23505"}, "")
	assert.True(t, errors.Is(dup, ErrConflict))
	assert.Empty(t, dup.Stack())

	fk := FromStorage(&pq.Error{Code: "23503"}, "")
	assert.True(t, errors.Is(fk, ErrValidation))
	assert.Equal(t, http.StatusBadRequest, fk.Status)
}

func TestCloneKeepsStack(t *testing.T) {
	err := syncYearFailure()
	clone := Clone(err, "other")

	assert.Equal(t, "other", clone.Message)
	assert.Equal(t, err.Stack(), clone.Stack())

	var nilErr *Error
	assert.Empty(t, nilErr.Stack())
	assert.Empty(t, Clone(ErrNotFound, "").Stack())
}
