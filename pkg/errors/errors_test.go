package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("handler: %w", Clone(ErrNotFound, "no child matches the check-in code"))

	assert.True(t, stdErrors.Is(err, ErrNotFound))
	assert.False(t, stdErrors.Is(err, ErrValidation))
}

func TestPersistenceWrapsCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Persistence(cause, "failed to write attendance")

	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, "failed to write attendance: connection refused", err.Error())
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	assert.Nil(t, FromError(nil))
	assert.Equal(t, ErrInternal.Code, FromError(stdErrors.New("boom")).Code)

	invalid := Invalid("amount must be a number")
	assert.Same(t, invalid, FromError(invalid))
	assert.Equal(t, http.StatusBadRequest, invalid.Status)
}
