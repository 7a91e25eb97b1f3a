package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to write")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "failed to write")
}

func TestIsMatchesByCode(t *testing.T) {
	err := Clone(ErrDuplicateKey, "email already in use")
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NotErrorIs(t, err, ErrNotFound)

	wrapped := fmt.Errorf("create student: %w", err)
	assert.ErrorIs(t, wrapped, ErrDuplicateKey)
}

func TestCloneOverridesMessageOnly(t *testing.T) {
	clone := Clone(ErrLastAdminProtected, "refusing to delete admin-1")
	assert.Equal(t, ErrLastAdminProtected.Code, clone.Code)
	assert.Equal(t, ErrLastAdminProtected.Status, clone.Status)
	assert.Equal(t, "refusing to delete admin-1", clone.Message)
	// The sentinel itself must stay untouched.
	assert.Equal(t, "cannot delete the last administrator", ErrLastAdminProtected.Message)
}

func TestCloneEmptyMessageKeepsOriginal(t *testing.T) {
	clone := Clone(ErrOffline, "")
	assert.Equal(t, ErrOffline.Message, clone.Message)
}

func TestFromErrorNormalisesForeignErrors(t *testing.T) {
	e := FromError(stderrors.New("boom"))
	require.NotNil(t, e)
	assert.Equal(t, ErrInternal.Code, e.Code)
	assert.Equal(t, http.StatusInternalServerError, e.Status)

	typed := FromError(Clone(ErrNotFound, ""))
	assert.Equal(t, ErrNotFound.Code, typed.Code)

	assert.Nil(t, FromError(nil))
}
