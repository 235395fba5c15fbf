package apperr

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf_WrappedError(t *testing.T) {
	err := errors.Wrap(NotFound("assignment %s not found", "abc"), "accept offer")

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindConflict))

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "assignment abc not found", appErr.Message())
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode())
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestKind_HTTPCode(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindNotFound:     http.StatusNotFound,
		KindInvalidState: http.StatusConflict,
		KindConflict:     http.StatusConflict,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, code := range cases {
		assert.Equal(t, code, kind.HTTPCode(), kind)
	}
}
