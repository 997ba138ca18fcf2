package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{ErrInvalidParam, http.StatusBadRequest},
		{ErrUpstreamGeneration, http.StatusBadGateway},
		{ErrUpstreamUnavailable, http.StatusServiceUnavailable},
		{ErrRenderFailed, http.StatusInternalServerError},
		{ErrStorage, http.StatusInternalServerError},
		{ErrInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

func TestWithDetailDoesNotMutatePredefined(t *testing.T) {
	err := ErrInvalidParam.WithDetail("topic is required")

	assert.Equal(t, "topic is required", err.Detail)
	assert.Empty(t, ErrInvalidParam.Detail)
	assert.Equal(t, "invalid parameter: topic is required", err.Description())
}

func TestAsAppErrorUnwrapsChain(t *testing.T) {
	base := ErrRenderFailed.WithError(fmt.Errorf("exit status 1"))
	wrapped := fmt.Errorf("produce document: %w", base)

	require.True(t, IsAppError(wrapped))
	appErr := AsAppError(wrapped)
	assert.Equal(t, CodeRenderFailed, appErr.Code)
	assert.True(t, stderrors.Is(wrapped, ErrRenderFailed))
	assert.False(t, stderrors.Is(wrapped, ErrStorage))
}

func TestAsAppErrorWrapsForeignError(t *testing.T) {
	appErr := AsAppError(stderrors.New("boom"))

	assert.Equal(t, CodeUnknown, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	assert.Contains(t, appErr.Error(), "boom")
}
