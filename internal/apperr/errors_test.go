package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs_MatchesOnCode(t *testing.T) {
	wrapped := fmt.Errorf("verify: %w", ErrTokenNotFound)
	require.True(t, errors.Is(wrapped, ErrTokenNotFound))
	require.False(t, errors.Is(wrapped, ErrUserNotFound))

	withCause := ErrUserNotFound.Wrap(errors.New("record not found"))
	require.True(t, errors.Is(withCause, ErrUserNotFound))
	require.Nil(t, ErrUserNotFound.Err, "Wrap must not mutate the sentinel")
}

func TestFrom_UnknownIsInternal(t *testing.T) {
	e := From(errors.New("boom"))
	require.Equal(t, KindInternal, e.Kind)
	require.Nil(t, From(nil))
	require.Equal(t, KindDelivery, KindOf(Delivery(errors.New("smtp down"))))
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{ErrTokenNotFound, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusBadRequest},
		{ErrUserNotFound, http.StatusNotFound},
		{ErrAlreadyVerified, http.StatusBadRequest},
		{ErrUserAlreadyExists, http.StatusBadRequest},
		{Validation("missing"), http.StatusBadRequest},
		{Delivery(nil), http.StatusInternalServerError},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{Internal(nil), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Code)
	}
}

func TestRespond_HidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, Internal(errors.New("pq: secret_hash=abcdef")))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "abcdef")

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, CodeInternal, body["error"])
	require.True(t, c.IsAborted())
}
