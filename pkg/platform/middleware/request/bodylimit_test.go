package request

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyLimit(t *testing.T) {
	const maxBytes int64 = 100

	t.Run("body at the limit reaches the handler", func(t *testing.T) {
		var got []byte
		handler := BodyLimit(maxBytes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var err error
			got, err = io.ReadAll(r.Body)
			require.NoError(t, err)
		}))

		req := httptest.NewRequest(http.MethodPut, "/v1/archives/backupid", strings.NewReader(strings.Repeat("x", 100)))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, got, 100)
	})

	t.Run("declared length over the limit is refused up front", func(t *testing.T) {
		called := false
		handler := BodyLimit(maxBytes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodPut, "/v1/archives/backupid", strings.NewReader(strings.Repeat("x", 200)))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "request_too_large")
	})

	t.Run("undeclared length is cut off on read", func(t *testing.T) {
		var readErr error
		handler := BodyLimit(maxBytes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
		}))

		req := httptest.NewRequest(http.MethodPost, "/v1/archives/redeem-receipt", strings.NewReader(strings.Repeat("x", 200)))
		req.ContentLength = -1
		handler.ServeHTTP(httptest.NewRecorder(), req)

		var tooLarge *http.MaxBytesError
		require.True(t, errors.As(readErr, &tooLarge))
		assert.Equal(t, maxBytes, tooLarge.Limit)
	})

	t.Run("bodiless GET passes through", func(t *testing.T) {
		handler := BodyLimit(maxBytes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/archives/auth", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
