package travel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrixProviderEstimate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		assert.Equal(t, "loc-a", r.URL.Query().Get("from"))
		assert.Equal(t, "loc-b", r.URL.Query().Get("to"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"minutes": 12}`))
	}))
	defer server.Close()

	provider := NewMatrixProvider(server.URL, "secret", time.Second, nil)

	minutes, err := provider.EstimateMinutes(context.Background(), "loc-a", "loc-b")
	require.NoError(t, err)
	assert.Equal(t, int64(12), minutes)
}

func TestMatrixProviderSameLocation(t *testing.T) {
	// No server at all; same-location estimates never leave the process.
	provider := NewMatrixProvider("http://127.0.0.1:0", "", time.Second, nil)

	minutes, err := provider.EstimateMinutes(context.Background(), "loc-a", "loc-a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), minutes)
}

func TestMatrixProviderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewMatrixProvider(server.URL, "", time.Second, nil)

	_, err := provider.EstimateMinutes(context.Background(), "loc-a", "loc-b")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestMatrixProviderUnreachable(t *testing.T) {
	provider := NewMatrixProvider("http://127.0.0.1:1", "", 200*time.Millisecond, nil)

	_, err := provider.EstimateMinutes(context.Background(), "loc-a", "loc-b")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestMatrixProviderBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	provider := NewMatrixProvider(server.URL, "", time.Second, nil)

	_, err := provider.EstimateMinutes(context.Background(), "loc-a", "loc-b")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}
