package wellknown

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/core-coin/stips/pkg/logger"
)

func TestFetchAndUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/.well-known/reserved-handles.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"handles":["Admin","support","Core-Coin"]}`))
	}))
	defer server.Close()

	reserved := NewReservedHandles(logger.NewNopLogger(), server.URL)
	require.NoError(t, reserved.FetchAndUpdate())

	// Entries are cached in normalized form.
	assert.True(t, reserved.IsReserved("admin"))
	assert.True(t, reserved.IsReserved("support"))
	assert.True(t, reserved.IsReserved("core-coin"))
	assert.False(t, reserved.IsReserved("alice"))
}

func TestFetchAndUpdateKeepsCacheOnFailure(t *testing.T) {
	fail := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"handles":["admin"]}`))
	}))
	defer server.Close()

	reserved := NewReservedHandles(logger.NewNopLogger(), server.URL)
	require.NoError(t, reserved.FetchAndUpdate())
	require.True(t, reserved.IsReserved("admin"))

	fail = true
	assert.Error(t, reserved.FetchAndUpdate())
	// The previous list is still in effect.
	assert.True(t, reserved.IsReserved("admin"))
}
