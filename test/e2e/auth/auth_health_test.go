package auth_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/hearthlabs/hearth-auth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	for _, path := range []string{"/livez", "/readyz"} {
		resp, err := http.Get(baseURL + path)
		require.NoError(t, err, path)

		var health authsdk.HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health), path)
		resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		require.Equal(t, "ok", health.Status, path)
	}
}
