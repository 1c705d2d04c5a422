package gateway_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/alovak/pos-gateway/gateway"
	"github.com/alovak/pos-gateway/internal/config"
	"github.com/stretchr/testify/require"
)

func TestApp(t *testing.T) {
	upstream := newUpstreamMock(t)

	cfg := &config.Config{
		Port:            "0",
		RepoBackend:     "mem",
		AllowMemBackend: true,
		Nequi:           config.NequiConfig{BaseURL: upstream.srv.URL},
	}

	app := gateway.NewApp(testLogger(), cfg)
	require.NoError(t, app.Start())
	t.Cleanup(app.Shutdown)

	base := "http://" + app.Addr

	t.Run("liveness", func(t *testing.T) {
		resp, err := http.Get(base + "/-/live")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("readiness", func(t *testing.T) {
		resp, err := http.Get(base + "/-/ready")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		resp, err := http.Get(base + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("api mounted under prefix", func(t *testing.T) {
		resp, err := http.Get(base + "/api/pos/equipment/validate/00:00:00:00:00:00")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Success    bool            `json:"success"`
			Authorized bool            `json:"authorized"`
			Equipment  json.RawMessage `json:"equipment"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.True(t, body.Success)
		require.False(t, body.Authorized)
	})
}

func TestApp_MemBackendDisabledByDefault(t *testing.T) {
	cfg := &config.Config{
		Port:        "0",
		RepoBackend: "mem",
	}

	app := gateway.NewApp(testLogger(), cfg)
	require.Error(t, app.Start())
}
