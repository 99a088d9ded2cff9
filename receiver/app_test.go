package receiver_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/alovak/cardflow-checkout/receiver"
	"github.com/stretchr/testify/require"
)

func TestApp(t *testing.T) {
	t.Setenv("ALLOW_MEM_BACKEND_FOR_TESTS", "true")

	config := receiver.DefaultConfig()
	config.HTTPAddr = "127.0.0.1:0"
	config.RepoBackend = "mem"

	app := receiver.NewApp(discardLogger(), config)
	require.NoError(t, app.Start())
	t.Cleanup(app.Shutdown)

	base := "http://" + app.Addr

	for _, path := range []string{"/-/live", "/-/ready"} {
		res, err := http.Get(base + path)
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode, path)
	}

	res, err := http.Post(base+"/notifications/", "application/json", bytes.NewBufferString(delivery))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestApp_MemBackendNeedsOptIn(t *testing.T) {
	t.Setenv("ALLOW_MEM_BACKEND_FOR_TESTS", "")

	config := receiver.DefaultConfig()
	config.RepoBackend = "mem"

	err := receiver.NewApp(discardLogger(), config).Start()
	require.ErrorContains(t, err, "ALLOW_MEM_BACKEND_FOR_TESTS")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DEDUPE_TTL", "1h")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REPO_BACKEND", "")

	config, err := receiver.ConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, ":9090", config.HTTPAddr)
	require.Equal(t, "redis:6379", config.RedisAddr)
	require.Equal(t, "pg", config.RepoBackend)
	require.Equal(t, "1h0m0s", config.DedupeTTL.String())

	t.Setenv("DEDUPE_TTL", "soon")
	_, err = receiver.ConfigFromEnv()
	require.Error(t, err)
}
