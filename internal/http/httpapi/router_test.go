package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixshop/internal/domain"
	"pixshop/internal/http/handlers"
	"pixshop/internal/metrics"
)

type failingRunner struct{}

func (failingRunner) Run(ctx context.Context, req domain.Request) domain.Result {
	return domain.Failed(domain.NewFailure(domain.EmptyResponse, "stub", "no image", nil))
}

func newServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	app := handlers.NewApp(failingRunner{}, nil, nil, nil)
	srv := httptest.NewServer(NewRouter(app, opts))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouterServesMetrics(t *testing.T) {
	collector := metrics.NewCollector("pixshop")
	srv := newServer(t, Options{Metrics: collector})

	resp, err := http.Get(srv.URL + "/v1/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `route="/v1/healthz"`)
}

func TestRouterRateLimitsImageRoutes(t *testing.T) {
	srv := newServer(t, Options{RateLimitPerMin: 1})

	call := func() int {
		resp, err := http.Post(srv.URL+"/v1/images/text-to-image", "application/json", strings.NewReader(`{"prompt":"a fox"}`))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusBadGateway, call())
	assert.Equal(t, http.StatusTooManyRequests, call())

	resp, err := http.Get(srv.URL + "/v1/presets")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterRejectsLargeBodies(t *testing.T) {
	srv := newServer(t, Options{MaxRequestBytes: 64})

	payload := `{"prompt":"` + strings.Repeat("a", 200) + `"}`
	resp, err := http.Post(srv.URL+"/v1/images/text-to-image", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestRouterPreflight(t *testing.T) {
	srv := newServer(t, Options{AllowedOrigins: []string{"http://localhost:5173"}})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/v1/images/stylize", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
