package ops

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHealthz(t *testing.T) {
	h := NewRouter(Config{Logger: zerolog.Nop(), Gatherer: prometheus.NewRegistry()})

	code, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)
}

func TestReadyz(t *testing.T) {
	var failing bool
	h := NewRouter(Config{
		Logger:   zerolog.Nop(),
		Gatherer: prometheus.NewRegistry(),
		Ready: func(context.Context) error {
			if failing {
				return errors.New("db down")
			}
			return nil
		},
	})

	code, _ := get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)

	failing = true
	code, body := get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", body)
}

func TestReadyzWithoutCheck(t *testing.T) {
	h := NewRouter(Config{Logger: zerolog.Nop(), Gatherer: prometheus.NewRegistry()})

	code, _ := get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)
}

func TestMetricsExposesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "clinic_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Add(3)

	code, body := get(t, NewRouter(Config{Logger: zerolog.Nop(), Gatherer: reg}), "/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(body, "clinic_test_total 3"), body)
}

func TestNewServer(t *testing.T) {
	srv := NewServer(":0", Config{Logger: zerolog.Nop()})
	assert.Equal(t, ":0", srv.Addr)
	assert.NotNil(t, srv.Handler)
}
