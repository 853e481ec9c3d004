package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/hupe1980/dinecluster"
	"github.com/hupe1980/dinecluster/internal/config"
	"github.com/hupe1980/dinecluster/internal/metrics"
	"github.com/hupe1980/dinecluster/query"
	"github.com/hupe1980/dinecluster/table"
	"github.com/hupe1980/dinecluster/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *dinecluster.Recommender) {
	t.Helper()
	canonical, features := testutil.Dataset(7, 90, 3)
	rec, err := dinecluster.New(context.Background(), canonical, features, dinecluster.WithK(3))
	require.NoError(t, err)
	return New(rec, opts...), rec
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, rec := newTestServer(t)

	res := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/json", res.Header().Get("Content-Type"))

	body := decode[healthResponse](t, res)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, rec.ID(), body.Session)
	assert.Equal(t, 90, body.Rows)
}

func TestCitiesAndCuisines(t *testing.T) {
	s, rec := newTestServer(t)

	cities := decode[[]string](t, do(t, s, http.MethodGet, "/v1/cities", ""))
	assert.Equal(t, rec.Cities(), cities)

	cuisines := decode[[]string](t, do(t, s, http.MethodGet, "/v1/cuisines", ""))
	assert.Equal(t, rec.Cuisines(), cuisines)
}

func TestTop(t *testing.T) {
	s, rec := newTestServer(t)
	city := rec.Cities()[0]

	t.Run("default n", func(t *testing.T) {
		res := do(t, s, http.MethodGet, "/v1/top?city="+city, "")
		require.Equal(t, http.StatusOK, res.Code)

		got := decode[query.TopResult](t, res)
		want := rec.TopNByCity(city, config.Default().Query.TopN)
		require.Len(t, got.Rows, len(want.Rows))
		for i := range want.Rows {
			assert.Equal(t, want.Rows[i].Name, got.Rows[i].Name)
			assert.Equal(t, want.Rows[i].Cluster, got.Rows[i].Cluster)
		}
		assert.Equal(t, want.Cuisine.Total(), got.Cuisine.Total())
	})

	t.Run("explicit n", func(t *testing.T) {
		got := decode[query.TopResult](t, do(t, s, http.MethodGet, "/v1/top?city="+city+"&n=2", ""))
		assert.LessOrEqual(t, len(got.Rows), 2)
	})

	t.Run("unknown city", func(t *testing.T) {
		res := do(t, s, http.MethodGet, "/v1/top?city=Atlantis", "")
		require.Equal(t, http.StatusOK, res.Code)
		assert.Empty(t, decode[query.TopResult](t, res).Rows)
	})

	for _, target := range []string{
		"/v1/top",
		"/v1/top?city=" + city + "&n=0",
		"/v1/top?city=" + city + "&n=abc",
		"/v1/top?city=" + city + "&n=101",
	} {
		t.Run(target, func(t *testing.T) {
			res := do(t, s, http.MethodGet, target, "")
			require.Equal(t, http.StatusBadRequest, res.Code)
			body := decode[errorBody](t, res)
			assert.Equal(t, http.StatusBadRequest, body.Error.Status)
			assert.Equal(t, "invalid_parameter", body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestTopMaxFromConfig(t *testing.T) {
	s, rec := newTestServer(t, WithQueryConfig(config.QueryConfig{TopN: 1, MaxTopN: 3}))
	city := rec.Cities()[0]

	got := decode[query.TopResult](t, do(t, s, http.MethodGet, "/v1/top?city="+city, ""))
	assert.Len(t, got.Rows, 1)

	res := do(t, s, http.MethodGet, "/v1/top?city="+city+"&n=4", "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestFilter(t *testing.T) {
	s, rec := newTestServer(t)
	city := rec.Cities()[0]

	t.Run("defaults", func(t *testing.T) {
		res := do(t, s, http.MethodGet, "/v1/filter?city="+city, "")
		require.Equal(t, http.StatusOK, res.Code)

		got := decode[filterResponse](t, res)
		want := rec.FilterRecords(query.DefaultFilter(city, ""))
		assert.Equal(t, query.DefaultFilter(city, ""), got.Filter)
		assert.Equal(t, len(want), got.Count)
		assert.Equal(t, got.Count, got.Cuisine.Total())
		assert.Equal(t, got.Count, got.Cluster.Total())
	})

	t.Run("bounds", func(t *testing.T) {
		res := do(t, s, http.MethodGet, "/v1/filter?city="+city+"&rating_min=4&cost_max=500", "")
		require.Equal(t, http.StatusOK, res.Code)

		got := decode[filterResponse](t, res)
		for _, r := range got.Rows {
			assert.Equal(t, city, r.City)
			assert.GreaterOrEqual(t, r.Rating, 4.0)
			assert.LessOrEqual(t, r.Cost, 500.0)
		}
	})

	for _, target := range []string{
		"/v1/filter",
		"/v1/filter?city=" + city + "&rating_min=4&rating_max=3",
		"/v1/filter?city=" + city + "&rating_max=6",
		"/v1/filter?city=" + city + "&cost_min=x",
		"/v1/filter?city=" + city + "&count_min=-1",
	} {
		t.Run(target, func(t *testing.T) {
			res := do(t, s, http.MethodGet, target, "")
			require.Equal(t, http.StatusBadRequest, res.Code)
			assert.Equal(t, "invalid_parameter", decode[errorBody](t, res).Error.Code)
		})
	}
}

func TestClusters(t *testing.T) {
	s, rec := newTestServer(t)

	res := do(t, s, http.MethodGet, "/v1/clusters", "")
	require.Equal(t, http.StatusOK, res.Code)

	var got struct {
		Session string             `json:"session"`
		Params  dinecluster.Params `json:"params"`
		Join    json.RawMessage    `json:"join"`
		Model   json.RawMessage    `json:"model"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &got))
	assert.Equal(t, rec.ID(), got.Session)
	assert.Equal(t, rec.Params(), got.Params)
	assert.NotEmpty(t, got.Join)
	assert.NotEmpty(t, got.Model)
}

func TestPoints(t *testing.T) {
	s, rec := newTestServer(t)

	t.Run("default columns", func(t *testing.T) {
		res := do(t, s, http.MethodGet, "/v1/clusters/points", "")
		require.Equal(t, http.StatusOK, res.Code)

		got := decode[dinecluster.Scatter](t, res)
		assert.Equal(t, "feature1", got.X)
		assert.Equal(t, "feature2", got.Y)
		assert.Len(t, got.Points, rec.Assignment().Len())
	})

	t.Run("explicit columns", func(t *testing.T) {
		got := decode[dinecluster.Scatter](t, do(t, s, http.MethodGet, "/v1/clusters/points?x=feature2&y=feature1", ""))
		assert.Equal(t, "feature2", got.X)
		assert.Equal(t, "feature1", got.Y)
	})

	t.Run("unknown column", func(t *testing.T) {
		res := do(t, s, http.MethodGet, "/v1/clusters/points?x=feature1&y=nope", "")
		require.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, "unknown_column", decode[errorBody](t, res).Error.Code)
	})

	t.Run("one column", func(t *testing.T) {
		res := do(t, s, http.MethodGet, "/v1/clusters/points?x=feature1", "")
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestRestaurants(t *testing.T) {
	s, rec := newTestServer(t)

	got := decode[table.JoinedTable](t, do(t, s, http.MethodGet, "/v1/restaurants", ""))
	require.Len(t, got, rec.Len())
	assert.Equal(t, rec.Records()[0].Name, got[0].Name)
}

func TestPredict(t *testing.T) {
	s, rec := newTestServer(t)
	features := map[string]float64{"feature1": 1, "feature2": 2}

	res := do(t, s, http.MethodPost, "/v1/predict", `{"features":{"feature1":1,"feature2":2}}`)
	require.Equal(t, http.StatusOK, res.Code)

	want, err := rec.Predict(features)
	require.NoError(t, err)
	assert.Equal(t, want, decode[predictResponse](t, res).Cluster)

	for name, body := range map[string]string{
		"malformed":      `{"features":`,
		"empty":          `{"features":{}}`,
		"missing column": `{"features":{"feature1":1}}`,
		"unknown column": `{"features":{"feature1":1,"feature2":2,"other":3}}`,
	} {
		t.Run(name, func(t *testing.T) {
			res := do(t, s, http.MethodPost, "/v1/predict", body)
			assert.Equal(t, http.StatusBadRequest, res.Code)
		})
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	s, _ := newTestServer(t)

	res := do(t, s, http.MethodGet, "/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "not_found", decode[errorBody](t, res).Error.Code)

	res = do(t, s, http.MethodPost, "/v1/cities", "")
	assert.Equal(t, http.StatusMethodNotAllowed, res.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default().Server
	cfg.RateLimit = 2
	s, _ := newTestServer(t, WithServerConfig(cfg))

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/v1/cities", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/v1/cities", "").Code)

	res := do(t, s, http.MethodGet, "/v1/cities", "")
	require.Equal(t, http.StatusTooManyRequests, res.Code)
	assert.Equal(t, "rate_limited", decode[errorBody](t, res).Error.Code)

	// health is outside the limited group
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "").Code)
}

func TestCORS(t *testing.T) {
	cfg := config.Default().Server
	cfg.CORSOrigins = []string{"https://example.com"}
	s, _ := newTestServer(t, WithServerConfig(cfg))

	req := httptest.NewRequest(http.MethodGet, "/v1/cities", nil)
	req.Header.Set("Origin", "https://example.com")
	res := httptest.NewRecorder()
	s.Handler().ServeHTTP(res, req)

	assert.Equal(t, "https://example.com", res.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, _ := newTestServer(t, WithMetrics(metrics.New(reg), reg))

	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/v1/cities", "").Code)

	res := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "dinecluster_http_requests_total")
	assert.Contains(t, res.Body.String(), `route="/v1/cities"`)
}

func TestHTTPServer(t *testing.T) {
	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:0"
	s, _ := newTestServer(t, WithServerConfig(cfg))

	hs := s.HTTPServer()
	assert.Equal(t, "127.0.0.1:0", hs.Addr)
	assert.Equal(t, cfg.ReadTimeout, hs.ReadTimeout)
	assert.Equal(t, cfg.WriteTimeout, hs.WriteTimeout)
	assert.NotNil(t, hs.Handler)
}
