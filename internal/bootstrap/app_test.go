package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applygen-backend/internal/llm/llmtest"
	"applygen-backend/internal/services/health"
	"applygen-backend/internal/shared/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		LLMProvider:     config.ProviderOpenAI,
		LLMModel:        "gpt-4o",
		RenderEngine:    "pdf",
		BatchWorkers:    2,
		RandomSeed:      7,
		LogLevel:        "error",
	}
}

func serve(app *App, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Guest-Id", "bootstrap-test")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

const createBody = `{"jobDescription":"Backend engineer, 3 years","count":2,"educationLevel":"Bachelor of Science in Computer Science","country":"Germany"}`

func TestBuildWiresInlineBatches(t *testing.T) {
	app, err := Build(testConfig(t), WithLLM(llmtest.NewFake()))
	require.NoError(t, err)
	assert.Nil(t, app.DB)
	assert.Nil(t, app.BatchService.Queue)

	rec := serve(app, http.MethodPost, "/api/v1/batches", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(app, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report health.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, health.Report{OK: true, Database: "memory", LLM: "ready"}, report)
}

func TestBuildWithoutProviderKeyDegrades(t *testing.T) {
	app, err := Build(testConfig(t))
	require.NoError(t, err)

	rec := serve(app, http.MethodPost, "/api/v1/batches", createBody)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(app, http.MethodGet, "/api/v1/catalog", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(app, http.MethodGet, "/api/v1/health", "")
	assert.Contains(t, rec.Body.String(), "not_configured")
}

func TestBuildRejectsBadInfra(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown engine", func(c *config.Config) { c.RenderEngine = "docx" }},
		{"s3 without bucket", func(c *config.Config) { c.ObjectStoreType = "s3" }},
		{"production without secret", func(c *config.Config) { c.Env = "production" }},
		{"production without database", func(c *config.Config) { c.Env = "production"; c.JWTSecret = "s3cret" }},
		{"missing catalog file", func(c *config.Config) { c.CatalogPath = "/nonexistent/catalog.yaml" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)
			_, err := Build(cfg, WithLLM(llmtest.NewFake()))
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrConfiguration)
		})
	}
}
