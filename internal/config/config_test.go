package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "flat", cfg.Retrieval.IndexBackend)
	assert.Equal(t, 0.65, cfg.Retrieval.SimilarityThreshold)
	assert.Equal(t, "Machine Learning Engineer", cfg.Retrieval.DefaultRole)
	assert.Equal(t, 1200, cfg.Retrieval.MaxReducedChars)
	assert.Equal(t, 1200, cfg.Models.MaxPromptTokens)
	assert.Equal(t, 128, cfg.Models.MaxNewTokens)
	assert.Equal(t, 24*time.Hour, cfg.Worker.UploadRetention)
	assert.False(t, cfg.Log.JSON)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SIMILARITY_THRESHOLD", "0.4")
	t.Setenv("UPLOAD_RETENTION", "90m")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("INDEX_BACKEND", "qdrant")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 0.4, cfg.Retrieval.SimilarityThreshold)
	assert.Equal(t, 90*time.Minute, cfg.Worker.UploadRetention)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "qdrant", cfg.Retrieval.IndexBackend)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "many")
	t.Setenv("RETENTION_POLL_INTERVAL", "soon")
	t.Setenv("SIMILARITY_THRESHOLD", "high")

	cfg := Load()

	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.Equal(t, time.Minute, cfg.Worker.PollInterval)
	assert.Equal(t, 0.65, cfg.Retrieval.SimilarityThreshold)
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5433", User: "u", Password: "p", DBName: "screening",
	}}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=screening sslmode=disable", cfg.GetDatabaseDSN())
}

func TestMaxRequestBodySize(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{MaxFileSize: 3000}}

	assert.Equal(t, 4000+64*1024, cfg.MaxRequestBodySize())
}
