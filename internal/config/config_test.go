package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nholding/finseries/internal/record/domain"
	"github.com/nholding/finseries/internal/record/parser"
	"github.com/nholding/finseries/internal/record/service"
)

var envKeys = []string{
	"AWS_REGION", "AWS_PROFILE", "APP_BUCKET_NAME", "APP_ROOT_PATH", "APP_S3_ENDPOINT", "APP_S3_PATH_STYLE",
	"APP_COMPANY_DATA_PATH", "APP_STAGING_DIR", "APP_ARCHIVE_PATTERN", "APP_TABULAR_PATTERN", "APP_LOG_LEVEL",
	"APP_LOG_JSON", "APP_DOWNLOAD_CONCURRENCY", "APP_STAGE_TIMEOUT", "APP_ISOLATE_FILES", "APP_KEEP_WORKSPACE",
	"APP_QUERIES_FILE", "APP_CONFIG_FILE",
}

// clearEnv blanks every variable the loader reads; empty values are ignored by the loader.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const yamlConfig = `
source_path: companies/acme/
staging_dir: /var/tmp/finseries
download_concurrency: 4
stage_timeout: 90s
isolate_files: true
log_level: debug
aws:
  region: eu-central-1
  bucket: disclosures
  root_path: exports
  endpoint: http://localhost:9000
  use_path_style: true
queries:
  - id: MO_BS_INV
    file: MNZIRS0108.csv
    date: 2014-11-15
`

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, "finseries.yaml", yamlConfig), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "companies/acme/", cfg.SourcePath)
	assert.Equal(t, "/var/tmp/finseries", cfg.StagingDir)
	assert.Equal(t, 4, cfg.DownloadConcurrency)
	assert.Equal(t, 90*time.Second, cfg.StageTimeout)
	assert.True(t, cfg.IsolateFiles)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "*.zip", cfg.ArchivePattern, "defaults survive the file")

	assert.Equal(t, "eu-central-1", cfg.AWS.Region)
	assert.Equal(t, "disclosures", cfg.AWS.S3BucketName)
	assert.Equal(t, "exports", cfg.AWS.RootPath)
	assert.Equal(t, "http://localhost:9000", cfg.AWS.Endpoint)
	assert.True(t, cfg.AWS.UsePathStyle)

	require.Len(t, cfg.Queries, 1)
	assert.Equal(t, "MO_BS_INV", cfg.Queries[0].ID)
	assert.Equal(t, "MNZIRS0108.csv", cfg.Queries[0].SourceFile)
	assert.Equal(t, time.Date(2014, time.November, 15, 0, 0, 0, 0, time.UTC), cfg.Queries[0].Date)

	require.NoError(t, cfg.Validate(true))
	opts := cfg.PipelineOptions()
	assert.Equal(t, "companies/acme/", opts.SourcePath)
	assert.Equal(t, 4, opts.DownloadConcurrency)
	assert.True(t, opts.IsolateFiles)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_COMPANY_DATA_PATH", "companies/globex/")
	t.Setenv("APP_DOWNLOAD_CONCURRENCY", "2")
	t.Setenv("APP_KEEP_WORKSPACE", "true")

	envFile := writeFile(t, ".env", "APP_BUCKET_NAME=from-dotenv\nAPP_STAGE_TIMEOUT=5m\n")
	t.Cleanup(func() {
		os.Unsetenv("APP_BUCKET_NAME")
		os.Unsetenv("APP_STAGE_TIMEOUT")
	})
	os.Unsetenv("APP_BUCKET_NAME")
	os.Unsetenv("APP_STAGE_TIMEOUT")

	cfg, err := Load(writeFile(t, "finseries.yaml", yamlConfig), envFile)
	require.NoError(t, err)

	assert.Equal(t, "companies/globex/", cfg.SourcePath)
	assert.Equal(t, 2, cfg.DownloadConcurrency)
	assert.True(t, cfg.KeepWorkspace)
	assert.Equal(t, "from-dotenv", cfg.AWS.S3BucketName)
	assert.Equal(t, 5*time.Minute, cfg.StageTimeout)
	assert.Equal(t, "eu-central-1", cfg.AWS.Region)
}

func TestLoadEnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("APP_BUCKET_NAME", "disclosures")
	t.Setenv("APP_COMPANY_DATA_PATH", "companies/")
	t.Setenv("APP_QUERIES_FILE", writeFile(t, "queries.yaml", "queries:\n  - {id: X, file: A.csv, date: 2015-01-15}\n"))

	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate(true))

	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	require.Len(t, cfg.Queries, 1)
	assert.Equal(t, "X", cfg.Queries[0].ID)
	assert.Equal(t, cfg.Queries, cfg.QueriesOrDefault())
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "bad concurrency", env: map[string]string{"APP_DOWNLOAD_CONCURRENCY": "many"}},
		{name: "bad bool", env: map[string]string{"APP_ISOLATE_FILES": "sometimes"}},
		{name: "bad duration", env: map[string]string{"APP_STAGE_TIMEOUT": "soon"}},
		{name: "bad query date", file: "queries:\n  - {id: X, file: A.csv, date: 15/01/2015}\n"},
		{name: "query without file", file: "queries:\n  - {id: X, date: 2015-01-15}\n"},
		{name: "malformed yaml", file: "source_path: [\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			if tc.file != "" {
				path = writeFile(t, "finseries.yaml", tc.file)
			}
			_, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate(false))
	assert.Error(t, cfg.Validate(true), "store settings are required for S3 runs")

	cfg.AWS.Region = "eu-central-1"
	cfg.AWS.S3BucketName = "disclosures"
	assert.Error(t, cfg.Validate(true), "source path is required")
	cfg.SourcePath = "companies/"
	assert.NoError(t, cfg.Validate(true))

	cfg.LogLevel = "chatty"
	assert.Error(t, cfg.Validate(false))
	cfg.LogLevel = "info"

	cfg.DownloadConcurrency = 0
	assert.Error(t, cfg.Validate(false))
	cfg.DownloadConcurrency = 1

	cfg.TabularPattern = "[csv"
	assert.Error(t, cfg.Validate(false))
}

func TestQueriesOrDefault(t *testing.T) {
	q := DefaultConfig().QueriesOrDefault()
	require.Len(t, q, 1)
	assert.Equal(t, DefaultQuery, q[0])
}

func TestParseQueryDate(t *testing.T) {
	d, err := ParseQueryDate(" 2014-10-15 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2014, time.October, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseQueryDate("2014-13-01")
	assert.Error(t, err)
}

func TestDefaultQueryMissesOnQuarterStart(t *testing.T) {
	records, err := parser.ParseString("id,scale,2014-07-01,2014-10-01,2015-01-01\nMO_BS_INV,1000,10,20,30\n", "MNZIRS0108.csv")
	require.NoError(t, err)
	q := service.NewRangeQuery(domain.NewRecordStore(records...))

	_, ok := q.Find(DefaultQuery.ID, DefaultQuery.SourceFile, DefaultQuery.Date)
	assert.False(t, ok)

	_, ok = q.Find(DefaultQuery.ID, DefaultQuery.SourceFile, DefaultQuery.Date.AddDate(0, 0, 1))
	assert.True(t, ok)
}
