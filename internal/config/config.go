// Package config assembles the run configuration from an optional YAML file, a .env file and the environment.
//
// Precedence, lowest first: defaults, YAML file, environment (including values loaded from .env).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nholding/finseries/internal/logging"
	"github.com/nholding/finseries/internal/pipeline"
	"github.com/nholding/finseries/internal/record/service"
	"github.com/nholding/finseries/internal/repository"
)

// queryDateLayout is the layout of query dates in YAML files, env values and flags.
const queryDateLayout = "2006-01-02"

// Config is the full configuration of a run.
type Config struct {
	AWS repository.Config `yaml:"-"`

	// SourcePath is the logical path listed in the bucket, e.g. "companies/acme/".
	SourcePath string `yaml:"source_path"`

	// StagingDir is the parent of the per-run workspace. Defaults to the system temp dir.
	StagingDir string `yaml:"staging_dir"`

	ArchivePattern string `yaml:"archive_pattern"`
	TabularPattern string `yaml:"tabular_pattern"`

	// DownloadConcurrency bounds parallel downloads; 1 downloads one object at a time.
	DownloadConcurrency int `yaml:"download_concurrency"`

	// StageTimeout bounds each pipeline stage. Format: "30s", "5m". 0 disables it.
	StageTimeout time.Duration `yaml:"stage_timeout"`

	IsolateFiles  bool `yaml:"isolate_files"`
	KeepWorkspace bool `yaml:"keep_workspace"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	Queries []service.Query `yaml:"-"`
}

// fileConfig is the YAML layout: the run options plus the AWS settings and the queries.
type fileConfig struct {
	Config `yaml:",inline"`

	AWS struct {
		Profile      string `yaml:"profile"`
		Region       string `yaml:"region"`
		Bucket       string `yaml:"bucket"`
		RootPath     string `yaml:"root_path"`
		Endpoint     string `yaml:"endpoint"`
		UsePathStyle bool   `yaml:"use_path_style"`
	} `yaml:"aws"`

	Queries []QuerySpec `yaml:"queries"`
}

// QuerySpec is a query as written in a YAML file.
type QuerySpec struct {
	ID   string `yaml:"id"`
	File string `yaml:"file"`
	Date string `yaml:"date"`
}

// Query converts the entry, parsing its date.
func (q QuerySpec) Query() (service.Query, error) {
	d, err := time.Parse(queryDateLayout, strings.TrimSpace(q.Date))
	if err != nil {
		return service.Query{}, fmt.Errorf("query %s: invalid date %q, expected YYYY-MM-DD", q.ID, q.Date)
	}
	query := service.Query{ID: q.ID, SourceFile: q.File, Date: d}
	return query, query.Validate()
}

// DefaultQuery is the lookup run when none is configured: MO_BS_INV in MNZIRS0108.csv on 2014-10-01.
// The date is a quarter start day, which no window contains, so this query reports "not found".
var DefaultQuery = service.Query{
	ID:         "MO_BS_INV",
	SourceFile: "MNZIRS0108.csv",
	Date:       time.Date(2014, time.October, 1, 0, 0, 0, 0, time.UTC),
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ArchivePattern:      pipeline.DefaultArchivePattern,
		TabularPattern:      pipeline.DefaultTabularPattern,
		DownloadConcurrency: 1,
		LogLevel:            "info",
	}
}

// Load builds the configuration. path is an optional YAML file; envFiles are .env files loaded into the
// process environment when present (with no names, ".env" is tried).
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if path == "" {
		path = os.Getenv("APP_CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(names ...string) error {
	if len(names) == 0 {
		names = []string{".env"}
	}
	for _, name := range names {
		if _, err := os.Stat(name); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("load env file %s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := fileConfig{Config: *c}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	*c = fc.Config
	c.AWS = repository.Config{
		Profile:      fc.AWS.Profile,
		Region:       fc.AWS.Region,
		S3BucketName: fc.AWS.Bucket,
		RootPath:     fc.AWS.RootPath,
		Endpoint:     fc.AWS.Endpoint,
		UsePathStyle: fc.AWS.UsePathStyle,
	}
	for _, qs := range fc.Queries {
		q, err := qs.Query()
		if err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
		c.Queries = append(c.Queries, q)
	}
	return nil
}

// applyEnv overrides fields from APP_* and AWS_* variables that are set.
func (c *Config) applyEnv() error {
	setString(&c.AWS.Region, "AWS_REGION")
	setString(&c.AWS.Profile, "AWS_PROFILE")
	setString(&c.AWS.S3BucketName, "APP_BUCKET_NAME")
	setString(&c.AWS.RootPath, "APP_ROOT_PATH")
	setString(&c.AWS.Endpoint, "APP_S3_ENDPOINT")
	setString(&c.SourcePath, "APP_COMPANY_DATA_PATH")
	setString(&c.StagingDir, "APP_STAGING_DIR")
	setString(&c.ArchivePattern, "APP_ARCHIVE_PATTERN")
	setString(&c.TabularPattern, "APP_TABULAR_PATTERN")
	setString(&c.LogLevel, "APP_LOG_LEVEL")

	var err error
	if c.AWS.UsePathStyle, err = getEnvAsBool("APP_S3_PATH_STYLE", c.AWS.UsePathStyle); err != nil {
		return err
	}
	if c.DownloadConcurrency, err = getEnvAsInt("APP_DOWNLOAD_CONCURRENCY", c.DownloadConcurrency); err != nil {
		return err
	}
	if c.StageTimeout, err = getEnvAsDuration("APP_STAGE_TIMEOUT", c.StageTimeout); err != nil {
		return err
	}
	if c.IsolateFiles, err = getEnvAsBool("APP_ISOLATE_FILES", c.IsolateFiles); err != nil {
		return err
	}
	if c.KeepWorkspace, err = getEnvAsBool("APP_KEEP_WORKSPACE", c.KeepWorkspace); err != nil {
		return err
	}
	if c.LogJSON, err = getEnvAsBool("APP_LOG_JSON", c.LogJSON); err != nil {
		return err
	}

	if qf := os.Getenv("APP_QUERIES_FILE"); qf != "" {
		queries, err := LoadQueries(qf)
		if err != nil {
			return err
		}
		c.Queries = queries
	}
	return nil
}

// LoadQueries reads a YAML file holding a "queries" list.
func LoadQueries(path string) ([]service.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read queries file: %w", err)
	}

	var doc struct {
		Queries []QuerySpec `yaml:"queries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse queries file: %w", err)
	}

	queries := make([]service.Query, 0, len(doc.Queries))
	for _, qs := range doc.Queries {
		q, err := qs.Query()
		if err != nil {
			return nil, fmt.Errorf("parse queries file: %w", err)
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// Validate checks the settings every run needs. requireStore adds the S3 settings.
func (c *Config) Validate(requireStore bool) error {
	if requireStore {
		if err := c.AWS.Validate(); err != nil {
			return err
		}
		if c.SourcePath == "" {
			return fmt.Errorf("source path cannot be empty (APP_COMPANY_DATA_PATH)")
		}
	}
	if c.DownloadConcurrency < 1 {
		return fmt.Errorf("download concurrency must be at least 1, got %d", c.DownloadConcurrency)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for _, q := range c.Queries {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return c.PipelineOptions().Validate()
}

// QueriesOrDefault returns the configured queries, or DefaultQuery when there are none.
func (c *Config) QueriesOrDefault() []service.Query {
	if len(c.Queries) == 0 {
		return []service.Query{DefaultQuery}
	}
	return c.Queries
}

// PipelineOptions maps the configuration onto the pipeline options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		SourcePath:          c.SourcePath,
		StagingDir:          c.StagingDir,
		ArchivePattern:      c.ArchivePattern,
		TabularPattern:      c.TabularPattern,
		DownloadConcurrency: c.DownloadConcurrency,
		StageTimeout:        c.StageTimeout,
		IsolateFiles:        c.IsolateFiles,
		KeepWorkspace:       c.KeepWorkspace,
		StartedBy:           os.Getenv("USER"),
	}
}

// ParseQueryDate parses a YYYY-MM-DD date as used by query flags.
func ParseQueryDate(s string) (time.Time, error) {
	d, err := time.Parse(queryDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected an integer, got '%s'", key, valueStr)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: expected a boolean, got '%s'", key, valueStr)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected a duration, got '%s'", key, valueStr)
	}
	return value, nil
}
