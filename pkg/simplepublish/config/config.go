package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentops/simple-publish/pkg/simplepublish"
	repomemory "github.com/contentops/simple-publish/pkg/simplepublish/repo/memory"
	repopg "github.com/contentops/simple-publish/pkg/simplepublish/repo/postgres"
	fsstorage "github.com/contentops/simple-publish/pkg/simplepublish/storage/fs"
	memorystorage "github.com/contentops/simple-publish/pkg/simplepublish/storage/memory"
	s3storage "github.com/contentops/simple-publish/pkg/simplepublish/storage/s3"
)

// ServerConfig holds server configuration, read from the environment.
//
// DATABASE_URL selects persistence: empty or "memory" keeps everything
// in-process; a postgres:// / postgresql:// URL uses PostgreSQL.
//
// STORAGE_URL selects the blob backend:
//
//	memory://                     in-memory (default)
//	file:///var/data/uploads      filesystem; pair with STORAGE_URL_PREFIX
//	s3://bucket?region=eu-west-1  S3 or S3-compatible endpoint
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	JWTSecret string `env:"JWT_SECRET" env-default:""`

	DatabaseURL string `env:"DATABASE_URL" env-default:""`
	DBSchema    string `env:"DB_SCHEMA" env-default:""`

	StorageURL       string `env:"STORAGE_URL" env-default:"memory://"`
	StorageURLPrefix string `env:"STORAGE_URL_PREFIX" env-default:""`
	S3Endpoint       string `env:"S3_ENDPOINT" env-default:""`
	S3AccessKeyID    string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	S3SecretKey      string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	S3PublicBaseURL  string `env:"S3_PUBLIC_BASE_URL" env-default:""`
	S3CreateBucket   bool   `env:"S3_CREATE_BUCKET" env-default:"false"`
}

// Load reads configuration from the environment and validates it.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseURL != "" && c.DatabaseURL != "memory" &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("unsupported DATABASE_URL format (use 'memory' or 'postgresql://...')")
	}

	switch {
	case c.StorageURL == "" || c.StorageURL == "memory" || c.StorageURL == "memory://":
	case strings.HasPrefix(c.StorageURL, "file://"):
		if c.StorageURLPrefix == "" {
			return errors.New("STORAGE_URL_PREFIX is required with file:// storage")
		}
	case strings.HasPrefix(c.StorageURL, "s3://"):
	default:
		return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", c.StorageURL)
	}

	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
// Outside production, error responses carry underlying error detail.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// BuildService constructs the publication service from the configuration.
func (c *ServerConfig) BuildService(logger *slog.Logger) (simplepublish.Service, error) {
	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	backendName, store, err := c.buildStorageBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend: %w", err)
	}

	return simplepublish.New(
		simplepublish.WithRepository(repo),
		simplepublish.WithContentStore(simplepublish.NewContentStore(backendName, store, logger)),
		simplepublish.WithEventSink(simplepublish.NewLogEventSink(logger)),
		simplepublish.WithLogger(logger),
	)
}

func (c *ServerConfig) buildRepository() (simplepublish.Repository, error) {
	if c.DatabaseURL == "" || c.DatabaseURL == "memory" {
		return repomemory.New(), nil
	}

	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if c.DBSchema != "" {
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return repopg.NewWithPool(pool), nil
}

func (c *ServerConfig) buildStorageBackend() (string, simplepublish.BlobStore, error) {
	switch {
	case c.StorageURL == "" || c.StorageURL == "memory" || c.StorageURL == "memory://":
		return "memory", memorystorage.New(), nil

	case strings.HasPrefix(c.StorageURL, "file://"):
		baseDir := strings.TrimPrefix(c.StorageURL, "file://")
		if baseDir == "" {
			return "", nil, errors.New("filesystem path cannot be empty in STORAGE_URL")
		}
		store, err := fsstorage.New(fsstorage.Config{
			BaseDir:   baseDir,
			URLPrefix: c.StorageURLPrefix,
		})
		if err != nil {
			return "", nil, err
		}
		return "fs", store, nil

	case strings.HasPrefix(c.StorageURL, "s3://"):
		u, err := url.Parse(c.StorageURL)
		if err != nil {
			return "", nil, fmt.Errorf("failed to parse STORAGE_URL: %w", err)
		}
		if u.Host == "" {
			return "", nil, errors.New("S3 bucket name cannot be empty in STORAGE_URL")
		}
		region := u.Query().Get("region")
		if region == "" {
			region = os.Getenv("AWS_REGION")
		}
		store, err := s3storage.New(s3storage.Config{
			Region:                 region,
			Bucket:                 u.Host,
			AccessKeyID:            c.S3AccessKeyID,
			SecretAccessKey:        c.S3SecretKey,
			Endpoint:               c.S3Endpoint,
			UsePathStyle:           c.S3Endpoint != "",
			PublicBaseURL:          c.S3PublicBaseURL,
			CreateBucketIfNotExist: c.S3CreateBucket,
		})
		if err != nil {
			return "", nil, err
		}
		return "s3", store, nil
	}

	return "", nil, fmt.Errorf("unsupported STORAGE_URL format: %s", c.StorageURL)
}

// PingPostgres verifies connectivity to Postgres and optionally sets
// search_path for the session.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
