package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/lib/pq"                  // PostgreSQL driver
	_ "github.com/snowflakedb/gosnowflake" // Snowflake driver
	_ "modernc.org/sqlite"                 // SQLite driver

	"github.com/ignite/opportunity-analyst/internal/config"
)

// Source loads a full transaction table.
type Source interface {
	Load(ctx context.Context) (*Table, error)
	Describe() string
}

// NewSource builds the Source named by cfg.Source.
func NewSource(ctx context.Context, cfg config.DatasetConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceFile, "":
		return &FileSource{Path: cfg.Path}, nil
	case config.SourceS3:
		return NewS3Source(ctx, cfg)
	case config.SourcePostgres:
		return OpenSQLSource("postgres", cfg.DSN, cfg.Query)
	case config.SourceSnowflake:
		return OpenSQLSource("snowflake", cfg.DSN, cfg.Query)
	case config.SourceSQLite:
		return OpenSQLSource("sqlite", cfg.DSN, cfg.Query)
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Source)
	}
}

// FileSource reads a CSV file from local disk.
type FileSource struct {
	Path string
}

func (s *FileSource) Describe() string { return "file:" + s.Path }

func (s *FileSource) Load(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()
	return ReadCSV(f, s.Describe())
}

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a CSV object from S3.
type S3Source struct {
	client S3API
	bucket string
	key    string
}

// NewS3Source loads AWS credentials the same way as the rest of the stack:
// static keys when configured, otherwise a named profile, otherwise the
// default chain.
func NewS3Source(ctx context.Context, cfg config.DatasetConfig) (*S3Source, error) {
	if cfg.S3Bucket == "" || cfg.S3Key == "" {
		return nil, fmt.Errorf("s3 source requires bucket and key")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	switch {
	case cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "":
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, "")))
	case cfg.AWSProfile != "":
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewS3SourceWithClient(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Key), nil
}

// NewS3SourceWithClient wraps an existing client.
func NewS3SourceWithClient(client S3API, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

func (s *S3Source) Describe() string { return fmt.Sprintf("s3://%s/%s", s.bucket, s.key) }

func (s *S3Source) Load(ctx context.Context) (*Table, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("S3 GetObject %s/%s: %w", s.bucket, s.key, err)
	}
	defer resp.Body.Close()
	return ReadCSV(resp.Body, s.Describe())
}

// SQLSource runs a query and maps the result columns like a CSV header.
type SQLSource struct {
	db     *sql.DB
	driver string
	query  string
}

// OpenSQLSource opens a pooled connection for driver.
func OpenSQLSource(driver, dsn, query string) (*SQLSource, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s source requires a dsn", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	return NewSQLSource(db, driver, query), nil
}

// NewSQLSource wraps an open database.
func NewSQLSource(db *sql.DB, driver, query string) *SQLSource {
	return &SQLSource{db: db, driver: driver, query: query}
}

func (s *SQLSource) Describe() string { return s.driver + ":query" }

// Close releases the connection pool.
func (s *SQLSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLSource) Load(ctx context.Context) (*Table, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var records [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(header))
		dest := make([]interface{}, len(header))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		rec := make([]string, len(header))
		for i, c := range cells {
			if c.Valid {
				rec[i] = c.String
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return BuildTable(s.Describe(), header, records)
}
