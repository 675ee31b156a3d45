package dataset

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/opportunity-analyst/internal/config"
)

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customer_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	src, err := NewSource(context.Background(), config.DatasetConfig{Source: config.SourceFile, Path: path})
	require.NoError(t, err)

	table, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, "file:"+path, table.Source())
}

func TestFileSourceMissingFile(t *testing.T) {
	src := &FileSource{Path: filepath.Join(t.TempDir(), "nope.csv")}
	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNewSourceRejectsUnknown(t *testing.T) {
	_, err := NewSource(context.Background(), config.DatasetConfig{Source: "ftp"})
	assert.Error(t, err)
}

func TestNewSourceRequiresDSN(t *testing.T) {
	_, err := NewSource(context.Background(), config.DatasetConfig{Source: config.SourcePostgres})
	assert.Error(t, err)
}

type fakeS3 struct {
	body  string
	err   error
	input *s3.GetObjectInput
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestS3Source(t *testing.T) {
	client := &fakeS3{body: sampleCSV}
	src := NewS3SourceWithClient(client, "sales", "exports/customer_data.csv")

	table, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, "s3://sales/exports/customer_data.csv", table.Source())
	assert.Equal(t, "sales", aws.ToString(client.input.Bucket))
	assert.Equal(t, "exports/customer_data.csv", aws.ToString(client.input.Key))
}

func TestS3SourceError(t *testing.T) {
	src := NewS3SourceWithClient(&fakeS3{err: errors.New("NoSuchKey")}, "sales", "missing.csv")
	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoSuchKey")
}

func TestSQLSourceWithMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"customer_id", "industry", "product", "total_price", "region"}).
		AddRow("C001", "Tech", "A", 100.5, "EMEA").
		AddRow("C002", "Retail", nil, nil, nil)
	mock.ExpectQuery("SELECT \\* FROM customer_transactions").WillReturnRows(rows)

	src := NewSQLSource(db, "postgres", "SELECT * FROM customer_transactions")
	table, err := src.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Equal(t, 2, table.Len())
	first := table.Rows()[0]
	assert.Equal(t, "C001", first.CustomerID)
	assert.Equal(t, "100.5", first.Price)
	assert.Equal(t, "EMEA", first.Location)

	second := table.Rows()[1]
	assert.Equal(t, "", second.Product)
	assert.False(t, second.IsPurchase())
}

func TestSQLSourceQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	_, err = NewSQLSource(db, "postgres", "SELECT 1").Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestSQLSourceMissingColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"customer_id"}).AddRow("C1"))

	_, err = NewSQLSource(db, "postgres", "SELECT customer_id FROM t").Load(context.Background())
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestSQLSourceWithSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE customer_transactions (
		Customer_ID TEXT, Industry TEXT, Product TEXT, "Total_Price(USD)" REAL, Number_of_Employees INTEGER
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO customer_transactions VALUES
		('c001', 'Tech', 'A', 100, 250),
		('c001', 'Tech', 'B', 200.25, 250)`)
	require.NoError(t, err)

	src := NewSQLSource(db, "sqlite", "SELECT * FROM customer_transactions")
	table, err := src.Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, "C001", table.Rows()[0].Key)
	assert.Equal(t, 100.0, Float(table.Rows()[0].Price))
	assert.Equal(t, 200.25, Float(table.Rows()[1].Price))
	assert.Equal(t, int64(250), Int(table.Rows()[0].EmployeeCount))
}
