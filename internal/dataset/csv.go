package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ignite/opportunity-analyst/internal/pkg/logger"
)

// ReadCSV parses a delimited transaction export. Ragged rows are tolerated,
// a UTF-8 BOM is stripped, fully blank lines are skipped and rows the CSV
// reader rejects are logged and dropped.
func ReadCSV(r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%s: empty file: %w", source, ErrMissingColumns)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records [][]string
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if isBlank(row) {
			continue
		}
		records = append(records, row)
	}
	if skipped > 0 {
		logger.Warn("skipped malformed csv rows", "source", source, "count", skipped)
	}

	return BuildTable(source, header, records)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, err := io.ReadFull(r, buf)
	if err != nil || n < 3 {
		return io.MultiReader(strings.NewReader(string(buf[:n])), r)
	}
	if buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}
