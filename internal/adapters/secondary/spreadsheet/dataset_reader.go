package spreadsheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"sentiment-service/internal/core/domain"
	output "sentiment-service/internal/core/ports/output"
)

const (
	DefaultTextColumn  = "Komentar Bersih"
	DefaultLabelColumn = "Label"
)

type format int

const (
	formatXLSX format = iota + 1
	formatCSV
)

func detectFormat(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return formatXLSX, nil
	case ".csv":
		return formatCSV, nil
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrUnsupportedDataset, filepath.Ext(path))
	}
}

// DatasetReader reads labeled comments from the first sheet of a workbook or from a CSV file.
type DatasetReader struct{}

func NewDatasetReader() *DatasetReader {
	return &DatasetReader{}
}

var _ output.DatasetReader = (*DatasetReader)(nil)

func (r *DatasetReader) Read(ctx context.Context, path, textColumn, labelColumn string) (*domain.Dataset, error) {
	if textColumn == "" {
		textColumn = DefaultTextColumn
	}
	if labelColumn == "" {
		labelColumn = DefaultLabelColumn
	}

	f, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	var table [][]string
	switch f {
	case formatXLSX:
		table, err = readWorkbook(path)
	case formatCSV:
		table, err = readCSV(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return buildDataset(path, table, textColumn, labelColumn)
}

func readWorkbook(path string) ([][]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return wb.GetRows(sheets[0])
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
}

// buildDataset locates the text and label columns in the header row. Rows with an
// empty label are skipped; a missing text cell reads as "".
func buildDataset(path string, table [][]string, textColumn, labelColumn string) (*domain.Dataset, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrDatasetColumns, path)
	}

	header := make([]string, len(table[0]))
	for i, h := range table[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	textIdx, labelIdx := indexOf(header, textColumn), indexOf(header, labelColumn)
	if textIdx < 0 || labelIdx < 0 {
		return nil, fmt.Errorf("%w: need %q and %q, found %v", domain.ErrDatasetColumns, textColumn, labelColumn, header)
	}

	ds := &domain.Dataset{Path: path, Columns: header}
	for _, raw := range table[1:] {
		row := pad(raw, len(header))
		label := row[labelIdx]
		if strings.TrimSpace(label) == "" {
			ds.Skipped++
			continue
		}
		ds.Rows = append(ds.Rows, row)
		ds.Texts = append(ds.Texts, row[textIdx])
		ds.Labels = append(ds.Labels, label)
	}
	return ds, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func pad(row []string, n int) []string {
	if len(row) >= n {
		return row[:n:n]
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
