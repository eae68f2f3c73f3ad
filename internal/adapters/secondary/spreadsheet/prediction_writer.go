package spreadsheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"sentiment-service/internal/core/domain"
	output "sentiment-service/internal/core/ports/output"
)

const sheetName = "Sheet1"

// PredictionWriter writes the dataset followed by one column per model, in the
// format implied by the output file extension.
type PredictionWriter struct{}

func NewPredictionWriter() *PredictionWriter {
	return &PredictionWriter{}
}

var _ output.PredictionWriter = (*PredictionWriter)(nil)

func (w *PredictionWriter) Write(ctx context.Context, path string, dataset *domain.Dataset, columns []domain.PredictionColumn) error {
	f, err := detectFormat(path)
	if err != nil {
		return err
	}
	table, err := predictionTable(dataset, columns)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	switch f {
	case formatCSV:
		return writeCSV(path, table)
	default:
		return writeWorkbook(path, table)
	}
}

func predictionTable(dataset *domain.Dataset, columns []domain.PredictionColumn) ([][]string, error) {
	header := append([]string{}, dataset.Columns...)
	for _, col := range columns {
		if len(col.Values) != len(dataset.Rows) {
			return nil, fmt.Errorf("column %s has %d values for %d rows", col.Header, len(col.Values), len(dataset.Rows))
		}
		header = append(header, col.Header)
	}

	table := make([][]string, 0, len(dataset.Rows)+1)
	table = append(table, header)
	for i, row := range dataset.Rows {
		out := make([]string, 0, len(header))
		out = append(out, pad(row, len(dataset.Columns))...)
		for _, col := range columns {
			out = append(out, col.Values[i])
		}
		table = append(table, out)
	}
	return table, nil
}

func writeWorkbook(path string, table [][]string) error {
	wb := excelize.NewFile()
	defer wb.Close()

	for i, row := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := wb.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeCSV(path string, table [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(file)
	if err := writer.WriteAll(table); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
