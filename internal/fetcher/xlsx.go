// Package fetcher reads the consumer and provider tables from a workbook,
// a directory of CSV files, or a workbook served over HTTP.
package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/partner-match/internal/model"
)

// Sheet is one table: a header row and typed data rows. Every row has
// exactly len(Header) cells.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]model.Value
}

// ReadSheet reads the named sheet. When path is a directory the sheet is
// read from <path>/<name>.csv, otherwise path must be an .xlsx workbook.
// Fully empty rows are dropped.
func ReadSheet(ctx context.Context, path, name string) (*Sheet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: stat %s", path)
	}
	if info.IsDir() {
		return readCSVSheet(ctx, filepath.Join(path, name+".csv"), name)
	}
	return readXLSXSheet(ctx, path, name)
}

func readXLSXSheet(ctx context.Context, path, name string) (*Sheet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sh, ok := f.Sheet[name]
	if !ok {
		return nil, eris.Errorf("xlsx: sheet %q not found", name)
	}

	out := &Sheet{Name: name}
	for i, row := range sh.Rows {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "xlsx: context cancelled")
		}
		if row == nil {
			continue
		}
		if out.Header == nil {
			out.Header = headerCells(row)
			continue
		}

		cells := make([]model.Value, len(out.Header))
		for j := range cells {
			if j < len(row.Cells) {
				v, err := cellValue(row.Cells[j])
				if err != nil {
					return nil, eris.Wrapf(err, "xlsx: sheet %q row %d column %q", name, i+1, out.Header[j])
				}
				cells[j] = v
			}
		}
		out.appendRow(cells)
	}

	if out.Header == nil {
		return nil, eris.Errorf("xlsx: sheet %q has no header row", name)
	}
	return out, nil
}

func headerCells(row *xlsx.Row) []string {
	header := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		header[j] = strings.TrimSpace(cell.String())
	}
	// Trailing blank header cells are formatting, not columns.
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}
	return header
}

// cellValue maps a cell to a Value: numeric cells become numbers, blank
// cells null, everything else its displayed text.
func cellValue(cell *xlsx.Cell) (model.Value, error) {
	if cell == nil || strings.TrimSpace(cell.Value) == "" {
		return model.Null, nil
	}
	if cell.Type() == xlsx.CellTypeNumeric {
		f, err := cell.Float()
		if err != nil {
			return model.Null, eris.Wrap(err, "parse numeric cell")
		}
		return model.Number(f), nil
	}
	return model.String(cell.String()), nil
}

func readCSVSheet(ctx context.Context, path, name string) (*Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open sheet %q", name)
	}
	defer file.Close() //nolint:errcheck

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	out := &Sheet{Name: name}
	for line := 1; ; line++ {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: sheet %q read row %d", name, line)
		}

		if out.Header == nil {
			out.Header = make([]string, len(record))
			for j, h := range record {
				out.Header[j] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
			}
			continue
		}

		cells := make([]model.Value, len(out.Header))
		for j := range cells {
			if j < len(record) {
				cells[j] = model.String(record[j])
			}
		}
		out.appendRow(cells)
	}

	if out.Header == nil {
		return nil, eris.Errorf("csv: sheet %q has no header row", name)
	}
	return out, nil
}

func (s *Sheet) appendRow(cells []model.Value) {
	for _, c := range cells {
		if !c.IsNull() {
			s.Rows = append(s.Rows, cells)
			return
		}
	}
}
