// Package ingest projects raw sheets into consumer and provider records.
package ingest

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/partner-match/internal/apperr"
	"github.com/sells-group/partner-match/internal/config"
	"github.com/sells-group/partner-match/internal/fetcher"
	"github.com/sells-group/partner-match/internal/model"
)

// Project turns sheet rows into Records carrying exactly columns, with ids
// built from idColumns joined by model.IDSeparator. Every id column must be
// non-null.
func Project(sheet *fetcher.Sheet, columns, idColumns []string) ([]model.Record, error) {
	index := make(map[string]int, len(sheet.Header))
	for i, h := range sheet.Header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	colIdx, err := lookup(sheet, index, columns)
	if err != nil {
		return nil, err
	}
	idIdx, err := lookup(sheet, index, idColumns)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(sheet.Rows))
	for r, row := range sheet.Rows {
		parts := make([]model.Value, len(idIdx))
		for k, i := range idIdx {
			if row[i].IsNull() {
				// Header is row 1.
				return nil, apperr.Dataf("", "sheet %q row %d: id column %q is empty", sheet.Name, r+2, idColumns[k])
			}
			parts[k] = row[i]
		}

		fields := make(map[string]model.Value, len(colIdx))
		for k, i := range colIdx {
			fields[columns[k]] = row[i]
		}
		records = append(records, model.Record{ID: model.JoinID(parts), Fields: fields})
	}
	return records, nil
}

func lookup(sheet *fetcher.Sheet, index map[string]int, columns []string) ([]int, error) {
	out := make([]int, len(columns))
	var missing []string
	for k, c := range columns {
		i, ok := index[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		out[k] = i
	}
	if len(missing) > 0 {
		return nil, apperr.Dataf("", "sheet %q lacks columns %s", sheet.Name, strings.Join(missing, ", "))
	}
	return out, nil
}

// Tables holds the projected consumers and providers of one input.
type Tables struct {
	Consumers []model.Record
	Providers []model.Record
}

// Load reads both sheets named by cfg from path and projects them.
func Load(ctx context.Context, path string, cfg config.InputConfig) (*Tables, error) {
	users, err := readSheet(ctx, path, cfg.UserSheet)
	if err != nil {
		return nil, err
	}
	services, err := readSheet(ctx, path, cfg.ServiceSheet)
	if err != nil {
		return nil, err
	}

	consumers, err := Project(users, cfg.UserColumns, cfg.UserIDColumns)
	if err != nil {
		return nil, err
	}
	providers, err := Project(services, cfg.ServiceColumns, cfg.ServiceIDColumns)
	if err != nil {
		return nil, err
	}

	zap.L().Info("ingest: tables loaded",
		zap.String("input", path),
		zap.Int("consumers", len(consumers)),
		zap.Int("providers", len(providers)),
	)
	return &Tables{Consumers: consumers, Providers: providers}, nil
}

// readSheet reports an unreadable sheet as a DataError; cancellation is
// passed through unchanged.
func readSheet(ctx context.Context, path, name string) (*fetcher.Sheet, error) {
	sheet, err := fetcher.ReadSheet(ctx, path, name)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(err, "ingest: read sheet")
		}
		return nil, apperr.Data("", eris.Wrapf(err, "ingest: read sheet %q", name))
	}
	return sheet, nil
}
