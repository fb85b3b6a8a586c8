// Package export writes recommendations as a flat table:
// user, partner1, partnerScore1, partner2, partnerScore2, ...
package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/sells-group/partner-match/internal/apperr"
	"github.com/sells-group/partner-match/internal/model"
)

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// SheetName is the worksheet written by the xlsx format.
const SheetName = "recommendations"

// ResolveFormat returns format when set, otherwise infers it from the
// extension of path.
func ResolveFormat(path, format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch f {
	case FormatXLSX, FormatCSV, FormatJSON:
		return f, nil
	}
	return "", apperr.Configurationf("output.format", "export: unsupported format %q for %s (want xlsx, csv or json)", f, path)
}

// Write writes recs to path. The table is as wide as the longest
// recommendation; shorter rows leave the trailing cells blank.
func Write(path, format string, recs []model.Recommendation) error {
	f, err := ResolveFormat(path, format)
	if err != nil {
		return err
	}

	width := model.MaxPartners(recs)
	switch f {
	case FormatXLSX:
		err = writeXLSX(path, width, recs)
	case FormatCSV:
		err = writeCSV(path, width, recs)
	case FormatJSON:
		err = writeJSON(path, recs)
	}
	if err != nil {
		return err
	}

	zap.L().Info("export: recommendations written",
		zap.String("path", path),
		zap.String("format", f),
		zap.Int("rows", len(recs)),
		zap.Int("partner_columns", width),
	)
	return nil
}

func writeXLSX(path string, width int, recs []model.Recommendation) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range model.Header(width) {
		header.AddCell().SetString(col)
	}

	for _, rec := range recs {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.User)
		for _, p := range rec.Partners {
			row.AddCell().SetString(p.ID)
			row.AddCell().SetFloat(p.Score)
		}
	}

	if err := file.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func writeCSV(path string, width int, recs []model.Recommendation) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(model.Header(width)); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for _, rec := range recs {
		row := make([]string, 1+2*width)
		row[0] = rec.User
		for i, p := range rec.Partners {
			row[1+2*i] = p.ID
			row[2+2*i] = formatScore(p.Score)
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

// writeJSON writes an array with one object per recommendation, keys in
// table column order. Missing partners are omitted, not null.
func writeJSON(path string, recs []model.Recommendation) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, rec := range recs {
		obj, err := sjson.SetBytes([]byte("{}"), model.UserColumn, rec.User)
		if err != nil {
			return eris.Wrap(err, "export: encode user")
		}
		for k, p := range rec.Partners {
			pc, sc := model.PartnerColumns(k + 1)
			if obj, err = sjson.SetBytes(obj, pc, p.ID); err != nil {
				return eris.Wrap(err, "export: encode partner")
			}
			if obj, err = sjson.SetRawBytes(obj, sc, []byte(formatScore(p.Score))); err != nil {
				return eris.Wrap(err, "export: encode score")
			}
		}
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		buf.Write(obj)
	}
	if len(recs) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrap(err, "export: write file")
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
