// Package export writes batch extraction results as CSV or XLSX tables.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/contract-extractor/constants"
	"github.com/joseph-ayodele/contract-extractor/internal/entity"
)

const (
	ColFilename = "Filename"
	ColError    = "Error"

	sheet = "Contracts"
)

// Format is an output table format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatForPath picks the format from the output extension; anything but .xlsx is CSV.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Row is one processed document. Err is empty on success.
type Row struct {
	Filename string
	Record   entity.ContractRecord
	Err      string
}

// Headers returns the eight field columns followed by Filename and Error.
func Headers() []string {
	return append(constants.AsStringSlice(), ColFilename, ColError)
}

func (r Row) cells() []string {
	return append(r.Record.Values(), r.Filename, r.Err)
}

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteFile writes rows to path in the format implied by its extension.
func (s *Service) WriteFile(path string, rows []Row) error {
	var (
		data []byte
		err  error
	)
	switch FormatForPath(path) {
	case FormatXLSX:
		data, err = s.XLSX(rows)
	default:
		var buf bytes.Buffer
		err = s.WriteCSV(&buf, rows)
		data = buf.Bytes()
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes a header line and one line per row. Absent fields are empty cells.
func (s *Service) WriteCSV(w io.Writer, rows []Row) error {
	start := time.Now()
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.cells()); err != nil {
			return fmt.Errorf("csv row %s: %w", r.Filename, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	s.logger.Info("export.csv.ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// XLSX returns a workbook with a single Contracts sheet.
func (s *Service) XLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, h := range Headers() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for ri, r := range rows {
		for ci, v := range r.cells() {
			if v == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("xlsx cell %s: %w", cell, err)
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "C", 24) // number, supplier, client
	_ = f.SetColWidth(sheet, "D", "D", 60) // object
	_ = f.SetColWidth(sheet, "E", "H", 14) // amount, currency, date, location
	_ = f.SetColWidth(sheet, "I", "I", 32) // filename
	_ = f.SetColWidth(sheet, "J", "J", 48) // error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}
