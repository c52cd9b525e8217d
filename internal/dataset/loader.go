package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
)

const (
	batchSize  = 5000
	maxWorkers = 8
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006",
	"2006/01/02",
}

type Loader struct {
	sheet    string
	cacheDir string
	logger   *slog.Logger
}

type Option func(*Loader)

// WithSheet selects the worksheet read from spreadsheet files. The first
// sheet is used when unset.
func WithSheet(name string) Option {
	return func(l *Loader) { l.sheet = name }
}

// WithCacheDir enables gob snapshots of parsed datasets under dir.
func WithCacheDir(dir string) Option {
	return func(l *Loader) { l.cacheDir = dir }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads path into a Dataset. Read failures are returned as *LoadError,
// malformed cells as *ParseError.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "stat file", Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Path: path, Reason: "path is a directory"}
	}

	if l.cacheDir != "" {
		if ds, err := l.loadSnapshot(path, info.ModTime()); err == nil {
			l.logger.Info("dataset loaded from snapshot", "path", path, "records", ds.Len())
			return ds, nil
		}
	}

	start := time.Now()
	rows, err := l.readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &LoadError{Path: path, Reason: "read header", Err: ErrEmptyFile}
	}

	idx, err := mapColumns(rows[0])
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "map columns", Err: err}
	}

	records, err := parseRows(ctx, rows[1:], idx)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return nil, perr
		}
		return nil, &LoadError{Path: path, Reason: "parse rows", Err: err}
	}
	if len(records) == 0 {
		return nil, &LoadError{Path: path, Reason: "read rows", Err: ErrNoRecords}
	}

	ds := New(records)
	l.logger.Info("dataset parsed",
		"path", path,
		"records", ds.Len(),
		"regions", len(ds.regions),
		"categories", len(ds.categories),
		"duration", time.Since(start),
	)

	if l.cacheDir != "" {
		if err := l.saveSnapshot(path, ds); err != nil {
			l.logger.Warn("failed to save dataset snapshot", "error", err)
		}
	}
	return ds, nil
}

func (l *Loader) readRows(path string) ([][]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xlsm":
		return l.readSpreadsheet(path)
	default:
		return nil, &LoadError{Path: path, Reason: fmt.Sprintf("extension %q", ext), Err: ErrUnsupportedFormat}
	}
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "open file", Err: err}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "read csv", Err: err}
	}
	return rows, nil
}

func (l *Loader) readSpreadsheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "open workbook", Err: err}
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &LoadError{Path: path, Reason: "workbook has no sheets", Err: ErrEmptyFile}
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &LoadError{Path: path, Reason: fmt.Sprintf("read sheet %q", sheet), Err: err}
	}
	return rows, nil
}

// parseRows converts data rows in parallel batches. Output keeps input
// order, and the reported error is the earliest failing row.
func parseRows(ctx context.Context, rows [][]string, idx [numColumns]int) ([]models.Record, error) {
	numBatches := (len(rows) + batchSize - 1) / batchSize
	parsed := make([][]models.Record, numBatches)
	failures := make([]error, numBatches)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for b := 0; b < numBatches; b++ {
		first := b * batchSize
		last := min(first+batchSize, len(rows))

		g.Go(func() error {
			out := make([]models.Record, 0, last-first)
			for i := first; i < last; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if isBlank(rows[i]) {
					continue
				}
				// +2: one for the header, one for 1-based numbering.
				rec, err := parseRecord(rows[i], idx, i+2)
				if err != nil {
					failures[b] = err
					return nil
				}
				out = append(out, rec)
			}
			parsed[b] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for b := range parsed {
		if failures[b] != nil {
			return nil, failures[b]
		}
		total += len(parsed[b])
	}

	records := make([]models.Record, 0, total)
	for _, batch := range parsed {
		records = append(records, batch...)
	}
	return records, nil
}

func parseRecord(row []string, idx [numColumns]int, line int) (models.Record, error) {
	cell := func(c column) string {
		if idx[c] < len(row) {
			return strings.TrimSpace(row[idx[c]])
		}
		return ""
	}

	date, err := parseDate(cell(colDate))
	if err != nil {
		return models.Record{}, &ParseError{Line: line, Column: colDate.String(), Value: cell(colDate), Err: err}
	}

	var amounts [3]float64
	for i, c := range []column{colSales, colProfit, colDiscount} {
		v, err := parseAmount(cell(c))
		if err != nil {
			return models.Record{}, &ParseError{Line: line, Column: c.String(), Value: cell(c), Err: err}
		}
		amounts[i] = v
	}

	return models.Record{
		OrderDate: date,
		Region:    cell(colRegion),
		Category:  cell(colCategory),
		Sales:     amounts[0],
		Profit:    amounts[1],
		Discount:  amounts[2],
	}, nil
}

var errNotFinite = errors.New("value is not a finite number")

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// parseDate accepts the common ISO-like layouts and, for spreadsheet input,
// raw Excel serial day numbers. The result is the calendar date at UTC.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

// Day truncates t to its calendar date at UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
