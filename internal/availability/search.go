package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"camops/internal"
	"camops/internal/sheetgrid"
)

// Grid layout of the equipment sheet: dates across the header row, one
// equipment row per line below the frozen banner rows.
const (
	headerRow    = 1
	dataStartRow = 8
	locationCol  = 1 // A
	typeCol      = 4 // D
	notesCol     = 5 // E
	dateStartCol = 6 // F

	outputStartRow = 2
	outputStartCol = 6 // F
	outputWidth    = 5
)

// Search runs the availability matcher against an equipment sheet and writes
// the results back to the lookup sheet. The sheet is read in two bulk calls
// (values and backgrounds) and written in one.
type Search struct {
	store       sheetgrid.Store
	cls         *Classifier
	sheet       string
	outputSheet string
}

func NewSearch(store sheetgrid.Store, sheet, outputSheet string) *Search {
	return &Search{store: store, cls: NewClassifier(), sheet: sheet, outputSheet: outputSheet}
}

// RawCriteria carries the filter cells as typed by the user.
type RawCriteria struct {
	Types       string
	Locations   string
	From        string
	To          string
	GroupFilter string
}

// Parse expands the raw filters. Unparseable dates stay the zero time, which
// downstream yields zero matching date columns rather than an error.
func (rc RawCriteria) Parse() Criteria {
	from, _ := ParseHeaderDate(rc.From)
	to, _ := ParseHeaderDate(rc.To)
	return Criteria{
		Types:       SplitCSV(rc.Types),
		Locations:   ExpandLocations(SplitCSV(rc.Locations)),
		From:        from,
		To:          to,
		GroupFilter: rc.GroupFilter,
	}
}

func (s *Search) Run(ctx context.Context, raw RawCriteria) (Result, error) {
	started := time.Now()
	criteria := raw.Parse()

	grid, err := s.store.ReadAll(ctx, s.sheet)
	if err != nil {
		return Result{}, fmt.Errorf("read equipment sheet: %w", err)
	}
	if len(grid) < headerRow {
		return Result{}, fmt.Errorf("equipment sheet %q is empty", s.sheet)
	}
	headers := dateHeaders(grid[headerRow-1])

	rows, err := s.equipmentRows(ctx, grid, len(headers))
	if err != nil {
		return Result{}, err
	}

	result := FindAvailable(criteria, rows, headers, s.cls)
	if err := s.writeResults(ctx, result); err != nil {
		return Result{}, err
	}

	logrus.WithFields(logrus.Fields{
		"component": "availability",
		"matches":   len(result.Rows),
		"tookMs":    time.Since(started).Milliseconds(),
	}).Info("search finished")
	return result, nil
}

// dateHeaders keeps the header row aligned with occupancy columns: everything
// left of the first date column is blanked so it can never parse as a date.
func dateHeaders(header []string) []string {
	out := make([]string, len(header))
	copy(out[dateStartCol-1:], header[min(dateStartCol-1, len(header)):])
	return out
}

func (s *Search) equipmentRows(ctx context.Context, grid [][]string, width int) ([]internal.EquipmentRow, error) {
	if len(grid) < dataStartRow {
		return nil, nil
	}
	height := len(grid) - dataStartRow + 1
	backgrounds, err := s.store.ReadBackgrounds(ctx, s.sheet, sheetgrid.Rect{
		Row: dataStartRow, Col: 1, Rows: height, Cols: width,
	})
	if err != nil {
		return nil, fmt.Errorf("read occupancy backgrounds: %w", err)
	}

	rows := make([]internal.EquipmentRow, 0, height)
	for i := 0; i < height; i++ {
		values := grid[dataStartRow-1+i]
		cells := make([]internal.CellState, width)
		for col := 0; col < width; col++ {
			cell := internal.CellState{Background: sheetgrid.White}
			if col < len(values) {
				cell.Value = values[col]
			}
			if i < len(backgrounds) && col < len(backgrounds[i]) {
				cell.Background = backgrounds[i][col]
			}
			cells[col] = cell
		}
		rows = append(rows, internal.EquipmentRow{
			Row:      dataStartRow + i,
			Location: cellValue(values, locationCol),
			Type:     cellValue(values, typeCol),
			Notes:    cellValue(values, notesCol),
			Cells:    cells,
		})
	}
	return rows, nil
}

func (s *Search) writeResults(ctx context.Context, result Result) error {
	lastRow, err := s.store.LastRow(ctx, s.outputSheet)
	if err != nil {
		return fmt.Errorf("inspect lookup sheet: %w", err)
	}
	clearRows := lastRow - outputStartRow + 1
	if clearRows < 1 {
		clearRows = 1
	}
	if err := s.store.ClearRange(ctx, s.outputSheet, sheetgrid.Rect{
		Row: outputStartRow, Col: outputStartCol, Rows: clearRows, Cols: outputWidth,
	}); err != nil {
		return fmt.Errorf("clear previous results: %w", err)
	}

	if len(result.Rows) == 0 {
		return s.store.WriteRange(ctx, s.outputSheet, outputStartRow, outputStartCol, [][]string{{NoResults}})
	}

	out := make([][]string, len(result.Rows))
	for i, m := range result.Rows {
		out[i] = []string{m.Barcode, m.Serial, m.Type, m.Location, m.Notes}
	}
	return s.store.WriteRange(ctx, s.outputSheet, outputStartRow, outputStartCol, out)
}

func cellValue(row []string, col int) string {
	if col-1 < len(row) {
		return row[col-1]
	}
	return ""
}
