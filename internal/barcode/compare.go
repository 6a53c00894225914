package barcode

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"camops/internal"
	"camops/internal/sheetgrid"
	"camops/internal/util"
)

// ExtractBarcodes flattens a column of pipe-joined cells into the ordered set
// of distinct barcodes it contains. Cells holding only the header word are
// skipped, so the column can be read from row one without knowing whether a
// header is present.
func ExtractBarcodes(column []string) []string {
	set := newOrderedSet()
	for _, cell := range column {
		for _, code := range util.SplitBarcodes(cell) {
			set.add(code)
		}
	}
	return set.items
}

// Compare reports the symmetric difference between two barcode sets. Output
// order follows first appearance in the input slices, so repeated runs over
// the same sheets produce identical reports.
func Compare(a, b []string) internal.CompareResult {
	inA := map[string]struct{}{}
	for _, code := range a {
		inA[code] = struct{}{}
	}
	inB := map[string]struct{}{}
	for _, code := range b {
		inB[code] = struct{}{}
	}

	result := internal.CompareResult{}
	seenA := map[string]struct{}{}
	for _, code := range a {
		if _, dup := seenA[code]; dup {
			continue
		}
		seenA[code] = struct{}{}
		if _, ok := inB[code]; ok {
			result.IntersectionSize++
		} else {
			result.OnlyInA = append(result.OnlyInA, code)
		}
	}
	seenB := map[string]struct{}{}
	for _, code := range b {
		if _, dup := seenB[code]; dup {
			continue
		}
		seenB[code] = struct{}{}
		if _, ok := inA[code]; !ok {
			result.OnlyInB = append(result.OnlyInB, code)
		}
	}
	return result
}

// CompareService diffs the barcode columns of two sheets and writes a
// three-column report to a results sheet.
type CompareService struct {
	store       sheetgrid.Store
	sheetA      string
	columnA     int
	sheetB      string
	columnB     int
	reportSheet string
}

func NewCompareService(store sheetgrid.Store, sheetA string, columnA int, sheetB string, columnB int, reportSheet string) *CompareService {
	return &CompareService{
		store:       store,
		sheetA:      sheetA,
		columnA:     columnA,
		sheetB:      sheetB,
		columnB:     columnB,
		reportSheet: reportSheet,
	}
}

func (s *CompareService) Run(ctx context.Context) (internal.CompareResult, error) {
	colA, err := s.readColumn(ctx, s.sheetA, s.columnA)
	if err != nil {
		return internal.CompareResult{}, err
	}
	colB, err := s.readColumn(ctx, s.sheetB, s.columnB)
	if err != nil {
		return internal.CompareResult{}, err
	}

	result := Compare(ExtractBarcodes(colA), ExtractBarcodes(colB))

	stale, err := s.store.LastRow(ctx, s.reportSheet)
	if err != nil {
		return result, fmt.Errorf("measure report sheet: %w", err)
	}
	if stale > 0 {
		if err := s.store.ClearRange(ctx, s.reportSheet, sheetgrid.Rect{Row: 1, Col: 1, Rows: stale, Cols: 3}); err != nil {
			return result, fmt.Errorf("clear report sheet: %w", err)
		}
	}
	report := [][]string{
		{"Only In " + s.sheetA, "Only In " + s.sheetB, "In Both"},
	}
	rows := len(result.OnlyInA)
	if len(result.OnlyInB) > rows {
		rows = len(result.OnlyInB)
	}
	for i := 0; i < rows; i++ {
		row := make([]string, 3)
		if i < len(result.OnlyInA) {
			row[0] = result.OnlyInA[i]
		}
		if i < len(result.OnlyInB) {
			row[1] = result.OnlyInB[i]
		}
		if i == 0 {
			row[2] = strconv.Itoa(result.IntersectionSize)
		}
		report = append(report, row)
	}
	if err := s.store.WriteRange(ctx, s.reportSheet, 1, 1, report); err != nil {
		return result, fmt.Errorf("write report sheet: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"component":    "barcode-compare",
		"only_in_a":    len(result.OnlyInA),
		"only_in_b":    len(result.OnlyInB),
		"intersection": result.IntersectionSize,
	}).Info("barcode comparison complete")
	return result, nil
}

func (s *CompareService) readColumn(ctx context.Context, sheet string, col int) ([]string, error) {
	last, err := s.store.LastRow(ctx, sheet)
	if err != nil {
		return nil, fmt.Errorf("measure %s: %w", sheet, err)
	}
	if last == 0 {
		return nil, nil
	}
	grid, err := s.store.ReadRange(ctx, sheet, sheetgrid.Rect{Row: 1, Col: col, Rows: last, Cols: 1})
	if err != nil {
		return nil, fmt.Errorf("read %s column %d: %w", sheet, col, err)
	}
	column := make([]string, 0, len(grid))
	for _, row := range grid {
		if len(row) > 0 {
			column = append(column, row[0])
		}
	}
	return column, nil
}
