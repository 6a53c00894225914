package mirror

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"camops/internal/sheetgrid"
	"camops/internal/util"
)

// TorontoColumns remaps the dictionary schema onto the layout the Toronto
// office reads: equipment first, barcodes beside it. Each entry is the
// 1-based source column for that target column.
var TorontoColumns = []int{2, 3, 7, 4, 6}

// Service mirrors the barcode database into a sibling spreadsheet with a
// reordered column layout. Source and target may live in different
// spreadsheets, hence the two stores.
type Service struct {
	source      sheetgrid.Store
	target      sheetgrid.Store
	sourceSheet string
	targetSheet string
	columns     []int
}

func NewService(source, target sheetgrid.Store, sourceSheet, targetSheet string, columns []int) *Service {
	if len(columns) == 0 {
		columns = TorontoColumns
	}
	return &Service{
		source:      source,
		target:      target,
		sourceSheet: sourceSheet,
		targetSheet: targetSheet,
		columns:     columns,
	}
}

func (s *Service) Run(ctx context.Context) (int, error) {
	rows, err := s.source.ReadAll(ctx, s.sourceSheet)
	if err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}
	if len(rows) < 2 {
		return 0, fmt.Errorf("source sheet %q has no data rows", s.sourceSheet)
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		mapped := make([]string, len(s.columns))
		for i, col := range s.columns {
			mapped[i] = util.CellAt(row, col-1)
		}
		out = append(out, mapped)
	}

	stale, err := s.target.LastRow(ctx, s.targetSheet)
	if err != nil {
		return 0, fmt.Errorf("measure target: %w", err)
	}
	if stale > 0 {
		if err := s.target.ClearRange(ctx, s.targetSheet, sheetgrid.Rect{Row: 1, Col: 1, Rows: stale, Cols: len(s.columns)}); err != nil {
			return 0, fmt.Errorf("clear target: %w", err)
		}
	}
	if err := s.target.WriteRange(ctx, s.targetSheet, 1, 1, out); err != nil {
		return 0, fmt.Errorf("write target: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"component": "mirror",
		"rows":      len(out) - 1,
		"target":    s.targetSheet,
	}).Info("mirror refresh complete")
	return len(out) - 1, nil
}
