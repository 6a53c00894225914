package export

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"camops/internal"
	"camops/internal/barcode"
)

// MergedRecordsToXLSX writes the concatenated dictionary as a workbook, one
// row per identity with the barcode set pipe-joined.
func MergedRecordsToXLSX(records []internal.MergedRecord, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range barcode.ConcatHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		for col, value := range barcode.RecordCells(rec) {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// CompareResultToXLSX writes the comparison report, mismatches side by side
// with the overlap count in the corner.
func CompareResultToXLSX(result internal.CompareResult, labelA, labelB, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"Only In " + labelA, "Only In " + labelB, "In Both"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, code := range result.OnlyInA {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = f.SetCellValue(sheet, cell, code)
	}
	for i, code := range result.OnlyInB {
		cell, _ := excelize.CoordinatesToCellName(2, i+2)
		_ = f.SetCellValue(sheet, cell, code)
	}
	cell, _ := excelize.CoordinatesToCellName(3, 2)
	_ = f.SetCellValue(sheet, cell, result.IntersectionSize)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
