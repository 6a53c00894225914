package export

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"camops/internal"
	"camops/internal/barcode"
)

// MergedRecordsToCSV is the plain-text twin of the workbook export, for
// feeding the table into tools that choke on xlsx.
func MergedRecordsToCSV(records []internal.MergedRecord, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(barcode.ConcatHeaders); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(barcode.RecordCells(rec)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
