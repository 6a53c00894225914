package barcode

import (
	"reflect"
	"testing"

	"camops/internal"
)

func assetRow(uuid, equipment, barcode string) internal.AssetRow {
	return internal.AssetRow{
		UUID:      uuid,
		Equipment: equipment,
		Category:  "CAMERA",
		Status:    "ACTIVE",
		Owner:     "KESLOW",
		Location:  "LOS ANGELES",
		Barcode:   barcode,
	}
}

func TestGroupAndConcatenate(t *testing.T) {
	rows := []internal.AssetRow{
		assetRow("u1", "ALEXA 35", "B1"),
		assetRow("u1", "ALEXA 35", "B2"),
		assetRow("u2", "VENICE 2", "B3"),
	}

	records := GroupAndConcatenate(rows, ModeManual)
	if len(records) != 2 {
		t.Fatalf("expected 2 merged records, got %d", len(records))
	}
	if got := RecordCells(records[0])[6]; got != "B1|B2" {
		t.Fatalf("first record barcodes = %q, want B1|B2", got)
	}
	if got := RecordCells(records[1])[6]; got != "B3" {
		t.Fatalf("second record barcodes = %q, want B3", got)
	}
}

func TestGroupAndConcatenateDeduplicates(t *testing.T) {
	rows := []internal.AssetRow{
		assetRow("u1", "ALEXA 35", "B1"),
		assetRow("u1", "ALEXA 35", "B1"),
		assetRow("u1", "ALEXA 35", " B2 "),
	}

	records := GroupAndConcatenate(rows, ModeManual)
	if len(records) != 1 {
		t.Fatalf("expected 1 merged record, got %d", len(records))
	}
	want := []string{"B1", "B2"}
	if !reflect.DeepEqual(records[0].Barcodes, want) {
		t.Fatalf("barcodes = %v, want %v", records[0].Barcodes, want)
	}
}

func TestGroupAndConcatenateStable(t *testing.T) {
	rows := []internal.AssetRow{
		assetRow("u2", "VENICE 2", "B3"),
		assetRow("u1", "ALEXA 35", "B1"),
		assetRow("u2", "VENICE 2", "B4"),
	}

	first := RecordsToTable(GroupAndConcatenate(rows, ModeManual))
	second := RecordsToTable(GroupAndConcatenate(rows, ModeManual))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated runs diverged: %v vs %v", first, second)
	}
	if first[1][6] != "B3|B4" {
		t.Fatalf("first-seen key should lead the table, got %v", first[1])
	}
}

func TestGroupAndConcatenateEmptyBarcode(t *testing.T) {
	rows := []internal.AssetRow{
		assetRow("u1", "ALEXA 35", ""),
		assetRow("u1", "ALEXA 35", "B1"),
	}

	t.Run("manual skips the value but keeps the identity", func(t *testing.T) {
		records := GroupAndConcatenate(rows, ModeManual)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if !reflect.DeepEqual(records[0].Barcodes, []string{"B1"}) {
			t.Fatalf("barcodes = %v, want [B1]", records[0].Barcodes)
		}
	})

	t.Run("automation records a placeholder", func(t *testing.T) {
		records := GroupAndConcatenate(rows, ModeAutomation)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		want := []string{NoBarcode, "B1"}
		if !reflect.DeepEqual(records[0].Barcodes, want) {
			t.Fatalf("barcodes = %v, want %v", records[0].Barcodes, want)
		}
	})
}

func TestGroupAndConcatenateLocationFallback(t *testing.T) {
	row := assetRow("u1", "ALEXA 35", "B1")
	row.Location = ""

	manual := GroupAndConcatenate([]internal.AssetRow{row}, ModeManual)
	if manual[0].Key.Location != "" {
		t.Fatalf("manual mode must not rewrite the location, got %q", manual[0].Key.Location)
	}

	auto := GroupAndConcatenate([]internal.AssetRow{row}, ModeAutomation)
	if auto[0].Key.Location != "UNKNOWN" {
		t.Fatalf("automation location = %q, want UNKNOWN", auto[0].Key.Location)
	}
}

func TestGroupAndConcatenateFallbackDoesNotMergeKeys(t *testing.T) {
	blank := assetRow("u1", "ALEXA 35", "B1")
	blank.Location = ""
	literal := assetRow("u1", "ALEXA 35", "B2")
	literal.Location = "UNKNOWN"

	records := GroupAndConcatenate([]internal.AssetRow{blank, literal}, ModeAutomation)
	if len(records) != 2 {
		t.Fatalf("blank and literal UNKNOWN locations must stay distinct, got %d records", len(records))
	}
	if !reflect.DeepEqual(records[0].Barcodes, []string{"B1"}) ||
		!reflect.DeepEqual(records[1].Barcodes, []string{"B2"}) {
		t.Fatalf("barcode sets crossed keys: %v / %v", records[0].Barcodes, records[1].Barcodes)
	}
	if records[0].Key.Location != "UNKNOWN" || records[1].Key.Location != "UNKNOWN" {
		t.Fatalf("both output locations should read UNKNOWN: %q / %q",
			records[0].Key.Location, records[1].Key.Location)
	}
}

func TestRecordsToTableHeaderOrder(t *testing.T) {
	table := RecordsToTable(nil)
	if len(table) != 1 {
		t.Fatalf("empty input should still emit the header row")
	}
	if !reflect.DeepEqual(table[0], ConcatHeaders) {
		t.Fatalf("header row = %v, want %v", table[0], ConcatHeaders)
	}
}
