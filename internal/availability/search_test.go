package availability

import (
	"context"
	"testing"

	"camops/internal"
	"camops/internal/sheetgrid"
)

func seedCameraSheet(store *sheetgrid.MemoryStore) {
	grid := make([][]string, dataStartRow)
	grid[0] = []string{"Location", "", "", "Camera", "Notes", "2025-05-01", "2025-05-02", "2025-05-03"}
	for i := 1; i < dataStartRow-1; i++ {
		grid[i] = []string{}
	}
	grid[dataStartRow-1] = []string{"LOS ANGELES", "", "", "ALEXA35", "BC# 9042510 S/N 62023 (NBCA)", "", "", ""}
	store.Seed("Camera", grid)
	store.Seed("Look Up", [][]string{{""}})
}

func TestSearchWritesMatches(t *testing.T) {
	ctx := context.Background()
	store := sheetgrid.NewMemoryStore()
	seedCameraSheet(store)

	search := NewSearch(store, "Camera", "Look Up")
	res, err := search.Run(ctx, RawCriteria{
		Types:     "ALEXA35",
		Locations: "US",
		From:      "2025-05-01",
		To:        "2025-05-03",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].Group != internal.GroupKeslow {
		t.Fatalf("unexpected result: %+v", res)
	}

	values := store.Values("Look Up")
	row := values[outputStartRow-1]
	want := []string{"9042510", "62023", "ALEXA35", "LOS ANGELES", "BC# 9042510 S/N 62023 (NBCA)"}
	for i, w := range want {
		if row[outputStartCol-1+i] != w {
			t.Fatalf("output col %d = %q, want %q (row %v)", i, row[outputStartCol-1+i], w, row)
		}
	}
}

func TestSearchBookedCellExcludesRow(t *testing.T) {
	ctx := context.Background()
	store := sheetgrid.NewMemoryStore()
	seedCameraSheet(store)
	// Book the middle day of the window.
	if err := store.WriteRange(ctx, "Camera", dataStartRow, 7, [][]string{{"Job 881"}}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	search := NewSearch(store, "Camera", "Look Up")
	res, err := search.Run(ctx, RawCriteria{
		Types: "ALEXA35",
		From:  "2025-05-01",
		To:    "2025-05-03",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Rows) != 0 {
		t.Fatalf("expected no matches, got %+v", res.Rows)
	}

	values := store.Values("Look Up")
	if values[outputStartRow-1][outputStartCol-1] != NoResults {
		t.Fatalf("sentinel missing, got %v", values[outputStartRow-1])
	}
}

func TestSearchColouredBackgroundExcludesRow(t *testing.T) {
	ctx := context.Background()
	store := sheetgrid.NewMemoryStore()
	seedCameraSheet(store)
	store.SeedBackground("Camera", dataStartRow, 8, "#e06666")

	search := NewSearch(store, "Camera", "Look Up")
	res, err := search.Run(ctx, RawCriteria{
		Types: "ALEXA35",
		From:  "2025-05-01",
		To:    "2025-05-03",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Rows) != 0 {
		t.Fatalf("hold-painted cell must exclude the row, got %+v", res.Rows)
	}
}

func TestSearchUnparseableDatesYieldSentinel(t *testing.T) {
	ctx := context.Background()
	store := sheetgrid.NewMemoryStore()
	seedCameraSheet(store)

	search := NewSearch(store, "Camera", "Look Up")
	res, err := search.Run(ctx, RawCriteria{
		Types: "ALEXA35",
		From:  "not a date",
		To:    "also not",
	})
	if err != nil {
		t.Fatalf("malformed dates must degrade, not error: %v", err)
	}
	if !res.NoDateColumns {
		t.Fatalf("expected no-date-columns outcome, got %+v", res)
	}
	values := store.Values("Look Up")
	if values[outputStartRow-1][outputStartCol-1] != NoResults {
		t.Fatalf("sentinel missing, got %v", values[outputStartRow-1])
	}
}

func TestSearchOverwritesStaleResults(t *testing.T) {
	ctx := context.Background()
	store := sheetgrid.NewMemoryStore()
	seedCameraSheet(store)

	search := NewSearch(store, "Camera", "Look Up")
	if _, err := search.Run(ctx, RawCriteria{Types: "ALEXA35", From: "2025-05-01", To: "2025-05-03"}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// Second run with no matching type must clear the previous output.
	if _, err := search.Run(ctx, RawCriteria{Types: "VENICE2", From: "2025-05-01", To: "2025-05-03"}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	values := store.Values("Look Up")
	row := values[outputStartRow-1]
	if row[outputStartCol-1] != NoResults || row[outputStartCol] != "" {
		t.Fatalf("stale results not cleared: %v", row)
	}
}
