package barcode

import (
	"context"
	"reflect"
	"testing"

	"camops/internal/sheetgrid"
)

func TestExtractBarcodes(t *testing.T) {
	column := []string{
		"Barcodes",
		"B1|B2",
		"",
		"B2|B3",
		"B4",
	}
	got := ExtractBarcodes(column)
	want := []string{"B1", "B2", "B3", "B4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractBarcodes = %v, want %v", got, want)
	}
}

func TestCompare(t *testing.T) {
	a := []string{"B1", "B2", "B3"}
	b := []string{"B2", "B3", "B4", "B5"}

	result := Compare(a, b)
	if !reflect.DeepEqual(result.OnlyInA, []string{"B1"}) {
		t.Fatalf("OnlyInA = %v, want [B1]", result.OnlyInA)
	}
	if !reflect.DeepEqual(result.OnlyInB, []string{"B4", "B5"}) {
		t.Fatalf("OnlyInB = %v, want [B4 B5]", result.OnlyInB)
	}
	if result.IntersectionSize != 2 {
		t.Fatalf("IntersectionSize = %d, want 2", result.IntersectionSize)
	}
}

func TestCompareDeterministicOrder(t *testing.T) {
	a := []string{"Z9", "A1", "M5"}
	first := Compare(a, nil)
	second := Compare(a, nil)
	if !reflect.DeepEqual(first.OnlyInA, a) {
		t.Fatalf("OnlyInA = %v, want input order %v", first.OnlyInA, a)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated comparisons diverged")
	}
}

func TestCompareService(t *testing.T) {
	store := sheetgrid.NewMemoryStore()
	store.Seed("Barcode Dictionary", [][]string{
		dictHeader,
		dictRow("u1", "B1|B2"),
		dictRow("u2", "B3"),
	})
	store.Seed("Barcode Dictionary Import", [][]string{
		dictHeader,
		dictRow("u1", "B2"),
		dictRow("u3", "B9"),
	})

	svc := NewCompareService(store,
		"Barcode Dictionary", 7,
		"Barcode Dictionary Import", 7,
		"Barcode Comparison Results")

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reflect.DeepEqual(result.OnlyInA, []string{"B1", "B3"}) {
		t.Fatalf("OnlyInA = %v, want [B1 B3]", result.OnlyInA)
	}
	if !reflect.DeepEqual(result.OnlyInB, []string{"B9"}) {
		t.Fatalf("OnlyInB = %v, want [B9]", result.OnlyInB)
	}
	if result.IntersectionSize != 1 {
		t.Fatalf("IntersectionSize = %d, want 1", result.IntersectionSize)
	}

	report := store.Values("Barcode Comparison Results")
	if len(report) != 3 {
		t.Fatalf("report has %d rows, want 3: %v", len(report), report)
	}
	if report[0][0] != "Only In Barcode Dictionary" {
		t.Fatalf("unexpected report header: %v", report[0])
	}
	if report[1][0] != "B1" || report[1][1] != "B9" || report[1][2] != "1" {
		t.Fatalf("unexpected first report row: %v", report[1])
	}
	if report[2][0] != "B3" || report[2][1] != "" {
		t.Fatalf("unexpected second report row: %v", report[2])
	}
}
