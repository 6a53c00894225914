package barcode

import (
	"reflect"
	"testing"

	"camops/internal"
)

var dictHeader = []string{"UUID", "Equipment Name", "Category", "Status", "Owner", "Location", "Barcodes"}

func dictRow(uuid, barcodes string) []string {
	return []string{uuid, "ALEXA 35", "CAMERA", "ACTIVE", "KESLOW", "LOS ANGELES", barcodes}
}

func TestBuildDiffPartition(t *testing.T) {
	current := [][]string{
		dictHeader,
		dictRow("u1", "B1"),
		dictRow("u2", "B2"),
		dictRow("u3", "B3"),
	}
	desired := [][]string{
		dictHeader,
		dictRow("u1", "B1"),
		dictRow("u2", "B2|B9"),
		dictRow("u4", "B4"),
	}

	diff := BuildDiff(current, desired)

	if !reflect.DeepEqual(diff.ToDelete, []int{4}) {
		t.Fatalf("ToDelete = %v, want [4]", diff.ToDelete)
	}
	if len(diff.ToAdd) != 1 || diff.ToAdd[0][0] != "u4" {
		t.Fatalf("ToAdd = %v, want the u4 row", diff.ToAdd)
	}
	if len(diff.ToUpdate) != 1 || diff.ToUpdate[0].Row != 3 {
		t.Fatalf("ToUpdate = %v, want row 3", diff.ToUpdate)
	}
	if diff.ToUpdate[0].Values[6] != "B2|B9" {
		t.Fatalf("ToUpdate values = %v, want the desired row", diff.ToUpdate[0].Values)
	}
}

func TestBuildDiffIdentical(t *testing.T) {
	table := [][]string{dictHeader, dictRow("u1", "B1")}
	diff := BuildDiff(table, table)
	if len(diff.ToDelete)+len(diff.ToAdd)+len(diff.ToUpdate) != 0 {
		t.Fatalf("identical tables must produce an empty diff, got %+v", diff)
	}
}

func TestBuildDiffWidthPadding(t *testing.T) {
	current := [][]string{
		dictHeader[:identityWidth],
		dictRow("u1", "B1")[:identityWidth],
	}
	desired := [][]string{
		dictHeader,
		dictRow("u1", "B1"),
	}

	diff := BuildDiff(current, desired)
	if len(diff.ToUpdate) != 1 {
		t.Fatalf("narrower current row must update, got %+v", diff)
	}
	if got := len(diff.ToUpdate[0].Values); got != len(dictHeader) {
		t.Fatalf("update padded to %d columns, want %d", got, len(dictHeader))
	}
}

func TestRowKeyShortRow(t *testing.T) {
	key := RowKey([]string{"u1", "ALEXA 35"})
	want := internal.IdentityKey{UUID: "u1", Equipment: "ALEXA 35"}
	if key != want {
		t.Fatalf("key = %+v, want %+v", key, want)
	}
}
