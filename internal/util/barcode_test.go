package util

import (
	"reflect"
	"testing"
)

func TestSplitBarcodes(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single token", input: "9042510", want: []string{"9042510"}},
		{name: "pipe list", input: "BC001|BC002|BC003", want: []string{"BC001", "BC002", "BC003"}},
		{name: "whitespace around tokens", input: " BC001 | BC002 ", want: []string{"BC001", "BC002"}},
		{name: "empty cell", input: "   ", want: nil},
		{name: "header word dropped", input: "Barcodes", want: []string{}},
		{name: "header word inside list", input: "BC001|barcodes|BC002", want: []string{"BC001", "BC002"}},
		{name: "empty segments dropped", input: "BC001||BC002|", want: []string{"BC001", "BC002"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitBarcodes(tc.input)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestPadRow(t *testing.T) {
	row := []string{"a", "b"}
	padded := PadRow(row, 4)
	if !reflect.DeepEqual(padded, []string{"a", "b", "", ""}) {
		t.Fatalf("unexpected padding: %v", padded)
	}
	same := PadRow(row, 2)
	if !reflect.DeepEqual(same, row) {
		t.Fatalf("row of equal width should pass through, got %v", same)
	}
}

func TestCellAt(t *testing.T) {
	row := []string{"x"}
	if CellAt(row, 0) != "x" || CellAt(row, 1) != "" || CellAt(row, -1) != "" {
		t.Fatalf("CellAt out-of-range handling broken")
	}
}
