package sheetgrid

import (
	"context"
	"reflect"
	"testing"
)

func TestMemoryStoreReadWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Seed("Data", [][]string{
		{"a1", "b1"},
		{"a2", "b2"},
	})

	if err := store.WriteRange(ctx, "Data", 2, 2, [][]string{{"x"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := store.ReadRange(ctx, "Data", Rect{Row: 1, Col: 1, Rows: 2, Cols: 2})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := [][]string{{"a1", "b1"}, {"a2", "x"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestMemoryStoreReadBeyondBounds(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Seed("Data", [][]string{{"only"}})

	got, err := store.ReadRange(ctx, "Data", Rect{Row: 1, Col: 1, Rows: 3, Cols: 3})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 || len(got[2]) != 3 || got[0][0] != "only" || got[2][2] != "" {
		t.Fatalf("expected padded rectangle, got %v", got)
	}

	bgs, err := store.ReadBackgrounds(ctx, "Data", Rect{Row: 1, Col: 1, Rows: 2, Cols: 2})
	if err != nil {
		t.Fatalf("backgrounds: %v", err)
	}
	if !IsWhite(bgs[1][1]) {
		t.Fatalf("unseeded backgrounds must default to white, got %q", bgs[1][1])
	}
}

func TestMemoryStoreDeleteRowShiftsDown(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Seed("Data", [][]string{{"r1"}, {"r2"}, {"r3"}})

	if err := store.DeleteRow(ctx, "Data", 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := [][]string{{"r1"}, {"r3"}}
	if got := store.Values("Data"); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if err := store.DeleteRow(ctx, "Data", 5); err == nil {
		t.Fatalf("expected error deleting past end")
	}
}

func TestColumnLetter(t *testing.T) {
	cases := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA"}
	for idx, want := range cases {
		if got := ColumnLetter(idx); got != want {
			t.Fatalf("ColumnLetter(%d) = %q, want %q", idx, got, want)
		}
	}
}

func TestIsWhite(t *testing.T) {
	for _, c := range []string{"#ffffff", "#FFF", "white", "WHITE", ""} {
		if !IsWhite(c) {
			t.Fatalf("expected %q to read as white", c)
		}
	}
	if IsWhite("#ff0000") {
		t.Fatalf("red is not white")
	}
}
