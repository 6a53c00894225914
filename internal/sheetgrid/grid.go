package sheetgrid

import (
	"context"
	"fmt"
	"strings"
)

const (
	White = "#ffffff"
	Red   = "#ff0000"
	Green = "#00ff00"
)

// Rect is a rectangular cell range. Row and Col are 1-based.
type Rect struct {
	Row  int
	Col  int
	Rows int
	Cols int
}

// Store is the bulk rectangular interface the engines consume. Implementations
// are expected to make each call a single round trip; callers batch reads and
// writes rather than touching cells one at a time.
type Store interface {
	ReadAll(ctx context.Context, sheet string) ([][]string, error)
	ReadRange(ctx context.Context, sheet string, r Rect) ([][]string, error)
	ReadBackgrounds(ctx context.Context, sheet string, r Rect) ([][]string, error)
	WriteRange(ctx context.Context, sheet string, row, col int, values [][]string) error
	ClearRange(ctx context.Context, sheet string, r Rect) error
	AppendRows(ctx context.Context, sheet string, values [][]string) error
	DeleteRow(ctx context.Context, sheet string, row int) error
	SetBackground(ctx context.Context, sheet string, r Rect, color string) error
	SetFontColor(ctx context.Context, sheet string, r Rect, color string) error
	LastRow(ctx context.Context, sheet string) (int, error)
}

func IsWhite(color string) bool {
	switch strings.ToLower(strings.TrimSpace(color)) {
	case "", "#ffffff", "#fff", "white":
		return true
	}
	return false
}

func ColumnLetter(index int) string {
	var b strings.Builder
	for index >= 0 {
		b.WriteByte(byte('A' + index%26))
		index = index/26 - 1
	}
	runes := []rune(b.String())
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func rangeA1(sheet string, r Rect) string {
	start := fmt.Sprintf("%s%d", ColumnLetter(r.Col-1), r.Row)
	end := fmt.Sprintf("%s%d", ColumnLetter(r.Col+r.Cols-2), r.Row+r.Rows-1)
	return fmt.Sprintf("'%s'!%s:%s", sheet, start, end)
}
