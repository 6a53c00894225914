package util

import "strings"

const headerWord = "barcodes"

func NormalizeBarcode(input string) string {
	return strings.TrimSpace(input)
}

// SplitBarcodes splits a cell that may hold a single barcode or a
// pipe-delimited list. Tokens equal to the header word are dropped so a header
// row leaking into a data range cannot poison the set.
func SplitBarcodes(cell string) []string {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}

	var parts []string
	if strings.Contains(trimmed, "|") {
		parts = strings.Split(trimmed, "|")
	} else {
		parts = []string{trimmed}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		token := NormalizeBarcode(p)
		if token == "" || strings.EqualFold(token, headerWord) {
			continue
		}
		out = append(out, token)
	}
	return out
}

func JoinBarcodes(tokens []string) string {
	return strings.Join(tokens, "|")
}

// PadRow returns row extended with empty strings up to width. Tables with
// mismatched column counts compare against the wider of the two.
func PadRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

func CellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
