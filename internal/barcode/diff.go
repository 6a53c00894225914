package barcode

import (
	"camops/internal"
	"camops/internal/util"
)

// identityWidth is how many leading columns form the cross-table join key.
const identityWidth = 6

// RowKey builds the typed identity key from the first six columns of a table
// row. Short rows read as empty fields.
func RowKey(row []string) internal.IdentityKey {
	return internal.IdentityKey{
		UUID:      util.CellAt(row, 0),
		Equipment: util.CellAt(row, 1),
		Category:  util.CellAt(row, 2),
		Status:    util.CellAt(row, 3),
		Owner:     util.CellAt(row, 4),
		Location:  util.CellAt(row, 5),
	}
}

// BuildDiff compares a current table against a desired table, both including
// their header row at index 0. Every identity ends up in exactly one of
// delete, add, update or unchanged. Row indices in the result are 1-based
// sheet rows. Tables of unequal width compare after padding to the wider one.
func BuildDiff(current, desired [][]string) internal.ReconciliationDiff {
	width := tableWidth(current)
	if w := tableWidth(desired); w > width {
		width = w
	}

	desiredByKey := map[internal.IdentityKey][]string{}
	desiredOrder := make([]internal.IdentityKey, 0, len(desired))
	for i := 1; i < len(desired); i++ {
		key := RowKey(desired[i])
		if _, ok := desiredByKey[key]; !ok {
			desiredOrder = append(desiredOrder, key)
		}
		desiredByKey[key] = util.PadRow(desired[i], width)
	}

	currentByKey := map[internal.IdentityKey]int{}
	diff := internal.ReconciliationDiff{}
	for i := 1; i < len(current); i++ {
		key := RowKey(current[i])
		currentByKey[key] = i
		if _, ok := desiredByKey[key]; !ok {
			diff.ToDelete = append(diff.ToDelete, i+1)
		}
	}

	for _, key := range desiredOrder {
		idx, ok := currentByKey[key]
		if !ok {
			diff.ToAdd = append(diff.ToAdd, desiredByKey[key])
			continue
		}
		currentRow := util.PadRow(current[idx], width)
		desiredRow := desiredByKey[key]
		if !rowsEqual(currentRow, desiredRow) {
			diff.ToUpdate = append(diff.ToUpdate, internal.RowUpdate{Row: idx + 1, Values: desiredRow})
		}
	}

	return diff
}

func rowsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func tableWidth(table [][]string) int {
	width := 0
	for _, row := range table {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}
