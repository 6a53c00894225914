package availability

import (
	"time"

	"camops/internal"
	"camops/internal/sheetgrid"
)

// NoResults is written to the output range when a search completes without
// matches, so "ran and found nothing" is visible in the sheet.
const NoResults = "No Results Found"

const (
	GroupFilterKeslow    = "keslow"
	GroupFilterConsigner = "consigner"
)

type Criteria struct {
	Types       []string
	Locations   []string // post region-expansion
	From        time.Time
	To          time.Time
	GroupFilter string
}

type Result struct {
	Rows []internal.MatchRow
	// NoDateColumns reports that no header column fell inside the window, the
	// short-circuit outcome distinct from an empty match list.
	NoDateColumns bool
}

var headerDateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"Mon Jan 2 2006",
	"Jan 2, 2006",
	"2006-01-02T15:04:05Z07:00",
}

// ParseHeaderDate parses one raw date header cell. The zero time and false
// mean the column is not a date column.
func ParseHeaderDate(raw string) (time.Time, bool) {
	for _, layout := range headerDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateColumns returns the indices of header columns whose parsed date lies in
// [from, to]. An inverted range simply yields no columns.
func DateColumns(headers []string, from, to time.Time) []int {
	out := []int{}
	for col, raw := range headers {
		d, ok := ParseHeaderDate(raw)
		if !ok {
			continue
		}
		if !d.Before(from) && !d.After(to) {
			out = append(out, col)
		}
	}
	return out
}

// FindAvailable scans the grid for rows free across every date column in the
// window, classifies them by ownership and selects the output set by group
// filter. Row order follows grid scan order; with no group filter the Keslow
// group precedes the Consigner group.
func FindAvailable(c Criteria, rows []internal.EquipmentRow, dateHeaders []string, cls *Classifier) Result {
	dateCols := DateColumns(dateHeaders, c.From, c.To)
	if len(dateCols) == 0 {
		return Result{NoDateColumns: true}
	}

	typeSet := toSet(c.Types)
	locationSet := toSet(c.Locations)
	applyLocationFilter := len(locationSet) > 0

	var keslow, consigner []internal.MatchRow
	for _, row := range rows {
		if row.Location == "" || row.Type == "" {
			continue
		}
		if _, ok := typeSet[row.Type]; !ok {
			continue
		}
		if applyLocationFilter {
			if _, ok := locationSet[row.Location]; !ok {
				continue
			}
		}
		if !freeAcross(row.Cells, dateCols) {
			continue
		}

		group := cls.Classify(row.Notes)
		if group == internal.GroupUnclassified {
			continue
		}
		barcode, serial := cls.ExtractBarcodeSerial(row.Notes)
		match := internal.MatchRow{
			Barcode:  barcode,
			Serial:   serial,
			Type:     row.Type,
			Location: row.Location,
			Notes:    row.Notes,
			Group:    group,
		}
		if group == internal.GroupKeslow {
			keslow = append(keslow, match)
		} else {
			consigner = append(consigner, match)
		}
	}

	switch c.GroupFilter {
	case GroupFilterKeslow:
		return Result{Rows: keslow}
	case GroupFilterConsigner:
		return Result{Rows: consigner}
	default:
		return Result{Rows: append(keslow, consigner...)}
	}
}

// freeAcross is the all-or-nothing availability test: every checked cell must
// be empty on a white background.
func freeAcross(cells []internal.CellState, dateCols []int) bool {
	for _, col := range dateCols {
		if col >= len(cells) {
			continue
		}
		cell := cells[col]
		if cell.Value != "" {
			return false
		}
		if !sheetgrid.IsWhite(cell.Background) {
			return false
		}
	}
	return true
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
