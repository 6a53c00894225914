package barcode

import (
	"camops/internal"
	"camops/internal/util"
)

type Mode string

const (
	// ModeManual skips empty barcodes: the row still claims its identity key
	// but contributes nothing to the barcode set.
	ModeManual Mode = "manual"
	// ModeAutomation records a literal placeholder for empty barcodes so the
	// downstream dictionary keeps one row per identity even for untagged gear.
	ModeAutomation Mode = "automation"
)

// NoBarcode is the automation-mode placeholder.
const NoBarcode = "No Barcode"

// orderedSet is a deduplicating set that remembers insertion order, which the
// pipe-joined serialization depends on.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: map[string]struct{}{}}
}

func (s *orderedSet) add(item string) {
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}

// GroupAndConcatenate merges raw asset rows that share an identity key,
// collecting every distinct barcode per key. Output order is the first-seen
// order of each key; re-running on the same input is byte-stable.
func GroupAndConcatenate(rows []internal.AssetRow, mode Mode) []internal.MergedRecord {
	byKey := map[internal.IdentityKey]*orderedSet{}
	order := make([]internal.IdentityKey, 0, len(rows))

	for _, row := range rows {
		barcode := util.NormalizeBarcode(row.Barcode)
		if barcode == "" {
			switch mode {
			case ModeAutomation:
				barcode = NoBarcode
			default:
				barcode = ""
			}
		}

		key := row.Key()
		set, ok := byKey[key]
		if !ok {
			set = newOrderedSet()
			byKey[key] = set
			order = append(order, key)
		}
		if barcode != "" {
			set.add(barcode)
		}
	}

	out := make([]internal.MergedRecord, 0, len(order))
	for _, key := range order {
		rec := internal.MergedRecord{
			Key:      key,
			Barcodes: append([]string(nil), byKey[key].items...),
		}
		// Grouping keys on the raw location; the placeholder is an output
		// concern only, so a blank-location row never merges with a row
		// whose location lists the literal word.
		if mode == ModeAutomation && rec.Key.Location == "" {
			rec.Key.Location = "UNKNOWN"
		}
		out = append(out, rec)
	}
	return out
}

// ConcatHeaders is the reordered output schema of the concatenation sheet.
var ConcatHeaders = []string{"Category", "Location", "Status", "Equipment Name", "Owner", "UUID", "Barcodes"}

// RecordCells renders one merged record in the output column order with the
// barcode set pipe-joined.
func RecordCells(rec internal.MergedRecord) []string {
	return []string{
		rec.Key.Category,
		rec.Key.Location,
		rec.Key.Status,
		rec.Key.Equipment,
		rec.Key.Owner,
		rec.Key.UUID,
		util.JoinBarcodes(rec.Barcodes),
	}
}

// DictionaryCells renders one merged record in the dictionary column order,
// identity fields first with the barcode set last.
func DictionaryCells(rec internal.MergedRecord) []string {
	return []string{
		rec.Key.UUID,
		rec.Key.Equipment,
		rec.Key.Category,
		rec.Key.Status,
		rec.Key.Owner,
		rec.Key.Location,
		util.JoinBarcodes(rec.Barcodes),
	}
}

// RecordsToTable renders the header row plus every record for a bulk write.
func RecordsToTable(records []internal.MergedRecord) [][]string {
	out := make([][]string, 0, len(records)+1)
	out = append(out, append([]string(nil), ConcatHeaders...))
	for _, rec := range records {
		out = append(out, RecordCells(rec))
	}
	return out
}
