package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	"github.com/xuri/excelize/v2"

	"camops/internal"
)

// columnMap holds the resolved index of every asset export column, -1 when
// the header is absent.
type columnMap struct {
	assetID   int
	uuid      int
	equipment int
	category  int
	barcode   int
	serial    int
	status    int
	owner     int
	location  int
}

var headerAliases = map[string][]string{
	"assetID":   {"asset id", "asset #", "asset"},
	"uuid":      {"uuid", "unique id"},
	"equipment": {"equipment name", "equipment", "item name"},
	"category":  {"category"},
	"barcode":   {"barcode", "bc#", "bc #"},
	"serial":    {"asset serial", "serial number", "serial", "s/n"},
	"status":    {"status"},
	"owner":     {"owner"},
	"location":  {"location", "branch"},
}

// ExtractAssetsFromMailRaw parses an archived export message into asset rows.
// XLSX and CSV attachments are the expected payload; an HTML table body is
// the fallback when the exporter inlines the report.
func ExtractAssetsFromMailRaw(raw []byte) ([]internal.AssetRow, string, []string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, "", nil, err
	}

	var rows []internal.AssetRow
	attachmentNames := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		attachmentNames = append(attachmentNames, filename)
		lower := strings.ToLower(filename)

		switch {
		case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
			extra, err := ParseXLSX(att.Content)
			if err == nil {
				rows = append(rows, extra...)
			}
		case strings.HasSuffix(lower, ".csv"):
			extra, err := ParseCSV(att.Content)
			if err == nil {
				rows = append(rows, extra...)
			}
		}
	}

	if len(rows) == 0 && env.HTML != "" {
		rows = parseHTMLTable(env.HTML)
	}

	return rows, env.GetHeader("Subject"), attachmentNames, nil
}

func ParseXLSX(content []byte) ([]internal.AssetRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []internal.AssetRow
	for _, sheet := range f.GetSheetList() {
		grid, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		out = append(out, tableToAssets(grid)...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no asset rows found in workbook")
	}
	return out, nil
}

func ParseCSV(content []byte) ([]internal.AssetRow, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	out := tableToAssets(records)
	if len(out) == 0 {
		return nil, fmt.Errorf("no asset rows found in csv")
	}
	return out, nil
}

func parseHTMLTable(html string) []internal.AssetRow {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var out []internal.AssetRow
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var grid [][]string
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			grid = append(grid, cells)
		})
		out = append(out, tableToAssets(grid)...)
	})
	return out
}

// tableToAssets locates the header row within the first few rows and maps
// every following row through it. Tables without a recognizable header
// produce nothing.
func tableToAssets(grid [][]string) []internal.AssetRow {
	headerIdx := -1
	var cols columnMap
	for i := 0; i < len(grid) && i < 5; i++ {
		if m, ok := resolveColumns(grid[i]); ok {
			headerIdx = i
			cols = m
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	var out []internal.AssetRow
	for _, row := range grid[headerIdx+1:] {
		asset := internal.AssetRow{
			AssetID:     cellAt(row, cols.assetID),
			UUID:        cellAt(row, cols.uuid),
			Equipment:   cellAt(row, cols.equipment),
			Category:    cellAt(row, cols.category),
			Barcode:     cellAt(row, cols.barcode),
			AssetSerial: cellAt(row, cols.serial),
			Status:      cellAt(row, cols.status),
			Owner:       cellAt(row, cols.owner),
			Location:    cellAt(row, cols.location),
		}
		if asset.UUID == "" && asset.Equipment == "" && asset.Barcode == "" {
			continue
		}
		out = append(out, asset)
	}
	return out
}

func resolveColumns(header []string) (columnMap, bool) {
	cols := columnMap{
		assetID: -1, uuid: -1, equipment: -1, category: -1, barcode: -1,
		serial: -1, status: -1, owner: -1, location: -1,
	}
	found := 0
	for idx, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "" {
			continue
		}
		switch {
		case cols.uuid < 0 && matchesAlias(name, headerAliases["uuid"]):
			cols.uuid = idx
			found++
		case cols.equipment < 0 && matchesAlias(name, headerAliases["equipment"]):
			cols.equipment = idx
			found++
		case cols.category < 0 && matchesAlias(name, headerAliases["category"]):
			cols.category = idx
			found++
		case cols.barcode < 0 && matchesAlias(name, headerAliases["barcode"]):
			cols.barcode = idx
			found++
		case cols.serial < 0 && matchesAlias(name, headerAliases["serial"]):
			cols.serial = idx
			found++
		case cols.status < 0 && matchesAlias(name, headerAliases["status"]):
			cols.status = idx
			found++
		case cols.owner < 0 && matchesAlias(name, headerAliases["owner"]):
			cols.owner = idx
			found++
		case cols.location < 0 && matchesAlias(name, headerAliases["location"]):
			cols.location = idx
			found++
		case cols.assetID < 0 && matchesAlias(name, headerAliases["assetID"]):
			cols.assetID = idx
			found++
		}
	}

	// UUID and equipment carry the identity, the rest is optional.
	return cols, cols.uuid >= 0 && cols.equipment >= 0 && found >= 4
}

func matchesAlias(name string, aliases []string) bool {
	for _, alias := range aliases {
		if name == alias || strings.HasPrefix(name, alias) {
			return true
		}
	}
	return false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
