package sheetgrid

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"camops/internal/config"
)

// GoogleStore implements Store against one Google spreadsheet. Sheet ids are
// resolved lazily from titles and cached for batchUpdate calls.
type GoogleStore struct {
	service       *sheets.Service
	spreadsheetID string
	sheetIDs      map[string]int64
}

func NewGoogleStore(ctx context.Context, cfg config.Config, spreadsheetID string) (*GoogleStore, error) {
	if err := cfg.Require("GOOGLE_CLIENT_ID", cfg.GoogleClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_REFRESH_TOKEN", cfg.GoogleRefreshToken); err != nil {
		return nil, err
	}
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GoogleRefreshToken})

	svc, err := sheets.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &GoogleStore{service: svc, spreadsheetID: spreadsheetID, sheetIDs: map[string]int64{}}, nil
}

func (g *GoogleStore) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, fmt.Sprintf("'%s'", sheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return toStringGrid(resp.Values), nil
}

func (g *GoogleStore) ReadRange(ctx context.Context, sheet string, r Rect) ([][]string, error) {
	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, rangeA1(sheet, r)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %v of %q: %w", r, sheet, err)
	}
	grid := toStringGrid(resp.Values)
	// The API trims trailing empty cells; the engines expect a full rectangle.
	for len(grid) < r.Rows {
		grid = append(grid, []string{})
	}
	for i := range grid {
		for len(grid[i]) < r.Cols {
			grid[i] = append(grid[i], "")
		}
	}
	return grid, nil
}

func (g *GoogleStore) ReadBackgrounds(ctx context.Context, sheet string, r Rect) ([][]string, error) {
	resp, err := g.service.Spreadsheets.Get(g.spreadsheetID).
		Ranges(rangeA1(sheet, r)).
		IncludeGridData(true).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read backgrounds %v of %q: %w", r, sheet, err)
	}

	out := make([][]string, r.Rows)
	for i := range out {
		out[i] = make([]string, r.Cols)
		for j := range out[i] {
			out[i][j] = White
		}
	}
	if len(resp.Sheets) == 0 || len(resp.Sheets[0].Data) == 0 {
		return out, nil
	}
	for i, rowData := range resp.Sheets[0].Data[0].RowData {
		if i >= r.Rows {
			break
		}
		for j, cell := range rowData.Values {
			if j >= r.Cols {
				break
			}
			if cell.EffectiveFormat != nil && cell.EffectiveFormat.BackgroundColor != nil {
				out[i][j] = colorToHex(cell.EffectiveFormat.BackgroundColor)
			}
		}
	}
	return out, nil
}

func (g *GoogleStore) WriteRange(ctx context.Context, sheet string, row, col int, values [][]string) error {
	if len(values) == 0 {
		return nil
	}
	vr := &sheets.ValueRange{Values: toAnyGrid(values)}
	r := Rect{Row: row, Col: col, Rows: len(values), Cols: maxWidth(values)}
	_, err := g.service.Spreadsheets.Values.Update(g.spreadsheetID, rangeA1(sheet, r), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write range %v of %q: %w", r, sheet, err)
	}
	return nil
}

func (g *GoogleStore) ClearRange(ctx context.Context, sheet string, r Rect) error {
	_, err := g.service.Spreadsheets.Values.Clear(g.spreadsheetID, rangeA1(sheet, r), &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear range %v of %q: %w", r, sheet, err)
	}
	return nil
}

func (g *GoogleStore) AppendRows(ctx context.Context, sheet string, values [][]string) error {
	if len(values) == 0 {
		return nil
	}
	vr := &sheets.ValueRange{Values: toAnyGrid(values)}
	_, err := g.service.Spreadsheets.Values.Append(g.spreadsheetID, fmt.Sprintf("'%s'", sheet), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append %d rows to %q: %w", len(values), sheet, err)
	}
	return nil
}

func (g *GoogleStore) DeleteRow(ctx context.Context, sheet string, row int) error {
	sheetID, err := g.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	if _, err := g.service.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d of %q: %w", row, sheet, err)
	}
	return nil
}

func (g *GoogleStore) SetBackground(ctx context.Context, sheet string, r Rect, color string) error {
	return g.repeatCell(ctx, sheet, r, &sheets.CellFormat{BackgroundColor: hexToColor(color)},
		"userEnteredFormat.backgroundColor")
}

func (g *GoogleStore) SetFontColor(ctx context.Context, sheet string, r Rect, color string) error {
	return g.repeatCell(ctx, sheet, r, &sheets.CellFormat{TextFormat: &sheets.TextFormat{ForegroundColor: hexToColor(color)}},
		"userEnteredFormat.textFormat.foregroundColor")
}

func (g *GoogleStore) LastRow(ctx context.Context, sheet string) (int, error) {
	grid, err := g.ReadAll(ctx, sheet)
	if err != nil {
		return 0, err
	}
	return len(grid), nil
}

func (g *GoogleStore) repeatCell(ctx context.Context, sheet string, r Rect, format *sheets.CellFormat, fields string) error {
	sheetID, err := g.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(r.Row - 1),
					EndRowIndex:      int64(r.Row + r.Rows - 1),
					StartColumnIndex: int64(r.Col - 1),
					EndColumnIndex:   int64(r.Col + r.Cols - 1),
				},
				Cell:   &sheets.CellData{UserEnteredFormat: format},
				Fields: fields,
			},
		}},
	}
	if _, err := g.service.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("format %v of %q: %w", r, sheet, err)
	}
	return nil
}

func (g *GoogleStore) sheetID(ctx context.Context, sheet string) (int64, error) {
	if id, ok := g.sheetIDs[sheet]; ok {
		return id, nil
	}
	meta, err := g.service.Spreadsheets.Get(g.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("fetch spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			g.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	id, ok := g.sheetIDs[sheet]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found in spreadsheet %s", sheet, g.spreadsheetID)
	}
	return id, nil
}

func toStringGrid(values [][]any) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			if cell != nil {
				out[i][j] = fmt.Sprintf("%v", cell)
			}
		}
	}
	return out
}

func toAnyGrid(values [][]string) [][]any {
	out := make([][]any, len(values))
	for i, row := range values {
		out[i] = make([]any, len(row))
		for j, cell := range row {
			out[i][j] = cell
		}
	}
	return out
}

func maxWidth(values [][]string) int {
	width := 0
	for _, row := range values {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

func colorToHex(c *sheets.Color) string {
	scale := func(v float64) int {
		n := int(v*255 + 0.5)
		if n < 0 {
			n = 0
		}
		if n > 255 {
			n = 255
		}
		return n
	}
	return fmt.Sprintf("#%02x%02x%02x", scale(c.Red), scale(c.Green), scale(c.Blue))
}

func hexToColor(hex string) *sheets.Color {
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return &sheets.Color{Red: 1, Green: 1, Blue: 1}
	}
	return &sheets.Color{Red: float64(r) / 255, Green: float64(g) / 255, Blue: float64(b) / 255}
}
