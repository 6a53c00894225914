package sheetgrid

import (
	"context"
	"fmt"
	"sync"
)

type memSheet struct {
	values      [][]string
	backgrounds [][]string
	fontColors  [][]string
}

// MemoryStore is an in-memory Store used by tests and dry runs. Cells default
// to empty values on a white background.
type MemoryStore struct {
	mu     sync.Mutex
	sheets map[string]*memSheet
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sheets: map[string]*memSheet{}}
}

// Seed replaces the sheet's contents with values, resetting all formatting.
func (m *MemoryStore) Seed(sheet string, values [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &memSheet{}
	for _, row := range values {
		s.values = append(s.values, append([]string(nil), row...))
	}
	m.sheets[sheet] = s
	s.syncFormat()
}

// SeedBackground paints one cell; row and col are 1-based.
func (m *MemoryStore) SeedBackground(sheet string, row, col int, color string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sheet(sheet)
	s.grow(row, col)
	s.backgrounds[row-1][col-1] = color
}

// Values returns a copy of the sheet's value grid for assertions.
func (m *MemoryStore) Values(sheet string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sheet(sheet)
	out := make([][]string, len(s.values))
	for i, row := range s.values {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func (m *MemoryStore) BackgroundAt(sheet string, row, col int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sheet(sheet)
	if row > len(s.backgrounds) || col > len(s.backgrounds[row-1]) {
		return White
	}
	return s.backgrounds[row-1][col-1]
}

func (m *MemoryStore) FontColorAt(sheet string, row, col int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sheet(sheet)
	if row > len(s.fontColors) || col > len(s.fontColors[row-1]) {
		return ""
	}
	return s.fontColors[row-1][col-1]
}

func (m *MemoryStore) ReadAll(_ context.Context, sheet string) ([][]string, error) {
	return m.Values(sheet), nil
}

func (m *MemoryStore) ReadRange(_ context.Context, sheet string, r Rect) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sheet(sheet)
	out := make([][]string, r.Rows)
	for i := 0; i < r.Rows; i++ {
		out[i] = make([]string, r.Cols)
		for j := 0; j < r.Cols; j++ {
			out[i][j] = s.valueAt(r.Row+i, r.Col+j)
		}
	}
	return out, nil
}

func (m *MemoryStore) ReadBackgrounds(_ context.Context, sheet string, r Rect) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sheet(sheet)
	out := make([][]string, r.Rows)
	for i := 0; i < r.Rows; i++ {
		out[i] = make([]string, r.Cols)
		for j := 0; j < r.Cols; j++ {
			out[i][j] = s.backgroundAt(r.Row+i, r.Col+j)
		}
	}
	return out, nil
}

func (m *MemoryStore) WriteRange(_ context.Context, sheet string, row, col int, values [][]string) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("write out of bounds: row=%d col=%d", row, col)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sheet(sheet)
	for i, rowValues := range values {
		s.grow(row+i, col+len(rowValues)-1)
		copy(s.values[row+i-1][col-1:], rowValues)
	}
	return nil
}

func (m *MemoryStore) ClearRange(_ context.Context, sheet string, r Rect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sheet(sheet)
	for i := 0; i < r.Rows; i++ {
		for j := 0; j < r.Cols; j++ {
			if r.Row+i <= len(s.values) && r.Col+j <= len(s.values[r.Row+i-1]) {
				s.values[r.Row+i-1][r.Col+j-1] = ""
			}
		}
	}
	return nil
}

func (m *MemoryStore) AppendRows(_ context.Context, sheet string, values [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sheet(sheet)
	for _, row := range values {
		s.values = append(s.values, append([]string(nil), row...))
	}
	s.syncFormat()
	return nil
}

func (m *MemoryStore) DeleteRow(_ context.Context, sheet string, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sheet(sheet)
	if row < 1 || row > len(s.values) {
		return fmt.Errorf("delete out of bounds: row=%d", row)
	}
	s.values = append(s.values[:row-1], s.values[row:]...)
	s.backgrounds = append(s.backgrounds[:row-1], s.backgrounds[row:]...)
	s.fontColors = append(s.fontColors[:row-1], s.fontColors[row:]...)
	return nil
}

func (m *MemoryStore) SetBackground(_ context.Context, sheet string, r Rect, color string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sheet(sheet)
	s.grow(r.Row+r.Rows-1, r.Col+r.Cols-1)
	for i := 0; i < r.Rows; i++ {
		for j := 0; j < r.Cols; j++ {
			s.backgrounds[r.Row+i-1][r.Col+j-1] = color
		}
	}
	return nil
}

func (m *MemoryStore) SetFontColor(_ context.Context, sheet string, r Rect, color string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sheet(sheet)
	s.grow(r.Row+r.Rows-1, r.Col+r.Cols-1)
	for i := 0; i < r.Rows; i++ {
		for j := 0; j < r.Cols; j++ {
			s.fontColors[r.Row+i-1][r.Col+j-1] = color
		}
	}
	return nil
}

func (m *MemoryStore) LastRow(_ context.Context, sheet string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sheet(sheet).values), nil
}

func (m *MemoryStore) sheet(name string) *memSheet {
	s, ok := m.sheets[name]
	if !ok {
		s = &memSheet{}
		m.sheets[name] = s
	}
	return s
}

func (s *memSheet) valueAt(row, col int) string {
	if row > len(s.values) || col > len(s.values[row-1]) {
		return ""
	}
	return s.values[row-1][col-1]
}

func (s *memSheet) backgroundAt(row, col int) string {
	if row > len(s.backgrounds) || col > len(s.backgrounds[row-1]) {
		return White
	}
	return s.backgrounds[row-1][col-1]
}

func (s *memSheet) grow(rows, cols int) {
	for len(s.values) < rows {
		s.values = append(s.values, []string{})
	}
	for i := range s.values {
		for len(s.values[i]) < cols {
			s.values[i] = append(s.values[i], "")
		}
	}
	s.syncFormat()
}

func (s *memSheet) syncFormat() {
	for len(s.backgrounds) < len(s.values) {
		s.backgrounds = append(s.backgrounds, []string{})
	}
	for len(s.fontColors) < len(s.values) {
		s.fontColors = append(s.fontColors, []string{})
	}
	s.backgrounds = s.backgrounds[:len(s.values)]
	s.fontColors = s.fontColors[:len(s.values)]
	for i := range s.values {
		for len(s.backgrounds[i]) < len(s.values[i]) {
			s.backgrounds[i] = append(s.backgrounds[i], White)
		}
		for len(s.fontColors[i]) < len(s.values[i]) {
			s.fontColors[i] = append(s.fontColors[i], "")
		}
	}
}
