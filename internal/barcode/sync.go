package barcode

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"camops/internal"
	"camops/internal/sheetgrid"
	"camops/internal/util"
)

// CursorStore persists the sync resumption state between invocations.
type CursorStore interface {
	GetSyncCursor() (*internal.SyncCursor, error)
	SetSyncCursor(internal.SyncCursor) error
	ClearSyncCursor() error
}

type SyncOptions struct {
	// ChunkSize caps the rows scanned in one invocation. Exhausting the chunk
	// yields on the cursor the same way budget expiry does.
	ChunkSize int
	Budget    time.Duration
}

// scanBudget bounds one invocation by wall clock and by a row chunk; tripping
// either limit makes the running phase yield.
type scanBudget struct {
	deadline time.Time
	now      func() time.Time
	rows     int
}

func (b *scanBudget) spent() bool {
	return b.rows <= 0 || b.now().After(b.deadline)
}

func (b *scanBudget) consume() { b.rows-- }

// SyncService brings the dictionary sheet into agreement with the temp-sheet
// snapshot: rows missing from the snapshot are deleted (bottom-up), new rows
// are batch-appended, changed rows are overwritten whole. Work is sliced
// against a wall-clock budget and a per-run row chunk; the service checkpoints
// {phase, row} and yields instead of being cut off by the caller's execution
// limit.
type SyncService struct {
	store   sheetgrid.Store
	cursors CursorStore
	current string
	desired string
	opts    SyncOptions

	now func() time.Time
}

type SyncResult struct {
	Done    bool
	Deleted int
	Added   int
	Updated int
	Cursor  internal.SyncCursor
}

func NewSyncService(store sheetgrid.Store, cursors CursorStore, currentSheet, desiredSheet string, opts SyncOptions) *SyncService {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 200
	}
	if opts.Budget <= 0 {
		opts.Budget = 4 * time.Minute
	}
	return &SyncService{
		store:   store,
		cursors: cursors,
		current: currentSheet,
		desired: desiredSheet,
		opts:    opts,
		now:     time.Now,
	}
}

// WithClock replaces the wall clock, used by tests to force budget expiry.
func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	s.now = now
	return s
}

func (s *SyncService) Run(ctx context.Context) (SyncResult, error) {
	budget := &scanBudget{
		deadline: s.now().Add(s.opts.Budget),
		now:      s.now,
		rows:     s.opts.ChunkSize,
	}

	cursor, err := s.loadCursor()
	if err != nil {
		return SyncResult{}, err
	}

	desired, err := s.store.ReadAll(ctx, s.desired)
	if err != nil {
		return SyncResult{}, fmt.Errorf("read desired table: %w", err)
	}
	desiredKeys := map[internal.IdentityKey]struct{}{}
	for i := 1; i < len(desired); i++ {
		desiredKeys[RowKey(desired[i])] = struct{}{}
	}

	result := SyncResult{Cursor: cursor}

	if cursor.Phase == internal.PhaseDelete {
		cursor, err = s.runDeletePhase(ctx, cursor, desiredKeys, budget, &result)
		if err != nil {
			return result, err
		}
		if cursor.Phase == internal.PhaseDelete {
			return s.yield(cursor, result)
		}
	}

	if cursor.Phase == internal.PhaseAdd {
		cursor, err = s.runAddPhase(ctx, cursor, desired, budget, &result)
		if err != nil {
			return result, err
		}
		if cursor.Phase == internal.PhaseAdd {
			return s.yield(cursor, result)
		}
	}

	cursor, err = s.runUpdatePhase(ctx, cursor, desired, budget, &result)
	if err != nil {
		return result, err
	}
	if cursor.Phase == internal.PhaseUpdate {
		return s.yield(cursor, result)
	}

	if err := s.cursors.ClearSyncCursor(); err != nil {
		return result, fmt.Errorf("clear sync cursor: %w", err)
	}
	result.Done = true
	result.Cursor = internal.SyncCursor{}
	logrus.WithFields(logrus.Fields{
		"component": "barcode-sync",
		"deleted":   result.Deleted,
		"added":     result.Added,
		"updated":   result.Updated,
	}).Info("dictionary sync complete")
	return result, nil
}

// runDeletePhase scans dictionary rows absent from the snapshot, marks them
// and deletes them in descending row order so earlier deletions cannot shift
// an index still queued for deletion. On a spent budget the queued deletions
// are applied first and the persisted row is shifted down by the rows removed
// above it, keeping the cursor aligned with the mutated sheet.
func (s *SyncService) runDeletePhase(ctx context.Context, cursor internal.SyncCursor, desiredKeys map[internal.IdentityKey]struct{}, budget *scanBudget, result *SyncResult) (internal.SyncCursor, error) {
	current, err := s.store.ReadAll(ctx, s.current)
	if err != nil {
		return cursor, fmt.Errorf("read current table: %w", err)
	}
	width := tableWidth(current)

	row := cursor.Row
	if row < 1 {
		row = 1
	}

	var toDelete []int
	expired := false
	for ; row < len(current); row++ {
		if budget.spent() {
			expired = true
			break
		}
		budget.consume()
		key := RowKey(current[row])
		if _, ok := desiredKeys[key]; !ok {
			sheetRow := row + 1
			if err := s.store.SetBackground(ctx, s.current, sheetgrid.Rect{Row: sheetRow, Col: 1, Rows: 1, Cols: width}, sheetgrid.Red); err != nil {
				return cursor, fmt.Errorf("mark row %d for deletion: %w", sheetRow, err)
			}
			toDelete = append(toDelete, sheetRow)
		}
	}

	// Bottom-up, a correctness requirement: deleting top-down would shift
	// every remaining queued index by one.
	sort.Sort(sort.Reverse(sort.IntSlice(toDelete)))
	for _, sheetRow := range toDelete {
		if err := s.store.DeleteRow(ctx, s.current, sheetRow); err != nil {
			return cursor, fmt.Errorf("delete row %d: %w", sheetRow, err)
		}
		result.Deleted++
	}

	if expired {
		return internal.SyncCursor{Phase: internal.PhaseDelete, Row: row - len(toDelete)}, nil
	}
	return internal.SyncCursor{Phase: internal.PhaseAdd, Row: 1}, nil
}

func (s *SyncService) runAddPhase(ctx context.Context, cursor internal.SyncCursor, desired [][]string, budget *scanBudget, result *SyncResult) (internal.SyncCursor, error) {
	current, err := s.store.ReadAll(ctx, s.current)
	if err != nil {
		return cursor, fmt.Errorf("read current table: %w", err)
	}
	currentKeys := map[internal.IdentityKey]struct{}{}
	for i := 1; i < len(current); i++ {
		currentKeys[RowKey(current[i])] = struct{}{}
	}
	width := tableWidth(current)
	if w := tableWidth(desired); w > width {
		width = w
	}

	row := cursor.Row
	if row < 1 {
		row = 1
	}

	var toAdd [][]string
	expired := false
	for ; row < len(desired); row++ {
		if budget.spent() {
			expired = true
			break
		}
		budget.consume()
		key := RowKey(desired[row])
		if _, ok := currentKeys[key]; !ok {
			toAdd = append(toAdd, util.PadRow(desired[row], width))
		}
	}

	if len(toAdd) > 0 {
		firstNew, err := s.store.LastRow(ctx, s.current)
		if err != nil {
			return cursor, fmt.Errorf("find append position: %w", err)
		}
		if err := s.store.AppendRows(ctx, s.current, toAdd); err != nil {
			return cursor, fmt.Errorf("append %d rows: %w", len(toAdd), err)
		}
		if err := s.store.SetBackground(ctx, s.current, sheetgrid.Rect{Row: firstNew + 1, Col: 1, Rows: len(toAdd), Cols: width}, sheetgrid.Green); err != nil {
			return cursor, fmt.Errorf("mark appended rows: %w", err)
		}
		result.Added += len(toAdd)
	}

	if expired {
		return internal.SyncCursor{Phase: internal.PhaseAdd, Row: row}, nil
	}
	return internal.SyncCursor{Phase: internal.PhaseUpdate, Row: 1}, nil
}

func (s *SyncService) runUpdatePhase(ctx context.Context, cursor internal.SyncCursor, desired [][]string, budget *scanBudget, result *SyncResult) (internal.SyncCursor, error) {
	current, err := s.store.ReadAll(ctx, s.current)
	if err != nil {
		return cursor, fmt.Errorf("read current table: %w", err)
	}
	currentByKey := map[internal.IdentityKey]int{}
	for i := 1; i < len(current); i++ {
		currentByKey[RowKey(current[i])] = i
	}
	width := tableWidth(current)
	if w := tableWidth(desired); w > width {
		width = w
	}

	row := cursor.Row
	if row < 1 {
		row = 1
	}

	expired := false
	for ; row < len(desired); row++ {
		if budget.spent() {
			expired = true
			break
		}
		budget.consume()
		key := RowKey(desired[row])
		idx, ok := currentByKey[key]
		if !ok {
			continue
		}
		currentRow := util.PadRow(current[idx], width)
		desiredRow := util.PadRow(desired[row], width)
		if rowsEqual(currentRow, desiredRow) {
			continue
		}

		// Any differing cell triggers a full-row overwrite.
		sheetRow := idx + 1
		if err := s.store.WriteRange(ctx, s.current, sheetRow, 1, [][]string{desiredRow}); err != nil {
			return cursor, fmt.Errorf("overwrite row %d: %w", sheetRow, err)
		}
		marker := sheetgrid.Rect{Row: sheetRow, Col: 1, Rows: 1, Cols: width}
		if err := s.store.SetFontColor(ctx, s.current, marker, sheetgrid.Green); err != nil {
			return cursor, fmt.Errorf("mark updated row %d: %w", sheetRow, err)
		}
		result.Updated++
	}

	if expired {
		return internal.SyncCursor{Phase: internal.PhaseUpdate, Row: row}, nil
	}
	return internal.SyncCursor{Phase: "", Row: 0}, nil
}

func (s *SyncService) loadCursor() (internal.SyncCursor, error) {
	cursor, err := s.cursors.GetSyncCursor()
	if err != nil {
		return internal.SyncCursor{}, fmt.Errorf("load sync cursor: %w", err)
	}
	if cursor == nil || cursor.Phase == "" {
		return internal.SyncCursor{Phase: internal.PhaseDelete, Row: 1}, nil
	}
	return *cursor, nil
}

func (s *SyncService) yield(cursor internal.SyncCursor, result SyncResult) (SyncResult, error) {
	if err := s.cursors.SetSyncCursor(cursor); err != nil {
		return result, fmt.Errorf("persist sync cursor: %w", err)
	}
	result.Done = false
	result.Cursor = cursor
	logrus.WithFields(logrus.Fields{
		"component": "barcode-sync",
		"phase":     cursor.Phase,
		"row":       cursor.Row,
	}).Info("budget reached, yielding")
	return result, nil
}
