package dump

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"camops/internal"
	"camops/internal/barcode"
	"camops/internal/config"
	"camops/internal/connectors"
	"camops/internal/ingest"
	"camops/internal/notify"
	"camops/internal/sheetgrid"
	"camops/internal/storage"
)

// Service runs the nightly data dump: pull the newest asset export from the
// mailbox, merge duplicate assets into one row per identity, stage the
// merged table and reconcile the dictionary sheet against it.
type Service struct {
	db       *storage.DB
	store    sheetgrid.Store
	fetch    *connectors.FetchService
	sync     *barcode.SyncService
	compare  *barcode.CompareService
	notifier *notify.Notifier
	cfg      config.Config
}

type Result struct {
	MailID   int
	Assets   int
	Merged   int
	SyncDone bool
	Deleted  int
	Added    int
	Updated  int
}

func NewService(db *storage.DB, store sheetgrid.Store, fetch *connectors.FetchService, sync *barcode.SyncService, compare *barcode.CompareService, notifier *notify.Notifier, cfg config.Config) *Service {
	return &Service{
		db:       db,
		store:    store,
		fetch:    fetch,
		sync:     sync,
		compare:  compare,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *Service) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	fetched, err := s.fetch.FetchAndStore(s.cfg.MailLabel, s.cfg.MailSubject, s.cfg.MailFetchMax)
	if err != nil {
		return Result{}, fmt.Errorf("fetch exports: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"component": "dump",
		"fetched":   fetched.Fetched,
		"stored":    fetched.Stored,
		"skipped":   fetched.Skipped,
	}).Info("mailbox scan complete")

	pending, err := s.db.ListMailsByStatus("fetched", s.cfg.MailFetchMax)
	if err != nil {
		return Result{}, err
	}
	if len(pending) == 0 {
		return Result{}, nil
	}

	// Exports are cumulative snapshots, only the newest one matters. Older
	// pending copies are superseded.
	mail := pending[len(pending)-1]
	for _, stale := range pending[:len(pending)-1] {
		_ = s.db.UpdateMailStatus(stale.ID, "superseded")
	}

	result, err := s.processMail(ctx, mail)
	if err != nil {
		_ = s.db.UpdateMailStatus(mail.ID, "failed")
		if s.notifier.Enabled() {
			_ = s.notifier.Sendf(ctx, "Data dump failed for %s: %v", mail.Subject, err)
		}
		return result, err
	}

	_ = s.db.InsertRun(traceID(), "dump", mail.ID, map[string]int{
		"assets":  result.Assets,
		"merged":  result.Merged,
		"deleted": result.Deleted,
		"added":   result.Added,
		"updated": result.Updated,
	})

	if s.notifier.Enabled() {
		state := "complete"
		if !result.SyncDone {
			state = "partial, resuming on next run"
		}
		_ = s.notifier.Sendf(ctx,
			"Data dump %s in %s: %d assets merged to %d rows, %d deleted / %d added / %d updated",
			state, time.Since(start).Round(time.Second),
			result.Assets, result.Merged, result.Deleted, result.Added, result.Updated)
	}

	return result, nil
}

func (s *Service) processMail(ctx context.Context, mail internal.MailRow) (Result, error) {
	raw, err := os.ReadFile(mail.RawRef)
	if err != nil {
		return Result{}, err
	}

	assets, _, _, err := ingest.ExtractAssetsFromMailRaw(raw)
	if err != nil {
		return Result{}, fmt.Errorf("extract assets: %w", err)
	}
	if len(assets) == 0 {
		_ = s.db.UpdateMailStatus(mail.ID, "skipped")
		return Result{MailID: mail.ID}, nil
	}

	records := barcode.GroupAndConcatenate(assets, barcode.ModeAutomation)
	table := dictionaryTable(records)

	if err := s.rewriteSheet(ctx, s.cfg.TempSheet, table); err != nil {
		return Result{}, fmt.Errorf("stage merged table: %w", err)
	}
	if err := s.rewriteSheet(ctx, s.cfg.ImportSheet, table); err != nil {
		return Result{}, fmt.Errorf("rewrite import snapshot: %w", err)
	}

	result := Result{MailID: mail.ID, Assets: len(assets), Merged: len(records)}

	syncRes, err := s.sync.Run(ctx)
	if err != nil {
		return result, fmt.Errorf("dictionary sync: %w", err)
	}
	result.SyncDone = syncRes.Done
	result.Deleted = syncRes.Deleted
	result.Added = syncRes.Added
	result.Updated = syncRes.Updated

	if syncRes.Done {
		if _, err := s.compare.Run(ctx); err != nil {
			return result, fmt.Errorf("barcode comparison: %w", err)
		}
		if err := s.db.UpdateMailStatus(mail.ID, "processed"); err != nil {
			return result, err
		}
	}

	return result, nil
}

// rewriteSheet clears the previous contents and writes the table in chunks
// so one oversized payload cannot blow the per-request write limit.
func (s *Service) rewriteSheet(ctx context.Context, sheet string, table [][]string) error {
	last, err := s.store.LastRow(ctx, sheet)
	if err != nil {
		return err
	}
	width := 0
	for _, row := range table {
		if len(row) > width {
			width = len(row)
		}
	}
	if last > 0 {
		if err := s.store.ClearRange(ctx, sheet, sheetgrid.Rect{Row: 1, Col: 1, Rows: last, Cols: width}); err != nil {
			return err
		}
	}

	chunk := s.cfg.WriteChunkSize
	if chunk <= 0 {
		chunk = len(table)
	}
	for offset := 0; offset < len(table); offset += chunk {
		end := offset + chunk
		if end > len(table) {
			end = len(table)
		}
		if err := s.store.WriteRange(ctx, sheet, offset+1, 1, table[offset:end]); err != nil {
			return err
		}
	}
	return nil
}

// dictionaryTable renders merged records in the dictionary column order,
// identity first with the barcode set last.
func dictionaryTable(records []internal.MergedRecord) [][]string {
	out := make([][]string, 0, len(records)+1)
	out = append(out, []string{"UUID", "Equipment Name", "Category", "Status", "Owner", "Location", "Barcodes"})
	for _, rec := range records {
		out = append(out, barcode.DictionaryCells(rec))
	}
	return out
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("t-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
