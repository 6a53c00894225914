package dump

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"camops/internal"
	"camops/internal/barcode"
	"camops/internal/config"
	"camops/internal/connectors"
	"camops/internal/notify"
	"camops/internal/sheetgrid"
	"camops/internal/storage"
)

type stubConnector struct {
	messages []internal.FetchedMailMessage
}

func (s *stubConnector) FetchInbox(label, subject string, max int) ([]internal.FetchedMailMessage, error) {
	return s.messages, nil
}

func exportMail(t *testing.T, csvBody string) internal.FetchedMailMessage {
	t.Helper()
	encoded := base64.StdEncoding.EncodeToString([]byte(csvBody))
	raw := "From: exports@example.com\r\n" +
		"To: ops@example.com\r\n" +
		"Subject: Assets Excel Export for Google\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=\"frontier\"\r\n" +
		"\r\n" +
		"--frontier\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Report attached.\r\n" +
		"--frontier\r\n" +
		"Content-Type: text/csv; name=\"assets.csv\"\r\n" +
		"Content-Disposition: attachment; filename=\"assets.csv\"\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		encoded + "\r\n" +
		"--frontier--\r\n"

	return internal.FetchedMailMessage{
		Provider:   "gmail",
		MessageID:  "<export-1@example.com>",
		Subject:    "Assets Excel Export for Google",
		From:       "exports@example.com",
		ReceivedAt: "2026-03-01T02:00:00Z",
		Raw:        []byte(raw),
	}
}

func TestDumpRun(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cfg := config.Config{
		MailLabel:       "INBOX",
		MailSubject:     "Assets Excel Export for Google",
		MailFetchMax:    20,
		DictionarySheet: "Barcode Dictionary",
		TempSheet:       "Temp Sheet",
		ImportSheet:     "Barcode Dictionary Import",
		ComparisonSheet: "Barcode Comparison Results",
		WriteChunkSize:  5000,
		SyncChunkSize:   200,
		SyncBudgetSec:   240,
	}

	csvBody := "Asset ID,UUID,Equipment Name,Category,Barcode,Asset Serial,Status,Owner,Location\n" +
		"1,u1,ALEXA 35,CAMERA,B1,62023,ACTIVE,KESLOW,LOS ANGELES\n" +
		"2,u1,ALEXA 35,CAMERA,B2,62024,ACTIVE,KESLOW,LOS ANGELES\n" +
		"3,u2,VENICE 2,CAMERA,B3,62025,ACTIVE,KESLOW,VANCOUVER\n"

	connector := &stubConnector{messages: []internal.FetchedMailMessage{exportMail(t, csvBody)}}
	store := sheetgrid.NewMemoryStore()
	dictHeader := []string{"UUID", "Equipment Name", "Category", "Status", "Owner", "Location", "Barcodes"}
	store.Seed(cfg.DictionarySheet, [][]string{
		dictHeader,
		{"stale", "OLD CAMERA", "CAMERA", "RETIRED", "KESLOW", "CHICAGO", "B0"},
	})

	fetch := connectors.NewFetchService(db, tmp, connector)
	sync := barcode.NewSyncService(store, db, cfg.DictionarySheet, cfg.TempSheet, barcode.SyncOptions{
		ChunkSize: cfg.SyncChunkSize,
		Budget:    time.Duration(cfg.SyncBudgetSec) * time.Second,
	})
	compare := barcode.NewCompareService(store, cfg.DictionarySheet, 7, cfg.ImportSheet, 7, cfg.ComparisonSheet)
	notifier := notify.NewNotifier(cfg)

	svc := NewService(db, store, fetch, sync, compare, notifier, cfg)
	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.Assets != 3 || result.Merged != 2 {
		t.Fatalf("assets/merged = %d/%d, want 3/2", result.Assets, result.Merged)
	}
	if !result.SyncDone {
		t.Fatalf("sync should finish within the budget")
	}
	if result.Deleted != 1 || result.Added != 2 {
		t.Fatalf("deleted/added = %d/%d, want 1/2", result.Deleted, result.Added)
	}

	values := store.Values(cfg.DictionarySheet)
	if len(values) != 3 {
		t.Fatalf("dictionary has %d rows, want 3: %v", len(values), values)
	}
	byUUID := map[string]string{}
	for _, row := range values[1:] {
		byUUID[row[0]] = row[6]
	}
	if byUUID["u1"] != "B1|B2" {
		t.Fatalf("u1 barcodes = %q, want B1|B2", byUUID["u1"])
	}
	if byUUID["u2"] != "B3" {
		t.Fatalf("u2 barcodes = %q, want B3", byUUID["u2"])
	}
	if _, ok := byUUID["stale"]; ok {
		t.Fatalf("stale row should be deleted")
	}

	mail, err := db.GetMailByProviderMessageID("gmail", "<export-1@example.com>")
	if err != nil {
		t.Fatal(err)
	}
	if mail == nil || mail.Status != "processed" {
		t.Fatalf("mail status = %+v, want processed", mail)
	}
}
