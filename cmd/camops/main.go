package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"camops/internal"
	"camops/internal/availability"
	"camops/internal/barcode"
	"camops/internal/config"
	"camops/internal/connectors"
	gmailconnector "camops/internal/connectors/gmail"
	imapconnector "camops/internal/connectors/imap"
	"camops/internal/dump"
	"camops/internal/export"
	"camops/internal/ingest"
	"camops/internal/mirror"
	"camops/internal/notify"
	"camops/internal/sheetgrid"
	"camops/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx := context.Background()

	cmd := os.Args[1]
	switch cmd {
	case "search:cameras":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		types := fs.String("types", "", "comma-separated camera types")
		locations := fs.String("locations", "", "cities or regions (US, CAN)")
		from := fs.String("from", "", "window start date")
		to := fs.String("to", "", "window end date")
		group := fs.String("group", "", "keslow|consigner")
		_ = fs.Parse(os.Args[2:])

		store, err := sheetgrid.NewGoogleStore(ctx, cfg, cfg.CameraSpreadsheetID)
		must(err)
		search := availability.NewSearch(store, cfg.CameraSheet, cfg.LookupSheet)
		result, err := search.Run(ctx, availability.RawCriteria{
			Types:       *types,
			Locations:   *locations,
			From:        *from,
			To:          *to,
			GroupFilter: *group,
		})
		must(err)
		if result.NoDateColumns || len(result.Rows) == 0 {
			fmt.Println(availability.NoResults)
			return
		}
		fmt.Printf("search done matches=%d\n", len(result.Rows))
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.MailProvider, "gmail|imap")
		label := fs.String("label", cfg.MailLabel, "mailbox/label")
		max := fs.Int("max", cfg.MailFetchMax, "max messages")
		_ = fs.Parse(os.Args[2:])

		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, cfg.MailSubject, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d skipped=%d\n", *provider, result.Fetched, result.Stored, result.Skipped)
	case "barcodes:concat":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "asset export file (xlsx or csv)")
		mode := fs.String("mode", string(barcode.ModeManual), "manual|automation")
		out := fs.String("out", "", "output path (.xlsx or .csv)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--input and --out are required"))
		}

		assets, err := readAssetFile(*input)
		must(err)
		records := barcode.GroupAndConcatenate(assets, barcode.Mode(*mode))
		switch strings.ToLower(filepath.Ext(*out)) {
		case ".csv":
			must(export.MergedRecordsToCSV(records, *out))
		default:
			must(export.MergedRecordsToXLSX(records, *out))
		}
		fmt.Printf("concat done assets=%d merged=%d output=%s\n", len(assets), len(records), *out)
	case "barcodes:sync":
		store, err := sheetgrid.NewGoogleStore(ctx, cfg, cfg.DictionarySpreadsheetID)
		must(err)
		svc := barcode.NewSyncService(store, db, cfg.DictionarySheet, cfg.TempSheet, barcode.SyncOptions{
			ChunkSize: cfg.SyncChunkSize,
			Budget:    time.Duration(cfg.SyncBudgetSec) * time.Second,
		})
		result, err := svc.Run(ctx)
		must(err)
		if result.Done {
			fmt.Printf("sync complete deleted=%d added=%d updated=%d\n", result.Deleted, result.Added, result.Updated)
		} else {
			fmt.Printf("sync paused phase=%s row=%d, rerun to resume\n", result.Cursor.Phase, result.Cursor.Row)
		}
	case "barcodes:compare":
		store, err := sheetgrid.NewGoogleStore(ctx, cfg, cfg.DictionarySpreadsheetID)
		must(err)
		svc := barcode.NewCompareService(store, cfg.DictionarySheet, 7, cfg.ImportSheet, 7, cfg.ComparisonSheet)
		result, err := svc.Run(ctx)
		must(err)
		fmt.Printf("compare done onlyDictionary=%d onlyImport=%d both=%d\n", len(result.OnlyInA), len(result.OnlyInB), result.IntersectionSize)
	case "mirror:run":
		source, err := sheetgrid.NewGoogleStore(ctx, cfg, cfg.MirrorSourceSpreadsheetID)
		must(err)
		target, err := sheetgrid.NewGoogleStore(ctx, cfg, cfg.MirrorTargetSpreadsheetID)
		must(err)
		svc := mirror.NewService(source, target, cfg.MirrorSourceSheet, cfg.MirrorTargetSheet, nil)
		rows, err := svc.Run(ctx)
		must(err)
		fmt.Printf("mirror done rows=%d\n", rows)
	case "dump:run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.MailProvider, "gmail|imap")
		_ = fs.Parse(os.Args[2:])

		svc, err := buildDumpService(ctx, db, cfg, *provider)
		must(err)
		result, err := svc.Run(ctx)
		must(err)
		if result.MailID == 0 {
			fmt.Println("dump done, no pending exports")
			return
		}
		fmt.Printf("dump done mail=%d assets=%d merged=%d deleted=%d added=%d updated=%d syncDone=%t\n",
			result.MailID, result.Assets, result.Merged, result.Deleted, result.Added, result.Updated, result.SyncDone)
	default:
		usage()
		os.Exit(1)
	}
}

func buildDumpService(ctx context.Context, db *storage.DB, cfg config.Config, provider string) (*dump.Service, error) {
	conn, err := makeConnector(cfg, provider)
	if err != nil {
		return nil, err
	}
	store, err := sheetgrid.NewGoogleStore(ctx, cfg, cfg.DictionarySpreadsheetID)
	if err != nil {
		return nil, err
	}
	fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
	sync := barcode.NewSyncService(store, db, cfg.DictionarySheet, cfg.TempSheet, barcode.SyncOptions{
		ChunkSize: cfg.SyncChunkSize,
		Budget:    time.Duration(cfg.SyncBudgetSec) * time.Second,
	})
	compare := barcode.NewCompareService(store, cfg.DictionarySheet, 7, cfg.ImportSheet, 7, cfg.ComparisonSheet)
	return dump.NewService(db, store, fetch, sync, compare, notify.NewNotifier(cfg), cfg), nil
}

func readAssetFile(path string) ([]internal.AssetRow, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ingest.ParseCSV(blob)
	case ".xlsx", ".xls":
		return ingest.ParseXLSX(blob)
	default:
		return nil, fmt.Errorf("unsupported asset file type: %s", path)
	}
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unknown mail provider: %s", provider)
	}
}

func usage() {
	fmt.Println(`usage: camops <command> [flags]

commands:
  search:cameras    find cameras free across a date window
  mail:fetch        pull asset export messages into the archive
  barcodes:concat   merge an asset export file into one row per identity
  barcodes:sync     reconcile the dictionary sheet with the staged table
  barcodes:compare  diff dictionary barcodes against the import snapshot
  mirror:run        refresh the reordered mirror spreadsheet
  dump:run          full pipeline: fetch, merge, stage, sync, compare`)
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
