package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"camops/internal/barcode"
	"camops/internal/config"
	"camops/internal/connectors"
	gmailconnector "camops/internal/connectors/gmail"
	imapconnector "camops/internal/connectors/imap"
	"camops/internal/dump"
	"camops/internal/mirror"
	"camops/internal/notify"
	"camops/internal/sheetgrid"
	"camops/internal/storage"
)

// dumpd schedules the nightly data dump and the weekly mirror refresh. The
// sync cursor makes repeated dump runs safe: a run cut short by its budget
// resumes where it stopped on the next tick.
func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var conn connectors.MailConnector
	switch cfg.MailProvider {
	case "imap":
		conn, err = imapconnector.NewConnector(cfg)
	default:
		conn, err = gmailconnector.NewConnector(cfg)
	}
	must(err)

	store, err := sheetgrid.NewGoogleStore(ctx, cfg, cfg.DictionarySpreadsheetID)
	must(err)

	fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
	sync := barcode.NewSyncService(store, db, cfg.DictionarySheet, cfg.TempSheet, barcode.SyncOptions{
		ChunkSize: cfg.SyncChunkSize,
		Budget:    time.Duration(cfg.SyncBudgetSec) * time.Second,
	})
	compare := barcode.NewCompareService(store, cfg.DictionarySheet, 7, cfg.ImportSheet, 7, cfg.ComparisonSheet)
	dumper := dump.NewService(db, store, fetch, sync, compare, notify.NewNotifier(cfg), cfg)

	c := cron.New()
	if _, err := c.AddFunc(cfg.DumpCronSpec, func() {
		if _, err := dumper.Run(ctx); err != nil {
			logrus.WithError(err).Error("scheduled dump failed")
		}
	}); err != nil {
		must(fmt.Errorf("register dump job: %w", err))
	}

	if cfg.MirrorSourceSpreadsheetID != "" && cfg.MirrorTargetSpreadsheetID != "" {
		source, err := sheetgrid.NewGoogleStore(ctx, cfg, cfg.MirrorSourceSpreadsheetID)
		must(err)
		target, err := sheetgrid.NewGoogleStore(ctx, cfg, cfg.MirrorTargetSpreadsheetID)
		must(err)
		mirrorer := mirror.NewService(source, target, cfg.MirrorSourceSheet, cfg.MirrorTargetSheet, nil)
		if _, err := c.AddFunc(cfg.MirrorCronSpec, func() {
			if _, err := mirrorer.Run(ctx); err != nil {
				logrus.WithError(err).Error("scheduled mirror failed")
			}
		}); err != nil {
			must(fmt.Errorf("register mirror job: %w", err))
		}
	}

	c.Start()
	logrus.WithFields(logrus.Fields{
		"dump":   cfg.DumpCronSpec,
		"mirror": cfg.MirrorCronSpec,
	}).Info("dumpd started")

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
