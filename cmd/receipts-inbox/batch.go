package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
	"github.com/joseph-ayodele/receipts-inbox/internal/export"
	"github.com/joseph-ayodele/receipts-inbox/internal/ingest"
	"github.com/joseph-ayodele/receipts-inbox/internal/processor"
)

var (
	batchXLSX string
	batchNoDB bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract every *.json email envelope under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		files, err := ingest.Discover(args[0], nil, true)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			logger.Warn("batch.empty", zap.String("dir", args[0]))
			return nil
		}

		env, err := initEnv(ctx, !batchNoDB)
		if err != nil {
			return err
		}
		defer env.Close()

		recs, err := processFiles(ctx, env.Processor, files, cfg.Pipeline.Concurrency)
		if err != nil {
			return err
		}

		if batchXLSX != "" {
			data, err := export.NewService(logger).ReceiptsXLSX(recs)
			if err != nil {
				return err
			}
			if err := os.WriteFile(batchXLSX, data, 0o644); err != nil {
				return eris.Wrapf(err, "write %s", batchXLSX)
			}
			logger.Info("batch.export.written", zap.String("path", batchXLSX))
		}
		return nil
	},
}

// processFiles runs files through p with bounded concurrency. Per-file
// failures are logged and skipped; the returned records keep file order.
func processFiles(ctx context.Context, p *processor.Processor, files []string, concurrency int) ([]*entity.ReceiptRecord, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	start := time.Now()
	results := make([]*entity.ReceiptRecord, len(files))
	var saved, duplicates, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			out, err := processFile(gctx, p, path)
			if err != nil {
				failed.Add(1)
				logger.Error("batch.file.failed", zap.String("file", path), zap.Error(err))
				return nil
			}
			switch out.Status {
			case constants.SaveStatusSaved:
				saved.Add(1)
			case constants.SaveStatusDuplicate:
				duplicates.Add(1)
			}
			results[i] = out.Record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recs := make([]*entity.ReceiptRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			recs = append(recs, r)
		}
	}
	logger.Info("batch.done",
		zap.Int("files", len(files)),
		zap.Int("processed", len(recs)),
		zap.Int64("saved", saved.Load()),
		zap.Int64("duplicates", duplicates.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Duration("elapsed", time.Since(start)))
	return recs, ctx.Err()
}

func processFile(ctx context.Context, p *processor.Processor, path string) (*processor.Outcome, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	envelope, err := processor.Decode(body)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, envelope)
}

func init() {
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "write the extracted receipts to this XLSX file")
	batchCmd.Flags().BoolVar(&batchNoDB, "no-store", false, "skip the configured store")
	rootCmd.AddCommand(batchCmd)
}
