package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/internal/ingest"
)

var (
	watchInitialScan bool
	watchDebounce    time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Process email envelopes as they are dropped into spool directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       args,
			InitialScan: watchInitialScan,
			Debounce:    watchDebounce,
		}, logger)
		if err != nil {
			return err
		}
		logger.Info("watch.started", zap.Strings("roots", args))

		for {
			select {
			case path, ok := <-events:
				if !ok {
					return nil
				}
				out, err := processFile(ctx, env.Processor, path)
				if err != nil {
					logger.Error("watch.file.failed", zap.String("file", path), zap.Error(err))
					continue
				}
				logger.Info("watch.file.processed",
					zap.String("file", path),
					zap.String("status", string(out.Status)))
			case err, ok := <-errs:
				if ok {
					logger.Warn("watch.error", zap.Error(err))
				} else {
					errs = nil
				}
			}
		}
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", true, "process envelopes already present")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "coalesce bursts of writes to one file")
	rootCmd.AddCommand(watchCmd)
}
