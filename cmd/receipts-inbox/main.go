package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/receipts-inbox/internal/common"
)

var (
	cfgFile string
	cfg     *common.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "receipts-inbox",
	Short: "Extract structured receipts from inbound emails",
	Long:  "Normalizes receipt emails, extracts vendor, total, date, payment and category with deterministic rules and an optional language model, and stores the records.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		l, err := common.InitLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for rejected input and 1 for any other failure.
func exitCode(err error) int {
	switch status.Code(common.ToStatus(err)) {
	case codes.OK:
		return 0
	case codes.InvalidArgument:
		return 2
	default:
		return 1
	}
}
