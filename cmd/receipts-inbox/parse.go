package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/joseph-ayodele/receipts-inbox/internal/processor"
	"github.com/joseph-ayodele/receipts-inbox/internal/record"
)

var (
	parseFormat     string
	parseSave       bool
	parseProvenance bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Extract one email (JSON envelope) and print the receipt record",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		body, err := readInput(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}
		envelope, err := processor.Decode(body)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), parseSave)
		if err != nil {
			return err
		}
		defer env.Close()

		out, err := env.Processor.Process(cmd.Context(), envelope)
		if err != nil {
			return err
		}

		var data []byte
		switch parseFormat {
		case "json":
			if parseProvenance {
				data, err = json.MarshalIndent(map[string]any{
					"record":     out.Record,
					"provenance": out.Provenance,
					"origin":     out.Origin,
				}, "", "  ")
			} else {
				data, err = json.MarshalIndent(out.Record, "", "  ")
			}
		case "proto":
			st, serr := record.ToStruct(out.Record)
			if serr != nil {
				return serr
			}
			data, err = protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
		default:
			return eris.Errorf("unknown format %q (json|proto)", parseFormat)
		}
		if err != nil {
			return eris.Wrap(err, "encode record")
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(data)); err != nil {
			return err
		}
		if out.Status != "" {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "store: %s\n", out.Status)
		}
		return nil
	},
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return b, eris.Wrap(err, "read stdin")
	}
	b, err := os.ReadFile(path)
	return b, eris.Wrapf(err, "read %s", path)
}

func init() {
	parseCmd.Flags().StringVar(&parseFormat, "format", "json", "output format: json | proto")
	parseCmd.Flags().BoolVar(&parseSave, "save", false, "also store the record in the configured store")
	parseCmd.Flags().BoolVar(&parseProvenance, "provenance", false, "include per-field sources (json only)")
	rootCmd.AddCommand(parseCmd)
}
