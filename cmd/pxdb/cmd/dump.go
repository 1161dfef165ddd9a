/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/ssargent/pxdb/pkg/paradox"
)

type dumpOptions struct {
	format    string
	since     int64 // negative: full load
	limit     int
	timeout   time.Duration
	transcode bool
}

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the records of a table",
	Long: `Print the records of a Paradox table.

With --since only records whose autoincrement key is at least the given key
are read, scanning from the end of the file.

Examples:
  pxdb dump ORDERS.DB
  pxdb dump ORDERS.DB --since=1200 --format=json
  pxdb dump HUGE.DB --limit=20 --timeout=5s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := dumpOptions{since: -1}
		opts.format, _ = cmd.Flags().GetString("format")
		opts.limit, _ = cmd.Flags().GetInt("limit")
		opts.timeout, _ = cmd.Flags().GetDuration("timeout")
		opts.transcode, _ = cmd.Flags().GetBool("transcode")
		if cmd.Flags().Changed("since") {
			since, _ := cmd.Flags().GetUint32("since")
			opts.since = int64(since)
		}
		return runDump(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringP("format", "o", formatTable, "Output format (table or json)")
	dumpCmd.Flags().Uint32("since", 0, "Only records with an autoincrement key of at least this value")
	dumpCmd.Flags().IntP("limit", "n", 0, "Print at most this many records (0 for all)")
	dumpCmd.Flags().Duration("timeout", 0, "Abort the load after this long (0 for no limit)")
	dumpCmd.Flags().Bool("transcode", false, "Convert text from the table's codepage to UTF-8")
}

func runDump(ctx context.Context, w io.Writer, path string, opts dumpOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	if opts.limit < 0 {
		return errors.Newf("invalid limit %d", opts.limit)
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	popts := []paradox.Option{paradox.WithLogger(logger)}
	if opts.since >= 0 {
		popts = append(popts, paradox.WithResumeFrom(uint32(opts.since)))
	}
	if opts.transcode {
		popts = append(popts, paradox.WithTranscoding())
	}

	start := time.Now()
	db, err := paradox.Open(ctx, path, popts...)
	if err != nil {
		return err
	}
	logger.Debug().Str("file", path).Int("records", len(db.Records)).Dur("took", time.Since(start)).Msg("loaded")

	records := db.Records
	if opts.limit > 0 && len(records) > opts.limit {
		records = records[:opts.limit]
	}
	if opts.format == formatJSON {
		return writeJSON(w, records)
	}
	renderRecords(w, db.Fields, records)
	return nil
}
