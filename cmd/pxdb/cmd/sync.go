/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/ssargent/pxdb/pkg/store"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync <file>...",
	Short: "Mirror tables into the local database",
	Long: `Load one or more tables into the mirror database. The first sync of a
table reads it in full. Later syncs of tables keyed by an autoincrement field
only read the records added since.

Examples:
  pxdb sync ORDERS.DB CUSTOMER.DB
  pxdb sync --mirror-dir=/var/lib/pxdb ORDERS.DB`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("mirror-dir")
		if dir == "" {
			dir = settings.MirrorDir
		}
		return runSync(cmd.Context(), cmd.OutOrStdout(), dir, args, logger)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().String("mirror-dir", "", "Mirror database directory (overrides the configuration)")
}

// runSync syncs every path and renders a summary. It keeps going after a
// failed table and reports the failures at the end.
func runSync(ctx context.Context, w io.Writer, dir string, paths []string, log zerolog.Logger) error {
	m, err := store.OpenMirror(store.MirrorConfig{Dir: dir, Logger: log})
	if err != nil {
		return err
	}
	defer m.Close()

	t := newTable(w)
	t.AppendHeader(table.Row{"Table", "Mode", "Added", "Rows", "Last key", "Took"})

	var failed int
	for _, path := range paths {
		res, err := m.Sync(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			failed++
			color.New(color.FgRed).Fprintf(w, "%s: %v\n", path, err)
			continue
		}
		t.AppendRow(table.Row{res.Table, res.Mode, res.Added, res.Rows, res.LastKey, res.Took.Round(time.Millisecond)})
	}
	t.Render()

	if failed > 0 {
		return errors.Newf("%d of %d tables failed to sync", failed, len(paths))
	}
	fmt.Fprintf(w, "synced %d tables into %s\n", len(paths), dir)
	return nil
}
