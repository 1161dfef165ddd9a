package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/ssargent/pxdb/pkg/codec"
	"github.com/ssargent/pxdb/pkg/paradox"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
)

func checkFormat(format string) error {
	if format != formatTable && format != formatJSON {
		return errors.Newf("unknown format %q (want table or json)", format)
	}
	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// renderHeader prints the table header as name/value pairs.
func renderHeader(w io.Writer, h paradox.Header) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Property", "Value"})
	t.AppendRows([]table.Row{
		{"Table name", h.TableName},
		{"File type", h.FileType},
		{"Records", h.RecordsCount},
		{"Fields", h.FieldsCount},
		{"Record size", h.RecordSize},
		{"Header size", h.HeaderSize},
		{"Block size", fmt.Sprintf("%d KiB", h.MaxTableSize)},
		{"Sort order", fmt.Sprintf("0x%02x %s", h.SortOrder, h.SortOrderTxt)},
		{"Write protected", h.WriteProtected},
		{"Version", fmt.Sprintf("0x%02x / 0x%04x", h.VersionCommon, h.VersionData)},
		{"Next autoincrement", h.NextAutoInc},
		{"Codepage", h.Codepage},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})
	t.Render()
}

func renderFields(w io.Writer, fields []paradox.Field) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Name", "Type", "Size"})
	for i, f := range fields {
		t.AppendRow(table.Row{i + 1, f.Name, f.Type, f.Size})
	}
	t.Render()
}

func renderRecords(w io.Writer, fields []paradox.Field, records []paradox.Record) {
	t := newTable(w)
	head := make(table.Row, len(fields))
	for i, f := range fields {
		head[i] = f.Name
	}
	t.AppendHeader(head)
	for _, rec := range records {
		row := make(table.Row, len(rec))
		for i, v := range rec {
			row[i] = cell(v)
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d records", len(records))})
	t.Render()
}

func cell(v codec.Value) string {
	switch {
	case v.IsPlaceholder():
		return "<" + v.Kind().String() + ">"
	case v.Kind() == codec.KindText:
		return v.Text()
	default:
		return v.String()
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
