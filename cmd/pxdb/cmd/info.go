/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/ssargent/pxdb/pkg/paradox"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show the header and schema of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return runInfo(cmd.OutOrStdout(), args[0], format)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringP("format", "o", formatTable, "Output format (table or json)")
}

func runInfo(w io.Writer, path, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	db, err := paradox.OpenSchema(path)
	if err != nil {
		return err
	}
	if format == formatJSON {
		return writeJSON(w, struct {
			Header paradox.Header  `json:"header"`
			Fields []paradox.Field `json:"fields"`
		}{db.Header, db.Fields})
	}
	renderHeader(w, db.Header)
	renderFields(w, db.Fields)
	return nil
}
