package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stark/internal/diagfmt"
	"stark/internal/metadata"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <image.smd>",
	Short: "List the rows of a metadata image",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().String("table", "", "only rows of this table (e.g. TypeDef, MethodDef)")
	dumpCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type dumpRow struct {
	Token  string `json:"token"`
	Table  string `json:"table"`
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

func runDump(cmd *cobra.Command, args []string) error {
	table, err := cmd.Flags().GetString("table")
	if err != nil {
		return fmt.Errorf("failed to get table flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", args[0], err)
	}
	img, err := metadata.ReadImage(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	module, err := img.ModuleName()
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	rows := imageRows(img, table)

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Module string    `json:"module"`
			Rows   []dumpRow `json:"rows"`
		}{module, rows})
	case "pretty":
		colored, err := useColor(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "module %s\n", module)
		t := diagfmt.NewTable("TOKEN", "TABLE", "NAME", "DETAIL").WithColor(colored)
		for _, r := range rows {
			t.Row(r.Token, r.Table, r.Name, r.Detail)
		}
		return t.Render(cmd.OutOrStdout())
	}
	return fmt.Errorf("unknown format: %s", format)
}

// imageRows renders the image entries, keeping only table when it is set.
// Table names match without regard to case.
func imageRows(img *metadata.Image, table string) []dumpRow {
	var rows []dumpRow
	for _, e := range img.Entries() {
		name := e.Token.Table().String()
		if table != "" && !strings.EqualFold(name, table) {
			continue
		}
		rows = append(rows, dumpRow{
			Token:  fmt.Sprintf("0x%08X", uint32(e.Token)),
			Table:  name,
			Name:   e.Name,
			Detail: e.Detail,
		})
	}
	return rows
}
