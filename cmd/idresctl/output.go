package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"idres/internal/identity/handler"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// defaultOutput is table on a terminal and JSON when piped.
func defaultOutput(w io.Writer) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return outputTable
	}
	return outputJSON
}

// render writes v in the configured format. table is used for table output.
func (a *app) render(v any, table func(w *tabwriter.Writer)) error {
	switch a.cfg.Output {
	case outputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, string(data))
		return err
	case outputYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		table(w)
		return w.Flush()
	}
}

func fieldTable(w *tabwriter.Writer, fields []handler.FieldResponse, withPriority bool) {
	if withPriority {
		fmt.Fprintln(w, "PRIORITY\tID\tNAME\tENABLED\tLIMIT\tFREQUENCY\tCUSTOM")
	} else {
		fmt.Fprintln(w, "ID\tNAME\tENABLED\tLIMIT\tFREQUENCY\tCUSTOM")
	}
	for _, f := range fields {
		if withPriority {
			fmt.Fprintf(w, "%d\t", f.Priority)
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\t%t\n",
			f.ID,
			f.DisplayName,
			f.Enabled,
			f.MatchLimit,
			f.MatchFrequency,
			f.IsCustom,
		)
	}
}
