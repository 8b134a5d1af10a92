package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/fieldroute/core/model"
	"github.com/kilianp07/fieldroute/core/routing"
	"github.com/kilianp07/fieldroute/pkg/export"
)

var outputFormat string

func addFormatFlag(c *cobra.Command) {
	c.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format: json, yaml or csv")
}

// writeOutput renders v in the selected format. csv only applies to values
// carrying a schedule.
func writeOutput(w io.Writer, v any) error {
	switch outputFormat {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "csv":
		switch x := v.(type) {
		case *routing.Result:
			return export.WriteCSV(w, x.Schedule)
		case model.Schedule:
			return export.WriteCSV(w, x)
		default:
			return fmt.Errorf("csv output is not supported for %T", v)
		}
	default:
		return fmt.Errorf("unknown format %q", outputFormat)
	}
}
