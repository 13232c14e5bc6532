package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/estimator/internal/cli/formatter"
	"github.com/alexanderramin/estimator/internal/importer"
	"github.com/spf13/cobra"
)

func newEstimateImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create a draft estimate from a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Imports.ImportEstimate(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported estimate %s [%s] with %d groups and %d items\n",
				res.Estimate.Title, res.Estimate.DisplayID(), res.GroupCount, res.ItemCount)
			fmt.Fprintf(cmd.OutOrStdout(), "Estimate total %s\n",
				formatter.Money(app.currency(), res.Estimate.Totals.FinalTotal))
			return nil
		},
	}
}

func newEstimateExportCmd(app *App) *cobra.Command {
	var out, format string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Write an estimate as JSON, YAML or an xlsx spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveEstimateID(ctx, app, args[0])
			if err != nil {
				return err
			}

			f := importer.Format(format)
			switch {
			case format == "" && out != "":
				f = importer.FormatFromPath(out)
			case format == "":
				f = importer.FormatJSON
			case f != importer.FormatJSON && f != importer.FormatYAML && f != importer.FormatXLSX:
				return fmt.Errorf("unknown format %q (want json, yaml or xlsx)", format)
			}
			if f == importer.FormatXLSX && out == "" {
				return fmt.Errorf("xlsx export needs --out")
			}

			var buf bytes.Buffer
			if f == importer.FormatXLSX {
				err = app.Imports.ExportWorkbook(ctx, id, &buf)
			} else {
				err = exportSchema(ctx, app, id, &buf, f)
			}
			if err != nil {
				return err
			}

			if out == "" {
				_, err = buf.WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported estimate %s to %s\n", formatter.ShortID(id), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&format, "format", "", "json, yaml or xlsx (defaults from --out extension, else json)")

	return cmd
}

func exportSchema(ctx context.Context, app *App, id string, w io.Writer, f importer.Format) error {
	schema, err := app.Imports.ExportEstimate(ctx, id)
	if err != nil {
		return err
	}
	if err := importer.Write(w, schema, f); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
