package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/core"
	"github.com/JonMunkholm/smartmart/internal/pages"
)

func parseKindArg(raw string) (core.Kind, error) {
	kind, ok := core.ParseKind(raw)
	if !ok {
		return "", fmt.Errorf("%q (want one of %s): %w", raw, kindList(), core.ErrUnknownKind)
	}
	return kind, nil
}

func kindList() string {
	kinds := core.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func newKindsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the CSV kinds and their expected headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tLABEL\tFILE\tHEADERS")
			for _, spec := range core.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", spec.Kind, spec.Label(a.cfg.CSV.Locale), spec.FileName, strings.Join(spec.Headers, ","))
			}
			return tw.Flush()
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <kind> <file>...",
		Short: "Check that CSV files look like the given kind",
		Long: `Runs the header classifier over each file without sending anything to
the API. Exits non-zero when any file is rejected.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			classifier := a.classifier()
			out := cmd.OutOrStdout()

			rejected := 0
			for _, path := range args[1:] {
				verdict, err := validateFile(cmd.Context(), classifier, kind, path)
				if err != nil {
					return err
				}
				if verdict.Accepted {
					fmt.Fprintf(out, "ok       %s  score=%.2f\n", path, verdict.Score)
					continue
				}
				rejected++
				fmt.Fprintf(out, "rejected %s  score=%.2f  %s\n", path, verdict.Score, core.RejectionMessageIn(a.cfg.CSV.Locale, kind))
				if len(verdict.Missing) > 0 {
					fmt.Fprintf(out, "         missing: %s\n", strings.Join(verdict.Missing, ", "))
				}
			}
			if rejected > 0 {
				return fmt.Errorf("%d of %d: %w", rejected, len(args)-1, errRejectedFiles)
			}
			return nil
		},
	}
}

func validateFile(ctx context.Context, c *core.Classifier, kind core.Kind, path string) (core.Verdict, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Verdict{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return c.Evaluate(ctx, f, kind), nil
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <kind> <file>",
		Short: "Classify a CSV file and import it through the API",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[1], err)
			}
			defer f.Close()

			res, banner, err := importFile(cmd.Context(), a.deps(), kind, filepath.Base(args[1]), f)
			if err != nil {
				if banner != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), banner)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d inserted)\n", res.Message, res.Inserted)
			return nil
		},
	}
}

// importFile runs the upload through the page of kind and returns the
// banner the page would show on failure.
func importFile(ctx context.Context, d pages.Deps, kind core.Kind, name string, r io.Reader) (*api.ImportResult, string, error) {
	switch kind {
	case core.KindProducts:
		p := pages.NewProductsPage(d)
		res, err := p.Upload(ctx, name, r)
		return res, p.State().Error, err
	case core.KindCategories:
		p := pages.NewCategoriesPage(d)
		res, err := p.Upload(ctx, name, r)
		return res, p.State().Error, err
	case core.KindSales:
		p := pages.NewSalesPage(d)
		res, err := p.Upload(ctx, name, r)
		return res, p.State().Error, err
	default:
		return nil, "", core.ErrUnknownKind
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		output string
		quote  bool
		server bool
	)

	cmd := &cobra.Command{
		Use:   "export <kind>",
		Short: "Export a listing as CSV",
		Long: `Fetches the current listing and encodes it as CSV. --server downloads
the API's own rendering instead (products and sales only).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			d := a.deps()
			if cmd.Flags().Changed("quote") {
				d.Quote = quote
			}

			data, name, err := exportKind(cmd.Context(), d, kind, server)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, name, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, \"-\" for stdout, a directory for the default name")
	cmd.Flags().BoolVar(&quote, "quote", false, "Quote fields containing commas, quotes or line breaks")
	cmd.Flags().BoolVar(&server, "server", false, "Download the API rendering instead of encoding locally")
	return cmd
}

func exportKind(ctx context.Context, d pages.Deps, kind core.Kind, server bool) ([]byte, string, error) {
	var (
		export *pages.Export
		err    error
	)
	switch kind {
	case core.KindProducts:
		p := pages.NewProductsPage(d)
		if server {
			return download(p.ExportServerCSV(ctx))
		}
		if err = p.Activate(ctx); err == nil {
			export, err = p.ExportCSV()
		}
	case core.KindCategories:
		if server {
			return nil, "", fmt.Errorf("the API has no categories export; drop --server")
		}
		p := pages.NewCategoriesPage(d)
		if err = p.Activate(ctx); err == nil {
			export, err = p.ExportCSV()
		}
	case core.KindSales:
		p := pages.NewSalesPage(d)
		if server {
			return download(p.ExportServerCSV(ctx))
		}
		if err = p.Refresh(ctx); err == nil {
			export, err = p.ExportCSV()
		}
	default:
		return nil, "", core.ErrUnknownKind
	}
	if err != nil {
		return nil, "", err
	}
	return export.Data, export.FileName, nil
}

func download(d *api.Download, err error) ([]byte, string, error) {
	if err != nil {
		return nil, "", err
	}
	return d.Data, d.FileName, nil
}

// writeOutput writes data to stdout when output is empty or "-", into dir
// under name when output is a directory, or to the output path otherwise.
func writeOutput(cmd *cobra.Command, output, name string, data []byte) error {
	if output == "" || output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		output = filepath.Join(output, name)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", output, len(data))
	return nil
}
