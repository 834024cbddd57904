package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/pages"
	"github.com/JonMunkholm/smartmart/internal/report"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		output string
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Download the consolidated XLSX report",
		Long: `Downloads the workbook rendered by the API and checks its sheets.
--local renders the same layout from the API listings instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				data    []byte
				name    = api.ReportFileName
				summary *report.Summary
				err     error
			)
			if local {
				data, err = buildLocalReport(cmd.Context(), a.client, time.Now())
				if err == nil {
					summary, err = report.Inspect(data)
				}
			} else {
				var d *api.Download
				d, summary, err = pages.NewDashboardPage(a.deps()).Report(cmd.Context())
				if d != nil {
					data, name = d.Data, d.FileName
				}
			}
			if err != nil {
				return err
			}

			printSheets(cmd.ErrOrStderr(), summary)
			if output == "" {
				output = name
			}
			return writeOutput(cmd, output, name, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory (default: the server's file name)")
	cmd.Flags().BoolVar(&local, "local", false, "Render the workbook locally from the API listings")
	return cmd
}

// buildLocalReport fetches every listing and renders the workbook.
func buildLocalReport(ctx context.Context, b pages.Backend, now time.Time) ([]byte, error) {
	var d report.Data
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Products, err = b.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Categories, err = b.ListCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Sales, err = b.ListSales(gctx)
		return err
	})
	g.Go(func() error {
		stats, err := b.Stats(gctx)
		if err != nil {
			return err
		}
		d.Stats = *stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch report data: %w", err)
	}
	return report.Build(d, now)
}

func printSheets(w io.Writer, s *report.Summary) {
	if s == nil {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SHEET\tROWS\tCOLUMNS")
	for _, sh := range s.Sheets {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", sh.Name, sh.DataRows, sh.Columns)
	}
	_ = tw.Flush()
}

func newCollectionCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Download the API-client collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := pages.NewDashboardPage(a.deps()).Collection(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" {
				output = d.FileName
			}
			return writeOutput(cmd, output, d.FileName, d.Data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, directory or \"-\" (default: the server's file name)")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := pages.NewDashboardPage(a.deps())
			if err := p.Activate(cmd.Context()); err != nil {
				if banner := p.State().Error; banner != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), banner)
				}
				return err
			}
			printStats(cmd.OutOrStdout(), p.State().Summary, top)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 5, "Number of products to list by revenue")
	return cmd
}

func printStats(w io.Writer, s *pages.DashboardSummary, top int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d\n", report.LabelSalesCount, s.Stats.TotalSalesCount)
	fmt.Fprintf(tw, "%s\t%s\n", report.LabelRevenue, report.FormatBRL(decimal.NewFromFloat(s.Stats.TotalRevenue)))
	fmt.Fprintf(tw, "%s\t%d\n", report.LabelProductCount, s.ProductCount)
	fmt.Fprintf(tw, "%s\t%d\n", report.LabelCategories, s.CategoryCount)
	if s.DocsURL != "" {
		fmt.Fprintf(tw, "API docs\t%s\n", s.DocsURL)
	}
	_ = tw.Flush()

	points := s.TopProducts
	if top >= 0 && len(points) > top {
		points = points[:top]
	}
	if len(points) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, pt := range points {
		fmt.Fprintf(tw, "%d.\t%s\t%s\n", i+1, pt.Label, report.FormatBRL(pt.Value))
	}
	_ = tw.Flush()
}
