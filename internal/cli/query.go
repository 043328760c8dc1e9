package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"stockdash/internal/dashboard"
	"stockdash/internal/storage"
)

func newCompareCmd(rc *RootConfig) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "compare TICKER_A TICKER_B",
		Short: "Print the comparison of two tickers for a year",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openReadOnly(ctx, rc.Config.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			in := dashboard.Inputs{TickerA: args[0], TickerB: args[1]}
			if cmd.Flags().Changed("year") {
				in.Year = &year
			} else {
				y := dashboard.ResolveYears(ctx, store, in.TickerA).Value
				in.Year = &y
			}
			theme := dashboard.ThemeByName(rc.Config.Server.Theme)
			cmp := dashboard.Compare(ctx, store, theme, in)

			r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(theme.Name), glamour.WithWordWrap(100))
			if err != nil {
				return err
			}
			text, err := r.Render(report(in, cmp))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Year to compare (default: latest year of TICKER_A)")
	return cmd
}

// openReadOnly opens the database and fails early when the file is absent.
func openReadOnly(ctx context.Context, path string) (*storage.Store, error) {
	store, err := storage.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("database %s: %w", path, err)
	}
	return store, nil
}

// report is the markdown form of a comparison for terminal output.
func report(in dashboard.Inputs, cmp dashboard.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s vs %s", dashboard.DisplayName(in.TickerA), dashboard.DisplayName(in.TickerB))
	if in.Year != nil {
		fmt.Fprintf(&b, " (%d)", *in.Year)
	}
	b.WriteString("\n\n")
	if cmp.Metrics != nil {
		b.WriteString(cmp.MetricsMarkdown)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "**%s**\n", cmp.CorrelationText)
	if cmp.Correlation != nil && cmp.Correlation.Sufficient {
		fmt.Fprintf(&b, "\n_%d joined months_\n", cmp.Correlation.Points)
	}
	if cmp.Status != dashboard.StatusOK {
		return b.String()
	}

	b.WriteString("\n## Annualized Returns (%)\n\n| Horizon |")
	for _, t := range cmp.Bar.Traces {
		fmt.Fprintf(&b, " %s |", t.Name)
	}
	b.WriteString("\n|:---|")
	b.WriteString(strings.Repeat("---:|", len(cmp.Bar.Traces)))
	b.WriteString("\n")
	for i, label := range cmp.Bar.Categories {
		fmt.Fprintf(&b, "| %s |", label)
		for _, t := range cmp.Bar.Traces {
			fmt.Fprintf(&b, " %.1f |", t.Y[i])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func newYearsCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "years TICKER",
		Short: "Print the selectable year range of a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openReadOnly(cmd.Context(), rc.Config.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			yr := dashboard.ResolveYears(cmd.Context(), store, args[0])
			out := cmd.OutOrStdout()
			if yr.Fallback {
				rc.Log.WithField("ticker", args[0]).Warn("years unavailable, using fallback")
			}
			fmt.Fprintln(out, yr.Label)
			fmt.Fprintf(out, "range: %d-%d\n", yr.Min, yr.Max)
			marks := make([]string, len(yr.Marks))
			for i, m := range yr.Marks {
				marks[i] = m.Label
			}
			fmt.Fprintf(out, "marks: %s\n", strings.Join(marks, " "))
			return nil
		},
	}
}

func newTablesCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables in the database with row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openReadOnly(ctx, rc.Config.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			names, err := store.Tables(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TABLE\tROWS")
			for _, n := range names {
				rows, err := store.CountRows(ctx, n)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", n, humanize.Comma(rows))
			}
			return w.Flush()
		},
	}
}
