package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ev-dashboard/internal/ledger"
)

func newSummaryCmd(opts *options) *cobra.Command {
	var (
		f      ledger.Filter
		by     string
		status string
		days   int
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Portfolio performance: P/L, yield and win rate",
		Example: `  evctl summary
  evctl summary --by sport
  evctl summary --status won --days 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyWindow(&f, status, days); err != nil {
				return err
			}

			svc, closeFn, err := opts.openLedger()
			if err != nil {
				return err
			}
			defer closeFn()

			if by != "" {
				groups, err := svc.SummaryBy(cmd.Context(), f, ledger.Dimension(by))
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), groups, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintf(tw, "%s\tBETS\tSTAKED\tP/L\tYIELD\tWIN RATE\n", by)
					for _, g := range groups {
						fmt.Fprintf(tw, "%s\t%d\t%.2f\t%+.2f\t%+.2f%%\t%.1f%%\n",
							g.Key, g.Count, g.TotalStaked, g.TotalProfitLoss, g.YieldPct, g.WinRate*100)
					}
					tw.Flush()
				})
			}

			sum, err := svc.Summary(cmd.Context(), f)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), sum, func(w io.Writer) {
				fmt.Fprintf(w, "bets=%d (pending %d, won %d, lost %d, void %d)\n",
					sum.Count, sum.Pending, sum.Won, sum.Lost, sum.Void)
				fmt.Fprintf(w, "staked=%.2f settled=%.2f pl=%+.2f yield=%+.2f%% win_rate=%.1f%%\n",
					sum.TotalStaked, sum.SettledStake, sum.TotalProfitLoss, sum.YieldPct, sum.WinRate*100)
			})
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "group by sport, market or status")
	cmd.Flags().StringVar(&f.Sport, "sport", "", "filter by sport")
	cmd.Flags().StringVar(&f.Market, "market", "", "filter by market")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&days, "days", 0, "only bets placed in the last N days")
	return cmd
}
