package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ev-dashboard/internal/ledger"
)

func newBetCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bet",
		Short: "Record and settle bets in the ledger",
		Long: `Record and settle bets in the SQLite ledger.

Subcommands:
  place   - Record a confirmed bet
  settle  - Settle a pending bet as won, lost or void
  list    - List bets, newest first
  show    - Show one bet`,
	}
	cmd.AddCommand(
		newBetPlaceCmd(opts),
		newBetSettleCmd(opts),
		newBetListCmd(opts),
		newBetShowCmd(opts),
	)
	return cmd
}

func newBetPlaceCmd(opts *options) *cobra.Command {
	var (
		in   ledger.BetInput
		prob float64
		of   oddsFlags
	)
	cmd := &cobra.Command{
		Use:     "place",
		Short:   "Record a confirmed bet",
		Example: `  evctl bet place --sport basketball_nba --match "LAL @ BOS" --market moneyline --selection LAL -o 2.20 -p 0.55 --stake 25`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := of.resolve()
			if err != nil {
				return err
			}
			in.Odds = o
			in.Probability = &prob

			svc, closeFn, err := opts.openLedger()
			if err != nil {
				return err
			}
			defer closeFn()

			b, err := svc.Place(cmd.Context(), in)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), b, func(w io.Writer) {
				fmt.Fprintf(w, "placed %s: %s @ %.2f stake=%.2f ev=%+.2f%%\n", b.ID, b.Selection, b.Odds, b.Stake, b.Edge*100)
			})
		},
	}
	cmd.Flags().StringVar(&in.Sport, "sport", "", "sport key")
	cmd.Flags().StringVar(&in.Match, "match", "", "match description")
	cmd.Flags().StringVar(&in.Market, "market", "", "market (moneyline, spread, total, ...)")
	cmd.Flags().StringVar(&in.Selection, "selection", "", "selection backed")
	cmd.Flags().Float64VarP(&prob, "prob", "p", 0, "estimated probability (0-1)")
	cmd.Flags().Float64Var(&in.Stake, "stake", 0, "stake amount")
	of.register(cmd)
	cmd.MarkFlagRequired("selection")
	cmd.MarkFlagRequired("prob")
	cmd.MarkFlagRequired("stake")
	return cmd
}

func newBetSettleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "settle <bet-id> <won|lost|void>",
		Short:   "Settle a pending bet",
		Example: `  evctl bet settle 01J0ABCDXYZ won`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := ledger.ParseStatus(args[1])
			if err != nil {
				return err
			}

			svc, closeFn, err := opts.openLedger()
			if err != nil {
				return err
			}
			defer closeFn()

			b, err := svc.Settle(cmd.Context(), args[0], outcome)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), b, func(w io.Writer) {
				fmt.Fprintf(w, "settled %s: %s pl=%+.2f\n", b.ID, b.Status, b.ProfitLoss)
			})
		},
	}
}

func newBetListCmd(opts *options) *cobra.Command {
	var (
		f      ledger.Filter
		status string
		days   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyWindow(&f, status, days); err != nil {
				return err
			}

			svc, closeFn, err := opts.openLedger()
			if err != nil {
				return err
			}
			defer closeFn()

			bets, err := svc.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			if bets == nil {
				bets = []ledger.Bet{}
			}
			return opts.print(cmd.OutOrStdout(), bets, func(w io.Writer) {
				printBets(w, bets)
			})
		},
	}
	cmd.Flags().StringVar(&f.Sport, "sport", "", "filter by sport")
	cmd.Flags().StringVar(&f.Market, "market", "", "filter by market")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&days, "days", 0, "only bets placed in the last N days")
	cmd.Flags().IntVarP(&f.Limit, "limit", "n", 50, "maximum rows")
	return cmd
}

func newBetShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <bet-id>",
		Short: "Show one bet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := opts.openLedger()
			if err != nil {
				return err
			}
			defer closeFn()

			b, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), b, func(w io.Writer) {
				printBets(w, []ledger.Bet{b})
			})
		},
	}
}

func printBets(w io.Writer, bets []ledger.Bet) {
	if len(bets) == 0 {
		fmt.Fprintln(w, "no bets")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLACED\tSPORT\tSELECTION\tODDS\tSTAKE\tEV\tSTATUS\tP/L")
	for _, b := range bets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%.2f\t%+.2f%%\t%s\t%+.2f\n",
			b.ID, b.PlacedAt.Local().Format("2006-01-02 15:04"), b.Sport, b.Selection,
			b.Odds, b.Stake, b.Edge*100, b.Status, b.ProfitLoss)
	}
	tw.Flush()
}

// applyWindow narrows f by the --status and --days flags.
func applyWindow(f *ledger.Filter, status string, days int) error {
	if status != "" {
		st, err := ledger.ParseStatus(status)
		if err != nil {
			return err
		}
		f.Status = st
	}
	if days > 0 {
		f.Since = time.Now().AddDate(0, 0, -days)
	}
	return nil
}
