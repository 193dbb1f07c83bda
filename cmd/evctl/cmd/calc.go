package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ev-dashboard/internal/analysis"
	"ev-dashboard/internal/odds"
)

// oddsFlags accepts decimal odds or American odds.
type oddsFlags struct {
	decimal  float64
	american int
}

func (f *oddsFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.decimal, "odds", "o", 0, "decimal odds (e.g. 2.20)")
	cmd.Flags().IntVarP(&f.american, "american", "a", 0, "American odds (e.g. +120, -150)")
	cmd.MarkFlagsMutuallyExclusive("odds", "american")
	cmd.MarkFlagsOneRequired("odds", "american")
}

func (f *oddsFlags) resolve() (float64, error) {
	if f.american != 0 {
		return odds.AmericanToDecimal(f.american)
	}
	if err := odds.ValidateDecimal(f.decimal); err != nil {
		return 0, err
	}
	return f.decimal, nil
}

func newEdgeCmd(opts *options) *cobra.Command {
	var (
		prob float64
		of   oddsFlags
	)
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Expected value of a probability at offered odds",
		Example: `  evctl edge -p 0.55 -o 2.20
  evctl edge -p 0.55 -a +120`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := of.resolve()
			if err != nil {
				return err
			}
			edge, err := analysis.ComputeEdge(prob, o)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), edge, func(w io.Writer) {
				fmt.Fprintf(w, "odds=%.2f implied=%.2f%% prob=%.2f%% ev=%+.2f%% verdict=%s\n",
					edge.Odds, edge.Implied*100, edge.Probability*100, edge.EV*100, edge.Verdict)
			})
		},
	}
	cmd.Flags().Float64VarP(&prob, "prob", "p", 0, "estimated probability of the outcome (0-1)")
	cmd.MarkFlagRequired("prob")
	of.register(cmd)
	return cmd
}

func newStakeCmd(opts *options) *cobra.Command {
	var (
		prob     float64
		of       oddsFlags
		bankroll float64
		policy   string
		amount   float64
		percent  float64
		fraction float64
	)
	cmd := &cobra.Command{
		Use:   "stake",
		Short: "Recommend a stake under a staking policy",
		Long: `Recommend a stake. Bankroll and policy default to the settings file;
flags override them for this call only. The result never exceeds the bankroll.`,
		Example: `  evctl stake -p 0.55 -o 2.20
  evctl stake -p 0.55 -o 2.20 --bankroll 5000 --policy kelly --fraction 0.25
  evctl stake -p 0.55 -o 2.20 --policy percentage --percent 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := of.resolve()
			if err != nil {
				return err
			}

			fs, err := opts.openSettings()
			if err != nil {
				return err
			}
			current := fs.Get()

			if cmd.Flags().Changed("bankroll") {
				current.Bankroll = bankroll
			}
			cfg := current.Policy
			if cmd.Flags().Changed("policy") {
				cfg = analysis.PolicyConfig{Kind: analysis.PolicyKind(strings.ToLower(policy))}
			}
			if cmd.Flags().Changed("amount") {
				cfg.Amount = &amount
			}
			if cmd.Flags().Changed("percent") {
				cfg.Percent = &percent
			}
			if cmd.Flags().Changed("fraction") {
				cfg.KellyFraction = &fraction
			}

			p, err := cfg.Policy()
			if err != nil {
				return err
			}
			rec, err := analysis.RecommendStake(p, prob, o, current.Bankroll)
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), rec, func(w io.Writer) {
				fmt.Fprintf(w, "policy=%s bankroll=%.2f stake=%.2f %s\n", p, current.Bankroll, rec.Amount, current.Currency)
				if rec.Clamped {
					fmt.Fprintf(w, "  raw stake %.2f clamped to [0, %.2f]\n", rec.Raw, current.Bankroll)
				}
				if rec.Edge != nil && rec.Kelly != nil {
					fmt.Fprintf(w, "  ev=%+.2f%% kelly=%.2f%%\n", rec.Edge.EV*100, *rec.Kelly*100)
				}
			})
		},
	}
	cmd.Flags().Float64VarP(&prob, "prob", "p", 0, "estimated probability of the outcome (0-1)")
	of.register(cmd)
	cmd.Flags().Float64Var(&bankroll, "bankroll", 0, "bankroll override")
	cmd.Flags().StringVar(&policy, "policy", "", "policy override: fixed, percentage or kelly")
	cmd.Flags().Float64Var(&amount, "amount", 0, "fixed stake amount")
	cmd.Flags().Float64Var(&percent, "percent", 0, "percentage of bankroll (2 = 2%)")
	cmd.Flags().Float64Var(&fraction, "fraction", 0, "Kelly fraction in (0, 1]")
	cmd.MarkFlagRequired("prob")
	return cmd
}

func newFairCmd(opts *options) *cobra.Command {
	var power bool
	cmd := &cobra.Command{
		Use:   "fair <odds> <odds> [odds...]",
		Short: "Remove the bookmaker margin from a market",
		Example: `  evctl fair 1.91 1.91
  evctl fair 2.50 3.40 2.90
  evctl fair --power 1.50 2.70`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prices := make([]float64, len(args))
			for i, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("%w: %q", odds.ErrInvalidOdds, a)
				}
				prices[i] = v
			}

			over, err := odds.Overround(prices...)
			if err != nil {
				return err
			}

			var fair []float64
			if power {
				if len(prices) != 2 {
					return fmt.Errorf("--power requires exactly two outcomes")
				}
				a, b, err := odds.FairProbabilitiesPower(prices[0], prices[1])
				if err != nil {
					return err
				}
				fair = []float64{a, b}
			} else {
				if fair, err = odds.FairProbabilities(prices...); err != nil {
					return err
				}
			}

			out := map[string]interface{}{"overround": over, "probabilities": fair}
			return opts.print(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "overround=%.2f%%\n", over*100)
				for i, p := range fair {
					fmt.Fprintf(w, "  %.2f -> fair %.2f%% (%.3f)\n", prices[i], p*100, 1/p)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&power, "power", false, "use the power method (two-way markets)")
	return cmd
}

func newEstimateCmd(opts *options) *cobra.Command {
	var (
		mean, stddev, line float64
		poisson            bool
	)
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate an over/under probability from a distribution",
		Example: `  evctl estimate --mean 224.5 --stddev 12 --line 220.5
  evctl estimate --poisson --mean 2.7 --line 2.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				over, under, push float64
				err               error
			)
			if poisson {
				if over, err = analysis.PoissonOver(mean, line); err == nil {
					if under, err = analysis.PoissonUnder(mean, line); err == nil {
						push, err = analysis.PoissonPush(mean, line)
					}
				}
			} else {
				over, err = analysis.ProbabilityOver(mean, stddev, line)
				under = 1 - over
			}
			if err != nil {
				return err
			}

			out := map[string]float64{"probability_over": over, "probability_under": under}
			if push > 0 {
				out["probability_push"] = push
			}
			return opts.print(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "over %.1f: %.2f%%  under: %.2f%%", line, over*100, under*100)
				if push > 0 {
					fmt.Fprintf(w, "  push: %.2f%%", push*100)
				}
				fmt.Fprintln(w)
			})
		},
	}
	cmd.Flags().Float64Var(&mean, "mean", 0, "projected mean (lambda for --poisson)")
	cmd.Flags().Float64Var(&stddev, "stddev", 0, "standard deviation (normal model)")
	cmd.Flags().Float64Var(&line, "line", 0, "market line")
	cmd.Flags().BoolVar(&poisson, "poisson", false, "use a Poisson model for low-count markets")
	cmd.MarkFlagRequired("mean")
	cmd.MarkFlagRequired("line")
	return cmd
}
