package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"ev-dashboard/internal/settings"
)

func newSettingsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change portfolio settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := opts.openSettings()
			if err != nil {
				return err
			}
			s := fs.Get()
			return opts.print(cmd.OutOrStdout(), s, func(w io.Writer) { printSettings(w, s) })
		},
	}

	setBankroll := &cobra.Command{
		Use:     "set-bankroll <amount>",
		Short:   "Update the bankroll snapshot",
		Example: `  evctl settings set-bankroll 2500`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}

			fs, err := opts.openSettings()
			if err != nil {
				return err
			}
			s, err := fs.Update(func(s *settings.Settings) { s.Bankroll = amount })
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), s, func(w io.Writer) { printSettings(w, s) })
		},
	}

	cmd.AddCommand(show, setBankroll)
	return cmd
}

func printSettings(w io.Writer, s settings.Settings) {
	fmt.Fprintf(w, "bankroll=%.2f %s\n", s.Bankroll, s.Currency)
	fmt.Fprintf(w, "value_threshold=%.2f%%\n", s.ValueThreshold*100)
	if p, err := s.StakingPolicy(); err == nil {
		fmt.Fprintf(w, "policy=%s\n", p)
	}
}
