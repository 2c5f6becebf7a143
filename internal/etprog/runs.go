// Public domain.

package etprog

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soniakeys/ephtrunc/internal/runlog"
)

func (a *app) runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded compaction runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := runlog.Open(a.runsDB)
			if err != nil {
				return err
			}
			defer l.Close()
			runs, err := l.List(cmd.Context(), a.limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIME\tMODEL\tPRESET\tPOLICY\tT_MAX\tTERMS\tCHARS\tRATIO\tMAX_POS_ERR\tINPUT")
			for _, r := range runs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%g\t%d->%d\t%d->%d\t%.3f\t%.1e\t%s\n",
					r.ID, r.Time.Format("2006-01-02 15:04"), r.Model, r.Preset, r.Policy,
					r.TMax, r.TermsBefore, r.TermsAfter, r.CharsBefore, r.CharsAfter,
					r.Ratio(), r.MaxPosErr, r.Input)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&a.runsDB, "record", "ephtrunc.db", "SQLite run log")
	cmd.Flags().IntVar(&a.limit, "limit", 20, "number of runs, 0 for all")
	return cmd
}
