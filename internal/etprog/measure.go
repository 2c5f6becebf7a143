// Public domain.

package etprog

import (
	"github.com/spf13/cobra"
	xrand "golang.org/x/exp/rand"
	"go.uber.org/zap"
)

func (a *app) measureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Compare positions from a compacted series with the raw series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.loadSeries(a.ref)
			if err != nil {
				return err
			}
			cand, err := a.loadSeries(a.in)
			if err != nil {
				return err
			}
			cfg, err := a.budget(cmd, ref.Model)
			if err != nil {
				return err
			}
			a.log.Info("measuring", zap.String("ref", a.ref), zap.String("in", a.in),
				zap.Float64("t_max", cfg.TMax), zap.Int("num", a.num))
			st, err := a.compare(cmd.Context(), ref, cand, cfg)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), st)
			return nil
		},
	}
	a.budgetFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&a.ref, "ref", "", "raw series file")
	f.StringVar(&a.in, "in", "", "compacted series file")
	f.IntVar(&a.num, "num", 100, "sample times per interval")
	f.IntVar(&a.random, "random", 0, "additional random sample times")
	f.Uint64Var(&a.seed, "seed", 3, "random seed")
	cmd.MarkFlagRequired("ref")
	cmd.MarkFlagRequired("in")
	return cmd
}

// newRand returns a repeatable generator.
func newRand(seed uint64) *xrand.Rand {
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(seed)
	return rnd
}
