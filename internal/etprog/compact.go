// Public domain.

package etprog

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soniakeys/ephtrunc/internal/budget"
	"github.com/soniakeys/ephtrunc/internal/compact"
	"github.com/soniakeys/ephtrunc/internal/ephem"
	"github.com/soniakeys/ephtrunc/internal/runlog"
	"github.com/soniakeys/ephtrunc/internal/series"
	"github.com/soniakeys/ephtrunc/internal/simplify"
)

func (a *app) compactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Write a compacted copy of a series file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompact(cmd)
		},
	}
	a.budgetFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&a.in, "in", "", "raw series file")
	f.StringVar(&a.out, "out", "", "compacted series file")
	f.StringVar(&a.policy, "policy", "fixed", "leeway policy: fixed or cost")
	f.StringVar(&a.strategy, "strategy", "greedy", "interval strategy for the fixed policy: greedy or scan")
	f.IntVar(&a.workers, "workers", 0, "worker goroutines (default GOMAXPROCS)")
	f.StringVar(&a.record, "record", "", "SQLite run log to append to")
	f.BoolVar(&a.measure, "measure", false, "measure position error of the result")
	f.IntVar(&a.num, "num", 100, "sample times per interval when measuring")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

// loadSeries reads a series and checks it against --model.
func (a *app) loadSeries(fn string) (*series.Series, error) {
	s, err := series.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	if a.model != "" {
		m, err := series.ParseModel(a.model)
		if err != nil {
			return nil, err
		}
		if m != s.Model {
			return nil, fmt.Errorf("%s: model %v, file has %v", fn, m, s.Model)
		}
	}
	return s, nil
}

// budget builds the configuration from defaults, file, and flags, in that
// order of precedence.
func (a *app) budget(cmd *cobra.Command, m series.Model) (budget.Config, error) {
	cfg, err := budget.Default(m, a.preset)
	if err != nil {
		return cfg, err
	}
	if a.config != "" {
		if cfg, err = budget.LoadFile(a.config, cfg); err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("preset") {
		if cfg, err = cfg.WithPreset(a.preset); err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("tmax") {
		cfg.TMax = a.tMax
	}
	return cfg, cfg.Validate()
}

func (a *app) runCompact(cmd *cobra.Command) error {
	ctx, w := cmd.Context(), cmd.OutOrStdout()
	s, err := a.loadSeries(a.in)
	if err != nil {
		return err
	}
	cfg, err := a.budget(cmd, s.Model)
	if err != nil {
		return err
	}
	strat, err := simplify.ByName(a.strategy)
	if err != nil {
		return err
	}
	pol, err := compact.PolicyByName(a.policy, strat)
	if err != nil {
		return err
	}
	a.log.Info("compacting", zap.String("in", a.in), zap.Stringer("model", s.Model),
		zap.String("preset", cfg.Preset), zap.Float64("t_max", cfg.TMax),
		zap.String("policy", pol.Name()))

	out, rep, err := compact.Series(s, cfg, compact.Options{
		Policy: pol, Workers: a.workers, Logger: a.log})
	if err != nil {
		return err
	}
	n, err := series.WriteFile(a.out, out)
	if err != nil {
		return err
	}
	printReport(w, rep)
	fmt.Fprintf(w, "wrote %s, %d bytes\n", a.out, n)

	var maxPos float64
	if a.measure {
		st, err := a.compare(ctx, s, out, cfg)
		if err != nil {
			return err
		}
		printStats(w, st)
		for _, x := range st {
			maxPos = max(maxPos, x.MaxPos)
		}
	}
	if a.record == "" {
		return nil
	}
	l, err := runlog.Open(a.record)
	if err != nil {
		return err
	}
	defer l.Close()
	id, err := l.Record(ctx, runlog.Run{
		Input: a.in, Output: a.out, Model: s.Model.String(), Preset: cfg.Preset,
		Policy: pol.Name(), TMax: cfg.TMax, Threshold: cfg.Threshold,
		TermsBefore: rep.TermsBefore, TermsAfter: rep.TermsAfter,
		CharsBefore: rep.CharsBefore, CharsAfter: rep.CharsAfter,
		Failures: len(rep.Failures), MaxPosErr: maxPos,
	})
	if err != nil {
		return err
	}
	a.log.Debug("run recorded", zap.String("db", a.record), zap.Int64("id", id))
	return nil
}

func printReport(w io.Writer, rep *compact.Report) {
	body := ""
	for _, g := range rep.Groups {
		if g.Body != body {
			body = g.Body
			fmt.Fprintln(w, body)
		}
		fmt.Fprintf(w, "  %s: %d -> %d\n", g.Key, g.Before, g.After)
	}
	fmt.Fprintf(w, "terms: %d -> %d\n", rep.TermsBefore, rep.TermsAfter)
	fmt.Fprintf(w, "chars: %d -> %d\n", rep.CharsBefore, rep.CharsAfter)
	for _, f := range rep.Failures {
		fmt.Fprintf(w, "kept %s %s term %d: %v\n", f.Body, f.Key, f.Index, f.Err)
	}
}

// compare measures cand against ref over the budget's time range.
func (a *app) compare(ctx context.Context, ref, cand *series.Series, cfg budget.Config) ([]ephem.Stats, error) {
	re, err := ephem.New(ref)
	if err != nil {
		return nil, err
	}
	ce, err := ephem.New(cand)
	if err != nil {
		return nil, err
	}
	var bodies []string
	for _, b := range re.Bodies() {
		if cand.Body(b) != nil {
			bodies = append(bodies, b)
		}
	}
	tc := ephem.Centuries(ref.Model, cfg.TMax)
	ivs := ephem.Intervals(a.num, tc)
	if a.random > 0 {
		ivs = append(ivs, ephem.RandomInterval(newRand(a.seed), a.random, tc))
	}
	return ephem.Compare(ctx, re, ce, bodies, ivs)
}

func printStats(w io.Writer, st []ephem.Stats) {
	fmt.Fprintln(w, ephem.StatsHeader)
	for _, x := range st {
		fmt.Fprintln(w, x)
	}
}
