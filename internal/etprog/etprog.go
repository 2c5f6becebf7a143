// Public domain.

// Package etprog is the ephtrunc command.
package etprog

import (
	"fmt"

	"github.com/soniakeys/exit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const versionString = "ephtrunc version 0.1"

// app holds flag values and the logger shared by the subcommands.
type app struct {
	verbose bool
	log     *zap.Logger

	in, out  string
	ref      string
	model    string
	preset   string
	tMax     float64
	policy   string
	strategy string
	workers  int
	config   string
	record   string
	runsDB   string
	measure  bool

	num    int
	random int
	seed   uint64
	limit  int
}

// Main runs the command line and exits nonzero on error.
func Main() {
	defer exit.Handler()
	if err := NewRootCmd().Execute(); err != nil {
		exit.Log(err)
	}
}

// NewRootCmd returns the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	root := &cobra.Command{
		Use:     "ephtrunc",
		Short:   "Compact ephemeris series within an error budget",
		Version: versionString,
		// errors are reported once, by Main
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if a.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.log = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log per group detail")
	root.AddCommand(a.compactCmd(), a.measureCmd(), a.runsCmd(), a.presetsCmd())
	return root
}

// budgetFlags are shared by compact and measure.
func (a *app) budgetFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&a.model, "model", "", "series model, mpp02 or vsop87a (default from file layout)")
	f.StringVar(&a.preset, "preset", "medium", "error budget preset: coarse, medium, fine")
	f.Float64Var(&a.tMax, "tmax", 0, "largest |t| in the series' time unit (default per model)")
	f.StringVar(&a.config, "config", "", "YAML budget file overriding the preset")
}
