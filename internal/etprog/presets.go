// Public domain.

package etprog

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/soniakeys/ephtrunc/internal/budget"
	"github.com/soniakeys/ephtrunc/internal/series"
)

func (a *app) presetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Show budget presets, or a model's default budget as YAML",
		Long: `With no flags, lists the presets.  With --model, prints the default
budget for the model in the YAML form read by --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if a.model == "" {
				for _, p := range budget.Presets {
					fmt.Fprintf(w, "%-8s threshold %.0e  max error per char %.0e\n",
						p.Name, p.Threshold, p.MaxErrorPerChar)
				}
				return nil
			}
			m, err := series.ParseModel(a.model)
			if err != nil {
				return err
			}
			cfg, err := budget.Default(m, a.preset)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&a.model, "model", "", "model to show the default budget of")
	cmd.Flags().StringVar(&a.preset, "preset", "medium", "preset for --model")
	return cmd
}
