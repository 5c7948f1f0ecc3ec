package cli

import (
	"errors"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/microempresa/portal-client/internal/infrastructure/health"
)

func (st *state) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the API and the draft store are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := st.app
			backend := string(a.Config.Store.Backend)
			if backend == "" {
				backend = "file"
			}
			checker := health.NewChecker(a.Logger, a.Config.HTTPTimeout,
				health.Check{Name: "api", Probe: health.APIProbe(a.Client)},
				health.Check{Name: "store:" + backend, Probe: health.StoreProbe(a.Store)},
			)
			report := checker.Readiness(cmd.Context())

			w := cmd.OutOrStdout()
			t := newTable(w, "DEPENDENCY", "STATUS", "ELAPSED", "ERROR")
			for _, name := range slices.Sorted(maps.Keys(report.Dependencies)) {
				d := report.Dependencies[name]
				t.row(name, d.Status, d.Elapsed.String(), d.Error)
			}
			if err := t.flush(); err != nil {
				return err
			}
			if !report.Healthy() {
				return errors.New("some dependencies are unavailable")
			}
			say(w, "All good.")
			return nil
		},
	}
}
