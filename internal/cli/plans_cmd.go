package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/service"
)

func (st *state) plansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Subscription plan catalogue",
	}

	list := &cobra.Command{
		Use:     "list",
		Short:   "List every plan, inactive ones included",
		Args:    cobra.NoArgs,
		PreRunE: st.requireRoles(domain.RoleAdmin),
		RunE: func(cmd *cobra.Command, _ []string) error {
			plans, err := st.app.Plans.List(cmd.Context())
			if err != nil {
				return err
			}
			return printPlans(cmd.OutOrStdout(), plans)
		},
	}

	var name, price, status string
	var features []string
	create := &cobra.Command{
		Use:     "create",
		Short:   "Add a plan",
		Args:    cobra.NoArgs,
		PreRunE: st.requireRoles(domain.RoleAdmin),
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := service.NewPlanForm()
			form.Name, form.Price = name, price
			if status != "" {
				form.Status = domain.Status(status)
			}
			for i, f := range features {
				form.SetFeature(i, f)
			}
			msg, err := st.app.Plans.Create(cmd.Context(), form)
			if err != nil {
				return err
			}
			say(cmd.OutOrStdout(), "%s", msg)
			return nil
		},
	}
	cf := create.Flags()
	cf.StringVar(&name, "name", "", "plan name")
	cf.StringVar(&price, "price", "", "monthly price")
	cf.StringVar(&status, "status", "", "activo or inactivo")
	cf.StringArrayVar(&features, "feature", nil, "a feature line; repeat for several")

	var addFeatures []string
	var removeFeatures []int
	update := &cobra.Command{
		Use:   "update ID [FIELD=VALUE...]",
		Short: "Edit a plan",
		Long: "Edit a plan. Fields: nombre, precio, estado, caracteristicas (one line per feature, separated by |). " +
			"--remove-feature takes the 1-based position shown by `plans list`.",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: st.requireRoles(domain.RoleAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			pairs, err := assignments(args[1:])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			plan, err := st.findPlan(ctx, id)
			if err != nil {
				return err
			}
			ed := st.app.Plans.Editor()
			ed.Begin(id, service.PlanFormFrom(plan))
			var editErr error
			ed.Update(func(f *service.PlanForm) {
				editErr = editPlanForm(f, pairs, removeFeatures, addFeatures)
			})
			if editErr != nil {
				return editErr
			}
			if err := ed.Submit(ctx); err != nil {
				return err
			}
			say(cmd.OutOrStdout(), "Plan updated.")
			return nil
		},
	}
	uf := update.Flags()
	uf.StringArrayVar(&addFeatures, "add-feature", nil, "append a feature line; repeat for several")
	uf.IntSliceVar(&removeFeatures, "remove-feature", nil, "drop the feature at this position; repeat for several")

	statusCmd := func(use, short string, fn func(context.Context, int) (string, error)) *cobra.Command {
		return &cobra.Command{
			Use:     use + " ID",
			Short:   short,
			Args:    cobra.ExactArgs(1),
			PreRunE: st.requireRoles(domain.RoleAdmin),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				msg, err := fn(cmd.Context(), id)
				if err != nil {
					return err
				}
				say(cmd.OutOrStdout(), "%s", msg)
				return nil
			},
		}
	}

	cmd.AddCommand(list, create, update,
		statusCmd("activate", "Put a plan back on sale", func(ctx context.Context, id int) (string, error) {
			return st.app.Plans.Activate(ctx, id)
		}),
		statusCmd("deactivate", "Withdraw a plan; it stays listed as inactive", func(ctx context.Context, id int) (string, error) {
			return st.app.Plans.Deactivate(ctx, id)
		}),
	)
	return cmd
}

func (st *state) findPlan(ctx context.Context, id int) (domain.Plan, error) {
	plans, err := st.app.Plans.List(ctx)
	if err != nil {
		return domain.Plan{}, err
	}
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Plan{}, fmt.Errorf("plan %d: %w", id, domain.ErrNotFound)
}

// editPlanForm applies field assignments, then removals by 1-based position,
// then appended features.
func editPlanForm(f *service.PlanForm, pairs [][2]string, remove []int, add []string) error {
	for _, p := range pairs {
		if err := setPlanField(f, p[0], p[1]); err != nil {
			return err
		}
	}
	positions := slices.Clone(remove)
	slices.Sort(positions)
	positions = slices.Compact(positions)
	for i := len(positions) - 1; i >= 0; i-- {
		n := positions[i]
		if n < 1 || n > len(f.Features) {
			return domain.NewValidationError("caracteristicas", fmt.Sprintf("no feature at position %d", n))
		}
		f.RemoveFeature(n - 1)
	}
	for _, line := range add {
		f.AddFeature()
		f.SetFeature(len(f.Features)-1, line)
	}
	return nil
}

func setPlanField(f *service.PlanForm, name, value string) error {
	switch name {
	case "nombre":
		f.Name = value
	case "precio":
		f.Price = value
	case "estado":
		f.Status = domain.Status(value)
	case "caracteristicas":
		f.Features = strings.Split(value, "|")
	default:
		return domain.NewValidationError(name, "unknown field "+name)
	}
	return nil
}

func printPlans(w io.Writer, plans []domain.Plan) error {
	if len(plans) == 0 {
		say(w, "No plans.")
		return nil
	}
	t := newTable(w, "ID", "NAME", "PRICE", "STATUS", "FEATURES")
	for _, p := range plans {
		t.row(itoa(p.ID), p.Name, p.Price.String(), string(p.Status), strings.Join(p.Features, "; "))
	}
	return t.flush()
}
