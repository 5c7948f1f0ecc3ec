package cli

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/service"
)

func (st *state) adminsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Administrator accounts",
	}
	var query string
	list := &cobra.Command{
		Use:     "list",
		Short:   "List administrators",
		Args:    cobra.NoArgs,
		PreRunE: st.requireRoles(domain.RoleAdmin),
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := st.app.Directory.Admins(cmd.Context(), query)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "ID", "NAME", "EMAIL", "STATUS", "ACTION")
			for _, r := range rows {
				action := ""
				switch {
				case r.CanDeactivate:
					action = "deactivate"
				case r.CanActivate:
					action = "activate"
				}
				t.row(itoa(r.ID), r.FullName(), r.Email, string(r.Status), action)
			}
			return t.flush()
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "filter by name or email")
	cmd.AddCommand(list, st.toggleCmd("administrator", domain.RoleAdmin, func(ctx context.Context, id int) (domain.Status, error) {
		return st.app.Directory.ToggleAdmin(ctx, id)
	}))
	return cmd
}

func (st *state) businessesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "businesses",
		Short: "Registered businesses",
	}
	var query string
	list := &cobra.Command{
		Use:     "list",
		Short:   "List businesses",
		Args:    cobra.NoArgs,
		PreRunE: st.requireRoles(domain.RoleAdmin),
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := st.app.Directory.Businesses(cmd.Context(), query)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout(), "TENANT", "NAME", "OWNER", "EMAIL", "STATUS")
			for _, b := range rows {
				t.row(itoa(b.TenantID), b.Name, b.OwnerFullName(), b.Email, string(b.Status))
			}
			return t.flush()
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "filter by name, owner or email")
	cmd.AddCommand(list, st.toggleCmd("business", domain.RoleAdmin, func(ctx context.Context, id int) (domain.Status, error) {
		return st.app.Directory.ToggleBusiness(ctx, id)
	}))
	return cmd
}

func (st *state) customersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Every customer on the platform",
	}
	var filter service.CustomerFilter
	list := &cobra.Command{
		Use:     "list",
		Short:   "List customers",
		Args:    cobra.NoArgs,
		PreRunE: st.requireRoles(domain.RoleAdmin),
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := st.app.Directory.Customers(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printCustomers(cmd.OutOrStdout(), rows, true)
		},
	}
	list.Flags().StringVarP(&filter.Query, "query", "q", "", "filter by name, email, legal name or business")
	list.Flags().IntVar(&filter.TenantID, "tenant", 0, "only customers of this business")

	edit := &cobra.Command{
		Use:     "edit ID FIELD=VALUE...",
		Short:   "Edit a customer",
		Long:    "Edit a customer. Fields: nombre, apellido_paterno, apellido_materno, email, es_empresa, razon_social, es_generico.",
		Args:    cobra.MinimumNArgs(2),
		PreRunE: st.requireRoles(domain.RoleAdmin),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ed, err := st.app.Directory.BeginCustomerEdit(cmd.Context(), id)
			if err != nil {
				return err
			}
			return submitCustomerEdit(cmd, ed, args[1:])
		},
	}
	cmd.AddCommand(list, edit, st.toggleCmd("customer", domain.RoleAdmin, func(ctx context.Context, id int) (domain.Status, error) {
		return st.app.Directory.ToggleCustomer(ctx, id)
	}))
	return cmd
}

func (st *state) pendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Business signups awaiting review",
	}
	list := &cobra.Command{
		Use:     "list",
		Short:   "List pending signups",
		Args:    cobra.NoArgs,
		PreRunE: st.requireRoles(domain.RoleAdmin),
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := st.app.Review.List(cmd.Context())
			if err != nil {
				return err
			}
			return printPending(cmd.OutOrStdout(), items)
		},
	}
	decide := func(use, short string, fn func(*cobra.Command, int) (string, []service.PendingItem, error)) *cobra.Command {
		return &cobra.Command{
			Use:     use + " TENANT_ID",
			Short:   short,
			Args:    cobra.ExactArgs(1),
			PreRunE: st.requireRoles(domain.RoleAdmin),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				msg, items, err := fn(cmd, id)
				if err != nil {
					return err
				}
				say(cmd.OutOrStdout(), "%s", msg)
				return printPending(cmd.OutOrStdout(), items)
			},
		}
	}
	cmd.AddCommand(list,
		decide("approve", "Approve a signup", func(cmd *cobra.Command, id int) (string, []service.PendingItem, error) {
			return st.app.Review.Approve(cmd.Context(), id)
		}),
		decide("reject", "Reject a signup", func(cmd *cobra.Command, id int) (string, []service.PendingItem, error) {
			return st.app.Review.Reject(cmd.Context(), id)
		}),
	)
	return cmd
}

// toggleCmd flips an account between active and inactive.
func (st *state) toggleCmd(entity string, role domain.Role, toggle func(context.Context, int) (domain.Status, error)) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle ID",
		Short:   "Activate or deactivate a " + entity,
		Args:    cobra.ExactArgs(1),
		PreRunE: st.requireRoles(role),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			say(cmd.OutOrStdout(), "%s %d is now %s.", entity, id, status)
			return nil
		},
	}
}

func printPending(w io.Writer, items []service.PendingItem) error {
	if len(items) == 0 {
		say(w, "No signups awaiting review.")
		return nil
	}
	t := newTable(w, "TENANT", "BUSINESS", "EMAIL", "PLAN", "PRICE", "STATE", "PROOF")
	for _, it := range items {
		t.row(itoa(it.TenantID), it.Business.Name, it.Business.Email, it.Plan.Name, it.Plan.Price.String(), string(it.State), it.ProofLink)
	}
	return t.flush()
}

func printCustomers(w io.Writer, rows []domain.CustomerProfile, withBusiness bool) error {
	headers := []string{"ID", "NAME", "EMAIL", "LEGAL NAME", "STATUS"}
	if withBusiness {
		headers = append(headers, "BUSINESS")
	}
	t := newTable(w, headers...)
	for _, c := range rows {
		cols := []string{itoa(c.ID), c.FullName(), c.Email, c.LegalName, string(c.Status)}
		if withBusiness {
			cols = append(cols, strings.TrimSpace(c.BusinessName+" ("+itoa(c.TenantID)+")"))
		}
		t.row(cols...)
	}
	return t.flush()
}

// submitCustomerEdit applies field=value pairs to an open editor and submits.
func submitCustomerEdit(cmd *cobra.Command, ed *service.Editor[service.CustomerForm], args []string) error {
	pairs, err := assignments(args)
	if err != nil {
		return err
	}
	var setErr error
	ed.Update(func(f *service.CustomerForm) {
		for _, p := range pairs {
			if setErr = f.SetField(p[0], p[1]); setErr != nil {
				return
			}
		}
	})
	if setErr != nil {
		return setErr
	}
	if err := ed.Submit(cmd.Context()); err != nil {
		return err
	}
	say(cmd.OutOrStdout(), "Saved.")
	return nil
}
