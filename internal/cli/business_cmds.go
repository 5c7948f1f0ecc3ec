package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/service"
)

func (st *state) myCustomersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "my-customers",
		Short: "Customers of the signed-in business",
	}

	var q service.CustomerQuery
	list := &cobra.Command{
		Use:     "list",
		Short:   "List customers",
		Args:    cobra.NoArgs,
		PreRunE: st.requireRoles(domain.RoleBusiness),
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := st.app.Customers.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printCustomers(cmd.OutOrStdout(), rows, false)
		},
	}
	list.Flags().StringVarP(&q.Query, "query", "q", "", "filter by name, email or legal name")
	list.Flags().BoolVar(&q.All, "all", false, "include inactive customers")

	add := &cobra.Command{
		Use:     "add FIELD=VALUE...",
		Short:   "Register a customer",
		Long:    "Register a customer. Fields: nombre, apellido_paterno, apellido_materno, email, password, es_empresa, razon_social, es_generico.",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: st.requireRoles(domain.RoleBusiness),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := assignments(args)
			if err != nil {
				return err
			}
			var form service.CustomerForm
			for _, p := range pairs {
				if err := form.SetField(p[0], p[1]); err != nil {
					return err
				}
			}
			if err := st.app.Customers.Register(cmd.Context(), form); err != nil {
				return err
			}
			say(cmd.OutOrStdout(), "Customer registered.")
			return nil
		},
	}

	edit := &cobra.Command{
		Use:     "edit ID FIELD=VALUE...",
		Short:   "Edit a customer",
		Args:    cobra.MinimumNArgs(2),
		PreRunE: st.requireRoles(domain.RoleBusiness),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ed, err := st.app.Customers.BeginEdit(cmd.Context(), id)
			if err != nil {
				return err
			}
			return submitCustomerEdit(cmd, ed, args[1:])
		},
	}

	cmd.AddCommand(list, add, edit, st.toggleCmd("customer", domain.RoleBusiness, func(ctx context.Context, id int) (domain.Status, error) {
		return st.app.Customers.Toggle(ctx, id)
	}))
	return cmd
}
