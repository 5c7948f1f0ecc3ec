package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/microempresa/portal-client/internal/core/domain"
)

func (st *state) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Short:   "Show the dashboard of the signed-in role",
		Args:    cobra.NoArgs,
		PreRunE: st.requireRoles(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := st.app.Cache.Ensure(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printIdentity(w, st.app.Session.Identity())
			if d == nil {
				return nil
			}
			return domain.OnRole(d.Role,
				func() error { return adminDashboard(w, d) },
				func() error { return businessDashboard(w, d) },
				func() error { return customerDashboard(w, d) },
			)
		},
	}
}

func adminDashboard(w io.Writer, d *domain.Dashboard) error {
	say(w, "")
	t := newTable(w, "", "TOTAL", "INACTIVE")
	t.row("administrators", itoa(len(d.Admins)), itoa(len(d.InactiveAdmins())))
	t.row("businesses", itoa(len(d.Businesses)), itoa(len(d.InactiveBusinesses())))
	t.row("customers", itoa(len(d.Customers)), itoa(len(d.InactiveCustomers())))
	if err := t.flush(); err != nil {
		return err
	}
	if n := d.PendingBusinesses(); n > 0 {
		say(w, "\n%d business(es) awaiting review: run `portal pending list`.", n)
	}
	return nil
}

func businessDashboard(w io.Writer, d *domain.Dashboard) error {
	say(w, "")
	if b := d.Business; b != nil {
		say(w, "%s <%s> %s", b.Name, b.Email, b.Status)
		if b.IsVirtual() {
			say(w, "online store")
		} else {
			say(w, "%s, %s", b.Address, b.OpeningHours)
		}
	}
	say(w, "customers: %d  products: %d", d.Counts.Customers, d.Counts.Products)
	return nil
}

func customerDashboard(w io.Writer, d *domain.Dashboard) error {
	say(w, "")
	t := newTable(w, "TENANT", "BUSINESS", "EMAIL", "TYPE", "STATUS")
	for _, s := range d.Shops {
		t.row(itoa(s.TenantID), s.Name, s.Email, string(s.StoreType.Normalize()), string(s.Status))
	}
	return t.flush()
}
