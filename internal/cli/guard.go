package cli

import (
	"github.com/spf13/cobra"

	"github.com/microempresa/portal-client/internal/core/domain"
)

// requireRoles loads the session and refuses the command unless the signed-in
// role is one of roles. An empty list only requires a session.
func (st *state) requireRoles(roles ...domain.Role) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if _, err := st.app.Session.LoadIdentity(cmd.Context()); err != nil {
			return err
		}
		_, err := st.app.Session.Require(roles...)
		return err
	}
}

// menu lists the commands offered to a role.
func menu(identity *domain.Identity) []string {
	items := domain.OnRole(identity.Role,
		func() []string {
			return []string{"dashboard", "admins", "businesses", "customers", "plans", "pending", "profile"}
		},
		func() []string { return []string{"dashboard", "my-customers", "profile"} },
		func() []string { return []string{"dashboard", "profile"} },
	)
	if len(identity.AvailableRoles) > 1 {
		items = append(items, "switch-role")
	}
	return append(items, "logout")
}
