package cli

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

func (st *state) loginCmd() *cobra.Command {
	var username, password, role string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var r domain.Role
			if role != "" {
				parsed, err := domain.ParseRole(role)
				if err != nil {
					return err
				}
				r = parsed
			}
			ctx := cmd.Context()
			out, err := st.app.Session.Login(ctx, username, password, r)
			if err != nil {
				return err
			}
			identity := out.Identity
			if out.NeedsRole() {
				chosen, err := pickRole(cmd, out.Roles)
				if err != nil {
					return err
				}
				if identity, err = st.app.Session.ChooseRole(ctx, chosen); err != nil {
					return err
				}
			}
			printIdentity(cmd.OutOrStdout(), identity)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.Flags().StringVar(&role, "role", "", "role to sign in as when the account has several")
	return cmd
}

// pickRole asks on stdin which of roles to continue with. A number or a role
// name is accepted.
func pickRole(cmd *cobra.Command, roles []domain.Role) (domain.Role, error) {
	w := cmd.OutOrStdout()
	say(w, "This account has several roles:")
	for i, r := range roles {
		say(w, "  %d) %s (%s)", i+1, r.Label(), r)
	}
	say(w, "Choose one:")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" && err != nil {
		return "", domain.ErrRoleSelectionRequired
	}
	if n, convErr := strconv.Atoi(line); convErr == nil {
		if n < 1 || n > len(roles) {
			return "", domain.NewValidationError("role", "choose a number between 1 and "+strconv.Itoa(len(roles)))
		}
		return roles[n-1], nil
	}
	r, err := domain.ParseRole(line)
	if err != nil {
		return "", err
	}
	for _, avail := range roles {
		if avail == r {
			return r, nil
		}
	}
	return "", domain.NewValidationError("role", "that role is not offered for this account")
}

func (st *state) guestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Continue as a guest customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			identity, err := st.app.Session.GuestLogin(cmd.Context())
			if err != nil {
				return err
			}
			printIdentity(cmd.OutOrStdout(), identity)
			return nil
		},
	}
}

func (st *state) registerCmd() *cobra.Command {
	var in ports.RegisterInput
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an administrator or customer account",
		Long:  "Create an administrator or customer account. Businesses sign up with `portal signup`.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			in.Role = r
			in.IsCompany = strings.TrimSpace(in.LegalName) != ""
			identity, err := st.app.Session.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			printIdentity(cmd.OutOrStdout(), identity)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&role, "role", string(domain.RoleCustomer), "super_usuario or cliente")
	f.StringVar(&in.Name, "name", "", "first name")
	f.StringVar(&in.PaternalSurname, "paternal-surname", "", "paternal surname")
	f.StringVar(&in.MaternalSurname, "maternal-surname", "", "maternal surname")
	f.StringVar(&in.Email, "email", "", "email")
	f.StringVar(&in.Password, "password", "", "password")
	f.StringVar(&in.LegalName, "legal-name", "", "company legal name; registers a company customer")
	return cmd
}

func (st *state) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st.app.Session.Logout(cmd.Context())
			say(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func (st *state) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and its menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			identity, err := st.app.Session.LoadIdentity(cmd.Context())
			if err != nil {
				return err
			}
			printIdentity(cmd.OutOrStdout(), identity)
			return nil
		},
	}
}

func (st *state) switchRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "switch-role ROLE",
		Short:   "Continue as another role of the same account",
		Args:    cobra.ExactArgs(1),
		PreRunE: st.requireRoles(),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := domain.ParseRole(args[0])
			if err != nil {
				return err
			}
			identity, err := st.app.Session.SwitchRole(cmd.Context(), r)
			if err != nil {
				return err
			}
			printIdentity(cmd.OutOrStdout(), identity)
			return nil
		},
	}
}
