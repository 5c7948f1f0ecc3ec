package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/microempresa/portal-client/internal/core/domain"
)

func (st *state) passwordResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password-reset",
		Short: "Reset a forgotten password with an emailed token",
	}

	var role string
	request := &cobra.Command{
		Use:   "request EMAIL",
		Short: "Email a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r domain.Role
			if role != "" {
				parsed, err := domain.ParseRole(role)
				if err != nil {
					return err
				}
				r = parsed
			}
			res, err := st.app.Reset.Request(cmd.Context(), args[0], r)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			say(w, "%s", res.Message)
			if res.NeedsRole() {
				names := make([]string, len(res.Roles))
				for i, r := range res.Roles {
					names[i] = r.String()
				}
				say(w, "Run again with --role, one of: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}
	request.Flags().StringVar(&role, "role", "", "account role when the email has several")

	var token, password, confirm string
	confirmCmd := &cobra.Command{
		Use:   "confirm",
		Short: "Set a new password with the emailed token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := st.app.Reset.Confirm(cmd.Context(), token, password, confirm)
			if err != nil {
				return err
			}
			say(cmd.OutOrStdout(), "%s", msg)
			return nil
		},
	}
	f := confirmCmd.Flags()
	f.StringVar(&token, "token", "", "token from the email")
	f.StringVar(&password, "password", "", "new password")
	f.StringVar(&confirm, "confirm", "", "new password again")

	cmd.AddCommand(request, confirmCmd)
	return cmd
}
