package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/service"
)

func (st *state) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View or edit the signed-in profile",
	}

	show := &cobra.Command{
		Use:     "show",
		Short:   "Show the editable profile fields",
		Args:    cobra.NoArgs,
		PreRunE: st.requireRoles(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := st.app.Profile.Form()
			if err != nil {
				return err
			}
			return printProfileForm(cmd.OutOrStdout(), form)
		},
	}

	set := &cobra.Command{
		Use:     "set FIELD=VALUE...",
		Short:   "Change profile fields and save",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: st.requireRoles(),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := assignments(args)
			if err != nil {
				return err
			}
			form, err := st.app.Profile.Form()
			if err != nil {
				return err
			}
			for _, p := range pairs {
				if err := form.SetField(p[0], p[1]); err != nil {
					return err
				}
			}
			if _, err := st.app.Profile.Save(cmd.Context(), form); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			say(w, "Profile saved.")
			printIdentity(w, st.app.Session.Identity())
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}

func printProfileForm(w io.Writer, f service.ProfileForm) error {
	t := newTable(w, "FIELD", "VALUE")
	domain.OnRole(f.Role,
		func() struct{} {
			t.row("nombre", f.Name)
			t.row("apellido_paterno", f.PaternalSurname)
			t.row("apellido_materno", f.MaternalSurname)
			return struct{}{}
		},
		func() struct{} {
			t.row("nombre", f.BusinessName)
			t.row("logo_url", f.LogoURL)
			t.row("tipo_tienda", string(f.StoreType))
			if f.StoreType != domain.StoreVirtual {
				t.row("direccion", f.Address)
				t.row("horario_inicio", f.Hours.Opens)
				t.row("horario_fin", f.Hours.Closes)
			}
			t.row("nombre_propietario", f.OwnerName)
			t.row("apellido_paterno_propietario", f.OwnerPaternalSurname)
			t.row("apellido_materno_propietario", f.OwnerMaternalSurname)
			return struct{}{}
		},
		func() struct{} {
			t.row("nombre", f.Name)
			t.row("apellido_paterno", f.PaternalSurname)
			t.row("apellido_materno", f.MaternalSurname)
			t.row("es_empresa", yesNo(f.IsCompany))
			if f.IsCompany {
				t.row("razon_social", f.LegalName)
			}
			return struct{}{}
		},
	)
	return t.flush()
}
