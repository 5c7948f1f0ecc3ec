package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
	"github.com/microempresa/portal-client/internal/core/service"
)

// signupCmd drives the business signup wizard. The draft is kept in the
// configured store, so each step can run in its own invocation.
func (st *state) signupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a business: datos, plan, pago, espera",
	}

	show := &cobra.Command{
		Use:   "show [STEP]",
		Short: "Enter a step and show where the wizard lands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			step := service.StepDetails
			if len(args) == 1 {
				parsed, err := service.ParseStep(args[0])
				if err != nil {
					return err
				}
				step = parsed
			}
			out, err := st.app.Wizard.Enter(cmd.Context(), step)
			if err != nil {
				return err
			}
			return printOutcome(cmd.OutOrStdout(), out)
		},
	}

	set := &cobra.Command{
		Use:   "set FIELD=VALUE...",
		Short: "Fill in business details without submitting",
		Long: "Fill in business details without submitting. Fields: tipo_tienda, nombre, logo_url, direccion, " +
			"horario_inicio, horario_fin, nombre_propietario, apellido_paterno_propietario, " +
			"apellido_materno_propietario, email.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.setSignupFields(cmd, args); err != nil {
				return err
			}
			d, err := st.app.Wizard.Draft(cmd.Context())
			if err != nil {
				return err
			}
			printDraft(cmd.OutOrStdout(), d)
			return nil
		},
	}

	var password string
	details := &cobra.Command{
		Use:   "details [FIELD=VALUE...]",
		Short: "Submit the business details and continue to plan selection",
		Long: "Submit the business details. The password is never stored, so pass --password " +
			"when the registration is first created.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := st.setSignupFields(cmd, args); err != nil {
				return err
			}
			if password != "" {
				if err := st.app.Wizard.SetField(ctx, "password", password); err != nil {
					return err
				}
			}
			out, err := st.app.Wizard.SubmitDetails(ctx)
			if err != nil {
				return err
			}
			return printOutcome(cmd.OutOrStdout(), out)
		},
	}
	details.Flags().StringVar(&password, "password", "", "account password")

	plans := &cobra.Command{
		Use:   "plans",
		Short: "List the plans on sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := st.app.Wizard.Enter(cmd.Context(), service.StepPlan)
			if err != nil {
				return err
			}
			return printOutcome(cmd.OutOrStdout(), out)
		},
	}

	choose := &cobra.Command{
		Use:   "choose PLAN_ID",
		Short: "Select a plan and continue to payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := st.app.Wizard.SelectPlanByID(ctx, id); err != nil {
				return err
			}
			out, err := st.app.Wizard.ContinueToPayment(ctx)
			if err != nil {
				return err
			}
			return printOutcome(cmd.OutOrStdout(), out)
		},
	}

	var proof string
	pay := &cobra.Command{
		Use:   "pay --file PATH",
		Short: "Upload the payment proof",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(proof)
			if err != nil {
				return domain.NewValidationError("comprobante", "attach the payment proof: "+err.Error())
			}
			defer f.Close()
			out, err := st.app.Wizard.SubmitProof(cmd.Context(), ports.Attachment{Name: filepath.Base(proof), Content: f})
			if err != nil {
				return err
			}
			return printOutcome(cmd.OutOrStdout(), out)
		},
	}
	pay.Flags().StringVar(&proof, "file", "", "payment proof image or PDF")
	_ = pay.MarkFlagRequired("file")

	var png string
	qr := &cobra.Command{
		Use:   "qr",
		Short: "Show the payment QR code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := st.app.Wizard.PaymentQR(cmd.Context())
			if err != nil {
				return err
			}
			text, err := payload.Encode()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if png != "" {
				if err := qrcode.WriteFile(text, qrcode.Medium, 256, png); err != nil {
					return err
				}
				say(w, "QR written to %s", png)
				return nil
			}
			code, err := qrcode.New(text, qrcode.Medium)
			if err != nil {
				return err
			}
			io.WriteString(w, code.ToSmallString(false))
			say(w, "%s", text)
			return nil
		},
	}
	qr.Flags().StringVar(&png, "png", "", "write the QR code as a PNG file instead")

	status := &cobra.Command{
		Use:   "status",
		Short: "Check whether the registration was reviewed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := st.app.Wizard.Enter(cmd.Context(), service.StepWaiting)
			if err != nil {
				return err
			}
			return printOutcome(cmd.OutOrStdout(), out)
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Discard the registration in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := st.app.Wizard.Reset(cmd.Context()); err != nil {
				return err
			}
			say(cmd.OutOrStdout(), "Registration discarded.")
			return nil
		},
	}

	cmd.AddCommand(show, set, details, plans, choose, pay, qr, status, reset)
	return cmd
}

func (st *state) setSignupFields(cmd *cobra.Command, args []string) error {
	pairs, err := assignments(args)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if err := st.app.Wizard.SetField(cmd.Context(), p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

func printOutcome(w io.Writer, out *service.Outcome) error {
	say(w, "step: %s", out.Step)
	if out.Message != "" {
		say(w, "%s", out.Message)
	}
	switch out.Step {
	case service.StepPlan:
		if len(out.Plans) == 0 {
			say(w, "No plans on sale.")
			return nil
		}
		t := newTable(w, "ID", "PLAN", "PRICE", "FEATURES", "")
		for _, p := range out.Plans {
			mark := ""
			if p.ID == out.Draft.PlanID {
				mark = "selected"
			}
			t.row(itoa(p.ID), p.Name, p.Price.String(), itoa(len(p.Features)), mark)
		}
		return t.flush()
	case service.StepPayment:
		if out.Draft.HasPlan() {
			say(w, "plan: %s (%s)", out.Draft.PlanName, out.Draft.PlanPrice)
		}
	case service.StepWaiting:
		if s := out.Status; s != nil {
			say(w, "state: %s  proof: %s", s.State, yesNo(s.HasProof))
		}
	default:
		printDraft(w, out.Draft)
	}
	return nil
}

func printDraft(w io.Writer, d domain.WizardDraft) {
	f := d.Form
	t := newTable(w, "FIELD", "VALUE")
	t.row("tipo_tienda", string(f.StoreType.Normalize()))
	t.row("nombre", f.Name)
	t.row("logo_url", f.LogoURL)
	if f.StoreType.Normalize() == domain.StorePhysical {
		t.row("direccion", f.Address)
		t.row("horario_inicio", f.Hours.Opens)
		t.row("horario_fin", f.Hours.Closes)
	}
	t.row("nombre_propietario", f.OwnerName)
	t.row("apellido_paterno_propietario", f.OwnerPaternalSurname)
	t.row("apellido_materno_propietario", f.OwnerMaternalSurname)
	t.row("email", f.Email)
	if d.HasSignup() {
		t.row("signup", itoa(d.SignupID))
	}
	_ = t.flush()
}
