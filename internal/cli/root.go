// Package cli is the terminal front end of the platform client. Each command
// maps to one screen or action of the web client.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/pkg/config"
	"github.com/microempresa/portal-client/pkg/logger"
)

// Options configures the root command. Zero values use the process
// environment and standard streams.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Config skips environment loading when set.
	Config *config.Config
}

type state struct {
	opts    Options
	envFile string
	apiBase string
	app     *App
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	root, _ := newRoot(opts)
	return root
}

func newRoot(opts Options) (*cobra.Command, *state) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	st := &state{opts: opts}

	root := &cobra.Command{
		Use:           "portal",
		Short:         "Client for the small-business management platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return st.close(cmd.Context())
		},
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.PersistentFlags().StringVar(&st.envFile, "env-file", ".env", "dotenv file read before the environment")
	root.PersistentFlags().StringVar(&st.apiBase, "api-base", "", "platform API base URL (overrides PORTAL_API_BASE)")

	root.AddCommand(
		st.loginCmd(),
		st.guestCmd(),
		st.registerCmd(),
		st.logoutCmd(),
		st.whoamiCmd(),
		st.switchRoleCmd(),
		st.dashboardCmd(),
		st.adminsCmd(),
		st.businessesCmd(),
		st.customersCmd(),
		st.myCustomersCmd(),
		st.plansCmd(),
		st.pendingCmd(),
		st.profileCmd(),
		st.passwordResetCmd(),
		st.signupCmd(),
		st.doctorCmd(),
	)
	return root, st
}

func (st *state) open(ctx context.Context) error {
	if st.app != nil {
		return nil
	}
	cfg := st.opts.Config
	if cfg == nil {
		loaded, err := config.LoadFile(ctx, st.envFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if st.apiBase != "" {
		cp := *cfg
		cp.APIBase = st.apiBase
		cfg = &cp
	}
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: st.opts.Err,
		App:    "portal",
	})
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	st.app = app
	return nil
}

func (st *state) close(ctx context.Context) error {
	if st.app == nil {
		return nil
	}
	err := st.app.Close(ctx)
	st.app = nil
	return err
}

// Execute runs the CLI and returns the process exit code. Failures are
// reported as the message the web client would show.
func Execute(ctx context.Context, args []string, opts Options) int {
	root, st := newRoot(opts)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	// a failed command skips PersistentPostRunE
	if cerr := st.close(ctx); err == nil {
		err = cerr
	}
	if err == nil {
		return 0
	}
	errOut := root.ErrOrStderr()
	_, _ = io.WriteString(errOut, "error: "+domain.UserMessage(err, err.Error())+"\n")
	return 1
}
