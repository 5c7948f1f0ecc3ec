package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/api"
	"github.com/microempresa/portal-client/internal/core/ports"
	"github.com/microempresa/portal-client/internal/core/service"
	"github.com/microempresa/portal-client/internal/infrastructure/db/file"
	redisstore "github.com/microempresa/portal-client/internal/infrastructure/db/redis"
	"github.com/microempresa/portal-client/internal/pkg/config"
	"github.com/microempresa/portal-client/internal/pkg/metrics"
)

// App is the wired client for one CLI invocation. Cookies are restored from
// the draft store on start and written back on Close, so a session outlives
// the process.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Client *api.Client
	Store  ports.KVStore
	Drafts *service.Drafts

	Cache     *service.DashboardCache
	Session   *service.Session
	Directory *service.Directory
	Customers *service.CustomerBook
	Plans     *service.PlanAdmin
	Review    *service.ReviewQueue
	Profile   *service.ProfileEditor
	Reset     *service.PasswordReset
	Wizard    *service.Wizard

	closers []func() error
}

func NewApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	client, err := api.NewClient(cfg.APIBase,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(log.With().Str("component", "api").Logger()),
	)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: log, Client: client}
	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	a.Drafts = service.NewDrafts(a.Store, log.With().Str("component", "drafts").Logger())

	cookies, err := a.Drafts.LoadCookies(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("saved session not restored")
	} else {
		client.SetCookies(cookies)
	}

	svcLog := log.With().Str("component", "service").Logger()
	a.Cache = service.NewDashboardCache(client, svcLog)
	a.Session = service.NewSession(client, a.Cache, svcLog)
	a.Directory = service.NewDirectory(client, a.Session, a.Cache, svcLog)
	a.Customers = service.NewCustomerBook(client, a.Session, a.Cache, svcLog)
	a.Plans = service.NewPlanAdmin(client, a.Session, svcLog)
	a.Review = service.NewReviewQueue(client, a.Session, a.Cache, client.BaseURL(), svcLog)
	a.Profile = service.NewProfileEditor(client, a.Session, a.Cache, svcLog)
	a.Reset = service.NewPasswordReset(client, a.Drafts, svcLog)
	a.Wizard = service.NewWizard(client, client, a.Drafts, svcLog)
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.Store.Backend {
	case config.BackendRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     a.Config.Redis.Addr,
			DB:       a.Config.Redis.DB,
			Password: a.Config.Redis.Password,
		})
		if err != nil {
			return err
		}
		a.Store = redisstore.NewDraftStore(rdb, a.Config.Redis.Prefix, a.Config.Redis.TTL)
		a.closers = append(a.closers, rdb.Close)
	case config.BackendFile, "":
		a.Store = file.NewStore(a.Config.Store.Path)
	default:
		return fmt.Errorf("unknown store backend %q", a.Config.Store.Backend)
	}
	return nil
}

// Close saves the session cookies, writes the metrics textfile when one is
// configured and releases the store.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Drafts.SaveCookies(ctx, a.Client.Cookies()); err != nil {
		errs = append(errs, err)
	}
	if a.Config.MetricsFile != "" {
		if err := metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("metrics textfile: %w", err))
		}
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
