package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
	"github.com/microempresa/portal-client/internal/pkg/metrics"
)

// Draft store keys.
const (
	keyWizard        = "onboarding.wizard"
	keyPasswordReset = "password_reset"
	keyCookies       = "session.cookies"
)

// Drafts is the single accessor for every record the client persists. Each
// record is one JSON value under one key.
type Drafts struct {
	store  ports.KVStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewDrafts(store ports.KVStore, logger zerolog.Logger) *Drafts {
	return &Drafts{store: store, logger: logger, now: time.Now}
}

// LoadWizard returns the saved wizard draft, or a fresh one when nothing is
// saved, the record is unreadable, or it was written under another schema
// version.
func (d *Drafts) LoadWizard(ctx context.Context) (*domain.WizardDraft, error) {
	draft := &domain.WizardDraft{}
	found, err := d.load(ctx, keyWizard, draft)
	if err != nil {
		return nil, err
	}
	if !found {
		return domain.NewWizardDraft(), nil
	}
	if draft.Version != domain.WizardDraftVersion {
		metrics.DraftOpsTotal.WithLabelValues("load", "stale").Inc()
		d.logger.Info().Int("version", draft.Version).Msg("discarding wizard draft from another version")
		return domain.NewWizardDraft(), nil
	}
	draft.Form.Password = ""
	draft.Form.StoreType = draft.Form.StoreType.Normalize()
	return draft, nil
}

func (d *Drafts) SaveWizard(ctx context.Context, draft *domain.WizardDraft) error {
	draft.Version = domain.WizardDraftVersion
	draft.UpdatedAt = d.now().UTC()
	return d.save(ctx, keyWizard, draft)
}

func (d *Drafts) ClearWizard(ctx context.Context) error {
	return d.clear(ctx, keyWizard)
}

// PasswordResetDraft keeps the reset flow alive across restarts.
type PasswordResetDraft struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role,omitempty"`
}

func (d *Drafts) LoadPasswordReset(ctx context.Context) (*PasswordResetDraft, error) {
	var pr PasswordResetDraft
	if _, err := d.load(ctx, keyPasswordReset, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

func (d *Drafts) SavePasswordReset(ctx context.Context, pr PasswordResetDraft) error {
	return d.save(ctx, keyPasswordReset, pr)
}

func (d *Drafts) ClearPasswordReset(ctx context.Context) error {
	return d.clear(ctx, keyPasswordReset)
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadCookies returns the session cookies saved by a previous run.
func (d *Drafts) LoadCookies(ctx context.Context) ([]*http.Cookie, error) {
	var saved []savedCookie
	if _, err := d.load(ctx, keyCookies, &saved); err != nil {
		return nil, err
	}
	out := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out, nil
}

// SaveCookies stores the session cookies; an empty list clears them.
func (d *Drafts) SaveCookies(ctx context.Context, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return d.clear(ctx, keyCookies)
	}
	saved := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}
	return d.save(ctx, keyCookies, saved)
}

// Ping checks the backing store.
func (d *Drafts) Ping(ctx context.Context) error {
	return d.store.Ping(ctx)
}

func (d *Drafts) load(ctx context.Context, key string, v any) (bool, error) {
	b, err := d.store.Get(ctx, key)
	if errors.Is(err, ports.ErrKeyNotFound) {
		metrics.DraftOpsTotal.WithLabelValues("load", "miss").Inc()
		return false, nil
	}
	if err != nil {
		metrics.DraftOpsTotal.WithLabelValues("load", "error").Inc()
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		metrics.DraftOpsTotal.WithLabelValues("load", "stale").Inc()
		d.logger.Warn().Err(err).Str("key", key).Msg("unreadable draft ignored")
		return false, nil
	}
	metrics.DraftOpsTotal.WithLabelValues("load", "ok").Inc()
	return true, nil
}

func (d *Drafts) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := d.store.Set(ctx, key, b); err != nil {
		metrics.DraftOpsTotal.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("save %s: %w", key, err)
	}
	metrics.DraftOpsTotal.WithLabelValues("save", "ok").Inc()
	return nil
}

func (d *Drafts) clear(ctx context.Context, key string) error {
	if err := d.store.Delete(ctx, key); err != nil {
		metrics.DraftOpsTotal.WithLabelValues("clear", "error").Inc()
		return fmt.Errorf("clear %s: %w", key, err)
	}
	metrics.DraftOpsTotal.WithLabelValues("clear", "ok").Inc()
	return nil
}
