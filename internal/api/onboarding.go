package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

// StartSignup creates (201) or updates (200) the signup details.
func (c *Client) StartSignup(ctx context.Context, in ports.StartSignup) (*domain.StartResult, error) {
	var out domain.StartResult
	resp, err := c.call(ctx, "onboarding_start", http.MethodPost, "/api/onboarding/microempresa/start", in, &out)
	if err != nil {
		return nil, err
	}
	out.Created = resp.Meta.Status == http.StatusCreated
	return &out, nil
}

// SubmitProof uploads the payment proof as multipart form data.
func (c *Client) SubmitProof(ctx context.Context, in ports.SubmitProof) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("signup_id", strconv.Itoa(in.SignupID)); err != nil {
		return "", err
	}
	if err := w.WriteField("id_plan", strconv.Itoa(in.PlanID)); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("file", filepath.Base(in.File.Name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, in.File.Content); err != nil {
		return "", fmt.Errorf("onboarding_submit: read attachment: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	resp, err := c.send(ctx, "onboarding_submit", http.MethodPost, "/api/onboarding/microempresa/submit", &buf, w.FormDataContentType())
	if err != nil {
		return "", err
	}
	if !resp.Meta.OK {
		return "", fmt.Errorf("onboarding_submit: %w", mapError(resp))
	}
	var ans messageOnly
	_ = resp.Decode(&ans)
	return ans.Message, nil
}

func (c *Client) SignupStatus(ctx context.Context, signupID int) (*domain.OnboardingStatus, error) {
	q := url.Values{"signup_id": {strconv.Itoa(signupID)}}
	var out domain.OnboardingStatus
	if _, err := c.call(ctx, "onboarding_status", http.MethodGet, "/api/onboarding/microempresa/status?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPending(ctx context.Context) ([]domain.PendingSignup, error) {
	var body struct {
		Pending []domain.PendingSignup `json:"pendientes"`
	}
	if _, err := c.call(ctx, "onboarding_pending", http.MethodGet, "/api/onboarding/microempresa/pending", nil, &body); err != nil {
		return nil, err
	}
	return body.Pending, nil
}

func (c *Client) Approve(ctx context.Context, tenantID int) (string, error) {
	return c.message(ctx, "onboarding_approve", http.MethodPatch, fmt.Sprintf("/api/onboarding/microempresa/%d/approve", tenantID), nil)
}

func (c *Client) Reject(ctx context.Context, tenantID int) (string, error) {
	return c.message(ctx, "onboarding_reject", http.MethodPatch, fmt.Sprintf("/api/onboarding/microempresa/%d/reject", tenantID), nil)
}
