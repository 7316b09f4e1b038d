// Package identity establishes the per-session user identity used to
// attribute leaderboard submissions.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Config points the provider at the auth backend. An empty URL means the
// backend is unconfigured and a local identity is generated immediately.
type Config struct {
	URL   string // sign-in endpoint; empty disables remote sign-in
	Token string // optional custom token; anonymous sign-in when empty
}

// Provider resolves a stable identity string once per session. Bootstrap
// signs in against the backend when configured and falls back to a locally
// generated identifier on any failure. Readiness is signalled by a closed
// channel that is never torn down for the life of the session.
type Provider struct {
	cfg  Config
	http *http.Client
	log  logrus.FieldLogger

	mu     sync.RWMutex
	userID string

	ready chan struct{}
	once  sync.Once
}

// New builds an unbootstrapped provider. A nil httpClient falls back to
// http.DefaultClient.
func New(cfg Config, httpClient *http.Client, log logrus.FieldLogger) *Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Provider{
		cfg:   cfg,
		http:  httpClient,
		log:   log,
		ready: make(chan struct{}),
	}
}

type signInRequest struct {
	Token string `json:"token,omitempty"`
}

type signInResponse struct {
	UserID string `json:"userId"`
}

// Bootstrap resolves the identity. It is safe to call concurrently; only
// the first call does work. It never returns an error: every failure path
// degrades to a local identity so quiz-taking is unaffected.
func (p *Provider) Bootstrap(ctx context.Context) {
	p.once.Do(func() {
		defer close(p.ready)

		id, err := p.signIn(ctx)
		if err != nil {
			if p.cfg.URL != "" {
				p.log.WithError(err).Warn("identity sign-in failed, using local identity")
			}
			id = uuid.NewString()
		}

		p.mu.Lock()
		p.userID = id
		p.mu.Unlock()
	})
}

func (p *Provider) signIn(ctx context.Context) (string, error) {
	if p.cfg.URL == "" {
		return "", fmt.Errorf("auth backend not configured")
	}

	body, err := json.Marshal(signInRequest{Token: p.cfg.Token})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("sign-in failed with status %d", resp.StatusCode)
	}
	var payload signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode sign-in response: %w", err)
	}
	if payload.UserID == "" {
		return "", fmt.Errorf("sign-in response missing user id")
	}
	return payload.UserID, nil
}

// Ready reports whether the identity has been resolved.
func (p *Provider) Ready() bool {
	select {
	case <-p.ready:
		return true
	default:
		return false
	}
}

// WaitReady blocks until the identity is resolved or ctx is done.
func (p *Provider) WaitReady(ctx context.Context) error {
	select {
	case <-p.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UserID returns the resolved identity, or an empty string before Bootstrap
// completes.
func (p *Provider) UserID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.userID
}
