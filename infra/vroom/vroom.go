// Package vroom adapts a VROOM (vroom-express) server to the routing.Solver
// interface. The problem is sent with a custom duration matrix so VROOM never
// needs its own routing backend.
package vroom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kilianp07/fieldroute/auth"
	"github.com/kilianp07/fieldroute/core/factory"
	"github.com/kilianp07/fieldroute/core/routing"
)

const defaultTimeout = 10 * time.Second

// Config is the factory configuration of the "vroom" solver type.
type Config struct {
	URL     string        `json:"url"`
	Timeout time.Duration `json:"timeout"`
	// Auth enables OAuth2 client credentials for hosted servers.
	Auth *auth.Conf `json:"auth"`
}

func init() {
	_ = routing.RegisterSolver("vroom", func(conf map[string]any) (routing.Solver, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return New(c)
	})
}

// Solver posts problems to a VROOM server.
type Solver struct {
	url    string
	client *http.Client
	cred   *auth.ClientCred
}

// New validates cfg and returns a Solver.
func New(cfg Config) (*Solver, error) {
	if cfg.URL == "" {
		return nil, errors.New("vroom: url required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	s := &Solver{
		url:    strings.TrimSuffix(cfg.URL, "/") + "/",
		client: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.Auth.Enabled() {
		s.cred = auth.NewClientCred(*cfg.Auth)
	}
	return s, nil
}

// Name implements routing.Solver.
func (s *Solver) Name() string { return "vroom" }

// Solve implements routing.Solver.
func (s *Solver) Solve(ctx context.Context, p *routing.Problem) (*routing.Solution, error) {
	body, err := json.Marshal(encode(p))
	if err != nil {
		return nil, fmt.Errorf("vroom: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vroom: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cred != nil {
		if err := s.cred.SetAuthHeader(req); err != nil {
			return nil, fmt.Errorf("vroom: %w", err)
		}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vroom: request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("vroom: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("vroom: decode: %w", err)
	}
	if out.Code != 0 {
		return nil, fmt.Errorf("vroom: code %d: %s", out.Code, out.Error)
	}
	return decode(p, &out), nil
}
