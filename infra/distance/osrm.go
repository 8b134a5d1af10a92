package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kilianp07/fieldroute/auth"
	"github.com/kilianp07/fieldroute/core/geo"
	"github.com/kilianp07/fieldroute/core/logger"
)

// DefaultMaxPoints is the largest table the public OSRM server accepts.
const DefaultMaxPoints = 80

// OSRMProvider fetches duration matrices from the OSRM table service.
type OSRMProvider struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxPoints  int
	cred       *auth.ClientCred
	log        logger.Logger
}

// Option configures an OSRMProvider.
type Option func(*OSRMProvider)

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(p *OSRMProvider) { p.httpClient.Timeout = d }
}

// WithRate limits requests per second. Zero or less disables limiting.
func WithRate(perSecond float64) Option {
	return func(p *OSRMProvider) {
		if perSecond <= 0 {
			p.limiter = nil
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithMaxPoints caps the number of coordinates per request.
func WithMaxPoints(n int) Option {
	return func(p *OSRMProvider) { p.maxPoints = n }
}

// WithAuth signs requests with OAuth2 client-credentials tokens.
func WithAuth(conf auth.Conf) Option {
	return func(p *OSRMProvider) { p.cred = auth.NewClientCred(conf) }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *OSRMProvider) {
		if l != nil {
			p.log = l
		}
	}
}

// NewOSRMProvider creates a provider for the OSRM server at baseURL.
func NewOSRMProvider(baseURL string, opts ...Option) *OSRMProvider {
	p := &OSRMProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		maxPoints:  DefaultMaxPoints,
		log:        nopLogger{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

type osrmTableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Durations [][]*float64 `json:"durations"`
}

// Durations implements geo.MatrixProvider. Durations are rounded to whole
// seconds; an unroutable pair fails the whole request.
func (p *OSRMProvider) Durations(ctx context.Context, points []geo.Point) ([][]int, error) {
	n := len(points)
	if n == 0 {
		return [][]int{}, nil
	}
	if p.maxPoints > 0 && n > p.maxPoints {
		return nil, fmt.Errorf("osrm: %d points exceeds limit of %d", n, p.maxPoints)
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("osrm: rate limit: %w", err)
		}
	}

	coords := make([]string, n)
	for i, pt := range points {
		coords[i] = fmt.Sprintf("%.6f,%.6f", pt.Lon, pt.Lat)
	}
	queryURL := fmt.Sprintf("%s/table/v1/driving/%s?annotations=duration", p.baseURL, strings.Join(coords, ";"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("osrm: %w", err)
	}
	if p.cred != nil {
		if err := p.cred.SetAuthHeader(req); err != nil {
			return nil, fmt.Errorf("osrm: %w", err)
		}
	}
	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osrm: request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("osrm: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var tr osrmTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("osrm: decode: %w", err)
	}
	if tr.Code != "Ok" {
		return nil, fmt.Errorf("osrm: %s: %s", tr.Code, tr.Message)
	}
	if len(tr.Durations) != n {
		return nil, fmt.Errorf("osrm: %d rows for %d points", len(tr.Durations), n)
	}
	out := make([][]int, n)
	for i, row := range tr.Durations {
		if len(row) != n {
			return nil, fmt.Errorf("osrm: row %d has %d columns", i, len(row))
		}
		out[i] = make([]int, n)
		for j, d := range row {
			if d == nil {
				return nil, fmt.Errorf("osrm: no route between points %d and %d", i, j)
			}
			out[i][j] = int(math.Round(*d))
		}
	}
	p.log.Debugw("osrm table", map[string]any{"points": n, "elapsed_ms": time.Since(start).Milliseconds()})
	return out, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
