// Package profile is a thin proxy to the Segment Profile API.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"idres/internal/workspace"
	dErrors "idres/pkg/domain-errors"
	"idres/pkg/platform/circuit"
)

// Kind selects which collection of a profile to read.
type Kind string

const (
	KindTraits      Kind = "traits"
	KindExternalIDs Kind = "external_ids"
	KindEvents      Kind = "events"
	KindMetadata    Kind = "metadata"
	KindLinks       Kind = "links"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindTraits, KindExternalIDs, KindEvents, KindMetadata, KindLinks}

// ParseKind validates a kind from a URL or flag.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown profile kind: "+s)
}

// SettingsSource supplies the current workspace credentials.
type SettingsSource interface {
	Settings() workspace.Settings
}

// Client calls the Profile API with the workspace credentials.
type Client struct {
	baseURL    string
	settings   SettingsSource
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *slog.Logger
	tracer     trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		cl.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

func NewClient(baseURL string, settings SettingsSource, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		settings:   settings,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    circuit.New("profile-api"),
		logger:     slog.Default(),
		tracer:     otel.Tracer("idres/internal/profile"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Fetch returns the raw JSON document for identifier (e.g. "email:a@b.c").
func (c *Client) Fetch(ctx context.Context, identifier string, kind Kind) (json.RawMessage, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "identifier is required")
	}
	settings := c.settings.Settings()
	if !settings.ProfileReady() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "workspace space id and access token are not configured")
	}
	ctx, span := c.tracer.Start(ctx, "profile.Fetch", trace.WithAttributes(
		attribute.String("profile.kind", string(kind)),
	))
	defer span.End()

	endpoint := fmt.Sprintf("%s/v1/spaces/%s/collections/users/profiles/%s/%s",
		c.baseURL, url.PathEscape(settings.SpaceID), url.PathEscape(identifier), kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build profile request")
	}
	req.SetBasicAuth(settings.AccessToken, "")
	req.Header.Set("Accept", "application/json")

	// Every admitted call must end in recordSuccess or recordFailure so a
	// half-open trial call is released.
	if !c.breaker.Allow() {
		span.SetStatus(codes.Error, "circuit open")
		return nil, dErrors.New(dErrors.CodeUnavailable, "profile API temporarily unavailable")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "profile API timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "profile API unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		c.recordFailure(ctx)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "read profile response")
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.recordSuccess(ctx)
		return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.recordSuccess(ctx)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "profile API rejected the access token")
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		c.recordFailure(ctx)
		span.SetStatus(codes.Error, resp.Status)
		return nil, dErrors.New(dErrors.CodeUnavailable, "profile API error: "+resp.Status)
	case resp.StatusCode >= 400:
		c.recordSuccess(ctx)
		return nil, dErrors.New(dErrors.CodeUnavailable, "profile API error: "+resp.Status)
	}

	c.recordSuccess(ctx)
	if !json.Valid(body) {
		return nil, dErrors.New(dErrors.CodeUnavailable, "profile API returned invalid JSON")
	}
	return json.RawMessage(body), nil
}

func (c *Client) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "profile API circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "profile API circuit closed", "breaker", c.breaker.Name())
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
