// Package export turns profile data into CSV and ships it to the operator:
// as a download, to S3, or summarized by SMS.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"idres/internal/profile"
	"idres/internal/workspace"
	dErrors "idres/pkg/domain-errors"
)

// Destinations
const (
	DestinationDownload = "download"
	DestinationS3       = "s3"
	DestinationSMS      = "sms"
)

// SettingsSource supplies the current workspace settings.
type SettingsSource interface {
	Settings() workspace.Settings
}

// ProfileFetcher reads profile documents.
type ProfileFetcher interface {
	Fetch(ctx context.Context, identifier string, kind profile.Kind) (json.RawMessage, error)
}

// Uploader stores export files.
type Uploader interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Notifier sends Twilio messages and calls. CheckSMS reports whether a
// message to the number could be sent right now without sending it.
type Notifier interface {
	CheckSMS(to string) error
	SendSMS(ctx context.Context, to, body string) (string, error)
	StartTutorialCall(ctx context.Context, to, twimlURL string) (string, error)
}

type Request struct {
	Identifier  string `json:"identifier"`
	Kind        string `json:"kind"`
	Destination string `json:"destination"`
	To          string `json:"to,omitempty"`
}

type Result struct {
	Destination string `json:"destination"`
	Rows        int    `json:"rows"`
	Filename    string `json:"filename,omitempty"`
	Location    string `json:"location,omitempty"`
	MessageSID  string `json:"message_sid,omitempty"`
	CSV         []byte `json:"-"`
}

type Service struct {
	settings  SettingsSource
	profiles  ProfileFetcher
	uploader  Uploader
	notifier  Notifier
	keyPrefix string
	logger    *slog.Logger
}

type Option func(*Service)

// WithUploader enables the s3 destination.
func WithUploader(u Uploader, keyPrefix string) Option {
	return func(s *Service) {
		s.uploader = u
		s.keyPrefix = keyPrefix
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(settings SettingsSource, profiles ProfileFetcher, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		settings:  settings,
		profiles:  profiles,
		notifier:  notifier,
		keyPrefix: "exports/",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Export fetches one profile collection and delivers it as CSV.
func (s *Service) Export(ctx context.Context, req Request) (Result, error) {
	if !s.settings.Settings().ExportEnabled {
		return Result{}, dErrors.New(dErrors.CodeForbidden, "export is disabled for this workspace")
	}
	kind, err := profile.ParseKind(req.Kind)
	if err != nil {
		return Result{}, err
	}
	dest := strings.ToLower(strings.TrimSpace(req.Destination))
	if dest == "" {
		dest = DestinationDownload
	}
	switch dest {
	case DestinationDownload, DestinationS3, DestinationSMS:
	default:
		return Result{}, dErrors.New(dErrors.CodeBadRequest, "unknown destination: "+req.Destination)
	}
	if dest == DestinationS3 && s.uploader == nil {
		return Result{}, dErrors.New(dErrors.CodeForbidden, "s3 export is not configured")
	}
	// An sms export uploads before texting; nothing is written when the
	// message could not go out.
	if dest == DestinationSMS {
		if err := s.notifier.CheckSMS(req.To); err != nil {
			return Result{}, err
		}
	}

	doc, err := s.profiles.Fetch(ctx, req.Identifier, kind)
	if err != nil {
		return Result{}, err
	}
	data, rows, err := RenderCSV(doc)
	if err != nil {
		return Result{}, err
	}
	result := Result{Destination: dest, Rows: rows, CSV: data, Filename: filename(req.Identifier, kind)}

	switch dest {
	case DestinationS3:
		if result.Location, err = s.upload(ctx, data); err != nil {
			return Result{}, err
		}
	case DestinationSMS:
		if s.uploader != nil {
			if result.Location, err = s.upload(ctx, data); err != nil {
				return Result{}, err
			}
		}
		body := fmt.Sprintf("Identity export for %s (%s): %d rows", req.Identifier, kind, rows)
		if result.Location != "" {
			body += " at " + result.Location
		}
		if result.MessageSID, err = s.notifier.SendSMS(ctx, req.To, body); err != nil {
			return Result{}, err
		}
	}

	s.logger.InfoContext(ctx, "profile exported",
		"kind", kind,
		"destination", dest,
		"rows", rows,
	)
	return result, nil
}

// Call starts the identity resolution tutorial call.
func (s *Service) Call(ctx context.Context, to string) (string, error) {
	return s.notifier.StartTutorialCall(ctx, to, "")
}

func (s *Service) upload(ctx context.Context, data []byte) (string, error) {
	key, err := NewExportKey(s.keyPrefix)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "generate export key")
	}
	loc, err := s.uploader.Write(ctx, key, data)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "upload export")
	}
	return loc, nil
}

func filename(identifier string, kind profile.Kind) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, identifier)
	return fmt.Sprintf("%s_%s.csv", safe, kind)
}
