// Package workspace manages the Segment workspace credentials and
// integration toggles kept in a .env file next to the server.
package workspace

import (
	"net/url"
	"strconv"
	"strings"
)

// .env keys
const (
	KeySpaceID          = "SEGMENT_SPACE_ID"
	KeyAccessToken      = "SEGMENT_ACCESS_TOKEN"
	KeyWorkspaceSlug    = "SEGMENT_WORKSPACE_SLUG"
	KeySpaceSlug        = "SEGMENT_UNIFY_SPACE_SLUG"
	KeyTwilioEnabled    = "TWILIO_ENABLED"
	KeyExportEnabled    = "EXPORT_ENABLED"
	KeyTwilioAccountSID = "TWILIO_ACCOUNT_SID"
	KeyTwilioAuthToken  = "TWILIO_AUTH_TOKEN"
	KeyTwilioFromNumber = "TWILIO_FROM_NUMBER"
)

// ManagedKeys are the keys Settings reads and writes. Other keys in the
// file are left untouched.
var ManagedKeys = []string{
	KeySpaceID,
	KeyAccessToken,
	KeyWorkspaceSlug,
	KeySpaceSlug,
	KeyTwilioEnabled,
	KeyExportEnabled,
	KeyTwilioAccountSID,
	KeyTwilioAuthToken,
	KeyTwilioFromNumber,
}

const redactedMask = "********"

// Settings is the workspace configuration.
type Settings struct {
	SpaceID          string `json:"space_id" yaml:"space_id"`
	AccessToken      string `json:"access_token" yaml:"access_token"`
	WorkspaceSlug    string `json:"workspace_slug" yaml:"workspace_slug"`
	SpaceSlug        string `json:"space_slug" yaml:"space_slug"`
	TwilioEnabled    bool   `json:"twilio_enabled" yaml:"twilio_enabled"`
	ExportEnabled    bool   `json:"export_enabled" yaml:"export_enabled"`
	TwilioAccountSID string `json:"twilio_account_sid" yaml:"twilio_account_sid"`
	TwilioAuthToken  string `json:"twilio_auth_token" yaml:"twilio_auth_token"`
	TwilioFromNumber string `json:"twilio_from_number" yaml:"twilio_from_number"`
}

// FromEnv reads Settings out of a key/value map.
func FromEnv(env map[string]string) Settings {
	return Settings{
		SpaceID:          strings.TrimSpace(env[KeySpaceID]),
		AccessToken:      strings.TrimSpace(env[KeyAccessToken]),
		WorkspaceSlug:    strings.TrimSpace(env[KeyWorkspaceSlug]),
		SpaceSlug:        strings.TrimSpace(env[KeySpaceSlug]),
		TwilioEnabled:    parseBool(env[KeyTwilioEnabled]),
		ExportEnabled:    parseBool(env[KeyExportEnabled]),
		TwilioAccountSID: strings.TrimSpace(env[KeyTwilioAccountSID]),
		TwilioAuthToken:  strings.TrimSpace(env[KeyTwilioAuthToken]),
		TwilioFromNumber: strings.TrimSpace(env[KeyTwilioFromNumber]),
	}
}

// ToEnv renders Settings as .env key/values.
func (s Settings) ToEnv() map[string]string {
	return map[string]string{
		KeySpaceID:          s.SpaceID,
		KeyAccessToken:      s.AccessToken,
		KeyWorkspaceSlug:    s.WorkspaceSlug,
		KeySpaceSlug:        s.SpaceSlug,
		KeyTwilioEnabled:    strconv.FormatBool(s.TwilioEnabled),
		KeyExportEnabled:    strconv.FormatBool(s.ExportEnabled),
		KeyTwilioAccountSID: s.TwilioAccountSID,
		KeyTwilioAuthToken:  s.TwilioAuthToken,
		KeyTwilioFromNumber: s.TwilioFromNumber,
	}
}

// Redacted masks secrets for display.
func (s Settings) Redacted() Settings {
	out := s
	out.AccessToken = mask(s.AccessToken)
	out.TwilioAuthToken = mask(s.TwilioAuthToken)
	return out
}

// ProfileReady reports whether the Profile API can be called.
func (s Settings) ProfileReady() bool {
	return s.SpaceID != "" && s.AccessToken != ""
}

// TwilioReady reports whether Twilio is enabled and fully configured.
func (s Settings) TwilioReady() bool {
	return s.TwilioEnabled && s.TwilioAccountSID != "" && s.TwilioAuthToken != "" && s.TwilioFromNumber != ""
}

// ChangedKeys lists managed keys whose values differ between a and b.
func ChangedKeys(a, b Settings) []string {
	ea, eb := a.ToEnv(), b.ToEnv()
	var changed []string
	for _, k := range ManagedKeys {
		if ea[k] != eb[k] {
			changed = append(changed, k)
		}
	}
	return changed
}

// Links are the Segment app pages for the configured space.
type Links struct {
	IdentityResolution string `json:"identity_resolution,omitempty" yaml:"identity_resolution,omitempty"`
	ProfileExplorer    string `json:"profile_explorer,omitempty" yaml:"profile_explorer,omitempty"`
}

const appBaseURL = "https://app.segment.com"

// Links builds documentation links from the slugs. Both are empty unless
// the workspace and space slugs are set.
func (s Settings) Links() Links {
	if s.WorkspaceSlug == "" || s.SpaceSlug == "" {
		return Links{}
	}
	base := appBaseURL + "/" + url.PathEscape(s.WorkspaceSlug) + "/unify/spaces/" + url.PathEscape(s.SpaceSlug)
	return Links{
		IdentityResolution: base + "/settings/identity-resolution",
		ProfileExplorer:    base + "/explorer",
	}
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return redactedMask
	}
	return redactedMask + secret[len(secret)-4:]
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
