package workspace

import (
	"context"
)

// Update is a partial settings change. Nil fields are left as they are.
type Update struct {
	SpaceID          *string `json:"space_id,omitempty"`
	AccessToken      *string `json:"access_token,omitempty"`
	WorkspaceSlug    *string `json:"workspace_slug,omitempty"`
	SpaceSlug        *string `json:"space_slug,omitempty"`
	TwilioEnabled    *bool   `json:"twilio_enabled,omitempty"`
	ExportEnabled    *bool   `json:"export_enabled,omitempty"`
	TwilioAccountSID *string `json:"twilio_account_sid,omitempty"`
	TwilioAuthToken  *string `json:"twilio_auth_token,omitempty"`
	TwilioFromNumber *string `json:"twilio_from_number,omitempty"`
}

// Apply returns s with the update's non-nil fields.
func (u Update) Apply(s Settings) Settings {
	setString(&s.SpaceID, u.SpaceID)
	setString(&s.AccessToken, u.AccessToken)
	setString(&s.WorkspaceSlug, u.WorkspaceSlug)
	setString(&s.SpaceSlug, u.SpaceSlug)
	setString(&s.TwilioAccountSID, u.TwilioAccountSID)
	setString(&s.TwilioAuthToken, u.TwilioAuthToken)
	setString(&s.TwilioFromNumber, u.TwilioFromNumber)
	if u.TwilioEnabled != nil {
		s.TwilioEnabled = *u.TwilioEnabled
	}
	if u.ExportEnabled != nil {
		s.ExportEnabled = *u.ExportEnabled
	}
	return s
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Service reads and updates workspace settings.
type Service struct {
	store   *EnvStore
	watcher *Watcher
}

func NewService(store *EnvStore, watcher *Watcher) *Service {
	return &Service{store: store, watcher: watcher}
}

// Settings returns the latest settings observed by the watcher.
func (s *Service) Settings() Settings {
	return s.watcher.Current()
}

// Update writes the change and notifies observers right away rather than
// waiting for the file event.
func (s *Service) Update(ctx context.Context, u Update) (Settings, error) {
	current, err := s.store.Load()
	if err != nil {
		return Settings{}, err
	}
	next := u.Apply(current)
	if err := s.store.Save(next); err != nil {
		return Settings{}, err
	}
	change, err := s.watcher.Reload(ctx, SourceAPI)
	if err != nil {
		return Settings{}, err
	}
	return change.Current, nil
}
