package export

import (
	"context"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/twilio/twilio-go/twiml"

	"idres/internal/workspace"
	dErrors "idres/pkg/domain-errors"
)

// twilioAPI is the subset of the Twilio REST client we call.
type twilioAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
	CreateCall(params *twilioApi.CreateCallParams) (*twilioApi.ApiV2010Call, error)
}

// TwilioNotifier sends SMS and voice calls with the workspace's Twilio
// credentials, which may change at runtime.
type TwilioNotifier struct {
	settings SettingsSource
	newAPI   func(sid, token string) twilioAPI
}

func NewTwilioNotifier(settings SettingsSource) *TwilioNotifier {
	return &TwilioNotifier{
		settings: settings,
		newAPI: func(sid, token string) twilioAPI {
			return twilio.NewRestClientWithParams(twilio.ClientParams{
				Username: sid,
				Password: token,
			}).Api
		},
	}
}

func (n *TwilioNotifier) ready() (workspace.Settings, error) {
	s := n.settings.Settings()
	if !s.TwilioEnabled {
		return s, dErrors.New(dErrors.CodeForbidden, "twilio integration is disabled")
	}
	if !s.TwilioReady() {
		return s, dErrors.New(dErrors.CodeInvalidState, "twilio credentials are incomplete")
	}
	return s, nil
}

// CheckSMS validates the number and the workspace's Twilio settings.
func (n *TwilioNotifier) CheckSMS(to string) error {
	_, err := n.smsSettings(to)
	return err
}

func (n *TwilioNotifier) smsSettings(to string) (workspace.Settings, error) {
	if to == "" {
		return workspace.Settings{}, dErrors.New(dErrors.CodeBadRequest, "destination number is required")
	}
	return n.ready()
}

// SendSMS texts body to the given number and returns the message SID.
func (n *TwilioNotifier) SendSMS(ctx context.Context, to, body string) (string, error) {
	s, err := n.smsSettings(to)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.TwilioFromNumber)
	params.SetBody(body)

	msg, err := n.newAPI(s.TwilioAccountSID, s.TwilioAuthToken).CreateMessage(params)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "twilio rejected the message")
	}
	return deref(msg.Sid), nil
}

// StartTutorialCall rings the number and reads the identity resolution
// walkthrough. When twimlURL is empty an inline script is used.
func (n *TwilioNotifier) StartTutorialCall(ctx context.Context, to, twimlURL string) (string, error) {
	if to == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "destination number is required")
	}
	s, err := n.ready()
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(s.TwilioFromNumber)
	if twimlURL != "" {
		params.SetUrl(twimlURL)
	} else {
		doc, err := twiml.Voice([]twiml.Element{&twiml.VoiceSay{Message: tutorialScript}})
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "render tutorial twiml")
		}
		params.SetTwiml(doc)
	}

	call, err := n.newAPI(s.TwilioAccountSID, s.TwilioAuthToken).CreateCall(params)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "twilio rejected the call")
	}
	return deref(call.Sid), nil
}

const tutorialScript = "This is the identity resolution walkthrough. " +
	"Identifiers are matched in priority order. " +
	"Each identifier has a limit on how many values a profile may hold within its frequency window. " +
	"When a limit is exceeded, the lower priority identifier is dropped."

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
