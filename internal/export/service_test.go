package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"idres/internal/profile"
	dErrors "idres/pkg/domain-errors"
)

type fakeFetcher struct {
	doc  string
	err  error
	kind profile.Kind
	id   string
}

func (f *fakeFetcher) Fetch(_ context.Context, identifier string, kind profile.Kind) (json.RawMessage, error) {
	f.id, f.kind = identifier, kind
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.doc), nil
}

type fakeUploader struct {
	keys []string
	data [][]byte
	err  error
}

func (f *fakeUploader) Write(_ context.Context, key string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	f.data = append(f.data, data)
	return "s3://bucket/" + key, nil
}

type fakeNotifier struct {
	to, body string
	callTo   string
	checkErr error
	err      error
}

func (f *fakeNotifier) CheckSMS(string) error {
	return f.checkErr
}

func (f *fakeNotifier) SendSMS(_ context.Context, to, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.to, f.body = to, body
	return "SM9", nil
}

func (f *fakeNotifier) StartTutorialCall(_ context.Context, to, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.callTo = to
	return "CA9", nil
}

type ExportServiceSuite struct {
	suite.Suite
	fetcher  *fakeFetcher
	uploader *fakeUploader
	notifier *fakeNotifier
	service  *Service
}

func (s *ExportServiceSuite) SetupTest() {
	s.fetcher = &fakeFetcher{doc: `{"data":[{"id":"1"},{"id":"2"}]}`}
	s.uploader = &fakeUploader{}
	s.notifier = &fakeNotifier{}
	s.service = NewService(twilioSettings, s.fetcher, s.notifier,
		WithUploader(s.uploader, "exports/"),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestExportServiceSuite(t *testing.T) {
	suite.Run(t, new(ExportServiceSuite))
}

func (s *ExportServiceSuite) TestDownloadIsDefault() {
	res, err := s.service.Export(context.Background(), Request{Identifier: "user_id:42", Kind: "events"})
	s.Require().NoError(err)

	s.Equal(DestinationDownload, res.Destination)
	s.Equal(2, res.Rows)
	s.Equal("user_id_42_events.csv", res.Filename)
	s.Equal("id\n1\n2\n", string(res.CSV))
	s.Equal(profile.KindEvents, s.fetcher.kind)
	s.Empty(s.uploader.keys)
}

func (s *ExportServiceSuite) TestS3Upload() {
	res, err := s.service.Export(context.Background(), Request{Identifier: "a", Kind: "traits", Destination: "S3"})
	s.Require().NoError(err)

	s.Require().Len(s.uploader.keys, 1)
	s.True(strings.HasPrefix(s.uploader.keys[0], "exports/"))
	s.Equal("s3://bucket/"+s.uploader.keys[0], res.Location)
	s.Equal(res.CSV, s.uploader.data[0])
}

func (s *ExportServiceSuite) TestSMSSummary() {
	res, err := s.service.Export(context.Background(), Request{Identifier: "a", Kind: "links", Destination: DestinationSMS, To: "+1555"})
	s.Require().NoError(err)

	s.Equal("SM9", res.MessageSID)
	s.Equal("+1555", s.notifier.to)
	s.Contains(s.notifier.body, "2 rows")
	s.Contains(s.notifier.body, res.Location)
}

func (s *ExportServiceSuite) TestSMSNotSendableUploadsNothing() {
	s.notifier.checkErr = dErrors.New(dErrors.CodeForbidden, "twilio integration is disabled")

	_, err := s.service.Export(context.Background(), Request{Identifier: "a", Kind: "traits", Destination: DestinationSMS, To: "+1555"})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Empty(s.uploader.keys)
	s.Empty(s.fetcher.id, "profile is not fetched")
	s.Empty(s.notifier.to)
}

// Runs the real Twilio preconditions in front of an uploader.
func TestExport_SMSPreconditionsLeaveNoUpload(t *testing.T) {
	twilioOff := twilioSettings
	twilioOff.TwilioEnabled = false

	tests := []struct {
		name     string
		settings staticSettings
		to       string
		code     dErrors.Code
	}{
		{"twilio disabled", twilioOff, "+1555", dErrors.CodeForbidden},
		{"missing number", twilioSettings, "", dErrors.CodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := &fakeUploader{}
			svc := NewService(tt.settings, &fakeFetcher{doc: `{"data":[{"id":"1"}]}`}, NewTwilioNotifier(tt.settings),
				WithUploader(uploader, "exports/"),
				WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			)

			_, err := svc.Export(context.Background(), Request{Identifier: "a", Kind: "traits", Destination: DestinationSMS, To: tt.to})
			require.Error(t, err)
			assert.Equal(t, tt.code, dErrors.CodeOf(err))
			assert.Empty(t, uploader.keys)
		})
	}
}

func (s *ExportServiceSuite) TestRejections() {
	disabled := twilioSettings
	disabled.ExportEnabled = false

	tests := []struct {
		name    string
		service *Service
		req     Request
		code    dErrors.Code
	}{
		{"export disabled", NewService(disabled, s.fetcher, s.notifier), Request{Identifier: "a", Kind: "traits"}, dErrors.CodeForbidden},
		{"unknown kind", s.service, Request{Identifier: "a", Kind: "sessions"}, dErrors.CodeBadRequest},
		{"unknown destination", s.service, Request{Identifier: "a", Kind: "traits", Destination: "ftp"}, dErrors.CodeBadRequest},
		{"s3 not configured", NewService(twilioSettings, s.fetcher, s.notifier), Request{Identifier: "a", Kind: "traits", Destination: DestinationS3}, dErrors.CodeForbidden},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := tt.service.Export(context.Background(), tt.req)
			s.Require().Error(err)
			s.Equal(tt.code, dErrors.CodeOf(err))
		})
	}
}

func (s *ExportServiceSuite) TestUpstreamErrorsPassThrough() {
	s.fetcher.err = dErrors.New(dErrors.CodeNotFound, "profile not found")
	_, err := s.service.Export(context.Background(), Request{Identifier: "a", Kind: "traits"})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ExportServiceSuite) TestUploadFailureIsUnavailable() {
	s.uploader.err = errors.New("access denied")
	_, err := s.service.Export(context.Background(), Request{Identifier: "a", Kind: "traits", Destination: DestinationS3})
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestService_Call(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewService(twilioSettings, &fakeFetcher{}, n)

	sid, err := svc.Call(context.Background(), "+1555")
	require.NoError(t, err)
	assert.Equal(t, "CA9", sid)
	assert.Equal(t, "+1555", n.callTo)
}
