package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "idres/pkg/domain-errors"
	"idres/pkg/testutil"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		status      int
		code        string
		description string
	}{
		{
			name:   "internal error hides its message",
			err:    dErrors.New(dErrors.CodeInternal, "db failed"),
			status: http.StatusInternalServerError,
			code:   "internal_error",
		},
		{
			name:   "uncoded error is internal",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   "internal_error",
		},
		{
			name:        "invalid input keeps its message",
			err:         dErrors.New(dErrors.CodeInvalidInput, "index 9 out of range"),
			status:      http.StatusBadRequest,
			code:        "invalid_input",
			description: "index 9 out of range",
		},
		{
			name:        "wrapped not found",
			err:         dErrors.Wrap(errors.New("no row"), dErrors.CodeNotFound, "field not in deleted list"),
			status:      http.StatusNotFound,
			code:        "not_found",
			description: "field not in deleted list",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			body := testutil.UnmarshalResponse[ErrorResponse](t, rr)
			assert.Equal(t, tt.code, body.Error)
			assert.Equal(t, tt.description, body.ErrorDescription)
		})
	}
}

func TestWriteJSONNilBody(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSON(rr, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	var ok payload
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"email"}`))
	require.NoError(t, DecodeJSON(req, &ok))
	assert.Equal(t, "email", ok.Name)

	for _, body := range []string{`{"name":"email","extra":1}`, `{"name":`, ``} {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeJSON(req, &p)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest), "body %q: %v", body, err)
	}
}
