package testutil

import (
	"net/http"

	"idres/pkg/requestcontext"
)

// WithOperator adds an operator subject to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithOperator(req *http.Request, operator string) *http.Request {
	return req.WithContext(requestcontext.WithOperator(req.Context(), operator))
}

// WithClientIP sets the client address the way the metadata middleware does.
func WithClientIP(req *http.Request, ip string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, req.UserAgent()))
}
