// Package testutil provides common test utilities for handler tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// NewRequest creates a simple HTTP request without a body.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// NewRequestWithQuery creates a GET request with an encoded query string
// built from ordered key/value pairs.
func NewRequestWithQuery(t *testing.T, path string, pairs ...string) *http.Request {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("pairs must come in key/value couples, got %d items", len(pairs))
	}
	query := ""
	for i := 0; i < len(pairs); i += 2 {
		if query != "" {
			query += "&"
		}
		query += url.QueryEscape(pairs[i]) + "=" + url.QueryEscape(pairs[i+1])
	}
	if query != "" {
		path += "?" + query
	}
	return httptest.NewRequest(http.MethodGet, path, nil)
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
