package router

import (
	"net/http"
	"net/url"
	"strings"
)

// Param is a single query parameter. AuthRequest keeps parameters as an
// ordered slice because redirects and consent forms must echo them back in
// the order they arrived.
type Param struct {
	Key   string
	Value string
}

// AuthRequest is the normalized, immutable view of an inbound authorization
// request. Constructed once per dispatch; handlers must not mutate it.
type AuthRequest struct {
	ClientID    string
	RedirectURI string
	Scope       string
	State       string
	Nonce       string
	params      []Param
}

// NewAuthRequest normalizes a host request. The full query string is captured,
// not just the known fields, so unknown parameters survive round-trips.
func NewAuthRequest(r *http.Request) *AuthRequest {
	params := parseQueryOrdered(r.URL.RawQuery)
	req := &AuthRequest{params: params}
	for _, p := range params {
		switch p.Key {
		case "client_id":
			req.ClientID = p.Value
		case "redirect_uri":
			req.RedirectURI = p.Value
		case "scope":
			req.Scope = p.Value
		case "state":
			req.State = p.Value
		case "nonce":
			req.Nonce = p.Value
		}
	}
	return req
}

// Query returns the first value for key, or "" when absent.
func (r *AuthRequest) Query(key string) string {
	for _, p := range r.params {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Params returns all query parameters in arrival order. The returned slice is
// a copy; callers may not reach the request's internal state through it.
func (r *AuthRequest) Params() []Param {
	return append([]Param(nil), r.params...)
}

// parseQueryOrdered decodes a raw query string preserving parameter order.
// url.Values loses ordering, which the echo-back contract depends on.
// Undecodable pairs are skipped rather than failing the request.
func parseQueryOrdered(rawQuery string) []Param {
	var params []Param
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		params = append(params, Param{Key: decodedKey, Value: decodedValue})
	}
	return params
}

// Response accumulates what a handler wants sent back to the caller. Exactly
// one handler fills it and the router serializes it exactly once.
type Response struct {
	status int
	header http.Header
	body   []byte
}

func NewResponse() *Response {
	return &Response{status: http.StatusOK, header: make(http.Header)}
}

func (r *Response) SetStatus(status int) {
	r.status = status
}

func (r *Response) Status() int {
	return r.status
}

func (r *Response) Header() http.Header {
	return r.header
}

func (r *Response) SetBody(body []byte) {
	r.body = body
}

func (r *Response) Body() []byte {
	return append([]byte(nil), r.body...)
}

// Redirect configures the response as a 302 redirect with no body.
func (r *Response) Redirect(location string) {
	r.status = http.StatusFound
	r.header.Set("Location", location)
	r.body = nil
}

// write serializes the response onto the host transport. Called by the router
// only; after it returns the request is finished.
func (r *Response) write(w http.ResponseWriter) {
	for key, values := range r.header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(r.status)
	if len(r.body) > 0 {
		_, _ = w.Write(r.body)
	}
}
