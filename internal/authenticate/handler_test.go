package authenticate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clientmocks "openid-gateway/internal/clients/mocks"
	consentmocks "openid-gateway/internal/consent/mocks"
	"openid-gateway/internal/identity"
	"openid-gateway/internal/nonce"
	"openid-gateway/internal/router"
	dErrors "openid-gateway/pkg/domain-errors"
	"openid-gateway/pkg/platform/audit"
	auditpublisher "openid-gateway/pkg/platform/audit/publisher"
	auditmemory "openid-gateway/pkg/platform/audit/sink/memory"
	"openid-gateway/pkg/requestcontext"
)

const (
	testLoginURL     = "http://host.example/login"
	testSelfURL      = "http://host.example/openid-connect/authenticate"
	testAuthorizeURL = "http://host.example/openid-connect/authorize"
)

type ControllerSuite struct {
	suite.Suite
	registry  *clientmocks.MockRegistry
	decisions *consentmocks.MockDecisionStore
	auditSink *auditmemory.Sink
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.registry = clientmocks.NewMockRegistry(ctrl)
	s.decisions = consentmocks.NewMockDecisionStore(ctrl)
	s.auditSink = auditmemory.NewSink()
}

func (s *ControllerSuite) newController(hook PermissionHook) *Controller {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Config{
		Clients:           s.registry,
		Decisions:         s.decisions,
		Nonces:            nonce.NewService("test-nonce-key", time.Minute),
		LoginURL:          testLoginURL,
		SelfURL:           testSelfURL,
		AuthorizeURL:      testAuthorizeURL,
		SiteName:          "Example Site",
		MinimalCapability: "use_openid_connect",
		Hook:              hook,
		Logger:            logger,
		Audit:             auditpublisher.NewPublisher(s.auditSink, logger),
	})
}

func (s *ControllerSuite) authRequest(rawQuery string) *router.AuthRequest {
	return router.NewAuthRequest(
		httptest.NewRequest(http.MethodGet, "/openid-connect/authenticate?"+rawQuery, nil))
}

func (s *ControllerSuite) principalCtx(p *identity.Principal) context.Context {
	return requestcontext.WithPrincipal(context.Background(), p)
}

func (s *ControllerSuite) capablePrincipal() *identity.Principal {
	return &identity.Principal{
		ID:           "user-1",
		Login:        "jane",
		Nickname:     "jane",
		Email:        "jane@example.com",
		Capabilities: []string{"use_openid_connect"},
	}
}

func (s *ControllerSuite) TestNoPrincipalRedirectsToLogin() {
	c := s.newController(nil)
	req := s.authRequest("client_id=abc&state=xyz")
	resp := router.NewResponse()

	c.Handle(context.Background(), req, resp)

	s.Equal(http.StatusFound, resp.Status())
	location := resp.Header().Get("Location")
	s.True(strings.HasPrefix(location, testLoginURL+"?redirect_to="), "got %q", location)

	parsed, err := url.Parse(location)
	s.Require().NoError(err)
	returnTo := parsed.Query().Get("redirect_to")
	s.Contains(returnTo, "client_id=abc")
	s.Contains(returnTo, "state=xyz")
}

func (s *ControllerSuite) TestUnknownClientIs404AndNeverQueriesDecisions() {
	s.registry.EXPECT().ClientName(gomock.Any(), "ghost").Return("", nil)
	// No expectations on s.decisions: any call fails the test.

	c := s.newController(nil)
	resp := router.NewResponse()
	c.Handle(s.principalCtx(s.capablePrincipal()), s.authRequest("client_id=ghost"), resp)

	s.Equal(http.StatusNotFound, resp.Status())
	s.Empty(resp.Body())
}

func (s *ControllerSuite) TestConsentNotRequiredShortCircuitsDecisionStore() {
	s.registry.EXPECT().ClientName(gomock.Any(), "abc").Return("Example App", nil)
	s.registry.EXPECT().RequiresConsent(gomock.Any(), "abc").Return(false, nil)
	// Decision store must not be queried when consent is not required.

	c := s.newController(nil)
	resp := router.NewResponse()
	req := s.authRequest("client_id=abc&redirect_uri=https%3A%2F%2Fapp.example%2Fcb&scope=openid&state=xyz")
	c.Handle(s.principalCtx(s.capablePrincipal()), req, resp)

	s.Equal(http.StatusFound, resp.Status())
	s.assertAuthorizeRedirect(resp.Header().Get("Location"), map[string]string{
		"client_id":    "abc",
		"redirect_uri": "https://app.example/cb",
		"scope":        "openid",
		"state":        "xyz",
	})
	s.Empty(resp.Body(), "the redirect is the entire effect")
}

func (s *ControllerSuite) TestConsentAlreadyGrantedRedirects() {
	s.registry.EXPECT().ClientName(gomock.Any(), "abc").Return("Example App", nil)
	s.registry.EXPECT().RequiresConsent(gomock.Any(), "abc").Return(true, nil)
	s.decisions.EXPECT().NeedsConsent(gomock.Any(), "user-1", "abc").Return(false, nil)

	c := s.newController(nil)
	resp := router.NewResponse()
	req := s.authRequest("client_id=abc&state=xyz")
	c.Handle(s.principalCtx(s.capablePrincipal()), req, resp)

	s.Equal(http.StatusFound, resp.Status())
	s.assertAuthorizeRedirect(resp.Header().Get("Location"), map[string]string{
		"client_id": "abc",
		"state":     "xyz",
	})
}

func (s *ControllerSuite) TestCapabilityDeniedRendersNoPermission() {
	s.registry.EXPECT().ClientName(gomock.Any(), "abc").Return("Example App", nil)
	s.registry.EXPECT().RequiresConsent(gomock.Any(), "abc").Return(true, nil)
	s.decisions.EXPECT().NeedsConsent(gomock.Any(), "user-1", "abc").Return(true, nil)

	principal := s.capablePrincipal()
	principal.Capabilities = nil

	c := s.newController(nil)
	resp := router.NewResponse()
	req := s.authRequest("client_id=abc&redirect_uri=https%3A%2F%2Fapp.example%2Fcb&state=xyz")
	c.Handle(s.principalCtx(principal), req, resp)

	s.Equal(http.StatusOK, resp.Status())
	body := string(resp.Body())
	s.Contains(body, "You don&#39;t have permission to use OpenID Connect.")

	cancel := extractCancelURL(s.T(), body)
	s.Contains(cancel, "error=access_denied")
	s.Contains(cancel, "state=xyz")
	s.True(strings.HasPrefix(cancel, "https://app.example/cb?"), "got %q", cancel)
}

func (s *ControllerSuite) TestHookOverridesCapabilityDecision() {
	s.registry.EXPECT().ClientName(gomock.Any(), "abc").Return("Example App", nil)
	s.registry.EXPECT().RequiresConsent(gomock.Any(), "abc").Return(true, nil)
	s.decisions.EXPECT().NeedsConsent(gomock.Any(), "user-1", "abc").Return(true, nil)

	var sawDefault bool
	hook := func(defaultAllowed bool, rc RenderContext) bool {
		sawDefault = defaultAllowed
		s.Equal("Example App", rc.ClientName)
		return false // deny despite the capability being held
	}

	c := s.newController(hook)
	resp := router.NewResponse()
	c.Handle(s.principalCtx(s.capablePrincipal()), s.authRequest("client_id=abc"), resp)

	s.True(sawDefault, "hook must receive the baseline capability result")
	s.Contains(string(resp.Body()), "You don&#39;t have permission")
}

func (s *ControllerSuite) TestConsentFormEchoesEveryParameter() {
	s.registry.EXPECT().ClientName(gomock.Any(), "abc").Return("Example App", nil)
	s.registry.EXPECT().RequiresConsent(gomock.Any(), "abc").Return(true, nil)
	s.decisions.EXPECT().NeedsConsent(gomock.Any(), "user-1", "abc").Return(true, nil)

	c := s.newController(nil)
	resp := router.NewResponse()
	req := s.authRequest("client_id=abc&redirect_uri=https%3A%2F%2Fapp.example%2Fcb&scope=openid+profile&state=a%26b&custom=kept")
	c.Handle(s.principalCtx(s.capablePrincipal()), req, resp)

	s.Equal(http.StatusOK, resp.Status())
	body := string(resp.Body())
	s.Contains(body, `action="`+testAuthorizeURL+`"`)
	s.Contains(body, `Do you want to log in to <em>Example App</em>`)

	for name, value := range map[string]string{
		"client_id":    "abc",
		"redirect_uri": "https://app.example/cb",
		"scope":        "openid profile",
		"state":        "a&amp;b",
		"custom":       "kept",
	} {
		s.Contains(body, `name="`+name+`" value="`+value+`"`, "missing hidden field %s", name)
	}
	s.Contains(body, `name="`+nonce.Param+`"`, "form must carry the anti-forgery token")
}

func (s *ControllerSuite) TestRegistryFailureFailsRequestHard() {
	s.registry.EXPECT().ClientName(gomock.Any(), "abc").Return("", errors.New("registry down"))

	c := s.newController(nil)
	resp := router.NewResponse()
	c.Handle(s.principalCtx(s.capablePrincipal()), s.authRequest("client_id=abc"), resp)

	s.Equal(http.StatusInternalServerError, resp.Status())
}

func (s *ControllerSuite) TestDecisionStoreFailureNeverAutoApproves() {
	s.registry.EXPECT().ClientName(gomock.Any(), "abc").Return("Example App", nil)
	s.registry.EXPECT().RequiresConsent(gomock.Any(), "abc").Return(true, nil)
	s.decisions.EXPECT().NeedsConsent(gomock.Any(), "user-1", "abc").Return(false, errors.New("store down"))

	c := s.newController(nil)
	resp := router.NewResponse()
	c.Handle(s.principalCtx(s.capablePrincipal()), s.authRequest("client_id=abc"), resp)

	s.Equal(http.StatusInternalServerError, resp.Status())
	s.Empty(resp.Header().Get("Location"), "a store outage must not redirect to authorize")
}

func (s *ControllerSuite) TestClassifiedStoreOutageMapsToStatus() {
	s.registry.EXPECT().ClientName(gomock.Any(), "abc").Return("Example App", nil)
	s.registry.EXPECT().RequiresConsent(gomock.Any(), "abc").Return(true, nil)
	s.decisions.EXPECT().NeedsConsent(gomock.Any(), "user-1", "abc").
		Return(false, dErrors.Wrap(dErrors.CodeUnavailable, "check consent grant", errors.New("redis: connection refused")))

	c := s.newController(nil)
	resp := router.NewResponse()
	c.Handle(s.principalCtx(s.capablePrincipal()), s.authRequest("client_id=abc"), resp)

	s.Equal(http.StatusServiceUnavailable, resp.Status())
}

func (s *ControllerSuite) TestAutoApproveEmitsAuditEvent() {
	s.registry.EXPECT().ClientName(gomock.Any(), "abc").Return("Example App", nil)
	s.registry.EXPECT().RequiresConsent(gomock.Any(), "abc").Return(false, nil)

	c := s.newController(nil)
	resp := router.NewResponse()
	ctx := requestcontext.WithRequestID(s.principalCtx(s.capablePrincipal()), "req-42")
	c.Handle(ctx, s.authRequest("client_id=abc"), resp)

	events := s.auditSink.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionConsentAutoApproved, events[0].Action)
	s.Equal("user-1", events[0].UserID)
	s.Equal("abc", events[0].ClientID)
	s.Equal("req-42", events[0].RequestID)
}

// assertAuthorizeRedirect checks the redirect targets the authorize endpoint,
// carries a fresh anti-forgery token, and preserves every expected parameter.
func (s *ControllerSuite) assertAuthorizeRedirect(location string, want map[string]string) {
	s.Require().True(strings.HasPrefix(location, testAuthorizeURL+"?"), "got %q", location)
	parsed, err := url.Parse(location)
	s.Require().NoError(err)
	query := parsed.Query()
	s.NotEmpty(query.Get(nonce.Param), "redirect must carry an anti-forgery token")
	for key, value := range want {
		s.Equal(value, query.Get(key), "parameter %s", key)
	}
}

func extractCancelURL(t *testing.T, body string) string {
	t.Helper()
	start := strings.Index(body, `href="`)
	if start < 0 {
		t.Fatalf("no cancel link in body: %s", body)
	}
	rest := body[start+len(`href="`):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		t.Fatalf("unterminated cancel link in body")
	}
	return strings.ReplaceAll(rest[:end], "&amp;", "&")
}
