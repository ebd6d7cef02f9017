// Package authenticate implements the authorization consent flow: decide
// whether a client may proceed without interrupting the user, or render the
// consent decision first. Grant finalization belongs to the authorization
// core's authorize endpoint; this handler only routes the user there.
package authenticate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"openid-gateway/internal/clients"
	"openid-gateway/internal/consent"
	"openid-gateway/internal/identity"
	"openid-gateway/internal/nonce"
	"openid-gateway/internal/platform/metrics"
	"openid-gateway/internal/router"
	dErrors "openid-gateway/pkg/domain-errors"
	"openid-gateway/pkg/platform/audit"
	"openid-gateway/pkg/platform/audit/publisher"
	"openid-gateway/pkg/requestcontext"
)

// RenderContext is what the permission hook and the screen templates see.
type RenderContext struct {
	ClientName string
	Principal  *identity.Principal
	CancelURL  string
	FormURL    string
	FormFields []router.Param
}

// PermissionHook can override the baseline capability decision given the
// assembled render context. Its result is authoritative.
type PermissionHook func(defaultAllowed bool, rc RenderContext) bool

// Controller drives the consent decision state machine.
type Controller struct {
	clients           clients.Registry
	decisions         consent.DecisionStore
	nonces            *nonce.Service
	loginURL          string
	selfURL           string
	authorizeURL      string
	siteName          string
	minimalCapability string
	hook              PermissionHook
	logger            *slog.Logger
	metrics           *metrics.Metrics
	audit             *publisher.Publisher
}

// Config wires a Controller. Hook defaults to the identity function.
type Config struct {
	Clients           clients.Registry
	Decisions         consent.DecisionStore
	Nonces            *nonce.Service
	LoginURL          string
	SelfURL           string
	AuthorizeURL      string
	SiteName          string
	MinimalCapability string
	Hook              PermissionHook
	Logger            *slog.Logger
	Metrics           *metrics.Metrics
	Audit             *publisher.Publisher
}

func New(cfg Config) *Controller {
	hook := cfg.Hook
	if hook == nil {
		hook = func(defaultAllowed bool, _ RenderContext) bool { return defaultAllowed }
	}
	return &Controller{
		clients:           cfg.Clients,
		decisions:         cfg.Decisions,
		nonces:            cfg.Nonces,
		loginURL:          cfg.LoginURL,
		selfURL:           cfg.SelfURL,
		authorizeURL:      cfg.AuthorizeURL,
		siteName:          cfg.SiteName,
		minimalCapability: cfg.MinimalCapability,
		hook:              hook,
		logger:            cfg.Logger,
		metrics:           cfg.Metrics,
		audit:             cfg.Audit,
	}
}

// Handle runs the state machine for one request.
func (c *Controller) Handle(ctx context.Context, req *router.AuthRequest, resp *router.Response) {
	principal := requestcontext.Principal(ctx)
	if principal == nil {
		// The identity host owns authentication; send the caller to its login
		// entry point with a return pointer back to this route. The host
		// redirects back here once a session exists.
		resp.Redirect(c.loginRedirectURL(req))
		return
	}

	clientName, err := c.clients.ClientName(ctx, req.ClientID)
	if err != nil {
		c.fail(ctx, resp, "client registry lookup failed", err)
		return
	}
	if clientName == "" {
		// Unknown client: 404 with no body, so callers cannot probe which
		// clients exist.
		c.metrics.ObserveConsentDecision("unknown_client")
		c.emit(ctx, audit.Event{
			Action:   audit.ActionUnknownClientRejected,
			UserID:   principal.ID,
			ClientID: req.ClientID,
			Decision: "rejected",
			Reason:   "unknown client_id",
		})
		resp.SetStatus(http.StatusNotFound)
		return
	}

	requires, err := c.clients.RequiresConsent(ctx, req.ClientID)
	if err != nil {
		c.fail(ctx, resp, "client consent requirement lookup failed", err)
		return
	}
	needsConsent := false
	if requires {
		// Only consult the decision store when the client needs consent at
		// all; the common path never touches it.
		needsConsent, err = c.decisions.NeedsConsent(ctx, principal.ID, req.ClientID)
		if err != nil {
			// A store outage must not auto-approve.
			c.fail(ctx, resp, "consent decision lookup failed", err)
			return
		}
	}

	if !requires || !needsConsent {
		c.autoApprove(ctx, req, resp, principal)
		return
	}

	rc := RenderContext{
		ClientName: clientName,
		Principal:  principal,
		CancelURL:  c.cancelURL(req),
		FormURL:    c.authorizeURL,
		FormFields: req.Params(),
	}

	defaultAllowed := principal.Can(c.minimalCapability)
	if !c.hook(defaultAllowed, rc) {
		c.metrics.ObserveConsentDecision("denied")
		c.emit(ctx, audit.Event{
			Action:   audit.ActionConsentPermissionDenied,
			UserID:   principal.ID,
			ClientID: req.ClientID,
			Decision: "denied",
			Reason:   "minimal capability not held",
		})
		c.renderNoPermission(ctx, resp, rc)
		return
	}

	c.metrics.ObserveConsentDecision("prompt")
	c.emit(ctx, audit.Event{
		Action:   audit.ActionConsentPrompted,
		UserID:   principal.ID,
		ClientID: req.ClientID,
		Decision: "prompted",
	})
	c.renderConsent(ctx, resp, rc)
}

// autoApprove redirects to the authorize endpoint with every original query
// parameter plus a fresh anti-forgery token. The redirect is the entire
// effect; no body is produced.
func (c *Controller) autoApprove(ctx context.Context, req *router.AuthRequest, resp *router.Response, principal *identity.Principal) {
	token, err := c.nonces.Mint()
	if err != nil {
		c.fail(ctx, resp, "anti-forgery token mint failed", err)
		return
	}
	params := append([]router.Param{{Key: nonce.Param, Value: token}}, req.Params()...)
	c.metrics.ObserveConsentDecision("auto_approve")
	c.emit(ctx, audit.Event{
		Action:   audit.ActionConsentAutoApproved,
		UserID:   principal.ID,
		ClientID: req.ClientID,
		Decision: "approved",
		Reason:   "consent not required or already granted",
	})
	resp.Redirect(appendQuery(c.authorizeURL, params))
}

// cancelURL derives the error redirect from the inbound request's own
// redirect_uri and state. Best-effort construction: the authorization core
// validates redirect targets, not this handler.
func (c *Controller) cancelURL(req *router.AuthRequest) string {
	return appendQuery(req.RedirectURI, []router.Param{
		{Key: "error", Value: "access_denied"},
		{Key: "error_description", Value: "Access denied! Permission not granted."},
		{Key: "state", Value: req.State},
	})
}

func (c *Controller) loginRedirectURL(req *router.AuthRequest) string {
	return appendQuery(c.loginURL, []router.Param{
		{Key: "redirect_to", Value: appendQuery(c.selfURL, req.Params())},
	})
}

// fail ends the request with an error status. The failure never falls back to
// auto-approval: a store outage surfaces, it does not grant.
func (c *Controller) fail(ctx context.Context, resp *router.Response, msg string, err error) {
	c.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	status := http.StatusInternalServerError
	var gw dErrors.GatewayError
	if errors.As(err, &gw) {
		status = dErrors.ToHTTPStatus(gw.Code)
	}
	resp.SetStatus(status)
}

func (c *Controller) emit(ctx context.Context, event audit.Event) {
	if c.audit == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	device := requestcontext.DeviceMeta(ctx)
	event.Browser = device.Browser
	event.OS = device.OS
	c.audit.Emit(ctx, event)
}

// appendQuery attaches parameters to a URL, keeping whatever query string it
// already carries. Parameter order is preserved.
func appendQuery(base string, params []router.Param) string {
	if len(params) == 0 {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	for _, p := range params {
		b.WriteString(sep)
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(p.Value))
		sep = "&"
	}
	return b.String()
}
