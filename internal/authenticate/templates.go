package authenticate

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"openid-gateway/internal/nonce"
	"openid-gateway/internal/router"
)

// The consent screens are fill-in-the-blanks renders: no assets, no client
// side behavior, just the binary choice.

var consentTmpl = template.Must(template.New("consent").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>OpenID Connect</title></head>
<body>
<div id="openid-connect-authenticate">
	<form method="post" action="{{.FormURL}}">
		<h2>Hi {{.Nickname}}!</h2>
		<p>Do you want to log in to <em>{{.ClientName}}</em> with your <em>{{.SiteName}}</em> account?</p>
		<input type="hidden" name="{{.NonceParam}}" value="{{.NonceValue}}"/>
{{- range .FormFields}}
		<input type="hidden" name="{{.Key}}" value="{{.Value}}"/>
{{- end}}
		<p class="submit">
			<input type="submit" name="authorize" value="Authorize"/>
			<a href="{{.CancelURL}}" target="_top">Cancel</a>
		</p>
	</form>
</div>
</body>
</html>
`))

var noPermissionTmpl = template.Must(template.New("no-permission").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>OpenID Connect</title></head>
<body>
<div id="openid-connect-authenticate">
	<form>
		<h2>Hi {{.Nickname}}!</h2>
		<p>You don&#39;t have permission to use OpenID Connect.</p>
		<p>Contact your administrator for more details.</p>
		<p class="submit">
			<a href="{{.CancelURL}}" target="_top">Cancel</a>
		</p>
	</form>
</div>
</body>
</html>
`))

type templateData struct {
	Nickname   string
	ClientName string
	SiteName   string
	CancelURL  string
	FormURL    string
	FormFields []router.Param
	NonceParam string
	NonceValue string
}

func (c *Controller) renderConsent(ctx context.Context, resp *router.Response, rc RenderContext) {
	token, err := c.nonces.Mint()
	if err != nil {
		c.fail(ctx, resp, "anti-forgery token mint failed", err)
		return
	}
	c.render(ctx, resp, consentTmpl, templateData{
		Nickname:   rc.Principal.Nickname,
		ClientName: rc.ClientName,
		SiteName:   c.siteName,
		CancelURL:  rc.CancelURL,
		FormURL:    rc.FormURL,
		FormFields: rc.FormFields,
		NonceParam: nonce.Param,
		NonceValue: token,
	})
}

func (c *Controller) renderNoPermission(ctx context.Context, resp *router.Response, rc RenderContext) {
	c.render(ctx, resp, noPermissionTmpl, templateData{
		Nickname:  rc.Principal.Nickname,
		CancelURL: rc.CancelURL,
	})
}

func (c *Controller) render(ctx context.Context, resp *router.Response, tmpl *template.Template, data templateData) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		c.fail(ctx, resp, "template render failed", err)
		return
	}
	resp.SetStatus(http.StatusOK)
	resp.Header().Set("Content-Type", "text/html; charset=utf-8")
	resp.SetBody(buf.Bytes())
}
