package middleware

import (
	"net/http"

	"github.com/mssola/useragent"

	"openid-gateway/pkg/requestcontext"
)

// DeviceMeta parses the User-Agent header into structured device metadata so
// audit events can record what kind of client made each consent decision.
func DeviceMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("User-Agent")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		ua := useragent.New(raw)
		browser, _ := ua.Browser()
		meta := requestcontext.Device{
			Browser: browser,
			OS:      ua.OS(),
			Mobile:  ua.Mobile(),
			Bot:     ua.Bot(),
		}
		next.ServeHTTP(w, r.WithContext(requestcontext.WithDeviceMeta(r.Context(), meta)))
	})
}
