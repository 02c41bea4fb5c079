package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-event-hub/internal/auth"
	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
	"github.com/oksasatya/go-ddd-event-hub/pkg/response"
)

// PrincipalKey is the gin context key holding the auth.Principal.
const PrincipalKey = "principal"

// Authenticator turns an Authorization header into a principal.
type Authenticator interface {
	AuthenticateReason(header string) (auth.Principal, string, error)
}

// RequireAuth rejects requests without a valid bearer token. Every failure
// gets the same 401 body; the reason only reaches the metrics.
func RequireAuth(gate Authenticator, recorder metrics.Recorder) gin.HandlerFunc {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return func(c *gin.Context) {
		p, reason, err := gate.AuthenticateReason(c.GetHeader("Authorization"))
		if err != nil {
			recorder.RecordAuthFailure(reason)
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			response.Abort(c, http.StatusUnauthorized, "unauthenticated", nil)
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

// OptionalAuth attaches a principal when a valid token is present and lets
// every request through. A bad token is treated as anonymous.
func OptionalAuth(gate Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			if p, _, err := gate.AuthenticateReason(header); err == nil {
				setPrincipal(c, p)
			}
		}
		c.Next()
	}
}

func setPrincipal(c *gin.Context, p auth.Principal) {
	c.Set(PrincipalKey, p)
	c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
}

// Principal returns the authenticated caller, if any.
func Principal(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}
