package middleware

import (
	"net/http"

	"filemart/internal/identity"

	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// WithPrincipal resolves the request's cookies into a Principal and stashes
// it on the context. Resolution only; no cookies are written here.
func WithPrincipal(resolver *identity.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(principalKey, resolver.ResolveUser(c.Request()))
			return next(c)
		}
	}
}

// AdminOnly resolves strictly against the admin token kind and rejects
// everything else. User tokens do not pass.
func AdminOnly(resolver *identity.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := resolver.ResolveAdmin(c.Request())
			if p.Kind != identity.Admin {
				return echo.NewHTTPError(http.StatusUnauthorized, "admin authentication required")
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// PrincipalFrom reads the principal stashed by WithPrincipal/AdminOnly.
func PrincipalFrom(c echo.Context) identity.Principal {
	if p, ok := c.Get(principalKey).(identity.Principal); ok {
		return p
	}
	return identity.Principal{Kind: identity.Anonymous}
}

// EnsureCartIdentity upgrades an anonymous request to a guest, setting the
// guest cookie on the response. Used by cart writes, which are the first
// point where an identity must exist.
func EnsureCartIdentity(c echo.Context, resolver *identity.Resolver) identity.Principal {
	p := PrincipalFrom(c)
	if p.Kind != identity.Anonymous {
		return p
	}

	p, cookie := resolver.MintGuest()
	c.SetCookie(cookie)
	c.Set(principalKey, p)
	return p
}
