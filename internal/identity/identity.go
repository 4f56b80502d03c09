package identity

import (
	"net/http"
	"time"

	"filemart/internal/token"

	"github.com/google/uuid"
)

// Cookie names carrying the three credentials. All are HttpOnly and
// SameSite=Lax; the token cookies are additionally Secure outside
// development.
const (
	AdminCookie = "adminToken"
	UserCookie  = "userToken"
	GuestCookie = "guestId"
)

// guestPrefix turns an opaque guest id into the pseudo-email that keys
// guest cart rows.
const guestPrefix = "guest:"

type Kind int

const (
	Anonymous Kind = iota
	Guest
	User
	Admin
)

func (k Kind) String() string {
	switch k {
	case Guest:
		return "guest"
	case User:
		return "user"
	case Admin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Principal is the resolved identity behind a request. Exactly one variant
// applies; fields outside that variant are zero.
type Principal struct {
	Kind    Kind
	Subject string // user/admin only
	Email   string // user/admin only
	Name    string // user/admin only
	GuestID string // guest only
}

// CartKey is the string that keys this principal's cart rows: the account
// email for users, guest:<id> for guests, empty otherwise.
func (p Principal) CartKey() string {
	switch p.Kind {
	case User:
		return p.Email
	case Guest:
		return guestPrefix + p.GuestID
	default:
		return ""
	}
}

// LedgerEmail is the identity allowed to own a Purchase. Only users
// qualify; guests must authenticate before checkout.
func (p Principal) LedgerEmail() (string, bool) {
	if p.Kind == User && p.Email != "" {
		return p.Email, true
	}
	return "", false
}

// Resolver turns request cookies into a Principal. It is read-only: the
// only observable side effect of resolution is the guest cookie a caller
// may need to set after MintGuest.
type Resolver struct {
	codec  *token.Codec
	secure bool
}

func NewResolver(codec *token.Codec, secure bool) *Resolver {
	return &Resolver{codec: codec, secure: secure}
}

// ResolveUser applies the user-facing resolution order: valid user token →
// User; existing guest cookie → Guest; otherwise Anonymous. Minting a new
// guest identity is left to the caller (see MintGuest) so that read paths
// stay cookie-neutral.
func (r *Resolver) ResolveUser(req *http.Request) Principal {
	if c, err := req.Cookie(UserCookie); err == nil && c.Value != "" {
		if claims, err := r.codec.Verify(token.KindUser, c.Value); err == nil {
			return Principal{
				Kind:    User,
				Subject: claims.Subject,
				Email:   claims.Email,
				Name:    claims.Name,
			}
		}
		// Invalid or expired token falls through to guest/anonymous.
	}

	if c, err := req.Cookie(GuestCookie); err == nil && c.Value != "" {
		return Principal{Kind: Guest, GuestID: c.Value}
	}

	return Principal{Kind: Anonymous}
}

// ResolveAdmin checks only the admin token kind. A valid user token never
// satisfies an admin check.
func (r *Resolver) ResolveAdmin(req *http.Request) Principal {
	c, err := req.Cookie(AdminCookie)
	if err != nil || c.Value == "" {
		return Principal{Kind: Anonymous}
	}

	claims, err := r.codec.Verify(token.KindAdmin, c.Value)
	if err != nil {
		return Principal{Kind: Anonymous}
	}

	return Principal{
		Kind:    Admin,
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}
}

// MintGuest creates a fresh guest identity and the cookie that must be
// propagated back for it to exist at all: there is no server-side record.
func (r *Resolver) MintGuest() (Principal, *http.Cookie) {
	id := uuid.NewString()
	cookie := &http.Cookie{
		Name:     GuestCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// One year; guests never expire server-side, the cookie governs.
		MaxAge: int((365 * 24 * time.Hour).Seconds()),
	}
	return Principal{Kind: Guest, GuestID: id}, cookie
}

// SessionCookie wraps a freshly issued token for the given cookie name.
func (r *Resolver) SessionCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
}

// ClearCookie expires the named cookie on the client.
func (r *Resolver) ClearCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}
