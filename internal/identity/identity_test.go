package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filemart/internal/token"
)

func newTestResolver() (*Resolver, *token.Codec) {
	codec := token.NewCodec("admin-secret-for-tests", "user-secret-for-tests")
	return NewResolver(codec, false), codec
}

func requestWithCookie(name, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: name, Value: value})
	return req
}

func TestResolveUserValidToken(t *testing.T) {
	resolver, codec := newTestResolver()

	signed, err := codec.Issue(token.KindUser, "u@x.com", "u@x.com", "U Ser", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	p := resolver.ResolveUser(requestWithCookie(UserCookie, signed))
	if p.Kind != User {
		t.Fatalf("kind = %v, want User", p.Kind)
	}
	if p.Email != "u@x.com" || p.Name != "U Ser" {
		t.Errorf("principal = %+v", p)
	}
	if _, ok := p.LedgerEmail(); !ok {
		t.Error("user principal has no ledger email")
	}
}

func TestExpiredTokenResolvesAnonymous(t *testing.T) {
	resolver, codec := newTestResolver()

	signed, err := codec.Issue(token.KindUser, "u@x.com", "u@x.com", "", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	p := resolver.ResolveUser(requestWithCookie(UserCookie, signed))
	if p.Kind != Anonymous {
		t.Errorf("expired token resolved to %v, want Anonymous", p.Kind)
	}
}

func TestExpiredTokenFallsBackToGuestCookie(t *testing.T) {
	resolver, codec := newTestResolver()

	signed, _ := codec.Issue(token.KindUser, "u@x.com", "u@x.com", "", -time.Minute)
	req := requestWithCookie(UserCookie, signed)
	req.AddCookie(&http.Cookie{Name: GuestCookie, Value: "g-123"})

	p := resolver.ResolveUser(req)
	if p.Kind != Guest || p.GuestID != "g-123" {
		t.Errorf("principal = %+v, want Guest g-123", p)
	}
}

func TestGuestCookieResolvesGuest(t *testing.T) {
	resolver, _ := newTestResolver()

	p := resolver.ResolveUser(requestWithCookie(GuestCookie, "g-456"))
	if p.Kind != Guest {
		t.Fatalf("kind = %v, want Guest", p.Kind)
	}
	if got := p.CartKey(); got != "guest:g-456" {
		t.Errorf("cart key = %q, want guest:g-456", got)
	}
	if _, ok := p.LedgerEmail(); ok {
		t.Error("guest principal must not have a ledger email")
	}
}

func TestNoCookiesResolvesAnonymous(t *testing.T) {
	resolver, _ := newTestResolver()

	p := resolver.ResolveUser(httptest.NewRequest(http.MethodGet, "/", nil))
	if p.Kind != Anonymous {
		t.Errorf("kind = %v, want Anonymous", p.Kind)
	}
	if p.CartKey() != "" {
		t.Errorf("anonymous cart key = %q, want empty", p.CartKey())
	}
}

func TestAdminCheckRejectsUserToken(t *testing.T) {
	resolver, codec := newTestResolver()

	userToken, _ := codec.Issue(token.KindUser, "u@x.com", "u@x.com", "", time.Hour)
	p := resolver.ResolveAdmin(requestWithCookie(AdminCookie, userToken))
	if p.Kind != Anonymous {
		t.Errorf("user token satisfied admin check: %+v", p)
	}

	adminToken, _ := codec.Issue(token.KindAdmin, "a@x.com", "a@x.com", "", time.Hour)
	p = resolver.ResolveAdmin(requestWithCookie(AdminCookie, adminToken))
	if p.Kind != Admin || p.Email != "a@x.com" {
		t.Errorf("admin token did not resolve: %+v", p)
	}

	// And the other direction: an admin token in the user cookie is not a user.
	p = resolver.ResolveUser(requestWithCookie(UserCookie, adminToken))
	if p.Kind == User {
		t.Error("admin token satisfied user resolution")
	}
}

func TestMintGuest(t *testing.T) {
	resolver, _ := newTestResolver()

	p, cookie := resolver.MintGuest()
	if p.Kind != Guest || p.GuestID == "" {
		t.Fatalf("minted principal = %+v", p)
	}
	if cookie.Name != GuestCookie || cookie.Value != p.GuestID {
		t.Errorf("cookie = %+v", cookie)
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("guest cookie flags = %+v", cookie)
	}

	p2, _ := resolver.MintGuest()
	if p2.GuestID == p.GuestID {
		t.Error("two minted guests share an id")
	}
}
