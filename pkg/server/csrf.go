package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
)

// DefaultCSRFCookie carries the cookie half of the double-submit
// token pair.
const DefaultCSRFCookie = "__advisor_csrf"

const csrfNonceSize = 16

// CSRFGuard issues and validates the tokens that tie a live
// connection to a document this server rendered. A token is a random
// nonce plus its keyed MAC; the same token travels in the bootstrap
// payload and in a cookie, and the handshake must present both.
type CSRFGuard struct {
	secret []byte
	cookie string
}

// NewCSRFGuard returns a guard keyed with secret. An empty secret
// gets a random one, which works for a single process but cannot
// validate tokens across replicas.
func NewCSRFGuard(secret []byte, cookieName string) *CSRFGuard {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		rand.Read(secret)
	}
	if cookieName == "" {
		cookieName = DefaultCSRFCookie
	}
	return &CSRFGuard{secret: secret, cookie: cookieName}
}

// CookieName returns the name of the token cookie.
func (g *CSRFGuard) CookieName() string { return g.cookie }

// Generate returns a fresh token.
func (g *CSRFGuard) Generate() string {
	nonce := make([]byte, csrfNonceSize)
	rand.Read(nonce)
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(nonce)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nonce))
}

// Validate checks the token's MAC and its match against the cookie
// copy sent with the upgrade request.
func (g *CSRFGuard) Validate(r *http.Request, token string) bool {
	if token == "" {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != csrfNonceSize+sha256.Size {
		return false
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(raw[:csrfNonceSize])
	if !hmac.Equal(raw[csrfNonceSize:], mac.Sum(nil)) {
		return false
	}
	c, err := r.Cookie(g.cookie)
	if err != nil || c.Value == "" {
		return false
	}
	return hmac.Equal([]byte(c.Value), []byte(token))
}

// Cookie returns the cookie binding token to the browser. The client
// never reads it; the script gets its copy from the bootstrap
// payload.
func (g *CSRFGuard) Cookie(r *http.Request, token string) *http.Cookie {
	return &http.Cookie{
		Name:     g.cookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r != nil && r.TLS != nil,
	}
}
