package web

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookie = "admin_session"

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
)

type AuthConfig struct {
	HMACSecret   []byte
	CookieName   string
	SecureCookie bool
	TTL          time.Duration
}

// AuthManager mints and verifies the HS256 session tokens of the admin API.
type AuthManager struct {
	cfg AuthConfig
	now func() time.Time
}

func NewAuthManager(secret string, secure bool, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuthManager{
		cfg: AuthConfig{
			HMACSecret:   []byte(secret),
			CookieName:   sessionCookie,
			SecureCookie: secure,
			TTL:          ttl,
		},
		now: time.Now,
	}
}

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Mint signs a token for subject and sets it as an HttpOnly cookie on w.
func (a *AuthManager) Mint(w http.ResponseWriter, subject string) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.cfg.TTL)
	claims := AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Subject:   subject,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.cfg.HMACSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	http.SetCookie(w, a.cookie(signed, int(a.cfg.TTL.Seconds())))
	return signed, exp, nil
}

func (a *AuthManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, a.cookie("", -1))
}

func (a *AuthManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

// ParseFromRequest reads "Authorization: Bearer <jwt>" first, then the session cookie.
func (a *AuthManager) ParseFromRequest(r *http.Request) (*AdminClaims, error) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		scheme, tok, ok := strings.Cut(hdr, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return nil, errInvalidToken
		}
		return a.parse(strings.TrimSpace(tok))
	}
	if c, err := r.Cookie(a.cfg.CookieName); err == nil {
		return a.parse(c.Value)
	}
	return nil, errMissingToken
}

func (a *AuthManager) parse(tok string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.cfg.HMACSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !tkn.Valid || claims.Role != "admin" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// keyMatches compares API keys in constant time. An unset key never matches.
func keyMatches(want, got string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
