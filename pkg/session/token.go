package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	jwt.RegisteredClaims

	// TenantID scopes every stored plan. Issued by the account service.
	TenantID string `json:"tid,omitempty"`
}

type Verified struct {
	TenantID  string
	Subject   string
	ExpiresAt time.Time
}

// Verify checks an HS256 session token and returns the tenant it is scoped to.
// The tenant comes from the tid claim, falling back to the subject's
// "tenant/<id>" form used by service accounts.
func Verify(tokenString string, audience string, secret string, now time.Time) (*Verified, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if secret == "" {
		return nil, fmt.Errorf("missing session secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if audience != "" && !audContains(claims.Audience, audience) {
		return nil, fmt.Errorf("audience mismatch")
	}

	tenantID := tenantFromClaims(claims)
	if tenantID == "" {
		return nil, fmt.Errorf("missing tenant in token")
	}

	return &Verified{
		TenantID:  tenantID,
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Sign issues a session token. Used by dev tooling; production tokens come
// from the account service.
func Sign(tenantID, subject, audience, secret string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TenantID: tenantID,
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func audContains(aud []string, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

func tenantFromClaims(c *Claims) string {
	if s := strings.TrimSpace(c.TenantID); s != "" {
		return s
	}
	if s, ok := strings.CutPrefix(strings.TrimSpace(c.Subject), "tenant/"); ok {
		return strings.TrimSuffix(s, "/")
	}
	return ""
}
