package telemetry

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryWarning is how close to expiry a token is reported as expiring soon.
const expiryWarning = 7 * 24 * time.Hour

// TokenInfo describes a bearer token as far as it can be read without the
// server's signing secret.
type TokenInfo struct {
	// Blank is true when no token is configured.
	Blank bool

	// JWT is true when the token parsed as a JSON Web Token.
	JWT bool

	// Username is the InfluxDB user the token was issued for, if present.
	Username string

	// ExpiresAt is zero when the token carries no expiry.
	ExpiresAt time.Time

	Expired     bool
	ExpiresSoon bool
}

// InspectToken decodes token without verifying its signature.
//
// InfluxDB 1.x checks the signature with a shared secret the device never
// holds; the agent only reads the claims to warn about an expired or soon
// expiring token at boot. An unparseable token is not an error: it may be
// an opaque credential understood by a proxy.
func InspectToken(token string, now time.Time) TokenInfo {
	if token == "" {
		return TokenInfo{Blank: true}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}
	}

	info := TokenInfo{JWT: true}
	if u, ok := claims["username"].(string); ok {
		info.Username = u
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return info
	}
	info.ExpiresAt = exp.Time
	info.Expired = !now.Before(exp.Time)
	info.ExpiresSoon = !info.Expired && exp.Time.Sub(now) < expiryWarning
	return info
}
